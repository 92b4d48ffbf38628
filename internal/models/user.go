// Package models содержит доменные модели, общие для сервисов, хранилища и HTTP-слоя.
package models

import "time"

// User представляет зарегистрированного пользователя.
type User struct {
	ID             string
	Name           string
	Email          string // всегда в нижнем регистре
	PasswordHash   string
	IsPremium      bool // снимок, синхронизируется с подпиской
	IsAdmin        bool
	TrialStartedAt *time.Time
	TrialEndsAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PublicUser поля пользователя, которые можно отдавать клиенту.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsPremium bool      `json:"isPremium"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public возвращает представление пользователя без хеша пароля.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		IsPremium: u.IsPremium,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// UserList страница пользователей для администратора.
type UserList struct {
	Items      []PublicUser `json:"items"`
	Pagination Pagination   `json:"pagination"`
}

// Principal аутентифицированный пользователь текущего запроса.
//
// IsPremium и IsAdmin вычисляются заново при каждой аутентификации,
// значения из токена не используются.
type Principal struct {
	UserID                string
	Name                  string
	Email                 string
	IsPremium             bool
	IsAdmin               bool
	SubscriptionStatus    SubscriptionStatus
	SubscriptionExpiresAt *time.Time
	TokenID               string
	TokenExpiresAt        time.Time
}

// Page параметры постраничной выборки.
type Page struct {
	Page  int
	Limit int
}

// Offset смещение для SQL.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Pagination метаданные страницы в ответе.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination считает количество страниц.
func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
