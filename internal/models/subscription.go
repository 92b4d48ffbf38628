package models

import "time"

// SubscriptionStatus состояние подписки пользователя.
type SubscriptionStatus string

// Возможные состояния подписки.
const (
	StatusNone     SubscriptionStatus = "none"
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusExpired  SubscriptionStatus = "expired"
)

// Valid сообщает, может ли статус храниться в базе.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusCanceled, StatusPastDue, StatusExpired:
		return true
	}
	return false
}

// Источники подписки.
const (
	ProviderTrial = "trial"
	ProviderPIX   = "pix"
	ProviderAdmin = "admin"
)

// Subscription состояние подписки пользователя (не более одной на пользователя).
type Subscription struct {
	UserID           string
	Status           SubscriptionStatus
	Provider         string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// Entitled сообщает, дает ли подписка премиум-доступ в момент now:
// статус active или trialing и период не истек.
func (s *Subscription) Entitled(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != StatusActive && s.Status != StatusTrialing {
		return false
	}
	return s.CurrentPeriodEnd == nil || s.CurrentPeriodEnd.After(now)
}

// Entitlement итоговые права пользователя.
type Entitlement struct {
	IsPremium bool               `json:"isPremium"`
	IsAdmin   bool               `json:"isAdmin"`
	Status    SubscriptionStatus `json:"status"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`
}

// PremiumStats статистика подписок для администраторов.
type PremiumStats struct {
	TotalUsers           int     `json:"totalUsers"`
	PremiumUsers         int     `json:"premiumUsers"`
	ActiveSubscriptions  int     `json:"activeSubscriptions"`
	ExpiredSubscriptions int     `json:"expiredSubscriptions"`
	TrialUsers           int     `json:"trialUsers"`
	ConversionRate       float64 `json:"conversionRate"`
}

// TrialStatus состояние пробного периода.
type TrialStatus struct {
	Used          bool       `json:"used"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
	DaysRemaining int        `json:"daysRemaining"`
	Expired       bool       `json:"expired"`
}

// TrialReminder напоминание об окончании пробного периода.
type TrialReminder struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EndsAt        time.Time `json:"endsAt"`
	DaysRemaining int       `json:"daysRemaining"`
}

// RefreshToken серверная запись refresh-токена. Секрет хранится только в виде хеша.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}
