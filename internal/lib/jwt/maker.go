// Package jwt реализует выпуск и проверку access-токенов (HS256).
//
// Maker определяет интерфейс выпуска и проверки токена, MakerImpl реализует
// его с общим секретом, издателем, аудиторией и временем жизни.
package jwt

import (
	"errors"
	"time"
)

// Ошибки проверки токена.
var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Subject данные пользователя, которые попадают в claims.
type Subject struct {
	UserID    string
	Email     string
	IsPremium bool
	IsAdmin   bool
}

// Maker описывает выпуск и разбор access-токенов.
type Maker interface {
	// GenerateToken подписывает токен и возвращает его вместе с claims.
	GenerateToken(subject Subject) (string, *CustomClaims, error)
	// ParseToken проверяет подпись, издателя, аудиторию и срок действия.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// TokenTTL возвращает время жизни выпускаемых токенов.
	TokenTTL() time.Duration
}

// MakerImpl реализует Maker на общем секретном ключе.
type MakerImpl struct {
	secretKey string
	issuer    string
	audience  string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создает MakerImpl.
func NewJWTMaker(secretKey, issuer, audience string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TokenTTL возвращает время жизни токена.
func (j *MakerImpl) TokenTTL() time.Duration {
	return j.tokenTTL
}
