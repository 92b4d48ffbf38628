// Package apperr содержит ошибки прикладного уровня.
//
// Базовые ошибки (ErrValidation, ErrUnauthorized и т.д.) задают класс ошибки,
// по которому HTTP-слой выбирает статус ответа. Error добавляет к классу
// машиночитаемый код и сообщение, которое можно показать клиенту.
package apperr

import "errors"

// Классы ошибок.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("dependency unavailable")
)

// Error ошибка с кодом для клиента.
type Error struct {
	Kind    error
	Code    string
	Message string
}

// New создает ошибку класса kind.
func New(kind error, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Ошибки аутентификации.
var (
	ErrMissingFields       = New(ErrValidation, "MISSING_FIELDS", "name, email and password are required")
	ErrInvalidName         = New(ErrValidation, "INVALID_NAME", "name must be at least 2 characters long")
	ErrInvalidEmail        = New(ErrValidation, "INVALID_EMAIL", "email format is invalid")
	ErrInvalidPassword     = New(ErrValidation, "INVALID_PASSWORD", "password must be at least 8 characters long")
	ErrUserExists          = New(ErrConflict, "USER_EXISTS", "a user with this email already exists")
	ErrInvalidCredentials  = New(ErrUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrTokenRequired       = New(ErrUnauthorized, "TOKEN_REQUIRED", "access token is required")
	ErrInvalidToken        = New(ErrUnauthorized, "INVALID_TOKEN", "access token is invalid")
	ErrTokenExpired        = New(ErrUnauthorized, "TOKEN_EXPIRED", "access token has expired")
	ErrUserNotFound        = New(ErrUnauthorized, "USER_NOT_FOUND", "user no longer exists")
	ErrInvalidRefreshToken = New(ErrUnauthorized, "INVALID_REFRESH_TOKEN", "refresh token is invalid or expired")
)

// Ошибки доступа.
var (
	ErrPremiumRequired = New(ErrForbidden, "PREMIUM_REQUIRED", "premium subscription required")
	ErrAdminRequired   = New(ErrForbidden, "ADMIN_REQUIRED", "administrator access required")
)

// Ошибки предметной области.
var (
	ErrTrialAlreadyUsed     = New(ErrConflict, "TRIAL_ALREADY_USED", "trial period has already been used")
	ErrSubscriptionActive   = New(ErrConflict, "SUBSCRIPTION_ACTIVE", "premium subscription is already active")
	ErrTrialNotFound        = New(ErrNotFound, "TRIAL_NOT_FOUND", "trial period has not been started")
	ErrTransactionNotFound  = New(ErrNotFound, "TRANSACTION_NOT_FOUND", "transaction not found")
	ErrChargeNotFound       = New(ErrNotFound, "CHARGE_NOT_FOUND", "charge not found")
	ErrChargeNotPending     = New(ErrConflict, "CHARGE_NOT_PENDING", "only pending charges can be cancelled")
	ErrUserNotFoundAdmin    = New(ErrNotFound, "USER_NOT_FOUND", "user not found")
	ErrDatabaseUnavailable  = New(ErrUnavailable, "DATABASE_UNAVAILABLE", "database is unavailable")
	ErrCacheUnavailable     = New(ErrUnavailable, "CACHE_UNAVAILABLE", "cache is unavailable")
	ErrServiceUnavailable   = New(ErrUnavailable, "SERVICE_UNAVAILABLE", "service is temporarily unavailable")
	ErrRateLimitExceeded    = New(ErrRateLimited, "RATE_LIMIT_EXCEEDED", "too many requests, try again later")
	ErrEndpointNotFound     = New(ErrNotFound, "ENDPOINT_NOT_FOUND", "endpoint not found")
	ErrInvalidSubscription  = New(ErrValidation, "INVALID_SUBSCRIPTION", "subscription status is invalid")
	ErrInvalidTransaction   = New(ErrValidation, "INVALID_TRANSACTION", "transaction is invalid")
	ErrPaymentProviderError = New(ErrUnavailable, "PAYMENT_PROVIDER_ERROR", "payment provider is unavailable")
)

// Validation создает ошибку валидации с произвольным сообщением.
func Validation(code, message string) *Error {
	return New(ErrValidation, code, message)
}
