package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// TestDataFactory создает тестовые данные напрямую через SQL, минуя методы Storage.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает пользователя и возвращает его ID.
func (f *TestDataFactory) CreateUser(t *testing.T, name, email string, premium bool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := f.storage.DB.Exec(`INSERT INTO users (id, name, email, password_hash, is_premium)
		VALUES ($1, $2, $3, 'hash', $4)`, id, name, email, premium)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает запись подписки пользователя.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID string, status models.SubscriptionStatus,
	provider string, periodEnd time.Time) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO subscriptions (user_id, status, provider, current_period_end)
		VALUES ($1, $2, $3, $4)`, userID, status, provider, periodEnd)
	require.NoError(t, err)
}

// CreateTransaction создает операцию и возвращает ее ID.
func (f *TestDataFactory) CreateTransaction(t *testing.T, userID string, typ models.TransactionType,
	amountCents int64, description, category string, occurredOn time.Time) string {
	t.Helper()
	var id string
	err := f.storage.DB.QueryRow(`INSERT INTO transactions (user_id, type, amount_cents, description, category, occurred_on)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6) RETURNING id`,
		userID, typ, amountCents, description, category, occurredOn).Scan(&id)
	require.NoError(t, err)
	return id
}

// TestVerification проверяет состояние базы после операций.
type TestVerification struct {
	storage *Storage
}

func NewTestVerification(storage *Storage) *TestVerification {
	return &TestVerification{storage: storage}
}

func (v *TestVerification) VerifyUserPremium(t *testing.T, userID string, expected bool) {
	t.Helper()
	var premium bool
	err := v.storage.DB.QueryRow("SELECT is_premium FROM users WHERE id = $1", userID).Scan(&premium)
	require.NoError(t, err)
	require.Equal(t, expected, premium)
}

func (v *TestVerification) VerifySubscriptionStatus(t *testing.T, userID string, expected models.SubscriptionStatus) {
	t.Helper()
	var status string
	err := v.storage.DB.QueryRow("SELECT status FROM subscriptions WHERE user_id = $1", userID).Scan(&status)
	require.NoError(t, err)
	require.Equal(t, string(expected), status)
}

func (v *TestVerification) VerifyTransactionDeleted(t *testing.T, id string) {
	t.Helper()
	var count int
	err := v.storage.DB.QueryRow("SELECT COUNT(*) FROM transactions WHERE id = $1", id).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}
