package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/migrations"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	migrationsPath, err := filepath.Abs("../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(s.DB, migrationsPath))
	return s
}

func TestIntegration_UserLifecycle(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{Name: "Ana", Email: "Ana@Example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.False(t, created.IsPremium)

	_, err = s.CreateUser(ctx, models.User{Name: "Other Ana", Email: "ANA@EXAMPLE.COM", PasswordHash: "hash"})
	assert.ErrorIs(t, err, apperr.ErrConflict, "email uniqueness must ignore case")

	found, err := s.GetUserByEmail(ctx, "aNa@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = s.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestIntegration_ConcurrentRegistration(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "race@example.com"
			if i%2 == 0 {
				email = "RACE@example.com"
			}
			_, err := s.CreateUser(ctx, models.User{Name: "Racer", Email: email, PasswordHash: "hash"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case assert.ErrorIs(t, err, apperr.ErrConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestIntegration_TrialAndSweep(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Name: "Bia", Email: "bia@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	start := time.Now().Add(-15 * 24 * time.Hour)
	end := start.Add(14 * 24 * time.Hour)
	require.NoError(t, s.StartTrial(ctx, u.ID, start, end))
	assert.ErrorIs(t, s.StartTrial(ctx, u.ID, start, end), apperr.ErrConflict)

	// снимок is_premium=true, но период уже истек
	drift, err := s.FindEntitlementDrift(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, u.ID, drift[0].ID)
	assert.True(t, drift[0].IsPremium)

	expired, err := s.ExpireLapsedSubscriptions(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, expired)

	require.NoError(t, s.SetUserPremium(ctx, u.ID, false))
	drift, err = s.FindEntitlementDrift(ctx, time.Now())
	require.NoError(t, err)
	assert.Empty(t, drift)

	sub, err := s.GetSubscription(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, sub.Status)

	stats, err := s.PremiumStats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 0, stats.PremiumUsers)
	assert.Equal(t, 1, stats.ExpiredSubscriptions)
}

func TestIntegration_RefreshRotation(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Name: "Caio", Email: "caio@example.com", PasswordHash: "hash"})
	require.NoError(t, err)

	first := models.RefreshToken{ID: uuid.NewString(), UserID: u.ID, TokenHash: "h1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateRefreshToken(ctx, first))

	second := models.RefreshToken{ID: uuid.NewString(), UserID: u.ID, TokenHash: "h2", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.RotateRefreshToken(ctx, first.ID, second))

	third := models.RefreshToken{ID: uuid.NewString(), UserID: u.ID, TokenHash: "h3", ExpiresAt: time.Now().Add(time.Hour)}
	assert.ErrorIs(t, s.RotateRefreshToken(ctx, first.ID, third), apperr.ErrConflict)

	old, err := s.GetRefreshToken(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, second.ID, *old.ReplacedBy)

	n, err := s.RevokeUserRefreshTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestIntegration_TransactionsAreScopedAndFiltered(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	verify := NewTestVerification(s)

	owner := factory.CreateUser(t, "Dora", "dora@example.com", true)
	other := factory.CreateUser(t, "Eva", "eva@example.com", true)

	day := func(d int) time.Time { return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC) }
	factory.CreateTransaction(t, owner, models.TypeIncome, 500000, "Salário", "trabalho", day(1))
	lunch := factory.CreateTransaction(t, owner, models.TypeExpense, 4590, "Almoço 50%", "comida", day(5))
	factory.CreateTransaction(t, owner, models.TypeExpense, 12000, "Mercado", "comida", day(20))
	foreign := factory.CreateTransaction(t, other, models.TypeExpense, 100, "Café", "comida", day(5))

	expense := models.TypeExpense
	from, to := day(1), day(10)
	items, total, err := s.ListTransactions(ctx, owner, models.TransactionFilter{
		Type: &expense, From: &from, To: &to, Page: models.Page{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, lunch, items[0].ID)

	// % в поиске ищется буквально
	items, _, err = s.ListTransactions(ctx, owner, models.TransactionFilter{
		Search: "50%", Page: models.Page{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, lunch, items[0].ID)

	totals, err := s.TransactionTotals(ctx, owner, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.Totals{TotalIncome: 500000, TotalExpense: 16590, Balance: 483410}, totals)

	_, err = s.GetTransaction(ctx, owner, foreign)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTransaction(ctx, owner, foreign), apperr.ErrNotFound)

	require.NoError(t, s.DeleteTransaction(ctx, owner, lunch))
	verify.VerifyTransactionDeleted(t, lunch)
}

func TestIntegration_SweepFixesPremiumSnapshot(t *testing.T) {
	s := setupTestDatabase(t)
	ctx := context.Background()
	factory := NewTestDataFactory(s)
	verify := NewTestVerification(s)

	lapsed := factory.CreateUser(t, "Fabi", "fabi@example.com", true)
	factory.CreateSubscription(t, lapsed, models.StatusActive, models.ProviderPIX, time.Now().Add(-time.Hour))
	current := factory.CreateUser(t, "Gil", "gil@example.com", true)
	factory.CreateSubscription(t, current, models.StatusActive, models.ProviderPIX, time.Now().Add(24*time.Hour))

	expired, err := s.ExpireLapsedSubscriptions(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{lapsed}, expired)
	verify.VerifySubscriptionStatus(t, lapsed, models.StatusExpired)
	verify.VerifySubscriptionStatus(t, current, models.StatusActive)

	require.NoError(t, s.SetUserPremium(ctx, lapsed, false))
	verify.VerifyUserPremium(t, lapsed, false)
	verify.VerifyUserPremium(t, current, true)
}
