// Package entitlement вычисляет права пользователя (премиум, администратор)
// по хранилищу подписок и поддерживает снимок is_premium в актуальном состоянии.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/metrics"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

const statsCacheKey = "stats:premium"

// Размер страницы списка пользователей.
const (
	DefaultUsersLimit = 20
	MaxUsersLimit     = 100
)

// Repository хранилище пользователей и подписок.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	SetUserPremium(ctx context.Context, userID string, premium bool) error
	ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]string, error)
	FindEntitlementDrift(ctx context.Context, now time.Time) ([]models.User, error)
	PremiumStats(ctx context.Context, now time.Time) (*models.PremiumStats, error)
	ListUsers(ctx context.Context, page models.Page) ([]models.User, int, error)
}

// Cache кеш статистики.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service вычисляет и изменяет права пользователей.
type Service struct {
	repo     Repository
	cache    Cache
	statsTTL time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewService создает Service.
func NewService(repo Repository, cache Cache, statsTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		statsTTL: statsTTL,
		log:      log,
		now:      time.Now,
	}
}

// Resolve вычисляет права пользователя на текущий момент по его подписке.
// Если снимок user.IsPremium устарел, он обновляется в хранилище и в user.
func (s *Service) Resolve(ctx context.Context, user *models.User) (models.Entitlement, error) {
	const op = "entitlement.Resolve"

	sub, err := s.repo.GetSubscription(ctx, user.ID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return models.Entitlement{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	ent := models.Entitlement{
		IsPremium: sub.Entitled(now),
		IsAdmin:   user.IsAdmin,
		Status:    effectiveStatus(sub, now),
	}
	if sub != nil {
		ent.ExpiresAt = sub.CurrentPeriodEnd
	}

	if user.IsPremium != ent.IsPremium {
		s.log.Info("premium flag out of date, syncing",
			slog.String("op", op),
			slog.String("user_id", user.ID),
			slog.Bool("was", user.IsPremium),
			slog.Bool("now", ent.IsPremium),
		)
		if err := s.repo.SetUserPremium(ctx, user.ID, ent.IsPremium); err != nil {
			// авторизация опирается на ent, а не на снимок
			s.log.Error("failed to sync premium flag", slog.String("op", op), sl.Err(err))
		} else if user.IsPremium {
			metrics.EntitlementDowngrades.Inc()
		}
		user.IsPremium = ent.IsPremium
	}
	return ent, nil
}

func effectiveStatus(sub *models.Subscription, now time.Time) models.SubscriptionStatus {
	if sub == nil {
		return models.StatusNone
	}
	if (sub.Status == models.StatusActive || sub.Status == models.StatusTrialing) && !sub.Entitled(now) {
		return models.StatusExpired
	}
	return sub.Status
}

// SetSubscription устанавливает подписку пользователя (ручное изменение
// администратором) и возвращает новые права.
func (s *Service) SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus,
	periodEnd *time.Time, provider string) (models.Entitlement, error) {
	const op = "entitlement.SetSubscription"

	if _, err := uuid.Parse(userID); err != nil {
		return models.Entitlement{}, apperr.ErrUserNotFoundAdmin
	}
	if !status.Valid() {
		return models.Entitlement{}, apperr.ErrInvalidSubscription
	}
	if provider == "" {
		provider = models.ProviderAdmin
	}

	err := s.repo.UpsertSubscription(ctx, models.Subscription{
		UserID:           userID,
		Status:           status,
		Provider:         provider,
		CurrentPeriodEnd: periodEnd,
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Entitlement{}, apperr.ErrUserNotFoundAdmin
	}
	if err != nil {
		return models.Entitlement{}, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateStats(ctx)

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.Entitlement{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.Resolve(ctx, user)
}

// Users возвращает страницу пользователей для администратора.
func (s *Service) Users(ctx context.Context, page models.Page) (*models.UserList, error) {
	const op = "entitlement.Users"

	if page.Page < 1 {
		page.Page = 1
	}
	switch {
	case page.Limit <= 0:
		page.Limit = DefaultUsersLimit
	case page.Limit > MaxUsersLimit:
		page.Limit = MaxUsersLimit
	}

	users, total, err := s.repo.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items := make([]models.PublicUser, 0, len(users))
	for i := range users {
		items = append(items, users[i].Public())
	}
	return &models.UserList{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// Stats возвращает статистику подписок; результат кешируется на statsTTL.
func (s *Service) Stats(ctx context.Context) (*models.PremiumStats, error) {
	const op = "entitlement.Stats"

	var cached models.PremiumStats
	found, err := s.cache.Get(ctx, statsCacheKey, &cached)
	if err != nil {
		s.log.Warn("stats cache unavailable", slog.String("op", op), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	stats, err := s.repo.PremiumStats(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats.ConversionRate = conversionRate(stats.PremiumUsers, stats.TotalUsers)

	if err := s.cache.Set(ctx, statsCacheKey, stats, s.statsTTL); err != nil {
		s.log.Warn("failed to cache stats", slog.String("op", op), sl.Err(err))
	}
	return stats, nil
}

// conversionRate доля премиум-пользователей в процентах с точностью до сотых.
func conversionRate(premium, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(premium)/float64(total)*10000) / 100
}

// Sweep приводит снимки is_premium в соответствие с подписками: истекшие
// подписки помечаются expired, расхождения исправляются. Возвращает
// пользователей, потерявших премиум: и по расхождению снимка, и по
// только что истекшей подписке.
func (s *Service) Sweep(ctx context.Context) ([]models.User, error) {
	const op = "entitlement.Sweep"
	now := s.now()

	expired, err := s.repo.ExpireLapsedSubscriptions(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	drift, err := s.repo.FindEntitlementDrift(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var downgraded []models.User
	notified := make(map[string]bool, len(expired))
	for _, u := range drift {
		premium := !u.IsPremium
		if err := s.repo.SetUserPremium(ctx, u.ID, premium); err != nil {
			s.log.Error("failed to sync premium flag",
				slog.String("op", op), slog.String("user_id", u.ID), sl.Err(err))
			continue
		}
		if !premium {
			u.IsPremium = false
			downgraded = append(downgraded, u)
			notified[u.ID] = true
			metrics.EntitlementDowngrades.Inc()
		}
	}

	// Resolve мог уже снять is_premium по запросу пользователя, тогда drift
	// его не видит, но подписка истекла только сейчас.
	for _, id := range expired {
		if notified[id] {
			continue
		}
		u, err := s.repo.GetUser(ctx, id)
		if err != nil {
			s.log.Error("failed to load expired user",
				slog.String("op", op), slog.String("user_id", id), sl.Err(err))
			continue
		}
		u.IsPremium = false
		downgraded = append(downgraded, *u)
		notified[id] = true
	}

	if len(expired) > 0 || len(drift) > 0 {
		s.invalidateStats(ctx)
	}
	s.log.Info("entitlement sweep finished",
		slog.String("op", op),
		slog.Int("expired_subscriptions", len(expired)),
		slog.Int("synced_users", len(drift)),
		slog.Int("downgraded_users", len(downgraded)),
	)
	return downgraded, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, statsCacheKey); err != nil {
		s.log.Warn("failed to invalidate stats cache", sl.Err(err))
	}
}
