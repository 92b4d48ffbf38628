// Package trial управляет пробным премиум-периодом.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

const day = 24 * time.Hour

// Repository хранилище пробных периодов.
type Repository interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	StartTrial(ctx context.Context, userID string, startedAt, endsAt time.Time) error
	FindTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]models.User, error)
}

// Service запускает пробный период и сообщает его состояние.
type Service struct {
	repo         Repository
	duration     time.Duration
	reminderDays []int
	log          *slog.Logger
	now          func() time.Time
}

// NewService создает Service.
func NewService(repo Repository, duration time.Duration, reminderDays []int, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		duration:     duration,
		reminderDays: reminderDays,
		log:          log,
		now:          time.Now,
	}
}

// Start запускает пробный период. Пробный период дается один раз и не
// запускается, если премиум уже действует.
func (s *Service) Start(ctx context.Context, userID string) (*models.TrialStatus, error) {
	const op = "trial.Start"

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.TrialStartedAt != nil {
		return nil, apperr.ErrTrialAlreadyUsed
	}

	now := s.now()
	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub.Entitled(now) {
		return nil, apperr.ErrSubscriptionActive
	}

	end := now.Add(s.duration)
	err = s.repo.StartTrial(ctx, userID, now, end)
	if errors.Is(err, apperr.ErrConflict) {
		// параллельный запуск успел раньше
		return nil, apperr.ErrTrialAlreadyUsed
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("trial started",
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Time("ends_at", end),
	)
	return status(now, now, end), nil
}

// Status возвращает состояние пробного периода пользователя.
func (s *Service) Status(ctx context.Context, userID string) (*models.TrialStatus, error) {
	const op = "trial.Status"

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.TrialStartedAt == nil || user.TrialEndsAt == nil {
		return nil, apperr.ErrTrialNotFound
	}
	return status(s.now(), *user.TrialStartedAt, *user.TrialEndsAt), nil
}

func status(now, start, end time.Time) *models.TrialStatus {
	st := &models.TrialStatus{
		Used:      true,
		StartedAt: &start,
		EndsAt:    &end,
	}
	if !end.After(now) {
		st.Expired = true
		return st
	}
	st.DaysRemaining = daysUntil(now, end)
	return st
}

// daysUntil число дней до end с округлением вверх.
func daysUntil(now, end time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

// DueReminders возвращает напоминания для пробных периодов, до конца которых
// осталось ровно d дней (d из reminderDays, округление вверх, как в Status).
// Окно для d: (now+(d-1) дней, now+d дней].
func (s *Service) DueReminders(ctx context.Context) ([]models.TrialReminder, error) {
	const op = "trial.DueReminders"
	now := s.now()

	var reminders []models.TrialReminder
	seen := make(map[string]struct{})
	for _, d := range s.reminderDays {
		if d <= 0 {
			continue
		}
		from := now.Add(time.Duration(d-1) * day)
		to := now.Add(time.Duration(d) * day)
		users, err := s.repo.FindTrialsEndingBetween(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, u := range users {
			if u.TrialEndsAt == nil {
				continue
			}
			if _, ok := seen[u.ID]; ok {
				continue
			}
			seen[u.ID] = struct{}{}
			reminders = append(reminders, models.TrialReminder{
				UserID:        u.ID,
				Email:         u.Email,
				Name:          u.Name,
				EndsAt:        *u.TrialEndsAt,
				DaysRemaining: d,
			})
		}
	}
	return reminders, nil
}
