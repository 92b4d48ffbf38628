// Package services содержит фоновые задачи планировщика: сверку премиум-доступа
// и напоминания об окончании пробного периода.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/app-despesas/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Sweeper снимает премиум с пользователей, у которых он истек.
type Sweeper interface {
	Sweep(ctx context.Context) ([]models.User, error)
}

// Reminders находит пробные периоды, о которых пора напомнить.
type Reminders interface {
	DueReminders(ctx context.Context) ([]models.TrialReminder, error)
}

// ReminderMarks хранит метки отправленных напоминаний, чтобы перезапуск
// планировщика не рассылал их повторно.
type ReminderMarks interface {
	MarkReminderSent(ctx context.Context, userID string, daysRemaining int) (bool, error)
	ClearReminderSent(ctx context.Context, userID string, daysRemaining int) error
}

// Publisher отправляет уведомления в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// ExpiredNotice уведомление о потере премиум-доступа.
type ExpiredNotice struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurredAt"`
}

// SchedulerService периодически запускает задачи и публикует уведомления.
type SchedulerService struct {
	sweeper   Sweeper
	reminders Reminders
	marks     ReminderMarks
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(sweeper Sweeper, reminders Reminders, marks ReminderMarks, publisher Publisher, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		sweeper:   sweeper,
		reminders: reminders,
		marks:     marks,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// RunSweeper выполняет сверку сразу и затем каждые interval, пока ctx не отменен.
func (s *SchedulerService) RunSweeper(ctx context.Context, interval time.Duration) {
	s.every(ctx, interval, s.runSweep)
}

// RunReminders рассылает напоминания сразу и затем каждые interval.
func (s *SchedulerService) RunReminders(ctx context.Context, interval time.Duration) {
	s.every(ctx, interval, s.runReminders)
}

func (s *SchedulerService) every(ctx context.Context, interval time.Duration, job func(context.Context)) {
	job(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}

func (s *SchedulerService) runSweep(ctx context.Context) {
	s.log.Info("starting premium entitlement sweep")
	downgraded, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.Error("failed to sweep entitlements", sl.Err(err))
		return
	}
	if len(downgraded) == 0 {
		s.log.Info("no premium downgrades")
		return
	}
	s.log.Info("premium downgraded", "count", len(downgraded))
	for _, u := range downgraded {
		notice := ExpiredNotice{
			UserID:     u.ID,
			Email:      u.Email,
			Name:       u.Name,
			Reason:     "subscription_expired",
			OccurredAt: s.now().UTC(),
		}
		if err := s.publisher.Publish(rabbitmq.KeySubscriptionExpired, notice); err != nil {
			s.log.Error("failed to publish message", slog.String("user_id", u.ID), sl.Err(err))
		}
	}
}

func (s *SchedulerService) runReminders(ctx context.Context) {
	s.log.Info("starting trial reminders")
	reminders, err := s.reminders.DueReminders(ctx)
	if err != nil {
		s.log.Error("failed to find trial reminders", sl.Err(err))
		return
	}
	if len(reminders) == 0 {
		s.log.Info("no trial reminders due")
		return
	}
	s.log.Info("found trial reminders", "count", len(reminders))
	for _, r := range reminders {
		first, err := s.marks.MarkReminderSent(ctx, r.UserID, r.DaysRemaining)
		if err != nil {
			s.log.Warn("failed to mark trial reminder, sending anyway", slog.String("user_id", r.UserID), sl.Err(err))
			first = true
		}
		if !first {
			s.log.Debug("trial reminder already sent", slog.String("user_id", r.UserID), slog.Int("days", r.DaysRemaining))
			continue
		}
		if err := s.publisher.Publish(rabbitmq.KeyTrialReminder, r); err != nil {
			s.log.Error("failed to publish message", slog.String("user_id", r.UserID), sl.Err(err))
			if err := s.marks.ClearReminderSent(ctx, r.UserID, r.DaysRemaining); err != nil {
				s.log.Error("failed to clear trial reminder mark", slog.String("user_id", r.UserID), sl.Err(err))
			}
		}
	}
}
