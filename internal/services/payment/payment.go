// Package payment оплата премиум-подписки через PIX.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/month"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
	"github.com/magabrotheeeer/app-despesas/internal/paymentprovider"
)

// Repository хранилище PIX-платежей.
type Repository interface {
	CreatePixCharge(ctx context.Context, c models.PixCharge) (*models.PixCharge, error)
	GetPixCharge(ctx context.Context, userID, id string) (*models.PixCharge, error)
	UpdatePixChargeStatus(ctx context.Context, id string, status models.ChargeStatus) (bool, error)
	ConfirmPixCharge(ctx context.Context, id string, paidAt time.Time, sub models.Subscription) (bool, error)
}

// Provider платежный провайдер PIX.
type Provider interface {
	CreateCharge(ctx context.Context, req paymentprovider.CreateChargeRequest) (*paymentprovider.Charge, error)
	GetCharge(ctx context.Context, id string) (*paymentprovider.Charge, error)
	CancelCharge(ctx context.Context, id string) (*paymentprovider.Charge, error)
}

// Options параметры тарифа.
type Options struct {
	PriceCents  int64
	ChargeTTL   time.Duration
	Description string
}

// PaymentService выставляет PIX-платежи и активирует подписку после оплаты.
type PaymentService struct {
	repo     Repository
	provider Provider
	opts     Options
	log      *slog.Logger
	now      func() time.Time
}

// New создает PaymentService.
func New(repo Repository, provider Provider, opts Options, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		provider: provider,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// CreateCharge выставляет платеж за месяц премиума. document (CPF) необязателен.
func (s *PaymentService) CreateCharge(ctx context.Context, p *models.Principal, document string) (*models.PixCharge, error) {
	const op = "payment.CreateCharge"

	id := uuid.NewString()
	pc, err := s.provider.CreateCharge(ctx, paymentprovider.CreateChargeRequest{
		ExternalID:  id,
		Amount:      s.opts.PriceCents,
		Description: s.opts.Description,
		ExpiresIn:   int64(s.opts.ChargeTTL.Seconds()),
		Customer: paymentprovider.Customer{
			Name:     p.Name,
			Email:    p.Email,
			Document: document,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrPaymentProviderError, err)
	}

	expiresAt := pc.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.opts.ChargeTTL)
	}
	charge, err := s.repo.CreatePixCharge(ctx, models.PixCharge{
		ID:               id,
		UserID:           p.UserID,
		ProviderChargeID: pc.ID,
		AmountCents:      s.opts.PriceCents,
		Status:           models.ChargePending,
		QRCode:           pc.QRCode,
		QRCodeImage:      pc.QRCodeImage,
		ExpiresAt:        expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("pix charge created",
		slog.String("op", op),
		slog.String("user_id", p.UserID),
		slog.String("charge_id", charge.ID),
		slog.String("provider_charge_id", pc.ID),
	)
	return charge, nil
}

// GetCharge возвращает платеж владельца, обновив статус у провайдера.
// Первая оплата активирует подписку на месяц.
func (s *PaymentService) GetCharge(ctx context.Context, p *models.Principal, id string) (*models.PixCharge, error) {
	const op = "payment.GetCharge"

	charge, err := s.getOwned(ctx, op, p.UserID, id)
	if err != nil {
		return nil, err
	}
	if charge.Status != models.ChargePending {
		return charge, nil
	}

	pc, err := s.provider.GetCharge(ctx, charge.ProviderChargeID)
	if err != nil {
		s.log.Warn("failed to refresh charge status, returning stored state",
			slog.String("op", op), slog.String("charge_id", charge.ID), sl.Err(err))
		return charge, nil
	}

	switch providerStatus(pc.Status) {
	case models.ChargePaid:
		paidAt := s.now()
		if pc.PaidAt != nil {
			paidAt = *pc.PaidAt
		}
		periodEnd := nextPeriodEnd(p, paidAt)
		confirmed, err := s.repo.ConfirmPixCharge(ctx, charge.ID, paidAt, models.Subscription{
			UserID:           p.UserID,
			Status:           models.StatusActive,
			Provider:         models.ProviderPIX,
			CurrentPeriodEnd: &periodEnd,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if confirmed {
			s.log.Info("pix charge paid, premium activated",
				slog.String("op", op),
				slog.String("user_id", p.UserID),
				slog.String("charge_id", charge.ID),
				slog.Time("period_end", periodEnd),
			)
		}
		charge.Status = models.ChargePaid
		charge.PaidAt = &paidAt
	case models.ChargeExpired, models.ChargeCancelled:
		status := providerStatus(pc.Status)
		if _, err := s.repo.UpdatePixChargeStatus(ctx, charge.ID, status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		charge.Status = status
	}
	return charge, nil
}

// CancelCharge отменяет платеж в состоянии pending.
func (s *PaymentService) CancelCharge(ctx context.Context, p *models.Principal, id string) (*models.PixCharge, error) {
	const op = "payment.CancelCharge"

	charge, err := s.getOwned(ctx, op, p.UserID, id)
	if err != nil {
		return nil, err
	}
	if charge.Status != models.ChargePending {
		return nil, apperr.ErrChargeNotPending
	}

	if _, err := s.provider.CancelCharge(ctx, charge.ProviderChargeID); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperr.ErrPaymentProviderError, err)
	}
	updated, err := s.repo.UpdatePixChargeStatus(ctx, charge.ID, models.ChargeCancelled)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !updated {
		return nil, apperr.ErrChargeNotPending
	}

	s.log.Info("pix charge cancelled", slog.String("op", op), slog.String("charge_id", charge.ID))
	charge.Status = models.ChargeCancelled
	return charge, nil
}

func (s *PaymentService) getOwned(ctx context.Context, op, userID, id string) (*models.PixCharge, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrChargeNotFound
	}
	charge, err := s.repo.GetPixCharge(ctx, userID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrChargeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return charge, nil
}

// nextPeriodEnd продлевает действующую подписку или начинает новый месяц с момента оплаты.
func nextPeriodEnd(p *models.Principal, paidAt time.Time) time.Time {
	start := paidAt
	if p.SubscriptionStatus == models.StatusActive && p.SubscriptionExpiresAt != nil &&
		p.SubscriptionExpiresAt.After(paidAt) {
		start = *p.SubscriptionExpiresAt
	}
	return month.Add(start, 1)
}

func providerStatus(s string) models.ChargeStatus {
	switch s {
	case "paid", "completed", "approved":
		return models.ChargePaid
	case "expired":
		return models.ChargeExpired
	case "cancelled", "canceled":
		return models.ChargeCancelled
	default:
		return models.ChargePending
	}
}
