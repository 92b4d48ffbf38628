package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
	"github.com/magabrotheeeer/app-despesas/internal/paymentprovider"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePixCharge(ctx context.Context, c models.PixCharge) (*models.PixCharge, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixCharge), args.Error(1)
}

func (m *MockRepository) GetPixCharge(ctx context.Context, userID, id string) (*models.PixCharge, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixCharge), args.Error(1)
}

func (m *MockRepository) UpdatePixChargeStatus(ctx context.Context, id string, status models.ChargeStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ConfirmPixCharge(ctx context.Context, id string, paidAt time.Time, sub models.Subscription) (bool, error) {
	args := m.Called(ctx, id, paidAt, sub)
	return args.Bool(0), args.Error(1)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCharge(ctx context.Context, req paymentprovider.CreateChargeRequest) (*paymentprovider.Charge, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Charge), args.Error(1)
}

func (m *MockProvider) GetCharge(ctx context.Context, id string) (*paymentprovider.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Charge), args.Error(1)
}

func (m *MockProvider) CancelCharge(ctx context.Context, id string) (*paymentprovider.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Charge), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(repo *MockRepository, provider *MockProvider) *PaymentService {
	s := New(repo, provider, Options{PriceCents: 1990, ChargeTTL: time.Hour, Description: "Premium"}, newNoopLogger())
	s.now = func() time.Time { return fixedNow }
	return s
}

var principal = &models.Principal{UserID: "u-1", Name: "Ana", Email: "ana@example.com"}

func TestPaymentService_CreateCharge(t *testing.T) {
	repo, provider := new(MockRepository), new(MockProvider)
	s := newTestService(repo, provider)

	provider.On("CreateCharge", mock.Anything, mock.MatchedBy(func(r paymentprovider.CreateChargeRequest) bool {
		return r.Amount == 1990 && r.ExpiresIn == 3600 && r.Customer.Email == "ana@example.com" &&
			r.Customer.Document == "12345678909" && r.ExternalID != ""
	})).Return(&paymentprovider.Charge{ID: "ch_1", Status: "pending", QRCode: "000201"}, nil).Once()
	repo.On("CreatePixCharge", mock.Anything, mock.MatchedBy(func(c models.PixCharge) bool {
		return c.UserID == "u-1" && c.ProviderChargeID == "ch_1" &&
			c.Status == models.ChargePending && c.ExpiresAt.Equal(fixedNow.Add(time.Hour))
	})).Return(&models.PixCharge{ID: "c-1", Status: models.ChargePending}, nil).Once()

	charge, err := s.CreateCharge(context.Background(), principal, "12345678909")
	require.NoError(t, err)
	assert.Equal(t, "c-1", charge.ID)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestPaymentService_CreateCharge_ProviderDown(t *testing.T) {
	repo, provider := new(MockRepository), new(MockProvider)
	provider.On("CreateCharge", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	_, err := newTestService(repo, provider).CreateCharge(context.Background(), principal, "")
	assert.ErrorIs(t, err, apperr.ErrPaymentProviderError)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	repo.AssertNotCalled(t, "CreatePixCharge", mock.Anything, mock.Anything)
}

func TestPaymentService_GetCharge(t *testing.T) {
	id := uuid.NewString()
	paidAt := fixedNow.Add(-time.Minute)

	tests := []struct {
		name       string
		setupMocks func(r *MockRepository, p *MockProvider)
		wantStatus models.ChargeStatus
		wantErr    error
	}{
		{
			name: "paid activates premium for a month",
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).
					Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
				p.On("GetCharge", mock.Anything, "ch_1").
					Return(&paymentprovider.Charge{ID: "ch_1", Status: "paid", PaidAt: &paidAt}, nil).Once()
				r.On("ConfirmPixCharge", mock.Anything, id, paidAt, mock.MatchedBy(func(sub models.Subscription) bool {
					return sub.Status == models.StatusActive && sub.Provider == models.ProviderPIX &&
						sub.CurrentPeriodEnd.Equal(paidAt.AddDate(0, 1, 0))
				})).Return(true, nil).Once()
			},
			wantStatus: models.ChargePaid,
		},
		{
			name: "still pending",
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).
					Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
				p.On("GetCharge", mock.Anything, "ch_1").
					Return(&paymentprovider.Charge{ID: "ch_1", Status: "pending"}, nil).Once()
			},
			wantStatus: models.ChargePending,
		},
		{
			name: "expired at provider",
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).
					Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
				p.On("GetCharge", mock.Anything, "ch_1").
					Return(&paymentprovider.Charge{ID: "ch_1", Status: "expired"}, nil).Once()
				r.On("UpdatePixChargeStatus", mock.Anything, id, models.ChargeExpired).Return(true, nil).Once()
			},
			wantStatus: models.ChargeExpired,
		},
		{
			name: "final state is not refreshed",
			setupMocks: func(r *MockRepository, _ *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).
					Return(&models.PixCharge{ID: id, Status: models.ChargePaid}, nil).Once()
			},
			wantStatus: models.ChargePaid,
		},
		{
			name: "provider unavailable returns stored state",
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).
					Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
				p.On("GetCharge", mock.Anything, "ch_1").Return(nil, errors.New("timeout")).Once()
			},
			wantStatus: models.ChargePending,
		},
		{
			name: "foreign charge",
			setupMocks: func(r *MockRepository, _ *MockProvider) {
				r.On("GetPixCharge", mock.Anything, "u-1", id).Return(nil, apperr.ErrNotFound).Once()
			},
			wantErr: apperr.ErrChargeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, provider := new(MockRepository), new(MockProvider)
			tt.setupMocks(repo, provider)

			charge, err := newTestService(repo, provider).GetCharge(context.Background(), principal, id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, charge.Status)
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestPaymentService_GetCharge_InvalidID(t *testing.T) {
	_, err := newTestService(new(MockRepository), new(MockProvider)).GetCharge(context.Background(), principal, "42")
	assert.ErrorIs(t, err, apperr.ErrChargeNotFound)
}

func TestNextPeriodEnd_ExtendsActiveSubscription(t *testing.T) {
	current := fixedNow.Add(10 * 24 * time.Hour)
	p := &models.Principal{SubscriptionStatus: models.StatusActive, SubscriptionExpiresAt: &current}
	assert.Equal(t, current.AddDate(0, 1, 0), nextPeriodEnd(p, fixedNow))

	trialing := &models.Principal{SubscriptionStatus: models.StatusTrialing, SubscriptionExpiresAt: &current}
	assert.Equal(t, fixedNow.AddDate(0, 1, 0), nextPeriodEnd(trialing, fixedNow))
}

func TestPaymentService_CancelCharge(t *testing.T) {
	id := uuid.NewString()

	t.Run("pending charge", func(t *testing.T) {
		repo, provider := new(MockRepository), new(MockProvider)
		repo.On("GetPixCharge", mock.Anything, "u-1", id).
			Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
		provider.On("CancelCharge", mock.Anything, "ch_1").
			Return(&paymentprovider.Charge{ID: "ch_1", Status: "cancelled"}, nil).Once()
		repo.On("UpdatePixChargeStatus", mock.Anything, id, models.ChargeCancelled).Return(true, nil).Once()

		charge, err := newTestService(repo, provider).CancelCharge(context.Background(), principal, id)
		require.NoError(t, err)
		assert.Equal(t, models.ChargeCancelled, charge.Status)
	})

	t.Run("already paid", func(t *testing.T) {
		repo, provider := new(MockRepository), new(MockProvider)
		repo.On("GetPixCharge", mock.Anything, "u-1", id).
			Return(&models.PixCharge{ID: id, Status: models.ChargePaid}, nil).Once()

		_, err := newTestService(repo, provider).CancelCharge(context.Background(), principal, id)
		assert.ErrorIs(t, err, apperr.ErrChargeNotPending)
		provider.AssertNotCalled(t, "CancelCharge", mock.Anything, mock.Anything)
	})

	t.Run("paid concurrently", func(t *testing.T) {
		repo, provider := new(MockRepository), new(MockProvider)
		repo.On("GetPixCharge", mock.Anything, "u-1", id).
			Return(&models.PixCharge{ID: id, ProviderChargeID: "ch_1", Status: models.ChargePending}, nil).Once()
		provider.On("CancelCharge", mock.Anything, "ch_1").
			Return(&paymentprovider.Charge{ID: "ch_1"}, nil).Once()
		repo.On("UpdatePixChargeStatus", mock.Anything, id, models.ChargeCancelled).Return(false, nil).Once()

		_, err := newTestService(repo, provider).CancelCharge(context.Background(), principal, id)
		assert.ErrorIs(t, err, apperr.ErrChargeNotPending)
	})
}
