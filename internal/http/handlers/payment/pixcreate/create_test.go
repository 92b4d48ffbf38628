package pixcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCharge(ctx context.Context, p *models.Principal, document string) (*models.PixCharge, error) {
	args := m.Called(ctx, p, document)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PixCharge), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPixCreateHandler_ServeHTTP(t *testing.T) {
	principal := &models.Principal{UserID: "u1", Name: "Maria", Email: "maria@example.com"}
	charge := &models.PixCharge{
		ID:          "c1",
		AmountCents: 1990,
		Status:      models.ChargePending,
		QRCode:      "00020126...",
		ExpiresAt:   time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		body           []byte
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "charge without document",
			body: nil,
			setupMocks: func(m *MockService) {
				m.On("CreateCharge", mock.Anything, principal, "").Return(charge, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"qrCode":"00020126..."`,
		},
		{
			name: "charge with document",
			body: []byte(`{"document":"12345678909"}`),
			setupMocks: func(m *MockService) {
				m.On("CreateCharge", mock.Anything, principal, "12345678909").Return(charge, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"amountCents":1990`,
		},
		{
			name:           "invalid document",
			body:           []byte(`{"document":"123"}`),
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"INVALID_DOCUMENT"`,
		},
		{
			name: "provider down",
			body: nil,
			setupMocks: func(m *MockService) {
				m.On("CreateCharge", mock.Anything, principal, "").
					Return(nil, fmt.Errorf("payment.CreateCharge: %w: %w", apperr.ErrPaymentProviderError, assert.AnError)).Once()
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"code":"PAYMENT_PROVIDER_ERROR"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMocks(svc)

			req := httptest.NewRequest(http.MethodPost, "/payments/pix", bytes.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-1")
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, principal))
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.NotContains(t, got, "userId")
			svc.AssertExpectations(t)
		})
	}
}
