package create

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userID string, t models.Transaction) (*models.Transaction, error) {
	args := m.Called(ctx, userID, t)
	res, _ := args.Get(0).(*models.Transaction)
	return res, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "created",
			body: `{"type":"expense","amountCents":4590,"description":"Mercado","category":"food","date":"2025-03-07"}`,
			setupMock: func(m *MockService) {
				want := models.Transaction{
					Type:        models.TypeExpense,
					AmountCents: 4590,
					Description: "Mercado",
					Category:    "food",
					OccurredOn:  time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
				}
				created := want
				created.ID = "tx-1"
				m.On("Create", mock.Anything, "u1", want).Return(&created, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad type",
			body:       `{"type":"gift","amountCents":100,"description":"x","date":"2025-03-07"}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_TRANSACTION",
		},
		{
			name:       "zero amount",
			body:       `{"type":"income","amountCents":0,"description":"x","date":"2025-03-07"}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_TRANSACTION",
		},
		{
			name:       "bad date",
			body:       `{"type":"income","amountCents":100,"description":"x","date":"07/03/2025"}`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_TRANSACTION",
		},
		{
			name:       "malformed json",
			body:       `{"type":`,
			setupMock:  func(*MockService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_BODY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), &models.Principal{UserID: "u1", IsPremium: true}))
			rec := httptest.NewRecorder()

			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, got["code"])
			} else {
				assert.Equal(t, "tx-1", got["data"].(map[string]any)["id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
