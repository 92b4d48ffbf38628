package list

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
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

func (m *MockService) List(ctx context.Context, userID string, f models.TransactionFilter) (*models.TransactionList, error) {
	args := m.Called(ctx, userID, f)
	res, _ := args.Get(0).(*models.TransactionList)
	return res, args.Error(1)
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		"type":   {"expense"},
		"from":   {"2025-03-01"},
		"to":     {"2025-03-31"},
		"search": {"  mercado "},
		"page":   {"2"},
		"limit":  {"20"},
	}
	f, err := ParseFilter(q)
	require.NoError(t, err)
	require.NotNil(t, f.Type)
	assert.Equal(t, models.TypeExpense, *f.Type)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), *f.To)
	assert.Equal(t, "mercado", f.Search)
	assert.Equal(t, 2, f.Page.Page)
	assert.Equal(t, 20, f.Limit)

	empty, err := ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, empty.Type)
	assert.Nil(t, empty.From)
	assert.Zero(t, empty.Limit)
}

func TestParseFilter_Invalid(t *testing.T) {
	for _, q := range []url.Values{
		{"type": {"gift"}},
		{"from": {"yesterday"}},
		{"page": {"-1"}},
		{"limit": {"ten"}},
	} {
		_, err := ParseFilter(q)
		assert.Error(t, err, q.Encode())
	}
}

func TestListHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("List", mock.Anything, "u1", mock.AnythingOfType("models.TransactionFilter")).Return(&models.TransactionList{
		Items:      []models.Transaction{{ID: "tx-1"}},
		Pagination: models.Pagination{Page: 1, Limit: 50, Total: 1, TotalPages: 1},
		Summary:    models.Totals{TotalIncome: 1000, TotalExpense: 400, Balance: 600},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/transactions?type=income", nil)
	req = req.WithContext(middlewarectx.WithPrincipal(req.Context(), &models.Principal{UserID: "u1"}))
	rec := httptest.NewRecorder()

	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":600`)
	assert.Contains(t, rec.Body.String(), `"totalPages":1`)
	svc.AssertExpectations(t)

	bad := httptest.NewRequest(http.MethodGet, "/transactions?type=gift", nil)
	bad = bad.WithContext(middlewarectx.WithPrincipal(bad.Context(), &models.Principal{UserID: "u1"}))
	rec = httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP(rec, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_FILTER")
}
