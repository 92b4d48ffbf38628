package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData(data)

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Message)
	assert.Equal(t, data, resp.Data)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantUpgrade bool
	}{
		{"validation", apperr.ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL", apperr.ErrInvalidEmail.Message, false},
		{"wrapped auth", fmt.Errorf("auth.Login: %w", apperr.ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", false},
		{"premium", apperr.ErrPremiumRequired, http.StatusForbidden, "PREMIUM_REQUIRED", "premium subscription required", true},
		{"admin", apperr.ErrAdminRequired, http.StatusForbidden, "ADMIN_REQUIRED", "administrator access required", false},
		{"conflict", apperr.ErrUserExists, http.StatusConflict, "USER_EXISTS", apperr.ErrUserExists.Message, false},
		{"rate limit", apperr.ErrRateLimitExceeded, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", apperr.ErrRateLimitExceeded.Message, false},
		{"bare unavailable", fmt.Errorf("mailer.Send: %w", apperr.ErrUnavailable), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service is temporarily unavailable", false},
		{"database down", fmt.Errorf("storage.GetUser: %w: %w", apperr.ErrDatabaseUnavailable, errors.New("dial tcp: connection refused")), http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database is unavailable", false},
		{"cache down", fmt.Errorf("auth.Logout: %w: %w", apperr.ErrCacheUnavailable, errors.New("redis: connection refused")), http.StatusServiceUnavailable, "CACHE_UNAVAILABLE", "cache is unavailable", false},
		{"malformed uuid", fmt.Errorf("storage.GetTransaction: %w", apperr.ErrNotFound), http.StatusNotFound, "", "Not Found", false},
		{"unknown", errors.New("pq: syntax error at position 42"), http.StatusInternalServerError, "", "internal server error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantUpgrade, body.Upgrade)
		})
	}
}

func TestFail_WritesEnvelope(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)

	Fail(rec, req, log, apperr.ErrPremiumRequired)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "PREMIUM_REQUIRED", got["code"])
	assert.Equal(t, true, got["upgrade"])
	assert.NotContains(t, got, "data")
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name  string `validate:"required"`
		Email string `validate:"email"`
		Type  string `validate:"oneof=income expense"`
	}

	err := validator.New().Struct(TestStruct{Email: "nope", Type: "gift"})
	require.Error(t, err)

	resp := ValidationError("INVALID_TRANSACTION", err.(validator.ValidationErrors))
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_TRANSACTION", resp.Code)
	assert.Contains(t, resp.Message, "field Name is a required field")
	assert.Contains(t, resp.Message, "field Email must be a valid email")
	assert.Contains(t, resp.Message, "field Type must be one of [income expense]")
}
