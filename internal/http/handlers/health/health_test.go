package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	New(slog.New(slog.NewTextHandler(io.Discard, nil))).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestDBHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("up", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := NewDB(logger, pingerFunc(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "ping must be bounded")
			return nil
		}))
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := NewDB(logger, pingerFunc(func(context.Context) error { return errors.New("connection refused") }))
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"DATABASE_UNAVAILABLE"`)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}
