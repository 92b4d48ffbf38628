// Package health содержит проверки живости сервиса и доступности базы данных.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
)

const pingTimeout = 2 * time.Second

// Status тело ответа проверки.
type Status struct {
	Status    string    `json:"status" example:"ok"`
	Service   string    `json:"service,omitempty" example:"app-despesas-api"`
	Timestamp time.Time `json:"timestamp"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response{data=Status}
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(Status{
		Status:    "ok",
		Service:   "app-despesas-api",
		Timestamp: time.Now().UTC(),
	}))
}

// Pinger проверяет соединение с базой.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBHandler проверяет доступность базы данных.
type DBHandler struct {
	log *slog.Logger
	db  Pinger
}

func NewDB(log *slog.Logger, db Pinger) *DBHandler {
	return &DBHandler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверка базы данных
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response{data=Status}
// @Failure 503 {object} response.ErrorResponse "DATABASE_UNAVAILABLE"
// @Router /health/db [get]
func (h *DBHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health.db"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error("database ping failed", sl.Err(err))
		response.Fail(w, r, log, apperr.ErrDatabaseUnavailable)
		return
	}
	render.JSON(w, r, response.OKWithData(Status{Status: "ok", Timestamp: time.Now().UTC()}))
}
