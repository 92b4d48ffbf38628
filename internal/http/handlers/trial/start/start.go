// Package start запускает пробный премиум-период пользователя.
package start

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type Service interface {
	Start(ctx context.Context, userID string) (*models.TrialStatus, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Начать пробный период
// @Description Выдает премиум-доступ на 14 дней. Пробный период можно использовать один раз.
// @Tags Trial
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response{data=models.TrialStatus}
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "TRIAL_ALREADY_USED, SUBSCRIPTION_ACTIVE"
// @Router /trial/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.start"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	status, err := h.service.Start(r.Context(), p.UserID)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("trial started", slog.String("user_id", p.UserID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("trial started", status))
}
