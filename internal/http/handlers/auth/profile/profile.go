// Package profile отдает текущего пользователя и состояние его подписки.
package profile

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
	"github.com/magabrotheeeer/app-despesas/internal/services/auth"
)

type Service interface {
	Profile(ctx context.Context, p *models.Principal) (*auth.Profile, error)
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
// @Summary Профиль пользователя
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=auth.Profile}
// @Failure 401 {object} response.ErrorResponse "TOKEN_REQUIRED, INVALID_TOKEN, TOKEN_EXPIRED, USER_NOT_FOUND"
// @Router /auth/profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	prof, err := h.service.Profile(r.Context(), p)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(prof))
}
