// Package logout реализует выход: отзыв текущего access-токена и,
// если передан, refresh-токена.
package logout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Request необязательное тело запроса.
type Request struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

type Service interface {
	Logout(ctx context.Context, p *models.Principal, refreshToken string) error
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
// @Summary Выход
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request false "Refresh-токен для отзыва"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Info("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}

	if err := h.service.Logout(r.Context(), p, req.RefreshToken); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithMessage("logged out", nil))
}
