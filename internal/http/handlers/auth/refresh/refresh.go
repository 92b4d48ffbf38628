// Package refresh реализует обмен refresh-токена на новую пару токенов.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/services/auth"
)

// Request тело запроса обновления.
type Request struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Service описывает ротацию refresh-токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление токенов
// @Description Отзывает предъявленный refresh-токен и выдает новую пару. Повторное предъявление отозванного токена отзывает все сессии пользователя.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Refresh-токен"
// @Success 200 {object} response.Response{data=auth.Session}
// @Failure 400 {object} response.ErrorResponse "MISSING_FIELDS"
// @Failure 401 {object} response.ErrorResponse "INVALID_REFRESH_TOKEN"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}
	if !response.Validate(w, r, h.validate, "MISSING_FIELDS", req) {
		return
	}

	sess, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("tokens refreshed", slog.String("user_id", sess.User.ID))
	render.JSON(w, r, response.OKWithData(sess))
}
