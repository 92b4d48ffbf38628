// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успехе возвращается access-токен, refresh-токен и публичные поля
// пользователя. Неизвестный email и неверный пароль дают одинаковый ответ 401.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/services/auth"
)

// Request учетные данные пользователя.
type Request struct {
	Email    string `json:"email" example:"maria@example.com"`
	Password string `json:"password" example:"s3cretpass"`
}

// Service описывает вход пользователя.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// Handler обрабатывает POST /auth/login.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль. Возвращает JWT и refresh-токен.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=auth.Session}
// @Failure 400 {object} response.ErrorResponse "MISSING_FIELDS"
// @Failure 401 {object} response.ErrorResponse "INVALID_CREDENTIALS"
// @Failure 429 {object} response.ErrorResponse "RATE_LIMIT_EXCEEDED"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("login success", slog.String("user_id", sess.User.ID))
	render.JSON(w, r, response.OKWithMessage("login successful", sess))
}
