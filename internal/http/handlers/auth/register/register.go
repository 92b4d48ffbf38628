// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Проверка формата имени, email и пароля выполняется сервисом аутентификации,
// обработчик только декодирует тело и переводит ошибки в HTTP-ответ.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Request входные данные для регистрации.
type Request struct {
	Name     string `json:"name" example:"Maria Silva"`
	Email    string `json:"email" example:"maria@example.com"`
	Password string `json:"password" example:"s3cretpass"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, name, email, password string) (models.PublicUser, error)
}

// Handler обрабатывает POST /auth/register.
type Handler struct {
	log     *slog.Logger
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
// @Summary Регистрация пользователя
// @Description Создает пользователя. Email хранится в нижнем регистре и уникален без учета регистра.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response{data=models.PublicUser}
// @Failure 400 {object} response.ErrorResponse "MISSING_FIELDS, INVALID_NAME, INVALID_EMAIL, INVALID_PASSWORD"
// @Failure 409 {object} response.ErrorResponse "USER_EXISTS"
// @Failure 429 {object} response.ErrorResponse "RATE_LIMIT_EXCEEDED"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithMessage("user registered successfully", user))
}
