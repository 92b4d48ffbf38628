// Package subscription позволяет администратору вручную установить
// подписку пользователя.
package subscription

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Request новое состояние подписки. Пустой CurrentPeriodEnd означает бессрочную подписку.
type Request struct {
	Status           string     `json:"status" validate:"required,oneof=active trialing canceled past_due expired" example:"active"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd,omitempty" example:"2025-12-31T23:59:59Z"`
	Provider         string     `json:"provider,omitempty" validate:"omitempty,oneof=admin trial pix" example:"admin"`
}

type Service interface {
	SetSubscription(ctx context.Context, userID string, status models.SubscriptionStatus,
		periodEnd *time.Time, provider string) (models.Entitlement, error)
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
// @Summary Установить подписку пользователя
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body Request true "Подписка"
// @Success 200 {object} response.Response{data=models.Entitlement}
// @Failure 400 {object} response.ErrorResponse "INVALID_SUBSCRIPTION"
// @Failure 403 {object} response.ErrorResponse "ADMIN_REQUIRED"
// @Failure 404 {object} response.ErrorResponse "USER_NOT_FOUND"
// @Router /admin/users/{id}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscription"

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
	if !response.Validate(w, r, h.validate, "INVALID_SUBSCRIPTION", req) {
		return
	}

	userID := chi.URLParam(r, "id")
	ent, err := h.service.SetSubscription(r.Context(), userID, models.SubscriptionStatus(req.Status),
		req.CurrentPeriodEnd, req.Provider)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	attrs := []any{slog.String("user_id", userID), slog.String("status", req.Status)}
	if admin, ok := middlewarectx.PrincipalFromContext(r.Context()); ok {
		attrs = append(attrs, slog.String("admin_id", admin.UserID))
	}
	log.Info("subscription set by admin", attrs...)
	render.JSON(w, r, response.OKWithMessage("subscription updated", ent))
}
