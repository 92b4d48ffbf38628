// Package users отдает администратору постраничный список пользователей.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type Service interface {
	Users(ctx context.Context, page models.Page) (*models.UserList, error)
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
// @Summary Список пользователей
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(20)
// @Success 200 {object} response.Response{data=models.UserList}
// @Failure 403 {object} response.ErrorResponse "ADMIN_REQUIRED"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var page models.Page
	for _, p := range []struct {
		key string
		dst *int
	}{{"page", &page.Page}, {"limit", &page.Limit}} {
		v := r.URL.Query().Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.Fail(w, r, log, apperr.Validation("INVALID_FILTER", p.key+" must be a positive integer"))
			return
		}
		*p.dst = n
	}

	list, err := h.service.Users(r.Context(), page)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(list))
}
