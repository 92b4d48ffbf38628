package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
)

type Service interface {
	Delete(ctx context.Context, userID, id string) error
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
// @Summary Удалить операцию
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID операции"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "TRANSACTION_NOT_FOUND"
// @Router /transactions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), p.UserID, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("transaction deleted", slog.String("id", id))
	render.JSON(w, r, response.OKWithMessage("transaction deleted", nil))
}
