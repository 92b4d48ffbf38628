// Package pixread отдает PIX-платеж владельцу и синхронизирует его статус
// с провайдером.
package pixread

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
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type Service interface {
	GetCharge(ctx context.Context, p *models.Principal, id string) (*models.PixCharge, error)
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
// @Summary Статус PIX-платежа
// @Description Первая оплата активирует премиум на месяц.
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID платежа"
// @Success 200 {object} response.Response{data=models.PixCharge}
// @Failure 404 {object} response.ErrorResponse "CHARGE_NOT_FOUND"
// @Router /payments/pix/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.pixread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	charge, err := h.service.GetCharge(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(charge))
}
