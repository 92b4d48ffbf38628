// Package pixcreate выставляет PIX-платеж за месяц премиум-подписки.
//
// В ответе возвращается QR-код (copia e cola) и срок действия платежа.
// Статус оплаты клиент узнает через GET /payments/pix/{id}.
package pixcreate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Request необязательные данные плательщика.
type Request struct {
	// Document CPF плательщика, только цифры.
	Document string `json:"document,omitempty" validate:"omitempty,numeric,len=11" example:"12345678909"`
}

type Service interface {
	CreateCharge(ctx context.Context, p *models.Principal, document string) (*models.PixCharge, error)
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
// @Summary Создать PIX-платеж
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request false "Данные плательщика"
// @Success 201 {object} response.Response{data=models.PixCharge}
// @Failure 400 {object} response.ErrorResponse "INVALID_DOCUMENT"
// @Failure 401 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse "PAYMENT_PROVIDER_ERROR"
// @Router /payments/pix [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.pixcreate"

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
	if !response.Validate(w, r, h.validate, "INVALID_DOCUMENT", req) {
		return
	}

	charge, err := h.service.CreateCharge(r.Context(), p, req.Document)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("pix charge created", slog.String("charge_id", charge.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(charge))
}
