// Package update реализует частичное изменение операции: поля, отсутствующие
// в теле запроса, не меняются.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/month"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Request изменяемые поля операции.
type Request struct {
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	AmountCents *int64  `json:"amountCents,omitempty" validate:"omitempty,gt=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=200"`
	Category    *string `json:"category,omitempty" validate:"omitempty,max=60"`
	Date        *string `json:"date,omitempty"`
}

type Service interface {
	Update(ctx context.Context, userID, id string, patch models.TransactionPatch) (*models.Transaction, error)
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
// @Summary Изменить операцию
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID операции"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Transaction}
// @Failure 400 {object} response.ErrorResponse "INVALID_TRANSACTION"
// @Failure 404 {object} response.ErrorResponse "TRANSACTION_NOT_FOUND"
// @Router /transactions/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.update"

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
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.InvalidBody(w, r)
		return
	}
	if !response.Validate(w, r, h.validate, "INVALID_TRANSACTION", req) {
		return
	}

	patch := models.TransactionPatch{
		AmountCents: req.AmountCents,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Type != nil {
		tt := models.TransactionType(*req.Type)
		patch.Type = &tt
	}
	if req.Date != nil {
		day, err := month.ParseDay(*req.Date)
		if err != nil {
			response.Fail(w, r, log, apperr.Validation("INVALID_TRANSACTION", err.Error()))
			return
		}
		patch.OccurredOn = &day
	}

	id := chi.URLParam(r, "id")
	updated, err := h.service.Update(r.Context(), p.UserID, id, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("transaction updated", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
