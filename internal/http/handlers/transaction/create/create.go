// Package create реализует HTTP-обработчик создания операции (доход или расход).
package create

import (
	"context"
	"log/slog"
	"net/http"

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

// Request входные данные операции. Сумма в центах.
type Request struct {
	Type        string `json:"type" validate:"required,oneof=income expense" example:"expense"`
	AmountCents int64  `json:"amountCents" validate:"required,gt=0" example:"4590"`
	Description string `json:"description" validate:"required,max=200" example:"Mercado"`
	Category    string `json:"category,omitempty" validate:"max=60" example:"food"`
	Date        string `json:"date" validate:"required" example:"2025-03-07"`
}

type Service interface {
	Create(ctx context.Context, userID string, t models.Transaction) (*models.Transaction, error)
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
// @Summary Создать операцию
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Операция"
// @Success 201 {object} response.Response{data=models.Transaction}
// @Failure 400 {object} response.ErrorResponse "INVALID_TRANSACTION"
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "PREMIUM_REQUIRED"
// @Router /transactions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.create"

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

	day, err := month.ParseDay(req.Date)
	if err != nil {
		response.Fail(w, r, log, apperr.Validation("INVALID_TRANSACTION", err.Error()))
		return
	}

	created, err := h.service.Create(r.Context(), p.UserID, models.Transaction{
		Type:        models.TransactionType(req.Type),
		AmountCents: req.AmountCents,
		Description: req.Description,
		Category:    req.Category,
		OccurredOn:  day,
	})
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("transaction created", slog.String("id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}
