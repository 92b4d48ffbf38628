// Package summary отдает итоги доходов и расходов за период и разбивку
// расходов по категориям.
package summary

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/app-despesas/internal/http/middlewarectx"
	"github.com/magabrotheeeer/app-despesas/internal/http/response"
	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/month"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

type Service interface {
	Summary(ctx context.Context, userID string, from, to *time.Time) (*models.Report, error)
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
// @Summary Сводка за период
// @Description Период задается параметром month (YYYY-MM) или парой from/to. Без параметров сводка за все время.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param month query string false "Месяц, YYYY-MM"
// @Param from query string false "Дата начала, YYYY-MM-DD"
// @Param to query string false "Дата окончания, YYYY-MM-DD"
// @Success 200 {object} response.Response{data=models.Report}
// @Failure 400 {object} response.ErrorResponse "INVALID_PERIOD"
// @Failure 403 {object} response.ErrorResponse "PREMIUM_REQUIRED"
// @Router /reports/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.report.summary"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	from, to, err := period(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	rep, err := h.service.Summary(r.Context(), p.UserID, from, to)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(rep))
}

func period(r *http.Request) (from, to *time.Time, err error) {
	q := r.URL.Query()
	if m := q.Get("month"); m != "" {
		f, t, err := month.Bounds(m)
		if err != nil {
			return nil, nil, apperr.Validation("INVALID_PERIOD", err.Error())
		}
		return &f, &t, nil
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &from}, {"to", &to}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		d, err := month.ParseDay(v)
		if err != nil {
			return nil, nil, apperr.Validation("INVALID_PERIOD", err.Error())
		}
		*p.dst = &d
	}
	return from, to, nil
}
