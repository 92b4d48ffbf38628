// Package list отдает страницу операций пользователя с итогами по фильтру.
//
// Параметры запроса: type (income|expense), from и to (YYYY-MM-DD, включительно),
// search (подстрока описания или категории), page и limit (не больше 100).
package list

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
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
	List(ctx context.Context, userID string, f models.TransactionFilter) (*models.TransactionList, error)
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
// @Summary Список операций
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "income или expense"
// @Param from query string false "Дата начала, YYYY-MM-DD"
// @Param to query string false "Дата окончания, YYYY-MM-DD"
// @Param search query string false "Поиск по описанию и категории"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(50)
// @Success 200 {object} response.Response{data=models.TransactionList}
// @Failure 400 {object} response.ErrorResponse "INVALID_FILTER"
// @Failure 403 {object} response.ErrorResponse "PREMIUM_REQUIRED"
// @Router /transactions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.transaction.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		response.Fail(w, r, log, apperr.ErrTokenRequired)
		return
	}

	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	res, err := h.service.List(r.Context(), p.UserID, f)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(res))
}

// ParseFilter разбирает параметры фильтра из строки запроса.
func ParseFilter(q url.Values) (models.TransactionFilter, error) {
	var f models.TransactionFilter

	if v := q.Get("type"); v != "" {
		tt := models.TransactionType(v)
		if tt != models.TypeIncome && tt != models.TypeExpense {
			return f, apperr.Validation("INVALID_FILTER", "type must be income or expense")
		}
		f.Type = &tt
	}

	var err error
	if f.From, err = parseDay(q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseDay(q.Get("to")); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(q.Get("search"))

	if f.Page.Page, err = parseInt(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.Limit, err = parseInt(q.Get("limit"), "limit"); err != nil {
		return f, err
	}
	return f, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := month.ParseDay(s)
	if err != nil {
		return nil, apperr.Validation("INVALID_FILTER", err.Error())
	}
	return &d, nil
}

func parseInt(s, name string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.Validation("INVALID_FILTER", name+" must be a positive integer")
	}
	return n, nil
}
