// Package transaction реализует учет доходов и расходов пользователя (премиум-функция).
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// Ограничения списка и полей операции.
const (
	DefaultLimit      = 50
	MaxLimit          = 100
	maxDescriptionLen = 200
	maxCategoryLen    = 60
)

// Repository хранилище операций.
type Repository interface {
	CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, int, error)
	TransactionTotals(ctx context.Context, userID string, f models.TransactionFilter) (models.Totals, error)
	ExpensesByCategory(ctx context.Context, userID string, from, to *time.Time) ([]models.CategoryTotal, error)
	UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// Service операции пользователя.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create проверяет и сохраняет новую операцию пользователя userID.
func (s *Service) Create(ctx context.Context, userID string, t models.Transaction) (*models.Transaction, error) {
	const op = "transaction.Create"

	t.UserID = userID
	normalize(&t)
	if err := validate(t); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("transaction created", slog.String("op", op), slog.String("id", created.ID))
	return created, nil
}

// Get возвращает операцию пользователя.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	const op = "transaction.Get"
	if !validID(id) {
		return nil, apperr.ErrTransactionNotFound
	}
	t, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, notFound(op, err)
	}
	return t, nil
}

// List возвращает страницу операций и итоги по всему фильтру.
func (s *Service) List(ctx context.Context, userID string, f models.TransactionFilter) (*models.TransactionList, error) {
	const op = "transaction.List"

	if err := normalizeFilter(&f); err != nil {
		return nil, err
	}

	items, total, err := s.repo.ListTransactions(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	totals, err := s.repo.TransactionTotals(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.TransactionList{
		Items:      items,
		Pagination: models.NewPagination(f.Page, total),
		Summary:    totals,
	}, nil
}

// Update применяет частичное изменение к операции пользователя.
func (s *Service) Update(ctx context.Context, userID, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	const op = "transaction.Update"

	if !validID(id) {
		return nil, apperr.ErrTransactionNotFound
	}
	t, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, notFound(op, err)
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.AmountCents != nil {
		t.AmountCents = *patch.AmountCents
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.OccurredOn != nil {
		t.OccurredOn = *patch.OccurredOn
	}
	normalize(t)
	if err := validate(*t); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, *t)
	if err != nil {
		return nil, notFound(op, err)
	}
	return updated, nil
}

// Delete удаляет операцию пользователя.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	const op = "transaction.Delete"
	if !validID(id) {
		return apperr.ErrTransactionNotFound
	}
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return notFound(op, err)
	}
	return nil
}

// Summary возвращает итоги за период и расходы по категориям.
func (s *Service) Summary(ctx context.Context, userID string, from, to *time.Time) (*models.Report, error) {
	const op = "transaction.Summary"

	if from != nil && to != nil && from.After(*to) {
		return nil, apperr.Validation("INVALID_PERIOD", "from must not be after to")
	}

	totals, err := s.repo.TransactionTotals(ctx, userID, models.TransactionFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byCategory, err := s.repo.ExpensesByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Report{From: from, To: to, Totals: totals, ByCategory: byCategory}, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(op string, err error) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrTransactionNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalize(t *models.Transaction) {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.OccurredOn = t.OccurredOn.UTC().Truncate(24 * time.Hour)
}

func validate(t models.Transaction) error {
	switch {
	case t.Type != models.TypeIncome && t.Type != models.TypeExpense:
		return apperr.Validation("INVALID_TRANSACTION", "type must be income or expense")
	case t.AmountCents <= 0:
		return apperr.Validation("INVALID_TRANSACTION", "amount must be greater than zero")
	case t.Description == "":
		return apperr.Validation("INVALID_TRANSACTION", "description is required")
	case utf8.RuneCountInString(t.Description) > maxDescriptionLen:
		return apperr.Validation("INVALID_TRANSACTION", "description must be at most 200 characters")
	case utf8.RuneCountInString(t.Category) > maxCategoryLen:
		return apperr.Validation("INVALID_TRANSACTION", "category must be at most 60 characters")
	case t.OccurredOn.IsZero():
		return apperr.Validation("INVALID_TRANSACTION", "date is required")
	}
	return nil
}

func normalizeFilter(f *models.TransactionFilter) error {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Page.Page < 1 {
		f.Page.Page = 1
	}
	if f.Type != nil && *f.Type != models.TypeIncome && *f.Type != models.TypeExpense {
		return apperr.Validation("INVALID_FILTER", "type must be income or expense")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperr.Validation("INVALID_PERIOD", "from must not be after to")
	}
	f.Search = strings.TrimSpace(f.Search)
	return nil
}
