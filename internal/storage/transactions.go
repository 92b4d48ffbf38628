package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/app-despesas/internal/models"
)

const transactionColumns = `id, user_id, type, amount_cents, description,
	COALESCE(category, ''), occurred_on, created_at, updated_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var t models.Transaction
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Description,
		&t.Category, &t.OccurredOn, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateTransaction сохраняет операцию и возвращает ее с заполненными ID и датами.
func (s *Storage) CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	const op = "storage.CreateTransaction"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO transactions (user_id, type, amount_cents, description, category, occurred_on)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + transactionColumns
	created, err := scanTransaction(s.DB.QueryRowContext(ctx, query,
		t.UserID, t.Type, t.AmountCents, t.Description, nullString(t.Category), t.OccurredOn))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// GetTransaction возвращает операцию пользователя. Чужая операция не находится.
func (s *Storage) GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + `
			  FROM transactions
			  WHERE id = $1 AND user_id = $2`
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return t, nil
}

// transactionWhere собирает условие WHERE для фильтра; нумерация аргументов с $1.
func transactionWhere(userID string, f models.TransactionFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != nil {
		add("type = $%d", string(*f.Type))
	}
	if f.From != nil {
		add("occurred_on >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_on <= $%d", *f.To)
	}
	if f.Search != "" {
		add("(description ILIKE $%[1]d OR category ILIKE $%[1]d)", "%"+escapeLike(f.Search)+"%")
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListTransactions возвращает страницу операций (новые первыми) и общее количество по фильтру.
func (s *Storage) ListTransactions(ctx context.Context, userID string, f models.TransactionFilter) ([]models.Transaction, int, error) {
	const op = "storage.ListTransactions"
	if err := ctxDone(ctx, op); err != nil {
		return nil, 0, err
	}

	where, args := transactionWhere(userID, f)

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).
		Scan(&total); err != nil {
		return nil, 0, wrap(op, err)
	}

	query := fmt.Sprintf(`SELECT %s
			  FROM transactions
			  WHERE %s
			  ORDER BY occurred_on DESC, created_at DESC
			  LIMIT $%d OFFSET $%d`, transactionColumns, where, len(args)+1, len(args)+2)
	rows, err := s.DB.QueryContext(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]models.Transaction, 0, f.Limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, wrap(op, err)
		}
		items = append(items, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, wrap(op, err)
	}
	return items, total, nil
}

// TransactionTotals считает доходы, расходы и баланс по фильтру (без пагинации).
func (s *Storage) TransactionTotals(ctx context.Context, userID string, f models.TransactionFilter) (models.Totals, error) {
	const op = "storage.TransactionTotals"
	if err := ctxDone(ctx, op); err != nil {
		return models.Totals{}, err
	}

	where, args := transactionWhere(userID, f)
	query := `SELECT
			      COALESCE(SUM(amount_cents) FILTER (WHERE type = 'income'), 0),
			      COALESCE(SUM(amount_cents) FILTER (WHERE type = 'expense'), 0)
			  FROM transactions
			  WHERE ` + where
	var totals models.Totals
	if err := s.DB.QueryRowContext(ctx, query, args...).Scan(&totals.TotalIncome, &totals.TotalExpense); err != nil {
		return models.Totals{}, wrap(op, err)
	}
	totals.Balance = totals.TotalIncome - totals.TotalExpense
	return totals, nil
}

// ExpensesByCategory группирует расходы за период по категориям, самые крупные первыми.
func (s *Storage) ExpensesByCategory(ctx context.Context, userID string, from, to *time.Time) ([]models.CategoryTotal, error) {
	const op = "storage.ExpensesByCategory"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	expense := models.TypeExpense
	where, args := transactionWhere(userID, models.TransactionFilter{Type: &expense, From: from, To: to})
	query := `SELECT COALESCE(category, ''), SUM(amount_cents), COUNT(*)
			  FROM transactions
			  WHERE ` + where + `
			  GROUP BY COALESCE(category, '')
			  ORDER BY SUM(amount_cents) DESC`
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.CategoryTotal{}
	for rows.Next() {
		var c models.CategoryTotal
		if err = rows.Scan(&c.Category, &c.AmountCents, &c.Count); err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// UpdateTransaction сохраняет измененную операцию пользователя.
func (s *Storage) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	const op = "storage.UpdateTransaction"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE transactions
			  SET type = $1, amount_cents = $2, description = $3, category = $4,
			      occurred_on = $5, updated_at = NOW()
			  WHERE id = $6 AND user_id = $7
			  RETURNING ` + transactionColumns
	updated, err := scanTransaction(s.DB.QueryRowContext(ctx, query,
		t.Type, t.AmountCents, t.Description, nullString(t.Category), t.OccurredOn, t.ID, t.UserID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return updated, nil
}

// DeleteTransaction удаляет операцию пользователя.
func (s *Storage) DeleteTransaction(ctx context.Context, userID, id string) error {
	const op = "storage.DeleteTransaction"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrap(op, err)
	}
	return expectAffected(op, res)
}
