package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/dbx"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// entitledSQL условие премиум-доступа по строке подписки s на момент $1.
const entitledSQL = `COALESCE(s.status IN ('active', 'trialing')
	AND (s.current_period_end IS NULL OR s.current_period_end > $1), FALSE)`

// GetSubscription возвращает подписку пользователя или apperr.ErrNotFound.
func (s *Storage) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT user_id, status, provider, current_period_end, updated_at
			  FROM subscriptions
			  WHERE user_id = $1`
	var (
		sub       models.Subscription
		periodEnd sql.NullTime
	)
	if err := s.DB.QueryRowContext(ctx, query, userID).
		Scan(&sub.UserID, &sub.Status, &sub.Provider, &periodEnd, &sub.UpdatedAt); err != nil {
		return nil, wrap(op, err)
	}
	sub.CurrentPeriodEnd = nullTime(periodEnd)
	return &sub, nil
}

// UpsertSubscription записывает подписку и в той же транзакции обновляет
// снимок is_premium пользователя.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpsertSubscription"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return upsertSubscription(ctx, tx, sub, sub.Entitled(s.now()))
	})
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

func upsertSubscription(ctx context.Context, tx dbx.DBTX, sub models.Subscription, premium bool) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET is_premium = $1, updated_at = NOW() WHERE id = $2`,
		premium, sub.UserID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO subscriptions (user_id, status, provider, current_period_end, updated_at)
			  VALUES ($1, $2, $3, $4, NOW())
			  ON CONFLICT (user_id) DO UPDATE
			  SET status = EXCLUDED.status,
			      provider = EXCLUDED.provider,
			      current_period_end = EXCLUDED.current_period_end,
			      updated_at = NOW()`,
		sub.UserID, sub.Status, sub.Provider, sub.CurrentPeriodEnd)
	return err
}

// ExpireLapsedSubscriptions переводит в expired подписки active/trialing
// с истекшим периодом и возвращает ID их владельцев.
func (s *Storage) ExpireLapsedSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	const op = "storage.ExpireLapsedSubscriptions"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE subscriptions
			  SET status = 'expired', updated_at = NOW()
			  WHERE status IN ('active', 'trialing')
			    AND current_period_end IS NOT NULL
			    AND current_period_end <= $1
			  RETURNING user_id`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, wrap(op, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return ids, nil
}

// FindEntitlementDrift возвращает пользователей, у которых снимок is_premium
// расходится с подпиской на момент now. IsPremium в результате содержит
// старое (сохраненное) значение.
func (s *Storage) FindEntitlementDrift(ctx context.Context, now time.Time) ([]models.User, error) {
	const op = "storage.FindEntitlementDrift"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.name, u.email, u.password_hash, u.is_premium, u.is_admin,
			      u.trial_started_at, u.trial_ends_at, u.created_at, u.updated_at
			  FROM users u
			  LEFT JOIN subscriptions s ON s.user_id = u.id
			  WHERE u.is_premium <> ` + entitledSQL
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return users, nil
}

// PremiumStats считает статистику подписок на момент now.
func (s *Storage) PremiumStats(ctx context.Context, now time.Time) (*models.PremiumStats, error) {
	const op = "storage.PremiumStats"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT
			      COUNT(*),
			      COUNT(*) FILTER (WHERE ` + entitledSQL + `),
			      COUNT(*) FILTER (WHERE s.status = 'active' AND (s.current_period_end IS NULL OR s.current_period_end > $1)),
			      COUNT(*) FILTER (WHERE s.status = 'expired'
			          OR (s.status IN ('active', 'trialing') AND s.current_period_end <= $1)),
			      COUNT(*) FILTER (WHERE s.status = 'trialing' AND s.current_period_end > $1)
			  FROM users u
			  LEFT JOIN subscriptions s ON s.user_id = u.id`
	var st models.PremiumStats
	if err := s.DB.QueryRowContext(ctx, query, now).Scan(&st.TotalUsers, &st.PremiumUsers,
		&st.ActiveSubscriptions, &st.ExpiredSubscriptions, &st.TrialUsers); err != nil {
		return nil, wrap(op, err)
	}
	return &st, nil
}

// StartTrial отмечает начало пробного периода и создает подписку trialing.
// Повторный запуск (trial_started_at уже заполнен) возвращает apperr.ErrConflict.
func (s *Storage) StartTrial(ctx context.Context, userID string, startedAt, endsAt time.Time) error {
	const op = "storage.StartTrial"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE users
			  SET trial_started_at = $1, trial_ends_at = $2, updated_at = NOW()
			  WHERE id = $3 AND trial_started_at IS NULL`,
			startedAt, endsAt, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrConflict
		}
		return upsertSubscription(ctx, tx, models.Subscription{
			UserID:           userID,
			Status:           models.StatusTrialing,
			Provider:         models.ProviderTrial,
			CurrentPeriodEnd: &endsAt,
		}, true)
	})
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// FindTrialsEndingBetween возвращает пользователей в пробном периоде,
// который заканчивается в интервале (from, to].
func (s *Storage) FindTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]models.User, error) {
	const op = "storage.FindTrialsEndingBetween"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT u.id, u.name, u.email, u.password_hash, u.is_premium, u.is_admin,
			      u.trial_started_at, u.trial_ends_at, u.created_at, u.updated_at
			  FROM users u
			  JOIN subscriptions s ON s.user_id = u.id
			  WHERE s.status = 'trialing'
			    AND u.trial_ends_at > $1
			    AND u.trial_ends_at <= $2`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return users, nil
}
