package storage

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/dbx"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

// CreateRefreshToken сохраняет запись refresh-токена.
func (s *Storage) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	const op = "storage.CreateRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	if err := insertRefreshToken(ctx, s.DB, token); err != nil {
		return wrap(op, err)
	}
	return nil
}

func insertRefreshToken(ctx context.Context, tx dbx.DBTX, token models.RefreshToken) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
			  VALUES ($1, $2, $3, $4)`,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt)
	return err
}

// GetRefreshToken возвращает запись refresh-токена по ID.
func (s *Storage) GetRefreshToken(ctx context.Context, id string) (*models.RefreshToken, error) {
	const op = "storage.GetRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
			  FROM refresh_tokens
			  WHERE id = $1`
	var (
		t          models.RefreshToken
		revokedAt  sql.NullTime
		replacedBy sql.NullString
	)
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.UserID, &t.TokenHash,
		&t.ExpiresAt, &revokedAt, &replacedBy, &t.CreatedAt); err != nil {
		return nil, wrap(op, err)
	}
	t.RevokedAt = nullTime(revokedAt)
	if replacedBy.Valid {
		t.ReplacedBy = &replacedBy.String
	}
	return &t, nil
}

// RotateRefreshToken в одной транзакции отзывает токен oldID и сохраняет next.
// Если oldID уже отозван (например, параллельным запросом), возвращает apperr.ErrConflict.
func (s *Storage) RotateRefreshToken(ctx context.Context, oldID string, next models.RefreshToken) error {
	const op = "storage.RotateRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE refresh_tokens
			  SET revoked_at = NOW(), replaced_by = $1
			  WHERE id = $2 AND revoked_at IS NULL`,
			next.ID, oldID)
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
		return insertRefreshToken(ctx, tx, next)
	})
	if err != nil {
		return wrap(op, err)
	}
	return nil
}

// RevokeRefreshToken отзывает токен пользователя userID. Повторный отзыв не ошибка.
func (s *Storage) RevokeRefreshToken(ctx context.Context, userID, id string) error {
	const op = "storage.RevokeRefreshToken"
	if err := ctxDone(ctx, op); err != nil {
		return err
	}

	query := `UPDATE refresh_tokens
			  SET revoked_at = COALESCE(revoked_at, NOW())
			  WHERE id = $1 AND user_id = $2`
	if _, err := s.DB.ExecContext(ctx, query, id, userID); err != nil {
		return wrap(op, err)
	}
	return nil
}

// RevokeUserRefreshTokens отзывает все действующие refresh-токены пользователя.
func (s *Storage) RevokeUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	const op = "storage.RevokeUserRefreshTokens"
	if err := ctxDone(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE refresh_tokens
			  SET revoked_at = NOW()
			  WHERE user_id = $1 AND revoked_at IS NULL`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrap(op, err)
	}
	return n, nil
}
