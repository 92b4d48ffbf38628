package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/magabrotheeeer/app-despesas/internal/lib/dbx"
	"github.com/magabrotheeeer/app-despesas/internal/models"
)

const pixColumns = `id, user_id, provider_charge_id, amount_cents, status, qr_code,
	COALESCE(qr_code_image, ''), expires_at, paid_at, created_at`

func scanPixCharge(row rowScanner) (*models.PixCharge, error) {
	var (
		c      models.PixCharge
		paidAt sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.ProviderChargeID, &c.AmountCents, &c.Status,
		&c.QRCode, &c.QRCodeImage, &c.ExpiresAt, &paidAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.PaidAt = nullTime(paidAt)
	return &c, nil
}

// CreatePixCharge сохраняет выставленный PIX-платеж. ID задается вызывающей стороной.
func (s *Storage) CreatePixCharge(ctx context.Context, c models.PixCharge) (*models.PixCharge, error) {
	const op = "storage.CreatePixCharge"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO pix_charges (id, user_id, provider_charge_id, amount_cents, status, qr_code,
			      qr_code_image, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + pixColumns
	created, err := scanPixCharge(s.DB.QueryRowContext(ctx, query, c.ID, c.UserID, c.ProviderChargeID,
		c.AmountCents, c.Status, c.QRCode, nullString(c.QRCodeImage), c.ExpiresAt))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// GetPixCharge возвращает платеж пользователя.
func (s *Storage) GetPixCharge(ctx context.Context, userID, id string) (*models.PixCharge, error) {
	const op = "storage.GetPixCharge"
	if err := ctxDone(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + pixColumns + `
			  FROM pix_charges
			  WHERE id = $1 AND user_id = $2`
	c, err := scanPixCharge(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return c, nil
}

// UpdatePixChargeStatus меняет статус платежа, пока он в состоянии pending.
// Возвращает false, если платеж уже не pending.
func (s *Storage) UpdatePixChargeStatus(ctx context.Context, id string, status models.ChargeStatus) (bool, error) {
	const op = "storage.UpdatePixChargeStatus"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE pix_charges SET status = $1 WHERE id = $2 AND status = 'pending'`,
		status, id)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(op, err)
	}
	return n > 0, nil
}

// ConfirmPixCharge в одной транзакции отмечает платеж оплаченным и
// активирует подписку sub. Повторное подтверждение ничего не меняет и возвращает false.
func (s *Storage) ConfirmPixCharge(ctx context.Context, id string, paidAt time.Time, sub models.Subscription) (bool, error) {
	const op = "storage.ConfirmPixCharge"
	if err := ctxDone(ctx, op); err != nil {
		return false, err
	}

	var confirmed bool
	err := dbx.WithTx(ctx, s.DB, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE pix_charges
			  SET status = 'paid', paid_at = $1
			  WHERE id = $2 AND status = 'pending'`,
			paidAt, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		confirmed = true
		return upsertSubscription(ctx, tx, sub, sub.Entitled(s.now()))
	})
	if err != nil {
		return false, wrap(op, err)
	}
	return confirmed, nil
}
