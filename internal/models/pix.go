package models

import "time"

// ChargeStatus состояние PIX-платежа.
type ChargeStatus string

// Состояния PIX-платежа.
const (
	ChargePending   ChargeStatus = "pending"
	ChargePaid      ChargeStatus = "paid"
	ChargeExpired   ChargeStatus = "expired"
	ChargeCancelled ChargeStatus = "cancelled"
)

// PixCharge платеж за премиум-подписку через PIX.
type PixCharge struct {
	ID               string       `json:"id"`
	UserID           string       `json:"-"`
	ProviderChargeID string       `json:"providerChargeId"`
	AmountCents      int64        `json:"amountCents"`
	Status           ChargeStatus `json:"status"`
	QRCode           string       `json:"qrCode"`
	QRCodeImage      string       `json:"qrCodeImage,omitempty"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	PaidAt           *time.Time   `json:"paidAt,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
}
