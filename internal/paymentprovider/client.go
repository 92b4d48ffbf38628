// Package paymentprovider HTTP-клиент провайдера PIX-платежей.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client клиент API провайдера PIX.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient создает клиент провайдера с базовым адресом apiURL.
func NewClient(apiURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Customer плательщик.
type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document,omitempty"`
}

// CreateChargeRequest запрос на выставление PIX-платежа.
type CreateChargeRequest struct {
	ExternalID  string   `json:"external_id"`
	Amount      int64    `json:"amount"`
	Description string   `json:"description"`
	ExpiresIn   int64    `json:"expires_in"`
	Customer    Customer `json:"customer"`
}

// Charge платеж на стороне провайдера.
type Charge struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	QRCode      string     `json:"qr_code"`
	QRCodeImage string     `json:"qr_code_image,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// ProviderError ответ провайдера с неуспешным статусом.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider: status %d: %s", e.StatusCode, e.Message)
}

// ErrNotFound провайдер не знает такой платеж.
var ErrNotFound = errors.New("charge not found at provider")

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreateCharge выставляет новый платеж.
func (c *Client) CreateCharge(ctx context.Context, reqParams CreateChargeRequest) (*Charge, error) {
	const op = "paymentprovider.CreateCharge"
	req, err := c.newRequest(ctx, http.MethodPost, "/charges", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var charge Charge
	if err := c.do(req, &charge); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &charge, nil
}

// GetCharge возвращает текущее состояние платежа.
func (c *Client) GetCharge(ctx context.Context, id string) (*Charge, error) {
	const op = "paymentprovider.GetCharge"
	req, err := c.newRequest(ctx, http.MethodGet, "/charges/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var charge Charge
	if err := c.do(req, &charge); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &charge, nil
}

// CancelCharge отменяет платеж, который еще не оплачен.
func (c *Client) CancelCharge(ctx context.Context, id string) (*Charge, error) {
	const op = "paymentprovider.CancelCharge"
	req, err := c.newRequest(ctx, http.MethodPost, "/charges/"+url.PathEscape(id)+"/cancel", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var charge Charge
	if err := c.do(req, &charge); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &charge, nil
}
