package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecom-checkout/internal/config"
	"ecom-checkout/internal/domain"
)

type razorpayGateway struct {
	keyID    string
	secret   string
	baseURL  string
	currency string
	client   *http.Client
}

// NewRazorpayGateway builds the real-provider variant. The key secret is
// used only for transport-level basic auth; it is never returned or logged.
func NewRazorpayGateway(cfg config.Razorpay, currency string) Gateway {
	return &razorpayGateway{
		keyID:    cfg.KeyID,
		secret:   cfg.KeySecret,
		baseURL:  cfg.BaseURL,
		currency: currency,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *razorpayGateway) Name() string { return ProviderRazorpay }

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayOrderResponse struct {
	ID string `json:"id"`
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*CreateOrderResponse, error) {
	if receipt == "" {
		receipt = "rcpt_" + uuid.NewString()
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         MinorUnits(amount),
		Currency:       g.currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain for connection reuse; the body is not surfaced to callers.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: create order returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var remote razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrProviderUnavailable, err)
	}
	if remote.ID == "" {
		return nil, fmt.Errorf("%w: order id missing in response", domain.ErrProviderUnavailable)
	}

	return &CreateOrderResponse{
		Provider:    ProviderRazorpay,
		OrderID:     remote.ID,
		AmountMinor: MinorUnits(amount),
		Currency:    g.currency,
		Status:      domain.OrderCreated,
		KeyID:       g.keyID,
	}, nil
}
