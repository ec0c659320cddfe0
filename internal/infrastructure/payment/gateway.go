package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"ecom-checkout/internal/domain"
)

const (
	ProviderMock     = "mock"
	ProviderRazorpay = "razorpay"
)

// CreateOrderResponse is what the caller needs to complete payment in its
// own UI flow. It never carries the provider secret.
type CreateOrderResponse struct {
	Provider    string
	OrderID     string
	PaymentID   string
	AmountMinor int64
	Currency    string
	Status      domain.OrderStatus
	KeyID       string
}

// Gateway creates a remote payment order with the provider. The variant
// (mock or razorpay) is selected once at startup.
type Gateway interface {
	Name() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*CreateOrderResponse, error)
}

// MinorUnits converts a currency amount to the provider's integer minor
// units (amount × 100, truncated).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
