package payment

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"ecom-checkout/internal/domain"
)

// mockGateway is the no-network variant used when no real provider
// credentials are configured. It marks the order PAID immediately with
// locally-unique identifiers.
type mockGateway struct {
	currency string
	seq      atomic.Int64
}

func NewMockGateway(currency string) Gateway {
	return &mockGateway{currency: currency}
}

func (g *mockGateway) Name() string { return ProviderMock }

func (g *mockGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*CreateOrderResponse, error) {
	n := g.seq.Add(1)
	now := time.Now().UnixMilli()

	return &CreateOrderResponse{
		Provider:    ProviderMock,
		OrderID:     fmt.Sprintf("order_mock_%d_%d", now, n),
		PaymentID:   fmt.Sprintf("pay_mock_%d_%d", now, n),
		AmountMinor: MinorUnits(amount),
		Currency:    g.currency,
		Status:      domain.OrderPaid,
	}, nil
}
