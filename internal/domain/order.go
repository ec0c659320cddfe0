package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderCreated OrderStatus = "CREATED"
	OrderPaid    OrderStatus = "PAID"
	OrderFailed  OrderStatus = "FAILED"
)

// PaymentOrder is one row of the order ledger: a single checkout/payment
// attempt. Rows are never deleted, they are the audit trail.
type PaymentOrder struct {
	ID                uuid.UUID
	Username          string
	Provider          string
	OrderID           string
	PaymentID         string
	Amount            decimal.Decimal
	Currency          string
	Status            OrderStatus
	Fulfilled         bool
	CheckoutItemsJSON string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func NewPaymentOrder(username, provider, orderID string, amount decimal.Decimal, currency string) *PaymentOrder {
	now := time.Now().UTC()
	return &PaymentOrder{
		ID:        uuid.New(),
		Username:  username,
		Provider:  provider,
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Status:    OrderCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkPaid records a verified payment. Only CREATED orders transition;
// a PAID order stays PAID so repeated verification is harmless.
func (o *PaymentOrder) MarkPaid(paymentID string) error {
	switch o.Status {
	case OrderFailed:
		return ErrOrderClosed
	case OrderPaid:
		return nil
	}
	o.Status = OrderPaid
	o.PaymentID = paymentID
	o.touch()
	return nil
}

// MarkFailed closes the order after a failed verification. FAILED is
// terminal: no further verification is accepted for this orderId.
func (o *PaymentOrder) MarkFailed() {
	if o.Status == OrderPaid {
		return
	}
	o.Status = OrderFailed
	o.touch()
}

func (o *PaymentOrder) MarkFulfilled() error {
	if o.Status != OrderPaid {
		return ErrPaymentNotPaid
	}
	o.Fulfilled = true
	o.touch()
	return nil
}

func (o *PaymentOrder) touch() {
	o.UpdatedAt = time.Now().UTC()
}
