package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/infrastructure/payment"
	"ecom-checkout/internal/repo/memory"
)

const testSecret = "s"

func signPayload(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func newPaymentService(store *memory.Store) *PaymentService {
	verifier := payment.NewSignatureVerifier(testSecret)
	return NewPaymentService(store, verifier, NewFulfillmentService(store))
}

// seedRazorpayOrder plants a CREATED razorpay order with a cart snapshot,
// as the checkout path would have left it.
func seedRazorpayOrder(t *testing.T, store *memory.Store, username, orderID string, cart domain.CheckoutCart) {
	t.Helper()
	order := domain.NewPaymentOrder(username, payment.ProviderRazorpay, orderID, decimal.RequireFromString("797.00"), "INR")
	if cart != nil {
		snapshot, err := cart.Encode()
		require.NoError(t, err)
		order.CheckoutItemsJSON = snapshot
	}
	require.NoError(t, store.Ledger().Create(context.Background(), order))
}

func TestVerify_SuccessPaysAndFulfills(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", domain.CheckoutCart{{ProductID: 1, Quantity: 2}})

	status, err := svc.Verify(ctx, "alice", "o1", "p1", signPayload("o1", "p1"))
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, status)

	order, err := store.Ledger().FindByOrderID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, order.Status)
	assert.Equal(t, "p1", order.PaymentID)
	assert.True(t, order.Fulfilled)

	products, err := store.Catalog().FindByIDs(ctx, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 3, products[0].StockQuantity)
}

func TestVerify_MismatchFailsOrder(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", domain.CheckoutCart{{ProductID: 1, Quantity: 2}})

	status, err := svc.Verify(ctx, "alice", "o1", "p1", "not-the-signature")
	require.ErrorIs(t, err, domain.ErrSignatureMismatch)
	assert.Equal(t, domain.OrderFailed, status)

	order, _ := store.Ledger().FindByOrderID(ctx, "o1")
	assert.Equal(t, domain.OrderFailed, order.Status)
	assert.False(t, order.Fulfilled)

	// No stock moved.
	products, _ := store.Catalog().FindByIDs(ctx, []int{1})
	assert.Equal(t, 5, products[0].StockQuantity)

	// FAILED is terminal: even the correct signature is rejected now.
	_, err = svc.Verify(ctx, "alice", "o1", "p1", signPayload("o1", "p1"))
	require.ErrorIs(t, err, domain.ErrOrderClosed)
	order, _ = store.Ledger().FindByOrderID(ctx, "o1")
	assert.Equal(t, domain.OrderFailed, order.Status)
}

func TestVerify_RepeatedVerificationStaysPaid(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", domain.CheckoutCart{{ProductID: 1, Quantity: 2}})
	sig := signPayload("o1", "p1")

	_, err := svc.Verify(ctx, "alice", "o1", "p1", sig)
	require.NoError(t, err)
	_, err = svc.Verify(ctx, "alice", "o1", "p1", sig)
	require.NoError(t, err)

	// Fulfillment ran exactly once.
	products, _ := store.Catalog().FindByIDs(ctx, []int{1})
	assert.Equal(t, 3, products[0].StockQuantity)
}

func TestVerify_Failures(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", domain.CheckoutCart{{ProductID: 1, Quantity: 1}})

	mockOrder := domain.NewPaymentOrder("alice", payment.ProviderMock, "m1", decimal.NewFromInt(10), "INR")
	require.NoError(t, store.Ledger().Create(ctx, mockOrder))

	sig := signPayload("o1", "p1")

	cases := []struct {
		name      string
		username  string
		orderID   string
		paymentID string
		signature string
		want      error
	}{
		{"no identity", "", "o1", "p1", sig, domain.ErrUnauthorized},
		{"missing order id", "alice", "", "p1", sig, domain.ErrInvalidRequest},
		{"missing payment id", "alice", "o1", "", sig, domain.ErrInvalidRequest},
		{"missing signature", "alice", "o1", "p1", "", domain.ErrInvalidRequest},
		{"unknown order", "alice", "nope", "p1", sig, domain.ErrOrderNotFound},
		{"foreign order", "mallory", "o1", "p1", sig, domain.ErrForbidden},
		{"mock order", "alice", "m1", "p1", sig, domain.ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(ctx, tc.username, tc.orderID, tc.paymentID, tc.signature)
			require.ErrorIs(t, err, tc.want)
		})
	}

	// None of the failures may have advanced the order.
	order, _ := store.Ledger().FindByOrderID(ctx, "o1")
	assert.Equal(t, domain.OrderCreated, order.Status)
}

func TestAttachCheckoutItems(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", nil)
	cart := domain.CheckoutCart{{ProductID: 2, Quantity: 1}}

	require.ErrorIs(t, svc.AttachCheckoutItems(ctx, "", "o1", cart), domain.ErrUnauthorized)
	require.ErrorIs(t, svc.AttachCheckoutItems(ctx, "alice", "o1", domain.CheckoutCart{}), domain.ErrInvalidRequest)
	require.ErrorIs(t, svc.AttachCheckoutItems(ctx, "alice", "nope", cart), domain.ErrOrderNotFound)
	require.ErrorIs(t, svc.AttachCheckoutItems(ctx, "mallory", "o1", cart), domain.ErrForbidden)

	require.NoError(t, svc.AttachCheckoutItems(ctx, "alice", "o1", cart))

	order, _ := store.Ledger().FindByOrderID(ctx, "o1")
	parsed, err := domain.ParseCheckoutCart(order.CheckoutItemsJSON)
	require.NoError(t, err)
	assert.Equal(t, cart, parsed)
}

func TestAttachCheckoutItems_RejectsInvalidLines(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	seedRazorpayOrder(t, store, "alice", "o1", nil)

	err := svc.AttachCheckoutItems(ctx, "alice", "o1", domain.CheckoutCart{{ProductID: 0, Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	err = svc.AttachCheckoutItems(ctx, "alice", "o1", domain.CheckoutCart{{ProductID: 2, Quantity: -3}})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Neither attempt left a snapshot behind.
	order, _ := store.Ledger().FindByOrderID(ctx, "o1")
	assert.Empty(t, order.CheckoutItemsJSON)
}

func TestAttachCheckoutItems_ClosedOrFulfilledOrders(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	cart := domain.CheckoutCart{{ProductID: 2, Quantity: 1}}

	failed := domain.NewPaymentOrder("alice", payment.ProviderRazorpay, "o-failed", decimal.NewFromInt(10), "INR")
	failed.MarkFailed()
	require.NoError(t, store.Ledger().Create(ctx, failed))
	require.ErrorIs(t, svc.AttachCheckoutItems(ctx, "alice", "o-failed", cart), domain.ErrOrderClosed)

	done := domain.NewPaymentOrder("alice", payment.ProviderRazorpay, "o-done", decimal.NewFromInt(10), "INR")
	snapshot, err := cart.Encode()
	require.NoError(t, err)
	done.CheckoutItemsJSON = snapshot
	require.NoError(t, done.MarkPaid("p1"))
	require.NoError(t, done.MarkFulfilled())
	require.NoError(t, store.Ledger().Create(ctx, done))

	// The snapshot of a fulfilled order is settled and cannot be swapped.
	err = svc.AttachCheckoutItems(ctx, "alice", "o-done", domain.CheckoutCart{{ProductID: 1, Quantity: 5}})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	order, _ := store.Ledger().FindByOrderID(ctx, "o-done")
	assert.Equal(t, snapshot, order.CheckoutItemsJSON)
}

func TestMyOrders_NewestFirst(t *testing.T) {
	store := seededStore(t)
	svc := newPaymentService(store)
	ctx := context.Background()

	older := domain.NewPaymentOrder("alice", payment.ProviderMock, "o-old", decimal.NewFromInt(1), "INR")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := domain.NewPaymentOrder("alice", payment.ProviderMock, "o-new", decimal.NewFromInt(2), "INR")
	other := domain.NewPaymentOrder("bob", payment.ProviderMock, "o-bob", decimal.NewFromInt(3), "INR")
	for _, o := range []*domain.PaymentOrder{older, newer, other} {
		require.NoError(t, store.Ledger().Create(ctx, o))
	}

	_, err := svc.MyOrders(ctx, "")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	orders, err := svc.MyOrders(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "o-new", orders[0].OrderID)
	assert.Equal(t, "o-old", orders[1].OrderID)

	all, err := svc.AllOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
