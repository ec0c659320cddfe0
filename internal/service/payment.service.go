package service

import (
	"context"
	"fmt"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/infrastructure/payment"
	"ecom-checkout/internal/repo"
)

type PaymentService struct {
	store    repo.Store
	verifier *payment.SignatureVerifier
	fulfill  *FulfillmentService
}

func NewPaymentService(store repo.Store, verifier *payment.SignatureVerifier, fulfill *FulfillmentService) *PaymentService {
	return &PaymentService{store: store, verifier: verifier, fulfill: fulfill}
}

// Verify checks the provider callback signature for an order and moves it
// to PAID or FAILED. A FAILED order never becomes verifiable again; a new
// order must be created. On success the idempotent fulfillment runs in the
// same call.
func (s *PaymentService) Verify(ctx context.Context, username, orderID, paymentID, signature string) (domain.OrderStatus, error) {
	if username == "" {
		return "", domain.ErrUnauthorized
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return "", fmt.Errorf("%w: missing fields", domain.ErrInvalidRequest)
	}

	order, err := s.store.Ledger().FindByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if order.Username != username {
		logger.Warn().
			Str("order_id", orderID).
			Str("username", username).
			Msg("verify rejected: caller does not own order")
		return "", domain.ErrForbidden
	}
	if order.Provider != payment.ProviderRazorpay {
		return "", fmt.Errorf("%w: provider %q does not support verification", domain.ErrInvalidRequest, order.Provider)
	}
	if order.Status == domain.OrderFailed {
		return "", fmt.Errorf("%w: %s", domain.ErrOrderClosed, orderID)
	}

	if !s.verifier.Verify(orderID, paymentID, signature) {
		order.MarkFailed()
		if err := s.store.Ledger().UpdateStatus(ctx, order); err != nil {
			return "", err
		}
		logger.Warn().Str("order_id", orderID).Msg("payment signature mismatch")
		return domain.OrderFailed, fmt.Errorf("%w: %s", domain.ErrSignatureMismatch, orderID)
	}

	if err := order.MarkPaid(paymentID); err != nil {
		return "", err
	}
	if err := s.store.Ledger().UpdateStatus(ctx, order); err != nil {
		return "", err
	}
	logger.Info().Str("order_id", orderID).Msg("payment verified")

	// The order is durably PAID at this point. If fulfillment fails here
	// the reconciliation worker retries it; the error still surfaces so
	// the caller knows stock has not moved yet.
	if err := s.fulfill.Fulfill(ctx, username, orderID); err != nil {
		return domain.OrderPaid, err
	}

	return domain.OrderPaid, nil
}

// AttachCheckoutItems stores (or replaces) the cart snapshot on an existing
// ledger row, binding the cart to the provider order before fulfillment.
// Lines are validated here so a bad cart fails at attach time instead of
// surfacing later as a broken snapshot.
func (s *PaymentService) AttachCheckoutItems(ctx context.Context, username, orderID string, cart domain.CheckoutCart) error {
	if username == "" {
		return domain.ErrUnauthorized
	}
	if len(cart) == 0 {
		return fmt.Errorf("%w: no items", domain.ErrInvalidRequest)
	}
	for _, it := range cart {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: invalid product id %d", domain.ErrInvalidRequest, it.ProductID)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: product %d", domain.ErrInvalidQuantity, it.ProductID)
		}
	}

	order, err := s.store.Ledger().FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}
	if order.Username != username {
		logger.Warn().
			Str("order_id", orderID).
			Str("username", username).
			Msg("attach rejected: caller does not own order")
		return domain.ErrForbidden
	}
	if order.Status == domain.OrderFailed {
		return fmt.Errorf("%w: %s", domain.ErrOrderClosed, orderID)
	}
	if order.Fulfilled {
		return fmt.Errorf("%w: order %s already fulfilled", domain.ErrInvalidRequest, orderID)
	}

	snapshot, err := cart.Encode()
	if err != nil {
		return err
	}
	order.CheckoutItemsJSON = snapshot
	return s.store.Ledger().AttachItems(ctx, order)
}

// MyOrders lists the caller's ledger rows, newest first.
func (s *PaymentService) MyOrders(ctx context.Context, username string) ([]domain.PaymentOrder, error) {
	if username == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Ledger().ListByUsername(ctx, username)
}

// AllOrders lists every ledger row. The boundary restricts this to
// privileged callers.
func (s *PaymentService) AllOrders(ctx context.Context) ([]domain.PaymentOrder, error) {
	return s.store.Ledger().ListAll(ctx)
}
