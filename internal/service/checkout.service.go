package service

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/infrastructure/payment"
	"ecom-checkout/internal/repo"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// CheckoutResult is returned to the caller after a provider order was
// created and recorded on the ledger.
type CheckoutResult struct {
	Provider    string
	OrderID     string
	PaymentID   string
	Amount      decimal.Decimal
	AmountMinor int64
	Currency    string
	Status      domain.OrderStatus
	KeyID       string
}

type CheckoutService struct {
	store   repo.Store
	gateway payment.Gateway
}

func NewCheckoutService(store repo.Store, gateway payment.Gateway) *CheckoutService {
	return &CheckoutService{store: store, gateway: gateway}
}

// PriceCart re-prices every cart line from the catalog and returns the
// server-computed total plus the per-product quantity map. Read-only: it is
// safe to call any number of times and yields the same total for the same
// catalog state.
func PriceCart(ctx context.Context, catalog repo.CatalogStore, cart domain.CheckoutCart) (decimal.Decimal, map[int]int, error) {
	if len(cart) == 0 {
		return decimal.Zero, nil, fmt.Errorf("%w: no items", domain.ErrInvalidRequest)
	}

	products, err := catalog.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return decimal.Zero, nil, err
	}
	byID := make(map[int]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	for _, it := range cart {
		p, ok := byID[it.ProductID]
		if !ok {
			return decimal.Zero, nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, it.ProductID)
		}
		if it.Quantity <= 0 {
			return decimal.Zero, nil, fmt.Errorf("%w: product %d", domain.ErrInvalidQuantity, it.ProductID)
		}
		if p.StockQuantity < it.Quantity {
			return decimal.Zero, nil, fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
		}
		if !p.Price.IsPositive() {
			return decimal.Zero, nil, fmt.Errorf("%w: %s", domain.ErrInvalidPrice, p.Name)
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return total, cart.QuantityByProduct(), nil
}

// Checkout is the production create-order path: the amount is computed from
// catalog prices, never taken from the client. The cart is frozen onto the
// ledger row so fulfillment later works from this exact snapshot.
func (s *CheckoutService) Checkout(ctx context.Context, username string, cart domain.CheckoutCart) (*CheckoutResult, error) {
	if username == "" {
		return nil, domain.ErrUnauthorized
	}

	amount, _, err := PriceCart(ctx, s.store.Catalog(), cart)
	if err != nil {
		return nil, err
	}
	snapshot, err := cart.Encode()
	if err != nil {
		return nil, err
	}

	// The provider call happens before any ledger row exists: a failure
	// here leaves nothing behind and the whole call can be retried.
	resp, err := s.gateway.CreateOrder(ctx, amount, "")
	if err != nil {
		return nil, err
	}

	order := domain.NewPaymentOrder(username, resp.Provider, resp.OrderID, amount, resp.Currency)
	order.CheckoutItemsJSON = snapshot
	if resp.Status == domain.OrderPaid {
		order.Status = domain.OrderPaid
		order.PaymentID = resp.PaymentID
	}

	if err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		return tx.Ledger().Create(ctx, order)
	}); err != nil {
		return nil, err
	}

	logger.Info().
		Str("order_id", order.OrderID).
		Str("provider", order.Provider).
		Str("username", username).
		Str("amount", amount.String()).
		Msg("checkout order created")

	return &CheckoutResult{
		Provider:    resp.Provider,
		OrderID:     resp.OrderID,
		PaymentID:   resp.PaymentID,
		Amount:      amount,
		AmountMinor: resp.AmountMinor,
		Currency:    resp.Currency,
		Status:      order.Status,
		KeyID:       resp.KeyID,
	}, nil
}

// CreateOrder is the legacy/debug path taking a raw amount. No cart
// snapshot is attached, so such an order cannot be fulfilled until items
// are attached explicitly.
func (s *CheckoutService) CreateOrder(ctx context.Context, username string, amount decimal.Decimal) (*CheckoutResult, error) {
	if username == "" {
		return nil, domain.ErrUnauthorized
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: invalid amount", domain.ErrInvalidRequest)
	}

	resp, err := s.gateway.CreateOrder(ctx, amount, "")
	if err != nil {
		return nil, err
	}

	order := domain.NewPaymentOrder(username, resp.Provider, resp.OrderID, amount, resp.Currency)
	if resp.Status == domain.OrderPaid {
		order.Status = domain.OrderPaid
		order.PaymentID = resp.PaymentID
	}

	if err := s.store.WithinTx(ctx, func(tx repo.Store) error {
		return tx.Ledger().Create(ctx, order)
	}); err != nil {
		return nil, err
	}

	logger.Info().
		Str("order_id", order.OrderID).
		Str("provider", order.Provider).
		Str("username", username).
		Msg("raw-amount order created")

	return &CheckoutResult{
		Provider:    resp.Provider,
		OrderID:     resp.OrderID,
		PaymentID:   resp.PaymentID,
		Amount:      amount,
		AmountMinor: resp.AmountMinor,
		Currency:    resp.Currency,
		Status:      order.Status,
		KeyID:       resp.KeyID,
	}, nil
}
