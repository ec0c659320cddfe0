package service

import (
	"context"
	"fmt"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/repo"
)

// FulfillmentService applies the inventory change for a verified payment
// exactly once. The fulfilled flag on the ledger row is the idempotency
// gate; the whole sequence runs in one transaction so a failure anywhere
// leaves the flag unset and a retry reprocesses cleanly.
type FulfillmentService struct {
	store repo.Store
}

func NewFulfillmentService(store repo.Store) *FulfillmentService {
	return &FulfillmentService{store: store}
}

func (s *FulfillmentService) Fulfill(ctx context.Context, username, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("%w: missing order id", domain.ErrInvalidRequest)
	}
	if username == "" {
		return domain.ErrUnauthorized
	}

	return s.store.WithinTx(ctx, func(tx repo.Store) error {
		// The row lock serializes concurrent retries of the same order:
		// a duplicated callback or a reconciliation pass racing the
		// verify path waits here and then hits the fulfilled gate.
		order, err := tx.Ledger().FindByOrderIDForUpdate(ctx, orderID)
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
				Msg("fulfill rejected: caller does not own order")
			return domain.ErrForbidden
		}
		if order.Status != domain.OrderPaid {
			return fmt.Errorf("%w: order %s is %s", domain.ErrPaymentNotPaid, orderID, order.Status)
		}
		if order.Fulfilled {
			// Already decremented, nothing to do. Safe for retries.
			return nil
		}

		cart, err := domain.ParseCheckoutCart(order.CheckoutItemsJSON)
		if err != nil {
			return err
		}
		need := cart.QuantityByProduct()
		ids := cart.ProductIDs()

		// Row locks hold until commit so a concurrent fulfillment of
		// overlapping products sees the decremented quantities.
		products, err := tx.Catalog().FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int]*domain.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		// Validate everything before touching any stock: a late
		// shortfall aborts the whole fulfillment, never part of it.
		for _, id := range ids {
			p, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
			}
			if p.StockQuantity < need[id] {
				return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
			}
		}

		for _, id := range ids {
			byID[id].Decrement(need[id])
		}
		if err := tx.Catalog().SaveAll(ctx, products); err != nil {
			return err
		}

		if err := order.MarkFulfilled(); err != nil {
			return err
		}
		if err := tx.Ledger().SetFulfilled(ctx, order); err != nil {
			return err
		}

		logger.Info().
			Str("order_id", orderID).
			Int("products", len(ids)).
			Msg("order fulfilled")
		return nil
	})
}
