package repo

import (
	"context"
	"time"

	"ecom-checkout/internal/domain"
)

// OrderLedger is the durable record of every payment attempt, keyed by the
// provider-issued order id.
type OrderLedger interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	// FindByOrderID returns (nil, nil) when no row matches.
	FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	// FindByOrderIDForUpdate locks the matched row until the surrounding
	// transaction ends, serializing concurrent work on the same order.
	FindByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	// UpdateStatus persists status, payment id and updated_at.
	UpdateStatus(ctx context.Context, order *domain.PaymentOrder) error
	// AttachItems persists the checkout snapshot and updated_at.
	AttachItems(ctx context.Context, order *domain.PaymentOrder) error
	// SetFulfilled persists the fulfilled flag and updated_at.
	SetFulfilled(ctx context.Context, order *domain.PaymentOrder) error
	ListByUsername(ctx context.Context, username string) ([]domain.PaymentOrder, error)
	ListAll(ctx context.Context) ([]domain.PaymentOrder, error)
	// FindUnfulfilledPaid returns PAID orders whose stock decrement has not
	// happened yet and that have been idle for at least olderThan.
	FindUnfulfilledPaid(ctx context.Context, olderThan time.Duration, limit int) ([]domain.PaymentOrder, error)
}

// CatalogStore is the narrow contract this core consumes from the product
// catalog: batch fetch and batch save.
type CatalogStore interface {
	FindByIDs(ctx context.Context, ids []int) ([]*domain.Product, error)
	// FindByIDsForUpdate locks the matched rows until the surrounding
	// transaction ends. Outside a transaction it behaves like FindByIDs.
	FindByIDsForUpdate(ctx context.Context, ids []int) ([]*domain.Product, error)
	SaveAll(ctx context.Context, products []*domain.Product) error
}

// Store bundles the ledger and catalog behind one transactional boundary.
// WithinTx runs fn against a transaction-scoped Store; fn returning an error
// rolls every change back.
type Store interface {
	Ledger() OrderLedger
	Catalog() CatalogStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}
