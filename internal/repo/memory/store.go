// Package memory holds a mutex-guarded Store for tests and the offline
// simulator. WithinTx journals the pre-image of every row the transaction
// writes and restores exactly those rows when fn fails; writes that land
// outside the transaction are left alone by a rollback.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/repo"
)

type Store struct {
	mu       sync.Mutex // guards the maps
	txMu     sync.Mutex // serializes transactions
	orders   map[string]*domain.PaymentOrder // keyed by provider order id
	products map[int]*domain.Product
}

func NewStore() *Store {
	return &Store{
		orders:   make(map[string]*domain.PaymentOrder),
		products: make(map[int]*domain.Product),
	}
}

// SeedProducts loads catalog fixtures. Test/simulator helper, not part of
// the CatalogStore contract.
func (s *Store) SeedProducts(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		cp := p
		s.products[p.ID] = &cp
	}
}

func (s *Store) Ledger() repo.OrderLedger   { return &memLedger{s: s} }
func (s *Store) Catalog() repo.CatalogStore { return &memCatalog{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(repo.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{
		s:        s,
		orders:   make(map[string]*domain.PaymentOrder),
		products: make(map[int]*domain.Product),
	}

	err := fn(&txStore{j: j})

	if err != nil {
		s.mu.Lock()
		j.rollback()
		s.mu.Unlock()
	}
	return err
}

// journal records the pre-image of every row the transaction writes. A nil
// pre-image marks a row that did not exist when first touched.
type journal struct {
	s        *Store
	orders   map[string]*domain.PaymentOrder
	products map[int]*domain.Product
}

func (j *journal) noteOrder(orderID string) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, seen := j.orders[orderID]; seen {
		return
	}
	if cur, ok := j.s.orders[orderID]; ok {
		cp := *cur
		j.orders[orderID] = &cp
	} else {
		j.orders[orderID] = nil
	}
}

func (j *journal) noteProduct(id int) {
	j.s.mu.Lock()
	defer j.s.mu.Unlock()
	if _, seen := j.products[id]; seen {
		return
	}
	if cur, ok := j.s.products[id]; ok {
		cp := *cur
		j.products[id] = &cp
	} else {
		j.products[id] = nil
	}
}

// rollback must run with s.mu held.
func (j *journal) rollback() {
	for id, pre := range j.orders {
		if pre == nil {
			delete(j.s.orders, id)
		} else {
			j.s.orders[id] = pre
		}
	}
	for id, pre := range j.products {
		if pre == nil {
			delete(j.s.products, id)
		} else {
			j.s.products[id] = pre
		}
	}
}

// txStore is the transaction-scoped view handed to WithinTx callbacks.
// Nested WithinTx calls reuse the enclosing transaction and its journal.
type txStore struct {
	j *journal
}

func (t *txStore) Ledger() repo.OrderLedger   { return &txLedger{memLedger{s: t.j.s}, t.j} }
func (t *txStore) Catalog() repo.CatalogStore { return &txCatalog{memCatalog{s: t.j.s}, t.j} }

func (t *txStore) WithinTx(ctx context.Context, fn func(repo.Store) error) error {
	return fn(t)
}

// txLedger journals pre-images before mutating; reads are promoted.
type txLedger struct {
	memLedger
	j *journal
}

func (r *txLedger) Create(ctx context.Context, order *domain.PaymentOrder) error {
	r.j.noteOrder(order.OrderID)
	return r.memLedger.Create(ctx, order)
}

func (r *txLedger) UpdateStatus(ctx context.Context, order *domain.PaymentOrder) error {
	r.j.noteOrder(order.OrderID)
	return r.memLedger.UpdateStatus(ctx, order)
}

func (r *txLedger) AttachItems(ctx context.Context, order *domain.PaymentOrder) error {
	r.j.noteOrder(order.OrderID)
	return r.memLedger.AttachItems(ctx, order)
}

func (r *txLedger) SetFulfilled(ctx context.Context, order *domain.PaymentOrder) error {
	r.j.noteOrder(order.OrderID)
	return r.memLedger.SetFulfilled(ctx, order)
}

type txCatalog struct {
	memCatalog
	j *journal
}

func (r *txCatalog) SaveAll(ctx context.Context, products []*domain.Product) error {
	for _, p := range products {
		r.j.noteProduct(p.ID)
	}
	return r.memCatalog.SaveAll(ctx, products)
}

func (s *Store) lock() func() {
	// Mutating calls issued inside WithinTx already run under the tx
	// lock discipline; the store-level mutex only guards the maps.
	s.mu.Lock()
	return s.mu.Unlock
}

type memLedger struct {
	s *Store
}

func (r *memLedger) Create(ctx context.Context, order *domain.PaymentOrder) error {
	defer r.s.lock()()
	cp := *order
	r.s.orders[order.OrderID] = &cp
	return nil
}

func (r *memLedger) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	defer r.s.lock()()
	order, ok := r.s.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (r *memLedger) FindByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	// Transactions are serialized by txMu, so the plain read already sees
	// the latest committed row.
	return r.FindByOrderID(ctx, orderID)
}

func (r *memLedger) UpdateStatus(ctx context.Context, order *domain.PaymentOrder) error {
	defer r.s.lock()()
	if stored, ok := r.s.orders[order.OrderID]; ok {
		stored.Status = order.Status
		stored.PaymentID = order.PaymentID
		stored.UpdatedAt = order.UpdatedAt
	}
	return nil
}

func (r *memLedger) AttachItems(ctx context.Context, order *domain.PaymentOrder) error {
	defer r.s.lock()()
	if stored, ok := r.s.orders[order.OrderID]; ok {
		stored.CheckoutItemsJSON = order.CheckoutItemsJSON
		stored.UpdatedAt = order.UpdatedAt
	}
	return nil
}

func (r *memLedger) SetFulfilled(ctx context.Context, order *domain.PaymentOrder) error {
	defer r.s.lock()()
	if stored, ok := r.s.orders[order.OrderID]; ok {
		stored.Fulfilled = order.Fulfilled
		stored.UpdatedAt = order.UpdatedAt
	}
	return nil
}

func (r *memLedger) ListByUsername(ctx context.Context, username string) ([]domain.PaymentOrder, error) {
	defer r.s.lock()()
	var orders []domain.PaymentOrder
	for _, o := range r.s.orders {
		if o.Username == username {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memLedger) ListAll(ctx context.Context) ([]domain.PaymentOrder, error) {
	defer r.s.lock()()
	var orders []domain.PaymentOrder
	for _, o := range r.s.orders {
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *memLedger) FindUnfulfilledPaid(ctx context.Context, olderThan time.Duration, limit int) ([]domain.PaymentOrder, error) {
	defer r.s.lock()()
	cutoff := time.Now().UTC().Add(-olderThan)
	var orders []domain.PaymentOrder
	for _, o := range r.s.orders {
		if o.Status == domain.OrderPaid && !o.Fulfilled && o.CheckoutItemsJSON != "" && o.UpdatedAt.Before(cutoff) {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].UpdatedAt.Before(orders[j].UpdatedAt)
	})
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

type memCatalog struct {
	s *Store
}

func (r *memCatalog) FindByIDs(ctx context.Context, ids []int) ([]*domain.Product, error) {
	defer r.s.lock()()
	products := make([]*domain.Product, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.s.products[id]; ok {
			cp := *p
			products = append(products, &cp)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *memCatalog) FindByIDsForUpdate(ctx context.Context, ids []int) ([]*domain.Product, error) {
	return r.FindByIDs(ctx, ids)
}

func (r *memCatalog) SaveAll(ctx context.Context, products []*domain.Product) error {
	defer r.s.lock()()
	for _, p := range products {
		cp := *p
		r.s.products[p.ID] = &cp
	}
	return nil
}
