package repo

import (
	"context"
	"database/sql"

	"ecom-checkout/internal/domain"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStore struct {
	db *sql.DB
	q  querier
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) Ledger() OrderLedger   { return &orderLedger{q: s.q} }
func (s *PostgresStore) Catalog() CatalogStore { return &catalogStore{q: s.q} }

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		// Already transactional, reuse the enclosing transaction.
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, q: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*domain.PaymentOrder, error) {
	var o domain.PaymentOrder
	err := row.Scan(
		&o.ID,
		&o.Username,
		&o.Provider,
		&o.OrderID,
		&o.PaymentID,
		&o.Amount,
		&o.Currency,
		&o.Status,
		&o.Fulfilled,
		&o.CheckoutItemsJSON,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
