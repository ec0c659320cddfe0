package repo

import (
	"context"
	"database/sql"
	"time"

	"ecom-checkout/internal/domain"
)

const orderColumns = `id, username, provider, order_id, payment_id, amount, currency, status, fulfilled, checkout_items, created_at, updated_at`

type orderLedger struct {
	q querier
}

func (r *orderLedger) Create(ctx context.Context, order *domain.PaymentOrder) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO order_payments (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID,
		order.Username,
		order.Provider,
		order.OrderID,
		order.PaymentID,
		order.Amount,
		order.Currency,
		order.Status,
		order.Fulfilled,
		order.CheckoutItemsJSON,
		order.CreatedAt,
		order.UpdatedAt,
	)
	return err
}

func (r *orderLedger) FindByOrderID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	return r.findByOrderID(ctx, orderID, false)
}

func (r *orderLedger) FindByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	return r.findByOrderID(ctx, orderID, true)
}

func (r *orderLedger) findByOrderID(ctx context.Context, orderID string, forUpdate bool) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM order_payments WHERE order_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	row := r.q.QueryRowContext(ctx, query, orderID)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err // system error
	}
	return order, nil
}

func (r *orderLedger) UpdateStatus(ctx context.Context, order *domain.PaymentOrder) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE order_payments SET status = $1, payment_id = $2, updated_at = $3 WHERE order_id = $4`,
		order.Status, order.PaymentID, order.UpdatedAt, order.OrderID)
	return err
}

func (r *orderLedger) AttachItems(ctx context.Context, order *domain.PaymentOrder) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE order_payments SET checkout_items = $1, updated_at = $2 WHERE order_id = $3`,
		order.CheckoutItemsJSON, order.UpdatedAt, order.OrderID)
	return err
}

func (r *orderLedger) SetFulfilled(ctx context.Context, order *domain.PaymentOrder) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE order_payments SET fulfilled = $1, updated_at = $2 WHERE order_id = $3`,
		order.Fulfilled, order.UpdatedAt, order.OrderID)
	return err
}

func (r *orderLedger) ListByUsername(ctx context.Context, username string) ([]domain.PaymentOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM order_payments WHERE username = $1 ORDER BY created_at DESC`,
		username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderLedger) ListAll(ctx context.Context) ([]domain.PaymentOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM order_payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderLedger) FindUnfulfilledPaid(ctx context.Context, olderThan time.Duration, limit int) ([]domain.PaymentOrder, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM order_payments
		 WHERE status = $1 AND fulfilled = FALSE AND checkout_items <> '' AND updated_at < $2
		 ORDER BY updated_at ASC
		 LIMIT $3`,
		domain.OrderPaid, time.Now().UTC().Add(-olderThan), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows *sql.Rows) ([]domain.PaymentOrder, error) {
	var orders []domain.PaymentOrder
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}
