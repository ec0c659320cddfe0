package repo

import (
	"context"
	"fmt"
	"strings"

	"ecom-checkout/internal/domain"
)

type catalogStore struct {
	q querier
}

func (r *catalogStore) FindByIDs(ctx context.Context, ids []int) ([]*domain.Product, error) {
	return r.findByIDs(ctx, ids, false)
}

func (r *catalogStore) FindByIDsForUpdate(ctx context.Context, ids []int) ([]*domain.Product, error) {
	return r.findByIDs(ctx, ids, true)
}

func (r *catalogStore) findByIDs(ctx context.Context, ids []int, forUpdate bool) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT id, name, price, stock_quantity, available FROM products WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.StockQuantity,
			&p.Available,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *catalogStore) SaveAll(ctx context.Context, products []*domain.Product) error {
	query := `UPDATE products SET price = $1, stock_quantity = $2, available = $3 WHERE id = $4`
	for _, p := range products {
		_, err := r.q.ExecContext(ctx, query, p.Price, p.StockQuantity, p.Available, p.ID)
		if err != nil {
			return err
		}
	}
	return nil
}
