package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CheckoutItem is one cart line as sent by the client and as frozen into the
// ledger snapshot. The same product may appear on several lines.
type CheckoutItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// CheckoutCart is the snapshot value object stored on a ledger row. It keeps
// the original line order so the persisted JSON is stable across round trips.
type CheckoutCart []CheckoutItem

// ParseCheckoutCart decodes a stored snapshot. Malformed JSON, an empty
// list and invalid lines all surface as ErrInvalidSnapshot: fulfillment
// must not guess at a broken snapshot.
func ParseCheckoutCart(raw string) (CheckoutCart, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty snapshot", ErrInvalidSnapshot)
	}
	var cart CheckoutCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidSnapshot)
	}
	for _, it := range cart {
		if it.ProductID <= 0 {
			return nil, fmt.Errorf("%w: invalid product id %d", ErrInvalidSnapshot, it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: invalid quantity for product %d", ErrInvalidSnapshot, it.ProductID)
		}
	}
	return cart, nil
}

func (c CheckoutCart) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// QuantityByProduct aggregates duplicate lines into a single quantity per
// product id.
func (c CheckoutCart) QuantityByProduct() map[int]int {
	qty := make(map[int]int, len(c))
	for _, it := range c {
		qty[it.ProductID] += it.Quantity
	}
	return qty
}

// ProductIDs returns the distinct product ids, ascending.
func (c CheckoutCart) ProductIDs() []int {
	seen := make(map[int]struct{}, len(c))
	ids := make([]int, 0, len(c))
	for _, it := range c {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Ints(ids)
	return ids
}
