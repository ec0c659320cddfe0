package domain

import (
	"github.com/shopspring/decimal"
)

// Product is the slice of a catalog record this subsystem needs: enough to
// price a cart and to decrement stock. The catalog service owns the rest.
type Product struct {
	ID            int
	Name          string
	Price         decimal.Decimal
	StockQuantity int
	Available     bool
}

// Decrement removes qty units of stock, clamping at zero. A product that
// runs out is flagged unavailable.
func (p *Product) Decrement(qty int) {
	p.StockQuantity -= qty
	if p.StockQuantity <= 0 {
		p.StockQuantity = 0
		p.Available = false
	}
}
