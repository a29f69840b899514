package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when a lookup misses, including for
// identifiers that are not well formed for the backend.
var ErrNotFound = errors.New("not found")

// SizeStock is one stock-tracked variant of a product.
type SizeStock struct {
	Size     string
	Quantity int
}

type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Sizes     []SizeStock
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalQuantity sums stock over every size variant.
func (p Product) TotalQuantity() int {
	total := 0
	for _, s := range p.Sizes {
		total += s.Quantity
	}
	return total
}

// ProductFilter narrows a catalog listing. Empty fields do not filter.
type ProductFilter struct {
	Name string
	Size string
}
