package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem references a product weakly: the product may be gone later.
type OrderItem struct {
	ProductID string
	Qty       int
}

// Order is immutable once persisted; Total is the price snapshot taken at creation.
type Order struct {
	ID        string
	UserID    string
	Items     []OrderItem
	Total     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
