package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product keeps NameKey and ProductSize.SizeKey as Unicode-lowercased copies
// so case-insensitive filters do not depend on the database's LOWER().
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name      string          `gorm:"not null"`
	NameKey   string          `gorm:"not null;index"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Sizes     []ProductSize   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"index"`
	UpdatedAt time.Time
}

// ProductSize keeps one size variant per row; Position preserves the order
// the sizes were submitted in.
type ProductSize struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_size,priority:1"`
	Position  int       `gorm:"not null"`
	Size      string    `gorm:"not null;uniqueIndex:idx_product_size,priority:2"`
	SizeKey   string    `gorm:"not null;index:idx_product_sizes_size"`
	Quantity  int       `gorm:"not null;check:quantity >= 0"`
}

type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    string          `gorm:"not null;index"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"index"`
	UpdatedAt time.Time
}

type OrderItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	ProductID string    `gorm:"not null;size:64"`
	Qty       int       `gorm:"not null;check:qty > 0"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// All lists every table the service migrates.
func All() []any {
	return []any{&Product{}, &ProductSize{}, &Order{}, &OrderItem{}}
}
