package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// paginate counts q and then loads the requested window of it. q must be a
// reusable session.
func paginate[T any](q *gorm.DB, order string, w pagination.Window, preload func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0, w.Limit)
	if total == 0 || int64(w.Offset) >= total {
		return items, total, nil
	}

	find := q.Order(order).Offset(w.Offset).Limit(w.Limit)
	if preload != nil {
		find = preload(find)
	}
	if err := find.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func toDomainProduct(m models.Product) domain.Product {
	sizes := make([]domain.SizeStock, 0, len(m.Sizes))
	for _, s := range m.Sizes {
		sizes = append(sizes, domain.SizeStock{Size: s.Size, Quantity: s.Quantity})
	}
	return domain.Product{
		ID:        m.ID.String(),
		Name:      m.Name,
		Price:     m.Price,
		Sizes:     sizes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainOrder(m models.Order) domain.Order {
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Qty: it.Qty})
	}
	return domain.Order{
		ID:        m.ID.String(),
		UserID:    m.UserID,
		Items:     items,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
