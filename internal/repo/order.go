package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

func (r *GormRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	m := models.Order{
		UserID:    o.UserID,
		Total:     o.Total,
		CreatedAt: utcOrNow(o.CreatedAt),
		UpdatedAt: utcOrNow(o.UpdatedAt),
	}
	m.Items = make([]models.OrderItem, 0, len(o.Items))
	for i, it := range o.Items {
		m.Items = append(m.Items, models.OrderItem{Position: i, ProductID: it.ProductID, Qty: it.Qty})
	}

	if err := r.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}

	o.ID = m.ID.String()
	o.CreatedAt = m.CreatedAt
	o.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID string, w pagination.Window) (pagination.Result[domain.Order], error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	rows, total, err := paginate[models.Order](q, "created_at DESC, id DESC", w, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Items", orderByPosition)
	})
	if err != nil {
		return pagination.Result[domain.Order]{}, err
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, m := range rows {
		orders = append(orders, toDomainOrder(m))
	}
	return pagination.Result[domain.Order]{Items: orders, Total: total}, nil
}
