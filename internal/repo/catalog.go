package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

var errNoStock = errors.New("size missing or short on stock")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GormRepo) CreateProduct(ctx context.Context, p *domain.Product) error {
	m := models.Product{
		Name:      p.Name,
		NameKey:   strings.ToLower(p.Name),
		Price:     p.Price,
		CreatedAt: utcOrNow(p.CreatedAt),
		UpdatedAt: utcOrNow(p.UpdatedAt),
	}
	m.Sizes = make([]models.ProductSize, 0, len(p.Sizes))
	for i, s := range p.Sizes {
		m.Sizes = append(m.Sizes, models.ProductSize{Position: i, Size: s.Size, SizeKey: strings.ToLower(s.Size), Quantity: s.Quantity})
	}

	if err := r.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}

	p.ID = m.ID.String()
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var m models.Product
	if err := r.DB.WithContext(ctx).Preload("Sizes", orderByPosition).Where("id = ?", uid).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	p := toDomainProduct(m)
	return &p, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f domain.ProductFilter, w pagination.Window) (pagination.Result[domain.Product], error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Name != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Name)) + "%"
		q = q.Where(`name_key LIKE ? ESCAPE '\'`, pattern)
	}
	if f.Size != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.product_id = products.id AND ps.size_key = ? AND ps.quantity > 0)",
			strings.ToLower(f.Size),
		)
	}
	q = q.Session(&gorm.Session{})

	rows, total, err := paginate[models.Product](q, "created_at ASC, id ASC", w, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Sizes", orderByPosition)
	})
	if err != nil {
		return pagination.Result[domain.Product]{}, err
	}

	items := make([]domain.Product, 0, len(rows))
	for _, m := range rows {
		items = append(items, toDomainProduct(m))
	}
	return pagination.Result[domain.Product]{Items: items, Total: total}, nil
}

// DecrementSize subtracts qty from one size in a single conditional UPDATE.
// It reports false without touching anything when the size is missing or holds
// less than qty.
func (r *GormRepo) DecrementSize(ctx context.Context, id, size string, qty int, at time.Time) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductSize{}).
			Where("product_id = ? AND size = ? AND quantity >= ?", uid, size, qty).
			Update("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNoStock
		}
		return tx.Model(&models.Product{}).Where("id = ?", uid).Update("updated_at", at.UTC()).Error
	})
	if errors.Is(err, errNoStock) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormRepo) RestockSize(ctx context.Context, id, size string, qty int, at time.Time) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrNotFound
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ProductSize{}).
			Where("product_id = ? AND size = ?", uid, size).
			Update("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Model(&models.Product{}).Where("id = ?", uid).Update("updated_at", at.UTC()).Error
	})
}
