package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

const (
	ProductEventsTopic = "product_events"
	maxNameLen         = 200
	maxPriceScale      = 2
)

// maxPrice is the exclusive upper bound a numeric(12,2) price column can hold.
var maxPrice = decimal.New(1, 10)

type ProductCreatedEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"productID"`
	Name      string `json:"name"`
}

type ProductPage struct {
	Items []domain.Product
	Total int64
	Page  pagination.Page
}

type CatalogService struct {
	Store  ProductStore
	Events Publisher
	Now    func() time.Time
}

func NewCatalogService(store ProductStore, events Publisher) *CatalogService {
	return &CatalogService{Store: store, Events: events, Now: time.Now}
}

func (svc *CatalogService) now() time.Time {
	if svc.Now == nil {
		return time.Now().UTC()
	}
	return svc.Now().UTC()
}

func (svc *CatalogService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, sizes []domain.SizeStock) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrValidation, maxNameLen)
	}
	if !price.IsPositive() {
		return "", fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if !price.Equal(price.Truncate(maxPriceScale)) {
		return "", fmt.Errorf("%w: price must have at most %d decimal places", ErrValidation, maxPriceScale)
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return "", fmt.Errorf("%w: price must be below %s", ErrValidation, maxPrice)
	}
	if len(sizes) == 0 {
		return "", fmt.Errorf("%w: at least one size required", ErrValidation)
	}

	seen := make(map[string]struct{}, len(sizes))
	clean := make([]domain.SizeStock, 0, len(sizes))
	for _, s := range sizes {
		label := strings.TrimSpace(s.Size)
		if label == "" {
			return "", fmt.Errorf("%w: size label required", ErrValidation)
		}
		if s.Quantity < 0 {
			return "", fmt.Errorf("%w: quantity for size %q must be >= 0", ErrValidation, label)
		}
		if _, dup := seen[label]; dup {
			return "", fmt.Errorf("%w: duplicate size %q", ErrValidation, label)
		}
		seen[label] = struct{}{}
		clean = append(clean, domain.SizeStock{Size: label, Quantity: s.Quantity})
	}

	at := svc.now()
	p := &domain.Product{Name: name, Price: price, Sizes: clean, CreatedAt: at, UpdatedAt: at}
	if err := svc.Store.CreateProduct(ctx, p); err != nil {
		return "", fmt.Errorf("%w: create product: %v", ErrPersistence, err)
	}

	if svc.Events != nil {
		event := ProductCreatedEvent{Type: "product_created", ProductID: p.ID, Name: p.Name}
		if err := svc.Events.PublishEvent(ctx, ProductEventsTopic, p.ID, event); err != nil {
			logging.FromContext(ctx).Warn("publish_event_failed", "topic", ProductEventsTopic, "product_id", p.ID, "error", err)
		}
	}
	return p.ID, nil
}

func (svc *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := svc.Store.GetProduct(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	}
	return p, nil
}

func (svc *CatalogService) ListProducts(ctx context.Context, f domain.ProductFilter, limit, offset int) (ProductPage, error) {
	w, err := pagination.NewWindow(limit, offset)
	if err != nil {
		return ProductPage{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	f.Name = strings.TrimSpace(f.Name)
	f.Size = strings.TrimSpace(f.Size)

	res, err := svc.Store.ListProducts(ctx, f, w)
	if err != nil {
		return ProductPage{}, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
	}
	return ProductPage{Items: res.Items, Total: res.Total, Page: w.Page(res.Total)}, nil
}
