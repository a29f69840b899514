package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

// ProductStore is implemented by repo.GormRepo and mongostore.Store.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context, f domain.ProductFilter, w pagination.Window) (pagination.Result[domain.Product], error)
	DecrementSize(ctx context.Context, id, size string, qty int, at time.Time) (bool, error)
	RestockSize(ctx context.Context, id, size string, qty int, at time.Time) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	ListOrdersByUser(ctx context.Context, userID string, w pagination.Window) (pagination.Result[domain.Order], error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Recorder receives order placement outcomes. metrics.Registry implements it.
type Recorder interface {
	OrderCreated(total float64)
	OrderRejected(reason string)
	ReservationFailed()
	CompensationFailed()
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated(float64) {}
func (nopRecorder) OrderRejected(string) {}
func (nopRecorder) ReservationFailed() {}
func (nopRecorder) CompensationFailed() {}
