package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/pagination"
)

const (
	OrderEventsTopic = "order_events"
	MissingProduct   = "Product Not Found"
)

// Rejection reasons passed to Recorder.OrderRejected.
const (
	RejectValidation  = "validation"
	RejectUnavailable = "unavailable"
	RejectReservation = "reservation"
	RejectPersistence = "persistence"
)

type OrderCreatedEvent struct {
	Type    string           `json:"type"`
	OrderID string           `json:"orderID"`
	UserID  string           `json:"userID"`
	Total   decimal.Decimal  `json:"total"`
	Items   []OrderEventItem `json:"items"`
}

type OrderEventItem struct {
	ProductID string `json:"productID"`
	Qty       int    `json:"qty"`
}

type HydratedItem struct {
	ProductID   string
	ProductName string
	Qty         int
}

type HydratedOrder struct {
	ID        string
	UserID    string
	Items     []HydratedItem
	Total     decimal.Decimal
	CreatedAt time.Time
}

type OrderPage struct {
	Items []HydratedOrder
	Total int64
	Page  pagination.Page
}

type LedgerService struct {
	Products  ProductStore
	Orders    OrderStore
	Inventory *InventoryService
	Events    Publisher
	Metrics   Recorder
	Tracer    trace.Tracer
	Now       func() time.Time
}

func NewLedgerService(products ProductStore, orders OrderStore, inventory *InventoryService, events Publisher, metrics Recorder) *LedgerService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &LedgerService{
		Products:  products,
		Orders:    orders,
		Inventory: inventory,
		Events:    events,
		Metrics:   metrics,
		Tracer:    otel.Tracer("storefront/service"),
		Now:       time.Now,
	}
}

func (svc *LedgerService) now() time.Time {
	if svc.Now == nil {
		return time.Now().UTC()
	}
	return svc.Now().UTC()
}

func (svc *LedgerService) metrics() Recorder {
	if svc.Metrics == nil {
		return nopRecorder{}
	}
	return svc.Metrics
}

func (svc *LedgerService) tracer() trace.Tracer {
	if svc.Tracer == nil {
		return otel.Tracer("storefront/service")
	}
	return svc.Tracer
}

func validateOrder(userID string, items []domain.OrderItem) (string, []domain.OrderItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", nil, fmt.Errorf("%w: userId required", ErrValidation)
	}
	if len(items) == 0 {
		return "", nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	clean := make([]domain.OrderItem, 0, len(items))
	for i, it := range items {
		pid := strings.TrimSpace(it.ProductID)
		if pid == "" {
			return "", nil, fmt.Errorf("%w: items[%d].productId required", ErrValidation, i)
		}
		if it.Qty <= 0 {
			return "", nil, fmt.Errorf("%w: items[%d].qty must be > 0", ErrValidation, i)
		}
		clean = append(clean, domain.OrderItem{ProductID: pid, Qty: it.Qty})
	}
	return userID, clean, nil
}

// CreateOrder prices every item, reserves stock for all of them and only then
// writes the order. Reservations already taken are released when a later
// step fails, so a rejected order never leaves stock decremented.
func (svc *LedgerService) CreateOrder(ctx context.Context, userID string, items []domain.OrderItem) (string, error) {
	ctx, span := svc.tracer().Start(ctx, "LedgerService.CreateOrder")
	defer span.End()

	id, err := svc.createOrder(ctx, userID, items)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.String("order.id", id))
	return id, nil
}

func (svc *LedgerService) createOrder(ctx context.Context, userID string, items []domain.OrderItem) (string, error) {
	l := logging.FromContext(ctx)
	m := svc.metrics()

	userID, items, err := validateOrder(userID, items)
	if err != nil {
		m.OrderRejected(RejectValidation)
		return "", err
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("order.user_id", userID),
		attribute.Int("order.items", len(items)),
	)

	total := decimal.Zero
	for _, it := range items {
		av, err := svc.Inventory.CheckAvailability(ctx, it.ProductID, it.Qty)
		if err != nil {
			m.OrderRejected(RejectPersistence)
			return "", err
		}
		if !av.Available {
			m.OrderRejected(RejectUnavailable)
			return "", fmt.Errorf("%w: product %s", ErrInsufficientStock, it.ProductID)
		}
		total = total.Add(av.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}

	reserved := make([]Reservation, 0, len(items))
	for _, it := range items {
		r, ok, err := svc.Inventory.Reserve(ctx, it.ProductID, it.Qty)
		if err == nil && !ok {
			err = fmt.Errorf("%w: product %s", ErrInsufficientStock, it.ProductID)
		}
		if err != nil {
			m.ReservationFailed()
			svc.releaseAll(ctx, reserved)
			if errors.Is(err, ErrInsufficientStock) {
				m.OrderRejected(RejectReservation)
			} else {
				m.OrderRejected(RejectPersistence)
			}
			return "", err
		}
		reserved = append(reserved, r)
	}

	at := svc.now()
	order := &domain.Order{UserID: userID, Items: items, Total: total, CreatedAt: at, UpdatedAt: at}
	if err := svc.Orders.CreateOrder(ctx, order); err != nil {
		l.Error("persist_order_failed", "user_id", userID, "error", err)
		svc.releaseAll(ctx, reserved)
		m.OrderRejected(RejectPersistence)
		return "", fmt.Errorf("%w: create order: %v", ErrPersistence, err)
	}

	m.OrderCreated(total.InexactFloat64())
	svc.publishOrderCreated(ctx, order)
	return order.ID, nil
}

func (svc *LedgerService) releaseAll(ctx context.Context, reserved []Reservation) {
	for _, r := range reserved {
		if err := svc.Inventory.Release(ctx, r); err != nil {
			svc.metrics().CompensationFailed()
			logging.FromContext(ctx).Error("release_reservation_failed",
				"product_id", r.ProductID, "size", r.Size, "qty", r.Qty, "error", err)
		}
	}
}

func (svc *LedgerService) publishOrderCreated(ctx context.Context, o *domain.Order) {
	if svc.Events == nil {
		return
	}
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderEventItem{ProductID: it.ProductID, Qty: it.Qty})
	}
	event := OrderCreatedEvent{Type: "order_created", OrderID: o.ID, UserID: o.UserID, Total: o.Total, Items: items}
	if err := svc.Events.PublishEvent(ctx, OrderEventsTopic, o.ID, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", OrderEventsTopic, "order_id", o.ID, "error", err)
	}
}

// GetUserOrders returns one page of the user's orders, newest first, with a
// product name on every item.
func (svc *LedgerService) GetUserOrders(ctx context.Context, userID string, limit, offset int) (OrderPage, error) {
	ctx, span := svc.tracer().Start(ctx, "LedgerService.GetUserOrders")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return OrderPage{}, fmt.Errorf("%w: userId required", ErrValidation)
	}
	w, err := pagination.NewWindow(limit, offset)
	if err != nil {
		return OrderPage{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	res, err := svc.Orders.ListOrdersByUser(ctx, userID, w)
	if err != nil {
		span.RecordError(err)
		return OrderPage{}, fmt.Errorf("%w: list orders: %v", ErrPersistence, err)
	}

	names := make(map[string]string)
	orders := make([]HydratedOrder, 0, len(res.Items))
	for _, o := range res.Items {
		items := make([]HydratedItem, 0, len(o.Items))
		for _, it := range o.Items {
			name, err := svc.productName(ctx, names, it.ProductID)
			if err != nil {
				return OrderPage{}, err
			}
			items = append(items, HydratedItem{ProductID: it.ProductID, ProductName: name, Qty: it.Qty})
		}
		orders = append(orders, HydratedOrder{ID: o.ID, UserID: o.UserID, Items: items, Total: o.Total, CreatedAt: o.CreatedAt})
	}

	return OrderPage{Items: orders, Total: res.Total, Page: w.Page(res.Total)}, nil
}

func (svc *LedgerService) productName(ctx context.Context, cache map[string]string, id string) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}
	p, err := svc.Products.GetProduct(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		cache[id] = MissingProduct
	case err != nil:
		return "", fmt.Errorf("%w: get product: %v", ErrPersistence, err)
	default:
		cache[id] = p.Name
	}
	return cache[id], nil
}
