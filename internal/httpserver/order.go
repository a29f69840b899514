package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/idempotency"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore is implemented by idempotency.RedisStore.
type IdempotencyStore interface {
	Begin(ctx context.Context, key, fingerprint string) (idempotency.State, string, error)
	Complete(ctx context.Context, key, fingerprint, orderID string) error
	Abort(ctx context.Context, key string) error
}

type OrderHTTP struct {
	Svc         *service.LedgerService
	Idempotency IdempotencyStore
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if h.Idempotency == nil {
		key = ""
	}
	var fingerprint string
	if key != "" {
		fp, err := idempotency.Fingerprint(req)
		if err != nil {
			l.Warn("idempotency_unavailable", "error", err)
			key = ""
		}
		fingerprint = fp
	}
	if key != "" {
		state, orderID, err := h.Idempotency.Begin(ctx, key, fingerprint)
		switch {
		case err != nil:
			l.Warn("idempotency_unavailable", "error", err)
			key = ""
		case state == idempotency.StateMismatch:
			l.Warn("create_order_error", "status", 422, "reason", "idempotency key reused with different body")
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "idempotency key was used with a different request")
		case state == idempotency.StateDone:
			l.Info("create_order_replayed", "order_id", orderID)
			return c.JSON(http.StatusCreated, transport.CreatedResponse{ID: orderID})
		case state == idempotency.StateInFlight:
			l.Warn("create_order_error", "status", 409, "reason", "duplicate request in flight")
			return echo.NewHTTPError(http.StatusConflict, "request with this idempotency key is in progress")
		}
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{ProductID: it.ProductID, Qty: it.Qty})
	}

	id, err := h.Svc.CreateOrder(ctx, req.UserID, items)
	if err != nil {
		if key != "" {
			if aerr := h.Idempotency.Abort(ctx, key); aerr != nil {
				l.Warn("idempotency_abort_failed", "error", aerr)
			}
		}
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("create_order_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInsufficientStock):
			l.Warn("create_order_error", "status", 400, "reason", "insufficient stock", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "insufficient stock")
		default:
			l.Error("create_order_error", "status", 500, "reason", "cannot save order", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot save order")
		}
	}

	if key != "" {
		if err := h.Idempotency.Complete(ctx, key, fingerprint, id); err != nil {
			l.Warn("idempotency_complete_failed", "order_id", id, "error", err)
		}
	}

	l.Info("create_order_success", "order_id", id)
	return c.JSON(http.StatusCreated, transport.CreatedResponse{ID: id})
}

func (h *OrderHTTP) GetUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_user_orders")

	limit, offset, err := windowParams(c)
	if err != nil {
		l.Warn("get_orders_error", "status", 400, "reason", "invalid pagination", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	page, err := h.Svc.GetUserOrders(ctx, c.Param("userId"), limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("get_orders_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("get_orders_error", "status", 500, "reason", "cannot list orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	data := make([]transport.OrderResponse, 0, len(page.Items))
	for _, o := range page.Items {
		items := make([]transport.OrderItemResponse, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, transport.OrderItemResponse{
				ProductDetails: transport.ProductDetails{ID: it.ProductID, Name: it.ProductName},
				Qty:            it.Qty,
			})
		}
		data = append(data, transport.OrderResponse{
			ID:        o.ID,
			Items:     items,
			Total:     o.Total.InexactFloat64(),
			CreatedAt: o.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, transport.OrderListResponse{Data: data, Page: page.Page})
}
