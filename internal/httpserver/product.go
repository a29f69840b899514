package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/pagination"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sizes := make([]domain.SizeStock, 0, len(req.Sizes))
	for _, s := range req.Sizes {
		sizes = append(sizes, domain.SizeStock{Size: s.Size, Quantity: s.Quantity})
	}

	id, err := h.Svc.CreateProduct(ctx, req.Name, req.Price, sizes)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_product_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add product to db")
	}

	l.Info("create_product_success", "product_id", id)
	return c.JSON(http.StatusCreated, transport.CreatedResponse{ID: id})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	p, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_error", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get product")
	}

	sizes := make([]transport.SizeStock, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		sizes = append(sizes, transport.SizeStock{Size: s.Size, Quantity: s.Quantity})
	}
	return c.JSON(http.StatusOK, transport.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Sizes:     sizes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	})
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	limit, offset, err := windowParams(c)
	if err != nil {
		l.Warn("get_products_error", "status", 400, "reason", "invalid pagination", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := domain.ProductFilter{Name: c.QueryParam("name"), Size: c.QueryParam("size")}
	page, err := h.Svc.ListProducts(ctx, filter, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("get_products_error", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	data := make([]transport.ProductSummary, 0, len(page.Items))
	for _, p := range page.Items {
		data = append(data, transport.ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price.InexactFloat64()})
	}
	return c.JSON(http.StatusOK, transport.ProductListResponse{Data: data, Page: page.Page})
}

func windowParams(c echo.Context) (limit, offset int, err error) {
	limit, err = util.ParseIntDefault(c.QueryParam("limit"), pagination.DefaultLimit)
	if err != nil {
		return 0, 0, errors.New("limit: " + err.Error())
	}
	offset, err = util.ParseIntDefault(c.QueryParam("offset"), 0)
	if err != nil {
		return 0, 0, errors.New("offset: " + err.Error())
	}
	return limit, offset, nil
}
