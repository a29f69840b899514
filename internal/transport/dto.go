package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/pagination"
)

type SizeStock struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

type CreateProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Sizes []SizeStock     `json:"sizes"`
}

type CreatedResponse struct {
	ID string `json:"id"`
}

type ProductSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ProductResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Price     float64     `json:"price"`
	Sizes     []SizeStock `json:"sizes"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ProductListResponse struct {
	Data []ProductSummary `json:"data"`
	Page pagination.Page  `json:"page"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

type CreateOrderRequest struct {
	UserID string             `json:"userId"`
	Items  []OrderItemRequest `json:"items"`
}

type ProductDetails struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrderItemResponse struct {
	ProductDetails ProductDetails `json:"productDetails"`
	Qty            int            `json:"qty"`
}

type OrderResponse struct {
	ID        string              `json:"id"`
	Items     []OrderItemResponse `json:"items"`
	Total     float64             `json:"total"`
	CreatedAt time.Time           `json:"createdAt"`
}

type OrderListResponse struct {
	Data []OrderResponse `json:"data"`
	Page pagination.Page `json:"page"`
}
