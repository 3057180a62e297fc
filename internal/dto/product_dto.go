package dto

import "github.com/shopspring/decimal"

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Barcode    string `form:"barcode"`
	// Active: "false" = inactive only, "all" = everything, default = active only
	Active   string `form:"active"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CreateProductRequest struct {
	Name              string          `json:"name"        validate:"required"`
	Description       *string         `json:"description"`
	CategoryID        *string         `json:"category_id" validate:"omitempty,uuid"`
	Price             decimal.Decimal `json:"price"       validate:"min=0"`
	Cost              decimal.Decimal `json:"cost"        validate:"min=0"`
	Stock             int             `json:"stock"       validate:"min=0"`
	LowStockThreshold int             `json:"low_stock_threshold" validate:"min=0"`
	SKU               *string         `json:"sku"`
	Barcode           *string         `json:"barcode"`
}

type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id" validate:"omitempty,uuid"`
	Price             *decimal.Decimal `json:"price"`
	Cost              *decimal.Decimal `json:"cost"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	SKU               *string          `json:"sku"`
	Barcode           *string          `json:"barcode"`
}

// AdjustStockRequest applies a manual signed stock delta with a reason.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type ProductResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	CategoryID        *string         `json:"category_id,omitempty"`
	CategoryName      string          `json:"category_name,omitempty"`
	Price             decimal.Decimal `json:"price"`
	Cost              decimal.Decimal `json:"cost"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	SKU               *string         `json:"sku,omitempty"`
	Barcode           *string         `json:"barcode,omitempty"`
	Active            bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// BarcodeLookupResponse is the POS price-check payload, cached in redis.
type BarcodeLookupResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category,omitempty"`
}
