package dto

import "github.com/shopspring/decimal"

type CheckoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`

	// Discount is a flat amount, DiscountPercentage applies on top of the
	// subtotal; both may be combined.
	Discount           decimal.Decimal `json:"discount"            validate:"min=0"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" validate:"min=0,max=100"`

	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card transfer"`
	AmountPaid    decimal.Decimal `json:"amount_paid"    validate:"min=0"`

	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	// CustomerEmail: when present, the receipt worker mails the PDF receipt.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	Notes         *string `json:"notes"`
}

// SaleFilter is bound from the query string of GET /v1/pos/sales.
type SaleFilter struct {
	Date   string `form:"date"` // YYYY-MM-DD; empty = today
	Status string `form:"status,default=completed"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID                 string             `json:"id"`
	ReceiptNumber      string             `json:"receipt_number"`
	Items              []SaleItemResponse `json:"items"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Discount           decimal.Decimal    `json:"discount"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	TaxAmount          decimal.Decimal    `json:"tax_amount"`
	Total              decimal.Decimal    `json:"total"`
	PaymentMethod      string             `json:"payment_method"`
	AmountPaid         decimal.Decimal    `json:"amount_paid"`
	Change             decimal.Decimal    `json:"change"`
	Status             string             `json:"status"`
	CustomerName       *string            `json:"customer_name,omitempty"`
	CreatedAt          string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// DailySummaryResponse aggregates one day of completed sales.
type DailySummaryResponse struct {
	Date          string          `json:"date"`
	SalesCount    int64           `json:"sales_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
}

// RefundResponse reports the outcome of a refund call. Success false means
// the sale was not in completed state.
type RefundResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}
