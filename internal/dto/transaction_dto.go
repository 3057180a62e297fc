package dto

import "github.com/shopspring/decimal"

type TransactionItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	// Zero quantity is accepted: bulk-entry forms submit placeholder lines.
	Quantity int `json:"quantity" validate:"min=0"`
}

type CreateTransactionRequest struct {
	// UserID is required for take/restore/payment, absent for fees.
	UserID *string `json:"user_id" validate:"omitempty,uuid"`
	Type   string  `json:"type"    validate:"required,oneof=take restore payment fees"`
	// Amount is authoritative for payment/fees and ignored for take/restore
	// (those derive it from items).
	Amount *decimal.Decimal         `json:"amount" validate:"omitempty"`
	Notes  *string                  `json:"notes"`
	Items  []TransactionItemRequest `json:"items"  validate:"omitempty,dive"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"min=0"`
	// Price overrides the product price snapshot. Once the parent is
	// approved the snapshot is frozen and this field is ignored.
	Price *decimal.Decimal `json:"price" validate:"omitempty"`
}

type UpdateItemRequest struct {
	Quantity *int             `json:"quantity" validate:"omitempty,min=0"`
	Price    *decimal.Decimal `json:"price"    validate:"omitempty"`
}

// TransactionFilter is bound from the query string of GET /v1/transactions.
type TransactionFilter struct {
	UserID string `form:"user_id" validate:"omitempty,uuid"`
	Type   string `form:"type"    validate:"omitempty,oneof=take restore payment fees"`
	Status string `form:"status"  validate:"omitempty,oneof=pending approved rejected"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransactionItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type TransactionResponse struct {
	ID         string                    `json:"id"`
	UserID     *string                   `json:"user_id,omitempty"`
	UserName   string                    `json:"user_name,omitempty"`
	Type       string                    `json:"type"`
	Status     string                    `json:"status"`
	Amount     decimal.Decimal           `json:"amount"`
	Notes      *string                   `json:"notes,omitempty"`
	ApprovedBy *string                   `json:"approved_by,omitempty"`
	ApprovedAt *string                   `json:"approved_at,omitempty"`
	Items      []TransactionItemResponse `json:"items"`
	CreatedAt  string                    `json:"created_at"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// DecisionResponse reports the outcome of an approve/reject call.
// Success false means the transaction was already processed — a benign
// state conflict, not an error.
type DecisionResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}
