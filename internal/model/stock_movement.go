package model

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement types.
const (
	MovementApply    = "transaction_apply"   // ledger approval
	MovementReverse  = "transaction_reverse" // ledger delete reversal
	MovementItemEdit = "item_edit"           // item quantity change on an approved transaction
	MovementSale     = "sale"
	MovementRefund   = "refund"
	MovementAdjust   = "manual_adjust"
)

// StockMovement records every stock change on a product. Rows are immutable:
// reversals create inverse entries, nothing is ever updated or deleted.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type        string `gorm:"not null"`
	Quantity    int    `gorm:"not null"` // signed: positive = into stock
	StockBefore int    `gorm:"not null"`
	StockAfter  int    `gorm:"not null"`

	Reason string
	// ReferenceID links to the originating transaction or sale.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`

	CreatedByID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (StockMovement) TableName() string { return "stock_movements" }
