package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	// TransactionTake hands products to a partner: stock down, merchant debt up.
	TransactionTake TransactionType = "take"
	// TransactionRestore returns products from a partner: stock up.
	TransactionRestore TransactionType = "restore"
	// TransactionPayment records money received from a merchant: debt down.
	TransactionPayment TransactionType = "payment"
	// TransactionFees records a company expense; no user, no stock effect.
	TransactionFees TransactionType = "fees"
)

// TransactionStatus is the approval state of a ledger entry.
// Stock, debt and products_count effects are applied only on the
// pending → approved transition and reversed on delete of an approved entry.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pending"
	StatusApproved TransactionStatus = "approved"
	StatusRejected TransactionStatus = "rejected"
)

// Transaction is the ledger entry: one stock movement or monetary event.
// Amount is derived from items for take/restore and authoritative input for
// payment/fees.
type Transaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index;not null"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`

	Type   TransactionType   `gorm:"type:varchar(10);not null"`
	Status TransactionStatus `gorm:"type:varchar(10);not null;default:'pending'"`

	Amount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Notes  *string

	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedByID *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	User       *User             `gorm:"foreignKey:UserID"`
	CreatedBy  *User             `gorm:"foreignKey:CreatedByID"`
	ApprovedBy *User             `gorm:"foreignKey:ApprovedByID"`
	Items      []TransactionItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// MovesStock reports whether this transaction type has stock side effects.
func (t *Transaction) MovesStock() bool {
	return t.Type == TransactionTake || t.Type == TransactionRestore
}

// StockDirection is the per-unit stock delta sign applied at approval:
// take removes from stock, restore adds back. Zero for monetary types.
func (t *Transaction) StockDirection() int {
	switch t.Type {
	case TransactionTake:
		return -1
	case TransactionRestore:
		return 1
	}
	return 0
}

// DebtDelta is the signed debt change applied to a merchant at approval.
func (t *Transaction) DebtDelta() decimal.Decimal {
	switch t.Type {
	case TransactionTake:
		return t.Amount
	case TransactionPayment:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// TransactionItem is one ledger line. Price is snapshotted from the product
// at line creation and never changes afterwards; Total is always
// price × quantity. Deleting a product with existing lines is blocked at the
// DB level (RESTRICT), but reversal still tolerates a missing product.
type TransactionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null"`

	// Quantity zero is legal: bulk-entry forms submit placeholder lines.
	Quantity int             `gorm:"not null;default:0"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}
