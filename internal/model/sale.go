package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// Sale statuses.
const (
	SaleCompleted = "completed"
	SaleRefunded  = "refunded"
	SaleCancelled = "cancelled"
)

// Sale is a one-shot POS checkout: no approval step, stock is decremented
// when the sale is created and fully restored on refund.
type Sale struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID  `gorm:"type:uuid;index;not null"`
	CashierID *uuid.UUID `gorm:"type:uuid"`

	ReceiptNumber string `gorm:"uniqueIndex;not null"`

	CustomerName  *string
	CustomerPhone *string `gorm:"type:varchar(20)"`
	CustomerEmail *string

	Subtotal           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Discount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Total              decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	PaymentMethod string          `gorm:"type:varchar(20);not null;default:'cash'"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Change        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	Status string `gorm:"type:varchar(20);not null;default:'completed'"`
	Notes  *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Cashier *User      `gorm:"foreignKey:CashierID"`
	Items   []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// NewReceiptNumber generates a unique human-readable receipt number.
func NewReceiptNumber() string {
	return fmt.Sprintf("RCP-%s", strings.ToUpper(uuid.NewString()[:8]))
}

// SaleItem snapshots price and cost at sale time.
type SaleItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`

	Quantity int             `gorm:"not null;default:1"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Cost     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// Profit is the margin earned on this line.
func (i *SaleItem) Profit() decimal.Decimal {
	return i.Price.Sub(i.Cost).Mul(decimal.NewFromInt(int64(i.Quantity)))
}
