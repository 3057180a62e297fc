package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product with stock tracking, scoped to a company.
// Stock is mutated only through ledger/sale application and reversal —
// every change goes through UpdateStockTx and leaves a StockMovement row.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"index;not null"`
	Description *string

	Price decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Cost  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`

	Stock             int `gorm:"not null;default:0"`
	LowStockThreshold int `gorm:"not null;default:10"`

	SKU     *string `gorm:"type:varchar(100);column:sku"`
	Barcode *string `gorm:"type:varchar(100);index"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}

// IsLowStock reports whether stock is at or below the low stock threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// ProfitMargin returns the margin percentage, zero when cost is unset.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.Cost.IsZero() {
		return decimal.Zero
	}
	return p.Price.Sub(p.Cost).Div(p.Cost).Mul(decimal.NewFromInt(100))
}
