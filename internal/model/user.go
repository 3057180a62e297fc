package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User roles.
const (
	RolePlatformManager = "platform_manager"
	RoleCompanyManager  = "company_manager"
	RoleAccountant      = "accountant"
	RoleRepresentative  = "representative"
	RoleMerchant        = "merchant"
	RoleCashier         = "cashier"
)

// User stores system users with role-based access.
// CompanyID is nil only for platform managers.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID    *uuid.UUID `gorm:"type:uuid;index"`
	Username     string     `gorm:"uniqueIndex;not null"`
	Name         string     `gorm:"not null"`
	Email        *string
	Phone        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`

	// Debt and ProductsCount are derived caches owned by the balance
	// recalculator. They must always be re-derivable from the approved
	// transaction history; never write them from anywhere else.
	Debt          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	ProductsCount int             `gorm:"not null;default:0"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Company *Company `gorm:"foreignKey:CompanyID"`
}

// IsPartner reports whether the user transacts against the ledger.
func (u *User) IsPartner() bool {
	return u.Role == RoleMerchant || u.Role == RoleRepresentative
}
