package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is a tenant. Every catalog row, transaction and sale carries its
// company id; repositories always filter by it.
type Company struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"not null"`
	Email   string    `gorm:"not null"`
	Phone   *string
	Address *string

	// TaxRate is a percentage applied at checkout (e.g. 15 for 15% VAT).
	TaxRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxName string          `gorm:"type:varchar(50);not null;default:'VAT'"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Company) TableName() string { return "companies" }

// SubscriptionPlan defines the feature set and limits a company pays for.
type SubscriptionPlan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description *string

	MaxUsers    int `gorm:"not null;default:5"`
	MaxProducts int `gorm:"not null;default:100"`

	HasInventory bool `gorm:"not null;default:true"`
	HasPOS       bool `gorm:"not null;default:true;column:has_pos"`

	PriceMonthly decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PriceYearly  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TrialDays    int             `gorm:"not null;default:14"`

	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription statuses.
const (
	SubscriptionPending   = "pending"
	SubscriptionTrial     = "trial"
	SubscriptionActive    = "active"
	SubscriptionExpired   = "expired"
	SubscriptionCancelled = "cancelled"
)

// CompanySubscription links a company to its plan.
type CompanySubscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null"`

	Status string `gorm:"type:varchar(20);not null;default:'pending'"`

	StartDate    *time.Time
	EndDate      *time.Time
	TrialEndDate *time.Time

	PaymentVerified bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID"`
}

// IsValid reports whether the subscription currently allows access.
func (s *CompanySubscription) IsValid(now time.Time) bool {
	today := now.Truncate(24 * time.Hour)
	switch s.Status {
	case SubscriptionTrial:
		return s.TrialEndDate != nil && !s.TrialEndDate.Before(today)
	case SubscriptionActive:
		return s.EndDate != nil && !s.EndDate.Before(today)
	}
	return false
}
