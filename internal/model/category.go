package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies products. Name is unique within a company.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_company_category_name;not null"`
	Name        string    `gorm:"uniqueIndex:idx_company_category_name;not null"`
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Category) TableName() string { return "categories" }
