package repository

import (
	"context"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	Update(ctx context.Context, c *model.Company) error

	CreatePlan(ctx context.Context, p *model.SubscriptionPlan) error
	FindPlanByName(ctx context.Context, name string) (*model.SubscriptionPlan, error)
	CreateSubscription(ctx context.Context, s *model.CompanySubscription) error
	// FindSubscription returns the company's subscription with its plan preloaded.
	FindSubscription(ctx context.Context, companyID uuid.UUID) (*model.CompanySubscription, error)
	UpdateSubscription(ctx context.Context, s *model.CompanySubscription) error
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *companyRepo) Update(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *companyRepo) CreatePlan(ctx context.Context, p *model.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *companyRepo) FindPlanByName(ctx context.Context, name string) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error
	return &p, err
}

func (r *companyRepo) CreateSubscription(ctx context.Context, s *model.CompanySubscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *companyRepo) FindSubscription(ctx context.Context, companyID uuid.UUID) (*model.CompanySubscription, error) {
	var s model.CompanySubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("company_id = ?", companyID).First(&s).Error
	return &s, err
}

func (r *companyRepo) UpdateSubscription(ctx context.Context, s *model.CompanySubscription) error {
	return r.db.WithContext(ctx).Save(s).Error
}
