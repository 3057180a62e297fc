package repository

import (
	"context"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserRepository defines the data access contract for users.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via in-memory stubs.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.User, error)
	ListPartners(ctx context.Context, companyID uuid.UUID) ([]model.User, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error

	// FindForUpdateTx locks the user row for the duration of the transaction.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.User, error)
	// UpdateBalancesTx writes the derived caches inside a ledger transaction.
	UpdateBalancesTx(tx *gorm.DB, id uuid.UUID, debt decimal.Decimal, productsCount int) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	return &u, err
}

func (r *userRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, includeInactive bool) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Order("username ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) ListPartners(ctx context.Context, companyID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND role IN ? AND active = true",
			companyID, []string{model.RoleMerchant, model.RoleRepresentative}).
		Order("name ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("company_id = ? AND active = true", companyID).Count(&n).Error
	return n, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("active", false).Error
}

func (r *userRepo) Reactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("active", true).Error
}

func (r *userRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := tx.Clauses(forUpdate()).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *userRepo) UpdateBalancesTx(tx *gorm.DB, id uuid.UUID, debt decimal.Decimal, productsCount int) error {
	return tx.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"debt":           debt,
		"products_count": productsCount,
	}).Error
}
