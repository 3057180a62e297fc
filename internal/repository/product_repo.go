package repository

import (
	"context"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.Product, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, companyID, id uuid.UUID) error
	Reactivate(ctx context.Context, companyID, id uuid.UUID) error
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	// HasLedgerItems reports whether any transaction line references the
	// product (protect-on-delete).
	HasLedgerItems(ctx context.Context, id uuid.UUID) (bool, error)

	// FindForUpdateTx locks the product row; serializes concurrent stock
	// read-modify-write on the same product.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// UpdateStockTx applies a signed stock delta atomically.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	// Stub implementations return nil, which puts services in unit-test mode.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("company_id = ? AND id = ?", companyID, id).First(&p).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("company_id = ? AND barcode = ? AND active = true", companyID, barcode).
		First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, companyID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("company_id = ?", companyID)

	// Active filter: "false" = inactive, "all" = everything, default = active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}

	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Barcode != "" {
		q = q.Where("barcode = ?", filter.Barcode)
	}
	if filter.LowStock {
		q = q.Where("stock <= low_stock_threshold")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Category").Order("name ASC").
		Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("company_id = ? AND id = ?", companyID, id).Update("active", false).Error
}

func (r *productRepo) Reactivate(ctx context.Context, companyID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("company_id = ? AND id = ?", companyID, id).Update("active", true).Error
}

func (r *productRepo) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("company_id = ? AND active = true", companyID).Count(&n).Error
	return n, err
}

func (r *productRepo) HasLedgerItems(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TransactionItem{}).
		Where("product_id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(forUpdate()).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
