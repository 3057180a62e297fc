package repository

import (
	"context"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailySummaryRow is the scanned aggregate for the POS daily summary.
type DailySummaryRow struct {
	SalesCount    int64
	TotalRevenue  decimal.NullDecimal
	TotalDiscount decimal.NullDecimal
	TotalTax      decimal.NullDecimal
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.SaleFilter) ([]model.Sale, int64, error)
	FindForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Sale, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	DailySummary(ctx context.Context, companyID uuid.UUID, date string) (*DailySummaryRow, error)
	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items.Product").Preload("Cashier").
		Where("company_id = ? AND id = ?", companyID, id).First(&s).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, companyID uuid.UUID, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("company_id = ?", companyID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) FindForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.Clauses(forUpdate()).
		Where("company_id = ? AND id = ?", companyID, id).First(&s).Error
	if err != nil {
		return nil, err
	}
	err = tx.Where("sale_id = ?", id).Find(&s.Items).Error
	return &s, err
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) DailySummary(ctx context.Context, companyID uuid.UUID, date string) (*DailySummaryRow, error) {
	var row DailySummaryRow
	q := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("company_id = ? AND status = ?", companyID, model.SaleCompleted)
	if date != "" {
		q = q.Where("DATE(created_at) = ?", date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	err := q.Select("COUNT(*) AS sales_count, SUM(total) AS total_revenue, SUM(discount) AS total_discount, SUM(tax_amount) AS total_tax").
		Scan(&row).Error
	return &row, err
}
