package repository

import (
	"context"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository is the persistence contract for the ledger aggregate
// (transactions plus their items) and for the aggregation queries the
// balance recalculator runs over the approved history.
type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, companyID uuid.UUID, filter dto.TransactionFilter) ([]model.Transaction, int64, error)

	// FindForUpdateTx locks the transaction row (items preloaded); callers
	// hold the lock for the whole mutate → stock → recompute sequence.
	FindForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Transaction, error)
	UpdateTx(tx *gorm.DB, t *model.Transaction) error
	UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// Items
	FindItem(ctx context.Context, companyID, itemID uuid.UUID) (*model.TransactionItem, error)
	SaveItemTx(tx *gorm.DB, item *model.TransactionItem) error
	DeleteItemTx(tx *gorm.DB, id uuid.UUID) error
	SumItemTotalsTx(tx *gorm.DB, transactionID uuid.UUID) (decimal.Decimal, error)

	// Balance recalculation queries. exclude, when set, recomputes "as if
	// that transaction did not exist" (used during deletion).
	SumItemQuantitiesTx(tx *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (int, error)
	SumAmountsTx(tx *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (decimal.Decimal, error)

	DB() *gorm.DB
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items.Product").Preload("User").Preload("ApprovedBy").
		Where("company_id = ? AND id = ?", companyID, id).First(&t).Error
	return &t, err
}

func (r *transactionRepo) List(ctx context.Context, companyID uuid.UUID, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("company_id = ?", companyID)
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items.Product").Preload("User").
		Order("created_at DESC").Limit(filter.Limit).Offset(offset).
		Find(&transactions).Error
	return transactions, total, err
}

func (r *transactionRepo) FindForUpdateTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := tx.Clauses(forUpdate()).
		Where("company_id = ? AND id = ?", companyID, id).First(&t).Error
	if err != nil {
		return nil, err
	}
	// Items are loaded after the row lock is held so no edit can interleave.
	err = tx.Where("transaction_id = ?", id).Find(&t.Items).Error
	return &t, err
}

func (r *transactionRepo) UpdateTx(tx *gorm.DB, t *model.Transaction) error {
	return tx.Omit("Items", "User", "ApprovedBy").Save(t).Error
}

func (r *transactionRepo) UpdateAmountTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.Transaction{}).Where("id = ?", id).Update("amount", amount).Error
}

func (r *transactionRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	// Items cascade with the parent row.
	if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Transaction{}, "id = ?", id).Error
}

func (r *transactionRepo) FindItem(ctx context.Context, companyID, itemID uuid.UUID) (*model.TransactionItem, error) {
	var item model.TransactionItem
	err := r.db.WithContext(ctx).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.company_id = ? AND transaction_items.id = ?", companyID, itemID).
		First(&item).Error
	return &item, err
}

func (r *transactionRepo) SaveItemTx(tx *gorm.DB, item *model.TransactionItem) error {
	return tx.Omit("Product").Save(item).Error
}

func (r *transactionRepo) DeleteItemTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.TransactionItem{}, "id = ?", id).Error
}

func (r *transactionRepo) SumItemTotalsTx(tx *gorm.DB, transactionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&model.TransactionItem{}).
		Where("transaction_id = ?", transactionID).
		Select("SUM(total)").Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *transactionRepo) SumItemQuantitiesTx(tx *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (int, error) {
	q := tx.Model(&model.TransactionItem{}).
		Joins("JOIN transactions ON transactions.id = transaction_items.transaction_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.status = ?",
			userID, tType, model.StatusApproved)
	if exclude != nil {
		q = q.Where("transactions.id <> ?", *exclude)
	}
	var sum *int
	if err := q.Select("SUM(transaction_items.quantity)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

func (r *transactionRepo) SumAmountsTx(tx *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (decimal.Decimal, error) {
	q := tx.Model(&model.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?", userID, tType, model.StatusApproved)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}
	var total decimal.NullDecimal
	if err := q.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
