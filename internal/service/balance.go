package service

import (
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceRecalculator owns the derived per-user aggregates. Debt and
// products_count on the user row are caches: both must always equal what
// these recomputations produce over the approved transaction history.
//
// products_count is always fully recomputed. Debt is adjusted incrementally
// on approve/delete for cheap writes; Recalculate is the full-recompute
// path used after item-level edits and by the reconcile operation. The two
// strategies must agree for every reachable history — that property is
// covered by the ledger tests.
type BalanceRecalculator struct {
	txRepo   repository.TransactionRepository
	userRepo repository.UserRepository
}

func NewBalanceRecalculator(txRepo repository.TransactionRepository, userRepo repository.UserRepository) *BalanceRecalculator {
	return &BalanceRecalculator{txRepo: txRepo, userRepo: userRepo}
}

// ProductsCount derives the net units a user currently holds:
// approved take quantities minus approved restore quantities.
// exclude recomputes as if that transaction did not exist — used during
// deletion to avoid a self-referential double reversal.
func (r *BalanceRecalculator) ProductsCount(tx *gorm.DB, userID uuid.UUID, exclude *uuid.UUID) (int, error) {
	taken, err := r.txRepo.SumItemQuantitiesTx(tx, userID, model.TransactionTake, exclude)
	if err != nil {
		return 0, err
	}
	restored, err := r.txRepo.SumItemQuantitiesTx(tx, userID, model.TransactionRestore, exclude)
	if err != nil {
		return 0, err
	}
	return taken - restored, nil
}

// Debt derives a merchant's balance from scratch:
// approved take amounts minus approved payment amounts.
func (r *BalanceRecalculator) Debt(tx *gorm.DB, userID uuid.UUID, exclude *uuid.UUID) (decimal.Decimal, error) {
	taken, err := r.txRepo.SumAmountsTx(tx, userID, model.TransactionTake, exclude)
	if err != nil {
		return decimal.Zero, err
	}
	paid, err := r.txRepo.SumAmountsTx(tx, userID, model.TransactionPayment, exclude)
	if err != nil {
		return decimal.Zero, err
	}
	return taken.Sub(paid), nil
}

// Recalculate recomputes both caches from the approved history and persists
// them. Non-merchants never carry debt regardless of history.
func (r *BalanceRecalculator) Recalculate(tx *gorm.DB, user *model.User, exclude *uuid.UUID) (decimal.Decimal, int, error) {
	debt := decimal.Zero
	if user.Role == model.RoleMerchant {
		var err error
		debt, err = r.Debt(tx, user.ID, exclude)
		if err != nil {
			return decimal.Zero, 0, err
		}
	}
	count, err := r.ProductsCount(tx, user.ID, exclude)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if err := r.userRepo.UpdateBalancesTx(tx, user.ID, debt, count); err != nil {
		return decimal.Zero, 0, err
	}
	return debt, count, nil
}
