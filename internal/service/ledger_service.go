package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrItemNotFound        = errors.New("transaction item not found")
	ErrPartnerNotFound     = errors.New("partner not found")
	ErrAmountRequired      = errors.New("amount is required for payment and fees transactions")
	ErrItemsNotAllowed     = errors.New("items are only allowed on take and restore transactions")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// LowStockNotifier receives products whose stock crossed their threshold
// after a ledger operation. Nil in unit tests.
type LowStockNotifier interface {
	NotifyLowStock(ctx context.Context, product model.Product)
}

// LedgerService owns the transaction ledger: creation, the approval
// state machine, item management and the stock/balance effects that
// follow from every state change.
type LedgerService struct {
	db           *gorm.DB
	txRepo       repository.TransactionRepository
	userRepo     repository.UserRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	balances     *BalanceRecalculator
	notifier     LowStockNotifier
}

func NewLedgerService(
	db *gorm.DB,
	txRepo repository.TransactionRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
) *LedgerService {
	return &LedgerService{
		db:           db,
		txRepo:       txRepo,
		userRepo:     userRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		balances:     NewBalanceRecalculator(txRepo, userRepo),
	}
}

func (s *LedgerService) SetLowStockNotifier(n LowStockNotifier) { s.notifier = n }

// Create registers a new pending transaction. Stock and balances are
// untouched until approval.
func (s *LedgerService) Create(ctx context.Context, companyID, createdByID uuid.UUID, req dto.CreateTransactionRequest) (*model.Transaction, error) {
	tType := model.TransactionType(req.Type)

	t := &model.Transaction{
		CompanyID:   companyID,
		Type:        tType,
		Status:      model.StatusPending,
		CreatedByID: createdByID,
		Notes:       req.Notes,
	}

	if req.UserID != nil {
		partnerID, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, ErrPartnerNotFound
		}
		partner, err := s.userRepo.FindByID(ctx, partnerID)
		if err != nil {
			return nil, ErrPartnerNotFound
		}
		if partner.CompanyID == nil || *partner.CompanyID != companyID || !partner.IsPartner() {
			return nil, ErrPartnerNotFound
		}
		t.UserID = &partnerID
	}

	switch tType {
	case model.TransactionPayment, model.TransactionFees:
		if req.Amount == nil {
			return nil, ErrAmountRequired
		}
		if t.UserID == nil && tType == model.TransactionPayment {
			return nil, ErrPartnerNotFound
		}
		t.Amount = *req.Amount
	default:
		// take/restore start at zero; amount accrues from items
		t.Amount = decimal.Zero
	}

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.txRepo.Create(ctx, tx, t); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		if !t.MovesStock() || len(req.Items) == 0 {
			return nil
		}
		// Pending transaction: items snapshot prices but touch no stock.
		amount := decimal.Zero
		for _, line := range req.Items {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			product, err := s.productRepo.FindByID(ctx, companyID, productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			item := &model.TransactionItem{
				TransactionID: t.ID,
				ProductID:     product.ID,
				Quantity:      line.Quantity,
				Price:         product.Price,
				Total:         product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			}
			if err := s.txRepo.SaveItemTx(tx, item); err != nil {
				return err
			}
			amount = amount.Add(item.Total)
		}
		t.Amount = amount
		return s.txRepo.UpdateAmountTx(tx, t.ID, amount)
	})
	if err != nil {
		return nil, err
	}
	return s.txRepo.FindByID(ctx, companyID, t.ID)
}

// Get returns a transaction with its items, scoped to the company.
func (s *LedgerService) Get(ctx context.Context, companyID, id uuid.UUID) (*model.Transaction, error) {
	t, err := s.txRepo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns company transactions matching the filter.
func (s *LedgerService) List(ctx context.Context, companyID uuid.UUID, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	return s.txRepo.List(ctx, companyID, filter)
}

// Approve moves a pending transaction to approved and applies its
// effects: stock deltas for take/restore items and the partner balance
// settlement. Returns false without error when the transaction is not
// pending — approving twice is benign.
func (s *LedgerService) Approve(ctx context.Context, companyID, id, approverID uuid.UUID) (bool, error) {
	approved := false
	var lowStock []model.Product

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if t.Status != model.StatusPending {
			return nil
		}

		now := time.Now()
		t.Status = model.StatusApproved
		t.ApprovedByID = &approverID
		t.ApprovedAt = &now

		if t.MovesStock() {
			dir := t.StockDirection()
			for i := range t.Items {
				item := &t.Items[i]
				product, err := s.applyStockDelta(tx, companyID, item.ProductID, dir*item.Quantity, model.MovementApply, t.ID, t.CreatedByID)
				if err != nil {
					return err
				}
				if product != nil && dir < 0 && product.IsLowStock() {
					lowStock = append(lowStock, *product)
				}
			}
		}

		if err := s.txRepo.UpdateTx(tx, t); err != nil {
			return err
		}

		if err := s.settleBalances(tx, t, false, nil); err != nil {
			return err
		}

		approved = true
		return nil
	})
	if err != nil {
		return false, err
	}

	for _, p := range lowStock {
		s.notifyLowStock(ctx, p)
	}
	return approved, nil
}

// Reject moves a pending transaction to rejected. No stock or balance
// effects. Returns false without error when the transaction is not
// pending.
func (s *LedgerService) Reject(ctx context.Context, companyID, id, approverID uuid.UUID) (bool, error) {
	rejected := false
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if t.Status != model.StatusPending {
			return nil
		}
		now := time.Now()
		t.Status = model.StatusRejected
		t.ApprovedByID = &approverID
		t.ApprovedAt = &now
		if err := s.txRepo.UpdateTx(tx, t); err != nil {
			return err
		}
		rejected = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return rejected, nil
}

// Delete removes a transaction. For approved transactions the stock and
// balance effects are reversed first, inside the same database
// transaction as the deletion. Items whose product no longer exists are
// skipped with a warning rather than failing the whole reversal.
func (s *LedgerService) Delete(ctx context.Context, companyID, id, deletedByID uuid.UUID) error {
	return runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		if t.Status == model.StatusApproved {
			if t.MovesStock() {
				dir := t.StockDirection()
				for i := range t.Items {
					item := &t.Items[i]
					_, err := s.applyStockDelta(tx, companyID, item.ProductID, -dir*item.Quantity, model.MovementReverse, t.ID, deletedByID)
					if err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							log.Warn().
								Str("transaction_id", t.ID.String()).
								Str("product_id", item.ProductID.String()).
								Msg("product missing during stock reversal, skipping")
							continue
						}
						return err
					}
				}
			}
			// Recompute excluding this transaction before its rows go away
			if err := s.settleBalances(tx, t, true, &t.ID); err != nil {
				return err
			}
		}

		return s.txRepo.DeleteTx(tx, t.ID)
	})
}

// AddItem appends an item to a take/restore transaction. The price is
// snapshotted from the product on first write. When the parent is
// already approved the stock effect is applied immediately.
func (s *LedgerService) AddItem(ctx context.Context, companyID, txID, actorID uuid.UUID, req dto.AddItemRequest) (*model.Transaction, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var lowStock []model.Product

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		if !t.MovesStock() {
			return ErrItemsNotAllowed
		}

		product, err := s.lockProduct(tx, companyID, productID)
		if err != nil {
			return err
		}

		price := product.Price
		if req.Price != nil {
			price = *req.Price
		}
		item := &model.TransactionItem{
			TransactionID: t.ID,
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			Price:         price,
			Total:         price.Mul(decimal.NewFromInt(int64(req.Quantity))),
		}
		if err := s.txRepo.SaveItemTx(tx, item); err != nil {
			return err
		}

		if err := s.recomputeAmount(tx, t); err != nil {
			return err
		}

		if t.Status == model.StatusApproved {
			dir := t.StockDirection()
			p, err := s.applyStockDelta(tx, companyID, product.ID, dir*req.Quantity, model.MovementItemEdit, t.ID, actorID)
			if err != nil {
				return err
			}
			if p != nil && dir < 0 && p.IsLowStock() {
				lowStock = append(lowStock, *p)
			}
			if err := s.recalcPartner(tx, t, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range lowStock {
		s.notifyLowStock(ctx, p)
	}
	return s.txRepo.FindByID(ctx, companyID, txID)
}

// UpdateItem changes an item's quantity (and, for pending parents, its
// price). On approved parents only the quantity delta hits stock; the
// price snapshot is frozen at approval.
func (s *LedgerService) UpdateItem(ctx context.Context, companyID, txID, itemID, actorID uuid.UUID, req dto.UpdateItemRequest) (*model.Transaction, error) {
	var lowStock []model.Product

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		item, err := s.findItem(ctx, companyID, txID, itemID)
		if err != nil {
			return err
		}

		oldQuantity := item.Quantity
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.Price != nil && t.Status == model.StatusPending {
			item.Price = *req.Price
		}
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if err := s.txRepo.SaveItemTx(tx, item); err != nil {
			return err
		}

		if err := s.recomputeAmount(tx, t); err != nil {
			return err
		}

		if t.Status == model.StatusApproved {
			delta := item.Quantity - oldQuantity
			if delta != 0 {
				dir := t.StockDirection()
				p, err := s.applyStockDelta(tx, companyID, item.ProductID, dir*delta, model.MovementItemEdit, t.ID, actorID)
				if err != nil {
					return err
				}
				if p != nil && dir*delta < 0 && p.IsLowStock() {
					lowStock = append(lowStock, *p)
				}
			}
			if err := s.recalcPartner(tx, t, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, p := range lowStock {
		s.notifyLowStock(ctx, p)
	}
	return s.txRepo.FindByID(ctx, companyID, txID)
}

// RemoveItem deletes an item. On approved parents its stock effect is
// reversed and partner balances recomputed.
func (s *LedgerService) RemoveItem(ctx context.Context, companyID, txID, itemID, actorID uuid.UUID) (*model.Transaction, error) {
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		t, err := s.txRepo.FindForUpdateTx(tx, companyID, txID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}

		item, err := s.findItem(ctx, companyID, txID, itemID)
		if err != nil {
			return err
		}

		if err := s.txRepo.DeleteItemTx(tx, item.ID); err != nil {
			return err
		}

		if err := s.recomputeAmount(tx, t); err != nil {
			return err
		}

		if t.Status == model.StatusApproved {
			dir := t.StockDirection()
			_, err := s.applyStockDelta(tx, companyID, item.ProductID, -dir*item.Quantity, model.MovementItemEdit, t.ID, actorID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := s.recalcPartner(tx, t, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.txRepo.FindByID(ctx, companyID, txID)
}

// Reconcile recomputes a partner's debt and products_count from the
// ledger, replacing whatever the incremental path accumulated.
func (s *LedgerService) Reconcile(ctx context.Context, companyID, partnerID uuid.UUID) (*dto.ReconcileResponse, error) {
	var resp *dto.ReconcileResponse
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		partner, err := s.userRepo.FindForUpdateTx(tx, partnerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartnerNotFound
			}
			return err
		}
		if partner.CompanyID == nil || *partner.CompanyID != companyID || !partner.IsPartner() {
			return ErrPartnerNotFound
		}

		debt, count, err := s.balances.Recalculate(tx, partner, nil)
		if err != nil {
			return err
		}
		resp = &dto.ReconcileResponse{
			UserID:        partner.ID.String(),
			Debt:          debt,
			ProductsCount: count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// findItem loads an item and checks it belongs to the transaction.
func (s *LedgerService) findItem(ctx context.Context, companyID, txID, itemID uuid.UUID) (*model.TransactionItem, error) {
	item, err := s.txRepo.FindItem(ctx, companyID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.TransactionID != txID {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// lockProduct locks a product row and enforces company scope.
func (s *LedgerService) lockProduct(tx *gorm.DB, companyID, productID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindForUpdateTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// applyStockDelta locks the product row, adjusts stock atomically and
// records an immutable movement row. Returns the product with its
// post-change stock.
func (s *LedgerService) applyStockDelta(tx *gorm.DB, companyID, productID uuid.UUID, delta int, movementType string, refID, actorID uuid.UUID) (*model.Product, error) {
	if delta == 0 {
		return nil, nil
	}
	product, err := s.productRepo.FindForUpdateTx(tx, productID)
	if err != nil {
		return nil, err
	}
	if product.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	before := product.Stock
	if err := s.productRepo.UpdateStockTx(tx, product.ID, delta); err != nil {
		return nil, err
	}
	product.Stock = before + delta

	movement := &model.StockMovement{
		CompanyID:   companyID,
		ProductID:   product.ID,
		Type:        movementType,
		Quantity:    delta,
		StockBefore: before,
		StockAfter:  product.Stock,
		ReferenceID: &refID,
		CreatedByID: actorID,
	}
	if err := s.movementRepo.CreateTx(tx, movement); err != nil {
		return nil, err
	}
	return product, nil
}

// settleBalances updates the linked partner after an approve or a
// delete of an approved transaction. Debt moves incrementally by the
// transaction's own delta; products_count is always recomputed in full.
// exclude drops a transaction from the recompute (used before deleting
// its rows).
func (s *LedgerService) settleBalances(tx *gorm.DB, t *model.Transaction, reverse bool, exclude *uuid.UUID) error {
	if t.UserID == nil {
		return nil
	}
	partner, err := s.userRepo.FindForUpdateTx(tx, *t.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().
				Str("transaction_id", t.ID.String()).
				Str("user_id", t.UserID.String()).
				Msg("partner missing during balance settlement, skipping")
			return nil
		}
		return err
	}

	debt := partner.Debt
	if partner.Role == model.RoleMerchant {
		delta := t.DebtDelta()
		if reverse {
			delta = delta.Neg()
		}
		debt = debt.Add(delta)
	}

	productsCount, err := s.balances.ProductsCount(tx, partner.ID, exclude)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateBalancesTx(tx, partner.ID, debt, productsCount)
}

// recalcPartner runs the full recompute for the transaction's partner.
// Used after item edits on approved transactions, where incremental
// tracking of the old amount would be fragile.
func (s *LedgerService) recalcPartner(tx *gorm.DB, t *model.Transaction, exclude *uuid.UUID) error {
	if t.UserID == nil {
		return nil
	}
	partner, err := s.userRepo.FindForUpdateTx(tx, *t.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	_, _, err = s.balances.Recalculate(tx, partner, exclude)
	return err
}

// recomputeAmount refreshes a take/restore transaction's amount from
// the sum of its item totals.
func (s *LedgerService) recomputeAmount(tx *gorm.DB, t *model.Transaction) error {
	if !t.MovesStock() {
		return nil
	}
	total, err := s.txRepo.SumItemTotalsTx(tx, t.ID)
	if err != nil {
		return err
	}
	t.Amount = total
	return s.txRepo.UpdateAmountTx(tx, t.ID, total)
}

func (s *LedgerService) notifyLowStock(ctx context.Context, product model.Product) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyLowStock(ctx, product)
}
