package service_test

import (
	"context"
	"testing"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTakeDerivesAmountFromItems(t *testing.T) {
	f := newLedgerFixture(t)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)

	userID := merchant.ID.String()
	tx, err := f.svc.Create(context.Background(), f.companyID, f.seedUser(t, model.RoleAccountant).ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items: []dto.TransactionItemRequest{
			{ProductID: product.ID.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, tx.Status)
	assert.True(t, tx.Amount.Equal(decimal.NewFromInt(30)), "amount = Σ price×qty, got %s", tx.Amount)
	require.Len(t, tx.Items, 1)
	assert.True(t, tx.Items[0].Price.Equal(product.Price), "price snapshotted from product")

	// Pending: no stock, no balances
	assert.Equal(t, 50, f.product(t, product.ID).Stock)
	assert.True(t, f.user(t, merchant.ID).Debt.IsZero())
}

func TestCreatePaymentRequiresAmountAndPartner(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	userID := merchant.ID.String()

	_, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "payment",
	})
	assert.ErrorIs(t, err, service.ErrAmountRequired)

	_, err = f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		Type:   "payment",
		Amount: decPtr(decimal.NewFromInt(5)),
	})
	assert.ErrorIs(t, err, service.ErrPartnerNotFound)

	// Fees carries no partner at all
	fees, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		Type:   "fees",
		Amount: decPtr(decimal.NewFromInt(7)),
	})
	require.NoError(t, err)
	assert.Nil(t, fees.UserID)
	assert.True(t, fees.Amount.Equal(decimal.NewFromInt(7)))
}

func TestCreateRejectsForeignPartner(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)

	// Same company but not a partner role
	cashier := f.seedUser(t, model.RoleCashier)
	userID := cashier.ID.String()
	_, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
	})
	assert.ErrorIs(t, err, service.ErrPartnerNotFound)
}

func TestApproveAppliesStockAndBalances(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)

	userID := merchant.ID.String()
	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)

	ok, err := f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 47, f.product(t, product.ID).Stock)

	merchantAfter := f.user(t, merchant.ID)
	assert.True(t, merchantAfter.Debt.Equal(decimal.NewFromInt(30)), "debt = take amount, got %s", merchantAfter.Debt)
	assert.Equal(t, 3, merchantAfter.ProductsCount)

	movements := f.movementRepo.byProduct(product.ID)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementApply, movements[0].Type)
	assert.Equal(t, -3, movements[0].Quantity)
	assert.Equal(t, 50, movements[0].StockBefore)
	assert.Equal(t, 47, movements[0].StockAfter)

	// Approving again is benign: no error, no double effects
	ok, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 47, f.product(t, product.ID).Stock)
	assert.Len(t, f.movementRepo.byProduct(product.ID), 1)
}

func TestApproveRestoreAddsStock(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	rep := f.seedUser(t, model.RoleRepresentative)
	product := f.seedProduct(t, 10, 50)
	userID := rep.ID.String()

	take, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, take.ID, accountant.ID)
	require.NoError(t, err)

	restore, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "restore",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 2}},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, restore.ID, accountant.ID)
	require.NoError(t, err)

	assert.Equal(t, 47, f.product(t, product.ID).Stock)

	repAfter := f.user(t, rep.ID)
	assert.Equal(t, 3, repAfter.ProductsCount, "held units = taken − restored")
	// Representatives never carry debt
	assert.True(t, repAfter.Debt.IsZero())
}

func TestRejectHasNoEffects(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)

	ok, err := f.svc.Reject(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 50, f.product(t, product.ID).Stock)
	assert.True(t, f.user(t, merchant.ID).Debt.IsZero())
	assert.Empty(t, f.movementRepo.movements)

	// Rejected is terminal: neither rejecting nor approving moves it
	ok, err = f.svc.Reject(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 50, f.product(t, product.ID).Stock)
}

func TestPaymentReducesMerchantDebt(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 20, 50)
	userID := merchant.ID.String()

	take, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 5}},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, take.ID, accountant.ID)
	require.NoError(t, err)
	require.True(t, f.user(t, merchant.ID).Debt.Equal(decimal.NewFromInt(100)))

	payment, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "payment",
		Amount: decPtr(decimal.NewFromInt(60)),
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, payment.ID, accountant.ID)
	require.NoError(t, err)

	assert.True(t, f.user(t, merchant.ID).Debt.Equal(decimal.NewFromInt(40)), "debt = 100 − 60")
}

func TestDeleteApprovedReversesEffects(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.companyID, tx.ID, accountant.ID))

	assert.Equal(t, 50, f.product(t, product.ID).Stock, "stock restored")

	merchantAfter := f.user(t, merchant.ID)
	assert.True(t, merchantAfter.Debt.IsZero(), "debt reversed, got %s", merchantAfter.Debt)
	assert.Equal(t, 0, merchantAfter.ProductsCount)

	_, err = f.svc.Get(context.Background(), f.companyID, tx.ID)
	assert.ErrorIs(t, err, service.ErrTransactionNotFound)

	// Reversal left its own audit row
	movements := f.movementRepo.byProduct(product.ID)
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementReverse, movements[1].Type)
	assert.Equal(t, 3, movements[1].Quantity)
}

func TestDeletePendingLeavesNoTrace(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.companyID, tx.ID, accountant.ID))
	assert.Equal(t, 50, f.product(t, product.ID).Stock)
	assert.Empty(t, f.movementRepo.movements)
}

func TestDeleteSkipsMissingProducts(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	kept := f.seedProduct(t, 10, 50)
	removed := f.seedProduct(t, 5, 20)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items: []dto.TransactionItemRequest{
			{ProductID: kept.ID.String(), Quantity: 3},
			{ProductID: removed.ID.String(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)

	// Product disappears between approval and deletion
	delete(f.productRepo.products, removed.ID)

	require.NoError(t, f.svc.Delete(context.Background(), f.companyID, tx.ID, accountant.ID))
	assert.Equal(t, 50, f.product(t, kept.ID).Stock, "surviving product still reversed")
}

func TestUpdateItemOnApprovedAppliesDelta(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	require.Equal(t, 47, f.product(t, product.ID).Stock)

	itemID := tx.Items[0].ID

	updated, err := f.svc.UpdateItem(context.Background(), f.companyID, tx.ID, itemID, accountant.ID, dto.UpdateItemRequest{
		Quantity: intPtr(5),
		Price:    decPtr(decimal.NewFromInt(99)),
	})
	require.NoError(t, err)

	// Only the +2 delta hits stock
	assert.Equal(t, 45, f.product(t, product.ID).Stock)
	// Price snapshot frozen after approval: amount = 5 × 10, not 5 × 99
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(50)), "got %s", updated.Amount)

	merchantAfter := f.user(t, merchant.ID)
	assert.True(t, merchantAfter.Debt.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 5, merchantAfter.ProductsCount)
}

func TestUpdateItemOnPendingEditsPrice(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items:  []dto.TransactionItemRequest{{ProductID: product.ID.String(), Quantity: 3}},
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateItem(context.Background(), f.companyID, tx.ID, tx.Items[0].ID, accountant.ID, dto.UpdateItemRequest{
		Price: decPtr(decimal.NewFromInt(8)),
	})
	require.NoError(t, err)

	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(24)), "pending price edit recomputes amount, got %s", updated.Amount)
	assert.Equal(t, 50, f.product(t, product.ID).Stock, "pending edits never touch stock")
}

func TestRemoveItemOnApprovedReversesStock(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	product := f.seedProduct(t, 10, 50)
	extra := f.seedProduct(t, 4, 30)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "take",
		Items: []dto.TransactionItemRequest{
			{ProductID: product.ID.String(), Quantity: 3},
			{ProductID: extra.ID.String(), Quantity: 5},
		},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
	require.NoError(t, err)
	require.Equal(t, 25, f.product(t, extra.ID).Stock)

	var extraItemID = tx.Items[0].ID
	for _, it := range tx.Items {
		if it.ProductID == extra.ID {
			extraItemID = it.ID
		}
	}

	updated, err := f.svc.RemoveItem(context.Background(), f.companyID, tx.ID, extraItemID, accountant.ID)
	require.NoError(t, err)

	assert.Equal(t, 30, f.product(t, extra.ID).Stock, "removed line's stock restored")
	assert.Equal(t, 47, f.product(t, product.ID).Stock, "other line untouched")
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(30)))

	merchantAfter := f.user(t, merchant.ID)
	assert.True(t, merchantAfter.Debt.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 3, merchantAfter.ProductsCount)
}

func TestAddItemToFeesRejected(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	product := f.seedProduct(t, 10, 50)

	fees, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		Type:   "fees",
		Amount: decPtr(decimal.NewFromInt(7)),
	})
	require.NoError(t, err)

	_, err = f.svc.AddItem(context.Background(), f.companyID, fees.ID, accountant.ID, dto.AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  1,
	})
	assert.ErrorIs(t, err, service.ErrItemsNotAllowed)
}

func TestReconcileMatchesIncrementalBalances(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	p1 := f.seedProduct(t, 10, 100)
	p2 := f.seedProduct(t, 25, 100)
	userID := merchant.ID.String()

	approve := func(req dto.CreateTransactionRequest) {
		t.Helper()
		tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, req)
		require.NoError(t, err)
		ok, err := f.svc.Approve(context.Background(), f.companyID, tx.ID, accountant.ID)
		require.NoError(t, err)
		require.True(t, ok)
	}

	approve(dto.CreateTransactionRequest{
		UserID: &userID, Type: "take",
		Items: []dto.TransactionItemRequest{{ProductID: p1.ID.String(), Quantity: 4}},
	})
	approve(dto.CreateTransactionRequest{
		UserID: &userID, Type: "take",
		Items: []dto.TransactionItemRequest{{ProductID: p2.ID.String(), Quantity: 2}},
	})
	approve(dto.CreateTransactionRequest{
		UserID: &userID, Type: "restore",
		Items: []dto.TransactionItemRequest{{ProductID: p1.ID.String(), Quantity: 1}},
	})
	approve(dto.CreateTransactionRequest{
		UserID: &userID, Type: "payment",
		Amount: decPtr(decimal.NewFromInt(30)),
	})

	cached := f.user(t, merchant.ID)

	resp, err := f.svc.Reconcile(context.Background(), f.companyID, merchant.ID)
	require.NoError(t, err)

	// take 40 + 50, payment 30 → 60; held 4 + 2 − 1 → 5
	assert.True(t, resp.Debt.Equal(decimal.NewFromInt(60)), "got %s", resp.Debt)
	assert.Equal(t, 5, resp.ProductsCount)

	// Full recompute agrees with what the incremental path accumulated
	assert.True(t, resp.Debt.Equal(cached.Debt), "incremental %s vs recomputed %s", cached.Debt, resp.Debt)
	assert.Equal(t, cached.ProductsCount, resp.ProductsCount)
}

func TestReconcileRejectsNonPartner(t *testing.T) {
	f := newLedgerFixture(t)
	cashier := f.seedUser(t, model.RoleCashier)

	_, err := f.svc.Reconcile(context.Background(), f.companyID, cashier.ID)
	assert.ErrorIs(t, err, service.ErrPartnerNotFound)
}

func TestTransactionsAreCompanyScoped(t *testing.T) {
	f := newLedgerFixture(t)
	accountant := f.seedUser(t, model.RoleAccountant)
	merchant := f.seedUser(t, model.RoleMerchant)
	userID := merchant.ID.String()

	tx, err := f.svc.Create(context.Background(), f.companyID, accountant.ID, dto.CreateTransactionRequest{
		UserID: &userID,
		Type:   "payment",
		Amount: decPtr(decimal.NewFromInt(5)),
	})
	require.NoError(t, err)

	otherCompany := uuid.New()
	_, err = f.svc.Get(context.Background(), otherCompany, tx.ID)
	assert.ErrorIs(t, err, service.ErrTransactionNotFound)

	ok, err := f.svc.Approve(context.Background(), otherCompany, tx.ID, accountant.ID)
	assert.ErrorIs(t, err, service.ErrTransactionNotFound)
	assert.False(t, ok)
}
