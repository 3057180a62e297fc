package service_test

import (
	"context"
	"testing"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
//
// In-memory repositories. Their DB() returns nil, which puts the services in
// unit-test mode: runTx calls the body directly without a database
// transaction, so these tests exercise business logic, not transaction
// semantics (the integration suite covers those).

type stubTxRepo struct {
	transactions map[uuid.UUID]*model.Transaction
	items        map[uuid.UUID]*model.TransactionItem
}

func newStubTxRepo() *stubTxRepo {
	return &stubTxRepo{
		transactions: make(map[uuid.UUID]*model.Transaction),
		items:        make(map[uuid.UUID]*model.TransactionItem),
	}
}

func (r *stubTxRepo) withItems(t *model.Transaction) *model.Transaction {
	cp := *t
	cp.Items = nil
	for _, it := range r.items {
		if it.TransactionID == t.ID {
			cp.Items = append(cp.Items, *it)
		}
	}
	return &cp
}

func (r *stubTxRepo) Create(_ context.Context, _ *gorm.DB, t *model.Transaction) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cp := *t
	cp.Items = nil
	r.transactions[t.ID] = &cp
	return nil
}

func (r *stubTxRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok || t.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withItems(t), nil
}

func (r *stubTxRepo) List(_ context.Context, companyID uuid.UUID, _ dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var out []model.Transaction
	for _, t := range r.transactions {
		if t.CompanyID == companyID {
			out = append(out, *r.withItems(t))
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubTxRepo) FindForUpdateTx(_ *gorm.DB, companyID, id uuid.UUID) (*model.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok || t.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withItems(t), nil
}

func (r *stubTxRepo) UpdateTx(_ *gorm.DB, t *model.Transaction) error {
	if _, ok := r.transactions[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *t
	cp.Items = nil
	r.transactions[t.ID] = &cp
	return nil
}

func (r *stubTxRepo) UpdateAmountTx(_ *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	t, ok := r.transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Amount = amount
	return nil
}

func (r *stubTxRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.transactions, id)
	for itemID, it := range r.items {
		if it.TransactionID == id {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *stubTxRepo) FindItem(_ context.Context, companyID, itemID uuid.UUID) (*model.TransactionItem, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	parent, ok := r.transactions[it.TransactionID]
	if !ok || parent.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *stubTxRepo) SaveItemTx(_ *gorm.DB, item *model.TransactionItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *stubTxRepo) DeleteItemTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.items, id)
	return nil
}

func (r *stubTxRepo) SumItemTotalsTx(_ *gorm.DB, transactionID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, it := range r.items {
		if it.TransactionID == transactionID {
			sum = sum.Add(it.Total)
		}
	}
	return sum, nil
}

func (r *stubTxRepo) SumItemQuantitiesTx(_ *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (int, error) {
	sum := 0
	for _, t := range r.transactions {
		if t.Status != model.StatusApproved || t.Type != tType {
			continue
		}
		if t.UserID == nil || *t.UserID != userID {
			continue
		}
		if exclude != nil && t.ID == *exclude {
			continue
		}
		for _, it := range r.items {
			if it.TransactionID == t.ID {
				sum += it.Quantity
			}
		}
	}
	return sum, nil
}

func (r *stubTxRepo) SumAmountsTx(_ *gorm.DB, userID uuid.UUID, tType model.TransactionType, exclude *uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range r.transactions {
		if t.Status != model.StatusApproved || t.Type != tType {
			continue
		}
		if t.UserID == nil || *t.UserID != userID {
			continue
		}
		if exclude != nil && t.ID == *exclude {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum, nil
}

func (r *stubTxRepo) DB() *gorm.DB { return nil }

var _ repository.TransactionRepository = (*stubTxRepo)(nil)

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ListByCompany(_ context.Context, companyID uuid.UUID, includeInactive bool) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.CompanyID == nil || *u.CompanyID != companyID {
			continue
		}
		if !includeInactive && !u.Active {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) ListPartners(_ context.Context, companyID uuid.UUID) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.CompanyID != nil && *u.CompanyID == companyID && u.IsPartner() && u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) CountByCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Active = true
	return nil
}

func (r *stubUserRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) UpdateBalancesTx(_ *gorm.DB, id uuid.UUID, debt decimal.Decimal, productsCount int) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Debt = debt
	u.ProductsCount = productsCount
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	ledgered map[uuid.UUID]bool
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		ledgered: make(map[uuid.UUID]bool),
	}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, companyID uuid.UUID, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.Barcode != nil && *p.Barcode == barcode {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, companyID uuid.UUID, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, companyID, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return gorm.ErrRecordNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, companyID, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok || p.CompanyID != companyID {
		return gorm.ErrRecordNotFound
	}
	p.Active = true
	return nil
}

func (r *stubProductRepo) CountByCompany(_ context.Context, companyID uuid.UUID) (int64, error) {
	var n int64
	for _, p := range r.products {
		if p.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}

func (r *stubProductRepo) HasLedgerItems(_ context.Context, id uuid.UUID) (bool, error) {
	return r.ledgered[id], nil
}

func (r *stubProductRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubSaleRepo struct {
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Items {
		if s.Items[i].ID == uuid.Nil {
			s.Items[i].ID = uuid.New()
		}
		s.Items[i].SaleID = s.ID
	}
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok || s.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Items = append([]model.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (r *stubSaleRepo) List(_ context.Context, companyID uuid.UUID, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.CompanyID == companyID {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) FindForUpdateTx(_ *gorm.DB, companyID, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), companyID, id)
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) DailySummary(_ context.Context, companyID uuid.UUID, _ string) (*repository.DailySummaryRow, error) {
	row := &repository.DailySummaryRow{}
	revenue, discount, tax := decimal.Zero, decimal.Zero, decimal.Zero
	for _, s := range r.sales {
		if s.CompanyID != companyID || s.Status != model.SaleCompleted {
			continue
		}
		row.SalesCount++
		revenue = revenue.Add(s.Total)
		discount = discount.Add(s.Discount)
		tax = tax.Add(s.TaxAmount)
	}
	row.TotalRevenue = decimal.NewNullDecimal(revenue)
	row.TotalDiscount = decimal.NewNullDecimal(discount)
	row.TotalTax = decimal.NewNullDecimal(tax)
	return row, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, companyID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.CompanyID != companyID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) byProduct(productID uuid.UUID) []model.StockMovement {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

type stubCompanyRepo struct {
	companies map[uuid.UUID]*model.Company
	plans     map[string]*model.SubscriptionPlan
	subs      map[uuid.UUID]*model.CompanySubscription
}

func newStubCompanyRepo() *stubCompanyRepo {
	return &stubCompanyRepo{
		companies: make(map[uuid.UUID]*model.Company),
		plans:     make(map[string]*model.SubscriptionPlan),
		subs:      make(map[uuid.UUID]*model.CompanySubscription),
	}
}

func (r *stubCompanyRepo) Create(_ context.Context, c *model.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	c, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompanyRepo) Update(_ context.Context, c *model.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *stubCompanyRepo) CreatePlan(_ context.Context, p *model.SubscriptionPlan) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.plans[p.Name] = p
	return nil
}

func (r *stubCompanyRepo) FindPlanByName(_ context.Context, name string) (*model.SubscriptionPlan, error) {
	p, ok := r.plans[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubCompanyRepo) CreateSubscription(_ context.Context, s *model.CompanySubscription) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.subs[s.CompanyID] = s
	return nil
}

func (r *stubCompanyRepo) FindSubscription(_ context.Context, companyID uuid.UUID) (*model.CompanySubscription, error) {
	s, ok := r.subs[companyID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCompanyRepo) UpdateSubscription(_ context.Context, s *model.CompanySubscription) error {
	r.subs[s.CompanyID] = s
	return nil
}

var _ repository.CompanyRepository = (*stubCompanyRepo)(nil)

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, companyID, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok || c.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) List(_ context.Context, companyID uuid.UUID) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		if c.CompanyID == companyID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, companyID, id uuid.UUID) error {
	c, ok := r.categories[id]
	if !ok || c.CompanyID != companyID {
		return gorm.ErrRecordNotFound
	}
	delete(r.categories, id)
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

type ledgerFixture struct {
	companyID uuid.UUID

	txRepo       *stubTxRepo
	userRepo     *stubUserRepo
	productRepo  *stubProductRepo
	movementRepo *stubMovementRepo

	svc *service.LedgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		companyID:    uuid.New(),
		txRepo:       newStubTxRepo(),
		userRepo:     newStubUserRepo(),
		productRepo:  newStubProductRepo(),
		movementRepo: &stubMovementRepo{},
	}
	f.svc = service.NewLedgerService(nil, f.txRepo, f.userRepo, f.productRepo, f.movementRepo)
	return f
}

func (f *ledgerFixture) seedUser(t *testing.T, role string) *model.User {
	t.Helper()
	u := &model.User{
		CompanyID:    &f.companyID,
		Username:     uuid.NewString(),
		Name:         "Test " + role,
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	if err := f.userRepo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (f *ledgerFixture) seedProduct(t *testing.T, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		CompanyID:         f.companyID,
		Name:              "Product " + uuid.NewString()[:8],
		Price:             decimal.NewFromInt(price),
		Cost:              decimal.NewFromInt(price / 2),
		Stock:             stock,
		LowStockThreshold: 2,
		Active:            true,
	}
	if err := f.productRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (f *ledgerFixture) user(t *testing.T, id uuid.UUID) *model.User {
	t.Helper()
	u, err := f.userRepo.FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	return u
}

func (f *ledgerFixture) product(t *testing.T, id uuid.UUID) *model.Product {
	t.Helper()
	p, err := f.productRepo.FindByID(context.Background(), f.companyID, id)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p
}

type posFixture struct {
	companyID uuid.UUID
	cashierID uuid.UUID

	saleRepo     *stubSaleRepo
	productRepo  *stubProductRepo
	companyRepo  *stubCompanyRepo
	movementRepo *stubMovementRepo

	svc *service.POSService
}

func newPOSFixture(t *testing.T, taxRate int64) *posFixture {
	t.Helper()
	f := &posFixture{
		companyID:    uuid.New(),
		cashierID:    uuid.New(),
		saleRepo:     newStubSaleRepo(),
		productRepo:  newStubProductRepo(),
		companyRepo:  newStubCompanyRepo(),
		movementRepo: &stubMovementRepo{},
	}
	company := &model.Company{
		ID:      f.companyID,
		Name:    "Test Co",
		Email:   "owner@test.co",
		TaxRate: decimal.NewFromInt(taxRate),
		TaxName: "VAT",
		Active:  true,
	}
	if err := f.companyRepo.Create(context.Background(), company); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	f.svc = service.NewPOSService(nil, f.saleRepo, f.productRepo, f.companyRepo, f.movementRepo, nil)
	return f
}

func (f *posFixture) seedProduct(t *testing.T, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{
		CompanyID:         f.companyID,
		Name:              "Product " + uuid.NewString()[:8],
		Price:             decimal.NewFromInt(price),
		Cost:              decimal.NewFromInt(price / 2),
		Stock:             stock,
		LowStockThreshold: 2,
		Active:            true,
	}
	if err := f.productRepo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func (f *posFixture) product(t *testing.T, id uuid.UUID) *model.Product {
	t.Helper()
	p, err := f.productRepo.FindByID(context.Background(), f.companyID, id)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p
}

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func intPtr(i int) *int { return &i }
