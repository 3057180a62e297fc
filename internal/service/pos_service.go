package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/worker"
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrEmptyCart          = errors.New("checkout requires at least one item")
	ErrInsufficientPaid   = errors.New("amount paid is less than total")
	ErrProductInactive    = errors.New("product is not active")
	ErrDiscountOutOfRange = errors.New("discount exceeds subtotal")
)

// POSService handles checkout, refunds and sales reporting.
type POSService struct {
	db           *gorm.DB
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	companyRepo  repository.CompanyRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
}

func NewPOSService(
	db *gorm.DB,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
) *POSService {
	return &POSService{
		db:           db,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		companyRepo:  companyRepo,
		movementRepo: movementRepo,
		dispatcher:   dispatcher,
	}
}

// Checkout performs an all-or-nothing sale: every line must be
// satisfiable or nothing is committed. Stock rows are locked in a
// single database transaction so concurrent checkouts cannot oversell.
func (s *POSService) Checkout(ctx context.Context, companyID, cashierID uuid.UUID, req dto.CheckoutRequest) (*model.Sale, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	var sale *model.Sale
	var lowStock []model.Product

	err = runTx(ctx, s.db, func(tx *gorm.DB) error {
		sale = &model.Sale{
			CompanyID:     companyID,
			CashierID:     &cashierID,
			ReceiptNumber: model.NewReceiptNumber(),
			Status:        model.SaleCompleted,
			PaymentMethod: req.PaymentMethod,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
			Notes:         req.Notes,
		}

		subtotal := decimal.Zero
		var saleItems []model.SaleItem
		var stockBefore []int

		for _, line := range req.Items {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			product, err := s.productRepo.FindForUpdateTx(tx, productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if product.CompanyID != companyID {
				return ErrProductNotFound
			}
			if !product.Active {
				return ErrProductInactive
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s has %d in stock, %d requested",
					ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
			}

			before := product.Stock
			if err := s.productRepo.UpdateStockTx(tx, product.ID, -line.Quantity); err != nil {
				return err
			}
			product.Stock = before - line.Quantity
			stockBefore = append(stockBefore, before)
			if product.IsLowStock() {
				lowStock = append(lowStock, *product)
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			saleItems = append(saleItems, model.SaleItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Cost:      product.Cost,
				Total:     lineTotal,
			})
		}

		discount := req.Discount
		if req.DiscountPercentage.IsPositive() {
			discount = discount.Add(subtotal.Mul(req.DiscountPercentage).Div(decimal.NewFromInt(100)))
		}
		if discount.GreaterThan(subtotal) {
			return ErrDiscountOutOfRange
		}

		taxable := subtotal.Sub(discount)
		taxAmount := taxable.Mul(company.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
		total := taxable.Add(taxAmount)

		change := req.AmountPaid.Sub(total)
		if change.IsNegative() {
			if sale.PaymentMethod == model.PaymentCash {
				return ErrInsufficientPaid
			}
			change = decimal.Zero
		}

		sale.Subtotal = subtotal
		sale.Discount = discount
		sale.DiscountPercentage = req.DiscountPercentage
		sale.TaxAmount = taxAmount
		sale.Total = total
		sale.AmountPaid = req.AmountPaid
		sale.Change = change
		sale.Items = saleItems

		if err := s.saleRepo.Create(ctx, tx, sale); err != nil {
			return err
		}

		// Movement rows after the sale exists so they can reference it
		for i := range saleItems {
			item := &saleItems[i]
			movement := &model.StockMovement{
				CompanyID:   companyID,
				ProductID:   item.ProductID,
				Type:        model.MovementSale,
				Quantity:    -item.Quantity,
				StockBefore: stockBefore[i],
				StockAfter:  stockBefore[i] - item.Quantity,
				ReferenceID: &sale.ID,
				CreatedByID: cashierID,
			}
			if err := s.movementRepo.CreateTx(tx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	customerEmail := ""
	if req.CustomerEmail != nil {
		customerEmail = *req.CustomerEmail
	}
	s.dispatchReceipt(ctx, sale, customerEmail)
	for _, p := range lowStock {
		s.dispatchLowStock(ctx, p, company)
	}
	return s.saleRepo.FindByID(ctx, companyID, sale.ID)
}

// Refund reverses a completed sale: stock is restored for every line
// and the sale is marked refunded. Returns false without error when the
// sale is not in completed state — refunding twice is benign.
func (s *POSService) Refund(ctx context.Context, companyID, id, actorID uuid.UUID) (bool, error) {
	refunded := false
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		sale, err := s.saleRepo.FindForUpdateTx(tx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSaleNotFound
			}
			return err
		}
		if sale.Status != model.SaleCompleted {
			return nil
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			product, err := s.productRepo.FindForUpdateTx(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Warn().
						Str("sale_id", sale.ID.String()).
						Str("product_id", item.ProductID.String()).
						Msg("product missing during refund, skipping stock restore")
					continue
				}
				return err
			}
			before := product.Stock
			if err := s.productRepo.UpdateStockTx(tx, product.ID, item.Quantity); err != nil {
				return err
			}
			movement := &model.StockMovement{
				CompanyID:   companyID,
				ProductID:   product.ID,
				Type:        model.MovementRefund,
				Quantity:    item.Quantity,
				StockBefore: before,
				StockAfter:  before + item.Quantity,
				ReferenceID: &sale.ID,
				CreatedByID: actorID,
			}
			if err := s.movementRepo.CreateTx(tx, movement); err != nil {
				return err
			}
		}

		if err := s.saleRepo.UpdateStatusTx(tx, sale.ID, model.SaleRefunded); err != nil {
			return err
		}
		refunded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return refunded, nil
}

// Get returns a sale with its items, scoped to the company.
func (s *POSService) Get(ctx context.Context, companyID, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// List returns company sales matching the filter (defaults to today).
func (s *POSService) List(ctx context.Context, companyID uuid.UUID, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	return s.saleRepo.List(ctx, companyID, filter)
}

// DailySummary aggregates today's completed sales for the dashboard.
func (s *POSService) DailySummary(ctx context.Context, companyID uuid.UUID, date string) (*dto.DailySummaryResponse, error) {
	row, err := s.saleRepo.DailySummary(ctx, companyID, date)
	if err != nil {
		return nil, err
	}
	return &dto.DailySummaryResponse{
		Date:          date,
		SalesCount:    row.SalesCount,
		TotalRevenue:  row.TotalRevenue.Decimal,
		TotalDiscount: row.TotalDiscount.Decimal,
		TotalTax:      row.TotalTax.Decimal,
	}, nil
}

func (s *POSService) dispatchReceipt(ctx context.Context, sale *model.Sale, customerEmail string) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.ReceiptJobPayload{
		SaleID:        sale.ID.String(),
		CompanyID:     sale.CompanyID.String(),
		CustomerEmail: customerEmail,
	}
	if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
		log.Error().Str("sale_id", sale.ID.String()).Err(err).Msg("failed to enqueue receipt job")
	}
}

func (s *POSService) dispatchLowStock(ctx context.Context, product model.Product, company *model.Company) {
	if s.dispatcher == nil {
		return
	}
	payload := worker.LowStockJobPayload{
		ProductID:    product.ID.String(),
		ProductName:  product.Name,
		Stock:        product.Stock,
		Threshold:    product.LowStockThreshold,
		CompanyEmail: company.Email,
	}
	if err := s.dispatcher.EnqueueLowStock(ctx, payload); err != nil {
		log.Error().Str("product_id", product.ID.String()).Err(err).Msg("failed to enqueue low stock job")
	}
}
