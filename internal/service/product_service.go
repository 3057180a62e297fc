package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrProductLimit      = errors.New("subscription plan product limit reached")
	ErrProductHasHistory = errors.New("product has ledger history and cannot be deleted")
)

const barcodeCacheTTL = 5 * time.Minute

// ProductService covers the product catalogue: CRUD, manual stock
// adjustments and the barcode price-check lookup the POS uses.
type ProductService struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	companyRepo  repository.CompanyRepository
	movementRepo repository.StockMovementRepository
	rdb          *redis.Client
}

func NewProductService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	companyRepo repository.CompanyRepository,
	movementRepo repository.StockMovementRepository,
	rdb *redis.Client,
) *ProductService {
	return &ProductService{
		db:           db,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		companyRepo:  companyRepo,
		movementRepo: movementRepo,
		rdb:          rdb,
	}
}

// Create adds a product, enforcing the subscription plan's product cap.
func (s *ProductService) Create(ctx context.Context, companyID uuid.UUID, req dto.CreateProductRequest) (*model.Product, error) {
	sub, err := s.companyRepo.FindSubscription(ctx, companyID)
	if err == nil && sub.Plan != nil && sub.Plan.MaxProducts > 0 {
		count, err := s.productRepo.CountByCompany(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if count >= int64(sub.Plan.MaxProducts) {
			return nil, ErrProductLimit
		}
	}

	p := &model.Product{
		CompanyID:         companyID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Cost:              req.Cost,
		Stock:             req.Stock,
		LowStockThreshold: req.LowStockThreshold,
		SKU:               req.SKU,
		Barcode:           req.Barcode,
		Active:            true,
	}
	if req.LowStockThreshold == 0 {
		p.LowStockThreshold = 10
	}

	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		if _, err := s.categoryRepo.FindByID(ctx, companyID, categoryID); err != nil {
			return nil, ErrCategoryNotFound
		}
		p.CategoryID = &categoryID
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// Get returns a product scoped to the company.
func (s *ProductService) Get(ctx context.Context, companyID, id uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns company products matching the filter.
func (s *ProductService) List(ctx context.Context, companyID uuid.UUID, filter dto.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, companyID, filter)
}

// Update applies partial changes. Stock is excluded: it only moves
// through AdjustStock, the ledger or the POS.
func (s *ProductService) Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateProductRequest) (*model.Product, error) {
	p, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	oldBarcode := p.Barcode

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Cost != nil {
		p.Cost = *req.Cost
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, ErrCategoryNotFound
		}
		if _, err := s.categoryRepo.FindByID(ctx, companyID, categoryID); err != nil {
			return nil, ErrCategoryNotFound
		}
		p.CategoryID = &categoryID
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateBarcode(ctx, companyID, oldBarcode)
	s.invalidateBarcode(ctx, companyID, p.Barcode)
	return p, nil
}

// Delete soft-deletes a product. Products referenced by ledger items
// are protected: they deactivate instead of disappearing so historic
// transactions keep resolving.
func (s *ProductService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	p, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	hasHistory, err := s.productRepo.HasLedgerItems(ctx, id)
	if err != nil {
		return err
	}
	if hasHistory {
		return ErrProductHasHistory
	}
	if err := s.productRepo.SoftDelete(ctx, companyID, id); err != nil {
		return err
	}
	s.invalidateBarcode(ctx, companyID, p.Barcode)
	return nil
}

// Deactivate hides a product from the catalogue without deleting it.
func (s *ProductService) Deactivate(ctx context.Context, companyID, id uuid.UUID) error {
	p, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.SoftDelete(ctx, companyID, id); err != nil {
		return err
	}
	s.invalidateBarcode(ctx, companyID, p.Barcode)
	return nil
}

// Reactivate brings a deactivated product back.
func (s *ProductService) Reactivate(ctx context.Context, companyID, id uuid.UUID) error {
	return s.productRepo.Reactivate(ctx, companyID, id)
}

// AdjustStock applies a manual signed delta with an audit movement.
func (s *ProductService) AdjustStock(ctx context.Context, companyID, id, actorID uuid.UUID, req dto.AdjustStockRequest) (*model.Product, error) {
	var adjusted *model.Product
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		p, err := s.productRepo.FindForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if p.CompanyID != companyID {
			return ErrProductNotFound
		}
		if p.Stock+req.Delta < 0 {
			return fmt.Errorf("%w: %s has %d in stock, adjustment %d",
				ErrInsufficientStock, p.Name, p.Stock, req.Delta)
		}

		before := p.Stock
		if err := s.productRepo.UpdateStockTx(tx, p.ID, req.Delta); err != nil {
			return err
		}
		p.Stock = before + req.Delta

		movement := &model.StockMovement{
			CompanyID:   companyID,
			ProductID:   p.ID,
			Type:        model.MovementAdjust,
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  p.Stock,
			Reason:      req.Reason,
			CreatedByID: actorID,
		}
		if err := s.movementRepo.CreateTx(tx, movement); err != nil {
			return err
		}
		adjusted = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// LookupBarcode is the POS price check. Responses are cached in redis
// for a few minutes; any product update invalidates the entry.
func (s *ProductService) LookupBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*dto.BarcodeLookupResponse, error) {
	key := barcodeCacheKey(companyID, barcode)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp dto.BarcodeLookupResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.productRepo.FindByBarcode(ctx, companyID, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	resp := &dto.BarcodeLookupResponse{
		ID:    p.ID.String(),
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, key, data, barcodeCacheTTL).Err(); err != nil {
				log.Warn().Str("barcode", barcode).Err(err).Msg("failed to cache barcode lookup")
			}
		}
	}
	return resp, nil
}

// ListMovements exposes the stock audit trail.
func (s *ProductService) ListMovements(ctx context.Context, companyID uuid.UUID, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	return s.movementRepo.List(ctx, companyID, filter)
}

func (s *ProductService) invalidateBarcode(ctx context.Context, companyID uuid.UUID, barcode *string) {
	if s.rdb == nil || barcode == nil || *barcode == "" {
		return
	}
	if err := s.rdb.Del(ctx, barcodeCacheKey(companyID, *barcode)).Err(); err != nil {
		log.Warn().Str("barcode", *barcode).Err(err).Msg("failed to invalidate barcode cache")
	}
}

func barcodeCacheKey(companyID uuid.UUID, barcode string) string {
	return fmt.Sprintf("barcode:%s:%s", companyID, barcode)
}
