package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

// LowStockDispatcher adapts the ledger's low stock callback to an async
// alert job, resolving the company email on the way.
type LowStockDispatcher struct {
	dispatcher  *Dispatcher
	companyRepo repository.CompanyRepository
}

func NewLowStockDispatcher(d *Dispatcher, companyRepo repository.CompanyRepository) *LowStockDispatcher {
	return &LowStockDispatcher{dispatcher: d, companyRepo: companyRepo}
}

func (l *LowStockDispatcher) NotifyLowStock(ctx context.Context, product model.Product) {
	company, err := l.companyRepo.FindByID(ctx, product.CompanyID)
	if err != nil {
		log.Warn().Str("product_id", product.ID.String()).Err(err).Msg("low stock alert: company lookup failed")
		return
	}
	payload := LowStockJobPayload{
		ProductID:    product.ID.String(),
		ProductName:  product.Name,
		Stock:        product.Stock,
		Threshold:    product.LowStockThreshold,
		CompanyEmail: company.Email,
	}
	if err := l.dispatcher.EnqueueLowStock(ctx, payload); err != nil {
		log.Error().Str("product_id", product.ID.String()).Err(err).Msg("low stock alert: enqueue failed")
	}
}
