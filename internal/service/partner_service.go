package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

// PartnerService is the accountant's read surface over merchants and
// representatives: balances and transaction statements.
type PartnerService struct {
	userRepo repository.UserRepository
	txRepo   repository.TransactionRepository
}

func NewPartnerService(userRepo repository.UserRepository, txRepo repository.TransactionRepository) *PartnerService {
	return &PartnerService{userRepo: userRepo, txRepo: txRepo}
}

// List returns the company's merchants and representatives with their
// cached balances.
func (s *PartnerService) List(ctx context.Context, companyID uuid.UUID) ([]model.User, error) {
	return s.userRepo.ListPartners(ctx, companyID)
}

// Get returns one partner, scoped to the company.
func (s *PartnerService) Get(ctx context.Context, companyID, id uuid.UUID) (*model.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if u.CompanyID == nil || *u.CompanyID != companyID || !u.IsPartner() {
		return nil, ErrPartnerNotFound
	}
	return u, nil
}

// Statement returns the partner's transaction history.
func (s *PartnerService) Statement(ctx context.Context, companyID, partnerID uuid.UUID, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	if _, err := s.Get(ctx, companyID, partnerID); err != nil {
		return nil, 0, err
	}
	filter.UserID = partnerID.String()
	return s.txRepo.List(ctx, companyID, filter)
}

// PartnerToResponse maps a partner to its API shape.
func PartnerToResponse(u *model.User) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Username:      u.Username,
		Role:          u.Role,
		Phone:         u.Phone,
		Debt:          u.Debt,
		ProductsCount: u.ProductsCount,
		Active:        u.Active,
	}
}
