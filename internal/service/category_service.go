package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/dto"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/model"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) Create(ctx context.Context, companyID uuid.UUID, req dto.CreateCategoryRequest) (*model.Category, error) {
	c := &model.Category{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *CategoryService) Get(ctx context.Context, companyID, id uuid.UUID) (*model.Category, error) {
	c, err := s.categoryRepo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, companyID uuid.UUID) ([]model.Category, error) {
	return s.categoryRepo.List(ctx, companyID)
}

func (s *CategoryService) Update(ctx context.Context, companyID, id uuid.UUID, req dto.UpdateCategoryRequest) (*model.Category, error) {
	c, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, companyID, id)
}
