package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

// CategoryService implements owner-scoped category management.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       *slog.Logger
}

// NewCategoryService creates the category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateCategoryInput holds the parameters for updating a category.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// Create adds a category to the owner's catalog.
func (s *CategoryService) Create(ctx context.Context, ownerID string, input CreateCategoryInput) (*domain.Category, error) {
	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("owner_id", ownerID),
	)

	return category, nil
}

// Get returns one of the owner's categories.
func (s *CategoryService) Get(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// List returns all of the owner's categories with live product counts.
func (s *CategoryService) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	return s.categoryRepo.List(ctx, ownerID)
}

// Update modifies one of the owner's categories.
func (s *CategoryService) Update(ctx context.Context, ownerID, id string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Delete removes one of the owner's categories. A category still holding
// products cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id string) error {
	category, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, ownerID, category.Name)
	if err != nil {
		return fmt.Errorf("count products in category: %w", err)
	}
	if count > 0 {
		return apperrors.InvalidInput(fmt.Sprintf("category %q still has %d products", category.Name, count))
	}

	if err := s.categoryRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("category", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
		slog.String("owner_id", ownerID),
	)

	return nil
}
