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
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/pagination"
)

// ProductService implements owner-scoped catalog management.
type ProductService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewProductService creates the product service.
func NewProductService(productRepo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name           string  `json:"name" validate:"required,min=1,max=200"`
	WholesalePrice float64 `json:"wholesalePrice" validate:"gte=0"`
	RetailPrice    float64 `json:"retailPrice" validate:"gte=0"`
	Stock          int     `json:"stock" validate:"gte=0"`
	Category       string  `json:"category" validate:"required"`
	Status         string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Image          string  `json:"image"`
	Description    string  `json:"description"`
	Weight         float64 `json:"weight" validate:"gte=0"`
	Dimensions     string  `json:"dimensions"`
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=200"`
	WholesalePrice *float64 `json:"wholesalePrice" validate:"omitempty,gte=0"`
	RetailPrice    *float64 `json:"retailPrice" validate:"omitempty,gte=0"`
	Stock          *int     `json:"stock" validate:"omitempty,gte=0"`
	Category       *string  `json:"category"`
	Status         *string  `json:"status" validate:"omitempty,oneof=active inactive"`
	Image          *string  `json:"image"`
	Description    *string  `json:"description"`
	Weight         *float64 `json:"weight" validate:"omitempty,gte=0"`
	Dimensions     *string  `json:"dimensions"`
}

// Create adds a product to the owner's catalog.
func (s *ProductService) Create(ctx context.Context, ownerID string, input CreateProductInput) (*domain.Product, error) {
	status := input.Status
	if status == "" {
		status = domain.ProductActive
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:             uuid.New().String(),
		Name:           input.Name,
		WholesalePrice: input.WholesalePrice,
		RetailPrice:    input.RetailPrice,
		Stock:          input.Stock,
		Category:       input.Category,
		Status:         status,
		Image:          input.Image,
		Description:    input.Description,
		Weight:         input.Weight,
		Dimensions:     input.Dimensions,
		OwnerID:        ownerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("owner_id", ownerID),
	)

	return product, nil
}

// Get returns one of the owner's products.
func (s *ProductService) Get(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List returns a page of the owner's products.
func (s *ProductService) List(ctx context.Context, ownerID string, filter domain.ProductFilters, params pagination.Params) (*pagination.Result[domain.Product], error) {
	products, total, err := s.productRepo.List(ctx, ownerID, filter, params.Page, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, params)
	return &result, nil
}

// Update modifies one of the owner's products.
func (s *ProductService) Update(ctx context.Context, ownerID, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.WholesalePrice != nil {
		product.WholesalePrice = *input.WholesalePrice
	}
	if input.RetailPrice != nil {
		product.RetailPrice = *input.RetailPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.Image != nil {
		product.Image = *input.Image
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Weight != nil {
		product.Weight = *input.Weight
	}
	if input.Dimensions != nil {
		product.Dimensions = *input.Dimensions
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// Delete removes one of the owner's products.
func (s *ProductService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.productRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("owner_id", ownerID),
	)

	return nil
}

// Categories lists the distinct category names across the owner's products.
func (s *ProductService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}

	return categories, nil
}

// Stats returns catalog aggregates for the owner.
func (s *ProductService) Stats(ctx context.Context, ownerID string) (*domain.ProductStats, error) {
	total, err := s.productRepo.Count(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	return &domain.ProductStats{TotalProducts: total}, nil
}
