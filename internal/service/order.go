package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/pagination"
)

// OrderEventPublisher publishes order domain events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error
}

// OrderService implements owner-scoped order management. Line item prices are
// snapshotted from the catalog at creation time.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	events      OrderEventPublisher
	logger      *slog.Logger
}

// NewOrderService creates the order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	events OrderEventPublisher,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		events:      events,
		logger:      logger,
	}
}

// OrderItemInput is one requested line item. The product's current price for
// the chosen price type is captured into the order.
type OrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	PriceType string `json:"priceType" validate:"required,oneof=wholesale retail"`
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	CustomerName    string           `json:"customerName" validate:"required,min=1,max=200"`
	CustomerEmail   string           `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string           `json:"customerPhone" validate:"max=30"`
	ShippingService string           `json:"shippingService" validate:"required,oneof=standard priority express"`
	ShippingAddress string           `json:"shippingAddress" validate:"max=500"`
	Notes           string           `json:"notes" validate:"max=1000"`
	Status          string           `json:"status" validate:"omitempty,oneof=new draft"`
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderInput holds the mutable order fields. Nil fields are left
// unchanged; items cannot be edited after creation.
type UpdateOrderInput struct {
	CustomerName    *string `json:"customerName" validate:"omitempty,min=1,max=200"`
	CustomerEmail   *string `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   *string `json:"customerPhone" validate:"omitempty,max=30"`
	ShippingService *string `json:"shippingService" validate:"omitempty,oneof=standard priority express"`
	ShippingAddress *string `json:"shippingAddress" validate:"omitempty,max=500"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
}

// Create builds an order from the owner's catalog, snapshotting product names
// and prices into the line items.
func (s *OrderService) Create(ctx context.Context, ownerID string, input CreateOrderInput) (*domain.Order, error) {
	status := input.Status
	if status == "" {
		status = domain.OrderNew
	}

	var (
		items      []domain.OrderItem
		total      float64
		totalUnits int
	)
	for _, in := range input.Items {
		product, err := s.productRepo.GetByID(ctx, ownerID, in.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("product %s not found", in.ProductID))
			}
			return nil, fmt.Errorf("lookup product %s: %w", in.ProductID, err)
		}

		price := product.RetailPrice
		if in.PriceType == domain.PriceWholesale {
			price = product.WholesalePrice
		}

		subtotal := price * float64(in.Quantity)
		items = append(items, domain.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductPrice: price,
			PriceType:    in.PriceType,
			Quantity:     in.Quantity,
			Subtotal:     subtotal,
		})
		total += subtotal
		totalUnits += in.Quantity
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		OrderNumber:     newOrderNumber(now),
		Status:          status,
		Items:           totalUnits,
		CustomerName:    input.CustomerName,
		CustomerEmail:   input.CustomerEmail,
		CustomerPhone:   input.CustomerPhone,
		ShippingService: input.ShippingService,
		ShippingAddress: input.ShippingAddress,
		TrackingCode:    newTrackingCode(),
		Total:           total,
		OrderItems:      items,
		Notes:           input.Notes,
		OwnerID:         ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.String("owner_id", ownerID),
	)

	return order, nil
}

// Get returns one of the owner's orders.
func (s *OrderService) Get(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List returns a page of the owner's orders.
func (s *OrderService) List(ctx context.Context, ownerID string, filter domain.OrderFilters, params pagination.Params) (*pagination.Result[domain.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, ownerID, filter, params.Page, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	result := pagination.NewResult(orders, total, params)
	return &result, nil
}

// Update modifies the customer and shipping details of an order.
func (s *OrderService) Update(ctx context.Context, ownerID, id string, input UpdateOrderInput) (*domain.Order, error) {
	order, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.CustomerName != nil {
		order.CustomerName = *input.CustomerName
	}
	if input.CustomerEmail != nil {
		order.CustomerEmail = *input.CustomerEmail
	}
	if input.CustomerPhone != nil {
		order.CustomerPhone = *input.CustomerPhone
	}
	if input.ShippingService != nil {
		order.ShippingService = *input.ShippingService
	}
	if input.ShippingAddress != nil {
		order.ShippingAddress = *input.ShippingAddress
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	return order, nil
}

// UpdateStatus transitions an order to a new status.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, id, status string) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, ownerID, id, status); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderStatusChanged(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// Delete removes one of the owner's orders.
func (s *OrderService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.orderRepo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("order", id)
		}
		return fmt.Errorf("delete order: %w", err)
	}

	s.logger.InfoContext(ctx, "order deleted",
		slog.String("order_id", id),
		slog.String("owner_id", ownerID),
	)

	return nil
}

// Stats returns the owner's dashboard aggregate.
func (s *OrderService) Stats(ctx context.Context, ownerID string) (*domain.OrderStats, error) {
	return s.orderRepo.Stats(ctx, ownerID)
}

// newOrderNumber builds a human-readable order number, date-prefixed with a
// random suffix.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), randomHex(3))
}

// newTrackingCode builds an opaque tracking code.
func newTrackingCode() string {
	return "TRK-" + randomHex(5)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// uuid-derived suffix.
		return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:n*2])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
