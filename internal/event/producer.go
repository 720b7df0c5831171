package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	pkgkafka "github.com/ThanhDoDuy/order-system-hani-BE/pkg/kafka"
)

// Kafka topics for back-office domain events.
const (
	TopicUserProvisioned = "backoffice.user.provisioned"
	TopicUserLoggedIn    = "backoffice.user.logged_in"
	TopicOrderCreated    = "backoffice.order.created"
	TopicOrderStatus     = "backoffice.order.status_changed"
)

// Aggregate types.
const (
	AggregateTypeUser  = "user"
	AggregateTypeOrder = "order"
)

// Source identifier for events originating from this service.
const Source = "order-system-api"

// UserProvisionedData is the payload for a user.provisioned event.
type UserProvisionedData struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// UserLoggedInData is the payload for a user.logged_in event.
type UserLoggedInData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	ID          string  `json:"id"`
	OrderNumber string  `json:"order_number"`
	OwnerID     string  `json:"owner_id"`
	Items       int     `json:"items"`
	Total       float64 `json:"total"`
}

// OrderStatusData is the payload for an order.status_changed event.
type OrderStatusData struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	OwnerID     string `json:"owner_id"`
	Status      string `json:"status"`
}

// Producer publishes back-office domain events to Kafka. Publish failures are
// logged by callers, never surfaced to clients.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserProvisioned publishes a user.provisioned event.
func (p *Producer) PublishUserProvisioned(ctx context.Context, user *domain.User) error {
	data := UserProvisionedData{
		ID:     user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Status: user.Status,
	}

	event, err := pkgkafka.NewEvent(TopicUserProvisioned, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.provisioned event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserProvisioned, event); err != nil {
		return fmt.Errorf("publish user.provisioned event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.provisioned event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishUserLoggedIn publishes a user.logged_in event.
func (p *Producer) PublishUserLoggedIn(ctx context.Context, user *domain.User) error {
	data := UserLoggedInData{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}

	event, err := pkgkafka.NewEvent(TopicUserLoggedIn, user.ID, AggregateTypeUser, Source, data)
	if err != nil {
		return fmt.Errorf("create user.logged_in event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicUserLoggedIn, event); err != nil {
		return fmt.Errorf("publish user.logged_in event: %w", err)
	}

	p.logger.DebugContext(ctx, "published user.logged_in event",
		slog.String("user_id", user.ID),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	data := OrderCreatedData{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		OwnerID:     order.OwnerID,
		Items:       order.Items,
		Total:       order.Total,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	data := OrderStatusData{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		OwnerID:     order.OwnerID,
		Status:      order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatus, order.ID, AggregateTypeOrder, Source, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatus, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	return nil
}
