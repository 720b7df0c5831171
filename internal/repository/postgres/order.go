package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/database"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

const orderColumns = `id, order_number, status, items, customer_name, customer_email, customer_phone, shipping_service, shipping_address, tracking_code, total, order_items, notes, owner_id, created_at, updated_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
// Line items are stored as a JSONB document on the order row since they are
// denormalized snapshots, never queried independently.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order with its embedded line items.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.OrderItems)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `
		INSERT INTO orders (id, order_number, status, items, customer_name, customer_email, customer_phone, shipping_service, shipping_address, tracking_code, total, order_items, notes, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.pool.Exec(ctx, query,
		o.ID,
		o.OrderNumber,
		o.Status,
		o.Items,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.ShippingService,
		o.ShippingAddress,
		o.TrackingCode,
		o.Total,
		itemsJSON,
		o.Notes,
		o.OwnerID,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("order", "orderNumber", o.OrderNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's orders by ID.
func (r *OrderRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE owner_id = $1 AND id = $2`

	var (
		o         domain.Order
		itemsJSON []byte
	)
	err := r.pool.QueryRow(ctx, query, ownerID, id).Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.Items, &o.CustomerName,
		&o.CustomerEmail, &o.CustomerPhone, &o.ShippingService, &o.ShippingAddress,
		&o.TrackingCode, &o.Total, &itemsJSON, &o.Notes, &o.OwnerID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if itemsJSON != nil {
		if err := json.Unmarshal(itemsJSON, &o.OrderItems); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}

	return &o, nil
}

// List returns the owner's orders matching the filter with the total count.
func (r *OrderRepository) List(ctx context.Context, ownerID string, filter domain.OrderFilters, page, perPage int) ([]domain.Order, int, error) {
	conditions := []string{"owner_id = $1"}
	args := []any{ownerID}
	argIndex := 2

	if filter.Status != "" && filter.Status != "all" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(order_number ILIKE $%d OR customer_name ILIKE $%d OR tracking_code ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	if perPage <= 0 {
		perPage = 10
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders     []domain.Order
		totalCount int
	)

	for rows.Next() {
		var (
			o         domain.Order
			itemsJSON []byte
		)
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.Status, &o.Items, &o.CustomerName,
			&o.CustomerEmail, &o.CustomerPhone, &o.ShippingService, &o.ShippingAddress,
			&o.TrackingCode, &o.Total, &itemsJSON, &o.Notes, &o.OwnerID,
			&o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		if itemsJSON != nil {
			if err := json.Unmarshal(itemsJSON, &o.OrderItems); err != nil {
				return nil, 0, fmt.Errorf("unmarshal order items: %w", err)
			}
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, totalCount, nil
}

// Update modifies one of the owner's orders, rewriting the item snapshot.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	o.UpdatedAt = time.Now().UTC()

	itemsJSON, err := json.Marshal(o.OrderItems)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	query := `
		UPDATE orders
		SET status = $1, items = $2, customer_name = $3, customer_email = $4, customer_phone = $5,
		    shipping_service = $6, shipping_address = $7, total = $8, order_items = $9, notes = $10, updated_at = $11
		WHERE owner_id = $12 AND id = $13`

	ct, err := r.pool.Exec(ctx, query,
		o.Status,
		o.Items,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.ShippingService,
		o.ShippingAddress,
		o.Total,
		itemsJSON,
		o.Notes,
		o.UpdatedAt,
		o.OwnerID,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", o.ID)
	}

	return nil
}

// UpdateStatus transitions one of the owner's orders to the given status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, ownerID, id, status string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE owner_id = $3 AND id = $4`

	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), ownerID, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Delete removes one of the owner's orders by ID.
func (r *OrderRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM orders WHERE owner_id = $1 AND id = $2`

	ct, err := r.pool.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// Stats aggregates the owner's orders for the dashboard. Trends compare the
// last 30 days against the 30 days before that; revenue excludes cancelled,
// rejected and draft orders.
func (r *OrderRepository) Stats(ctx context.Context, ownerID string) (*domain.OrderStats, error) {
	query := `
		SELECT
			count(*) AS total_orders,
			count(*) FILTER (WHERE status IN ('new', 'preparing')) AS pending_orders,
			COALESCE(sum(total) FILTER (WHERE status NOT IN ('cancelled', 'rejected', 'draft')), 0) AS total_revenue,
			count(*) FILTER (WHERE created_at >= now() - interval '30 days') AS recent_orders,
			count(*) FILTER (WHERE created_at >= now() - interval '60 days' AND created_at < now() - interval '30 days') AS previous_orders,
			COALESCE(sum(total) FILTER (WHERE status NOT IN ('cancelled', 'rejected', 'draft') AND created_at >= now() - interval '30 days'), 0) AS recent_revenue,
			COALESCE(sum(total) FILTER (WHERE status NOT IN ('cancelled', 'rejected', 'draft') AND created_at >= now() - interval '60 days' AND created_at < now() - interval '30 days'), 0) AS previous_revenue
		FROM orders
		WHERE owner_id = $1`

	var (
		stats           domain.OrderStats
		recentOrders    int
		previousOrders  int
		recentRevenue   float64
		previousRevenue float64
	)
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.TotalRevenue,
		&recentOrders,
		&previousOrders,
		&recentRevenue,
		&previousRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate order stats: %w", err)
	}

	stats.OrdersTrend = trend(float64(recentOrders), float64(previousOrders))
	stats.RevenueTrend = trend(recentRevenue, previousRevenue)

	return &stats, nil
}

// trend returns the percentage change from previous to recent. A zero
// previous period yields 100 when there is recent activity, 0 otherwise.
func trend(recent, previous float64) float64 {
	if previous == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return (recent - previous) / previous * 100
}
