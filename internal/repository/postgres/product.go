package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/database"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

const productColumns = `id, name, wholesale_price, retail_price, stock, category, status, image, description, weight, dimensions, owner_id, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
// Every query is scoped by owner_id.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, wholesale_price, retail_price, stock, category, status, image, description, weight, dimensions, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.WholesalePrice,
		p.RetailPrice,
		p.Stock,
		p.Category,
		p.Status,
		p.Image,
		p.Description,
		p.Weight,
		p.Dimensions,
		p.OwnerID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's products by ID.
func (r *ProductRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE owner_id = $1 AND id = $2`

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, ownerID, id).Scan(
		&p.ID, &p.Name, &p.WholesalePrice, &p.RetailPrice, &p.Stock,
		&p.Category, &p.Status, &p.Image, &p.Description, &p.Weight,
		&p.Dimensions, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// List returns the owner's products matching the filter with the total count.
func (r *ProductRepository) List(ctx context.Context, ownerID string, filter domain.ProductFilters, page, perPage int) ([]domain.Product, int, error) {
	conditions := []string{"owner_id = $1"}
	args := []any{ownerID}
	argIndex := 2

	// "all" disables a filter the same as an empty value.
	if filter.Category != "" && filter.Category != "all" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	if filter.Status != "" && filter.Status != "all" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
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
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   []domain.Product
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.WholesalePrice, &p.RetailPrice, &p.Stock,
			&p.Category, &p.Status, &p.Image, &p.Description, &p.Weight,
			&p.Dimensions, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, totalCount, nil
}

// Update modifies one of the owner's products.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, wholesale_price = $2, retail_price = $3, stock = $4, category = $5,
		    status = $6, image = $7, description = $8, weight = $9, dimensions = $10, updated_at = $11
		WHERE owner_id = $12 AND id = $13`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.WholesalePrice,
		p.RetailPrice,
		p.Stock,
		p.Category,
		p.Status,
		p.Image,
		p.Description,
		p.Weight,
		p.Dimensions,
		p.UpdatedAt,
		p.OwnerID,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes one of the owner's products by ID.
func (r *ProductRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM products WHERE owner_id = $1 AND id = $2`

	ct, err := r.pool.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// CountByCategory returns the number of the owner's products in the category.
func (r *ProductRepository) CountByCategory(ctx context.Context, ownerID, category string) (int, error) {
	query := `SELECT count(*) FROM products WHERE owner_id = $1 AND category = $2`

	var count int
	if err := r.pool.QueryRow(ctx, query, ownerID, category).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}

	return count, nil
}

// Count returns the owner's total product count.
func (r *ProductRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT count(*) FROM products WHERE owner_id = $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

// Categories returns the distinct category names used by the owner's
// products, sorted alphabetically.
func (r *ProductRepository) Categories(ctx context.Context, ownerID string) ([]string, error) {
	query := `SELECT DISTINCT category FROM products WHERE owner_id = $1 ORDER BY category`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list product categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		categories = append(categories, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product categories: %w", err)
	}

	return categories, nil
}
