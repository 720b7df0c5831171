package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/database"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository using
// PostgreSQL. Category names are unique per owner.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.OwnerID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves one of the owner's categories with its live product count.
func (r *CategoryRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.owner_id, c.created_at, c.updated_at,
		       (SELECT count(*) FROM products p WHERE p.owner_id = c.owner_id AND p.category = c.name) AS product_count
		FROM categories c
		WHERE c.owner_id = $1 AND c.id = $2`

	var c domain.Category
	err := r.pool.QueryRow(ctx, query, ownerID, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// List returns all of the owner's categories with live product counts.
func (r *CategoryRepository) List(ctx context.Context, ownerID string) ([]domain.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.owner_id, c.created_at, c.updated_at,
		       (SELECT count(*) FROM products p WHERE p.owner_id = c.owner_id AND p.category = c.name) AS product_count
		FROM categories c
		WHERE c.owner_id = $1
		ORDER BY c.name ASC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount,
		); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// Update modifies one of the owner's categories.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = $3
		WHERE owner_id = $4 AND id = $5`

	ct, err := r.pool.Exec(ctx, query, c.Name, c.Description, c.UpdatedAt, c.OwnerID, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	return nil
}

// Delete removes one of the owner's categories by ID. Callers must check the
// category is empty first.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM categories WHERE owner_id = $1 AND id = $2`

	ct, err := r.pool.Exec(ctx, query, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}
