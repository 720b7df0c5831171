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

const roleColumns = `id, name, description, permissions, is_active, created_at, updated_at`

// RoleRepository implements repository.RoleRepository using PostgreSQL.
// Permissions are stored as a text array on the role row.
type RoleRepository struct {
	pool database.DBTX
}

// NewRoleRepository creates a new PostgreSQL-backed role repository.
func NewRoleRepository(pool database.DBTX) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Create inserts a new role.
func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	query := `
		INSERT INTO roles (id, name, description, permissions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.Permissions,
		role.IsActive,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("role", "name", role.Name)
		}
		return fmt.Errorf("insert role: %w", err)
	}

	return nil
}

// GetByID retrieves a role by its ID.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	return r.scanRole(ctx, query, id)
}

// GetByName retrieves a role by its unique name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE name = $1`
	return r.scanRole(ctx, query, name)
}

// List returns all active roles.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE is_active = true ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID, &role.Name, &role.Description, &role.Permissions,
			&role.IsActive, &role.CreatedAt, &role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role rows: %w", err)
	}

	if roles == nil {
		roles = []domain.Role{}
	}

	return roles, nil
}

// Update modifies an existing role.
func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	role.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE roles
		SET name = $1, description = $2, permissions = $3, is_active = $4, updated_at = $5
		WHERE id = $6`

	ct, err := r.pool.Exec(ctx, query,
		role.Name,
		role.Description,
		role.Permissions,
		role.IsActive,
		role.UpdatedAt,
		role.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("role", "name", role.Name)
		}
		return fmt.Errorf("update role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("role", role.ID)
	}

	return nil
}

// Delete deactivates a role. Roles are soft-deleted so users referencing
// them keep a resolvable name.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE roles SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active = true`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("role", id)
	}

	return nil
}

// scanRole executes a query expected to return a single role row.
func (r *RoleRepository) scanRole(ctx context.Context, query string, args ...any) (*domain.Role, error) {
	var role domain.Role

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&role.ID, &role.Name, &role.Description, &role.Permissions,
		&role.IsActive, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	return &role, nil
}

// PermissionRepository implements repository.PermissionRepository using
// PostgreSQL.
type PermissionRepository struct {
	pool database.DBTX
}

// NewPermissionRepository creates a new PostgreSQL-backed permission repository.
func NewPermissionRepository(pool database.DBTX) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// Create inserts a new permission.
func (r *PermissionRepository) Create(ctx context.Context, p *domain.Permission) error {
	query := `
		INSERT INTO permissions (id, name, description, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Type,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("permission", "type", p.Type)
		}
		return fmt.Errorf("insert permission: %w", err)
	}

	return nil
}

// GetByType retrieves a permission by its unique type.
func (r *PermissionRepository) GetByType(ctx context.Context, permType string) (*domain.Permission, error) {
	query := `SELECT id, name, description, type, is_active, created_at, updated_at FROM permissions WHERE type = $1`

	var p domain.Permission
	err := r.pool.QueryRow(ctx, query, permType).Scan(
		&p.ID, &p.Name, &p.Description, &p.Type, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission: %w", err)
	}

	return &p, nil
}

// List returns all active permissions.
func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	query := `SELECT id, name, description, type, is_active, created_at, updated_at FROM permissions WHERE is_active = true ORDER BY type ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Type, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan permission row: %w", err)
		}
		perms = append(perms, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permission rows: %w", err)
	}

	if perms == nil {
		perms = []domain.Permission{}
	}

	return perms, nil
}
