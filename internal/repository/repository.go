package repository

import (
	"context"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
)

// UserFilter defines filter criteria for listing directory users.
type UserFilter struct {
	Role   *string
	Status *string
	Search *string
	Page    int
	PerPage int
}

// UserRepository defines the interface for user directory persistence.
type UserRepository interface {
	// Create inserts a new user. A unique violation on google_id or email
	// is reported as a conflict.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByGoogleID retrieves a user by their Google subject id.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns users matching the filter with the total count.
	List(ctx context.Context, filter UserFilter) ([]domain.User, int, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// UpdateLastLogin stamps the user's last login time.
	UpdateLastLogin(ctx context.Context, id string) error

	// Delete removes a user by their ID.
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines owner-scoped product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Product, error)
	List(ctx context.Context, ownerID string, filter domain.ProductFilters, page, perPage int) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, ownerID, id string) error

	// CountByCategory returns the number of the owner's products in the
	// named category.
	CountByCategory(ctx context.Context, ownerID, category string) (int, error)

	// Count returns the owner's total product count.
	Count(ctx context.Context, ownerID string) (int, error)

	// Categories returns the distinct category names used by the owner's
	// products, sorted alphabetically.
	Categories(ctx context.Context, ownerID string) ([]string, error)
}

// CategoryRepository defines owner-scoped category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Category, error)
	List(ctx context.Context, ownerID string) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, ownerID, id string) error
}

// OrderRepository defines owner-scoped order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, ownerID, id string) (*domain.Order, error)
	List(ctx context.Context, ownerID string, filter domain.OrderFilters, page, perPage int) ([]domain.Order, int, error)
	Update(ctx context.Context, order *domain.Order) error
	UpdateStatus(ctx context.Context, ownerID, id, status string) error
	Delete(ctx context.Context, ownerID, id string) error

	// Stats returns the owner's order aggregate for the dashboard.
	Stats(ctx context.Context, ownerID string) (*domain.OrderStats, error)
}

// RoleRepository defines role persistence. Roles are global, not owner
// scoped.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role *domain.Role) error
	Delete(ctx context.Context, id string) error
}

// PermissionRepository defines permission persistence.
type PermissionRepository interface {
	Create(ctx context.Context, perm *domain.Permission) error
	GetByType(ctx context.Context, permType string) (*domain.Permission, error)
	List(ctx context.Context) ([]domain.Permission, error)
}
