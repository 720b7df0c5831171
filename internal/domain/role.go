package domain

import "time"

// Permission types granted to roles.
const (
	PermCreateUser        = "create_user"
	PermReadUser          = "read_user"
	PermUpdateUser        = "update_user"
	PermDeleteUser        = "delete_user"
	PermManageRoles       = "manage_roles"
	PermManagePermissions = "manage_permissions"
	PermViewDashboard     = "view_dashboard"
	PermManageOrders      = "manage_orders"
	PermManageProducts    = "manage_products"
	PermManageCategories  = "manage_categories"
)

// AllPermissionTypes lists every known permission type.
func AllPermissionTypes() []string {
	return []string{
		PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
		PermManageRoles, PermManagePermissions, PermViewDashboard,
		PermManageOrders, PermManageProducts, PermManageCategories,
	}
}

// Permission is a named capability. Deletion is soft: IsActive flips to false
// and the record drops out of listings.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Role is a named set of permission types. Role names are unique.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasPermission reports whether the role grants the given permission type.
func (r *Role) HasPermission(permType string) bool {
	for _, p := range r.Permissions {
		if p == permType {
			return true
		}
	}
	return false
}
