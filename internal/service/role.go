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

// Default permission grants per role. Admin holds every permission; the user
// role covers day-to-day back-office work.
var defaultRolePermissions = map[string][]string{
	domain.RoleAdmin: domain.AllPermissionTypes(),
	domain.RoleUser: {
		domain.PermViewDashboard,
		domain.PermManageOrders,
		domain.PermManageProducts,
		domain.PermManageCategories,
	},
}

// Human-readable names and descriptions for seeded permissions.
var defaultPermissions = map[string][2]string{
	domain.PermCreateUser:        {"Create User", "Provision new directory users"},
	domain.PermReadUser:          {"Read User", "View directory users"},
	domain.PermUpdateUser:        {"Update User", "Edit directory users"},
	domain.PermDeleteUser:        {"Delete User", "Remove directory users"},
	domain.PermManageRoles:       {"Manage Roles", "Create and edit roles"},
	domain.PermManagePermissions: {"Manage Permissions", "Create and edit permissions"},
	domain.PermViewDashboard:     {"View Dashboard", "Read dashboard statistics"},
	domain.PermManageOrders:      {"Manage Orders", "Create and update orders"},
	domain.PermManageProducts:    {"Manage Products", "Create and update products"},
	domain.PermManageCategories:  {"Manage Categories", "Create and update categories"},
}

// RoleService implements role and permission management plus startup seeding.
type RoleService struct {
	roleRepo repository.RoleRepository
	permRepo repository.PermissionRepository
	logger   *slog.Logger
}

// NewRoleService creates the role service.
func NewRoleService(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, logger *slog.Logger) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		permRepo: permRepo,
		logger:   logger,
	}
}

// CreateRoleInput holds the parameters for creating a role.
type CreateRoleInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=60"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// UpdateRoleInput holds the parameters for updating a role.
type UpdateRoleInput struct {
	Description *string   `json:"description" validate:"omitempty,max=500"`
	Permissions *[]string `json:"permissions" validate:"omitempty,min=1"`
}

// SeedDefaults idempotently creates the built-in permissions and roles.
// Existing rows are left untouched so operator edits survive restarts.
func (s *RoleService) SeedDefaults(ctx context.Context) error {
	now := time.Now().UTC()

	for _, permType := range domain.AllPermissionTypes() {
		_, err := s.permRepo.GetByType(ctx, permType)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("check permission %s: %w", permType, err)
		}

		meta := defaultPermissions[permType]
		perm := &domain.Permission{
			ID:          uuid.New().String(),
			Name:        meta[0],
			Description: meta[1],
			Type:        permType,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.permRepo.Create(ctx, perm); err != nil {
			// A concurrent replica may have seeded it first.
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed permission %s: %w", permType, err)
		}
	}

	for _, name := range []string{domain.RoleAdmin, domain.RoleUser} {
		_, err := s.roleRepo.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("check role %s: %w", name, err)
		}

		role := &domain.Role{
			ID:          uuid.New().String(),
			Name:        name,
			Description: fmt.Sprintf("Built-in %s role", name),
			Permissions: defaultRolePermissions[name],
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.roleRepo.Create(ctx, role); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed role %s: %w", name, err)
		}

		s.logger.InfoContext(ctx, "seeded role",
			slog.String("role", name),
			slog.Int("permissions", len(role.Permissions)),
		)
	}

	return nil
}

// Create adds a new role. Permission types must all be known.
func (s *RoleService) Create(ctx context.Context, input CreateRoleInput) (*domain.Role, error) {
	for _, p := range input.Permissions {
		if _, err := s.permRepo.GetByType(ctx, p); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.InvalidInput(fmt.Sprintf("unknown permission %q", p))
			}
			return nil, fmt.Errorf("check permission %s: %w", p, err)
		}
	}

	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Permissions: input.Permissions,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "role created", slog.String("role", role.Name))
	return role, nil
}

// Get returns a role by ID.
func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("role", id)
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// List returns all active roles.
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return s.roleRepo.List(ctx)
}

// ListPermissions returns all active permissions.
func (s *RoleService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.permRepo.List(ctx)
}

// Update modifies a role. Built-in role names cannot be renamed, so only
// description and permissions are mutable.
func (s *RoleService) Update(ctx context.Context, id string, input UpdateRoleInput) (*domain.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		role.Description = *input.Description
	}
	if input.Permissions != nil {
		for _, p := range *input.Permissions {
			if _, err := s.permRepo.GetByType(ctx, p); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, apperrors.InvalidInput(fmt.Sprintf("unknown permission %q", p))
				}
				return nil, fmt.Errorf("check permission %s: %w", p, err)
			}
		}
		role.Permissions = *input.Permissions
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// Delete deactivates a role. Built-in roles cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if role.Name == domain.RoleAdmin || role.Name == domain.RoleUser {
		return apperrors.InvalidInput(fmt.Sprintf("built-in role %q cannot be deleted", role.Name))
	}

	if err := s.roleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("role", id)
		}
		return fmt.Errorf("delete role: %w", err)
	}

	s.logger.InfoContext(ctx, "role deactivated", slog.String("role", role.Name))
	return nil
}
