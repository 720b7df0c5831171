package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

func newRoleTestFixture(t *testing.T) (*RoleRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewRoleRepository(mock)
	return repo, mock
}

func sampleRole() *domain.Role {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Role{
		ID:          "r-1",
		Name:        domain.RoleAdmin,
		Description: "Full system access",
		Permissions: domain.AllPermissionTypes(),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func roleCols() []string {
	return []string{"id", "name", "description", "permissions", "is_active", "created_at", "updated_at"}
}

func TestRoleRepository_GetByName(t *testing.T) {
	repo, mock := newRoleTestFixture(t)
	defer mock.Close()

	role := sampleRole()
	rows := pgxmock.NewRows(roleCols()).AddRow(
		role.ID, role.Name, role.Description, role.Permissions,
		role.IsActive, role.CreatedAt, role.UpdatedAt,
	)

	mock.ExpectQuery("SELECT .+ FROM roles WHERE name =").
		WithArgs(domain.RoleAdmin).
		WillReturnRows(rows)

	got, err := repo.GetByName(context.Background(), domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, role.Permissions, got.Permissions)
	assert.True(t, got.HasPermission(domain.PermManageOrders))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_GetByName_NotFound(t *testing.T) {
	repo, mock := newRoleTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM roles WHERE name =").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(roleCols()))

	_, err := repo.GetByName(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_Delete_SoftDeletes(t *testing.T) {
	repo, mock := newRoleTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE roles SET is_active = false").
		WithArgs(pgxmock.AnyArg(), "r-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Delete(context.Background(), "r-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPermissionRepository(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "description", "type", "is_active", "created_at", "updated_at"}).
		AddRow("pm-1", "Manage Orders", "Create and update orders", domain.PermManageOrders, true, now, now).
		AddRow("pm-2", "View Dashboard", "Read dashboard stats", domain.PermViewDashboard, true, now, now)

	mock.ExpectQuery("SELECT .+ FROM permissions WHERE is_active = true").
		WillReturnRows(rows)

	perms, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, perms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
