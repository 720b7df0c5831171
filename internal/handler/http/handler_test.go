package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/auth"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/httputil"
)

// ============================================================================
// Mock Repositories
// ============================================================================

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Product, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, ownerID string, filter domain.ProductFilters, page, perPage int) ([]domain.Product, int, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *mockProductRepo) CountByCategory(ctx context.Context, ownerID, category string) (int, error) {
	args := m.Called(ctx, ownerID, category)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepo) Count(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *mockProductRepo) Categories(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, ownerID string, filter domain.OrderFilters, page, perPage int) ([]domain.Order, int, error) {
	args := m.Called(ctx, ownerID, filter, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepo) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, ownerID, id, status string) error {
	args := m.Called(ctx, ownerID, id, status)
	return args.Error(0)
}

func (m *mockOrderRepo) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *mockOrderRepo) Stats(ctx context.Context, ownerID string) (*domain.OrderStats, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStats), args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, rawIDToken string) (*auth.GoogleClaims, error) {
	args := m.Called(ctx, rawIDToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.GoogleClaims), args.Error(1)
}

type mockAuthEvents struct {
	mock.Mock
}

func (m *mockAuthEvents) PublishUserProvisioned(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockAuthEvents) PublishUserLoggedIn(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockOrderEvents struct {
	mock.Mock
}

func (m *mockOrderEvents) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderEvents) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// ============================================================================
// Fixtures
// ============================================================================

const (
	testUserID  = "550e8400-e29b-41d4-a716-446655440001"
	testAdminID = "550e8400-e29b-41d4-a716-446655440002"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newHandlerTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(
		strings.Repeat("a", 32),
		strings.Repeat("b", 32),
		time.Hour,
		168*time.Hour,
		"order-system-api",
	)
}

func activeMember() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        testUserID,
		GoogleID:  "google-sub-1",
		Email:     "member@example.com",
		Name:      "Member One",
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func activeAdmin() *domain.User {
	u := activeMember()
	u.ID = testAdminID
	u.GoogleID = "google-sub-2"
	u.Email = "admin@example.com"
	u.Name = "Admin One"
	u.Role = domain.RoleAdmin
	return u
}

// accessTokenFor issues a real access token for the given user so guard
// tests exercise actual verification instead of a bypass.
func accessTokenFor(t *testing.T, tokens *auth.TokenManager, user *domain.User) string {
	t.Helper()
	pair, err := tokens.Issue(user)
	require.NoError(t, err)
	return pair.AccessToken
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
