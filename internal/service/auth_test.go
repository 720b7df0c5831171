package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/auth"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

const superAdminEmail = "root@example.com"

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock ID Token Verifier ---

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

// --- Mock Event Publisher ---

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) PublishUserProvisioned(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockEvents) PublishUserLoggedIn(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- Fixtures ---

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(
		strings.Repeat("a", 32),
		strings.Repeat("b", 32),
		time.Hour,
		168*time.Hour,
		"order-system-api",
	)
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepository, *mockVerifier, *mockEvents) {
	t.Helper()
	userRepo := new(mockUserRepository)
	verifier := new(mockVerifier)
	events := new(mockEvents)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	svc := NewAuthService(userRepo, verifier, newTestTokenManager(), events, superAdminEmail, logger)
	return svc, userRepo, verifier, events
}

func activeUser() *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		ID:        "u-1",
		GoogleID:  "google-sub-1",
		Email:     "alice@example.com",
		Name:      "Alice",
		Role:      domain.RoleUser,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func googleClaims(u *domain.User) *auth.GoogleClaims {
	return &auth.GoogleClaims{
		Subject: u.GoogleID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
	}
}

// --- LoginWithGoogle ---

func TestLoginWithGoogle_ExistingUser(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()
	u := activeUser()

	verifier.On("Verify", ctx, "id-token").Return(googleClaims(u), nil)
	userRepo.On("GetByGoogleID", ctx, u.GoogleID).Return(u, nil)
	userRepo.On("UpdateLastLogin", ctx, u.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, tokens, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.NotNil(t, user.LastLoginAt)
	require.NotNil(t, tokens)

	claims, err := newTestTokenManager().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, domain.RoleUser, claims.Role)

	userRepo.AssertExpectations(t)
	verifier.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestLoginWithGoogle_InvalidToken(t *testing.T) {
	svc, userRepo, verifier, _ := newAuthFixture(t)
	ctx := context.Background()

	verifier.On("Verify", ctx, "bad").Return(nil, apperrors.InvalidToken())

	_, _, err := svc.LoginWithGoogle(ctx, "bad")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	userRepo.AssertNotCalled(t, "GetByGoogleID", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_AttachesGoogleIDToProvisionedUser(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	// Admin created this record by email; no Google identity yet.
	provisioned := activeUser()
	provisioned.GoogleID = ""
	provisioned.Name = ""
	provisioned.Picture = ""

	claims := &auth.GoogleClaims{
		Subject: "google-sub-1",
		Email:   provisioned.Email,
		Name:    "Alice From Google",
		Picture: "https://lh3.example/p.jpg",
	}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, provisioned.Email).Return(provisioned, nil)
	userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.GoogleID == "google-sub-1" && u.Name == "Alice From Google"
	})).Return(nil)
	userRepo.On("UpdateLastLogin", ctx, provisioned.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, tokens, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "google-sub-1", user.GoogleID)
	assert.NotNil(t, tokens)

	userRepo.AssertExpectations(t)
	events.AssertNotCalled(t, "PublishUserProvisioned", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_EmailBoundToOtherSubjectRejected(t *testing.T) {
	svc, userRepo, verifier, _ := newAuthFixture(t)
	ctx := context.Background()

	// The record already belongs to a different Google identity. The
	// googleId is immutable once set, so a caller presenting the same email
	// under a new subject must not take the account over.
	bound := activeUser()
	bound.GoogleID = "g-old"

	claims := &auth.GoogleClaims{Subject: "g-new", Email: bound.Email, Name: bound.Name}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "g-new").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, bound.Email).Return(bound, nil)

	_, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Equal(t, "g-old", bound.GoogleID)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_MergeRefreshesPicture(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	provisioned := activeUser()
	provisioned.GoogleID = ""
	provisioned.Picture = "https://old.example/pic.png"

	claims := &auth.GoogleClaims{
		Subject: "google-sub-1",
		Email:   provisioned.Email,
		Name:    provisioned.Name,
		Picture: "https://new.example/pic.png",
	}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, provisioned.Email).Return(provisioned, nil)
	userRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Picture == "https://new.example/pic.png"
	})).Return(nil)
	userRepo.On("UpdateLastLogin", ctx, provisioned.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example/pic.png", user.Picture)
	userRepo.AssertExpectations(t)
}

func TestLoginWithGoogle_UnknownEmailRejected(t *testing.T) {
	svc, userRepo, verifier, _ := newAuthFixture(t)
	ctx := context.Background()

	claims := &auth.GoogleClaims{Subject: "stranger-sub", Email: "stranger@example.com", Name: "Stranger"}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "stranger-sub").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, "stranger@example.com").Return(nil, apperrors.ErrNotFound)

	_, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorContains(t, err, "not provisioned")
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_SuperAdminBootstrap(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	claims := &auth.GoogleClaims{Subject: "root-sub", Email: superAdminEmail, Name: "Root"}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "root-sub").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, superAdminEmail).Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == superAdminEmail &&
			u.Role == domain.RoleAdmin &&
			u.Status == domain.StatusActive &&
			u.GoogleID == "root-sub" &&
			u.ID != ""
	})).Return(nil)
	userRepo.On("UpdateLastLogin", ctx, mock.Anything).Return(nil)
	events.On("PublishUserProvisioned", ctx, mock.Anything).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, tokens, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	accessClaims, err := newTestTokenManager().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, accessClaims.Role)

	userRepo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestLoginWithGoogle_BootstrapRaceFallsBackToLookup(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	existing := activeUser()
	existing.GoogleID = "root-sub"
	existing.Email = superAdminEmail
	existing.Role = domain.RoleAdmin

	claims := &auth.GoogleClaims{Subject: "root-sub", Email: superAdminEmail, Name: "Root"}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "root-sub").Return(nil, apperrors.ErrNotFound).Once()
	userRepo.On("GetByEmail", ctx, superAdminEmail).Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", ctx, mock.Anything).Return(apperrors.Conflict("user", "email", superAdminEmail))
	userRepo.On("GetByGoogleID", ctx, "root-sub").Return(existing, nil).Once()
	userRepo.On("UpdateLastLogin", ctx, existing.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	userRepo.AssertExpectations(t)
}

func TestLoginWithGoogle_InactiveUserRejected(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	u := activeUser()
	u.Status = domain.StatusInactive

	verifier.On("Verify", ctx, "id-token").Return(googleClaims(u), nil)
	userRepo.On("GetByGoogleID", ctx, u.GoogleID).Return(u, nil)

	_, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.ErrorContains(t, err, "disabled")
	userRepo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "PublishUserLoggedIn", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_InactiveProvisionedUserRejectedAfterMerge(t *testing.T) {
	svc, userRepo, verifier, _ := newAuthFixture(t)
	ctx := context.Background()

	provisioned := activeUser()
	provisioned.GoogleID = ""
	provisioned.Status = domain.StatusInactive

	claims := &auth.GoogleClaims{Subject: "google-sub-1", Email: provisioned.Email, Name: "Alice"}

	verifier.On("Verify", ctx, "id-token").Return(claims, nil)
	userRepo.On("GetByGoogleID", ctx, "google-sub-1").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", ctx, provisioned.Email).Return(provisioned, nil)
	userRepo.On("Update", ctx, mock.Anything).Return(nil)

	_, _, err := svc.LoginWithGoogle(ctx, "id-token")
	require.Error(t, err)
	assert.ErrorContains(t, err, "disabled")
	userRepo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_SuperAdminRolePromotion(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()

	// Super admin was demoted to a plain user at some point.
	u := activeUser()
	u.Email = superAdminEmail
	u.Role = domain.RoleUser

	verifier.On("Verify", ctx, "id-token").Return(googleClaims(u), nil)
	userRepo.On("GetByGoogleID", ctx, u.GoogleID).Return(u, nil)
	userRepo.On("Update", ctx, mock.MatchedBy(func(user *domain.User) bool {
		return user.Role == domain.RoleAdmin
	})).Return(nil)
	userRepo.On("UpdateLastLogin", ctx, u.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(nil)

	user, tokens, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	claims, err := newTestTokenManager().VerifyAccess(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	userRepo.AssertExpectations(t)
}

func TestLoginWithGoogle_EventFailureDoesNotBlockLogin(t *testing.T) {
	svc, userRepo, verifier, events := newAuthFixture(t)
	ctx := context.Background()
	u := activeUser()

	verifier.On("Verify", ctx, "id-token").Return(googleClaims(u), nil)
	userRepo.On("GetByGoogleID", ctx, u.GoogleID).Return(u, nil)
	userRepo.On("UpdateLastLogin", ctx, u.ID).Return(nil)
	events.On("PublishUserLoggedIn", ctx, mock.Anything).Return(assert.AnError)

	_, tokens, err := svc.LoginWithGoogle(ctx, "id-token")
	require.NoError(t, err)
	assert.NotNil(t, tokens)
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()
	u := activeUser()

	pair, err := svc.tokens.Issue(u)
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, u.ID).Return(u, nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEmpty(t, fresh.RefreshToken)
}

func TestRefresh_ClaimsRebuiltFromStoredRole(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	u := activeUser()
	pair, err := svc.tokens.Issue(u)
	require.NoError(t, err)

	// Role changed in the directory after the refresh token was issued.
	promoted := *u
	promoted.Role = domain.RoleAdmin
	userRepo.On("GetByID", ctx, u.ID).Return(&promoted, nil)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := newTestTokenManager().VerifyAccess(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestRefresh_DeletedUser(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()

	u := activeUser()
	pair, err := svc.tokens.Issue(u)
	require.NoError(t, err)

	userRepo.On("GetByID", ctx, u.ID).Return(nil, apperrors.ErrNotFound)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	u := activeUser()
	pair, err := svc.tokens.Issue(u)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

// --- Me ---

func TestMe_ReturnsPublicProjection(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)
	ctx := context.Background()
	u := activeUser()

	userRepo.On("GetByID", ctx, u.ID).Return(u, nil)

	pub, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, pub.Email)
	assert.Equal(t, u.Role, pub.Role)
}

func TestMe_NotFound(t *testing.T) {
	svc, userRepo, _, _ := newAuthFixture(t)

	userRepo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
