package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/auth"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

// User-facing messages for accounts a verified Google identity cannot use.
const (
	msgNotProvisioned = "account not provisioned, contact an administrator"
	msgDisabled       = "account is disabled"
)

// AuthEventPublisher publishes auth-related domain events.
type AuthEventPublisher interface {
	PublishUserProvisioned(ctx context.Context, user *domain.User) error
	PublishUserLoggedIn(ctx context.Context, user *domain.User) error
}

// AuthService implements Google login orchestration and session management.
type AuthService struct {
	userRepo        repository.UserRepository
	verifier        auth.IDTokenVerifier
	tokens          *auth.TokenManager
	events          AuthEventPublisher
	superAdminEmail string
	logger          *slog.Logger

	// Serializes concurrent first logins for the same email so one of two
	// racing requests creates the record and the other merges into it.
	emailLocks sync.Map
}

// NewAuthService creates the auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	verifier auth.IDTokenVerifier,
	tokens *auth.TokenManager,
	events AuthEventPublisher,
	superAdminEmail string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		verifier:        verifier,
		tokens:          tokens,
		events:          events,
		superAdminEmail: superAdminEmail,
		logger:          logger,
	}
}

// LoginWithGoogle verifies a Google ID token and resolves it to a directory
// user, issuing a session token pair.
//
// Resolution order for a verified identity:
//  1. A user holding the Google subject id logs straight in.
//  2. A user with the same email but no Google id (pre-provisioned by an
//     admin) has the Google id attached to their record.
//  3. An unknown email matching the configured super admin bootstraps a new
//     active admin account. Any other unknown email is rejected; accounts
//     are invite only.
//
// Inactive accounts are rejected after resolution, and a super admin whose
// role has drifted is promoted back to admin before tokens are issued.
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*domain.User, *domain.TokenPair, error) {
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.lockEmail(claims.Email)
	defer unlock()

	user, created, err := s.resolveUser(ctx, claims)
	if err != nil {
		return nil, nil, err
	}

	if !user.IsActive() {
		return nil, nil, apperrors.UnauthorizedAccount(msgDisabled)
	}

	// A super admin demoted by accident regains admin on next login.
	if s.superAdminEmail != "" && user.Email == s.superAdminEmail && user.Role != domain.RoleAdmin {
		user.Role = domain.RoleAdmin
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, nil, fmt.Errorf("promote super admin: %w", err)
		}
		s.logger.WarnContext(ctx, "super admin role restored",
			slog.String("user_id", user.ID),
		)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, nil, fmt.Errorf("update last login: %w", err)
	}
	now := time.Now().UTC()
	user.LastLoginAt = &now

	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	if created {
		if err := s.events.PublishUserProvisioned(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.provisioned event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := s.events.PublishUserLoggedIn(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.logged_in event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
		slog.Bool("created", created),
	)

	return user, tokens, nil
}

// resolveUser maps verified Google claims to a directory record, creating or
// merging as needed. The returned bool reports whether a record was created.
func (s *AuthService) resolveUser(ctx context.Context, claims *auth.GoogleClaims) (*domain.User, bool, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, claims.Subject)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup user by google id: %w", err)
	}

	user, err = s.userRepo.GetByEmail(ctx, claims.Email)
	if err == nil {
		// The googleId is immutable once set. A record found by email that
		// already carries a different Google subject must not be rebound to
		// the caller's identity.
		if user.GoogleID != "" {
			s.logger.WarnContext(ctx, "login rejected: email bound to another google subject",
				slog.String("user_id", user.ID),
			)
			return nil, false, apperrors.UnauthorizedAccount(msgNotProvisioned)
		}

		// Pre-provisioned record: attach the Google identity on first login
		// and refresh the profile picture from the provider claims.
		user.GoogleID = claims.Subject
		if user.Name == "" {
			user.Name = claims.Name
		}
		if claims.Picture != "" {
			user.Picture = claims.Picture
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, fmt.Errorf("attach google id: %w", err)
		}
		return user, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup user by email: %w", err)
	}

	if s.superAdminEmail == "" || claims.Email != s.superAdminEmail {
		return nil, false, apperrors.UnauthorizedAccount(msgNotProvisioned)
	}

	// First super admin login bootstraps the directory.
	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.New().String(),
		GoogleID:  claims.Subject,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
		Role:      domain.RoleAdmin,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// A racing request may have created the record between lookups.
		if errors.Is(err, apperrors.ErrConflict) {
			existing, lookupErr := s.userRepo.GetByGoogleID(ctx, claims.Subject)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("bootstrap super admin: %w", err)
	}

	s.logger.InfoContext(ctx, "super admin bootstrapped",
		slog.String("user_id", user.ID),
	)

	return user, true, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. Claims in
// the new pair are rebuilt from the stored record, so a role change takes
// effect on the next refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidToken()
		}
		return nil, fmt.Errorf("lookup user for refresh: %w", err)
	}

	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return tokens, nil
}

// Me returns the public projection of the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	pub := user.Public()
	return &pub, nil
}

// lockEmail acquires the per-email mutex and returns its unlock func.
func (s *AuthService) lockEmail(email string) func() {
	mu, _ := s.emailLocks.LoadOrStore(email, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
