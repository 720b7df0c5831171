package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

// SessionClaims are the JWT claims carried by both access and refresh tokens.
// The subject is the user's ID; email, google_id and role are snapshots taken
// at issue time.
type SessionClaims struct {
	Email    string `json:"email"`
	GoogleID string `json:"google_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies session tokens. Access and refresh tokens
// use separate HMAC secrets so neither can stand in for the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string

	// Overridable for expiry tests.
	now func() time.Time
}

// NewTokenManager creates a TokenManager with the given secrets and lifetimes.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, issuer string) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		now:           time.Now,
	}
}

// Issue creates an access/refresh token pair for the user. Claims are built
// from the user's current record, never copied from a previous token.
func (m *TokenManager) Issue(user *domain.User) (*domain.TokenPair, error) {
	access, err := m.sign(user, m.accessSecret, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(user, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *TokenManager) sign(user *domain.User, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := SessionClaims{
		Email:    user.Email,
		GoogleID: user.GoogleID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates an access token and returns its claims.
func (m *TokenManager) VerifyAccess(raw string) (*SessionClaims, error) {
	return m.verify(raw, m.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (m *TokenManager) VerifyRefresh(raw string) (*SessionClaims, error) {
	return m.verify(raw, m.refreshSecret)
}

// verify collapses every failure (malformed, expired, bad signature, wrong
// algorithm, wrong secret) to the same invalid-token error.
func (m *TokenManager) verify(raw string, secret []byte) (*SessionClaims, error) {
	if raw == "" {
		return nil, apperrors.InvalidToken()
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, apperrors.InvalidToken()
	}
	return claims, nil
}
