package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

func newTestManager() *TokenManager {
	return NewTokenManager(
		strings.Repeat("a", 32),
		strings.Repeat("b", 32),
		time.Hour,
		168*time.Hour,
		"order-system-api",
	)
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "usr-1",
		GoogleID: "google-sub-1",
		Email:    "alice@example.com",
		Name:     "Alice",
		Role:     domain.RoleAdmin,
		Status:   domain.StatusActive,
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager()

	pair, err := m.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := m.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", access.Subject)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.Equal(t, "google-sub-1", access.GoogleID)
	assert.Equal(t, domain.RoleAdmin, access.Role)

	refresh, err := m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", refresh.Subject)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	m := newTestManager()
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = m.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager()
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// Refresh token lives for 7 days and is still valid.
	_, err = m.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(169 * time.Hour) }
	_, err = m.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := newTestManager()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.VerifyAccess(raw)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "input %q", raw)
	}
}

func TestVerifyRejectsWrongAlgorithm(t *testing.T) {
	m := newTestManager()

	// alg=none tokens must fail even with a matching payload shape.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "usr-1", "email": "alice@example.com", "role": domain.RoleAdmin,
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.VerifyAccess(raw)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestUniformErrorMessage(t *testing.T) {
	m := newTestManager()

	_, errMalformed := m.VerifyAccess("garbage")

	expired := newTestManager()
	pair, err := expired.Issue(testUser())
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, errExpired := expired.VerifyAccess(pair.AccessToken)

	assert.Equal(t, errMalformed.Error(), errExpired.Error())
}
