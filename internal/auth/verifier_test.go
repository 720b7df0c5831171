package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
)

func TestNewGoogleVerifierRequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier(context.Background(), "", "http://localhost/cb", nil)
	assert.ErrorContains(t, err, "client id")
}

func TestVerifyEmptyToken(t *testing.T) {
	v := &GoogleVerifier{}
	_, err := v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifyUnconfiguredRejectsWellFormedToken(t *testing.T) {
	// A zero-value verifier backs deployments without a Google client ID.
	// It must reject any token, including a structurally valid JWT, instead
	// of dereferencing the missing inner verifier.
	v := &GoogleVerifier{}
	raw := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiJnLTEyMyIsImVtYWlsIjoiYUBiLmMifQ." +
		"c2lnbmF0dXJl"
	claims, err := v.Verify(context.Background(), raw)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
