package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := NotFound("user", "u-1")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "u-1")

	wrapped := Internal(fmt.Errorf("boom"))
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAppError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, NotFound("user", "u-1"), ErrNotFound)
	assert.ErrorIs(t, Conflict("category", "name", "Drinks"), ErrConflict)
	assert.ErrorIs(t, InvalidToken(), ErrInvalidToken)
	assert.ErrorIs(t, UnauthorizedAccount("account disabled"), ErrUnauthorized)
	assert.ErrorIs(t, Forbidden("insufficient permissions"), ErrForbidden)
}

func TestInvalidToken_UniformMessage(t *testing.T) {
	// The outward message must not vary with the failure cause.
	a := InvalidToken()
	b := InvalidToken()
	require.Equal(t, a.Message, b.Message)
	assert.Equal(t, "invalid or expired token", a.Message)
	assert.Equal(t, http.StatusUnauthorized, a.Status)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("order", "o-1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("ctx: %w", Conflict("role", "name", "admin")), http.StatusConflict},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"sentinel unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"sentinel forbidden", ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("weird"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
