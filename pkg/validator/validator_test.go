package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Name  string `validate:"required,min=2,max=10"`
	Role  string `validate:"omitempty,oneof=user admin"`
}

func TestValidate_OK(t *testing.T) {
	err := Validate(sampleRequest{Email: "a@x.com", Name: "Ann", Role: "admin"})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(sampleRequest{Email: "nope", Name: "A", Role: "root"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "must be a valid email address", fields["Email"])
	assert.Equal(t, "must be at least 2 characters", fields["Name"])
	assert.Equal(t, "must be one of: user admin", fields["Role"])
	assert.Contains(t, valErr.Error(), "field 'Email'")
}

func TestValidate_Required(t *testing.T) {
	err := Validate(sampleRequest{})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "is required", valErr.Fields()["Email"])
}
