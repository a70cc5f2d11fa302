package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staffForm struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Role  string  `json:"role" validate:"required,role"`
	Alt   *string `json:"alt_role" validate:"omitempty,role"`
}

func TestRoleValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	assert.NoError(t, v.Struct(staffForm{Name: "Dr. Who", Email: "who@naturecure.com", Role: "doctor"}))

	bad := "janitor"
	err := v.Struct(staffForm{Email: "nope", Role: "nurse", Alt: &bad})
	require.Error(t, err)

	fields := map[string]string{}
	for _, fe := range Describe(err) {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "is required", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be a known role", fields["role"])
	assert.Equal(t, "must be a known role", fields["alt_role"])
}

func TestDescribeIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, Describe(assert.AnError))
}
