package response

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	FirstName string `validate:"required"`
	Email     string `validate:"required,email,max=255"`
	Password  string `validate:"required,max=72"`
}

func TestFieldErrors(t *testing.T) {
	err := validator.New().Struct(signup{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "This field is required.", fields["first_name"])
	assert.Equal(t, "Enter a valid email address.", fields["email"])
	assert.NotContains(t, fields, "password")
}

func TestFieldErrorsNonValidation(t *testing.T) {
	fields := FieldErrors(errors.New("unexpected EOF"))
	assert.Contains(t, fields, "non_field_errors")
}

func TestJSONName(t *testing.T) {
	assert.Equal(t, "first_name", jsonName("FirstName"))
	assert.Equal(t, "email", jsonName("Email"))
	assert.Equal(t, "recipient_id", jsonName("RecipientID"))
}
