package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupReq struct {
	Name  string `json:"name"  validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Note  string `json:"note"  validate:"max=5"`
}

func (r *signupReq) Trim() { TrimAll(&r.Name, &r.Email, &r.Phone, &r.Note) }

func (r *signupReq) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required": "Name is required",
		"name":          "Name must be between 2 and 100 characters",
	}
}

func fieldErrors(t *testing.T, err error) Errors {
	t.Helper()
	var verrs Errors
	require.True(t, errors.As(err, &verrs), "expected validation.Errors, got %v", err)
	return verrs
}

func TestValidate_Accepts(t *testing.T) {
	v := New()
	req := &signupReq{Name: "  Asha Rao ", Email: " user@example.com", Phone: "+91 98765 43210"}

	require.NoError(t, v.Validate(req))
	assert.Equal(t, "Asha Rao", req.Name, "fields are trimmed before the rules run")
	assert.Equal(t, "user@example.com", req.Email)
}

func TestValidate_CollectsEveryField(t *testing.T) {
	v := New()
	err := v.Validate(&signupReq{Name: "   ", Email: "not-an-email", Phone: "12345", Note: "far too long"})

	verrs := fieldErrors(t, err)
	assert.Equal(t, Errors{
		{Field: "name", Message: "Name is required"},
		{Field: "email", Message: "Please provide a valid email"},
		{Field: "phone", Message: "Please provide a valid phone number"},
		{Field: "note", Message: "note must be at most 5 characters"},
	}, verrs)
	assert.Contains(t, err.Error(), "email: Please provide a valid email")
}

func TestValidate_FieldFallbackMessage(t *testing.T) {
	v := New()
	err := v.Validate(&signupReq{Name: "A", Email: "user@example.com"})

	verrs := fieldErrors(t, err)
	require.Len(t, verrs, 1)
	assert.Equal(t, "Name must be between 2 and 100 characters", verrs[0].Message)
}

func TestValidate_OptionalPhone(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&signupReq{Name: "Asha", Email: "user@example.com", Phone: "   "}))
}

func TestNew_PhoneRuleRegistered(t *testing.T) {
	var v *Validator
	require.NotPanics(t, func() { v = New() })

	type callback struct {
		Phone string `json:"phone" validate:"required,phone"`
	}
	assert.NoError(t, v.Validate(&callback{Phone: "(022) 4012-3456"}))

	verrs := fieldErrors(t, v.Validate(&callback{Phone: "call me maybe"}))
	require.Len(t, verrs, 1)
	assert.Equal(t, FieldError{Field: "phone", Message: "Please provide a valid phone number"}, verrs[0])
}
