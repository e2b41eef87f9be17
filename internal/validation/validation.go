// Package validation runs declarative field rules (go-playground/validator
// struct tags) and reports every failing field with a human message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/legalnest/backend/internal/util"
)

// FieldError is one failed rule, reported by JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors collects all failing fields of one request.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Trimmer is implemented by requests that normalize whitespace before the rules run.
type Trimmer interface {
	Trim()
}

// Messenger is implemented by requests that supply their own messages, keyed by
// "field.tag" (one rule) or "field" (any rule of the field).
type Messenger interface {
	ValidationMessages() map[string]string
}

// Validator implements echo.Validator.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// digits, + - space ( ) and a minimum number of digits
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return util.ValidPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return &Validator{v: v}
}

// Validate trims i, runs every field's rules and returns Errors listing each
// failing field (first failing rule per field), or nil.
func (v *Validator) Validate(i interface{}) error {
	if t, ok := i.(Trimmer); ok {
		t.Trim()
	}

	err := v.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var msgs map[string]string
	if m, ok := i.(Messenger); ok {
		msgs = m.ValidationMessages()
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(msgs, fe)})
	}
	return out
}

func message(msgs map[string]string, fe validator.FieldError) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email"
	case "phone":
		return "Please provide a valid phone number"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// TrimAll trims every pointed-to string.
func TrimAll(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
