package auth

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
)

// ValidationError reports form fields rejected before any request is sent.
// Fields is keyed by the JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrInvalidArgs
}

// Validator checks the login form before it is sent. Registration and
// password changes go to the backend unchecked.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(JSONFieldName)
	return &Validator{validate: v}
}

// ValidateCredentials checks the login form.
func (v *Validator) ValidateCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return ErrInvalidCredentialsForm
	}
	return v.check(creds)
}

func (v *Validator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrapf(errors.ErrInvalidArgs, "%v", err)
	}
	ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		ve.Fields[fe.Field()] = Describe(fe)
	}
	return ve
}

// JSONFieldName reports a struct field under its JSON name.
func JSONFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Describe renders a single field failure as a short sentence.
func Describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "nefield":
		return "must differ from the current value"
	case "datetime":
		return fmt.Sprintf("must be a date formatted as %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q check", fe.Tag())
	}
}

// ConfirmPassword reports whether a password and its confirmation match. Forms
// call it before Register; the service itself does not.
func ConfirmPassword(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordsDontMatch
	}
	return nil
}
