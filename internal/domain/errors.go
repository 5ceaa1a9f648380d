package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors of the store layer. Handlers map these onto HTTP statuses;
// the stores themselves never know about transports.
var (
	// ErrNotFound means the requested ID does not exist in its owning store.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated means the presented session token is missing,
	// expired, or does not match the user's session slot.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUnavailable means the single owning instance of a routed call
	// could not be reached. Fan-out calls never return it; they degrade
	// to a partial result instead.
	ErrUnavailable = errors.New("store unavailable")
)

// ValidationError describes rejected input of a mutating operation.
// It is surfaced to the caller and never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	return "invalid input: " + strings.Join(e.Fields, ", ")
}

// Validationf builds a single-field ValidationError.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Fields: []string{fmt.Sprintf(format, args...)}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateDraft checks a submit draft. Beyond the struct tags it also pins
// the category to the known set, which a tag cannot express cleanly.
func ValidateDraft(d *Draft) error {
	if err := validate.Struct(d); err != nil {
		return asValidationError(err)
	}
	if !ValidCategory(d.Category) {
		return Validationf("category %q is not a known category", d.Category)
	}
	return nil
}

// ValidateAssertion checks a login assertion.
func ValidateAssertion(a *Assertion) error {
	if err := validate.Struct(a); err != nil {
		return asValidationError(err)
	}
	return nil
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}
