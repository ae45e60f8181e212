package validator

import (
	"errors"
	"strings"
)

// ErrValidation is the sentinel matched by errors.Is for every validation failure.
var ErrValidation = errors.New("validation failed")

// ValidationError describes a single rule violation.
type ValidationError struct {
	// TranslationValues holds placeholder values for TranslationKey.
	TranslationValues map[string]any
	// Field is the parameter name that failed.
	Field string
	// Rule is the rule name that failed (e.g. "min", "email").
	Rule string
	// Constraint is the raw rule value, empty for value-less rules.
	Constraint string
	// Message is the human-readable message.
	Message string
	// TranslationKey identifies the message for i18n (e.g. "validation.min").
	TranslationKey string
	// Missing is set when no source supplied a value for a required parameter.
	Missing bool
}

func (e ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrValidation.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidationErrors is a list of validation failures.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Is makes ValidationErrors match ErrValidation.
func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether there is at least one error for field.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for field.
func (ve ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, e := range ve {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Translate rewrites messages in place using fn.
// Errors without a TranslationKey keep their message. A nil fn is a no-op.
func (ve ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range ve {
		if ve[i].TranslationKey == "" {
			continue
		}
		ve[i].Message = fn(ve[i].TranslationKey, ve[i].TranslationValues)
	}
}

// IsValidationError reports whether err (or anything it wraps) is a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// AsValidationError extracts the first ValidationError from err.
// Both ValidationError and *ValidationError are recognized.
func AsValidationError(err error) (ValidationError, bool) {
	var single ValidationError
	if errors.As(err, &single) {
		return single, true
	}
	var ptr *ValidationError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	var many ValidationErrors
	if errors.As(err, &many) && len(many) > 0 {
		return many[0], true
	}
	return ValidationError{}, false
}

// ExtractValidationErrors returns all validation failures carried by err, or nil.
func ExtractValidationErrors(err error) ValidationErrors {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	if single, ok := AsValidationError(err); ok {
		return ValidationErrors{single}
	}
	return nil
}

// Missing builds the error reported when no value source supplied field.
func Missing(field string) ValidationError {
	return ValidationError{
		Field:             field,
		Rule:              "required",
		Message:           "parameter '" + field + "' is required",
		TranslationKey:    "validation.missing",
		TranslationValues: map[string]any{"field": field},
		Missing:           true,
	}
}
