package validation

import (
	"time"
)

// ValidationSeverity represents the severity level of a validation issue
type ValidationSeverity int

const (
	ValidationSeverityError ValidationSeverity = iota
	ValidationSeverityWarning
)

// ValidationErrorCode represents specific validation error types
type ValidationErrorCode int

const (
	ErrorNameOrPhoneRequired ValidationErrorCode = iota
	ErrorNameTooLong
	ErrorPhoneTooLong
	ErrorPhoneWithoutDigits
	ErrorDuplicatePhone
)

// ValidationError represents a specific validation error
type ValidationError struct {
	Field    string
	Code     ValidationErrorCode
	Message  string
	Severity ValidationSeverity
}

// ValidationResult represents the result of contact validation
type ValidationResult struct {
	IsValid     bool
	ValidatedAt time.Time
	Errors      []ValidationError
	Warnings    []ValidationError
}

// FieldError returns the first error message for field, or "".
func (r ValidationResult) FieldError(field string) string {
	for _, e := range r.Errors {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}
