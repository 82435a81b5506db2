// Package validation gates the contact form before anything is sent to the
// server.
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"rhystmorgan/phonebook/internal/models"
)

const (
	MaxNameLength  = 50
	MaxPhoneLength = 32
)

// Input is what the contact form submits. ID is empty for a new contact.
type Input struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
}

// CanSubmit is the save gate: a first name or a phone number is required.
func CanSubmit(firstName, phone string) bool {
	return strings.TrimSpace(firstName) != "" || strings.TrimSpace(phone) != ""
}

// ValidateContact checks in against the gate and length limits, and warns
// about phones already used by another contact in existing.
func ValidateContact(in Input, existing []models.Contact) ValidationResult {
	result := ValidationResult{
		IsValid:     true,
		ValidatedAt: time.Now(),
	}

	fail := func(field string, code ValidationErrorCode, msg string) {
		result.Errors = append(result.Errors, ValidationError{
			Field:    field,
			Code:     code,
			Message:  msg,
			Severity: ValidationSeverityError,
		})
		result.IsValid = false
	}
	warn := func(field string, code ValidationErrorCode, msg string) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:    field,
			Code:     code,
			Message:  msg,
			Severity: ValidationSeverityWarning,
		})
	}

	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	phone := strings.TrimSpace(in.Phone)

	if !CanSubmit(first, phone) {
		fail("first_name", ErrorNameOrPhoneRequired, "First name or phone is required")
	}

	if utf8.RuneCountInString(first) > MaxNameLength {
		fail("first_name", ErrorNameTooLong, fmt.Sprintf("First name too long (max %d characters)", MaxNameLength))
	}
	if utf8.RuneCountInString(last) > MaxNameLength {
		fail("last_name", ErrorNameTooLong, fmt.Sprintf("Last name too long (max %d characters)", MaxNameLength))
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		fail("phone", ErrorPhoneTooLong, fmt.Sprintf("Phone too long (max %d characters)", MaxPhoneLength))
	}

	if phone != "" {
		key := models.NormalizePhone(phone)
		if key == "" {
			warn("phone", ErrorPhoneWithoutDigits, "Phone has no digits and will never match the address book")
		} else {
			for _, c := range existing {
				if c.ID != in.ID && c.PhoneKey() == key {
					warn("phone", ErrorDuplicatePhone, fmt.Sprintf("Phone already used by %s", c.DisplayName()))
					break
				}
			}
		}
	}

	return result
}
