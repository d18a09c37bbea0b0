package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"exam-bank/internal/domain"
	"exam-bank/internal/dto"
)

// MaxAnswerLength bounds free-form answer payloads.
const MaxAnswerLength = 2000

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateID validates a ULID path parameter.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !isValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}

	return errors
}

// ValidateBankID validates a bank identifier parameter.
func (v *Validator) ValidateBankID(bankID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(bankID) == "" {
		errors = append(errors, domain.NewMissingFieldError("bank_id"))
		return errors
	}
	if !isValidBankID(bankID) {
		errors = append(errors, domain.NewInvalidFormatError("bank_id", bankID))
	}

	return errors
}

// ValidateAnswerInput validates the request-level shape of a submitted
// answer. Grading semantics live in the domain.
func (v *Validator) ValidateAnswerInput(answer dto.AnswerInput) domain.ValidationErrors {
	var errors domain.ValidationErrors

	kind, err := domain.ParseKind(answer.Kind)
	if err != nil {
		errors = append(errors, domain.NewInvalidFormatError("answer.kind", answer.Kind))
		return errors
	}

	if kind == domain.KindChoice {
		if len(answer.Selected) == 0 {
			errors = append(errors, domain.NewMissingFieldError("answer.selected"))
		}
		for _, key := range answer.Selected {
			if utf8.RuneCountInString(key) != 1 {
				errors = append(errors, domain.NewInvalidFormatError("answer.selected", key))
				break
			}
		}
		return errors
	}

	if len(answer.Value) > MaxAnswerLength {
		errors = append(errors, domain.NewOutOfRangeError("answer.value", len(answer.Value), 0, MaxAnswerLength))
	}

	return errors
}

// Helper functions for validation

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}

// isValidBankID checks if the bank identifier format is valid
func isValidBankID(s string) bool {
	// Allow alphanumeric, hyphens, and underscores, 1-50 characters
	if len(s) == 0 || len(s) > 50 {
		return false
	}
	validBankID := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	return validBankID.MatchString(s)
}
