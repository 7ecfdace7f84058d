// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/trustkit/internal/errors"
)

// reservedKeyNames are record keys written exclusively by the substrate
// itself. API callers may not use them.
var reservedKeyNames = []string{
	"access_logs",
	"last_rotation",
	"session_token",
	"session_start",
	"suspicious_flag",
}

// reservedKeyPrefixes are prefixes of internally managed record keys.
var reservedKeyPrefixes = []string{
	"salt_",
	"__",
}

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// RecordKey validates record keys supplied by API callers: printable, at most
// 256 characters, and outside the reserved key space.
var RecordKey = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_record_key_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) > 256 {
		return validation.NewError("validation_record_key_length", "must be at most 256 characters")
	}
	if hasControlOrSpace(s) {
		return validation.NewError("validation_record_key_charset", "must not contain whitespace or control characters")
	}
	for _, reserved := range reservedKeyNames {
		if s == reserved {
			return validation.NewError("validation_record_key_reserved", "key is reserved")
		}
	}
	for _, prefix := range reservedKeyPrefixes {
		if strings.HasPrefix(s, prefix) {
			return validation.NewError("validation_record_key_reserved", "key prefix is reserved")
		}
	}
	return nil
})

// UserID validates user identifiers: printable and at most 128 characters.
var UserID = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_user_id_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if len(s) > 128 {
		return validation.NewError("validation_user_id_length", "must be at most 128 characters")
	}
	if hasControlOrSpace(s) {
		return validation.NewError("validation_user_id_charset", "must not contain whitespace or control characters")
	}
	return nil
})

// hasControlOrSpace checks if string contains whitespace or control characters
func hasControlOrSpace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return true
		}
	}
	return false
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
