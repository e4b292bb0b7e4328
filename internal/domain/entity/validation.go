package entity

import (
	"fmt"
	"net/mail"
	"strings"
)

// maxEmailLength follows the RFC 5321 path limit.
const maxEmailLength = 254

// ValidateEmail checks that an email address is present and well-formed.
// Returns a ValidationError describing the first problem found.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if len(email) > maxEmailLength {
		return &ValidationError{
			Field:   "email",
			Message: fmt.Sprintf("must not exceed %d characters", maxEmailLength),
		}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "is invalid"}
	}
	return nil
}
