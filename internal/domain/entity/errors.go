package entity

import (
	"errors"
)

var (
	// ErrNotFound is returned by writers when no articles row has the given id.
	ErrNotFound = errors.New("article not found")

	// ErrInvalidInput matches every *ValidationError with errors.Is.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError rejects a user-supplied value, such as the email given to
// sign in. Message reads as a sentence after Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
