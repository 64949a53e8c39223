package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation classifies every input rejection; match it with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an operation targets an id absent from its list.
	ErrNotFound = errors.New("not found")
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyTitle          = errors.New("empty title")
	ErrInvalidType         = errors.New("invalid type")
	ErrInvalidPurchaseType = errors.New("invalid purchase type")
	ErrInvalidInstallments = errors.New("installments must be between 2 and 24")
	ErrInvalidDigits       = errors.New("last four digits must be exactly 4 numbers")
	ErrInvalidDueDay       = errors.New("due day must be between 1 and 31")
	ErrLimitOnDebit        = errors.New("limit is only allowed on credit cards")
	ErrTargetDateNotFuture = errors.New("target date must be in the future")
	ErrInvalidRule         = errors.New("distribution must add up to 100")
	ErrUnknownCard         = errors.New("card does not exist")
)

// ValidationError reports which field of a mutator input was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes both the ErrValidation class and the specific cause.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// Invalid builds a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
