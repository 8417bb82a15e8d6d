// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Ledger errors.
	ErrNotFound        = errors.New("not found")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNoLinkedAccount = errors.New("no linked bank account")

	// Import errors.
	ErrMappingIncomplete = errors.New("column mapping incomplete")
	ErrEmptyFile         = errors.New("file contains no data rows")
	ErrBadTransition     = errors.New("invalid import step transition")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
