// Package services provides the rule-authoring service layer and its
// standardized error types.
package services

import (
	"errors"
	"fmt"
)

// Validation errors surfaced synchronously to the rule-authoring caller.
// An invalid rule is never persisted.
var (
	ErrRuleNil             = errors.New("rule cannot be nil")
	ErrRuleNameRequired    = errors.New("rule name is required")
	ErrActionsRequired     = errors.New("rule must have at least one action")
	ErrUnknownToStatus     = errors.New("trigger to_status is not a recognized deal status")
	ErrWildcardToStatus    = errors.New("trigger to_status cannot be the wildcard")
	ErrUnknownFromStatus   = errors.New("trigger from_status must be a recognized deal status or the wildcard")
	ErrInvalidAction       = errors.New("invalid action")
	ErrNoFieldsToUpdate    = errors.New("no fields to update")
	ErrInvalidActionFields = errors.New("action is missing required fields")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, message string, err error) *ServiceError {
	return &ServiceError{Op: op, Message: message, Err: err}
}

// IsValidationError checks if an error is a validation error that should
// block persisting the rule (HTTP 400 at the API boundary).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrRuleNil) ||
		errors.Is(err, ErrRuleNameRequired) ||
		errors.Is(err, ErrActionsRequired) ||
		errors.Is(err, ErrUnknownToStatus) ||
		errors.Is(err, ErrWildcardToStatus) ||
		errors.Is(err, ErrUnknownFromStatus) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrNoFieldsToUpdate) ||
		errors.Is(err, ErrInvalidActionFields)
}
