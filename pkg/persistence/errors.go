// Standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleNotFound indicates no rule exists for the given identifier.
	ErrRuleNotFound = errors.New("workflow rule not found")

	// ErrRuleAlreadyExists indicates a rule with the same identifier already
	// exists.
	ErrRuleAlreadyExists = errors.New("workflow rule already exists")
)

// RuleError wraps rule storage errors with operation context.
type RuleError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save")
	RuleID string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s operation failed for rule %s: %v", e.Op, e.RuleID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func (e *RuleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRuleError creates a new rule error with context.
func NewRuleError(op, ruleID string, err error) *RuleError {
	return &RuleError{Op: op, RuleID: ruleID, Err: err}
}

// IsRuleNotFound checks if an error indicates a rule was not found.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}
