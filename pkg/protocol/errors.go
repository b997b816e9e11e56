// Execution-time error taxonomy shared by executors and the engine.
package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/brokerops/dealflow/pkg/models"
)

// Standard execution error classes. Capability implementations return these
// (or wrap them); executors classify anything else as a dependency failure.
var (
	// ErrDependency indicates an external capability is unreachable or
	// returned an unexpected failure.
	ErrDependency = errors.New("external dependency failed")

	// ErrNotFound indicates a referenced entity (broker, deal) does not exist.
	ErrNotFound = errors.New("referenced entity not found")

	// ErrInvalidField indicates a field name outside the deal store's
	// recognized set.
	ErrInvalidField = errors.New("unrecognized deal field")

	// ErrTimeout indicates an external call exceeded its bound.
	ErrTimeout = errors.New("external call timed out")
)

// ExecutionError wraps an action failure with the context the audit trail
// needs.
type ExecutionError struct {
	Kind   models.ActionKind
	DealID string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s action failed for deal %s: %v", e.Kind, e.DealID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExecutionError classifies err into the execution taxonomy and wraps it.
// Context deadline expiry becomes ErrTimeout; recognized classes pass
// through; everything else is a dependency failure.
func NewExecutionError(kind models.ActionKind, dealID string, err error) *ExecutionError {
	return &ExecutionError{Kind: kind, DealID: dealID, Err: Classify(err)}
}

// Classify maps an arbitrary capability error onto the execution taxonomy.
func Classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, ErrTimeout),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidField),
		errors.Is(err, ErrDependency):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrDependency, err)
	}
}

// IsTimeout reports whether err is a timeout failure.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNotFound reports whether err is a missing-entity failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidField reports whether err is an unrecognized-field failure.
func IsInvalidField(err error) bool {
	return errors.Is(err, ErrInvalidField)
}
