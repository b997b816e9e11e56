// Package updatefield implements the update_field action executor.
package updatefield

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

// Executor writes a value to a named deal field via the deal store's generic
// field-update capability. The recognized field set is owned by the deal
// store, which returns ErrInvalidField for names outside it.
type Executor struct {
	deals   protocol.DealFieldWriter
	timeout time.Duration
}

type Option func(*Executor)

// WithTimeout bounds the deal store call.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

func NewExecutor(deals protocol.DealFieldWriter, opts ...Option) *Executor {
	executor := &Executor{
		deals:   deals,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindUpdateField
}

func (e *Executor) Execute(ctx context.Context, action models.Action, event models.TransitionEvent, logger *slog.Logger) error {
	payload := action.UpdateField
	if payload == nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, errors.New("update_field payload missing"))
	}

	logger.InfoContext(ctx, "Updating deal field",
		"deal_id", event.DealID,
		"field", payload.Field,
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.deals.UpdateField(callCtx, event.DealID, payload.Field, payload.Value)
	if err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	return nil
}
