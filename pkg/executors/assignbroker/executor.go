// Package assignbroker implements the assign_broker action executor.
package assignbroker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

// Executor re-assigns the deal's owning client to the broker named by the
// action. The broker store returns ErrNotFound for ids that do not resolve to
// an active broker.
type Executor struct {
	brokers   protocol.BrokerAssigner
	directory protocol.DealDirectory
	timeout   time.Duration
}

type Option func(*Executor)

// WithTimeout bounds each external call.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

func NewExecutor(brokers protocol.BrokerAssigner, directory protocol.DealDirectory, opts ...Option) *Executor {
	executor := &Executor{
		brokers:   brokers,
		directory: directory,
		timeout:   defaultTimeout,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindAssignBroker
}

func (e *Executor) Execute(ctx context.Context, action models.Action, event models.TransitionEvent, logger *slog.Logger) error {
	payload := action.AssignBroker
	if payload == nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, errors.New("assign_broker payload missing"))
	}

	lookupCtx, cancelLookup := context.WithTimeout(ctx, e.timeout)
	defer cancelLookup()

	parties, err := e.directory.Parties(lookupCtx, event.DealID)
	if err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	logger.InfoContext(ctx, "Assigning broker",
		"deal_id", event.DealID,
		"client_id", parties.ClientID,
		"broker_id", payload.BrokerID,
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err = e.brokers.AssignBroker(callCtx, parties.ClientID, payload.BrokerID)
	if err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	return nil
}
