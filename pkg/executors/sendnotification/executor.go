// Package sendnotification implements the send_notification action executor.
package sendnotification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

// Executor resolves the recipient set from the action's flags and delivers to
// each recipient independently. A failure for one recipient never blocks
// delivery to the other.
type Executor struct {
	notifier  protocol.Notifier
	directory protocol.DealDirectory
	timeout   time.Duration
}

type Option func(*Executor)

// WithTimeout bounds each external call (directory lookup and each delivery).
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

func NewExecutor(notifier protocol.Notifier, directory protocol.DealDirectory, opts ...Option) *Executor {
	executor := &Executor{
		notifier:  notifier,
		directory: directory,
		timeout:   defaultTimeout,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindSendNotification
}

func (e *Executor) Execute(ctx context.Context, action models.Action, event models.TransitionEvent, logger *slog.Logger) error {
	payload := action.SendNotification
	if payload == nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, errors.New("send_notification payload missing"))
	}

	// Both flags false is a valid no-op, not an error. Authoring tools may
	// warn, but the engine must not fail such rules at runtime.
	if !payload.NotifyClient && !payload.NotifyBroker {
		logger.InfoContext(ctx, "Notification action has no recipients, skipping", "deal_id", event.DealID)

		return nil
	}

	parties, err := e.lookupParties(ctx, event.DealID)
	if err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	var errs []error

	if payload.NotifyClient {
		errs = append(errs, e.deliver(ctx, logger, event.DealID, "client", parties.ClientID, payload))
	}

	if payload.NotifyBroker {
		errs = append(errs, e.deliver(ctx, logger, event.DealID, "broker", parties.BrokerID, payload))
	}

	if err := errors.Join(errs...); err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	return nil
}

func (e *Executor) lookupParties(ctx context.Context, dealID string) (protocol.DealParties, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	return e.directory.Parties(callCtx, dealID)
}

func (e *Executor) deliver(ctx context.Context, logger *slog.Logger, dealID, role, recipientID string, payload *models.SendNotificationAction) error {
	logger.InfoContext(ctx, "Delivering notification",
		"deal_id", dealID,
		"recipient_role", role,
		"recipient_id", recipientID,
		"title", payload.Title,
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.notifier.Notify(callCtx, protocol.Notification{
		RecipientID: recipientID,
		Title:       payload.Title,
		Message:     payload.Message,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Notification delivery failed",
			"deal_id", dealID,
			"recipient_role", role,
			"error", err,
		)

		return err
	}

	return nil
}
