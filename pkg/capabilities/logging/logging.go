// Package logging provides capability implementations that only log their
// side effects. They back the engine binary's dry-run mode and double as
// stand-ins until the real collaborators are wired in a deployment.
package logging

import (
	"context"
	"log/slog"

	"github.com/brokerops/dealflow/pkg/protocol"
)

// Capabilities bundles a full logging-only collaborator set.
type Capabilities struct {
	Tasks     protocol.TaskCreator
	Notifier  protocol.Notifier
	Deals     protocol.DealFieldWriter
	Brokers   protocol.BrokerAssigner
	Directory protocol.DealDirectory
}

func NewCapabilities(logger *slog.Logger) Capabilities {
	logger = logger.With("module", "capabilities")

	return Capabilities{
		Tasks:     &taskCreator{logger: logger},
		Notifier:  &notifier{logger: logger},
		Deals:     &dealFieldWriter{logger: logger},
		Brokers:   &brokerAssigner{logger: logger},
		Directory: &dealDirectory{},
	}
}

type taskCreator struct {
	logger *slog.Logger
}

func (t *taskCreator) CreateTask(ctx context.Context, task protocol.Task) error {
	t.logger.InfoContext(ctx, "dry-run: create task",
		"deal_id", task.DealID,
		"title", task.Title,
		"priority", task.Priority,
		"due_at", task.DueAt,
	)

	return nil
}

type notifier struct {
	logger *slog.Logger
}

func (n *notifier) Notify(ctx context.Context, notification protocol.Notification) error {
	n.logger.InfoContext(ctx, "dry-run: deliver notification",
		"recipient_id", notification.RecipientID,
		"title", notification.Title,
	)

	return nil
}

type dealFieldWriter struct {
	logger *slog.Logger
}

func (d *dealFieldWriter) UpdateField(ctx context.Context, dealID, field, value string) error {
	d.logger.InfoContext(ctx, "dry-run: update deal field",
		"deal_id", dealID,
		"field", field,
		"value", value,
	)

	return nil
}

type brokerAssigner struct {
	logger *slog.Logger
}

func (b *brokerAssigner) AssignBroker(ctx context.Context, clientID, brokerID string) error {
	b.logger.InfoContext(ctx, "dry-run: assign broker",
		"client_id", clientID,
		"broker_id", brokerID,
	)

	return nil
}

type dealDirectory struct{}

// Parties echoes synthetic identities derived from the deal id so dry runs
// exercise the full notification path.
func (d *dealDirectory) Parties(_ context.Context, dealID string) (protocol.DealParties, error) {
	return protocol.DealParties{
		ClientID: "client-" + dealID,
		BrokerID: "broker-" + dealID,
	}, nil
}
