// Package protocol defines the contracts between the workflow engine and its
// external collaborators: the capabilities the engine calls out to, and the
// executor interface each action kind implements.
package protocol

import (
	"context"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
)

// Task is the payload handed to the external task store.
type Task struct {
	DealID      string
	Title       string
	Description string
	Priority    models.TaskPriority
	DueAt       time.Time
}

// TaskCreator creates follow-up tasks in the external task store.
type TaskCreator interface {
	CreateTask(ctx context.Context, task Task) error
}

// Notification is one delivery to one recipient.
type Notification struct {
	RecipientID string
	Title       string
	Message     string
}

// Notifier delivers notifications best-effort. The engine never retries.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// DealFieldWriter writes a value to a named field on a deal record. The
// writer owns the recognized field set and returns ErrInvalidField for names
// outside it.
type DealFieldWriter interface {
	UpdateField(ctx context.Context, dealID, field, value string) error
}

// BrokerAssigner re-assigns a client to a broker. Returns ErrNotFound when
// the broker id does not resolve to an active broker.
type BrokerAssigner interface {
	AssignBroker(ctx context.Context, clientID, brokerID string) error
}

// DealParties are the identities attached to a deal.
type DealParties struct {
	ClientID string
	BrokerID string
}

// DealDirectory resolves the client and broker identities owning a deal.
type DealDirectory interface {
	Parties(ctx context.Context, dealID string) (DealParties, error)
}

// ActivityLogger appends execution records to the external activity store.
type ActivityLogger interface {
	Record(ctx context.Context, record models.ExecutionRecord) error
}
