// Package eventbus provides the event transport between the deal-management
// subsystem and the workflow engine.
package eventbus

import (
	"context"

	"github.com/brokerops/dealflow/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	// Publish sends an event keyed by deal id so that partitioned transports
	// preserve per-deal ordering.
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
