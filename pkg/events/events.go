// Package events defines the bus envelope for deal lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/brokerops/dealflow/pkg/models"
)

type EventType string

// Topic carries every deal lifecycle event.
const Topic = "dealflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// DealStatusChangedEvent is emitted once by the deal-management subsystem
	// per committed status write.
	DealStatusChangedEvent EventType = "deal.status.changed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

// DealStatusChanged is the wire form of one deal-status transition.
type DealStatusChanged struct {
	BaseEvent

	DealID     string            `json:"deal_id"`
	FromStatus models.DealStatus `json:"from_status"`
	ToStatus   models.DealStatus `json:"to_status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func (d DealStatusChanged) GetType() EventType {
	return DealStatusChangedEvent
}

// TransitionEvent converts the envelope to the engine's event model.
func (d DealStatusChanged) TransitionEvent() models.TransitionEvent {
	return models.TransitionEvent{
		DealID:     d.DealID,
		FromStatus: d.FromStatus,
		ToStatus:   d.ToStatus,
		OccurredAt: d.OccurredAt,
	}
}
