package models

import (
	"errors"
	"fmt"
)

// ActionKind discriminates the Action union.
type ActionKind string

const (
	ActionKindCreateTask       ActionKind = "create_task"
	ActionKindSendNotification ActionKind = "send_notification"
	ActionKindUpdateField      ActionKind = "update_field"
	ActionKindAssignBroker     ActionKind = "assign_broker"
)

// TaskPriority is the urgency of a task created by a workflow action.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Action is a tagged union: Kind selects which payload pointer is set, and
// exactly one payload must be set. Payloads carry typed, per-kind parameters
// so that rule validation is exhaustive rather than a bag of loose keys.
type Action struct {
	Kind             ActionKind              `json:"kind"                        validate:"required"`
	CreateTask       *CreateTaskAction       `json:"create_task,omitempty"`
	SendNotification *SendNotificationAction `json:"send_notification,omitempty"`
	UpdateField      *UpdateFieldAction      `json:"update_field,omitempty"`
	AssignBroker     *AssignBrokerAction     `json:"assign_broker,omitempty"`
}

// CreateTaskAction creates a follow-up task on the deal. DueInDays of zero
// means the task is due immediately.
type CreateTaskAction struct {
	Title       string       `json:"title"       validate:"required"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"    validate:"required,oneof=low medium high"`
	DueInDays   int          `json:"due_in_days" validate:"min=0"`
}

// SendNotificationAction notifies the deal's client, broker, or both.
// Both flags false is a valid no-op; authoring tools may warn but the engine
// does not reject it.
type SendNotificationAction struct {
	Title        string `json:"title"         validate:"required"`
	Message      string `json:"message"       validate:"required"`
	NotifyClient bool   `json:"notify_client"`
	NotifyBroker bool   `json:"notify_broker"`
}

// UpdateFieldAction writes a value to a named field on the deal record. The
// recognized field set belongs to the deal store and is checked at execution
// time, not here.
type UpdateFieldAction struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// AssignBrokerAction re-assigns the deal's owning client to a broker.
type AssignBrokerAction struct {
	BrokerID string `json:"broker_id" validate:"required"`
}

var (
	ErrUnknownActionKind  = errors.New("unknown action kind")
	ErrMissingPayload     = errors.New("action payload missing for kind")
	ErrConflictingPayload = errors.New("action carries payload for a different kind")
)

// Payload returns the payload struct selected by Kind, or nil when it is
// absent.
func (a Action) Payload() any {
	switch a.Kind {
	case ActionKindCreateTask:
		if a.CreateTask != nil {
			return a.CreateTask
		}
	case ActionKindSendNotification:
		if a.SendNotification != nil {
			return a.SendNotification
		}
	case ActionKindUpdateField:
		if a.UpdateField != nil {
			return a.UpdateField
		}
	case ActionKindAssignBroker:
		if a.AssignBroker != nil {
			return a.AssignBroker
		}
	}

	return nil
}

// ValidateShape checks the union invariants: a recognized kind, its payload
// present, and no payload belonging to another kind. Field-level requirements
// are enforced separately via struct validation.
func (a Action) ValidateShape() error {
	switch a.Kind {
	case ActionKindCreateTask, ActionKindSendNotification, ActionKindUpdateField, ActionKindAssignBroker:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionKind, a.Kind)
	}

	if a.Payload() == nil {
		return fmt.Errorf("%w: %q", ErrMissingPayload, a.Kind)
	}

	set := 0
	for _, p := range []bool{
		a.CreateTask != nil,
		a.SendNotification != nil,
		a.UpdateField != nil,
		a.AssignBroker != nil,
	} {
		if p {
			set++
		}
	}

	if set > 1 {
		return fmt.Errorf("%w: %q", ErrConflictingPayload, a.Kind)
	}

	return nil
}
