package models

import "time"

// Trigger is the (from, to) status pair a rule reacts to. FromStatus may be
// StatusAny; ToStatus is always a concrete status.
type Trigger struct {
	FromStatus DealStatus `json:"from_status" validate:"required"`
	ToStatus   DealStatus `json:"to_status"   validate:"required"`
}

// WorkflowRule is a single event-condition-action rule: when a deal arrives
// at Trigger.ToStatus (optionally from a specific origin), its Actions run in
// list order. Rules are authored by administrators and never mutated by the
// engine.
type WorkflowRule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	Trigger     Trigger   `json:"trigger"`
	Actions     []Action  `json:"actions"     validate:"required,min=1"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Matches reports whether the rule's trigger matches the transition. The
// active flag is checked by the matcher, not here.
func (r *WorkflowRule) Matches(event TransitionEvent) bool {
	if r.Trigger.ToStatus != event.ToStatus {
		return false
	}

	return r.Trigger.FromStatus == StatusAny || r.Trigger.FromStatus == event.FromStatus
}
