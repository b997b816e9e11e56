package models

import "time"

// TransitionEvent describes one committed deal-status write. It is produced
// by the deal-management subsystem and never persisted by the engine.
// FromStatus is empty for a deal entering the pipeline.
type TransitionEvent struct {
	DealID     string     `json:"deal_id"`
	FromStatus DealStatus `json:"from_status"`
	ToStatus   DealStatus `json:"to_status"`
	OccurredAt time.Time  `json:"occurred_at"`
}
