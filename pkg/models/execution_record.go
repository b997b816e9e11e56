package models

import "time"

// ExecutionOutcome is the terminal result of one attempted action.
type ExecutionOutcome string

const (
	OutcomeSuccess ExecutionOutcome = "success"
	OutcomeFailed  ExecutionOutcome = "failed"
)

// ExecutionRecord is the audit trail entry for one attempted action of one
// matched rule. Exactly one record exists per attempted action, successful or
// not, and records are never mutated after creation.
type ExecutionRecord struct {
	ID            string           `json:"id"`
	RuleID        string           `json:"rule_id"`
	DealID        string           `json:"deal_id"`
	ActionIndex   int              `json:"action_index"`
	ActionKind    ActionKind       `json:"action_kind"`
	Outcome       ExecutionOutcome `json:"outcome"`
	FailureReason string           `json:"failure_reason,omitempty"`
	ExecutedAt    time.Time        `json:"executed_at"`
}
