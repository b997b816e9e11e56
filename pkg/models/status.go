// Package models defines the core domain models for deal-status workflow automation.
package models

// DealStatus is one stage of the deal lifecycle. The set of statuses is owned
// by the deal-management subsystem; the engine validates against it but never
// extends it.
type DealStatus string

const (
	StatusNewCase           DealStatus = "new_case"
	StatusAwaitingDIP       DealStatus = "awaiting_dip"
	StatusDIPApproved       DealStatus = "dip_approved"
	StatusReportsInstructed DealStatus = "reports_instructed"
	StatusFinalUnderwriting DealStatus = "final_underwriting"
	StatusOffered           DealStatus = "offered"
	StatusWithSolicitors    DealStatus = "with_solicitors"
	StatusCompleted         DealStatus = "completed"
)

// StatusAny is the wildcard origin status in a rule trigger. It is never a
// valid destination status.
const StatusAny DealStatus = "any"

// DealStatuses returns the recognized deal lifecycle statuses in pipeline order.
func DealStatuses() []DealStatus {
	return []DealStatus{
		StatusNewCase,
		StatusAwaitingDIP,
		StatusDIPApproved,
		StatusReportsInstructed,
		StatusFinalUnderwriting,
		StatusOffered,
		StatusWithSolicitors,
		StatusCompleted,
	}
}

// IsValid reports whether s is a recognized deal status. The wildcard is not
// a deal status.
func (s DealStatus) IsValid() bool {
	switch s {
	case StatusNewCase, StatusAwaitingDIP, StatusDIPApproved, StatusReportsInstructed,
		StatusFinalUnderwriting, StatusOffered, StatusWithSolicitors, StatusCompleted:
		return true
	case StatusAny:
		return false
	}

	return false
}
