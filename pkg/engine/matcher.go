// Package engine orchestrates rule matching and action execution for deal
// status transitions.
package engine

import (
	"sort"

	"github.com/brokerops/dealflow/pkg/models"
)

// Matcher selects the rules that fire for a transition event. Matching is
// pure and deterministic: the same rule set and event always produce the same
// candidates in the same order.
type Matcher struct{}

func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match returns every active rule whose trigger matches the event, ordered by
// creation time with ties broken by rule id. All matching rules fire; this is
// independent fan-out, not mutually exclusive dispatch.
func (m *Matcher) Match(event models.TransitionEvent, rules []*models.WorkflowRule) []*models.WorkflowRule {
	matched := make([]*models.WorkflowRule, 0)

	for _, rule := range rules {
		if rule.IsActive && rule.Matches(event) {
			matched = append(matched, rule)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}

		return matched[i].ID < matched[j].ID
	})

	return matched
}
