// Package persistence provides the data storage abstraction for workflow
// rules and the execution audit log.
package persistence

import (
	"context"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

// RuleRepository stores workflow rules. Save covers both create and update;
// callers are expected to have validated the rule first.
type RuleRepository interface {
	// ListRules returns every rule, active or not, for the authoring surface.
	ListRules(ctx context.Context) ([]*models.WorkflowRule, error)

	// ListActiveRules returns rules with IsActive set. No ordering guarantee;
	// the matcher re-sorts.
	ListActiveRules(ctx context.Context) ([]*models.WorkflowRule, error)

	// GetByID returns the rule or ErrRuleNotFound.
	GetByID(ctx context.Context, id string) (*models.WorkflowRule, error)

	Save(ctx context.Context, rule *models.WorkflowRule) error

	// Delete removes the rule or returns ErrRuleNotFound.
	Delete(ctx context.Context, id string) error
}

// ExecutionLogRepository stores the append-only audit trail of attempted
// actions.
type ExecutionLogRepository interface {
	Append(ctx context.Context, record *models.ExecutionRecord) error
	ListByDeal(ctx context.Context, dealID string) ([]*models.ExecutionRecord, error)
}

// Persistence aggregates the repositories of one storage backend.
type Persistence interface {
	RuleRepository() RuleRepository
	ExecutionLogRepository() ExecutionLogRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// activityLogger adapts an ExecutionLogRepository to the engine's
// ActivityLogger capability.
type activityLogger struct {
	repo ExecutionLogRepository
}

// NewActivityLogger returns an ActivityLogger backed by the given execution
// log repository.
func NewActivityLogger(repo ExecutionLogRepository) protocol.ActivityLogger {
	return &activityLogger{repo: repo}
}

func (l *activityLogger) Record(ctx context.Context, record models.ExecutionRecord) error {
	return l.repo.Append(ctx, &record)
}
