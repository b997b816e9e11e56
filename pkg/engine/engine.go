package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/persistence"
	"github.com/brokerops/dealflow/pkg/protocol"
	"github.com/brokerops/dealflow/pkg/registry"
)

// Engine reacts to committed deal-status writes: it matches active rules
// against the transition and executes each matched rule's actions in list
// order. Execution is best-effort: failures are recorded in the activity log
// and never propagate to the emitter of the transition.
//
// Events for different deals are processed concurrently; events for the same
// deal are serialized in arrival order.
type Engine struct {
	logger   *slog.Logger
	rules    persistence.RuleRepository
	registry *registry.Registry
	activity protocol.ActivityLogger
	matcher  *Matcher

	mu    sync.Mutex
	lanes map[string]*dealLane
	wg    sync.WaitGroup
}

// dealLane holds the pending events of one deal while a drain goroutine works
// through them in arrival order.
type dealLane struct {
	pending []models.TransitionEvent
}

func New(
	logger *slog.Logger,
	rules persistence.RuleRepository,
	reg *registry.Registry,
	activity protocol.ActivityLogger,
) *Engine {
	return &Engine{
		logger:   logger.With("module", "engine"),
		rules:    rules,
		registry: reg,
		activity: activity,
		matcher:  NewMatcher(),
		lanes:    make(map[string]*dealLane),
	}
}

// OnDealStatusChanged accepts one committed status write. It returns as soon
// as the event is queued; processing runs asynchronously and always runs to
// completion, there is no mid-flight cancel.
func (e *Engine) OnDealStatusChanged(dealID string, from, to models.DealStatus, occurredAt time.Time) {
	e.dispatch(models.TransitionEvent{
		DealID:     dealID,
		FromStatus: from,
		ToStatus:   to,
		OccurredAt: occurredAt,
	})
}

func (e *Engine) dispatch(event models.TransitionEvent) {
	e.wg.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	lane, draining := e.lanes[event.DealID]
	if !draining {
		lane = &dealLane{}
		e.lanes[event.DealID] = lane
	}

	lane.pending = append(lane.pending, event)

	if !draining {
		go e.drain(event.DealID, lane)
	}
}

// drain processes one deal's events in arrival order, removing the lane once
// it is empty.
func (e *Engine) drain(dealID string, lane *dealLane) {
	for {
		e.mu.Lock()

		if len(lane.pending) == 0 {
			delete(e.lanes, dealID)
			e.mu.Unlock()

			return
		}

		event := lane.pending[0]
		lane.pending = lane.pending[1:]
		e.mu.Unlock()

		e.Process(context.Background(), event)
		e.wg.Done()
	}
}

// Drain blocks until every accepted event has reached its terminal state.
// Used on shutdown and in tests.
func (e *Engine) Drain() {
	e.wg.Wait()
}

// Process runs one event through the full pipeline synchronously: match
// against a fresh snapshot of active rules, then execute every matched rule.
// Rules are re-read on every event so that administrator edits take effect on
// the very next transition.
func (e *Engine) Process(ctx context.Context, event models.TransitionEvent) {
	logger := e.logger.With(
		"deal_id", event.DealID,
		"from_status", event.FromStatus,
		"to_status", event.ToStatus,
	)

	active, err := e.rules.ListActiveRules(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load active rules, skipping event", "error", err)

		return
	}

	matched := e.matcher.Match(event, active)
	if len(matched) == 0 {
		logger.DebugContext(ctx, "No rules matched")

		return
	}

	logger.InfoContext(ctx, "Executing matched rules", "count", len(matched))

	// Matched rules are independent: a failure inside one rule never stops
	// the others.
	for _, rule := range matched {
		e.runRule(ctx, logger, rule, event)
	}
}

// runRule executes a rule's actions strictly in list order. A failed action
// is recorded and execution continues with the next action; actions touch
// independent external systems and are never rolled back.
func (e *Engine) runRule(ctx context.Context, logger *slog.Logger, rule *models.WorkflowRule, event models.TransitionEvent) {
	ruleLogger := logger.With("rule_id", rule.ID, "rule_name", rule.Name)

	for i, action := range rule.Actions {
		record := models.ExecutionRecord{
			RuleID:      rule.ID,
			DealID:      event.DealID,
			ActionIndex: i,
			ActionKind:  action.Kind,
			Outcome:     models.OutcomeSuccess,
			ExecutedAt:  time.Now().UTC(),
		}

		err := e.executeAction(ctx, ruleLogger, action, event)
		if err != nil {
			record.Outcome = models.OutcomeFailed
			record.FailureReason = err.Error()

			ruleLogger.ErrorContext(ctx, "Action failed, continuing with next action",
				"action_index", i,
				"action_kind", action.Kind,
				"error", err,
			)
		}

		recordErr := e.activity.Record(ctx, record)
		if recordErr != nil {
			ruleLogger.ErrorContext(ctx, "Failed to record execution outcome",
				"action_index", i,
				"error", recordErr,
			)
		}
	}
}

func (e *Engine) executeAction(ctx context.Context, logger *slog.Logger, action models.Action, event models.TransitionEvent) error {
	executor, err := e.registry.ExecutorFor(action.Kind)
	if err != nil {
		return protocol.NewExecutionError(action.Kind, event.DealID, err)
	}

	return executor.Execute(ctx, action, event, logger)
}
