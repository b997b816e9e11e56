// Package createtask implements the create_task action executor.
package createtask

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

const defaultTimeout = 10 * time.Second

// Executor creates a follow-up task on the deal via the external task store.
type Executor struct {
	tasks   protocol.TaskCreator
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Executor)

// WithTimeout bounds the task store call.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

// WithClock overrides the due-date clock.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

func NewExecutor(tasks protocol.TaskCreator, opts ...Option) *Executor {
	executor := &Executor{
		tasks:   tasks,
		timeout: defaultTimeout,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

func (e *Executor) Kind() models.ActionKind {
	return models.ActionKindCreateTask
}

// Execute computes the absolute due date (now + DueInDays; zero means due
// immediately) and calls the task store.
func (e *Executor) Execute(ctx context.Context, action models.Action, event models.TransitionEvent, logger *slog.Logger) error {
	payload := action.CreateTask
	if payload == nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, errors.New("create_task payload missing"))
	}

	dueAt := e.now().UTC().AddDate(0, 0, payload.DueInDays)

	logger.InfoContext(ctx, "Creating task",
		"deal_id", event.DealID,
		"title", payload.Title,
		"priority", payload.Priority,
		"due_at", dueAt,
	)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.tasks.CreateTask(callCtx, protocol.Task{
		DealID:      event.DealID,
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    payload.Priority,
		DueAt:       dueAt,
	})
	if err != nil {
		return protocol.NewExecutionError(e.Kind(), event.DealID, err)
	}

	return nil
}
