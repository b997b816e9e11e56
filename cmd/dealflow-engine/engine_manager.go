package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brokerops/dealflow/pkg/engine"
	"github.com/brokerops/dealflow/pkg/eventbus"
	"github.com/brokerops/dealflow/pkg/events"
)

// EngineManager subscribes the workflow engine to the transition-event bus
// and runs until signalled.
type EngineManager struct {
	logger   *slog.Logger
	engine   *engine.Engine
	eventBus eventbus.EventBus
}

func NewEngineManager(logger *slog.Logger, eng *engine.Engine, eventBus eventbus.EventBus) *EngineManager {
	return &EngineManager{
		logger:   logger.With("module", "dealflow-engine"),
		engine:   eng,
		eventBus: eventBus,
	}
}

func (m *EngineManager) Start(ctx context.Context) error {
	m.logger.InfoContext(ctx, "Starting engine manager")

	err := m.eventBus.Handle(events.DealStatusChangedEvent, m.handleDealStatusChanged)
	if err != nil {
		return err
	}

	err = m.eventBus.Subscribe(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	m.logger.InfoContext(ctx, "Engine started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	m.logger.InfoContext(ctx, "Shutting down, draining in-flight events...")
	m.engine.Drain()

	return nil
}

func (m *EngineManager) handleDealStatusChanged(ctx context.Context, event any) error {
	changed, ok := event.(*events.DealStatusChanged)
	if !ok {
		m.logger.ErrorContext(ctx, "Invalid event type for DealStatusChanged")

		return nil
	}

	m.logger.InfoContext(ctx, "Processing deal status change",
		"deal_id", changed.DealID,
		"from_status", changed.FromStatus,
		"to_status", changed.ToStatus,
		"event_id", changed.ID,
	)

	// Workflows are a side channel, never a gate on the status write: the
	// event is acknowledged once queued, and action failures stay in the
	// audit log.
	m.engine.OnDealStatusChanged(changed.DealID, changed.FromStatus, changed.ToStatus, changed.OccurredAt)

	return nil
}
