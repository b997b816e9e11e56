// Package registry holds the mapping from action kind to its executor.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

// Registry maps action kinds to their executors. Executors are registered at
// startup; the engine looks them up per action.
type Registry struct {
	logger    *slog.Logger
	executors map[models.ActionKind]protocol.Executor
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		executors: make(map[models.ActionKind]protocol.Executor),
	}
}

// Register adds an executor, replacing any previous executor for its kind.
func (r *Registry) Register(executor protocol.Executor) {
	r.executors[executor.Kind()] = executor
	r.logger.Info("Registered action executor", "kind", executor.Kind())
}

// ExecutorFor returns the executor for the given kind.
func (r *Registry) ExecutorFor(kind models.ActionKind) (protocol.Executor, error) {
	executor, ok := r.executors[kind]
	if !ok {
		return nil, fmt.Errorf("action kind %q not registered", kind)
	}

	return executor, nil
}

// Kinds returns the registered action kinds.
func (r *Registry) Kinds() []models.ActionKind {
	kinds := make([]models.ActionKind, 0, len(r.executors))
	for kind := range r.executors {
		kinds = append(kinds, kind)
	}

	return kinds
}
