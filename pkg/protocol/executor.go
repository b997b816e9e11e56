package protocol

import (
	"context"
	"log/slog"

	"github.com/brokerops/dealflow/pkg/models"
)

// Executor runs one kind of action against its external capability. Executors
// are constructed once at startup with their collaborators injected; the
// per-invocation parameters arrive in the action payload.
type Executor interface {
	Kind() models.ActionKind
	Execute(ctx context.Context, action models.Action, event models.TransitionEvent, logger *slog.Logger) error
}
