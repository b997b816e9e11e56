package updatefield_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerops/dealflow/pkg/executors/updatefield"
	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
)

type fakeDealStore struct {
	writes map[string]string
	err    error
	slow   bool
}

func (f *fakeDealStore) UpdateField(ctx context.Context, dealID, field, value string) error {
	if f.slow {
		<-ctx.Done()

		return ctx.Err()
	}

	if f.err != nil {
		return f.err
	}

	if f.writes == nil {
		f.writes = make(map[string]string)
	}

	f.writes[dealID+"."+field] = value

	return nil
}

func fieldAction(field, value string) models.Action {
	return models.Action{
		Kind:        models.ActionKindUpdateField,
		UpdateField: &models.UpdateFieldAction{Field: field, Value: value},
	}
}

func TestExecute_WritesField(t *testing.T) {
	store := &fakeDealStore{}
	executor := updatefield.NewExecutor(store)

	event := models.TransitionEvent{DealID: "deal-1", ToStatus: models.StatusWithSolicitors}

	err := executor.Execute(t.Context(), fieldAction("solicitor_ref", "SOL-441"), event, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, "SOL-441", store.writes["deal-1.solicitor_ref"])
}

func TestExecute_UnknownFieldPassesThrough(t *testing.T) {
	store := &fakeDealStore{err: protocol.ErrInvalidField}
	executor := updatefield.NewExecutor(store)

	err := executor.Execute(t.Context(), fieldAction("no_such_field", "x"), models.TransitionEvent{DealID: "deal-1"}, slog.Default())
	require.Error(t, err)
	assert.True(t, protocol.IsInvalidField(err))
}

func TestExecute_SlowStoreTimesOut(t *testing.T) {
	store := &fakeDealStore{slow: true}
	executor := updatefield.NewExecutor(store, updatefield.WithTimeout(10*time.Millisecond))

	err := executor.Execute(t.Context(), fieldAction("stage", "done"), models.TransitionEvent{DealID: "deal-1"}, slog.Default())
	require.Error(t, err)
	assert.True(t, protocol.IsTimeout(err))
}
