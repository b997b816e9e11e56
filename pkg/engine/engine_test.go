package engine_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerops/dealflow/pkg/engine"
	"github.com/brokerops/dealflow/pkg/executors/assignbroker"
	"github.com/brokerops/dealflow/pkg/executors/createtask"
	"github.com/brokerops/dealflow/pkg/executors/sendnotification"
	"github.com/brokerops/dealflow/pkg/executors/updatefield"
	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/protocol"
	"github.com/brokerops/dealflow/pkg/registry"
)

// fakeRuleStore implements persistence.RuleRepository in memory so tests can
// edit rules between (and during) events.
type fakeRuleStore struct {
	mu    sync.Mutex
	rules []*models.WorkflowRule
}

func (s *fakeRuleStore) ListRules(_ context.Context) ([]*models.WorkflowRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.WorkflowRule, len(s.rules))
	copy(out, s.rules)

	return out, nil
}

func (s *fakeRuleStore) ListActiveRules(ctx context.Context) ([]*models.WorkflowRule, error) {
	all, err := s.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*models.WorkflowRule, 0, len(all))

	for _, r := range all {
		if r.IsActive {
			active = append(active, r)
		}
	}

	return active, nil
}

func (s *fakeRuleStore) GetByID(_ context.Context, id string) (*models.WorkflowRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.ID == id {
			return r, nil
		}
	}

	return nil, nil
}

func (s *fakeRuleStore) Save(_ context.Context, rule *models.WorkflowRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = append(s.rules, rule)

	return nil
}

func (s *fakeRuleStore) Delete(_ context.Context, id string) error {
	return nil
}

func (s *fakeRuleStore) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.rules {
		if r.ID == id {
			r.IsActive = active
		}
	}
}

// memActivity collects execution records in memory.
type memActivity struct {
	mu      sync.Mutex
	records []models.ExecutionRecord
}

func (a *memActivity) Record(_ context.Context, record models.ExecutionRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.records = append(a.records, record)

	return nil
}

func (a *memActivity) all() []models.ExecutionRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]models.ExecutionRecord, len(a.records))
	copy(out, a.records)

	return out
}

// fakeCapabilities records every outbound call and fails on demand.
type fakeCapabilities struct {
	mu            sync.Mutex
	tasks         []protocol.Task
	notifications []protocol.Notification
	fieldWrites   []string
	assignments   []string

	taskErr      error
	notifyErr    error
	fieldErr     error
	assignErr    error
	onCreateTask func()
}

func (f *fakeCapabilities) CreateTask(_ context.Context, task protocol.Task) error {
	f.mu.Lock()
	hook := f.onCreateTask
	err := f.taskErr

	if err == nil {
		f.tasks = append(f.tasks, task)
	}
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	return err
}

func (f *fakeCapabilities) Notify(_ context.Context, n protocol.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.notifyErr != nil {
		return f.notifyErr
	}

	f.notifications = append(f.notifications, n)

	return nil
}

func (f *fakeCapabilities) UpdateField(_ context.Context, dealID, field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fieldErr != nil {
		return f.fieldErr
	}

	f.fieldWrites = append(f.fieldWrites, dealID+"/"+field+"="+value)

	return nil
}

func (f *fakeCapabilities) AssignBroker(_ context.Context, clientID, brokerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.assignErr != nil {
		return f.assignErr
	}

	f.assignments = append(f.assignments, clientID+"->"+brokerID)

	return nil
}

func (f *fakeCapabilities) Parties(_ context.Context, dealID string) (protocol.DealParties, error) {
	return protocol.DealParties{ClientID: "client-" + dealID, BrokerID: "broker-" + dealID}, nil
}

func newTestEngine(t *testing.T, store *fakeRuleStore, caps *fakeCapabilities) (*engine.Engine, *memActivity) {
	t.Helper()

	logger := slog.Default()
	reg := registry.NewRegistry(logger)
	reg.Register(createtask.NewExecutor(caps))
	reg.Register(sendnotification.NewExecutor(caps, caps))
	reg.Register(updatefield.NewExecutor(caps))
	reg.Register(assignbroker.NewExecutor(caps, caps))

	activity := &memActivity{}

	return engine.New(logger, store, reg, activity), activity
}

func activeRule(id string, createdAt time.Time, from, to models.DealStatus, actions ...models.Action) *models.WorkflowRule {
	return &models.WorkflowRule{
		ID:        id,
		Name:      "rule " + id,
		Trigger:   models.Trigger{FromStatus: from, ToStatus: to},
		Actions:   actions,
		IsActive:  true,
		CreatedAt: createdAt,
	}
}

func TestEngine_NewCaseRule(t *testing.T) {
	// Wildcard rule on new_case: notify the client, then create a review
	// task due tomorrow.
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("r1", time.Now(), models.StatusAny, models.StatusNewCase,
			models.Action{
				Kind:             models.ActionKindSendNotification,
				SendNotification: &models.SendNotificationAction{Title: "Welcome", Message: "Case opened", NotifyClient: true},
			},
			models.Action{
				Kind:       models.ActionKindCreateTask,
				CreateTask: &models.CreateTaskAction{Title: "Review new client case", Priority: models.TaskPriorityHigh, DueInDays: 1},
			},
		),
	}}

	caps := &fakeCapabilities{}
	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{
		DealID:     "deal-1",
		FromStatus: "",
		ToStatus:   models.StatusNewCase,
		OccurredAt: time.Now(),
	})

	require.Len(t, caps.notifications, 1)
	assert.Equal(t, "client-deal-1", caps.notifications[0].RecipientID)

	require.Len(t, caps.tasks, 1)
	assert.Equal(t, "Review new client case", caps.tasks[0].Title)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 1), caps.tasks[0].DueAt, time.Minute)

	records := activity.all()
	require.Len(t, records, 2)

	for i, record := range records {
		assert.Equal(t, models.OutcomeSuccess, record.Outcome)
		assert.Equal(t, i, record.ActionIndex)
		assert.Equal(t, "r1", record.RuleID)
		assert.Equal(t, "deal-1", record.DealID)
	}
}

func TestEngine_InactiveRuleDoesNothing(t *testing.T) {
	rule := activeRule("r1", time.Now(), models.StatusAny, models.StatusNewCase,
		models.Action{
			Kind:       models.ActionKindCreateTask,
			CreateTask: &models.CreateTaskAction{Title: "Review", Priority: models.TaskPriorityLow},
		},
	)
	rule.IsActive = false

	store := &fakeRuleStore{rules: []*models.WorkflowRule{rule}}
	caps := &fakeCapabilities{}
	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-1", ToStatus: models.StatusNewCase})

	assert.Empty(t, caps.tasks)
	assert.Empty(t, activity.all())
}

func TestEngine_PartialFailureContinues(t *testing.T) {
	// Action 2 of 3 fails; actions 1 and 3 still run and all three are
	// recorded.
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("r1", time.Now(), models.StatusAny, models.StatusOffered,
			models.Action{
				Kind:        models.ActionKindUpdateField,
				UpdateField: &models.UpdateFieldAction{Field: "stage", Value: "offered"},
			},
			models.Action{
				Kind:       models.ActionKindCreateTask,
				CreateTask: &models.CreateTaskAction{Title: "Chase signature", Priority: models.TaskPriorityMedium},
			},
			models.Action{
				Kind:             models.ActionKindSendNotification,
				SendNotification: &models.SendNotificationAction{Title: "Offer", Message: "Offer issued", NotifyBroker: true},
			},
		),
	}}

	caps := &fakeCapabilities{taskErr: protocol.ErrDependency}
	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-1", FromStatus: models.StatusFinalUnderwriting, ToStatus: models.StatusOffered})

	assert.Len(t, caps.fieldWrites, 1)
	assert.Len(t, caps.notifications, 1)

	records := activity.all()
	require.Len(t, records, 3)
	assert.Equal(t, models.OutcomeSuccess, records[0].Outcome)
	assert.Equal(t, models.OutcomeFailed, records[1].Outcome)
	assert.Contains(t, records[1].FailureReason, "dependency")
	assert.Equal(t, models.OutcomeSuccess, records[2].Outcome)
}

func TestEngine_UnknownBrokerRecordsNotFound(t *testing.T) {
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("r1", time.Now(), models.StatusAwaitingDIP, models.StatusDIPApproved,
			models.Action{
				Kind:         models.ActionKindAssignBroker,
				AssignBroker: &models.AssignBrokerAction{BrokerID: "B1"},
			},
		),
	}}

	caps := &fakeCapabilities{assignErr: protocol.ErrNotFound}
	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-1", FromStatus: models.StatusAwaitingDIP, ToStatus: models.StatusDIPApproved})

	records := activity.all()
	require.Len(t, records, 1)
	assert.Equal(t, models.OutcomeFailed, records[0].Outcome)
	assert.Contains(t, records[0].FailureReason, "not found")
}

func TestEngine_RulesAreIndependent(t *testing.T) {
	// Rule A fails on its only action; rule B must still execute.
	now := time.Now()
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("a", now, models.StatusAny, models.StatusCompleted,
			models.Action{
				Kind:       models.ActionKindCreateTask,
				CreateTask: &models.CreateTaskAction{Title: "Archive", Priority: models.TaskPriorityLow},
			},
		),
		activeRule("b", now.Add(time.Second), models.StatusAny, models.StatusCompleted,
			models.Action{
				Kind:        models.ActionKindUpdateField,
				UpdateField: &models.UpdateFieldAction{Field: "stage", Value: "done"},
			},
		),
	}}

	caps := &fakeCapabilities{taskErr: protocol.ErrDependency}
	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-1", FromStatus: models.StatusWithSolicitors, ToStatus: models.StatusCompleted})

	assert.Len(t, caps.fieldWrites, 1)

	records := activity.all()
	require.Len(t, records, 2)
	assert.Equal(t, models.OutcomeFailed, records[0].Outcome)
	assert.Equal(t, models.OutcomeSuccess, records[1].Outcome)
}

func TestEngine_RuleSetSnapshotPerEvent(t *testing.T) {
	// Deactivating rule B while rule A executes must not affect the current
	// event: the rule set was snapshotted at matching time.
	now := time.Now()
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("a", now, models.StatusAny, models.StatusNewCase,
			models.Action{
				Kind:       models.ActionKindCreateTask,
				CreateTask: &models.CreateTaskAction{Title: "First", Priority: models.TaskPriorityLow},
			},
		),
		activeRule("b", now.Add(time.Second), models.StatusAny, models.StatusNewCase,
			models.Action{
				Kind:        models.ActionKindUpdateField,
				UpdateField: &models.UpdateFieldAction{Field: "stage", Value: "new"},
			},
		),
	}}

	caps := &fakeCapabilities{}
	caps.onCreateTask = func() { store.setActive("b", false) }

	eng, activity := newTestEngine(t, store, caps)

	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-1", ToStatus: models.StatusNewCase})

	assert.Len(t, caps.fieldWrites, 1, "rule b should still have executed")
	assert.Len(t, activity.all(), 2)

	// The next event sees the edit.
	eng.Process(t.Context(), models.TransitionEvent{DealID: "deal-2", ToStatus: models.StatusNewCase})
	assert.Len(t, caps.fieldWrites, 1)
}

func TestEngine_PerDealOrdering(t *testing.T) {
	// Events for one deal are processed in arrival order even when queued
	// faster than they are drained.
	now := time.Now()
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("r1", now, models.StatusAny, models.StatusNewCase,
			models.Action{Kind: models.ActionKindUpdateField, UpdateField: &models.UpdateFieldAction{Field: "last", Value: "new_case"}}),
		activeRule("r2", now, models.StatusAny, models.StatusAwaitingDIP,
			models.Action{Kind: models.ActionKindUpdateField, UpdateField: &models.UpdateFieldAction{Field: "last", Value: "awaiting_dip"}}),
		activeRule("r3", now, models.StatusAny, models.StatusDIPApproved,
			models.Action{Kind: models.ActionKindUpdateField, UpdateField: &models.UpdateFieldAction{Field: "last", Value: "dip_approved"}}),
	}}

	caps := &fakeCapabilities{}
	eng, _ := newTestEngine(t, store, caps)

	eng.OnDealStatusChanged("deal-1", "", models.StatusNewCase, now)
	eng.OnDealStatusChanged("deal-1", models.StatusNewCase, models.StatusAwaitingDIP, now)
	eng.OnDealStatusChanged("deal-1", models.StatusAwaitingDIP, models.StatusDIPApproved, now)

	eng.Drain()

	require.Len(t, caps.fieldWrites, 3)
	assert.Equal(t, []string{
		"deal-1/last=new_case",
		"deal-1/last=awaiting_dip",
		"deal-1/last=dip_approved",
	}, caps.fieldWrites)
}

func TestEngine_ConcurrentDeals(t *testing.T) {
	now := time.Now()
	store := &fakeRuleStore{rules: []*models.WorkflowRule{
		activeRule("r1", now, models.StatusAny, models.StatusNewCase,
			models.Action{Kind: models.ActionKindUpdateField, UpdateField: &models.UpdateFieldAction{Field: "stage", Value: "new"}}),
	}}

	caps := &fakeCapabilities{}
	eng, activity := newTestEngine(t, store, caps)

	const deals = 20

	for i := range deals {
		eng.OnDealStatusChanged("deal-"+string(rune('a'+i)), "", models.StatusNewCase, now)
	}

	eng.Drain()

	assert.Len(t, caps.fieldWrites, deals)
	assert.Len(t, activity.all(), deals)
}
