package file_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/persistence"
	"github.com/brokerops/dealflow/pkg/persistence/file"
)

func newTestPersistence(t *testing.T) *file.Persistence {
	t.Helper()

	return file.NewPersistence(t.TempDir())
}

func sampleRule(id string) *models.WorkflowRule {
	return &models.WorkflowRule{
		ID:      id,
		Name:    "Instruct reports",
		Trigger: models.Trigger{FromStatus: models.StatusDIPApproved, ToStatus: models.StatusReportsInstructed},
		Actions: []models.Action{
			{
				Kind:       models.ActionKindCreateTask,
				CreateTask: &models.CreateTaskAction{Title: "Order valuation", Priority: models.TaskPriorityMedium, DueInDays: 2},
			},
		},
		IsActive: true,
	}
}

func TestRuleRepository_SaveAndGet(t *testing.T) {
	repo := newTestPersistence(t).RuleRepository()

	rule := sampleRule("rule-1")
	require.NoError(t, repo.Save(t.Context(), rule))
	assert.False(t, rule.CreatedAt.IsZero())
	assert.False(t, rule.UpdatedAt.IsZero())

	got, err := repo.GetByID(t.Context(), "rule-1")
	require.NoError(t, err)
	assert.Equal(t, "Instruct reports", got.Name)
	assert.Equal(t, models.StatusReportsInstructed, got.Trigger.ToStatus)
	require.Len(t, got.Actions, 1)
	require.NotNil(t, got.Actions[0].CreateTask)
	assert.Equal(t, 2, got.Actions[0].CreateTask.DueInDays)
}

func TestRuleRepository_GetMissing(t *testing.T) {
	repo := newTestPersistence(t).RuleRepository()

	_, err := repo.GetByID(t.Context(), "nope")
	require.Error(t, err)
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRuleRepository_ListActiveRules(t *testing.T) {
	repo := newTestPersistence(t).RuleRepository()

	active := sampleRule("rule-1")
	require.NoError(t, repo.Save(t.Context(), active))

	inactive := sampleRule("rule-2")
	inactive.IsActive = false
	require.NoError(t, repo.Save(t.Context(), inactive))

	all, err := repo.ListRules(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := repo.ListActiveRules(t.Context())
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, "rule-1", activeOnly[0].ID)
}

func TestRuleRepository_Delete(t *testing.T) {
	repo := newTestPersistence(t).RuleRepository()

	require.NoError(t, repo.Save(t.Context(), sampleRule("rule-1")))
	require.NoError(t, repo.Delete(t.Context(), "rule-1"))

	_, err := repo.GetByID(t.Context(), "rule-1")
	assert.True(t, persistence.IsRuleNotFound(err))

	err = repo.Delete(t.Context(), "rule-1")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestExecutionLogRepository_AppendAndList(t *testing.T) {
	repo := newTestPersistence(t).ExecutionLogRepository()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := range 3 {
		err := repo.Append(t.Context(), &models.ExecutionRecord{
			ID:          "rec-" + string(rune('a'+i)),
			RuleID:      "rule-1",
			DealID:      "deal-1",
			ActionIndex: i,
			ActionKind:  models.ActionKindCreateTask,
			Outcome:     models.OutcomeSuccess,
			ExecutedAt:  base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	require.NoError(t, repo.Append(t.Context(), &models.ExecutionRecord{
		ID:         "rec-other",
		RuleID:     "rule-1",
		DealID:     "deal-2",
		ActionKind: models.ActionKindUpdateField,
		Outcome:    models.OutcomeFailed,
		ExecutedAt: base,
	}))

	records, err := repo.ListByDeal(t.Context(), "deal-1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, record := range records {
		assert.Equal(t, i, record.ActionIndex, "records come back in append order")
	}
}

func TestExecutionLogRepository_ListUnknownDeal(t *testing.T) {
	repo := newTestPersistence(t).ExecutionLogRepository()

	records, err := repo.ListByDeal(t.Context(), "deal-unknown")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPersistence_HealthCheck(t *testing.T) {
	p := newTestPersistence(t)

	require.NoError(t, p.HealthCheck(t.Context()))
	require.NoError(t, p.Close(t.Context()))

	missing := file.NewPersistence("/nonexistent/dealflow-test")
	assert.Error(t, missing.HealthCheck(t.Context()))
}
