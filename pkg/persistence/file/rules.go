package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/persistence"
)

// RuleRepository stores each rule as rules/<id>.json under the root.
type RuleRepository struct {
	root string
}

// NewRuleRepository creates a new file-backed rule repository.
func NewRuleRepository(root string) *RuleRepository {
	return &RuleRepository{root: root}
}

// ListRules returns every stored rule, active or not.
func (rr *RuleRepository) ListRules(ctx context.Context) ([]*models.WorkflowRule, error) {
	dir := path.Join(rr.root, "rules")

	jsonFiles, err := fs.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}

	rules := make([]*models.WorkflowRule, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		ruleID := file[:len(file)-len(".json")]

		rule, err := rr.GetByID(ctx, ruleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rule %s: %w", ruleID, err)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

// ListActiveRules returns rules with IsActive set.
func (rr *RuleRepository) ListActiveRules(ctx context.Context) ([]*models.WorkflowRule, error) {
	all, err := rr.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]*models.WorkflowRule, 0, len(all))

	for _, rule := range all {
		if rule.IsActive {
			active = append(active, rule)
		}
	}

	return active, nil
}

// GetByID retrieves a rule by its ID from the file system.
func (rr *RuleRepository) GetByID(_ context.Context, id string) (*models.WorkflowRule, error) {
	filePath := filepath.Clean(path.Join(rr.root, "rules", id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewRuleError("GetByID", id, persistence.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}

	var rule models.WorkflowRule

	err = json.Unmarshal(body, &rule)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule %s: %w", id, err)
	}

	return &rule, nil
}

// Save writes a rule to the file system, creating or replacing it.
func (rr *RuleRepository) Save(_ context.Context, rule *models.WorkflowRule) error {
	err := os.MkdirAll(path.Join(rr.root, "rules"), 0750)
	if err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rule %s: %w", rule.ID, err)
	}

	return os.WriteFile(path.Join(rr.root, "rules", rule.ID+".json"), data, 0600)
}

// Delete removes a rule by its ID.
func (rr *RuleRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(path.Join(rr.root, "rules", id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return persistence.NewRuleError("Delete", id, persistence.ErrRuleNotFound)
		}

		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}

	return nil
}
