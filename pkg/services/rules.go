package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/persistence"
)

// Rules is the authoring service behind the administrative surface. It owns
// rule validation: the engine assumes every persisted rule is valid.
type Rules struct {
	repo     persistence.RuleRepository
	validate *validator.Validate
}

func NewRules(repo persistence.RuleRepository) *Rules {
	return &Rules{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RulePatch carries partial updates; nil fields are left untouched.
type RulePatch struct {
	Name        *string
	Description *string
	Trigger     *models.Trigger
	Actions     *[]models.Action
	IsActive    *bool
}

func (p RulePatch) isEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Trigger == nil && p.Actions == nil && p.IsActive == nil
}

// List returns every rule, active or not.
func (s *Rules) List(ctx context.Context) ([]*models.WorkflowRule, error) {
	return s.repo.ListRules(ctx)
}

// Get returns one rule or a not-found error from the repository.
func (s *Rules) Get(ctx context.Context, id string) (*models.WorkflowRule, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a new rule, assigning its id and timestamps.
func (s *Rules) Create(ctx context.Context, rule *models.WorkflowRule) (*models.WorkflowRule, error) {
	if rule == nil {
		return nil, NewValidationError("Create", "rule cannot be nil", ErrRuleNil)
	}

	err := s.validateRule(rule)
	if err != nil {
		return nil, err
	}

	if rule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate rule ID: %w", err)
		}

		rule.ID = id.String()
	}

	err = s.repo.Save(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	return rule, nil
}

// Update applies a patch to an existing rule. The patched rule is re-validated
// as a whole before persisting.
func (s *Rules) Update(ctx context.Context, id string, patch RulePatch) (*models.WorkflowRule, error) {
	if patch.isEmpty() {
		return nil, NewValidationError("Update", "no fields to update", ErrNoFieldsToUpdate)
	}

	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		rule.Name = *patch.Name
	}

	if patch.Description != nil {
		rule.Description = *patch.Description
	}

	if patch.Trigger != nil {
		rule.Trigger = *patch.Trigger
	}

	if patch.Actions != nil {
		rule.Actions = *patch.Actions
	}

	if patch.IsActive != nil {
		rule.IsActive = *patch.IsActive
	}

	err = s.validateRule(rule)
	if err != nil {
		return nil, err
	}

	err = s.repo.Save(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	return rule, nil
}

// SetActive toggles a rule without touching its definition.
func (s *Rules) SetActive(ctx context.Context, id string, active bool) (*models.WorkflowRule, error) {
	return s.Update(ctx, id, RulePatch{IsActive: &active})
}

// Delete removes a rule.
func (s *Rules) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// validateRule enforces the authoring invariants: a named rule, a concrete
// recognized destination status, a recognized (or wildcard) origin status,
// and at least one action carrying its kind's required fields.
func (s *Rules) validateRule(rule *models.WorkflowRule) error {
	if rule.Name == "" {
		return NewValidationError("validateRule", "rule name is required", ErrRuleNameRequired)
	}

	if rule.Trigger.ToStatus == models.StatusAny {
		return NewValidationError("validateRule", "to_status must be a concrete status", ErrWildcardToStatus)
	}

	if !rule.Trigger.ToStatus.IsValid() {
		return NewValidationError("validateRule",
			fmt.Sprintf("unknown to_status %q", rule.Trigger.ToStatus), ErrUnknownToStatus)
	}

	if rule.Trigger.FromStatus != models.StatusAny && !rule.Trigger.FromStatus.IsValid() {
		return NewValidationError("validateRule",
			fmt.Sprintf("unknown from_status %q", rule.Trigger.FromStatus), ErrUnknownFromStatus)
	}

	if len(rule.Actions) == 0 {
		return NewValidationError("validateRule", "rule must have at least one action", ErrActionsRequired)
	}

	for i, action := range rule.Actions {
		err := action.ValidateShape()
		if err != nil {
			return NewValidationError("validateRule",
				fmt.Sprintf("action %d: %v", i, err), ErrInvalidAction)
		}

		err = s.validate.Struct(action.Payload())
		if err != nil {
			return NewValidationError("validateRule",
				fmt.Sprintf("action %d (%s): %v", i, action.Kind, err), ErrInvalidActionFields)
		}
	}

	return nil
}
