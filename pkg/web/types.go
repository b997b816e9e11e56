package web

import (
	"github.com/brokerops/dealflow/pkg/models"
	"github.com/brokerops/dealflow/pkg/services"
)

// CreateRuleRequest is the body of POST /rules.
type CreateRuleRequest struct {
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Trigger     models.Trigger  `json:"trigger"     validate:"required"`
	Actions     []models.Action `json:"actions"     validate:"required,min=1"`
	IsActive    *bool           `json:"is_active"`
}

func (r CreateRuleRequest) toRule() *models.WorkflowRule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return &models.WorkflowRule{
		Name:        r.Name,
		Description: r.Description,
		Trigger:     r.Trigger,
		Actions:     r.Actions,
		IsActive:    active,
	}
}

// UpdateRuleRequest is the body of PATCH /rules/:id. Absent fields are left
// untouched.
type UpdateRuleRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=3"`
	Description *string          `json:"description"`
	Trigger     *models.Trigger  `json:"trigger"`
	Actions     *[]models.Action `json:"actions"     validate:"omitempty,min=1"`
	IsActive    *bool            `json:"is_active"`
}

func (r UpdateRuleRequest) toPatch() services.RulePatch {
	return services.RulePatch{
		Name:        r.Name,
		Description: r.Description,
		Trigger:     r.Trigger,
		Actions:     r.Actions,
		IsActive:    r.IsActive,
	}
}
