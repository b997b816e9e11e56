// Package web provides the HTTP administrative surface: workflow rule CRUD
// and the per-deal execution audit view.
package web

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/brokerops/dealflow/pkg/persistence"
	"github.com/brokerops/dealflow/pkg/services"
)

type APIHandlers struct {
	rules     *services.Rules
	activity  persistence.ExecutionLogRepository
	validator *validator.Validate
}

func NewAPIHandlers(
	rules *services.Rules,
	activity persistence.ExecutionLogRepository,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		rules:     rules,
		activity:  activity,
		validator: validator,
	}
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	rules, err := h.rules.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"rules": rules})
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	rule, err := h.rules.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	var req CreateRuleRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.rules.Create(c.Context(), req.toRule())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	var req UpdateRuleRequest

	err := c.Bind().JSON(&req)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.rules.Update(c.Context(), c.Params("id"), req.toPatch())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	err := h.rules.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ActivateRule(c fiber.Ctx) error {
	return h.setActive(c, true)
}

func (h *APIHandlers) DeactivateRule(c fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *APIHandlers) setActive(c fiber.Ctx, active bool) error {
	rule, err := h.rules.SetActive(c.Context(), c.Params("id"), active)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

// GetDealActivity returns the execution audit trail for one deal. This is the
// only place where action failures become user-visible.
func (h *APIHandlers) GetDealActivity(c fiber.Ctx) error {
	records, err := h.activity.ListByDeal(c.Context(), c.Params("dealId"))
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"records": records})
}
