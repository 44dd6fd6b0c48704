package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitas/chamado-service/internal/api/dto"
	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/service"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// PoliciesHandler manages deadline template endpoints.
type PoliciesHandler struct {
	service *service.DeadlinePolicyService
}

// NewPoliciesHandler constructs the handler.
func NewPoliciesHandler(policyService *service.DeadlinePolicyService) *PoliciesHandler {
	return &PoliciesHandler{service: policyService}
}

// ListPolicies GET /prazos.
func (h *PoliciesHandler) ListPolicies(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	policies, err := h.service.ListPolicies(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeadlinePolicyListResponse(policies)})
}

// CreatePolicy POST /prazos.
func (h *PoliciesHandler) CreatePolicy(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DeadlinePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy, err := h.service.CreatePolicy(c.Context(), principal, service.PolicyInput{
		Title:    req.Titulo,
		SectorID: req.SetorID,
		Duration: req.Duracao,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDeadlinePolicyResponse(policy)})
}

// UpdatePolicy PUT /prazos/:id.
func (h *PoliciesHandler) UpdatePolicy(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DeadlinePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy, err := h.service.UpdatePolicy(c.Context(), principal, c.Params("id"), service.PolicyInput{
		Title:    req.Titulo,
		SectorID: req.SetorID,
		Duration: req.Duracao,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeadlinePolicyResponse(policy)})
}

// DeletePolicy DELETE /prazos/:id.
func (h *PoliciesHandler) DeletePolicy(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeletePolicy(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
