package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitas/chamado-service/internal/api/dto"
	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/service"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// SectorsHandler manages sector CRUD endpoints.
type SectorsHandler struct {
	service *service.SectorService
}

// NewSectorsHandler constructs the handler.
func NewSectorsHandler(sectorService *service.SectorService) *SectorsHandler {
	return &SectorsHandler{service: sectorService}
}

// ListSectors GET /setores.
func (h *SectorsHandler) ListSectors(c *fiber.Ctx) error {
	sectors, err := h.service.ListSectors(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSectorListResponse(sectors)})
}

// ListSectorUsers GET /setores/:id/usuarios.
func (h *SectorsHandler) ListSectorUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	users, err := h.service.ListSectorUsers(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserListResponse(users)})
}

// CreateSector POST /setores.
func (h *SectorsHandler) CreateSector(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SectorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sector, err := h.service.CreateSector(c.Context(), principal, req.Nome)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSectorResponse(sector)})
}

// UpdateSector PUT /setores/:id.
func (h *SectorsHandler) UpdateSector(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SectorRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	sector, err := h.service.UpdateSector(c.Context(), principal, c.Params("id"), req.Nome)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSectorResponse(sector)})
}

// DeleteSector DELETE /setores/:id.
func (h *SectorsHandler) DeleteSector(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteSector(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
