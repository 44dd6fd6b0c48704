package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/service"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// DashboardHandler serves aggregate counts.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Summary GET /dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	summary, err := h.service.Summary(c.Context(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
