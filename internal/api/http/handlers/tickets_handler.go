package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/facilitas/chamado-service/internal/api/dto"
	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/service"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// TicketsHandler manages chamado endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /chamados.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal, service.TicketCreateInput{
		Title:       req.Titulo,
		Description: req.Descricao,
		SectorID:    req.SetorID,
		RequesterID: req.SolicitanteID,
		PolicyID:    req.PrazoID,
	})
	if err != nil {
		return err
	}
	vm, err := h.service.GetTicket(c.Context(), principal, ticket.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(*vm)})
}

// ListTickets GET /chamados.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseTicketQuery(c)
	tickets, err := h.service.ListTickets(c.Context(), principal, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// GetTicket GET /chamados/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	vm, err := h.service.GetTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*vm)})
}

// StartTicket POST /chamados/:id/iniciar.
func (h *TicketsHandler) StartTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if _, err := h.service.StartTicket(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return h.respondWithTicket(c, principal, c.Params("id"))
}

// CompleteTicket POST /chamados/:id/concluir.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CompleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if _, err := h.service.CompleteTicket(c.Context(), principal, c.Params("id"), req.DescricaoConclusao); err != nil {
		return err
	}
	return h.respondWithTicket(c, principal, c.Params("id"))
}

// AssignTicket POST /chamados/:id/atribuir.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ResponsavelID == "" || req.PrazoID == "" {
		return apperrors.NewValidationError("responsavel_id and prazo_id required", nil)
	}
	if _, err := h.service.AssignTicket(c.Context(), principal, c.Params("id"), req.ResponsavelID, req.PrazoID); err != nil {
		return err
	}
	return h.respondWithTicket(c, principal, c.Params("id"))
}

// DeleteTicket DELETE /chamados/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteTicket(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListHistory GET /chamados/:id/historico.
func (h *TicketsHandler) ListHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	entries, err := h.service.ListHistory(c.Context(), principal, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketHistoryResponse(entries)})
}

func (h *TicketsHandler) respondWithTicket(c *fiber.Ctx, principal *auth.Principal, id string) error {
	vm, err := h.service.GetTicket(c.Context(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*vm)})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := strings.TrimSpace(c.Query("setor_id")); raw != "" {
		filter.SectorID = &raw
	}
	if raw := strings.TrimSpace(c.Query("busca")); raw != "" {
		filter.SearchTerm = &raw
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if status, ok := domain.ParseTicketStatus(part); ok {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if from := parseQueryTime(c.Query("criado_de")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseQueryTime(c.Query("criado_ate")); to != nil {
		filter.CreatedTo = to
	}
	return filter
}

func parseQueryTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		ts := time.Unix(secs, 0).UTC()
		return &ts
	}
	return nil
}
