package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/events"
	"github.com/facilitas/chamado-service/internal/lifecycle"
	"github.com/facilitas/chamado-service/internal/repository"
	"github.com/facilitas/chamado-service/internal/sla"
	"github.com/facilitas/chamado-service/internal/viewmodel"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// TicketService coordinates chamado workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	sectors    repository.SectorRepository
	users      repository.UserRepository
	policies   repository.DeadlinePolicyRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
	defaultMin int
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	SectorRepo  repository.SectorRepository
	UserRepo    repository.UserRepository
	PolicyRepo  repository.DeadlinePolicyRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Now         func() time.Time
	// DefaultDurationMinutes is the fallback applied to unparseable policy
	// durations. Zero means sla.DefaultDurationMinutes.
	DefaultDurationMinutes int
}

// TicketCreateInput describes ticket creation payload. RequesterID is only
// honored for staff filing on a client's behalf.
type TicketCreateInput struct {
	Title       string
	Description string
	SectorID    string
	RequesterID *string
	PolicyID    *string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	SectorID    *string
	Statuses    []domain.TicketStatus
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		sectors:    deps.SectorRepo,
		users:      deps.UserRepo,
		policies:   deps.PolicyRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		now:        deps.Now,
		defaultMin: deps.DefaultDurationMinutes,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.defaultMin <= 0 {
		svc.defaultMin = sla.DefaultDurationMinutes
	}
	return svc
}

// CreateTicket files a new chamado. Without a deadline policy the ticket
// waits in AGUARDANDO_PRAZO until a manager assigns one.
func (s *TicketService) CreateTicket(ctx context.Context, principal *auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.SectorID == "" {
		return nil, apperrors.NewValidationError("titulo, descricao and setor_id required", nil)
	}

	if _, err := s.sectors.GetByID(ctx, input.SectorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sector", map[string]any{"sector_id": input.SectorID})
		}
		return nil, apperrors.MapError(err)
	}

	requesterID := principal.User.ID
	if input.RequesterID != nil && *input.RequesterID != "" && *input.RequesterID != principal.User.ID {
		if !principal.User.Role.Staff() {
			return nil, apperrors.NewForbidden("only staff may file on behalf of another user")
		}
		if _, err := s.users.GetByID(ctx, *input.RequesterID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("requester", map[string]any{"user_id": *input.RequesterID})
			}
			return nil, apperrors.MapError(err)
		}
		requesterID = *input.RequesterID
	}

	now := s.now()
	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		SectorID:    input.SectorID,
		RequesterID: requesterID,
		Status:      domain.TicketStatusAwaitingDeadline,
	}

	if input.PolicyID != nil && *input.PolicyID != "" {
		policy, err := s.policyForSector(ctx, *input.PolicyID, input.SectorID)
		if err != nil {
			return nil, err
		}
		deadline := sla.DeadlineFrom(now, sla.ParseDurationToMinutesWithDefault(policy.Duration, s.defaultMin))
		ticket.Deadline = &deadline
		ticket.Status = domain.TicketStatusOpen
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.UserActor(principal.User),
		Payload: events.TicketCreatedPayload{
			SectorID: ticket.SectorID,
			Title:    ticket.Title,
			Status:   ticket.Status,
			Deadline: ticket.Deadline,
		},
	})
	return ticket, nil
}

// ListTickets returns role-scoped view-models, most recent first.
func (s *TicketService) ListTickets(ctx context.Context, principal *auth.Principal, filter TicketListFilter) ([]viewmodel.TicketWithDetails, error) {
	repoFilter := repository.TicketFilter{
		SectorID:    filter.SectorID,
		Statuses:    filter.Statuses,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if principal.User.Role == domain.RoleClient {
		requesterID := principal.User.ID
		repoFilter.RequesterID = &requesterID
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	lookups, err := s.lookupsFor(ctx, tickets)
	if err != nil {
		return nil, err
	}
	return viewmodel.AssembleList(tickets, lookups, principal.Actor(), s.now()), nil
}

// GetTicket fetches a single assembled view-model, enforcing visibility.
func (s *TicketService) GetTicket(ctx context.Context, principal *auth.Principal, ticketID string) (*viewmodel.TicketWithDetails, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTicket(principal.Actor(), ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	lookups, err := s.lookupsFor(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	vm := viewmodel.AssembleTicket(*ticket, lookups, principal.Actor(), s.now())
	return &vm, nil
}

// StartTicket moves a chamado to EM_ANDAMENTO.
func (s *TicketService) StartTicket(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditTicket(principal.Actor()) {
		return nil, apperrors.NewForbidden("access denied")
	}
	oldStatus := ticket.Status
	if err := lifecycle.Start(ticket); err != nil {
		return nil, err
	}
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.recordStatusChange(ctx, &principal.User.ID, ticket.ID, oldStatus, ticket.Status, "")
	s.publishStatusChange(ctx, events.UserActor(principal.User), ticket.ID, oldStatus, ticket.Status, "")
	return ticket, nil
}

// CompleteTicket moves a chamado to CONCLUIDO with a completion note.
func (s *TicketService) CompleteTicket(ctx context.Context, principal *auth.Principal, ticketID, note string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanEditTicket(principal.Actor()) {
		return nil, apperrors.NewForbidden("access denied")
	}
	oldStatus := ticket.Status
	if err := lifecycle.Complete(ticket, note); err != nil {
		return nil, err
	}
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}
	s.recordStatusChange(ctx, &principal.User.ID, ticket.ID, oldStatus, ticket.Status, "concluido")
	s.publishStatusChange(ctx, events.UserActor(principal.User), ticket.ID, oldStatus, ticket.Status, "concluido")
	return ticket, nil
}

// AssignTicket sets the responsible party, re-anchors the deadline from the
// chosen policy at now and forces EM_ANDAMENTO.
func (s *TicketService) AssignTicket(ctx context.Context, principal *auth.Principal, ticketID, responsibleID, policyID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAssignTicket(principal.Actor(), ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}

	responsible, err := s.users.GetByID(ctx, responsibleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("responsible", map[string]any{"user_id": responsibleID})
		}
		return nil, apperrors.MapError(err)
	}
	if !responsible.Active {
		return nil, apperrors.NewConflict("responsible inactive", map[string]any{"user_id": responsibleID})
	}

	policy, err := s.policyForSector(ctx, policyID, ticket.SectorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deadline := sla.DeadlineFrom(now, sla.ParseDurationToMinutesWithDefault(policy.Duration, s.defaultMin))
	oldStatus := ticket.Status
	oldResponsible := ticket.ResponsibleID
	oldDeadline := ticket.Deadline
	if err := lifecycle.Reassign(ticket, responsible.ID, deadline); err != nil {
		return nil, err
	}
	if err := s.updateTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.recordHistory(ctx, &principal.User.ID, ticket.ID, domain.ChangeTypeResponsible,
		map[string]any{"responsible_id": oldResponsible},
		map[string]any{"responsible_id": ticket.ResponsibleID})
	s.recordHistory(ctx, &principal.User.ID, ticket.ID, domain.ChangeTypeDeadline,
		map[string]any{"deadline": oldDeadline},
		map[string]any{"deadline": ticket.Deadline, "policy_id": policy.ID})
	if oldStatus != ticket.Status {
		s.recordStatusChange(ctx, &principal.User.ID, ticket.ID, oldStatus, ticket.Status, "reatribuido")
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.UserActor(principal.User),
		Payload: events.TicketAssignedPayload{
			ResponsibleID: responsible.ID,
			Deadline:      ticket.Deadline,
			PolicyID:      &policy.ID,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a chamado.
func (s *TicketService) DeleteTicket(ctx context.Context, principal *auth.Principal, ticketID string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !authz.CanDeleteTicket(principal.Actor(), ticket) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Actor:    events.UserActor(principal.User),
		Payload:  events.TicketDeletedPayload{SectorID: ticket.SectorID},
	})
	return nil
}

// ListHistory returns audit entries for a ticket the caller may view.
func (s *TicketService) ListHistory(ctx context.Context, principal *auth.Principal, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewTicket(principal.Actor(), ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// ExpireTicket applies the automatic ATRASADO transition. It reports false
// when the ticket no longer qualifies (already completed, already overdue,
// or concurrently updated).
func (s *TicketService) ExpireTicket(ctx context.Context, ticketID string, now time.Time) (bool, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return false, err
	}
	oldStatus := ticket.Status
	if !lifecycle.MarkOverdue(ticket, now) {
		return false, nil
	}
	if err := s.updateTicket(ctx, ticket); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "CONFLICT" {
			// someone raced the sweep; the next pass re-evaluates
			return false, nil
		}
		return false, err
	}
	s.recordStatusChange(ctx, nil, ticket.ID, oldStatus, ticket.Status, "prazo expirado")
	s.publish(ctx, events.Event{
		Type:     events.EventTicketExpired,
		TicketID: ticket.ID,
		Actor:    events.SystemActor(),
		Payload: events.TicketExpiredPayload{
			Deadline:  *ticket.Deadline,
			OldStatus: oldStatus,
		},
	})
	return true, nil
}

// ListExpiredIDs returns ids of tickets whose deadline passed, for the sweep.
func (s *TicketService) ListExpiredIDs(ctx context.Context, now time.Time, limit int) ([]string, error) {
	tickets, err := s.tickets.ListExpired(ctx, now, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	return ids, nil
}

func (s *TicketService) getTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) updateTicket(ctx context.Context, ticket *domain.Ticket) error {
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return apperrors.NewConflict("ticket was modified concurrently; refetch and retry", map[string]any{
				"ticket_id": ticket.ID,
			})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// policyForSector loads a policy and checks it applies to the sector.
func (s *TicketService) policyForSector(ctx context.Context, policyID, sectorID string) (*domain.DeadlinePolicy, error) {
	policy, err := s.policies.GetByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("deadline policy", map[string]any{"policy_id": policyID})
		}
		return nil, apperrors.MapError(err)
	}
	if !policy.Unscoped() && *policy.SectorID != sectorID {
		return nil, apperrors.NewConflict("policy not applicable to ticket sector", map[string]any{
			"policy_id": policyID,
			"sector_id": sectorID,
		})
	}
	return policy, nil
}

// lookupsFor batch-fetches the sectors and users referenced by the tickets.
func (s *TicketService) lookupsFor(ctx context.Context, tickets []domain.Ticket) (viewmodel.Lookups, error) {
	sectorList, err := s.sectors.List(ctx)
	if err != nil {
		return viewmodel.Lookups{}, apperrors.MapError(err)
	}
	sectorMap := make(map[string]domain.Sector, len(sectorList))
	for _, sector := range sectorList {
		sectorMap[sector.ID] = sector
	}

	idSet := make(map[string]struct{})
	for _, ticket := range tickets {
		idSet[ticket.RequesterID] = struct{}{}
		if ticket.ResponsibleID != nil {
			idSet[*ticket.ResponsibleID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	userMap, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return viewmodel.Lookups{}, apperrors.MapError(err)
	}
	return viewmodel.MapLookups(sectorMap, userMap), nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID *string, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) {
	newValue := map[string]any{"status": newStatus}
	if comment != "" {
		newValue["comment"] = comment
	}
	s.recordHistory(ctx, actorID, ticketID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus}, newValue)
}

func (s *TicketService) recordHistory(ctx context.Context, actorID *string, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	_ = s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actorID,
		ChangeType:  changeType,
		OldValue:    oldValue,
		NewValue:    newValue,
	})
}

func (s *TicketService) publishStatusChange(ctx context.Context, actor events.Actor, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) {
	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticketID,
		Actor:    actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
