// Package viewmodel joins raw records into the enriched ticket objects every
// list and detail surface consumes. Assembly is pure: lookups are supplied
// by the caller and missing foreign keys degrade to placeholders.
package viewmodel

import (
	"sort"
	"time"

	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/sla"
)

// Placeholders for unresolved foreign keys.
const (
	SectorNotFound = "Setor não encontrado"
	Unassigned     = "Não atribuído"
)

// PersonRef is the slim user projection embedded in view-models.
type PersonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SectorRef is the slim sector projection embedded in view-models.
type SectorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TicketWithDetails is the derived, never-persisted enrichment of a ticket.
type TicketWithDetails struct {
	Ticket              domain.Ticket
	Sector              SectorRef
	Requester           PersonRef
	Responsible         *PersonRef
	PercentageRemaining int
	RemainingLabel      string
	Permissions         authz.Flags
}

// Lookups supplies FK resolution. Either function may return nil for
// unknown ids.
type Lookups struct {
	Sector func(id string) *domain.Sector
	User   func(id string) *domain.User
}

// MapLookups builds Lookups over plain maps, the shape the persistence
// gateway hands over after a batch fetch.
func MapLookups(sectors map[string]domain.Sector, users map[string]domain.User) Lookups {
	return Lookups{
		Sector: func(id string) *domain.Sector {
			if s, ok := sectors[id]; ok {
				return &s
			}
			return nil
		},
		User: func(id string) *domain.User {
			if u, ok := users[id]; ok {
				return &u
			}
			return nil
		},
	}
}

// AssembleTicket resolves foreign keys, computes the SLA-derived fields and
// attaches the actor's permission flags. Unresolved references never panic;
// they surface as placeholder values.
func AssembleTicket(ticket domain.Ticket, lookups Lookups, actor authz.Actor, now time.Time) TicketWithDetails {
	vm := TicketWithDetails{
		Ticket:      ticket,
		Sector:      SectorRef{ID: ticket.SectorID, Name: SectorNotFound},
		Requester:   PersonRef{ID: ticket.RequesterID},
		Permissions: authz.Evaluate(actor, &ticket),
	}

	if lookups.Sector != nil {
		if sector := lookups.Sector(ticket.SectorID); sector != nil {
			vm.Sector = SectorRef{ID: sector.ID, Name: sector.Name}
		}
	}
	if lookups.User != nil {
		if requester := lookups.User(ticket.RequesterID); requester != nil {
			vm.Requester.Name = requester.Name
		}
		if ticket.ResponsibleID != nil {
			if responsible := lookups.User(*ticket.ResponsibleID); responsible != nil {
				vm.Responsible = &PersonRef{ID: responsible.ID, Name: responsible.Name}
			}
		}
	}

	if ticket.HasDeadline() {
		vm.PercentageRemaining = sla.PercentageRemaining(ticket.CreatedAt, *ticket.Deadline, now, ticket.Status)
		vm.RemainingLabel = sla.FormatRemaining(*ticket.Deadline, now)
	} else if ticket.Status == domain.TicketStatusCompleted {
		vm.PercentageRemaining = 100
	}
	return vm
}

// ResponsibleLabel returns the display name for the responsible party.
func (vm TicketWithDetails) ResponsibleLabel() string {
	if vm.Responsible == nil {
		return Unassigned
	}
	return vm.Responsible.Name
}

// AssembleList maps a raw collection into view-models ordered by createdAt
// descending (stable). CLIENT actors only see their own tickets.
func AssembleList(tickets []domain.Ticket, lookups Lookups, actor authz.Actor, now time.Time) []TicketWithDetails {
	result := make([]TicketWithDetails, 0, len(tickets))
	for _, ticket := range tickets {
		if actor.Role == domain.RoleClient && ticket.RequesterID != actor.UserID {
			continue
		}
		result = append(result, AssembleTicket(ticket, lookups, actor, now))
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Ticket.CreatedAt.After(result[j].Ticket.CreatedAt)
	})
	return result
}
