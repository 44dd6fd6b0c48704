// Package authz is the single permission evaluator. Every visibility or
// mutation rule lives here; handlers and services consult it instead of
// re-deriving role checks per endpoint.
package authz

import "github.com/facilitas/chamado-service/internal/domain"

// Actor is the acting principal plus the resolved general-sector flag.
// InGeneralSector is resolved once when the principal is loaded, not
// re-derived per check.
type Actor struct {
	UserID          string
	Role            domain.Role
	SectorID        *string
	InGeneralSector bool
}

func (a Actor) hasSector() bool {
	return a.SectorID != nil && *a.SectorID != ""
}

func (a Actor) sameSector(sectorID string) bool {
	return a.hasSector() && *a.SectorID == sectorID
}

// CanViewTicket: sector staff see everything; clients see only their own.
func CanViewTicket(actor Actor, ticket *domain.Ticket) bool {
	if actor.Role.Staff() {
		return true
	}
	return ticket.RequesterID == actor.UserID
}

// CanEditTicket gates status transitions: ADMIN/GERENTE with a sector.
func CanEditTicket(actor Actor) bool {
	return actor.Role.CanTriage() && actor.hasSector()
}

// CanAssignTicket gates setting a responsible party: ADMIN/GERENTE while the
// ticket still awaits triage (ABERTO or AGUARDANDO_PRAZO).
func CanAssignTicket(actor Actor, ticket *domain.Ticket) bool {
	if !actor.Role.CanTriage() {
		return false
	}
	return ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusAwaitingDeadline
}

// CanDeleteTicket: anyone who can edit, or a sectorless requester deleting
// their own ticket.
func CanDeleteTicket(actor Actor, ticket *domain.Ticket) bool {
	if CanEditTicket(actor) {
		return true
	}
	return !actor.hasSector() && ticket.RequesterID == actor.UserID
}

// CanManageSectorOrPolicy gates create/edit/delete of sectors and deadline
// policies. targetSectorID nil means the target is unscoped. General-sector
// ADMIN/GERENTE manage everything; otherwise the target must be unscoped or
// belong to the actor's own sector. CLIENT never qualifies.
func CanManageSectorOrPolicy(actor Actor, targetSectorID *string) bool {
	if !actor.Role.CanTriage() {
		return false
	}
	if actor.InGeneralSector {
		return true
	}
	if targetSectorID == nil || *targetSectorID == "" {
		return true
	}
	return actor.sameSector(*targetSectorID)
}

// Flags bundles the evaluator outputs attached to every view-model.
type Flags struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanAssign bool `json:"can_assign"`
	CanDelete bool `json:"can_delete"`
}

// Evaluate computes all ticket capability flags for the actor.
func Evaluate(actor Actor, ticket *domain.Ticket) Flags {
	return Flags{
		CanView:   CanViewTicket(actor, ticket),
		CanEdit:   CanEditTicket(actor),
		CanAssign: CanAssignTicket(actor, ticket),
		CanDelete: CanDeleteTicket(actor, ticket),
	}
}
