package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for chamados.
type TicketStatus string

const (
	// TicketStatusAwaitingDeadline marks tickets created without a deadline
	// policy; they hold here until a manager assigns one.
	TicketStatusAwaitingDeadline TicketStatus = "AGUARDANDO_PRAZO"
	TicketStatusOpen             TicketStatus = "ABERTO"
	TicketStatusInProgress       TicketStatus = "EM_ANDAMENTO"
	TicketStatusCompleted        TicketStatus = "CONCLUIDO"
	TicketStatusOverdue          TicketStatus = "ATRASADO"
)

var statusReplacer = strings.NewReplacer("Í", "I", "Ã", "A", " ", "_")

// ParseTicketStatus is the single canonicalization point for status values.
// Legacy data carries mixed casing and accented display labels
// ("Concluído", "Em Andamento"); everything funnels through here at the
// ingestion boundary.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	normalized := statusReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
	switch TicketStatus(normalized) {
	case TicketStatusAwaitingDeadline, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusCompleted, TicketStatusOverdue:
		return TicketStatus(normalized), true
	}
	return "", false
}

// Terminal reports whether automatic transitions may leave this status.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusOverdue
}

// MinCompletionNoteLen is the shortest accepted completion description.
const MinCompletionNoteLen = 20

// Ticket is the aggregate for support requests filed against a sector.
type Ticket struct {
	ID             string
	Title          string
	Description    string
	CompletionNote *string
	SectorID       string
	RequesterID    string
	ResponsibleID  *string
	Status         TicketStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Deadline       *time.Time
	Version        int64
}

// HasDeadline reports whether an absolute deadline has been anchored.
func (t *Ticket) HasDeadline() bool {
	return t.Deadline != nil && !t.Deadline.IsZero()
}

// OverdueAt reports whether the ticket should flip to ATRASADO at now.
// Completed and already-overdue tickets never flip again.
func (t *Ticket) OverdueAt(now time.Time) bool {
	if t.Status.Terminal() || !t.HasDeadline() {
		return false
	}
	return now.After(*t.Deadline)
}
