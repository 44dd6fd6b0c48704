// Package lifecycle defines the ticket status state machine: which manual
// transitions an authorized actor may request, and when a ticket expires to
// ATRASADO on its own.
package lifecycle

import (
	"strings"
	"time"

	"github.com/facilitas/chamado-service/internal/domain"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	// AGUARDANDO_PRAZO has no manual transitions: a ticket waiting for a
	// deadline leaves that state only through Reassign, which anchors one.
	domain.TicketStatusAwaitingDeadline: {},
	domain.TicketStatusOpen:             {domain.TicketStatusInProgress, domain.TicketStatusCompleted},
	domain.TicketStatusInProgress:       {domain.TicketStatusCompleted},
	// ATRASADO is terminal for automatic transitions but reopenable by an
	// explicit start or reassignment.
	domain.TicketStatusOverdue:   {domain.TicketStatusInProgress},
	domain.TicketStatusCompleted: {},
}

// CanTransition reports whether a manual move from current to next is legal.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidateCompletionNote enforces the minimum completion description length.
func ValidateCompletionNote(note string) error {
	if len(strings.TrimSpace(note)) < domain.MinCompletionNoteLen {
		return apperrors.NewValidationError("completion description too short", map[string]any{
			"min_length": domain.MinCompletionNoteLen,
		})
	}
	return nil
}

// Start moves a ticket to EM_ANDAMENTO. Allowed only from ABERTO or
// ATRASADO; a ticket in AGUARDANDO_PRAZO must go through Reassign so it
// picks up a deadline.
func Start(ticket *domain.Ticket) error {
	if !CanTransition(ticket.Status, domain.TicketStatusInProgress) {
		return apperrors.NewConflict("ticket cannot be started in current status", map[string]any{
			"status": ticket.Status,
		})
	}
	ticket.Status = domain.TicketStatusInProgress
	return nil
}

// Complete moves a ticket to CONCLUIDO, requiring a completion note of at
// least MinCompletionNoteLen characters. On rejection the ticket is left
// untouched.
func Complete(ticket *domain.Ticket, note string) error {
	if err := ValidateCompletionNote(note); err != nil {
		return err
	}
	if !CanTransition(ticket.Status, domain.TicketStatusCompleted) {
		return apperrors.NewConflict("ticket cannot be completed in current status", map[string]any{
			"status": ticket.Status,
		})
	}
	trimmed := strings.TrimSpace(note)
	ticket.Status = domain.TicketStatusCompleted
	ticket.CompletionNote = &trimmed
	return nil
}

// Reassign sets the responsible party, re-anchors the deadline at now and
// forces EM_ANDAMENTO regardless of prior state. Completed tickets cannot be
// reassigned.
func Reassign(ticket *domain.Ticket, responsibleID string, deadline time.Time) error {
	if ticket.Status == domain.TicketStatusCompleted {
		return apperrors.NewConflict("completed ticket cannot be reassigned", nil)
	}
	ticket.ResponsibleID = &responsibleID
	ticket.Deadline = &deadline
	ticket.Status = domain.TicketStatusInProgress
	return nil
}

// MarkOverdue applies the automatic expiry transition when the deadline has
// passed. It reports whether the ticket actually flipped.
func MarkOverdue(ticket *domain.Ticket, now time.Time) bool {
	if !ticket.OverdueAt(now) {
		return false
	}
	ticket.Status = domain.TicketStatusOverdue
	return true
}
