package events

import (
	"time"

	"github.com/facilitas/chamado-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketExpired       EventType = "ticket_expired"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor encapsulates actor metadata for an event. UserID is nil for
// system-driven events such as deadline expiry.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// SystemActor marks events fired without a human principal.
func SystemActor() Actor {
	return Actor{}
}

// UserActor builds actor metadata for the given principal.
func UserActor(user *domain.User) Actor {
	if user == nil {
		return SystemActor()
	}
	id := user.ID
	return Actor{UserID: &id, Role: user.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	SectorID string              `json:"sector_id"`
	Title    string              `json:"title"`
	Status   domain.TicketStatus `json:"status"`
	Deadline *time.Time          `json:"deadline,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	ResponsibleID string     `json:"responsible_id"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	PolicyID      *string    `json:"policy_id,omitempty"`
}

// TicketExpiredPayload payload.
type TicketExpiredPayload struct {
	Deadline  time.Time           `json:"deadline"`
	OldStatus domain.TicketStatus `json:"old_status"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	SectorID string `json:"sector_id"`
}
