package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus      TicketChangeType = "STATUS_CHANGE"
	ChangeTypeResponsible TicketChangeType = "RESPONSIBLE_CHANGE"
	ChangeTypeDeadline    TicketChangeType = "DEADLINE_CHANGE"
)

// TicketHistory is an immutable audit trail entry. ChangedByID is nil when
// the system itself drove the change (deadline expiry).
type TicketHistory struct {
	ID          string
	TicketID    string
	ChangedByID *string
	ChangeType  TicketChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
