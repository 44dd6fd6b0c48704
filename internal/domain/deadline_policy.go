package domain

import "time"

// DeadlinePolicy is a reusable duration template ("Alta Prioridade" → 1h)
// used to anchor a ticket's absolute deadline. A nil SectorID means the
// policy applies to every sector.
type DeadlinePolicy struct {
	ID        string
	Title     string
	SectorID  *string
	Duration  string // ISO-8601-like encoding, canonical form PT<n>M
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unscoped reports whether the policy applies to all sectors.
func (p *DeadlinePolicy) Unscoped() bool {
	return p.SectorID == nil || *p.SectorID == ""
}
