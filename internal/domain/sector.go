package domain

import (
	"strings"
	"time"
)

// GeneralSectorName is the distinguished sector whose members hold
// cross-sector privileges.
const GeneralSectorName = "GERAL"

// Sector is an organizational unit tickets are filed against.
type Sector struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsGeneral reports whether this is the distinguished general sector.
func (s *Sector) IsGeneral() bool {
	return s != nil && strings.EqualFold(strings.TrimSpace(s.Name), GeneralSectorName)
}
