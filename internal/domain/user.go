package domain

import (
	"strings"
	"time"
)

// Role enumerates the closed set of user roles.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "GERENTE"
	RoleEmployee Role = "FUNCIONARIO"
	RoleClient   Role = "CLIENT"
)

// ParseRole canonicalizes free-form role strings. The legacy data mixes
// casings ("Gerente", "GERENTE") and the accented "FUNCIONÁRIO".
func ParseRole(raw string) (Role, bool) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), "Á", "A")
	switch Role(normalized) {
	case RoleAdmin, RoleManager, RoleEmployee, RoleClient:
		return Role(normalized), true
	case "CLIENTE":
		return RoleClient, true
	}
	return "", false
}

// Staff reports whether the role belongs to sector personnel.
func (r Role) Staff() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleEmployee
}

// CanTriage reports whether the role may drive ticket status transitions.
func (r Role) CanTriage() bool {
	return r == RoleAdmin || r == RoleManager
}

// User is the domain model for every principal: clients filing chamados and
// the sector staff triaging them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	SectorID     *string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasSector reports whether the user belongs to a sector.
func (u *User) HasSector() bool {
	return u.SectorID != nil && *u.SectorID != ""
}
