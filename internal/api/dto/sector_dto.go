package dto

import "github.com/facilitas/chamado-service/internal/domain"

// SectorRequest creates or renames a sector.
type SectorRequest struct {
	Nome string `json:"nome"`
}

// NewSectorResponse maps a domain sector.
func NewSectorResponse(sector *domain.Sector) SectorResponse {
	return SectorResponse{ID: sector.ID, Nome: sector.Name}
}

// NewSectorListResponse maps a sector slice.
func NewSectorListResponse(sectors []domain.Sector) []SectorResponse {
	out := make([]SectorResponse, 0, len(sectors))
	for i := range sectors {
		out = append(out, NewSectorResponse(&sectors[i]))
	}
	return out
}

// DeadlinePolicyRequest creates or edits a deadline template. Duracao
// accepts PT<n>S/M/H, P<n>D or the legacy "HH:MM" clock form.
type DeadlinePolicyRequest struct {
	Titulo  string  `json:"titulo"`
	SetorID *string `json:"setor_id,omitempty"`
	Duracao string  `json:"duracao"`
}

// DeadlinePolicyResponse projection. Duracao is always the canonical
// PT<n>M encoding.
type DeadlinePolicyResponse struct {
	ID      string  `json:"id"`
	Titulo  string  `json:"titulo"`
	SetorID *string `json:"setor_id,omitempty"`
	Duracao string  `json:"duracao"`
}

// NewDeadlinePolicyResponse maps a domain policy.
func NewDeadlinePolicyResponse(policy *domain.DeadlinePolicy) DeadlinePolicyResponse {
	return DeadlinePolicyResponse{
		ID:      policy.ID,
		Titulo:  policy.Title,
		SetorID: policy.SectorID,
		Duracao: policy.Duration,
	}
}

// NewDeadlinePolicyListResponse maps a policy slice.
func NewDeadlinePolicyListResponse(policies []domain.DeadlinePolicy) []DeadlinePolicyResponse {
	out := make([]DeadlinePolicyResponse, 0, len(policies))
	for i := range policies {
		out = append(out, NewDeadlinePolicyResponse(&policies[i]))
	}
	return out
}
