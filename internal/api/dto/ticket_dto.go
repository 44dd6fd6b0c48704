// Package dto defines the JSON wire contracts. Field names keep the
// Portuguese identifiers the existing front-end already sends and renders.
package dto

import (
	"time"

	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/viewmodel"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Titulo        string  `json:"titulo"`
	Descricao     string  `json:"descricao"`
	SetorID       string  `json:"setor_id"`
	SolicitanteID *string `json:"solicitante_id,omitempty"`
	PrazoID       *string `json:"prazo_id,omitempty"`
}

// AssignTicketRequest payload for triage.
type AssignTicketRequest struct {
	ResponsavelID string `json:"responsavel_id"`
	PrazoID       string `json:"prazo_id"`
}

// CompleteTicketRequest payload.
type CompleteTicketRequest struct {
	DescricaoConclusao string `json:"descricao_conclusao"`
}

// PersonResponse is the slim user projection on ticket payloads.
type PersonResponse struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// SectorResponse projection.
type SectorResponse struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// TicketResponse is the enriched ticket payload.
type TicketResponse struct {
	ID                  string              `json:"id"`
	Titulo              string              `json:"titulo"`
	Descricao           string              `json:"descricao"`
	DescricaoConclusao  *string             `json:"descricao_conclusao,omitempty"`
	Status              domain.TicketStatus `json:"status"`
	Setor               SectorResponse      `json:"setor"`
	Solicitante         PersonResponse      `json:"solicitante"`
	Responsavel         *PersonResponse     `json:"responsavel,omitempty"`
	ResponsavelNome     string              `json:"responsavel_nome"`
	Prazo               *time.Time          `json:"prazo,omitempty"`
	PorcentagemRestante int                 `json:"porcentagem_restante"`
	TempoRestante       string              `json:"tempo_restante,omitempty"`
	Permissoes          authz.Flags         `json:"permissoes"`
	CriadoEm            time.Time           `json:"criado_em"`
	AtualizadoEm        time.Time           `json:"atualizado_em"`
	Version             int64               `json:"version"`
}

// NewTicketResponse maps the assembled view-model onto the wire shape.
func NewTicketResponse(vm viewmodel.TicketWithDetails) TicketResponse {
	resp := TicketResponse{
		ID:                  vm.Ticket.ID,
		Titulo:              vm.Ticket.Title,
		Descricao:           vm.Ticket.Description,
		DescricaoConclusao:  vm.Ticket.CompletionNote,
		Status:              vm.Ticket.Status,
		Setor:               SectorResponse{ID: vm.Sector.ID, Nome: vm.Sector.Name},
		Solicitante:         PersonResponse{ID: vm.Requester.ID, Nome: vm.Requester.Name},
		ResponsavelNome:     vm.ResponsibleLabel(),
		Prazo:               vm.Ticket.Deadline,
		PorcentagemRestante: vm.PercentageRemaining,
		TempoRestante:       vm.RemainingLabel,
		Permissoes:          vm.Permissions,
		CriadoEm:            vm.Ticket.CreatedAt,
		AtualizadoEm:        vm.Ticket.UpdatedAt,
		Version:             vm.Ticket.Version,
	}
	if vm.Responsible != nil {
		resp.Responsavel = &PersonResponse{ID: vm.Responsible.ID, Nome: vm.Responsible.Name}
	}
	return resp
}

// NewTicketListResponse maps a view-model slice.
func NewTicketListResponse(vms []viewmodel.TicketWithDetails) []TicketResponse {
	out := make([]TicketResponse, 0, len(vms))
	for _, vm := range vms {
		out = append(out, NewTicketResponse(vm))
	}
	return out
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	TicketID    string                  `json:"ticket_id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID *string                 `json:"changed_by_id,omitempty"`
	OldValue    map[string]any          `json:"old_value,omitempty"`
	NewValue    map[string]any          `json:"new_value,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// NewTicketHistoryResponse maps audit rows.
func NewTicketHistoryResponse(entries []domain.TicketHistory) []TicketHistoryResponse {
	out := make([]TicketHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TicketHistoryResponse{
			ID:          e.ID,
			TicketID:    e.TicketID,
			ChangeType:  e.ChangeType,
			ChangedByID: e.ChangedByID,
			OldValue:    e.OldValue,
			NewValue:    e.NewValue,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}
