package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/authz"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/repository"
	"github.com/facilitas/chamado-service/internal/sla"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// DeadlinePolicyService manages reusable deadline templates.
type DeadlinePolicyService struct {
	policies repository.DeadlinePolicyRepository
	sectors  repository.SectorRepository
}

// NewDeadlinePolicyService builds the service.
func NewDeadlinePolicyService(policies repository.DeadlinePolicyRepository, sectors repository.SectorRepository) *DeadlinePolicyService {
	return &DeadlinePolicyService{policies: policies, sectors: sectors}
}

// PolicyInput describes create/update payloads. Duration accepts the
// ISO-like encodings and the legacy "HH:MM" clock form; it is normalized to
// the canonical PT<n>M before storage.
type PolicyInput struct {
	Title    string
	SectorID *string
	Duration string
}

// ListPolicies returns the policies visible to the caller's sector.
func (s *DeadlinePolicyService) ListPolicies(ctx context.Context, principal *auth.Principal) ([]domain.DeadlinePolicy, error) {
	var scope *string
	if !principal.InGeneralSector && principal.User.HasSector() {
		scope = principal.User.SectorID
	}
	policies, err := s.policies.ListForSector(ctx, scope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

// CreatePolicy adds a deadline template.
func (s *DeadlinePolicyService) CreatePolicy(ctx context.Context, principal *auth.Principal, input PolicyInput) (*domain.DeadlinePolicy, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), input.SectorID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	policy := &domain.DeadlinePolicy{
		Title:    strings.TrimSpace(input.Title),
		SectorID: input.SectorID,
		Duration: sla.NormalizeDuration(input.Duration),
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

// UpdatePolicy edits a deadline template.
func (s *DeadlinePolicyService) UpdatePolicy(ctx context.Context, principal *auth.Principal, id string, input PolicyInput) (*domain.DeadlinePolicy, error) {
	policy, err := s.getPolicy(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), policy.SectorID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), input.SectorID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	policy.Title = strings.TrimSpace(input.Title)
	policy.SectorID = input.SectorID
	policy.Duration = sla.NormalizeDuration(input.Duration)
	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

// DeletePolicy removes a deadline template.
func (s *DeadlinePolicyService) DeletePolicy(ctx context.Context, principal *auth.Principal, id string) error {
	policy, err := s.getPolicy(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), policy.SectorID) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.policies.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *DeadlinePolicyService) validate(ctx context.Context, input *PolicyInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}
	if strings.TrimSpace(input.Duration) == "" {
		return apperrors.NewValidationError("duration required", nil)
	}
	if input.SectorID != nil && *input.SectorID == "" {
		input.SectorID = nil
	}
	if input.SectorID != nil {
		if _, err := s.sectors.GetByID(ctx, *input.SectorID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("sector", map[string]any{"sector_id": *input.SectorID})
			}
			return apperrors.MapError(err)
		}
	}
	return nil
}

func (s *DeadlinePolicyService) getPolicy(ctx context.Context, id string) (*domain.DeadlinePolicy, error) {
	policy, err := s.policies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("deadline policy", map[string]any{"policy_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}
