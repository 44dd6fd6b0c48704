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

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// SectorService manages organizational sectors.
type SectorService struct {
	sectors repository.SectorRepository
	users   repository.UserRepository
}

// NewSectorService builds the service.
func NewSectorService(sectors repository.SectorRepository, users repository.UserRepository) *SectorService {
	return &SectorService{sectors: sectors, users: users}
}

// ListSectors returns every sector; any authenticated caller may read them
// (ticket forms need the full list).
func (s *SectorService) ListSectors(ctx context.Context) ([]domain.Sector, error) {
	sectors, err := s.sectors.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sectors, nil
}

// CreateSector adds a new sector.
func (s *SectorService) CreateSector(ctx context.Context, principal *auth.Principal, name string) (*domain.Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), nil) {
		return nil, apperrors.NewForbidden("access denied")
	}
	sector := &domain.Sector{Name: name}
	if err := s.sectors.Create(ctx, sector); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// UpdateSector renames a sector.
func (s *SectorService) UpdateSector(ctx context.Context, principal *auth.Principal, id, name string) (*domain.Sector, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	sector, err := s.getSector(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), &sector.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	sector.Name = name
	if err := s.sectors.Update(ctx, sector); err != nil {
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}

// ListSectorUsers returns the users attached to a sector, for the
// assignment picker. Staff only; clients have no business enumerating a
// sector's personnel.
func (s *SectorService) ListSectorUsers(ctx context.Context, principal *auth.Principal, sectorID string) ([]domain.User, error) {
	if !principal.User.Role.Staff() {
		return nil, apperrors.NewForbidden("access denied")
	}
	if _, err := s.getSector(ctx, sectorID); err != nil {
		return nil, err
	}
	users, err := s.users.ListBySector(ctx, sectorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// DeleteSector removes a sector.
func (s *SectorService) DeleteSector(ctx context.Context, principal *auth.Principal, id string) error {
	sector, err := s.getSector(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanManageSectorOrPolicy(principal.Actor(), &sector.ID) {
		return apperrors.NewForbidden("access denied")
	}
	if err := s.sectors.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *SectorService) getSector(ctx context.Context, id string) (*domain.Sector, error) {
	sector, err := s.sectors.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sector", map[string]any{"sector_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return sector, nil
}
