package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/facilitas/chamado-service/internal/auth"
	"github.com/facilitas/chamado-service/internal/domain"
	"github.com/facilitas/chamado-service/internal/persistence"
	"github.com/facilitas/chamado-service/internal/repository"

	apperrors "github.com/facilitas/chamado-service/pkg/util"
)

// DashboardSummary aggregates ticket counts for the caller's scope.
type DashboardSummary struct {
	SectorID        *string          `json:"sector_id,omitempty"`
	Total           int64            `json:"total"`
	CountsByStatus  map[string]int64 `json:"counts_by_status"`
	OpenCount       int64            `json:"open_count"`
	InProgressCount int64            `json:"in_progress_count"`
	CompletedCount  int64            `json:"completed_count"`
	OverdueCount    int64            `json:"overdue_count"`
	PendingCount    int64            `json:"pending_count"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// DashboardService serves aggregate counts, cached briefly in Redis so a
// dashboard polling every second does not hammer Postgres.
type DashboardService struct {
	tickets  repository.TicketRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService builds the service. cache may be nil, in which case
// every call hits the database.
func NewDashboardService(tickets repository.TicketRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		tickets:  tickets,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Summary returns counts scoped to the caller: general-sector staff and
// clients see the global picture (clients are filtered per-ticket at list
// time, counts stay coarse), other staff see only their sector.
func (s *DashboardService) Summary(ctx context.Context, principal *auth.Principal) (*DashboardSummary, error) {
	var scope *string
	if principal.User.Role.Staff() && !principal.InGeneralSector && principal.User.HasSector() {
		scope = principal.User.SectorID
	}

	key := persistence.DashboardSummaryKey(scope)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	counts, err := s.tickets.CountByStatus(ctx, scope)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := &DashboardSummary{
		SectorID:       scope,
		CountsByStatus: make(map[string]int64, len(counts)),
		GeneratedAt:    s.now().UTC(),
	}
	for status, count := range counts {
		summary.CountsByStatus[string(status)] = count
		summary.Total += count
	}
	summary.OpenCount = counts[domain.TicketStatusOpen]
	summary.InProgressCount = counts[domain.TicketStatusInProgress]
	summary.CompletedCount = counts[domain.TicketStatusCompleted]
	summary.OverdueCount = counts[domain.TicketStatusOverdue]
	summary.PendingCount = counts[domain.TicketStatusAwaitingDeadline]

	s.toCache(ctx, key, summary)
	return summary, nil
}

func (s *DashboardService) fromCache(ctx context.Context, key string) *DashboardSummary {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var summary DashboardSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil
	}
	return &summary
}

func (s *DashboardService) toCache(ctx context.Context, key string, summary *DashboardSummary) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
