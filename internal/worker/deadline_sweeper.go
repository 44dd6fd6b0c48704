package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/facilitas/chamado-service/internal/config"
	"github.com/facilitas/chamado-service/internal/observability"
	"github.com/facilitas/chamado-service/internal/persistence"
	"github.com/facilitas/chamado-service/internal/service"
)

// sweepLockTTL covers one ticket expiry so concurrent instances do not both
// publish the expiry event for the same ticket.
const sweepLockTTL = 30 * time.Second

// DeadlineSweeper periodically scans for tickets whose deadline passed and
// flips them to ATRASADO on the server, so clients only ever read the status
// instead of computing it.
type DeadlineSweeper struct {
	tickets *service.TicketService
	locks   *redis.Client
	metrics *observability.Metrics
	logger  *zap.Logger
	cfg     config.SLAConfig
}

// NewDeadlineSweeper builds the sweeper. locks may be nil when running a
// single instance; dedupe is then skipped.
func NewDeadlineSweeper(tickets *service.TicketService, locks *redis.Client, metrics *observability.Metrics, logger *zap.Logger, cfg config.SLAConfig) *DeadlineSweeper {
	return &DeadlineSweeper{
		tickets: tickets,
		locks:   locks,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Run blocks sweeping on the configured interval until ctx is canceled.
func (w *DeadlineSweeper) Run(ctx context.Context) {
	interval := w.cfg.SweepInterval()
	w.logger.Info("deadline sweeper started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deadline sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *DeadlineSweeper) sweep(ctx context.Context) {
	now := time.Now().UTC()
	ids, err := w.tickets.ListExpiredIDs(ctx, now, w.cfg.SweepBatchSize)
	if err != nil {
		w.logger.Error("deadline sweep query failed", zap.Error(err))
		return
	}

	expired := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if !w.acquire(ctx, id) {
			continue
		}
		changed, err := w.tickets.ExpireTicket(ctx, id, now)
		if err != nil {
			w.logger.Error("ticket expiry failed", zap.String("ticket_id", id), zap.Error(err))
			continue
		}
		if changed {
			expired++
			w.logger.Info("ticket expired", zap.String("ticket_id", id), zap.Time("swept_at", now))
		}
	}

	if w.metrics != nil {
		w.metrics.RecordSweep(expired)
		if expired > 0 {
			sweeps, total := w.metrics.SweepTotals()
			w.logger.Info("sweep pass finished",
				zap.Int("expired_now", expired),
				zap.Int64("sweeps_total", sweeps),
				zap.Int64("expired_total", total))
		}
	}
}

// acquire takes a short-lived Redis lock for one ticket expiry. Lock
// failures fall open: a lost race is caught by the version check in the
// ticket update anyway.
func (w *DeadlineSweeper) acquire(ctx context.Context, ticketID string) bool {
	if w.locks == nil {
		return true
	}
	ok, err := w.locks.SetNX(ctx, persistence.SweepLockKey(ticketID), 1, sweepLockTTL).Result()
	if err != nil {
		w.logger.Debug("sweep lock unavailable", zap.String("ticket_id", ticketID), zap.Error(err))
		return true
	}
	return ok
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
