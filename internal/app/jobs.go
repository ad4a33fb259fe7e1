package app

import (
	"context"
	"time"

	"github.com/garyellow/vkbot-go/internal/config"
)

const dedupCleanupJob = "dedup_cleanup"

// dedupCleanup removes expired event ids: once shortly after startup,
// then every DedupCleanupInterval until ctx is canceled.
func (a *Application) dedupCleanup(ctx context.Context) {
	a.logger.Debug("Dedup cleanup job started")
	defer a.logger.Debug("Dedup cleanup job stopped")

	select {
	case <-ctx.Done():
		return
	case <-time.After(config.DedupCleanupInitialDelay):
		a.runDedupCleanup(ctx)
	}

	ticker := time.NewTicker(a.cfg.DedupCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runDedupCleanup(ctx)
		}
	}
}

// runDedupCleanup performs one cleanup pass. Failures are logged; the job
// keeps running.
func (a *Application) runDedupCleanup(ctx context.Context) {
	start := time.Now()

	deleted, err := a.db.DeleteExpiredEvents(ctx)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		a.logger.WithError(err).ErrorContext(ctx, "Failed to cleanup expired events")
	} else {
		a.logger.WithField("deleted", deleted).
			WithField("duration_ms", duration.Milliseconds()).
			InfoContext(ctx, "Dedup cleanup completed")
	}

	if a.metrics != nil {
		a.metrics.RecordJob(dedupCleanupJob, status, duration.Seconds())
	}
}
