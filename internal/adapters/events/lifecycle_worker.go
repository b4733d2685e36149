package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/citadelx/marketplace/internal/application"
)

// LifecycleWorker periodically rejects expired proposals and re-evaluates
// pending DAO activations. Both sweeps back up the lazy, read-triggered paths
// so time-based transitions land even when nobody reads.
type LifecycleWorker struct {
	logger    *slog.Logger
	service   *application.Service
	interval  time.Duration
	batchSize int
}

func NewLifecycleWorker(logger *slog.Logger, service *application.Service, interval time.Duration, batchSize int) *LifecycleWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &LifecycleWorker{
		logger:    logger,
		service:   service,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (w *LifecycleWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if rejected, err := w.service.SweepExpiredProposals(ctx); err != nil {
			w.logger.ErrorContext(ctx, "expired proposal sweep failed",
				"module", "events.lifecycle_worker",
				"layer", "adapter",
				"operation", "sweep_expired_proposals",
				"outcome", "failure",
				"error", err,
			)
		} else if rejected > 0 {
			w.logger.InfoContext(ctx, "expired proposals rejected",
				"module", "events.lifecycle_worker",
				"layer", "adapter",
				"operation", "sweep_expired_proposals",
				"outcome", "success",
				"rejected_count", rejected,
			)
		}

		if err := w.service.SweepPendingActivations(ctx, w.batchSize); err != nil {
			w.logger.ErrorContext(ctx, "pending activation sweep failed",
				"module", "events.lifecycle_worker",
				"layer", "adapter",
				"operation", "sweep_pending_activations",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
