package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/citadelx/marketplace/internal/application"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// ReconciliationWorker replays parked off-chain commits: records written when
// a ledger transaction confirmed but the database write behind it failed.
// Replays are idempotent, so a record claimed twice (after a crash mid-batch)
// converges to the same state.
type ReconciliationWorker struct {
	logger     *slog.Logger
	queue      ports.ReconciliationRepository
	service    *application.Service
	interval   time.Duration
	batchSize  int
	claimTTL   time.Duration
	maxRetries int
}

func NewReconciliationWorker(
	logger *slog.Logger,
	queue ports.ReconciliationRepository,
	service *application.Service,
	interval time.Duration,
	batchSize int,
	claimTTL time.Duration,
	maxRetries int,
) *ReconciliationWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if claimTTL <= 0 {
		claimTTL = time.Minute
	}
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &ReconciliationWorker{
		logger:     logger,
		queue:      queue,
		service:    service,
		interval:   interval,
		batchSize:  batchSize,
		claimTTL:   claimTTL,
		maxRetries: maxRetries,
	}
}

// Run executes the periodic reconciliation sweep until context cancellation.
func (w *ReconciliationWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.processOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "reconciliation iteration failed",
				"module", "events.reconciliation_worker",
				"layer", "adapter",
				"operation", "reconcile_process_once",
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

func (w *ReconciliationWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	records, err := w.queue.ClaimPending(ctx, w.batchSize, claimToken, time.Now().UTC().Add(w.claimTTL))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	completed := 0
	failed := 0
	deadLettered := 0
	for _, rec := range records {
		if rec.RetryCount >= w.maxRetries {
			deadLettered++
			w.logger.ErrorContext(ctx, "reconciliation record moved to dlq",
				"module", "events.reconciliation_worker",
				"layer", "adapter",
				"operation", "recover_commit",
				"outcome", "failure",
				"record_id", rec.ID,
				"action", rec.Action,
				"ledger_tx_id", rec.LedgerTxID,
				"retry_count", rec.RetryCount,
			)
			_ = w.queue.MarkDeadLettered(ctx, rec.ID, claimToken, "retry threshold reached", now)
			continue
		}

		if err := w.service.Recover(ctx, rec); err != nil {
			failed++
			w.logger.WarnContext(ctx, "reconciliation replay failed; retry scheduled",
				"module", "events.reconciliation_worker",
				"layer", "adapter",
				"operation", "recover_commit",
				"outcome", "failure",
				"record_id", rec.ID,
				"action", rec.Action,
				"ledger_tx_id", rec.LedgerTxID,
				"retry_count", rec.RetryCount+1,
				"error", err,
			)
			_ = w.queue.MarkFailed(ctx, rec.ID, claimToken, err.Error(), now)
			continue
		}
		completed++
		_ = w.queue.MarkCompleted(ctx, rec.ID, claimToken, now)
	}
	if len(records) > 0 {
		w.logger.InfoContext(ctx, "reconciliation batch processed",
			"module", "events.reconciliation_worker",
			"layer", "adapter",
			"operation", "reconcile_process_once",
			"outcome", "success",
			"batch_size", len(records),
			"completed_count", completed,
			"failed_count", failed,
			"dead_lettered_count", deadLettered,
		)
	}
	return nil
}
