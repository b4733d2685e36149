package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reconciliationRepository struct {
	db *gorm.DB
}

func (r *reconciliationRepository) Enqueue(ctx context.Context, record ports.ReconciliationRecord) error {
	rec := reconciliationModel{
		ID:         record.ID,
		Action:     string(record.Action),
		LedgerTxID: record.LedgerTxID,
		AssetID:    record.AssetID,
		Payload:    string(record.Payload),
		CreatedAt:  record.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *reconciliationRepository) ClaimPending(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.ReconciliationRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	if claimToken == "" {
		return nil, fmt.Errorf("claim token is required")
	}

	now := time.Now().UTC()
	var rows []reconciliationModel
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subquery := tx.Model(&reconciliationModel{}).
			Select("id").
			Where("completed_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Where("claim_until IS NULL OR claim_until < ?", now).
			Order("created_at ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})

		if err := tx.Model(&reconciliationModel{}).
			Where("id IN (?)", subquery).
			Updates(map[string]any{
				"claim_token": claimToken,
				"claim_until": claimUntil,
			}).Error; err != nil {
			return err
		}

		return tx.Where("claim_token = ?", claimToken).
			Where("completed_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Order("created_at ASC").
			Find(&rows).Error
	}); err != nil {
		return nil, err
	}

	result := make([]ports.ReconciliationRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toReconciliationRecord(row))
	}
	return result, nil
}

func (r *reconciliationRepository) MarkCompleted(ctx context.Context, id uuid.UUID, claimToken string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&reconciliationModel{}).
		Where("id = ?", id).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"completed_at": at,
			"claim_token":  nil,
			"claim_until":  nil,
		}).Error
}

func (r *reconciliationRepository) MarkFailed(ctx context.Context, id uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&reconciliationModel{}).
		Where("id = ?", id).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
			"claim_token":   nil,
			"claim_until":   nil,
		}).Error
}

func (r *reconciliationRepository) MarkDeadLettered(ctx context.Context, id uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&reconciliationModel{}).
		Where("id = ?", id).
		Where("claim_token = ?", claimToken).
		Updates(map[string]any{
			"retry_count":      gorm.Expr("retry_count + 1"),
			"last_error":       errMsg,
			"last_error_at":    at,
			"dead_lettered_at": at,
			"claim_token":      nil,
			"claim_until":      nil,
		}).Error
}
