package postgres

import (
	"context"
	"errors"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type grantRepository struct {
	db *gorm.DB
}

func (r *grantRepository) Get(ctx context.Context, moderatorID uuid.UUID, buyer string) (domain.AccessGrant, error) {
	var rec grantModel
	if err := r.db.WithContext(ctx).
		Where("moderator_id = ?", moderatorID).
		Where("buyer_address = ?", buyer).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AccessGrant{}, domain.ErrNotFound
		}
		return domain.AccessGrant{}, err
	}
	return toDomainGrant(rec), nil
}

func (r *grantRepository) ListByBuyer(ctx context.Context, buyer string) ([]domain.AccessGrant, error) {
	var rows []grantModel
	if err := r.db.WithContext(ctx).
		Where("buyer_address = ?", buyer).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.AccessGrant, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainGrant(row))
	}
	return result, nil
}

// CommitPurchaseTx applies the confirmed purchase once. The revenue row's
// unique source_tx_id detects replays up front; the grant row is locked for
// the extension arithmetic so concurrent purchases of the same grant never
// lose an update.
func (r *grantRepository) CommitPurchaseTx(ctx context.Context, commit ports.PurchaseCommit, event ports.OutboxEvent) (domain.AccessGrant, error) {
	var result domain.AccessGrant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applied int64
		if err := tx.Model(&revenueModel{}).
			Where("source_tx_id = ?", commit.LedgerTxID).
			Count(&applied).Error; err != nil {
			return err
		}
		if applied > 0 {
			var existing grantModel
			if err := tx.Where("moderator_id = ?", commit.ModeratorID).
				Where("buyer_address = ?", commit.BuyerAddress).
				Take(&existing).Error; err != nil {
				return err
			}
			result = toDomainGrant(existing)
			return nil
		}

		seed := grantModel{
			ModeratorID:  commit.ModeratorID,
			BuyerAddress: commit.BuyerAddress,
			Kind:         string(commit.Kind),
			CreatedAt:    commit.ConfirmedAt,
			UpdatedAt:    commit.ConfirmedAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var grant grantModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("moderator_id = ?", commit.ModeratorID).
			Where("buyer_address = ?", commit.BuyerAddress).
			Take(&grant).Error; err != nil {
			return err
		}

		grant.TotalSpent += commit.GrossAmount
		grant.UpdatedAt = commit.ConfirmedAt
		if commit.Kind == domain.GrantKindBuyout || grant.Kind == string(domain.GrantKindBuyout) {
			grant.Kind = string(domain.GrantKindBuyout)
			grant.ExpiresAt = nil
		} else {
			base := commit.ConfirmedAt
			if grant.ExpiresAt != nil && grant.ExpiresAt.After(base) {
				base = *grant.ExpiresAt
			}
			expires := base.Add(commit.ExtendBy)
			grant.Kind = string(commit.Kind)
			grant.ExpiresAt = &expires
		}
		if err := tx.Model(&grantModel{}).
			Where("moderator_id = ?", commit.ModeratorID).
			Where("buyer_address = ?", commit.BuyerAddress).
			Updates(map[string]any{
				"kind":        grant.Kind,
				"expires_at":  grant.ExpiresAt,
				"total_spent": grant.TotalSpent,
				"updated_at":  grant.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		moderatorUpdates := map[string]any{
			"total_transactions": gorm.Expr("total_transactions + 1"),
			"total_revenue":      gorm.Expr("total_revenue + ?", commit.GrossAmount),
			"updated_at":         commit.ConfirmedAt,
		}
		if commit.Kind == domain.GrantKindBuyout {
			moderatorUpdates["current_owner"] = commit.BuyerAddress
		}
		res := tx.Model(&moderatorModel{}).
			Where("moderator_id = ?", commit.ModeratorID).
			Updates(moderatorUpdates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		revenue := revenueModel{
			RecordID:   uuid.New(),
			DAOID:      commit.DAOID,
			Amount:     commit.OwnerShare,
			SourceTxID: commit.LedgerTxID,
			Purpose:    commit.Note,
			RecordedAt: commit.ConfirmedAt,
		}
		if err := tx.Create(&revenue).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		outbox := outboxModel{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      string(event.Payload),
			CreatedAt:    event.OccurredAt,
		}
		if err := tx.Create(&outbox).Error; err != nil {
			return err
		}

		result = toDomainGrant(grant)
		return nil
	})
	if err != nil {
		return domain.AccessGrant{}, err
	}
	return result, nil
}

type revenueRepository struct {
	db *gorm.DB
}

func (r *revenueRepository) ListByDAO(ctx context.Context, daoID uuid.UUID, limit, offset int) ([]domain.RevenueRecord, error) {
	var rows []revenueModel
	if err := r.db.WithContext(ctx).
		Where("dao_id = ?", daoID).
		Order("recorded_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.RevenueRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainRevenue(row))
	}
	return result, nil
}

func (r *revenueRepository) TotalByDAO(ctx context.Context, daoID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&revenueModel{}).
		Where("dao_id = ?", daoID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
