package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type moderatorRepository struct {
	db *gorm.DB
}

func (r *moderatorRepository) GetByID(ctx context.Context, moderatorID uuid.UUID) (domain.Moderator, error) {
	var rec moderatorModel
	if err := r.db.WithContext(ctx).Where("moderator_id = ?", moderatorID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Moderator{}, domain.ErrNotFound
		}
		return domain.Moderator{}, err
	}
	return toDomainModerator(rec), nil
}

func (r *moderatorRepository) List(ctx context.Context, status domain.ModeratorStatus, limit, offset int) ([]domain.Moderator, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []moderatorModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Moderator, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainModerator(row))
	}
	return result, nil
}

func (r *moderatorRepository) ListByDAO(ctx context.Context, daoID uuid.UUID) ([]domain.Moderator, error) {
	var rows []moderatorModel
	if err := r.db.WithContext(ctx).
		Where("dao_id = ?", daoID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Moderator, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainModerator(row))
	}
	return result, nil
}

func (r *moderatorRepository) UpdatePricing(ctx context.Context, moderatorID uuid.UUID, pricing domain.Pricing, at time.Time) (domain.Moderator, error) {
	res := r.db.WithContext(ctx).
		Model(&moderatorModel{}).
		Where("moderator_id = ?", moderatorID).
		Updates(map[string]any{
			"hourly_price":  pricing.Hourly,
			"monthly_price": pricing.Monthly,
			"buyout_price":  pricing.Buyout,
			"updated_at":    at,
		})
	if res.Error != nil {
		return domain.Moderator{}, res.Error
	}
	if res.RowsAffected == 0 {
		return domain.Moderator{}, domain.ErrNotFound
	}
	return r.GetByID(ctx, moderatorID)
}

func (r *moderatorRepository) SetStatus(ctx context.Context, moderatorID uuid.UUID, from, to domain.ModeratorStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&moderatorModel{}).
		Where("moderator_id = ?", moderatorID).
		Where("status = ?", string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
