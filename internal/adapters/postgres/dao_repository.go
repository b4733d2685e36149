package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type daoRepository struct {
	db *gorm.DB
}

func (r *daoRepository) Create(ctx context.Context, dao domain.DAO) (domain.DAO, error) {
	rec := toDAOModel(dao)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.DAO{}, domain.ErrConflict
		}
		return domain.DAO{}, err
	}
	return toDomainDAO(rec), nil
}

func (r *daoRepository) GetByID(ctx context.Context, daoID uuid.UUID) (domain.DAO, error) {
	var rec daoModel
	if err := r.db.WithContext(ctx).Where("dao_id = ?", daoID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DAO{}, domain.ErrNotFound
		}
		return domain.DAO{}, err
	}
	return toDomainDAO(rec), nil
}

func (r *daoRepository) List(ctx context.Context, status domain.DAOStatus, limit, offset int) ([]domain.DAO, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}
	var rows []daoModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.DAO, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainDAO(row))
	}
	return result, nil
}

func (r *daoRepository) AddMemberTx(ctx context.Context, member domain.Member) (domain.DAO, error) {
	var result domain.DAO
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := memberModel{
			DAOID:        member.DAOID,
			Address:      member.Address,
			StakeAmount:  member.StakeAmount,
			VotingWeight: member.VotingWeight,
			IsActive:     member.IsActive,
			StakeTxID:    member.StakeTxID,
			JoinedAt:     member.JoinedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		res := tx.Model(&daoModel{}).
			Where("dao_id = ?", member.DAOID).
			Updates(map[string]any{
				"member_count":     gorm.Expr("member_count + 1"),
				"treasury_balance": gorm.Expr("treasury_balance + ?", member.StakeAmount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		var dao daoModel
		if err := tx.Where("dao_id = ?", member.DAOID).Take(&dao).Error; err != nil {
			return err
		}
		result = toDomainDAO(dao)
		return nil
	})
	if err != nil {
		return domain.DAO{}, err
	}
	return result, nil
}

func (r *daoRepository) ClaimActivation(ctx context.Context, daoID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&daoModel{}).
		Where("dao_id = ?", daoID).
		Where("status = ?", string(domain.DAOStatusPending)).
		Where("activation_claimed_at IS NULL").
		Update("activation_claimed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *daoRepository) ReleaseActivationClaim(ctx context.Context, daoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&daoModel{}).
		Where("dao_id = ?", daoID).
		Where("status = ?", string(domain.DAOStatusPending)).
		Update("activation_claimed_at", nil).Error
}

func (r *daoRepository) MarkActive(ctx context.Context, daoID uuid.UUID, txID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&daoModel{}).
		Where("dao_id = ?", daoID).
		Where("status = ?", string(domain.DAOStatusPending)).
		Updates(map[string]any{
			"status":           string(domain.DAOStatusActive),
			"activation_tx_id": txID,
			"activated_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type memberRepository struct {
	db *gorm.DB
}

func (r *memberRepository) Get(ctx context.Context, daoID uuid.UUID, address string) (domain.Member, error) {
	var rec memberModel
	if err := r.db.WithContext(ctx).
		Where("dao_id = ?", daoID).
		Where("address = ?", address).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Member{}, domain.ErrNotFound
		}
		return domain.Member{}, err
	}
	return toDomainMember(rec), nil
}

func (r *memberRepository) ListActiveByDAO(ctx context.Context, daoID uuid.UUID) ([]domain.Member, error) {
	var rows []memberModel
	if err := r.db.WithContext(ctx).
		Where("dao_id = ?", daoID).
		Where("is_active = TRUE").
		Order("joined_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Member, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainMember(row))
	}
	return result, nil
}

func (r *memberRepository) TotalActiveStake(ctx context.Context, daoID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&memberModel{}).
		Where("dao_id = ?", daoID).
		Where("is_active = TRUE").
		Select("COALESCE(SUM(stake_amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
