package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type proposalRepository struct {
	db *gorm.DB
}

func (r *proposalRepository) Create(ctx context.Context, proposal domain.Proposal) (domain.Proposal, error) {
	rec := proposalModel{
		ProposalID:     proposal.ProposalID,
		DAOID:          proposal.DAOID,
		Title:          proposal.Title,
		Description:    proposal.Description,
		CreatorAddress: proposal.CreatorAddress,
		Status:         string(proposal.Status),
		RequiredVotes:  proposal.RequiredVotes,
		VotingEndsAt:   proposal.VotingEndsAt,
		CreatedAt:      proposal.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Proposal{}, domain.ErrConflict
		}
		return domain.Proposal{}, err
	}
	return toDomainProposal(rec), nil
}

func (r *proposalRepository) GetByID(ctx context.Context, proposalID uuid.UUID) (domain.Proposal, error) {
	var rec proposalModel
	if err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Proposal{}, domain.ErrNotFound
		}
		return domain.Proposal{}, err
	}
	return toDomainProposal(rec), nil
}

func (r *proposalRepository) ListByDAO(ctx context.Context, daoID uuid.UUID, limit, offset int) ([]domain.Proposal, error) {
	var rows []proposalModel
	if err := r.db.WithContext(ctx).
		Where("dao_id = ?", daoID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Proposal, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainProposal(row))
	}
	return result, nil
}

func (r *proposalRepository) GetVote(ctx context.Context, proposalID uuid.UUID, address string) (domain.Vote, error) {
	var rec voteModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Where("voter_address = ?", address).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, err
	}
	return toDomainVote(rec), nil
}

func (r *proposalRepository) ListVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Vote, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainVote(row))
	}
	return result, nil
}

// CastVoteTx holds a row lock on the proposal for the whole tally update, so
// concurrent votes serialize per proposal and the pass transition fires for
// exactly one of them.
func (r *proposalRepository) CastVoteTx(ctx context.Context, vote domain.Vote) (domain.Proposal, bool, error) {
	var (
		result domain.Proposal
		passed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop proposalModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("proposal_id = ?", vote.ProposalID).
			Take(&prop).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if prop.Status != string(domain.ProposalStatusActive) || vote.CastAt.After(prop.VotingEndsAt) {
			return domain.ErrProposalClosed
		}

		var prior voteModel
		err := tx.Where("proposal_id = ?", vote.ProposalID).
			Where("voter_address = ?", vote.Address).
			Take(&prior).Error
		switch {
		case err == nil:
			subtractTally(&prop, domain.VoteChoice(prior.Choice), prior.Weight)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		rec := voteModel{
			ProposalID:   vote.ProposalID,
			VoterAddress: vote.Address,
			Choice:       string(vote.Choice),
			Weight:       vote.Weight,
			CastAt:       vote.CastAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "proposal_id"},
				{Name: "voter_address"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"choice":  rec.Choice,
				"weight":  rec.Weight,
				"cast_at": rec.CastAt,
			}),
		}).Create(&rec).Error; err != nil {
			return err
		}

		addTally(&prop, vote.Choice, vote.Weight)
		updates := map[string]any{
			"votes_for":     prop.VotesFor,
			"votes_against": prop.VotesAgainst,
			"votes_abstain": prop.VotesAbstain,
		}
		if prop.VotesFor >= prop.RequiredVotes {
			prop.Status = string(domain.ProposalStatusPassed)
			updates["status"] = prop.Status
			passed = true
		}
		if err := tx.Model(&proposalModel{}).
			Where("proposal_id = ?", vote.ProposalID).
			Updates(updates).Error; err != nil {
			return err
		}

		result = toDomainProposal(prop)
		return nil
	})
	if err != nil {
		return domain.Proposal{}, false, err
	}
	return result, passed, nil
}

func (r *proposalRepository) RejectExpired(ctx context.Context, proposalID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", proposalID).
		Where("status = ?", string(domain.ProposalStatusActive)).
		Where("voting_ends_at < ?", now).
		Update("status", string(domain.ProposalStatusRejected))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *proposalRepository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("status = ?", string(domain.ProposalStatusActive)).
		Where("voting_ends_at < ?", now).
		Update("status", string(domain.ProposalStatusRejected))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *proposalRepository) ClaimExecution(ctx context.Context, proposalID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", proposalID).
		Where("status = ?", string(domain.ProposalStatusPassed)).
		Where("execution_claimed_at IS NULL").
		Update("execution_claimed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *proposalRepository) ReleaseExecutionClaim(ctx context.Context, proposalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&proposalModel{}).
		Where("proposal_id = ?", proposalID).
		Where("status = ?", string(domain.ProposalStatusPassed)).
		Update("execution_claimed_at", nil).Error
}

// CompleteExecutionTx is replay-safe: an already-executed proposal returns
// its stored moderator untouched so the reconciliation sweep can call it
// repeatedly for the same ledger transaction.
func (r *proposalRepository) CompleteExecutionTx(ctx context.Context, proposalID uuid.UUID, moderator domain.Moderator, event ports.OutboxEvent, at time.Time) (domain.Moderator, error) {
	var result domain.Moderator
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prop proposalModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("proposal_id = ?", proposalID).
			Take(&prop).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if prop.Status == string(domain.ProposalStatusExecuted) {
			if prop.ModeratorID == nil {
				return domain.ErrInvalidTransition
			}
			var existing moderatorModel
			if err := tx.Where("moderator_id = ?", *prop.ModeratorID).Take(&existing).Error; err != nil {
				return err
			}
			result = toDomainModerator(existing)
			return nil
		}
		if prop.Status != string(domain.ProposalStatusPassed) {
			return domain.ErrInvalidTransition
		}

		rec := toModeratorModel(moderator)
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		if err := tx.Model(&proposalModel{}).
			Where("proposal_id = ?", proposalID).
			Updates(map[string]any{
				"status":       string(domain.ProposalStatusExecuted),
				"executed_at":  at,
				"moderator_id": rec.ModeratorID,
			}).Error; err != nil {
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

		result = toDomainModerator(rec)
		return nil
	})
	if err != nil {
		return domain.Moderator{}, err
	}
	return result, nil
}

func subtractTally(prop *proposalModel, choice domain.VoteChoice, weight int64) {
	switch choice {
	case domain.VoteChoiceYes:
		prop.VotesFor -= weight
	case domain.VoteChoiceNo:
		prop.VotesAgainst -= weight
	case domain.VoteChoiceAbstain:
		prop.VotesAbstain -= weight
	}
}

func addTally(prop *proposalModel, choice domain.VoteChoice, weight int64) {
	switch choice {
	case domain.VoteChoiceYes:
		prop.VotesFor += weight
	case domain.VoteChoiceNo:
		prop.VotesAgainst += weight
	case domain.VoteChoiceAbstain:
		prop.VotesAbstain += weight
	}
}
