package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

func (s *Service) CreateProposal(ctx context.Context, daoID uuid.UUID, creator string, req CreateProposalRequest) (domain.Proposal, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return domain.Proposal{}, domain.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || req.Description == "" {
		return domain.Proposal{}, fmt.Errorf("%w: title and description must not be empty", domain.ErrInvalidInput)
	}

	dao, err := s.daos.GetByID(ctx, daoID)
	if err != nil {
		return domain.Proposal{}, err
	}
	member, err := s.members.Get(ctx, daoID, creator)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Proposal{}, domain.ErrNotAMember
		}
		return domain.Proposal{}, err
	}
	if !member.IsActive {
		return domain.Proposal{}, domain.ErrNotAMember
	}

	// The pass threshold is snapshotted against total active stake at
	// creation time; later joins or stake changes cannot retroactively
	// change what "passed" means for this proposal.
	totalStake, err := s.members.TotalActiveStake(ctx, daoID)
	if err != nil {
		return domain.Proposal{}, err
	}
	required := ceilPercent(totalStake, dao.ActivationThresholdPercent)

	now := s.nowFn()
	proposal := domain.Proposal{
		ProposalID:     uuid.New(),
		DAOID:          daoID,
		Title:          req.Title,
		Description:    req.Description,
		CreatorAddress: creator,
		Status:         domain.ProposalStatusActive,
		RequiredVotes:  required,
		VotingEndsAt:   now.Add(votingWindow(dao.VotingPeriodDays)),
		CreatedAt:      now,
	}
	return s.proposals.Create(ctx, proposal)
}

// GetProposal reads a proposal, applying lazy expiry: an active proposal
// past its voting window is rejected on read.
func (s *Service) GetProposal(ctx context.Context, proposalID uuid.UUID) (domain.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return domain.Proposal{}, err
	}
	if proposal.Status == domain.ProposalStatusActive && s.nowFn().After(proposal.VotingEndsAt) {
		if _, err := s.proposals.RejectExpired(ctx, proposalID, s.nowFn()); err != nil {
			return domain.Proposal{}, err
		}
		return s.proposals.GetByID(ctx, proposalID)
	}
	return proposal, nil
}

func (s *Service) ListProposals(ctx context.Context, daoID uuid.UUID, limit, offset int) ([]domain.Proposal, error) {
	return s.proposals.ListByDAO(ctx, daoID, limit, offset)
}

// CastVote records one member's vote. A resubmission overwrites the previous
// vote; the repository subtracts the old weight inside the same transaction
// that adds the new one, so no member is ever counted twice. The
// active->passed transition happens exactly once regardless of racing votes.
func (s *Service) CastVote(ctx context.Context, proposalID uuid.UUID, voter string, req CastVoteRequest) (CastVoteResult, error) {
	voter = strings.TrimSpace(voter)
	if voter == "" {
		return CastVoteResult{}, domain.ErrUnauthorized
	}
	switch req.Choice {
	case domain.VoteChoiceYes, domain.VoteChoiceNo, domain.VoteChoiceAbstain:
	default:
		return CastVoteResult{}, fmt.Errorf("%w: unknown vote choice %q", domain.ErrInvalidInput, req.Choice)
	}

	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := s.nowFn()
	if proposal.Closed(now) {
		if proposal.Status == domain.ProposalStatusActive {
			_, _ = s.proposals.RejectExpired(ctx, proposalID, now)
		}
		return CastVoteResult{}, domain.ErrProposalClosed
	}

	member, err := s.members.Get(ctx, proposal.DAOID, voter)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return CastVoteResult{}, domain.ErrNotAMember
		}
		return CastVoteResult{}, err
	}
	if !member.IsActive {
		return CastVoteResult{}, domain.ErrNotAMember
	}

	vote := domain.Vote{
		ProposalID: proposalID,
		Address:    voter,
		Choice:     req.Choice,
		Weight:     member.VotingWeight,
		CastAt:     now,
	}
	updated, passed, err := s.proposals.CastVoteTx(ctx, vote)
	if err != nil {
		return CastVoteResult{}, err
	}
	if passed {
		s.logger.InfoContext(ctx, "proposal passed",
			"module", "application.governance",
			"operation", "cast_vote",
			"outcome", "passed",
			"proposal_id", proposalID,
			"votes_for", updated.VotesFor,
			"required_votes", updated.RequiredVotes,
		)
	}
	return CastVoteResult{Proposal: updated, Vote: vote, Passed: passed}, nil
}

// ExecuteProposal mints the moderator NFT for a passed proposal and commits
// the moderator record, flipping the proposal to executed. Exactly one
// concurrent caller wins the execution claim and performs the mint; the
// rest observe executed (or an in-flight claim) and no-op.
func (s *Service) ExecuteProposal(ctx context.Context, proposalID uuid.UUID, caller string, req ExecuteProposalRequest) (ExecuteProposalResult, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return ExecuteProposalResult{}, domain.ErrUnauthorized
	}
	req.ModeratorName = strings.TrimSpace(req.ModeratorName)
	if req.ModeratorName == "" {
		return ExecuteProposalResult{}, fmt.Errorf("%w: moderator name must not be empty", domain.ErrInvalidInput)
	}
	if err := req.Pricing.Validate(); err != nil {
		return ExecuteProposalResult{}, fmt.Errorf("%w: buyout must be at least the monthly price and nothing may be negative", err)
	}

	proposal, err := s.GetProposal(ctx, proposalID)
	if err != nil {
		return ExecuteProposalResult{}, err
	}
	if proposal.Status != domain.ProposalStatusPassed {
		return ExecuteProposalResult{}, fmt.Errorf("%w: proposal is %s", domain.ErrInvalidTransition, proposal.Status)
	}

	claimed, err := s.proposals.ClaimExecution(ctx, proposalID, s.nowFn())
	if err != nil {
		return ExecuteProposalResult{}, err
	}
	if !claimed {
		// Either another caller already finished (executed) or is mid-flight.
		current, err := s.proposals.GetByID(ctx, proposalID)
		if err != nil {
			return ExecuteProposalResult{}, err
		}
		if current.Status == domain.ProposalStatusExecuted {
			return ExecuteProposalResult{}, fmt.Errorf("%w: proposal already executed", domain.ErrInvalidTransition)
		}
		return ExecuteProposalResult{}, domain.ErrExecutionPending
	}

	conf, err := s.ledger.CreateAsset(ctx, ports.AssetCreateIntent{
		Creator:   proposal.CreatorAddress,
		AssetName: req.ModeratorName,
		UnitName:  "CXMOD",
		URL:       req.ContentHash,
		Note:      fmt.Sprintf("Moderator:%s:mint", proposalID),
	})
	if err != nil {
		// Nothing confirmed on-ledger; hand the claim back so a later caller
		// can retry the mint.
		if releaseErr := s.proposals.ReleaseExecutionClaim(ctx, proposalID); releaseErr != nil {
			s.logger.ErrorContext(ctx, "execution claim release failed",
				"module", "application.governance",
				"operation", "execute_proposal",
				"outcome", "failure",
				"proposal_id", proposalID,
				"error", releaseErr,
			)
		}
		return ExecuteProposalResult{}, err
	}

	now := s.nowFn()
	moderator := domain.Moderator{
		ModeratorID:    uuid.New(),
		DAOID:          proposal.DAOID,
		Name:           req.ModeratorName,
		Category:       req.Category,
		Description:    req.Description,
		Status:         domain.ModeratorStatusTraining,
		Pricing:        req.Pricing,
		AssetID:        conf.AssetID,
		MintTxID:       conf.TxID,
		ContentHash:    req.ContentHash,
		CreatorAddress: proposal.CreatorAddress,
		CurrentOwner:   proposal.CreatorAddress,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	event, err := s.proposalExecutedEvent(proposalID, moderator)
	if err != nil {
		return ExecuteProposalResult{}, s.parkCommit(ctx, ports.ReconcileCommitExecution, conf,
			executionCommit{ProposalID: proposalID, Moderator: moderator}, err)
	}
	stored, err := s.proposals.CompleteExecutionTx(ctx, proposalID, moderator, event, now)
	if err != nil {
		return ExecuteProposalResult{}, s.parkCommit(ctx, ports.ReconcileCommitExecution, conf,
			executionCommit{ProposalID: proposalID, Moderator: moderator}, err)
	}

	// The execution is durable at this point; a failed read-back must not
	// look like a failed execution or the caller would retry a done mint.
	executed, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		s.logger.ErrorContext(ctx, "executed proposal read-back failed",
			"module", "application.governance",
			"operation", "execute_proposal",
			"outcome", "degraded",
			"proposal_id", proposalID,
			"error", err,
		)
		executed = proposal
		executed.Status = domain.ProposalStatusExecuted
		executed.ExecutedAt = &now
		executed.ModeratorID = &stored.ModeratorID
	}
	return ExecuteProposalResult{Proposal: executed, Moderator: stored, MintTxID: conf.TxID}, nil
}

// SweepExpiredProposals rejects every active proposal whose voting window
// has closed. Invoked by the background worker.
func (s *Service) SweepExpiredProposals(ctx context.Context) (int64, error) {
	return s.proposals.SweepExpired(ctx, s.nowFn())
}

// ceilPercent computes ceil(total * percent / 100) without floating point.
func ceilPercent(total int64, percent int) int64 {
	if total <= 0 || percent <= 0 {
		return 0
	}
	return (total*int64(percent) + 99) / 100
}

func votingWindow(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
