package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// Threshold bounds carried over from the ledger contract: anything below a
// simple majority cannot pass, anything above 100 is meaningless.
const (
	minActivationThreshold = 51
	maxActivationThreshold = 100
)

func (s *Service) CreateDAO(ctx context.Context, creator string, req CreateDAORequest) (domain.DAO, error) {
	creator = strings.TrimSpace(creator)
	if creator == "" {
		return domain.DAO{}, domain.ErrUnauthorized
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		return domain.DAO{}, fmt.Errorf("%w: name must not be empty", domain.ErrInvalidInput)
	}
	if req.MinStake <= 0 {
		return domain.DAO{}, fmt.Errorf("%w: minimum stake must be greater than 0", domain.ErrInvalidInput)
	}
	if req.VotingPeriodDays < 1 {
		return domain.DAO{}, fmt.Errorf("%w: voting period must be at least one day", domain.ErrInvalidInput)
	}
	if req.ActivationThresholdPercent < minActivationThreshold || req.ActivationThresholdPercent > maxActivationThreshold {
		return domain.DAO{}, fmt.Errorf("%w: activation threshold must be between %d and %d",
			domain.ErrInvalidInput, minActivationThreshold, maxActivationThreshold)
	}

	dao := domain.DAO{
		DAOID:                      uuid.New(),
		Name:                       req.Name,
		Category:                   req.Category,
		Status:                     domain.DAOStatusPending,
		CreatorAddress:             creator,
		MinStake:                   req.MinStake,
		VotingPeriodDays:           req.VotingPeriodDays,
		ActivationThresholdPercent: req.ActivationThresholdPercent,
		CreatedAt:                  s.nowFn(),
	}
	return s.daos.Create(ctx, dao)
}

func (s *Service) GetDAO(ctx context.Context, daoID uuid.UUID) (domain.DAO, error) {
	return s.daos.GetByID(ctx, daoID)
}

func (s *Service) ListDAOs(ctx context.Context, status domain.DAOStatus, limit, offset int) ([]domain.DAO, error) {
	return s.daos.List(ctx, status, limit, offset)
}

// JoinDAO stakes into a DAO: the stake payment confirms on the ledger first,
// then the membership row and DAO counters are committed atomically. A
// successful join re-evaluates the activation criteria.
func (s *Service) JoinDAO(ctx context.Context, daoID uuid.UUID, address string, req JoinDAORequest) (JoinDAOResult, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return JoinDAOResult{}, domain.ErrUnauthorized
	}

	dao, err := s.daos.GetByID(ctx, daoID)
	if err != nil {
		return JoinDAOResult{}, err
	}
	if dao.Status == domain.DAOStatusInactive {
		return JoinDAOResult{}, fmt.Errorf("%w: dao is inactive", domain.ErrInvalidTransition)
	}
	if req.StakeAmount < dao.MinStake {
		return JoinDAOResult{}, fmt.Errorf("%w: stake %d below dao minimum %d",
			domain.ErrInvalidInput, req.StakeAmount, dao.MinStake)
	}
	// Membership is checked before any value moves so a duplicate join never
	// reaches the ledger.
	if _, err := s.members.Get(ctx, daoID, address); err == nil {
		return JoinDAOResult{}, fmt.Errorf("%w: already a member", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return JoinDAOResult{}, err
	}

	conf, err := s.ledger.SubmitPayment(ctx, ports.PaymentIntent{
		Sender:   address,
		Receiver: s.cfg.TreasuryAddress,
		Amount:   req.StakeAmount,
		Note:     fmt.Sprintf("DAO:%s:initial_stake", daoID),
	})
	if err != nil {
		return JoinDAOResult{}, err
	}

	member := domain.Member{
		DAOID:        daoID,
		Address:      address,
		StakeAmount:  req.StakeAmount,
		VotingWeight: req.StakeAmount,
		IsActive:     true,
		StakeTxID:    conf.TxID,
		JoinedAt:     s.nowFn(),
	}
	updated, err := s.daos.AddMemberTx(ctx, member)
	if err != nil {
		return JoinDAOResult{}, s.parkCommit(ctx, ports.ReconcileCommitMembership, conf, membershipCommit{Member: member}, err)
	}

	refreshed, activation := s.maybeActivate(ctx, updated)
	return JoinDAOResult{Member: member, DAO: refreshed, Activation: activation}, nil
}

// EvaluateActivation reports the activation criteria for a DAO without side
// effects. Dashboards use the per-criterion breakdown.
func (s *Service) EvaluateActivation(ctx context.Context, daoID uuid.UUID) (domain.ActivationResult, error) {
	dao, err := s.daos.GetByID(ctx, daoID)
	if err != nil {
		return domain.ActivationResult{}, err
	}
	return domain.EvaluateActivation(dao, s.cfg.Criteria, s.nowFn()), nil
}

// SweepPendingActivations re-evaluates every pending DAO. The worker runs
// this periodically so a DAO whose activation ledger call failed (or whose
// age criterion only just passed) still activates without another join.
func (s *Service) SweepPendingActivations(ctx context.Context, limit int) error {
	pending, err := s.daos.List(ctx, domain.DAOStatusPending, limit, 0)
	if err != nil {
		return err
	}
	for _, dao := range pending {
		s.maybeActivate(ctx, dao)
	}
	return nil
}

// maybeActivate runs the one-way activation protocol when the criteria hold:
// claim the transition, submit the ledger application call, then flip
// pending->active. Activation failures never fail the membership change
// that triggered them; the sweep retries later. The returned DAO reflects
// the post-evaluation state so callers hand back an active DAO on the join
// that crossed the criteria.
func (s *Service) maybeActivate(ctx context.Context, dao domain.DAO) (domain.DAO, domain.ActivationResult) {
	result := domain.EvaluateActivation(dao, s.cfg.Criteria, s.nowFn())
	if !result.CanActivate || dao.Status != domain.DAOStatusPending {
		return dao, result
	}

	claimed, err := s.daos.ClaimActivation(ctx, dao.DAOID, s.nowFn())
	if err != nil || !claimed {
		if err != nil {
			s.logActivation(ctx, dao.DAOID, "claim", err)
		}
		return dao, result
	}

	conf, err := s.ledger.SubmitAppCall(ctx, ports.AppCallIntent{
		Sender: dao.CreatorAddress,
		AppID:  s.cfg.MarketplaceAppID,
		Method: "activate_dao",
		Args:   []string{dao.DAOID.String()},
		Note:   fmt.Sprintf("DAO:%s:activate", dao.DAOID),
	})
	if err != nil {
		// The ledger never confirmed anything, so releasing the claim is safe
		// and lets the sweep try again.
		if releaseErr := s.daos.ReleaseActivationClaim(ctx, dao.DAOID); releaseErr != nil {
			s.logActivation(ctx, dao.DAOID, "release_claim", releaseErr)
		}
		s.logActivation(ctx, dao.DAOID, "ledger_call", err)
		return dao, result
	}

	activatedAt := s.nowFn()
	flipped, err := s.daos.MarkActive(ctx, dao.DAOID, conf.TxID, activatedAt)
	if err != nil {
		_ = s.parkCommit(ctx, ports.ReconcileCommitActivation, conf, activationCommit{DAOID: dao.DAOID}, err)
		return dao, result
	}
	if flipped {
		dao.Status = domain.DAOStatusActive
		dao.ActivatedAt = &activatedAt
		dao.ActivationTxID = conf.TxID
		if event, evErr := s.daoActivatedEvent(dao.DAOID, conf.TxID); evErr == nil {
			if err := s.outbox.Enqueue(ctx, event); err != nil {
				s.logActivation(ctx, dao.DAOID, "outbox", err)
			}
		}
		s.logger.InfoContext(ctx, "dao activated",
			"module", "application.dao",
			"operation", "activate",
			"outcome", "success",
			"dao_id", dao.DAOID,
			"ledger_tx_id", conf.TxID,
		)
	} else if current, readErr := s.daos.GetByID(ctx, dao.DAOID); readErr == nil {
		// Another worker won the flip between our claim and update.
		dao = current
	}
	return dao, result
}

func (s *Service) logActivation(ctx context.Context, daoID uuid.UUID, step string, err error) {
	s.logger.ErrorContext(ctx, "dao activation step failed",
		"module", "application.dao",
		"operation", "activate",
		"step", step,
		"outcome", "failure",
		"dao_id", daoID,
		"error", err,
	)
}
