package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// Every ledger-touching transition follows the same two-step protocol: the
// ledger operation is submitted and confirmed first (it cannot be rolled
// back), then the off-chain record is committed. When step two fails after
// step one succeeded, the intent is parked as a reconciliation record and
// the caller sees ErrReconciliationPending; the sweep finishes step two
// later without resubmitting step one.

type membershipCommit struct {
	Member domain.Member `json:"member"`
}

type activationCommit struct {
	DAOID uuid.UUID `json:"dao_id"`
}

type executionCommit struct {
	ProposalID uuid.UUID        `json:"proposal_id"`
	Moderator  domain.Moderator `json:"moderator"`
}

// parkCommit durably records a commit that is owed for an already-confirmed
// ledger operation. Parking failures are logged loudly: this is the one
// place where losing state means a user paid without receiving access.
func (s *Service) parkCommit(ctx context.Context, action ports.ReconciliationAction, conf ports.Confirmation, payload any, cause error) error {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "reconciliation payload encode failed",
			"module", "application.reconcile",
			"operation", string(action),
			"outcome", "failure",
			"ledger_tx_id", conf.TxID,
			"error", err,
		)
		return fmt.Errorf("%w: %v", domain.ErrReconciliationPending, cause)
	}

	record := ports.ReconciliationRecord{
		ID:         uuid.New(),
		Action:     action,
		LedgerTxID: conf.TxID,
		AssetID:    conf.AssetID,
		Payload:    body,
		CreatedAt:  s.nowFn(),
	}
	if enqueueErr := s.reconciliations.Enqueue(ctx, record); enqueueErr != nil {
		s.logger.ErrorContext(ctx, "reconciliation enqueue failed",
			"module", "application.reconcile",
			"operation", string(action),
			"outcome", "failure",
			"ledger_tx_id", conf.TxID,
			"commit_error", cause,
			"error", enqueueErr,
		)
	} else {
		s.logger.WarnContext(ctx, "off-chain commit parked for reconciliation",
			"module", "application.reconcile",
			"operation", string(action),
			"outcome", "parked",
			"ledger_tx_id", conf.TxID,
			"reconciliation_id", record.ID,
			"commit_error", cause,
		)
	}
	return fmt.Errorf("%w: %v", domain.ErrReconciliationPending, cause)
}

// Recover replays the off-chain commit for one claimed reconciliation
// record. Every branch is idempotent: commits that already landed (via a
// racing caller or an earlier partial replay) resolve as success.
func (s *Service) Recover(ctx context.Context, record ports.ReconciliationRecord) error {
	switch record.Action {
	case ports.ReconcileCommitMembership:
		var c membershipCommit
		if err := json.Unmarshal(record.Payload, &c); err != nil {
			return fmt.Errorf("decode membership commit: %w", err)
		}
		_, err := s.daos.AddMemberTx(ctx, c.Member)
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return err
		}
		return nil

	case ports.ReconcileCommitActivation:
		var c activationCommit
		if err := json.Unmarshal(record.Payload, &c); err != nil {
			return fmt.Errorf("decode activation commit: %w", err)
		}
		_, err := s.daos.MarkActive(ctx, c.DAOID, record.LedgerTxID, s.nowFn())
		return err

	case ports.ReconcileCommitExecution:
		var c executionCommit
		if err := json.Unmarshal(record.Payload, &c); err != nil {
			return fmt.Errorf("decode execution commit: %w", err)
		}
		event, err := s.proposalExecutedEvent(c.ProposalID, c.Moderator)
		if err != nil {
			return err
		}
		_, err = s.proposals.CompleteExecutionTx(ctx, c.ProposalID, c.Moderator, event, s.nowFn())
		return err

	case ports.ReconcileCommitPurchase:
		var c ports.PurchaseCommit
		if err := json.Unmarshal(record.Payload, &c); err != nil {
			return fmt.Errorf("decode purchase commit: %w", err)
		}
		event, err := s.purchaseConfirmedEvent(c)
		if err != nil {
			return err
		}
		if _, err := s.grants.CommitPurchaseTx(ctx, c, event); err != nil {
			return err
		}
		s.invalidateAccess(ctx, c.ModeratorID, c.BuyerAddress)
		return nil

	default:
		return fmt.Errorf("unknown reconciliation action %q", record.Action)
	}
}
