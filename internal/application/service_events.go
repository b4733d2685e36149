package application

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

const (
	EventDAOActivated      = "dao.activated"
	EventProposalExecuted  = "proposal.executed"
	EventPurchaseConfirmed = "purchase.confirmed"
)

// Outbox events are written in the same database transaction as the commit
// they describe and published asynchronously by the outbox worker.

func (s *Service) daoActivatedEvent(daoID uuid.UUID, txID string) (ports.OutboxEvent, error) {
	return s.newEvent(EventDAOActivated, daoID.String(), map[string]any{
		"dao_id":       daoID,
		"ledger_tx_id": txID,
	})
}

func (s *Service) proposalExecutedEvent(proposalID uuid.UUID, moderator domain.Moderator) (ports.OutboxEvent, error) {
	return s.newEvent(EventProposalExecuted, moderator.DAOID.String(), map[string]any{
		"proposal_id":  proposalID,
		"moderator_id": moderator.ModeratorID,
		"dao_id":       moderator.DAOID,
		"asset_id":     moderator.AssetID,
		"mint_tx_id":   moderator.MintTxID,
	})
}

func (s *Service) purchaseConfirmedEvent(commit ports.PurchaseCommit) (ports.OutboxEvent, error) {
	return s.newEvent(EventPurchaseConfirmed, commit.ModeratorID.String(), map[string]any{
		"moderator_id": commit.ModeratorID,
		"dao_id":       commit.DAOID,
		"buyer":        commit.BuyerAddress,
		"kind":         commit.Kind,
		"gross_amount": commit.GrossAmount,
		"owner_share":  commit.OwnerShare,
		"platform_fee": commit.PlatformFee,
		"ledger_tx_id": commit.LedgerTxID,
	})
}

func (s *Service) newEvent(eventType, partitionKey string, body map[string]any) (ports.OutboxEvent, error) {
	body["occurred_at"] = s.nowFn().Format(time.RFC3339Nano)
	payload, err := json.Marshal(body)
	if err != nil {
		return ports.OutboxEvent{}, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    eventType,
		PartitionKey: partitionKey,
		Payload:      payload,
		OccurredAt:   s.nowFn(),
	}, nil
}
