package application

import (
	"github.com/citadelx/marketplace/internal/domain"
	"github.com/google/uuid"
)

// CreateDAORequest creates a pending DAO. Money fields are micro-units.
type CreateDAORequest struct {
	Name                       string `json:"name"`
	Category                   string `json:"category"`
	MinStake                   int64  `json:"min_stake"`
	VotingPeriodDays           int    `json:"voting_period_days"`
	ActivationThresholdPercent int    `json:"activation_threshold_percent"`
}

// JoinDAORequest stakes into a DAO. The stake payment is a ledger
// transaction; the caller address comes from the verified identity.
type JoinDAORequest struct {
	StakeAmount int64 `json:"stake_amount"`
}

// JoinDAOResult returns the post-mutation entities directly so callers do
// not need a follow-up fetch.
type JoinDAOResult struct {
	Member     domain.Member           `json:"member"`
	DAO        domain.DAO              `json:"dao"`
	Activation domain.ActivationResult `json:"activation"`
}

type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CastVoteRequest struct {
	Choice domain.VoteChoice `json:"choice"`
}

// CastVoteResult reports the updated tally and whether this vote crossed the
// pass threshold.
type CastVoteResult struct {
	Proposal domain.Proposal `json:"proposal"`
	Vote     domain.Vote     `json:"vote"`
	Passed   bool            `json:"passed"`
}

// ExecuteProposalRequest carries the moderator to be minted when a passed
// proposal executes. ContentHash points at training data held by the
// storage collaborator.
type ExecuteProposalRequest struct {
	ModeratorName string         `json:"moderator_name"`
	Category      string         `json:"category"`
	Description   string         `json:"description"`
	ContentHash   string         `json:"content_hash"`
	Pricing       domain.Pricing `json:"pricing"`
}

type ExecuteProposalResult struct {
	Proposal  domain.Proposal  `json:"proposal"`
	Moderator domain.Moderator `json:"moderator"`
	MintTxID  string           `json:"mint_tx_id"`
}

type SetPricingRequest struct {
	Pricing domain.Pricing `json:"pricing"`
}

// PurchaseRequest buys access to a moderator. Quantity is hours for hourly,
// months for monthly, and ignored (forced to 1) for buyout.
type PurchaseRequest struct {
	Kind     domain.GrantKind `json:"kind"`
	Quantity int64            `json:"quantity"`
}

type PurchaseResult struct {
	Grant      domain.AccessGrant `json:"grant"`
	Moderator  domain.Moderator   `json:"moderator"`
	LedgerTxID string             `json:"ledger_tx_id"`
	Charged    int64              `json:"charged"`
}

// RevenueSummary is the dashboard read model for one DAO's proceeds.
type RevenueSummary struct {
	DAOID   uuid.UUID              `json:"dao_id"`
	Total   int64                  `json:"total"`
	Records []domain.RevenueRecord `json:"records"`
}

// ShareBreakdown maps member addresses to their proportional revenue share.
type ShareBreakdown struct {
	DAOID  uuid.UUID        `json:"dao_id"`
	Total  int64            `json:"total"`
	Shares map[string]int64 `json:"shares"`
}
