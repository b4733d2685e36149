package ports

import (
	"context"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/google/uuid"
)

// DAORepository defines persistence operations for DAOs and their one-way
// activation lifecycle. Claim/flip methods are status-guarded single
// statements so concurrent activators race safely.
type DAORepository interface {
	Create(ctx context.Context, dao domain.DAO) (domain.DAO, error)
	GetByID(ctx context.Context, daoID uuid.UUID) (domain.DAO, error)
	List(ctx context.Context, status domain.DAOStatus, limit, offset int) ([]domain.DAO, error)
	// AddMemberTx inserts a membership and bumps member_count/treasury_balance
	// in one transaction, returning the post-mutation DAO so the evaluator
	// reads a consistent snapshot. Duplicate joins return domain.ErrConflict.
	AddMemberTx(ctx context.Context, member domain.Member) (domain.DAO, error)
	// ClaimActivation marks the DAO so exactly one caller performs the
	// activation ledger call. Returns false when the claim is already held
	// or the DAO is no longer pending.
	ClaimActivation(ctx context.Context, daoID uuid.UUID, at time.Time) (bool, error)
	ReleaseActivationClaim(ctx context.Context, daoID uuid.UUID) error
	// MarkActive flips pending->active, recording the ledger transaction.
	// Returns false when the DAO already left pending (idempotent replay).
	MarkActive(ctx context.Context, daoID uuid.UUID, txID string, at time.Time) (bool, error)
}

// MemberRepository reads membership state. Writes go through
// DAORepository.AddMemberTx to keep counters consistent.
type MemberRepository interface {
	Get(ctx context.Context, daoID uuid.UUID, address string) (domain.Member, error)
	ListActiveByDAO(ctx context.Context, daoID uuid.UUID) ([]domain.Member, error)
	TotalActiveStake(ctx context.Context, daoID uuid.UUID) (int64, error)
}

// ProposalRepository owns the proposal/vote lifecycle. Vote tallying and the
// active->passed crossing happen inside one transaction so two concurrent
// votes can neither double-count nor both observe "not yet passed".
type ProposalRepository interface {
	Create(ctx context.Context, proposal domain.Proposal) (domain.Proposal, error)
	GetByID(ctx context.Context, proposalID uuid.UUID) (domain.Proposal, error)
	ListByDAO(ctx context.Context, daoID uuid.UUID, limit, offset int) ([]domain.Proposal, error)
	GetVote(ctx context.Context, proposalID uuid.UUID, address string) (domain.Vote, error)
	ListVotes(ctx context.Context, proposalID uuid.UUID) ([]domain.Vote, error)
	// CastVoteTx upserts the vote, subtracts any prior weight from the tally,
	// adds the new one and performs the guarded pass transition when
	// votesFor >= requiredVotes. Returns the updated proposal and whether
	// this call crossed the threshold. Fails with domain.ErrProposalClosed
	// when the proposal is no longer active.
	CastVoteTx(ctx context.Context, vote domain.Vote) (domain.Proposal, bool, error)
	// RejectExpired flips active->rejected once the voting window has passed.
	// Returns false when the proposal was not an expired active proposal.
	RejectExpired(ctx context.Context, proposalID uuid.UUID, now time.Time) (bool, error)
	// SweepExpired rejects every active proposal whose window has closed.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	// ClaimExecution elects the single caller allowed to mint. Returns false
	// when the proposal is not passed or the claim is already held.
	ClaimExecution(ctx context.Context, proposalID uuid.UUID, at time.Time) (bool, error)
	ReleaseExecutionClaim(ctx context.Context, proposalID uuid.UUID) error
	// CompleteExecutionTx inserts the moderator record, flips
	// passed->executed and writes the outbox event in one transaction.
	// Replays after a partial failure are no-ops returning the stored
	// moderator, keyed by the proposal's executed state.
	CompleteExecutionTx(ctx context.Context, proposalID uuid.UUID, moderator domain.Moderator, event OutboxEvent, at time.Time) (domain.Moderator, error)
}

// ModeratorRepository manages the monetizable asset records. Ownership
// transfer on buyout happens inside GrantRepository.CommitPurchaseTx.
type ModeratorRepository interface {
	GetByID(ctx context.Context, moderatorID uuid.UUID) (domain.Moderator, error)
	List(ctx context.Context, status domain.ModeratorStatus, limit, offset int) ([]domain.Moderator, error)
	ListByDAO(ctx context.Context, daoID uuid.UUID) ([]domain.Moderator, error)
	UpdatePricing(ctx context.Context, moderatorID uuid.UUID, pricing domain.Pricing, at time.Time) (domain.Moderator, error)
	// SetStatus performs a guarded from->to transition, returning false when
	// the moderator was not in the expected state.
	SetStatus(ctx context.Context, moderatorID uuid.UUID, from, to domain.ModeratorStatus, at time.Time) (bool, error)
}

// PurchaseCommit is the off-chain mutation owed once a purchase group has
// confirmed on the ledger. It is JSON-serializable so a failed commit can be
// parked as a reconciliation record and replayed by the sweep.
type PurchaseCommit struct {
	ModeratorID  uuid.UUID        `json:"moderator_id"`
	DAOID        uuid.UUID        `json:"dao_id"`
	BuyerAddress string           `json:"buyer_address"`
	Kind         domain.GrantKind `json:"kind"`
	Quantity     int64            `json:"quantity"`
	GrossAmount  int64            `json:"gross_amount"`
	OwnerShare   int64            `json:"owner_share"`
	PlatformFee  int64            `json:"platform_fee"`
	ExtendBy     time.Duration    `json:"extend_by"`
	LedgerTxID   string           `json:"ledger_tx_id"`
	Note         string           `json:"note"`
	ConfirmedAt  time.Time        `json:"confirmed_at"`
}

// GrantRepository owns access grants and the purchase commit transaction.
type GrantRepository interface {
	Get(ctx context.Context, moderatorID uuid.UUID, buyer string) (domain.AccessGrant, error)
	ListByBuyer(ctx context.Context, buyer string) ([]domain.AccessGrant, error)
	// CommitPurchaseTx applies the whole confirmed purchase in one
	// transaction: grant upsert/extension (lost-update safe), buyout
	// ownership transfer and supersession, revenue append, moderator stats
	// and the outbox event. The revenue row's unique source_tx_id makes the
	// commit idempotent: a replay for an already-applied ledger transaction
	// returns the stored grant without double-applying.
	CommitPurchaseTx(ctx context.Context, commit PurchaseCommit, event OutboxEvent) (domain.AccessGrant, error)
}

// RevenueRepository reads the append-only revenue ledger.
type RevenueRepository interface {
	ListByDAO(ctx context.Context, daoID uuid.UUID, limit, offset int) ([]domain.RevenueRecord, error)
	TotalByDAO(ctx context.Context, daoID uuid.UUID) (int64, error)
}

// ReconciliationAction identifies which off-chain commit a parked record owes.
type ReconciliationAction string

const (
	ReconcileCommitMembership ReconciliationAction = "commit_membership"
	ReconcileCommitActivation ReconciliationAction = "commit_activation"
	ReconcileCommitExecution  ReconciliationAction = "commit_execution"
	ReconcileCommitPurchase   ReconciliationAction = "commit_purchase"
)

// ReconciliationRecord is the durable pending-reconciliation marker written
// when a ledger operation confirmed but the off-chain commit failed. The
// ledger transaction ID plus the intent payload is everything the sweep
// needs to finish step two without resubmitting step one.
type ReconciliationRecord struct {
	ID             uuid.UUID
	Action         ReconciliationAction
	LedgerTxID     string
	AssetID        int64
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// ReconciliationRepository controls the retry workflow for parked commits.
// Claiming mirrors the outbox pattern so multiple workers never replay the
// same record concurrently.
type ReconciliationRepository interface {
	Enqueue(ctx context.Context, record ReconciliationRecord) error
	ClaimPending(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]ReconciliationRecord, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, id uuid.UUID, claimToken, errMsg string, at time.Time) error
}

// OutboxEvent is the write-side domain event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls publish-retry workflow for domain events.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
