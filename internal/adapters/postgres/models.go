package postgres

import (
	"time"

	"github.com/google/uuid"
)

type daoModel struct {
	DAOID                      uuid.UUID  `gorm:"column:dao_id;type:uuid;primaryKey"`
	Name                       string     `gorm:"column:name"`
	Category                   string     `gorm:"column:category"`
	Status                     string     `gorm:"column:status"`
	CreatorAddress             string     `gorm:"column:creator_address"`
	MinStake                   int64      `gorm:"column:min_stake"`
	VotingPeriodDays           int        `gorm:"column:voting_period_days"`
	ActivationThresholdPercent int        `gorm:"column:activation_threshold_percent"`
	TreasuryBalance            int64      `gorm:"column:treasury_balance"`
	MemberCount                int        `gorm:"column:member_count"`
	ActivationTxID             string     `gorm:"column:activation_tx_id"`
	ActivationClaimedAt        *time.Time `gorm:"column:activation_claimed_at"`
	CreatedAt                  time.Time  `gorm:"column:created_at"`
	ActivatedAt                *time.Time `gorm:"column:activated_at"`
}

func (daoModel) TableName() string { return "daos" }

type memberModel struct {
	DAOID        uuid.UUID `gorm:"column:dao_id;type:uuid;primaryKey"`
	Address      string    `gorm:"column:address;primaryKey"`
	StakeAmount  int64     `gorm:"column:stake_amount"`
	VotingWeight int64     `gorm:"column:voting_weight"`
	IsActive     bool      `gorm:"column:is_active"`
	StakeTxID    string    `gorm:"column:stake_tx_id"`
	JoinedAt     time.Time `gorm:"column:joined_at"`
}

func (memberModel) TableName() string { return "dao_members" }

type proposalModel struct {
	ProposalID          uuid.UUID  `gorm:"column:proposal_id;type:uuid;primaryKey"`
	DAOID               uuid.UUID  `gorm:"column:dao_id;type:uuid"`
	Title               string     `gorm:"column:title"`
	Description         string     `gorm:"column:description"`
	CreatorAddress      string     `gorm:"column:creator_address"`
	Status              string     `gorm:"column:status"`
	VotesFor            int64      `gorm:"column:votes_for"`
	VotesAgainst        int64      `gorm:"column:votes_against"`
	VotesAbstain        int64      `gorm:"column:votes_abstain"`
	RequiredVotes       int64      `gorm:"column:required_votes"`
	VotingEndsAt        time.Time  `gorm:"column:voting_ends_at"`
	ExecutionClaimedAt  *time.Time `gorm:"column:execution_claimed_at"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	ExecutedAt          *time.Time `gorm:"column:executed_at"`
	ModeratorID         *uuid.UUID `gorm:"column:moderator_id"`
}

func (proposalModel) TableName() string { return "proposals" }

type voteModel struct {
	ProposalID   uuid.UUID `gorm:"column:proposal_id;type:uuid;primaryKey"`
	VoterAddress string    `gorm:"column:voter_address;primaryKey"`
	Choice       string    `gorm:"column:choice"`
	Weight       int64     `gorm:"column:weight"`
	CastAt       time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string { return "proposal_votes" }

type moderatorModel struct {
	ModeratorID       uuid.UUID `gorm:"column:moderator_id;type:uuid;primaryKey"`
	DAOID             uuid.UUID `gorm:"column:dao_id;type:uuid"`
	Name              string    `gorm:"column:name"`
	Category          string    `gorm:"column:category"`
	Description       string    `gorm:"column:description"`
	Status            string    `gorm:"column:status"`
	HourlyPrice       int64     `gorm:"column:hourly_price"`
	MonthlyPrice      int64     `gorm:"column:monthly_price"`
	BuyoutPrice       int64     `gorm:"column:buyout_price"`
	AssetID           int64     `gorm:"column:asset_id"`
	MintTxID          string    `gorm:"column:mint_tx_id"`
	ContentHash       string    `gorm:"column:content_hash"`
	CreatorAddress    string    `gorm:"column:creator_address"`
	CurrentOwner      string    `gorm:"column:current_owner"`
	TotalTransactions int64     `gorm:"column:total_transactions"`
	TotalRevenue      int64     `gorm:"column:total_revenue"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (moderatorModel) TableName() string { return "ai_moderators" }

type grantModel struct {
	ModeratorID  uuid.UUID  `gorm:"column:moderator_id;type:uuid;primaryKey"`
	BuyerAddress string     `gorm:"column:buyer_address;primaryKey"`
	Kind         string     `gorm:"column:kind"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	TotalSpent   int64      `gorm:"column:total_spent"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (grantModel) TableName() string { return "moderator_purchases" }

type revenueModel struct {
	RecordID   uuid.UUID `gorm:"column:record_id;type:uuid;primaryKey"`
	DAOID      uuid.UUID `gorm:"column:dao_id;type:uuid"`
	Amount     int64     `gorm:"column:amount"`
	SourceTxID string    `gorm:"column:source_tx_id"`
	Purpose    string    `gorm:"column:purpose"`
	RecordedAt time.Time `gorm:"column:recorded_at"`
}

func (revenueModel) TableName() string { return "dao_revenue" }

type reconciliationModel struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Action         string     `gorm:"column:action"`
	LedgerTxID     string     `gorm:"column:ledger_tx_id"`
	AssetID        int64      `gorm:"column:asset_id"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (reconciliationModel) TableName() string { return "reconciliation_queue" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "market_outbox" }
