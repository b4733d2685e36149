package domain

import (
	"time"

	"github.com/google/uuid"
)

// DAOStatus is the closed set of DAO lifecycle states. The pending->active
// transition is one-way; criteria ceasing to hold later never reverts it.
type DAOStatus string

const (
	DAOStatusPending  DAOStatus = "pending"
	DAOStatusActive   DAOStatus = "active"
	DAOStatusInactive DAOStatus = "inactive"
)

// DAO is a member-funded organization that owns and monetizes moderators.
// All money amounts are ledger micro-units; display conversion is external.
type DAO struct {
	DAOID                      uuid.UUID
	Name                       string
	Category                   string
	Status                     DAOStatus
	CreatorAddress             string
	MinStake                   int64
	VotingPeriodDays           int
	ActivationThresholdPercent int
	TreasuryBalance            int64
	MemberCount                int
	ActivationTxID             string
	CreatedAt                  time.Time
	ActivatedAt                *time.Time
}

// Member is a DAO membership keyed by (DAO, address). VotingWeight is frozen
// at join time so past vote tallies replay deterministically even when the
// member's stake later changes.
type Member struct {
	DAOID        uuid.UUID
	Address      string
	StakeAmount  int64
	VotingWeight int64
	IsActive     bool
	StakeTxID    string
	JoinedAt     time.Time
}
