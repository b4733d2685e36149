package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProposalStatus is the closed set of proposal lifecycle states.
type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusPassed   ProposalStatus = "passed"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusExecuted ProposalStatus = "executed"
)

// VoteChoice is the closed set of vote options. Abstain is tallied for
// reporting but never counts toward passing or rejecting.
type VoteChoice string

const (
	VoteChoiceYes     VoteChoice = "yes"
	VoteChoiceNo      VoteChoice = "no"
	VoteChoiceAbstain VoteChoice = "abstain"
)

// Proposal belongs to one DAO. RequiredVotes is frozen at creation time so
// later membership changes cannot retroactively change what "passed" meant.
type Proposal struct {
	ProposalID     uuid.UUID
	DAOID          uuid.UUID
	Title          string
	Description    string
	CreatorAddress string
	Status         ProposalStatus
	VotesFor       int64
	VotesAgainst   int64
	VotesAbstain   int64
	RequiredVotes  int64
	VotingEndsAt   time.Time
	CreatedAt      time.Time
	ExecutedAt     *time.Time
	ModeratorID    *uuid.UUID
}

// Closed reports whether votes are no longer accepted at the given instant.
func (p Proposal) Closed(now time.Time) bool {
	return p.Status != ProposalStatusActive || now.After(p.VotingEndsAt)
}

// Vote is one member's vote on a proposal, keyed by (proposal, address).
// A resubmission overwrites; Weight is the frozen voting weight at cast time.
type Vote struct {
	ProposalID uuid.UUID
	Address    string
	Choice     VoteChoice
	Weight     int64
	CastAt     time.Time
}
