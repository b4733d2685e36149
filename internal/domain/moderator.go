package domain

import (
	"time"

	"github.com/google/uuid"
)

// ModeratorStatus is the closed set of moderator lifecycle states.
type ModeratorStatus string

const (
	ModeratorStatusTraining ModeratorStatus = "training"
	ModeratorStatusActive   ModeratorStatus = "active"
	ModeratorStatusInactive ModeratorStatus = "inactive"
)

// GrantKind is the closed set of access types a buyer can purchase.
type GrantKind string

const (
	GrantKindHourly  GrantKind = "hourly"
	GrantKindMonthly GrantKind = "monthly"
	GrantKindBuyout  GrantKind = "buyout"
)

// Pricing holds creator-set prices in micro-units.
type Pricing struct {
	Hourly  int64
	Monthly int64
	Buyout  int64
}

// Validate enforces the set-time price constraints: nothing negative and a
// buyout at least as expensive as one month.
func (p Pricing) Validate() error {
	if p.Hourly < 0 || p.Monthly < 0 || p.Buyout < 0 {
		return ErrInvalidInput
	}
	if p.Buyout < p.Monthly {
		return ErrInvalidInput
	}
	return nil
}

// Moderator is the monetizable asset minted when a proposal executes.
// AssetID is immutable once minted; CurrentOwner changes only on buyout.
type Moderator struct {
	ModeratorID       uuid.UUID
	DAOID             uuid.UUID
	Name              string
	Category          string
	Description       string
	Status            ModeratorStatus
	Pricing           Pricing
	AssetID           int64
	MintTxID          string
	ContentHash       string
	CreatorAddress    string
	CurrentOwner      string
	TotalTransactions int64
	TotalRevenue      int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AccessGrant is a buyer's right to use a moderator, keyed by
// (moderator, buyer). ExpiresAt is nil for buyout (permanent). At most one
// active grant exists per key; purchases extend or replace, never stack.
type AccessGrant struct {
	ModeratorID  uuid.UUID
	BuyerAddress string
	Kind         GrantKind
	ExpiresAt    *time.Time
	TotalSpent   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveAt reports whether the grant confers access at the given instant.
// Expiry is lazy: stale rows simply stop conferring access.
func (g AccessGrant) ActiveAt(now time.Time) bool {
	if g.Kind == GrantKindBuyout {
		return true
	}
	return g.ExpiresAt != nil && g.ExpiresAt.After(now)
}
