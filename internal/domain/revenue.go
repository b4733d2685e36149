package domain

import (
	"time"

	"github.com/google/uuid"
)

// RevenueRecord is one append-only revenue event credited to a DAO.
// Records are never mutated; totals and shares are computed on read.
type RevenueRecord struct {
	RecordID   uuid.UUID
	DAOID      uuid.UUID
	Amount     int64
	SourceTxID string
	Purpose    string
	RecordedAt time.Time
}

// DistributeShares splits total revenue across members proportionally to
// stake. Shares are floored; the rounding remainder goes to the largest
// stakeholder so the shares always sum exactly to the total. A zero-stake
// member receives zero. Membership is taken as-of the call (current members
// always share the whole pot, matching the treasury's redistribution model).
func DistributeShares(members []Member, treasuryBalance, totalRevenue int64) map[string]int64 {
	shares := make(map[string]int64, len(members))
	if treasuryBalance <= 0 || totalRevenue <= 0 {
		for _, m := range members {
			shares[m.Address] = 0
		}
		return shares
	}

	var distributed int64
	largest := ""
	var largestStake int64 = -1
	for _, m := range members {
		share := (m.StakeAmount * totalRevenue) / treasuryBalance
		shares[m.Address] = share
		distributed += share
		if m.StakeAmount > largestStake {
			largestStake = m.StakeAmount
			largest = m.Address
		}
	}
	if remainder := totalRevenue - distributed; remainder > 0 && largest != "" {
		shares[largest] += remainder
	}
	return shares
}
