package domain

import (
	"testing"
	"time"
)

func TestProposalClosed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		proposal Proposal
		want     bool
	}{
		{"active inside window", Proposal{Status: ProposalStatusActive, VotingEndsAt: now.Add(time.Hour)}, false},
		{"active at window end", Proposal{Status: ProposalStatusActive, VotingEndsAt: now}, false},
		{"active past window", Proposal{Status: ProposalStatusActive, VotingEndsAt: now.Add(-time.Second)}, true},
		{"passed", Proposal{Status: ProposalStatusPassed, VotingEndsAt: now.Add(time.Hour)}, true},
		{"rejected", Proposal{Status: ProposalStatusRejected, VotingEndsAt: now.Add(time.Hour)}, true},
		{"executed", Proposal{Status: ProposalStatusExecuted, VotingEndsAt: now.Add(time.Hour)}, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.proposal.Closed(now); got != tc.want {
				t.Fatalf("Closed = %v, want %v", got, tc.want)
			}
		})
	}
}
