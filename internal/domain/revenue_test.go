package domain

import "testing"

func TestDistributeSharesProportional(t *testing.T) {
	t.Parallel()

	members := []Member{
		{Address: "alice", StakeAmount: 600},
		{Address: "bob", StakeAmount: 300},
		{Address: "carol", StakeAmount: 100},
	}

	shares := DistributeShares(members, 1000, 10_000)
	if shares["alice"] != 6000 || shares["bob"] != 3000 || shares["carol"] != 1000 {
		t.Fatalf("unexpected shares: %v", shares)
	}
}

func TestDistributeSharesRemainderToLargestStakeholder(t *testing.T) {
	t.Parallel()

	members := []Member{
		{Address: "alice", StakeAmount: 1},
		{Address: "bob", StakeAmount: 1},
		{Address: "carol", StakeAmount: 1},
	}

	shares := DistributeShares(members, 3, 100)
	var sum int64
	for _, s := range shares {
		sum += s
	}
	if sum != 100 {
		t.Fatalf("shares must sum to the total, got %d", sum)
	}
}

func TestDistributeSharesSumsExactly(t *testing.T) {
	t.Parallel()

	members := []Member{
		{Address: "a", StakeAmount: 333},
		{Address: "b", StakeAmount: 333},
		{Address: "c", StakeAmount: 334},
	}

	const total = 999_999
	shares := DistributeShares(members, 1000, total)
	var sum int64
	for _, s := range shares {
		sum += s
	}
	if sum != total {
		t.Fatalf("expected exact sum %d, got %d", total, sum)
	}
	if shares["c"] < shares["a"] {
		t.Fatalf("largest stakeholder should not receive less: %v", shares)
	}
}

func TestDistributeSharesZeroStakeMember(t *testing.T) {
	t.Parallel()

	members := []Member{
		{Address: "whale", StakeAmount: 1000},
		{Address: "ghost", StakeAmount: 0},
	}

	shares := DistributeShares(members, 1000, 500)
	if shares["ghost"] != 0 {
		t.Fatalf("zero-stake member must receive zero, got %d", shares["ghost"])
	}
	if shares["whale"] != 500 {
		t.Fatalf("expected whale to receive full pot, got %d", shares["whale"])
	}
}

func TestDistributeSharesEmptyPot(t *testing.T) {
	t.Parallel()

	members := []Member{{Address: "alice", StakeAmount: 100}}

	shares := DistributeShares(members, 100, 0)
	if shares["alice"] != 0 {
		t.Fatalf("expected zero share with no revenue, got %d", shares["alice"])
	}
	shares = DistributeShares(members, 0, 100)
	if shares["alice"] != 0 {
		t.Fatalf("expected zero share with empty treasury, got %d", shares["alice"])
	}
}
