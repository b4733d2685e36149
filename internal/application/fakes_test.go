package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
	"github.com/google/uuid"
)

// store is the shared in-memory backing state for the repository fakes. The
// multi-entity transactions (AddMemberTx, CastVoteTx, CommitPurchaseTx)
// mutate under one mutex so the fakes keep the same atomicity the real
// repositories get from database transactions.
type store struct {
	mu sync.Mutex

	daos             map[uuid.UUID]domain.DAO
	activationClaims map[uuid.UUID]bool
	members          map[string]domain.Member

	proposals       map[uuid.UUID]domain.Proposal
	votes           map[string]domain.Vote
	executionClaims map[uuid.UUID]bool

	moderators map[uuid.UUID]domain.Moderator
	grants     map[string]domain.AccessGrant
	revenue    []domain.RevenueRecord
	appliedTx  map[string]bool

	outboxEvents []ports.OutboxEvent
	reconRecords []ports.ReconciliationRecord

	failAddMember         error
	failCompleteExecution error
	failCommitPurchase    error
	// failExecutedReads makes proposal reads fail once the row is executed,
	// isolating the read after a durable execution commit.
	failExecutedReads error
}

func newStore() *store {
	return &store{
		daos:             map[uuid.UUID]domain.DAO{},
		activationClaims: map[uuid.UUID]bool{},
		members:          map[string]domain.Member{},
		proposals:        map[uuid.UUID]domain.Proposal{},
		votes:            map[string]domain.Vote{},
		executionClaims:  map[uuid.UUID]bool{},
		moderators:       map[uuid.UUID]domain.Moderator{},
		grants:           map[string]domain.AccessGrant{},
		appliedTx:        map[string]bool{},
	}
}

func memberKey(daoID uuid.UUID, address string) string {
	return daoID.String() + "|" + address
}

func voteKey(proposalID uuid.UUID, address string) string {
	return proposalID.String() + "|" + address
}

func grantKey(moderatorID uuid.UUID, buyer string) string {
	return moderatorID.String() + "|" + buyer
}

type fakeDAOs struct{ s *store }

func (f *fakeDAOs) Create(_ context.Context, dao domain.DAO) (domain.DAO, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.daos[dao.DAOID] = dao
	return dao, nil
}

func (f *fakeDAOs) GetByID(_ context.Context, daoID uuid.UUID) (domain.DAO, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	dao, ok := f.s.daos[daoID]
	if !ok {
		return domain.DAO{}, domain.ErrNotFound
	}
	return dao, nil
}

func (f *fakeDAOs) List(_ context.Context, status domain.DAOStatus, _, _ int) ([]domain.DAO, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.DAO
	for _, dao := range f.s.daos {
		if status == "" || dao.Status == status {
			out = append(out, dao)
		}
	}
	return out, nil
}

func (f *fakeDAOs) AddMemberTx(_ context.Context, member domain.Member) (domain.DAO, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failAddMember != nil {
		return domain.DAO{}, f.s.failAddMember
	}
	key := memberKey(member.DAOID, member.Address)
	if _, exists := f.s.members[key]; exists {
		return domain.DAO{}, domain.ErrConflict
	}
	dao, ok := f.s.daos[member.DAOID]
	if !ok {
		return domain.DAO{}, domain.ErrNotFound
	}
	f.s.members[key] = member
	dao.MemberCount++
	dao.TreasuryBalance += member.StakeAmount
	f.s.daos[member.DAOID] = dao
	return dao, nil
}

func (f *fakeDAOs) ClaimActivation(_ context.Context, daoID uuid.UUID, _ time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	dao, ok := f.s.daos[daoID]
	if !ok || dao.Status != domain.DAOStatusPending || f.s.activationClaims[daoID] {
		return false, nil
	}
	f.s.activationClaims[daoID] = true
	return true, nil
}

func (f *fakeDAOs) ReleaseActivationClaim(_ context.Context, daoID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.activationClaims, daoID)
	return nil
}

func (f *fakeDAOs) MarkActive(_ context.Context, daoID uuid.UUID, txID string, at time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	dao, ok := f.s.daos[daoID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if dao.Status != domain.DAOStatusPending {
		return false, nil
	}
	dao.Status = domain.DAOStatusActive
	dao.ActivationTxID = txID
	dao.ActivatedAt = &at
	f.s.daos[daoID] = dao
	return true, nil
}

type fakeMembers struct{ s *store }

func (f *fakeMembers) Get(_ context.Context, daoID uuid.UUID, address string) (domain.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	member, ok := f.s.members[memberKey(daoID, address)]
	if !ok {
		return domain.Member{}, domain.ErrNotFound
	}
	return member, nil
}

func (f *fakeMembers) ListActiveByDAO(_ context.Context, daoID uuid.UUID) ([]domain.Member, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Member
	for _, m := range f.s.members {
		if m.DAOID == daoID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembers) TotalActiveStake(_ context.Context, daoID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var total int64
	for _, m := range f.s.members {
		if m.DAOID == daoID && m.IsActive {
			total += m.StakeAmount
		}
	}
	return total, nil
}

type fakeProposals struct{ s *store }

func (f *fakeProposals) Create(_ context.Context, proposal domain.Proposal) (domain.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.proposals[proposal.ProposalID] = proposal
	return proposal, nil
}

func (f *fakeProposals) GetByID(_ context.Context, proposalID uuid.UUID) (domain.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.proposals[proposalID]
	if !ok {
		return domain.Proposal{}, domain.ErrNotFound
	}
	if f.s.failExecutedReads != nil && p.Status == domain.ProposalStatusExecuted {
		return domain.Proposal{}, f.s.failExecutedReads
	}
	return p, nil
}

func (f *fakeProposals) ListByDAO(_ context.Context, daoID uuid.UUID, _, _ int) ([]domain.Proposal, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Proposal
	for _, p := range f.s.proposals {
		if p.DAOID == daoID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProposals) GetVote(_ context.Context, proposalID uuid.UUID, address string) (domain.Vote, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v, ok := f.s.votes[voteKey(proposalID, address)]
	if !ok {
		return domain.Vote{}, domain.ErrNotFound
	}
	return v, nil
}

func (f *fakeProposals) ListVotes(_ context.Context, proposalID uuid.UUID) ([]domain.Vote, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Vote
	for _, v := range f.s.votes {
		if v.ProposalID == proposalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeProposals) CastVoteTx(_ context.Context, vote domain.Vote) (domain.Proposal, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.proposals[vote.ProposalID]
	if !ok {
		return domain.Proposal{}, false, domain.ErrNotFound
	}
	if p.Status != domain.ProposalStatusActive || vote.CastAt.After(p.VotingEndsAt) {
		return domain.Proposal{}, false, domain.ErrProposalClosed
	}

	key := voteKey(vote.ProposalID, vote.Address)
	if prior, exists := f.s.votes[key]; exists {
		switch prior.Choice {
		case domain.VoteChoiceYes:
			p.VotesFor -= prior.Weight
		case domain.VoteChoiceNo:
			p.VotesAgainst -= prior.Weight
		case domain.VoteChoiceAbstain:
			p.VotesAbstain -= prior.Weight
		}
	}
	f.s.votes[key] = vote
	switch vote.Choice {
	case domain.VoteChoiceYes:
		p.VotesFor += vote.Weight
	case domain.VoteChoiceNo:
		p.VotesAgainst += vote.Weight
	case domain.VoteChoiceAbstain:
		p.VotesAbstain += vote.Weight
	}

	passed := false
	if p.VotesFor >= p.RequiredVotes && p.RequiredVotes > 0 {
		p.Status = domain.ProposalStatusPassed
		passed = true
	}
	f.s.proposals[vote.ProposalID] = p
	return p, passed, nil
}

func (f *fakeProposals) RejectExpired(_ context.Context, proposalID uuid.UUID, now time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.proposals[proposalID]
	if !ok || p.Status != domain.ProposalStatusActive || !now.After(p.VotingEndsAt) {
		return false, nil
	}
	p.Status = domain.ProposalStatusRejected
	f.s.proposals[proposalID] = p
	return true, nil
}

func (f *fakeProposals) SweepExpired(_ context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var count int64
	for id, p := range f.s.proposals {
		if p.Status == domain.ProposalStatusActive && now.After(p.VotingEndsAt) {
			p.Status = domain.ProposalStatusRejected
			f.s.proposals[id] = p
			count++
		}
	}
	return count, nil
}

func (f *fakeProposals) ClaimExecution(_ context.Context, proposalID uuid.UUID, _ time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.proposals[proposalID]
	if !ok || p.Status != domain.ProposalStatusPassed || f.s.executionClaims[proposalID] {
		return false, nil
	}
	f.s.executionClaims[proposalID] = true
	return true, nil
}

func (f *fakeProposals) ReleaseExecutionClaim(_ context.Context, proposalID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.executionClaims, proposalID)
	return nil
}

func (f *fakeProposals) CompleteExecutionTx(_ context.Context, proposalID uuid.UUID, moderator domain.Moderator, event ports.OutboxEvent, at time.Time) (domain.Moderator, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.proposals[proposalID]
	if !ok {
		return domain.Moderator{}, domain.ErrNotFound
	}
	if p.Status == domain.ProposalStatusExecuted {
		if p.ModeratorID != nil {
			if existing, ok := f.s.moderators[*p.ModeratorID]; ok {
				return existing, nil
			}
		}
		return domain.Moderator{}, domain.ErrNotFound
	}
	if f.s.failCompleteExecution != nil {
		return domain.Moderator{}, f.s.failCompleteExecution
	}
	f.s.moderators[moderator.ModeratorID] = moderator
	p.Status = domain.ProposalStatusExecuted
	p.ExecutedAt = &at
	modID := moderator.ModeratorID
	p.ModeratorID = &modID
	f.s.proposals[proposalID] = p
	f.s.outboxEvents = append(f.s.outboxEvents, event)
	return moderator, nil
}

type fakeModerators struct{ s *store }

func (f *fakeModerators) GetByID(_ context.Context, moderatorID uuid.UUID) (domain.Moderator, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.moderators[moderatorID]
	if !ok {
		return domain.Moderator{}, domain.ErrNotFound
	}
	return m, nil
}

func (f *fakeModerators) List(_ context.Context, status domain.ModeratorStatus, _, _ int) ([]domain.Moderator, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Moderator
	for _, m := range f.s.moderators {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeModerators) ListByDAO(_ context.Context, daoID uuid.UUID) ([]domain.Moderator, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.Moderator
	for _, m := range f.s.moderators {
		if m.DAOID == daoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeModerators) UpdatePricing(_ context.Context, moderatorID uuid.UUID, pricing domain.Pricing, at time.Time) (domain.Moderator, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.moderators[moderatorID]
	if !ok {
		return domain.Moderator{}, domain.ErrNotFound
	}
	m.Pricing = pricing
	m.UpdatedAt = at
	f.s.moderators[moderatorID] = m
	return m, nil
}

func (f *fakeModerators) SetStatus(_ context.Context, moderatorID uuid.UUID, from, to domain.ModeratorStatus, at time.Time) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m, ok := f.s.moderators[moderatorID]
	if !ok || m.Status != from {
		return false, nil
	}
	m.Status = to
	m.UpdatedAt = at
	f.s.moderators[moderatorID] = m
	return true, nil
}

type fakeGrants struct{ s *store }

func (f *fakeGrants) Get(_ context.Context, moderatorID uuid.UUID, buyer string) (domain.AccessGrant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	g, ok := f.s.grants[grantKey(moderatorID, buyer)]
	if !ok {
		return domain.AccessGrant{}, domain.ErrNotFound
	}
	return g, nil
}

func (f *fakeGrants) ListByBuyer(_ context.Context, buyer string) ([]domain.AccessGrant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.AccessGrant
	for _, g := range f.s.grants {
		if g.BuyerAddress == buyer {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGrants) CommitPurchaseTx(_ context.Context, commit ports.PurchaseCommit, event ports.OutboxEvent) (domain.AccessGrant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failCommitPurchase != nil {
		return domain.AccessGrant{}, f.s.failCommitPurchase
	}
	key := grantKey(commit.ModeratorID, commit.BuyerAddress)
	if f.s.appliedTx[commit.LedgerTxID] {
		return f.s.grants[key], nil
	}

	grant, exists := f.s.grants[key]
	if !exists {
		grant = domain.AccessGrant{
			ModeratorID:  commit.ModeratorID,
			BuyerAddress: commit.BuyerAddress,
			Kind:         commit.Kind,
			CreatedAt:    commit.ConfirmedAt,
		}
	}
	grant.TotalSpent += commit.GrossAmount
	grant.UpdatedAt = commit.ConfirmedAt
	if commit.Kind == domain.GrantKindBuyout || grant.Kind == domain.GrantKindBuyout {
		grant.Kind = domain.GrantKindBuyout
		grant.ExpiresAt = nil
	} else {
		base := commit.ConfirmedAt
		if grant.ExpiresAt != nil && grant.ExpiresAt.After(base) {
			base = *grant.ExpiresAt
		}
		expires := base.Add(commit.ExtendBy)
		grant.Kind = commit.Kind
		grant.ExpiresAt = &expires
	}
	f.s.grants[key] = grant

	m, ok := f.s.moderators[commit.ModeratorID]
	if !ok {
		return domain.AccessGrant{}, domain.ErrNotFound
	}
	m.TotalTransactions++
	m.TotalRevenue += commit.GrossAmount
	if commit.Kind == domain.GrantKindBuyout {
		m.CurrentOwner = commit.BuyerAddress
	}
	f.s.moderators[commit.ModeratorID] = m

	f.s.revenue = append(f.s.revenue, domain.RevenueRecord{
		RecordID:   uuid.New(),
		DAOID:      commit.DAOID,
		Amount:     commit.OwnerShare,
		SourceTxID: commit.LedgerTxID,
		Purpose:    commit.Note,
		RecordedAt: commit.ConfirmedAt,
	})
	f.s.appliedTx[commit.LedgerTxID] = true
	f.s.outboxEvents = append(f.s.outboxEvents, event)
	return grant, nil
}

type fakeRevenue struct{ s *store }

func (f *fakeRevenue) ListByDAO(_ context.Context, daoID uuid.UUID, _, _ int) ([]domain.RevenueRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []domain.RevenueRecord
	for _, r := range f.s.revenue {
		if r.DAOID == daoID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRevenue) TotalByDAO(_ context.Context, daoID uuid.UUID) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var total int64
	for _, r := range f.s.revenue {
		if r.DAOID == daoID {
			total += r.Amount
		}
	}
	return total, nil
}

type fakeReconciliations struct{ s *store }

func (f *fakeReconciliations) Enqueue(_ context.Context, record ports.ReconciliationRecord) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.reconRecords = append(f.s.reconRecords, record)
	return nil
}

func (f *fakeReconciliations) ClaimPending(_ context.Context, limit int, _ string, _ time.Time) ([]ports.ReconciliationRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []ports.ReconciliationRecord
	for _, r := range f.s.reconRecords {
		if r.CompletedAt == nil && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReconciliations) MarkCompleted(_ context.Context, id uuid.UUID, _ string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.reconRecords {
		if f.s.reconRecords[i].ID == id {
			f.s.reconRecords[i].CompletedAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeReconciliations) MarkFailed(_ context.Context, id uuid.UUID, _, errMsg string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.reconRecords {
		if f.s.reconRecords[i].ID == id {
			f.s.reconRecords[i].RetryCount++
			f.s.reconRecords[i].LastError = &errMsg
			f.s.reconRecords[i].LastErrorAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeReconciliations) MarkDeadLettered(_ context.Context, id uuid.UUID, _, errMsg string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i := range f.s.reconRecords {
		if f.s.reconRecords[i].ID == id {
			f.s.reconRecords[i].LastError = &errMsg
			f.s.reconRecords[i].DeadLetteredAt = &at
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeOutbox struct{ s *store }

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.outboxEvents = append(f.s.outboxEvents, event)
	return nil
}

func (f *fakeOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}
func (f *fakeOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

// fakeLedger counts submissions per method and confirms everything unless an
// error is injected. Transaction and asset IDs are sequential.
type fakeLedger struct {
	mu sync.Mutex

	payments  []ports.PaymentIntent
	appCalls  []ports.AppCallIntent
	groups    int
	assets    []ports.AssetCreateIntent
	txSeq     int
	assetSeq  int64
	errSubmit error
}

func (f *fakeLedger) nextConfirmation() ports.Confirmation {
	f.txSeq++
	return ports.Confirmation{TxID: fmt.Sprintf("TX%04d", f.txSeq), ConfirmedRound: int64(f.txSeq)}
}

func (f *fakeLedger) SubmitPayment(_ context.Context, payment ports.PaymentIntent) (ports.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errSubmit != nil {
		return ports.Confirmation{}, f.errSubmit
	}
	f.payments = append(f.payments, payment)
	return f.nextConfirmation(), nil
}

func (f *fakeLedger) SubmitAppCall(_ context.Context, call ports.AppCallIntent) (ports.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errSubmit != nil {
		return ports.Confirmation{}, f.errSubmit
	}
	f.appCalls = append(f.appCalls, call)
	return f.nextConfirmation(), nil
}

func (f *fakeLedger) SubmitPurchaseGroup(_ context.Context, payment ports.PaymentIntent, call ports.AppCallIntent) (ports.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errSubmit != nil {
		return ports.Confirmation{}, f.errSubmit
	}
	f.payments = append(f.payments, payment)
	f.appCalls = append(f.appCalls, call)
	f.groups++
	return f.nextConfirmation(), nil
}

func (f *fakeLedger) CreateAsset(_ context.Context, asset ports.AssetCreateIntent) (ports.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errSubmit != nil {
		return ports.Confirmation{}, f.errSubmit
	}
	f.assets = append(f.assets, asset)
	conf := f.nextConfirmation()
	f.assetSeq++
	conf.AssetID = f.assetSeq
	return conf, nil
}

func (f *fakeLedger) submissions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.txSeq
}

type cacheEntry struct {
	allowed bool
}

type fakeAccessCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newFakeAccessCache() *fakeAccessCache {
	return &fakeAccessCache{entries: map[string]cacheEntry{}}
}

func (f *fakeAccessCache) GetAccess(_ context.Context, moderatorID uuid.UUID, address string) (bool, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[grantKey(moderatorID, address)]
	if !ok {
		return false, false, nil
	}
	return entry.allowed, true, nil
}

func (f *fakeAccessCache) SetAccess(_ context.Context, moderatorID uuid.UUID, address string, allowed bool, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[grantKey(moderatorID, address)] = cacheEntry{allowed: allowed}
	return nil
}

func (f *fakeAccessCache) InvalidateAccess(_ context.Context, moderatorID uuid.UUID, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, grantKey(moderatorID, address))
	return nil
}
