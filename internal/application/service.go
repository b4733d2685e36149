package application

import (
	"log/slog"
	"time"

	"github.com/citadelx/marketplace/internal/domain"
	"github.com/citadelx/marketplace/internal/ports"
)

// Config carries the injected business constants. None of these are
// hard-coded in the core logic; the bootstrap layer resolves them from
// file/env configuration.
type Config struct {
	// Activation thresholds a pending DAO must meet.
	Criteria domain.ActivationCriteria
	// PlatformFeePercent of every purchase is retained by the platform; the
	// remainder is credited to the owning DAO. Defaults to 10.
	PlatformFeePercent int
	// TreasuryAddress receives stake payments and purchase proceeds.
	TreasuryAddress string
	// MarketplaceAppID is the on-ledger application targeted by grouped
	// purchase calls and activation calls.
	MarketplaceAppID int64
	// MonthDuration is the length of one purchased month. The ledger
	// contract approximates a month as 30 days.
	MonthDuration time.Duration
}

type Service struct {
	cfg             Config
	logger          *slog.Logger
	daos            ports.DAORepository
	members         ports.MemberRepository
	proposals       ports.ProposalRepository
	moderators      ports.ModeratorRepository
	grants          ports.GrantRepository
	revenue         ports.RevenueRepository
	reconciliations ports.ReconciliationRepository
	outbox          ports.OutboxRepository
	ledger          ports.LedgerGateway
	accessCache     ports.AccessCache
	nowFn           func() time.Time
}

type Dependencies struct {
	Config          Config
	Logger          *slog.Logger
	DAOs            ports.DAORepository
	Members         ports.MemberRepository
	Proposals       ports.ProposalRepository
	Moderators      ports.ModeratorRepository
	Grants          ports.GrantRepository
	Revenue         ports.RevenueRepository
	Reconciliations ports.ReconciliationRepository
	Outbox          ports.OutboxRepository
	Ledger          ports.LedgerGateway
	AccessCache     ports.AccessCache
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.PlatformFeePercent <= 0 || cfg.PlatformFeePercent >= 100 {
		cfg.PlatformFeePercent = 10
	}
	if cfg.MonthDuration <= 0 {
		cfg.MonthDuration = 30 * 24 * time.Hour
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:             cfg,
		logger:          logger,
		daos:            deps.DAOs,
		members:         deps.Members,
		proposals:       deps.Proposals,
		moderators:      deps.Moderators,
		grants:          deps.Grants,
		revenue:         deps.Revenue,
		reconciliations: deps.Reconciliations,
		outbox:          deps.Outbox,
		ledger:          deps.Ledger,
		accessCache:     deps.AccessCache,
		nowFn:           func() time.Time { return time.Now().UTC() },
	}
}
