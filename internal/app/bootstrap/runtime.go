package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/citadelx/marketplace/internal/adapters/cache"
	eventadapter "github.com/citadelx/marketplace/internal/adapters/events"
	grpcadapter "github.com/citadelx/marketplace/internal/adapters/grpc"
	httpadapter "github.com/citadelx/marketplace/internal/adapters/http"
	ledgeradapter "github.com/citadelx/marketplace/internal/adapters/ledger"
	"github.com/citadelx/marketplace/internal/adapters/postgres"
	"github.com/citadelx/marketplace/internal/adapters/security"
	"github.com/citadelx/marketplace/internal/application"
	"github.com/citadelx/marketplace/internal/domain"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	grpcLis    net.Listener
	outbox     *eventadapter.OutboxWorker
	reconciler *eventadapter.ReconciliationWorker
	lifecycle  *eventadapter.LifecycleWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping marketplace service", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)

	verifier, err := security.NewWalletVerifier(cfg.WalletTokenSecret)
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init wallet verifier: %w", err)
	}

	signer := ledgeradapter.NewRemoteSigner(cfg.WalletSignerURL, cfg.WalletSignerToken, 15*time.Second)
	gateway := ledgeradapter.NewGateway(ledgeradapter.Config{
		BaseURL:        cfg.LedgerNodeURL,
		APIToken:       cfg.LedgerAPIToken,
		RequestTimeout: 15 * time.Second,
		MaxAttempts:    cfg.LedgerMaxAttempts,
		InitialBackoff: cfg.LedgerInitialBackoff,
		PollInterval:   cfg.LedgerPollInterval,
		ConfirmTimeout: cfg.LedgerConfirmTimeout,
	}, signer, logger)

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			Criteria: domain.ActivationCriteria{
				MinMembers:         cfg.ActivationMinMembers,
				MinTreasuryBalance: cfg.ActivationMinTreasury,
				MinAgeHours:        cfg.ActivationMinAgeHours,
			},
			PlatformFeePercent: cfg.PlatformFeePercent,
			TreasuryAddress:    cfg.TreasuryAddress,
			MarketplaceAppID:   cfg.MarketplaceAppID,
			MonthDuration:      time.Duration(cfg.MonthDays) * 24 * time.Hour,
		},
		Logger:          logger,
		DAOs:            repos.DAOs,
		Members:         repos.Members,
		Proposals:       repos.Proposals,
		Moderators:      repos.Moderators,
		Grants:          repos.Grants,
		Revenue:         repos.Revenue,
		Reconciliations: repos.Reconciliations,
		Outbox:          repos.Outbox,
		Ledger:          gateway,
		AccessCache:     cacheadapter.NewRedisAccessCache(redisClient),
	})

	handler := httpadapter.NewHandler(svc, verifier)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	grpcadapter.Register(grpcServer, grpcadapter.NewMarketInternalServer(svc))

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("listen gRPC: %w", err)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		eventadapter.NewLoggingPublisher(logger),
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)
	reconciler := eventadapter.NewReconciliationWorker(
		logger,
		repos.Reconciliations,
		svc,
		cfg.ReconcilePollInterval,
		cfg.ReconcileBatchSize,
		cfg.ReconcileClaimTTL,
		cfg.ReconcileMaxRetries,
	)
	lifecycle := eventadapter.NewLifecycleWorker(logger, svc, cfg.LifecycleInterval, cfg.LifecycleBatchSize)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcServer,
		grpcLis:    lis,
		outbox:     outbox,
		reconciler: reconciler,
		lifecycle:  lifecycle,
		cleanupFn: func(ctx context.Context) {
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", r.grpcLis.Addr().String())
		if err := r.grpcServer.Serve(r.grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return nil
}

// RunWorker drives the background loops: outbox publishing, ledger
// reconciliation, and DAO/proposal lifecycle sweeps.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 3)
	go func() {
		r.logger.Info("outbox worker started")
		errCh <- r.outbox.Run(ctx)
	}()
	go func() {
		r.logger.Info("reconciliation worker started")
		errCh <- r.reconciler.Run(ctx)
	}()
	go func() {
		r.logger.Info("lifecycle worker started")
		errCh <- r.lifecycle.Run(ctx)
	}()

	var firstErr error
	for i := 0; i < 3; i++ {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) && firstErr == nil {
			firstErr = err
			stop()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return firstErr
}
