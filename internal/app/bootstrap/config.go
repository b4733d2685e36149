package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the marketplace service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	WalletTokenSecret string
	WalletSignerURL   string
	WalletSignerToken string

	LedgerNodeURL        string
	LedgerAPIToken       string
	LedgerMaxAttempts    int
	LedgerInitialBackoff time.Duration
	LedgerPollInterval   time.Duration
	LedgerConfirmTimeout time.Duration

	TreasuryAddress    string
	MarketplaceAppID   int64
	PlatformFeePercent int
	MonthDays          int

	ActivationMinMembers  int
	ActivationMinTreasury int64
	ActivationMinAgeHours int

	MaxDBConns int32

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int

	ReconcilePollInterval time.Duration
	ReconcileBatchSize    int
	ReconcileClaimTTL     time.Duration
	ReconcileMaxRetries   int

	LifecycleInterval  time.Duration
	LifecycleBatchSize int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL     string `yaml:"postgres_url"`
		RedisURL        string `yaml:"redis_url"`
		LedgerNodeURL   string `yaml:"ledger_node_url"`
		WalletSignerURL string `yaml:"wallet_signer_url"`
	} `yaml:"dependencies"`
	Market struct {
		TreasuryAddress    string `yaml:"treasury_address"`
		MarketplaceAppID   int64  `yaml:"marketplace_app_id"`
		PlatformFeePercent int    `yaml:"platform_fee_percent"`
		MonthDays          int    `yaml:"month_days"`
	} `yaml:"market"`
	Activation struct {
		MinMembers  int   `yaml:"min_members"`
		MinTreasury int64 `yaml:"min_treasury"`
		MinAgeHours int   `yaml:"min_age_hours"`
	} `yaml:"activation"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "citadelx-marketplace",
		HTTPPort:              8080,
		GRPCPort:              9090,
		LedgerMaxAttempts:     3,
		LedgerInitialBackoff:  250 * time.Millisecond,
		LedgerPollInterval:    time.Second,
		LedgerConfirmTimeout:  30 * time.Second,
		PlatformFeePercent:    10,
		MonthDays:             30,
		ActivationMinMembers:  3,
		ActivationMinTreasury: 1_000_000,
		ActivationMinAgeHours: 24,
		MaxDBConns:            20,
		OutboxPollInterval:    2 * time.Second,
		OutboxBatchSize:       100,
		OutboxClaimTTL:        30 * time.Second,
		OutboxMaxRetries:      5,
		ReconcilePollInterval: 5 * time.Second,
		ReconcileBatchSize:    50,
		ReconcileClaimTTL:     time.Minute,
		ReconcileMaxRetries:   10,
		LifecycleInterval:     30 * time.Second,
		LifecycleBatchSize:    100,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Dependencies.LedgerNodeURL != "" {
			cfg.LedgerNodeURL = f.Dependencies.LedgerNodeURL
		}
		if f.Dependencies.WalletSignerURL != "" {
			cfg.WalletSignerURL = f.Dependencies.WalletSignerURL
		}
		if f.Market.TreasuryAddress != "" {
			cfg.TreasuryAddress = f.Market.TreasuryAddress
		}
		if f.Market.MarketplaceAppID > 0 {
			cfg.MarketplaceAppID = f.Market.MarketplaceAppID
		}
		if f.Market.PlatformFeePercent > 0 {
			cfg.PlatformFeePercent = f.Market.PlatformFeePercent
		}
		if f.Market.MonthDays > 0 {
			cfg.MonthDays = f.Market.MonthDays
		}
		if f.Activation.MinMembers > 0 {
			cfg.ActivationMinMembers = f.Activation.MinMembers
		}
		if f.Activation.MinTreasury > 0 {
			cfg.ActivationMinTreasury = f.Activation.MinTreasury
		}
		if f.Activation.MinAgeHours > 0 {
			cfg.ActivationMinAgeHours = f.Activation.MinAgeHours
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.WalletTokenSecret = envOrDefault("WALLET_TOKEN_SECRET", cfg.WalletTokenSecret)
	cfg.WalletSignerURL = envOrDefault("WALLET_SIGNER_URL", cfg.WalletSignerURL)
	cfg.WalletSignerToken = envOrDefault("WALLET_SIGNER_TOKEN", cfg.WalletSignerToken)
	cfg.LedgerNodeURL = envOrDefault("LEDGER_NODE_URL", cfg.LedgerNodeURL)
	cfg.LedgerAPIToken = envOrDefault("LEDGER_API_TOKEN", cfg.LedgerAPIToken)
	cfg.TreasuryAddress = envOrDefault("TREASURY_ADDRESS", cfg.TreasuryAddress)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.MarketplaceAppID = envInt64("MARKETPLACE_APP_ID", cfg.MarketplaceAppID)
	cfg.PlatformFeePercent = envInt("PLATFORM_FEE_PERCENT", cfg.PlatformFeePercent)
	cfg.MonthDays = envInt("MONTH_DAYS", cfg.MonthDays)
	cfg.ActivationMinMembers = envInt("ACTIVATION_MIN_MEMBERS", cfg.ActivationMinMembers)
	cfg.ActivationMinTreasury = envInt64("ACTIVATION_MIN_TREASURY", cfg.ActivationMinTreasury)
	cfg.ActivationMinAgeHours = envInt("ACTIVATION_MIN_AGE_HOURS", cfg.ActivationMinAgeHours)

	cfg.LedgerMaxAttempts = envInt("LEDGER_MAX_ATTEMPTS", cfg.LedgerMaxAttempts)
	cfg.LedgerInitialBackoff = time.Duration(envInt("LEDGER_INITIAL_BACKOFF_MS", int(cfg.LedgerInitialBackoff.Milliseconds()))) * time.Millisecond
	cfg.LedgerPollInterval = time.Duration(envInt("LEDGER_POLL_MS", int(cfg.LedgerPollInterval.Milliseconds()))) * time.Millisecond
	cfg.LedgerConfirmTimeout = time.Duration(envInt("LEDGER_CONFIRM_TIMEOUT_SECONDS", int(cfg.LedgerConfirmTimeout.Seconds()))) * time.Second

	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)

	cfg.ReconcilePollInterval = time.Duration(envInt("RECONCILE_POLL_SECONDS", int(cfg.ReconcilePollInterval.Seconds()))) * time.Second
	cfg.ReconcileBatchSize = envInt("RECONCILE_BATCH_SIZE", cfg.ReconcileBatchSize)
	cfg.ReconcileClaimTTL = time.Duration(envInt("RECONCILE_CLAIM_TTL_SECONDS", int(cfg.ReconcileClaimTTL.Seconds()))) * time.Second
	cfg.ReconcileMaxRetries = envInt("RECONCILE_MAX_RETRIES", cfg.ReconcileMaxRetries)

	cfg.LifecycleInterval = time.Duration(envInt("LIFECYCLE_INTERVAL_SECONDS", int(cfg.LifecycleInterval.Seconds()))) * time.Second
	cfg.LifecycleBatchSize = envInt("LIFECYCLE_BATCH_SIZE", cfg.LifecycleBatchSize)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if cfg.WalletTokenSecret == "" {
		return Config{}, fmt.Errorf("missing WALLET_TOKEN_SECRET")
	}
	if cfg.LedgerNodeURL == "" {
		return Config{}, fmt.Errorf("missing LEDGER_NODE_URL")
	}
	if cfg.TreasuryAddress == "" {
		return Config{}, fmt.Errorf("missing TREASURY_ADDRESS")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envInt64(name string, fallback int64) int64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
