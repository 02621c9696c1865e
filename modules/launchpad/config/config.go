package config

import (
	"time"

	"github.com/orbit-network/launchpad-engine/internal/postgres"
)

type Config struct {
	Database string          `mapstructure:"database"` // Database to store launchpad data.
	Postgres postgres.Config `mapstructure:"postgres"`

	Distributor DistributorConfig `mapstructure:"distributor"`
	KYC         KYCConfig         `mapstructure:"kyc"`
	Exporter    ExporterConfig    `mapstructure:"exporter"`
	Tiers       []TierConfig      `mapstructure:"tiers"`
}

type DistributorConfig struct {
	BatchSize    int            `mapstructure:"batch_size"`    // Recipients per batch. Defaults to 100.
	MaxRetries   int            `mapstructure:"max_retries"`   // Attempts per batch before the batch fails. Defaults to 3.
	BackoffBase  time.Duration  `mapstructure:"backoff_base"`  // Base delay for exponential backoff. Defaults to 1s.
	BackoffCap   time.Duration  `mapstructure:"backoff_cap"`   // Upper bound on backoff delay. Defaults to 30s.
	Parallelism  int            `mapstructure:"parallelism"`   // Concurrent transfers within a batch. Defaults to 8.
	PollInterval time.Duration  `mapstructure:"poll_interval"` // How often the worker looks for runnable jobs. Defaults to 15s.
	Executor     ExecutorConfig `mapstructure:"executor"`
}

type ExecutorConfig struct {
	// Type selects the transfer executor: `noop` | `http`.
	Type    string        `mapstructure:"type"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type KYCConfig struct {
	// Type selects the KYC oracle: `static` | `http`.
	Type    string        `mapstructure:"type"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Approved is the wallet allowlist for the static oracle.
	Approved []string `mapstructure:"approved"`
}

type ExporterConfig struct {
	Disable bool   `mapstructure:"disable"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Region  string `mapstructure:"region"`
}

type TierConfig struct {
	Name string `mapstructure:"name"`
	// MinStake and AllocationLimit are decimal strings in base units.
	MinStake        string `mapstructure:"min_stake"`
	AllocationLimit string `mapstructure:"allocation_limit"`
}
