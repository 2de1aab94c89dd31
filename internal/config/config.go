// Package config defines all configuration structures for lawglot.  No I/O
// or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LawAPIConfig holds connection parameters for the national law information
// service (law.go.kr DRF endpoints).
type LawAPIConfig struct {
	// BaseURL is the DRF endpoint root, without a trailing slash.
	BaseURL string `mapstructure:"base_url"`

	// OC is the caller identity parameter required by every DRF request.
	OC string `mapstructure:"oc"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
}

// SearchConfig holds the per-request resolution budgets.
type SearchConfig struct {
	// MaxPages bounds how many remote search pages a single search term may
	// fetch.
	MaxPages int `mapstructure:"max_pages"`

	// PageSize is the number of rows requested per search page.
	PageSize int `mapstructure:"page_size"`

	// TimeBudget is the shared wall-clock budget for all remote searching
	// done on behalf of one keyword.
	TimeBudget time.Duration `mapstructure:"time_budget"`
}

// SnapshotConfig selects where the pre-collected terminology snapshot is
// loaded from.
type SnapshotConfig struct {
	// Backend is "jsonl" (flat files under DataDir) or "postgres".
	Backend string `mapstructure:"backend"`

	// DataDir holds lstrm.jsonl and lstrm_rlt.jsonl for the jsonl backend.
	DataDir string `mapstructure:"data_dir"`

	// Watch enables rebuilding the in-memory index when the snapshot files
	// change on disk (e.g. after an offline collection run).
	Watch bool `mapstructure:"watch"`
}

// PostgresConfig holds connection parameters for the optional PostgreSQL
// snapshot store.
type PostgresConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	DBName        string        `mapstructure:"db_name"`
	SSLMode       string        `mapstructure:"ssl_mode"`
	MaxConns      int           `mapstructure:"max_conns"`
	ConnTimeout   time.Duration `mapstructure:"conn_timeout"`
	MigrationPath string        `mapstructure:"migration_path"`
}

// DSN renders the keyword/value connection string pgx expects.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds parameters for the optional remote-response cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	TTL          time.Duration `mapstructure:"ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// CollectConfig holds offline-collection tunables.
type CollectConfig struct {
	// PageSize is the number of rows per vocabulary sweep page.
	PageSize int `mapstructure:"page_size"`

	// Retries is the number of attempts per remote call.
	Retries int `mapstructure:"retries"`

	// Sleep is the pause between remote calls; retry backoff is Sleep
	// multiplied by the attempt number.
	Sleep time.Duration `mapstructure:"sleep"`
}

// Config is the root configuration object.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      logging.Config `mapstructure:"log"`
	LawAPI   LawAPIConfig   `mapstructure:"law_api"`
	Search   SearchConfig   `mapstructure:"search"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Collect  CollectConfig  `mapstructure:"collect"`
}

// Validate checks the configuration for values that would make the service
// misbehave.  Configuration errors are fatal and surfaced before any work
// begins.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1,65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode %q must be debug, release, or test", c.Server.Mode)
	}
	if c.LawAPI.BaseURL == "" {
		return fmt.Errorf("law_api.base_url must not be empty")
	}
	if c.Search.MaxPages < 1 {
		return fmt.Errorf("search.max_pages must be >= 1, got %d", c.Search.MaxPages)
	}
	if c.Search.PageSize < 1 {
		return fmt.Errorf("search.page_size must be >= 1, got %d", c.Search.PageSize)
	}
	if c.Search.TimeBudget <= 0 {
		return fmt.Errorf("search.time_budget must be positive, got %s", c.Search.TimeBudget)
	}
	switch c.Snapshot.Backend {
	case "jsonl", "postgres":
	default:
		return fmt.Errorf("snapshot.backend %q must be jsonl or postgres", c.Snapshot.Backend)
	}
	if c.Snapshot.Backend == "postgres" && c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host required when snapshot.backend is postgres")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required when redis.enabled is true")
	}
	return nil
}
