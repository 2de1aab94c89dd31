package config

import "time"

// Default value constants.  The search budgets mirror the defaults the
// service shipped with: one page of twenty rows per search term and six
// seconds of remote searching per keyword.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultLawAPIBaseURL  = "https://www.law.go.kr/DRF"
	DefaultOC             = "turtle816"
	DefaultConnectTimeout = 3 * time.Second
	DefaultReadTimeout    = 6 * time.Second

	DefaultMaxPages   = 1
	DefaultPageSize   = 20
	DefaultTimeBudget = 6 * time.Second

	DefaultSnapshotBackend = "jsonl"
	DefaultDataDir         = "data"

	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"
	DefaultMigrationPath   = "migrations"

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisTTL  = 1 * time.Hour
	DefaultKeyPrefix = "lawglot:"

	DefaultCollectPageSize = 100
	DefaultCollectRetries  = 3
	DefaultCollectSleep    = 300 * time.Millisecond

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills zero-value fields in cfg with the platform defaults.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must run after unmarshalling and before
// Validate so optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.LawAPI.BaseURL == "" {
		cfg.LawAPI.BaseURL = DefaultLawAPIBaseURL
	}
	if cfg.LawAPI.OC == "" {
		cfg.LawAPI.OC = DefaultOC
	}
	if cfg.LawAPI.ConnectTimeout == 0 {
		cfg.LawAPI.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.LawAPI.ReadTimeout == 0 {
		cfg.LawAPI.ReadTimeout = DefaultReadTimeout
	}

	if cfg.Search.MaxPages == 0 {
		cfg.Search.MaxPages = DefaultMaxPages
	}
	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = DefaultPageSize
	}
	if cfg.Search.TimeBudget == 0 {
		cfg.Search.TimeBudget = DefaultTimeBudget
	}

	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = DefaultSnapshotBackend
	}
	if cfg.Snapshot.DataDir == "" {
		cfg.Snapshot.DataDir = DefaultDataDir
	}

	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Postgres.MigrationPath == "" {
		cfg.Postgres.MigrationPath = DefaultMigrationPath
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultKeyPrefix
	}

	if cfg.Collect.PageSize == 0 {
		cfg.Collect.PageSize = DefaultCollectPageSize
	}
	if cfg.Collect.Retries == 0 {
		cfg.Collect.Retries = DefaultCollectRetries
	}
	if cfg.Collect.Sleep == 0 {
		cfg.Collect.Sleep = DefaultCollectSleep
	}
}
