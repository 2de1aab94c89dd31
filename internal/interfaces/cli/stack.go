package cli

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lawglot/lawglot/internal/application/collect"
	"github.com/lawglot/lawglot/internal/application/extract"
	"github.com/lawglot/lawglot/internal/application/translate"
	"github.com/lawglot/lawglot/internal/config"
	"github.com/lawglot/lawglot/internal/domain/term"
	rediscache "github.com/lawglot/lawglot/internal/infrastructure/cache/redis"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/internal/infrastructure/snapshot"
)

// newStorage builds the snapshot backend the configuration selects.  The
// returned cleanup closes backend resources and is always safe to call.
func newStorage(cfg *config.Config, logger logging.Logger) (collect.Storage, func(), error) {
	if cfg.Snapshot.Backend == "postgres" {
		store, err := snapshot.NewPostgresStore(cfg.Postgres.DSN(), logger)
		if err != nil {
			return nil, func() {}, err
		}
		if err := store.Migrate(cfg.Postgres.MigrationPath); err != nil {
			store.Close()
			return nil, func() {}, err
		}
		return store, func() { store.Close() }, nil
	}
	return snapshot.NewFileStore(cfg.Snapshot.DataDir, logger), func() {}, nil
}

// newLawClient builds the remote terminology client, wrapped in the redis
// response cache when one is configured.
func newLawClient(cfg *config.Config, logger logging.Logger) (lawapi.Client, func(), error) {
	client, err := lawapi.NewClient(lawapi.Config{
		BaseURL:        cfg.LawAPI.BaseURL,
		OC:             cfg.LawAPI.OC,
		ConnectTimeout: cfg.LawAPI.ConnectTimeout,
		ReadTimeout:    cfg.LawAPI.ReadTimeout,
	}, logger)
	if err != nil {
		return nil, func() {}, err
	}
	if !cfg.Redis.Enabled {
		return client, func() {}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	cached := rediscache.NewCachingClient(client, rdb, logger,
		rediscache.WithTTL(cfg.Redis.TTL),
		rediscache.WithKeyPrefix(cfg.Redis.KeyPrefix))
	return cached, func() { rdb.Close() }, nil
}

// loadIndex loads the snapshot and builds the candidate index.  A failed
// load degrades to an empty index: the service still resolves through the
// remote client, just without cache candidates.
func loadIndex(ctx context.Context, store snapshot.Store, logger logging.Logger) *term.IndexHolder {
	snap, err := store.Load(ctx)
	if err != nil {
		logger.Warn("snapshot load failed, starting with empty cache index", logging.Err(err))
		snap = &term.Snapshot{}
	}
	holder := term.NewIndexHolder(term.NewIndex(*snap))
	logger.Info("cache index ready",
		logging.Int("legal_terms", len(snap.LegalTerms)),
		logging.Int("relations", len(snap.Relations)))
	return holder
}

// newPipeline assembles the resolution pipeline from configuration.
func newPipeline(cfg *config.Config, holder *term.IndexHolder, client lawapi.Client,
	logger logging.Logger, opts ...translate.Option) *translate.Pipeline {
	budget := term.SearchBudget{
		MaxPages:   cfg.Search.MaxPages,
		PageSize:   cfg.Search.PageSize,
		TimeBudget: cfg.Search.TimeBudget,
	}
	return translate.NewPipeline(extract.NewExtractor(), holder, client, budget, logger, opts...)
}
