// Package redis decorates the remote terminology client with a TTL response
// cache.  The upstream vocabulary changes on the scale of months, so even a
// short TTL absorbs most repeat lookups.  Cache trouble is never fatal: a
// miss, a decode failure, or an unreachable redis all fall through to the
// inner client.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// ErrCacheMiss reports an absent key on the kv layer.
var ErrCacheMiss = errors.New(errors.CodeNotFound, "cache miss")

// kv is the slice of redis the decorator needs.  Narrowing it keeps tests
// free of a live server.
type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type redisKV struct {
	rdb redis.UniversalClient
}

func (r redisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeCacheError, "redis get")
	}
	return val, nil
}

func (r redisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "redis set")
	}
	return nil
}

// CachingClient implements lawapi.Client.  The three interactive resolution
// calls are cached; the collector calls pass through, since the collector
// sweeps each key exactly once per run.
type CachingClient struct {
	inner  lawapi.Client
	kv     kv
	ttl    time.Duration
	prefix string
	logger logging.Logger
}

// Option configures the decorator.
type Option func(*CachingClient)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *CachingClient) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix overrides the default key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(c *CachingClient) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// NewCachingClient wraps inner with a redis-backed response cache.
func NewCachingClient(inner lawapi.Client, rdb redis.UniversalClient, logger logging.Logger, opts ...Option) *CachingClient {
	c := &CachingClient{
		inner:  inner,
		kv:     redisKV{rdb: rdb},
		ttl:    12 * time.Hour,
		prefix: "lawglot:",
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newCachingClientWithKV(inner lawapi.Client, store kv, logger logging.Logger, opts ...Option) *CachingClient {
	c := NewCachingClient(inner, nil, logger, opts...)
	c.kv = store
	return c
}

// lookup fills dest from cache when possible and reports whether it did.
func (c *CachingClient) lookup(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.IsCode(err, errors.CodeNotFound) {
			c.logger.Warn("response cache read failed", logging.String("key", key), logging.Err(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn("response cache entry undecodable", logging.String("key", key), logging.Err(err))
		return false
	}
	return true
}

// store writes value to cache, logging instead of failing on trouble.
func (c *CachingClient) store(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("response cache encode failed", logging.String("key", key), logging.Err(err))
		return
	}
	if err := c.kv.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logger.Warn("response cache write failed", logging.String("key", key), logging.Err(err))
	}
}

func (c *CachingClient) SearchDailyTerms(ctx context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
	key := fmt.Sprintf("%sdlytrm:%s:%d:%d", c.prefix, keyword, page, pageSize)
	var cached lawapi.DailyTermPage
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	result, err := c.inner.SearchDailyTerms(ctx, keyword, page, pageSize)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, result)
	return result, nil
}

func (c *CachingClient) ResolveDailyToLegal(ctx context.Context, dailyTermID string) (*lawapi.DailyTermRelations, error) {
	key := c.prefix + "dlytrmRlt:" + dailyTermID
	var cached lawapi.DailyTermRelations
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	result, err := c.inner.ResolveDailyToLegal(ctx, dailyTermID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, result)
	return result, nil
}

func (c *CachingClient) ResolveLegalToArticles(ctx context.Context, legalTermID string) (*lawapi.LegalTermArticles, error) {
	key := c.prefix + "lstrmRltJo:" + legalTermID
	var cached lawapi.LegalTermArticles
	if c.lookup(ctx, key, &cached) {
		return &cached, nil
	}
	result, err := c.inner.ResolveLegalToArticles(ctx, legalTermID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, result)
	return result, nil
}

func (c *CachingClient) SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
	return c.inner.SearchLegalTerms(ctx, gana, page, pageSize)
}

func (c *CachingClient) ResolveLegalToDaily(ctx context.Context, legalTermID string) ([]lawapi.DailyLink, error) {
	return c.inner.ResolveLegalToDaily(ctx, legalTermID)
}
