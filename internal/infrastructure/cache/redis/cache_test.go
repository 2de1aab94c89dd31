package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

type fakeClient struct {
	searchDaily   func(ctx context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error)
	dailyToLegal  func(ctx context.Context, dailyTermID string) (*lawapi.DailyTermRelations, error)
	legalArticles func(ctx context.Context, legalTermID string) (*lawapi.LegalTermArticles, error)
	searchLegal   func(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error)
	legalToDaily  func(ctx context.Context, legalTermID string) ([]lawapi.DailyLink, error)
}

func (f *fakeClient) SearchDailyTerms(ctx context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
	return f.searchDaily(ctx, keyword, page, pageSize)
}

func (f *fakeClient) ResolveDailyToLegal(ctx context.Context, dailyTermID string) (*lawapi.DailyTermRelations, error) {
	return f.dailyToLegal(ctx, dailyTermID)
}

func (f *fakeClient) ResolveLegalToArticles(ctx context.Context, legalTermID string) (*lawapi.LegalTermArticles, error) {
	return f.legalArticles(ctx, legalTermID)
}

func (f *fakeClient) SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
	return f.searchLegal(ctx, gana, page, pageSize)
}

func (f *fakeClient) ResolveLegalToDaily(ctx context.Context, legalTermID string) ([]lawapi.DailyLink, error) {
	return f.legalToDaily(ctx, legalTermID)
}

type mapKV struct {
	data    map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newMapKV() *mapKV { return &mapKV{data: map[string]string{}} }

func (m *mapKV) Get(_ context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return val, nil
}

func (m *mapKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.setKeys = append(m.setKeys, key)
	return nil
}

func TestCachingClientMissThenHit(t *testing.T) {
	calls := 0
	inner := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			calls++
			return &lawapi.DailyTermPage{
				TotalCount: 1,
				Items:      []lawapi.DailyTermItem{{ID: "D1", Name: "빌린 돈"}},
			}, nil
		},
	}
	store := newMapKV()
	c := newCachingClientWithKV(inner, store, logging.NewNopLogger())

	first, err := c.SearchDailyTerms(context.Background(), "빌리다", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	second, err := c.SearchDailyTerms(context.Background(), "빌리다", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call must be served from cache")
	assert.Equal(t, first, second)

	// Different page is a different entry.
	_, err = c.SearchDailyTerms(context.Background(), "빌리다", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachingClientInnerErrorNotCached(t *testing.T) {
	calls := 0
	inner := &fakeClient{
		dailyToLegal: func(_ context.Context, id string) (*lawapi.DailyTermRelations, error) {
			calls++
			if calls == 1 {
				return nil, errors.New(errors.CodeRemoteTransport, "boom")
			}
			return &lawapi.DailyTermRelations{DailyTermID: id}, nil
		},
	}
	c := newCachingClientWithKV(inner, newMapKV(), logging.NewNopLogger())

	_, err := c.ResolveDailyToLegal(context.Background(), "D1")
	require.Error(t, err)

	rel, err := c.ResolveDailyToLegal(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, "D1", rel.DailyTermID)
	assert.Equal(t, 2, calls)
}

func TestCachingClientFallsThroughOnCacheFailure(t *testing.T) {
	calls := 0
	inner := &fakeClient{
		legalArticles: func(_ context.Context, id string) (*lawapi.LegalTermArticles, error) {
			calls++
			return &lawapi.LegalTermArticles{LegalTermID: id}, nil
		},
	}
	store := newMapKV()
	store.getErr = errors.New(errors.CodeCacheError, "redis down")
	store.setErr = errors.New(errors.CodeCacheError, "redis down")
	c := newCachingClientWithKV(inner, store, logging.NewNopLogger())

	res, err := c.ResolveLegalToArticles(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, "L1", res.LegalTermID)

	_, err = c.ResolveLegalToArticles(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachingClientCorruptEntryFallsThrough(t *testing.T) {
	calls := 0
	inner := &fakeClient{
		legalArticles: func(_ context.Context, id string) (*lawapi.LegalTermArticles, error) {
			calls++
			return &lawapi.LegalTermArticles{LegalTermID: id}, nil
		},
	}
	store := newMapKV()
	c := newCachingClientWithKV(inner, store, logging.NewNopLogger())

	_, err := c.ResolveLegalToArticles(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, store.setKeys, 1)

	store.data[store.setKeys[0]] = "{corrupt"
	_, err = c.ResolveLegalToArticles(context.Background(), "L1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCachingClientCollectorCallsPassThrough(t *testing.T) {
	calls := 0
	inner := &fakeClient{
		searchLegal: func(_ context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
			calls++
			return []term.LegalTermRecord{{ID: "L1", Name: "가압류"}}, nil
		},
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			calls++
			return nil, nil
		},
	}
	store := newMapKV()
	c := newCachingClientWithKV(inner, store, logging.NewNopLogger())

	_, err := c.SearchLegalTerms(context.Background(), "ga", 1, 100)
	require.NoError(t, err)
	_, err = c.SearchLegalTerms(context.Background(), "ga", 1, 100)
	require.NoError(t, err)
	_, err = c.ResolveLegalToDaily(context.Background(), "L1")
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Empty(t, store.setKeys)
}
