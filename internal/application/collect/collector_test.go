package collect

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/internal/infrastructure/snapshot"
	"github.com/lawglot/lawglot/pkg/errors"
)

type fakeClient struct {
	searchLegal  func(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error)
	legalToDaily func(ctx context.Context, legalTermID string) ([]lawapi.DailyLink, error)
}

func (f *fakeClient) SearchDailyTerms(context.Context, string, int, int) (*lawapi.DailyTermPage, error) {
	return &lawapi.DailyTermPage{}, nil
}

func (f *fakeClient) ResolveDailyToLegal(_ context.Context, id string) (*lawapi.DailyTermRelations, error) {
	return &lawapi.DailyTermRelations{DailyTermID: id}, nil
}

func (f *fakeClient) ResolveLegalToArticles(_ context.Context, id string) (*lawapi.LegalTermArticles, error) {
	return &lawapi.LegalTermArticles{LegalTermID: id}, nil
}

func (f *fakeClient) SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
	if f.searchLegal == nil {
		return nil, nil
	}
	return f.searchLegal(ctx, gana, page, pageSize)
}

func (f *fakeClient) ResolveLegalToDaily(ctx context.Context, id string) ([]lawapi.DailyLink, error) {
	if f.legalToDaily == nil {
		return nil, nil
	}
	return f.legalToDaily(ctx, id)
}

func newStorage(t *testing.T) *snapshot.FileStore {
	t.Helper()
	return snapshot.NewFileStore(t.TempDir(), logging.NewNopLogger())
}

func TestRunSweepAndRelations(t *testing.T) {
	client := &fakeClient{
		searchLegal: func(_ context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
			// Only the first group has content; one page each for brevity.
			if gana != "ga" || page > 1 {
				return nil, nil
			}
			return []term.LegalTermRecord{
				{ID: "L1", Name: "가압류"},
				{ID: "L2", Name: "가처분"},
				{ID: "L1", Name: "가압류"}, // duplicate within the page
				{Name: "아이디 없음"},         // dropped
			}, nil
		},
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			if id == "L1" {
				return []lawapi.DailyLink{
					{DailyID: "D1", DailyName: "임시 압류", RelationCode: "01"},
				}, nil
			}
			return nil, nil
		},
	}
	storage := newStorage(t)
	c := NewCollector(client, storage, logging.NewNopLogger())

	stats, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Terms)
	assert.Equal(t, 1, stats.Relations)

	snap, err := storage.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.LegalTerms, 2)
	assert.Equal(t, "L1", snap.LegalTerms[0].ID)
	require.Len(t, snap.Relations, 1)
	assert.Equal(t, "L1", snap.Relations[0].LegalID)
	assert.Equal(t, "가압류", snap.Relations[0].LegalName)
	assert.Equal(t, "임시 압류", snap.Relations[0].DailyName)
}

func TestSweepStopsOnAllDuplicatePage(t *testing.T) {
	pages := 0
	client := &fakeClient{
		searchLegal: func(_ context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
			if gana != "ga" {
				return nil, nil
			}
			pages++
			// Every page repeats the same record: the sweep must not loop.
			return []term.LegalTermRecord{{ID: "L1", Name: "가압류"}}, nil
		},
	}
	c := NewCollector(client, newStorage(t), logging.NewNopLogger())

	stats, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Terms)
	assert.Equal(t, 2, pages, "second all-duplicate page ends the group")
}

func TestRunSplitsCommaJoinedIDs(t *testing.T) {
	var resolved []string
	client := &fakeClient{
		searchLegal: func(_ context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
			if gana == "ga" && page == 1 {
				return []term.LegalTermRecord{{ID: "101, 102", Name: "가압류"}}, nil
			}
			return nil, nil
		},
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			resolved = append(resolved, id)
			return nil, nil
		},
	}
	c := NewCollector(client, newStorage(t), logging.NewNopLogger())

	_, err := c.Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, resolved)
}

func TestRunResumeSkipsProcessed(t *testing.T) {
	storage := newStorage(t)
	require.NoError(t, storage.WriteLegalTerms(context.Background(), []term.LegalTermRecord{
		{ID: "L1", Name: "가압류"},
		{ID: "L2", Name: "가처분"},
	}))
	require.NoError(t, storage.AppendRelations(context.Background(), []term.RelationRecord{
		{LegalID: "L1", DailyID: "D1", DailyName: "임시 압류"},
	}))

	var resolved []string
	client := &fakeClient{
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			resolved = append(resolved, id)
			return []lawapi.DailyLink{{DailyID: "D2", DailyName: "임시 처분"}}, nil
		},
	}
	c := NewCollector(client, storage, logging.NewNopLogger())

	stats, err := c.Run(context.Background(), Options{SkipTerms: true, Resume: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"L2"}, resolved)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Relations)

	snap, err := storage.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Relations, 2)
}

func TestRunSkipTermsWithoutVocabulary(t *testing.T) {
	c := NewCollector(&fakeClient{}, newStorage(t), logging.NewNopLogger())

	_, err := c.Run(context.Background(), Options{SkipTerms: true})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCollectAborted))
}

func TestRunRetriesTransientFailures(t *testing.T) {
	attempts := 0
	client := &fakeClient{
		searchLegal: func(_ context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
			if gana != "ga" || page > 1 {
				return nil, nil
			}
			attempts++
			if attempts < 3 {
				return nil, errors.New(errors.CodeRemoteTransport, "flaky")
			}
			return []term.LegalTermRecord{{ID: "L1", Name: "가압류"}}, nil
		},
	}
	c := NewCollector(client, newStorage(t), logging.NewNopLogger())

	stats, err := c.Run(context.Background(), Options{Retries: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, stats.Terms)
}

func TestRunFailedRelationLeftForResume(t *testing.T) {
	storage := newStorage(t)
	require.NoError(t, storage.WriteLegalTerms(context.Background(), []term.LegalTermRecord{
		{ID: "L1", Name: "가압류"},
		{ID: "L2", Name: "가처분"},
	}))

	client := &fakeClient{
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			if id == "L1" {
				return nil, errors.New(errors.CodeRemoteTransport, "down")
			}
			return []lawapi.DailyLink{{DailyID: "D2", DailyName: "임시 처분"}}, nil
		},
	}
	c := NewCollector(client, storage, logging.NewNopLogger())

	stats, err := c.Run(context.Background(), Options{SkipTerms: true, Retries: 1})
	require.NoError(t, err, "a failed id is skipped, not fatal")
	assert.Equal(t, 1, stats.Relations)

	// L1 has no rows, so a resume run will retry it.
	ids, err := storage.ProcessedLegalIDs(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, ids, "L1")
	assert.Contains(t, ids, "L2")
}

func TestRunAbortsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&fakeClient{}, newStorage(t), logging.NewNopLogger())
	_, err := c.Run(ctx, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCollectAborted))
}

func TestRunMaxTermsBound(t *testing.T) {
	storage := newStorage(t)
	var terms []term.LegalTermRecord
	for i := 1; i <= 5; i++ {
		terms = append(terms, term.LegalTermRecord{ID: fmt.Sprintf("L%d", i), Name: "용어"})
	}
	require.NoError(t, storage.WriteLegalTerms(context.Background(), terms))

	var resolved []string
	client := &fakeClient{
		legalToDaily: func(_ context.Context, id string) ([]lawapi.DailyLink, error) {
			resolved = append(resolved, id)
			return nil, nil
		},
	}
	c := NewCollector(client, storage, logging.NewNopLogger())

	_, err := c.Run(context.Background(), Options{SkipTerms: true, MaxTerms: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, resolved)
}
