package translate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot/internal/application/extract"
	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

type fakeClient struct {
	searchDaily   func(ctx context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error)
	dailyToLegal  func(ctx context.Context, dailyTermID string) (*lawapi.DailyTermRelations, error)
	legalArticles func(ctx context.Context, legalTermID string) (*lawapi.LegalTermArticles, error)
}

func (f *fakeClient) SearchDailyTerms(ctx context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
	if f.searchDaily == nil {
		return &lawapi.DailyTermPage{}, nil
	}
	return f.searchDaily(ctx, keyword, page, pageSize)
}

func (f *fakeClient) ResolveDailyToLegal(ctx context.Context, dailyTermID string) (*lawapi.DailyTermRelations, error) {
	if f.dailyToLegal == nil {
		return &lawapi.DailyTermRelations{DailyTermID: dailyTermID}, nil
	}
	return f.dailyToLegal(ctx, dailyTermID)
}

func (f *fakeClient) ResolveLegalToArticles(ctx context.Context, legalTermID string) (*lawapi.LegalTermArticles, error) {
	if f.legalArticles == nil {
		return &lawapi.LegalTermArticles{LegalTermID: legalTermID}, nil
	}
	return f.legalArticles(ctx, legalTermID)
}

func (f *fakeClient) SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
	return nil, nil
}

func (f *fakeClient) ResolveLegalToDaily(ctx context.Context, legalTermID string) ([]lawapi.DailyLink, error) {
	return nil, nil
}

func newTestPipeline(client lawapi.Client, snap term.Snapshot, budget term.SearchBudget) *Pipeline {
	return NewPipeline(
		extract.NewExtractor(),
		term.NewIndex(snap),
		client,
		budget,
		logging.NewNopLogger(),
	)
}

func TestTranslateEmptyText(t *testing.T) {
	p := newTestPipeline(&fakeClient{}, term.Snapshot{}, term.SearchBudget{})

	_, err := p.Translate(context.Background(), "", Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestTranslateCacheScenario(t *testing.T) {
	// Local snapshot links 보험금 to the everyday phrase 보험탄 돈; the remote
	// search finds nothing.  The cache candidate must still come back.
	snap := term.Snapshot{
		LegalTerms: []term.LegalTermRecord{{ID: "L1", Name: "보험금", Note: "보험사고 시 지급되는 금전"}},
		Relations: []term.RelationRecord{
			{LegalID: "L1", LegalName: "보험금", DailyID: "D1", DailyName: "보험탄 돈", RelationCode: "01", Relation: "동의어"},
		},
	}
	p := newTestPipeline(&fakeClient{}, snap, term.SearchBudget{})

	result, err := p.Translate(context.Background(), "보험금 문의", Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Keywords, "보험금")

	var bundle *term.KeywordBundle
	for i := range result.Tokens {
		if result.Tokens[i].Token == "보험금" {
			bundle = &result.Tokens[i]
		}
	}
	require.NotNil(t, bundle)
	require.Len(t, bundle.DailyTerms, 1)
	assert.Equal(t, "보험탄 돈", bundle.DailyTerms[0].Name)
	assert.Equal(t, term.SourceCache, bundle.DailyTerms[0].Source)
	assert.Equal(t, "보험금", bundle.DailyTerms[0].Keyword)
	require.Len(t, bundle.DailyTerms[0].LegalTerms, 1)
	assert.Equal(t, "보험금", bundle.DailyTerms[0].LegalTerms[0].Name)
	assert.Empty(t, result.Warnings)
}

func TestTranslateFullResolution(t *testing.T) {
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			if keyword != "전세" {
				return &lawapi.DailyTermPage{}, nil
			}
			return &lawapi.DailyTermPage{
				TotalCount: 1,
				Items:      []lawapi.DailyTermItem{{ID: "D1", Name: "전세 보증금", Source: "사전"}},
			}, nil
		},
		dailyToLegal: func(_ context.Context, id string) (*lawapi.DailyTermRelations, error) {
			return &lawapi.DailyTermRelations{
				DailyTermID:   id,
				DailyTermName: "전세 보증금",
				LegalTerms: []term.LegalTermLink{
					{ID: "L1", Name: "임대차보증금", RelationCode: "01", Relation: "동의어"},
					{Name: "이름뿐인 용어"}, // no id: skipped
				},
			}, nil
		},
		legalArticles: func(_ context.Context, id string) (*lawapi.LegalTermArticles, error) {
			return &lawapi.LegalTermArticles{
				LegalTermID:   id,
				LegalTermName: "임대차보증금",
				Articles: []term.Article{
					{LawName: "주택임대차보호법", ArticleNumber: "3", Content: "보증금은 임대인에게 교부한다. 반환은 계약 종료 시 이루어진다."},
				},
			}, nil
		},
	}
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{})

	result, err := p.Translate(context.Background(), "전세 문제", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	var bundle *term.KeywordBundle
	for i := range result.Tokens {
		if result.Tokens[i].Token == "전세" {
			bundle = &result.Tokens[i]
		}
	}
	require.NotNil(t, bundle)
	require.Len(t, bundle.DailyTerms, 1)

	daily := bundle.DailyTerms[0]
	assert.Equal(t, "D1", daily.ID)
	assert.Equal(t, "사전", daily.Source)
	assert.Equal(t, "전세", daily.Keyword)

	require.Len(t, daily.LegalTerms, 1, "id-less link must be skipped")
	link := daily.LegalTerms[0]
	assert.Equal(t, "L1", link.ID)
	assert.Equal(t, "임대차보증금", link.LegalTermName)
	require.Len(t, link.Articles, 1)
	assert.Equal(t, "보증금은 임대인에게 교부한다", link.Summary)
}

func TestTranslateDeduplicatesCacheAndRemote(t *testing.T) {
	snap := term.Snapshot{
		LegalTerms: []term.LegalTermRecord{{ID: "L1", Name: "보험금"}},
		Relations: []term.RelationRecord{
			{LegalID: "L1", DailyID: "D1", DailyName: "보험탄 돈"},
		},
	}
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			return &lawapi.DailyTermPage{
				TotalCount: 2,
				Items: []lawapi.DailyTermItem{
					{ID: "D1", Name: "보험탄 돈"},
					{ID: "D2", Name: "보험 타기"},
					{Name: "아이디 없음"}, // id-less remote hits are dropped
				},
			}, nil
		},
	}
	p := newTestPipeline(client, snap, term.SearchBudget{})

	result, err := p.Translate(context.Background(), "보험금", Options{})
	require.NoError(t, err)
	require.Len(t, result.Tokens, 1)

	terms := result.Tokens[0].DailyTerms
	require.Len(t, terms, 2)
	assert.Equal(t, "D1", terms[0].ID)
	assert.Equal(t, term.SourceCache, terms[0].Source, "cache candidate wins the duplicate")
	assert.Equal(t, "D2", terms[1].ID)
}

func TestTranslatePartialFailures(t *testing.T) {
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			if keyword != "전세" {
				return nil, errors.New(errors.CodeRemoteTransport, "connection refused")
			}
			return &lawapi.DailyTermPage{
				TotalCount: 2,
				Items: []lawapi.DailyTermItem{
					{ID: "D1", Name: "전세 보증금"},
					{ID: "D2", Name: "전셋집"},
				},
			}, nil
		},
		dailyToLegal: func(_ context.Context, id string) (*lawapi.DailyTermRelations, error) {
			if id == "D1" {
				return nil, errors.New(errors.CodeRemoteTransport, "reset by peer")
			}
			return &lawapi.DailyTermRelations{
				DailyTermID: id,
				LegalTerms:  []term.LegalTermLink{{ID: "L1", Name: "임대차보증금"}},
			}, nil
		},
		legalArticles: func(_ context.Context, id string) (*lawapi.LegalTermArticles, error) {
			return nil, errors.New(errors.CodeTimeout, "deadline exceeded")
		},
	}
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{})

	result, err := p.Translate(context.Background(), "임금 전세", Options{})
	require.NoError(t, err, "remote failures degrade, never abort")

	var rent *term.KeywordBundle
	for i := range result.Tokens {
		if result.Tokens[i].Token == "전세" {
			rent = &result.Tokens[i]
		}
	}
	require.NotNil(t, rent)
	require.Len(t, rent.DailyTerms, 2)

	// D1 lost its legal fan-out, D2 lost only the article hop.
	assert.Empty(t, rent.DailyTerms[0].LegalTerms)
	require.Len(t, rent.DailyTerms[1].LegalTerms, 1)
	assert.Empty(t, rent.DailyTerms[1].LegalTerms[0].Articles)
	assert.Empty(t, rent.DailyTerms[1].LegalTerms[0].Summary)
	assert.Equal(t, "임대차보증금", rent.DailyTerms[1].LegalTerms[0].LegalTermName)

	assert.NotEmpty(t, result.Warnings)
	joined := ""
	for _, w := range result.Warnings {
		joined += w + "\n"
	}
	assert.Contains(t, joined, "daily search failed")
	assert.Contains(t, joined, "daily->legal failed for 'D1'")
	assert.Contains(t, joined, "legal->article failed for 'L1'")
}

func TestTranslateLegalPerDailyCap(t *testing.T) {
	links := make([]term.LegalTermLink, 0, 6)
	for _, id := range []string{"L1", "L2", "L3", "L4", "L5", "L6"} {
		links = append(links, term.LegalTermLink{ID: id, Name: id})
	}
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			return &lawapi.DailyTermPage{
				TotalCount: 1,
				Items:      []lawapi.DailyTermItem{{ID: "D1", Name: "빌린 돈"}},
			}, nil
		},
		dailyToLegal: func(_ context.Context, id string) (*lawapi.DailyTermRelations, error) {
			return &lawapi.DailyTermRelations{DailyTermID: id, LegalTerms: links}, nil
		},
	}
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{})

	result, err := p.Translate(context.Background(), "차용", Options{LegalPerDaily: 2})
	require.NoError(t, err)

	for _, bundle := range result.Tokens {
		for _, daily := range bundle.DailyTerms {
			assert.LessOrEqual(t, len(daily.LegalTerms), 2)
		}
	}
}

func TestTranslateBudgetExhaustedStopsSearchTerms(t *testing.T) {
	var searched []string
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			searched = append(searched, keyword)
			return &lawapi.DailyTermPage{}, nil
		},
	}
	// 못받았어요 expands to three extra search terms; an already-expired
	// budget must stop before the first fetch.
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{TimeBudget: time.Nanosecond})

	result, err := p.Translate(context.Background(), "못받았어요", Options{})
	require.NoError(t, err)
	assert.Empty(t, searched, "no remote call once the budget is exhausted")

	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "daily search timeout")
	// 못받았어요 extracts two keywords (the token and its stem): one timeout
	// warning each, never one per search term.
	assert.Len(t, result.Warnings, len(result.Keywords))
}

func TestTranslatePagingStops(t *testing.T) {
	type call struct {
		keyword string
		page    int
	}
	var calls []call
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			calls = append(calls, call{keyword, page})
			if page == 1 {
				return &lawapi.DailyTermPage{
					TotalCount: 3,
					Items: []lawapi.DailyTermItem{
						{ID: "D1", Name: "하나"},
						{ID: "D2", Name: "둘"},
					},
				}, nil
			}
			return &lawapi.DailyTermPage{
				TotalCount: 3,
				Items:      []lawapi.DailyTermItem{{ID: "D3", Name: "셋"}},
			}, nil
		},
	}
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{
		MaxPages:   5,
		PageSize:   2,
		TimeBudget: 6 * time.Second,
	})

	result, err := p.Translate(context.Background(), "보험금", Options{})
	require.NoError(t, err)

	// Page 2 completes the reported total of three; page 3 is never fetched.
	require.Len(t, calls, 2)
	assert.Equal(t, 1, calls[0].page)
	assert.Equal(t, 2, calls[1].page)
	require.Len(t, result.Tokens, 1)
	assert.Len(t, result.Tokens[0].DailyTerms, 3)
}

func TestTranslateShortPageStopsPaging(t *testing.T) {
	calls := 0
	client := &fakeClient{
		searchDaily: func(_ context.Context, keyword string, page, pageSize int) (*lawapi.DailyTermPage, error) {
			calls++
			// No reported total: the short page alone must end the term.
			return &lawapi.DailyTermPage{
				Items: []lawapi.DailyTermItem{{ID: "D1", Name: "하나"}},
			}, nil
		},
	}
	p := newTestPipeline(client, term.Snapshot{}, term.SearchBudget{
		MaxPages:   5,
		PageSize:   2,
		TimeBudget: 6 * time.Second,
	})

	result, err := p.Translate(context.Background(), "보험금", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "one row against a page size of two ends paging")
	require.Len(t, result.Tokens, 1)
	assert.Len(t, result.Tokens[0].DailyTerms, 1)
	assert.Empty(t, result.Warnings)
}

func TestOptionsNormalized(t *testing.T) {
	got := Options{}.normalized()
	assert.Equal(t, Options{TopK: 8, DailyPerKeyword: 3, LegalPerDaily: 5}, got)

	got = Options{TopK: 99, DailyPerKeyword: 99, LegalPerDaily: 99}.normalized()
	assert.Equal(t, Options{TopK: 30, DailyPerKeyword: 30, LegalPerDaily: 50}, got)
}
