// Package translate runs the everyday-to-legal resolution pipeline: extract
// keywords from raw text, gather everyday-term candidates (local cache index
// first, then remote search under a budget), and resolve each candidate
// through its legal terms to statute articles with a short summary.
//
// Keywords are processed sequentially.  That keeps candidate ordering and
// the warning list deterministic for identical inputs; parallel fan-out
// would need per-keyword result assembly to preserve that.
package translate

import (
	"context"
	"fmt"
	"time"

	"github.com/lawglot/lawglot/internal/application/extract"
	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// Request bounds, matching the HTTP boundary.
const (
	DefaultTopK            = 8
	DefaultDailyPerKeyword = 3
	DefaultLegalPerDaily   = 5

	MaxTopK            = 30
	MaxDailyPerKeyword = 30
	MaxLegalPerDaily   = 50
)

// Options tune one translation request.  Zero values take the defaults;
// values above the maximums are capped.
type Options struct {
	TopK            int
	DailyPerKeyword int
	LegalPerDaily   int
}

func (o Options) normalized() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.TopK > MaxTopK {
		o.TopK = MaxTopK
	}
	if o.DailyPerKeyword <= 0 {
		o.DailyPerKeyword = DefaultDailyPerKeyword
	}
	if o.DailyPerKeyword > MaxDailyPerKeyword {
		o.DailyPerKeyword = MaxDailyPerKeyword
	}
	if o.LegalPerDaily <= 0 {
		o.LegalPerDaily = DefaultLegalPerDaily
	}
	if o.LegalPerDaily > MaxLegalPerDaily {
		o.LegalPerDaily = MaxLegalPerDaily
	}
	return o
}

// CandidateSource serves everyday-term candidates without network access.
// Both *term.Index and *term.IndexHolder satisfy it.
type CandidateSource interface {
	Candidates(token string, maxResults int) []term.EverydayTerm
}

// Metrics receives pipeline observations.  The prometheus implementation
// lives in the monitoring package; tests use the nop.
type Metrics interface {
	ObserveTranslate(status string, elapsed time.Duration)
	RemoteCall(target, outcome string)
	Warning()
}

type nopMetrics struct{}

func (nopMetrics) ObserveTranslate(string, time.Duration) {}
func (nopMetrics) RemoteCall(string, string)             {}
func (nopMetrics) Warning()                              {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }

// Pipeline resolves raw consumer text into legal terminology.
type Pipeline struct {
	extractor *extract.Extractor
	cache     CandidateSource
	client    lawapi.Client
	budget    term.SearchBudget
	metrics   Metrics
	logger    logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// NewPipeline wires the pipeline.  budget fields at zero fall back to one
// page of twenty rows under six seconds, the service defaults.
func NewPipeline(extractor *extract.Extractor, cache CandidateSource, client lawapi.Client,
	budget term.SearchBudget, logger logging.Logger, opts ...Option) *Pipeline {
	if budget.MaxPages <= 0 {
		budget.MaxPages = 1
	}
	if budget.PageSize <= 0 {
		budget.PageSize = 20
	}
	if budget.TimeBudget <= 0 {
		budget.TimeBudget = 6 * time.Second
	}
	p := &Pipeline{
		extractor: extractor,
		cache:     cache,
		client:    client,
		budget:    budget,
		metrics:   nopMetrics{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Translate runs the full pipeline.  Remote failures degrade to warnings;
// the only error returned is empty input.
func (p *Pipeline) Translate(ctx context.Context, text string, opts Options) (*term.ResultBundle, error) {
	start := time.Now()
	if text == "" {
		p.metrics.ObserveTranslate("invalid", time.Since(start))
		return nil, errors.InvalidParam("text is required")
	}
	opts = opts.normalized()

	// Synonym expansion stays off here: only words from the user's own text
	// become keywords.  Expansion terms join the remote search list instead.
	tokens := p.extractor.Extract(text, opts.TopK, nil, false)

	result := &term.ResultBundle{
		Keywords: tokens,
		Warnings: []string{},
	}

	for _, token := range tokens {
		bundle := p.resolveKeyword(ctx, token, opts, result)
		result.Tokens = append(result.Tokens, bundle)
	}

	p.metrics.ObserveTranslate("ok", time.Since(start))
	p.logger.Info("translation completed",
		logging.Int("keywords", len(tokens)),
		logging.Int("warnings", len(result.Warnings)),
		logging.Duration("elapsed", time.Since(start)))
	return result, nil
}

// warn records one degradation on every channel.
func (p *Pipeline) warn(result *term.ResultBundle, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	result.Warnings = append(result.Warnings, msg)
	p.metrics.Warning()
	p.logger.Warn(msg)
}

// resolveKeyword gathers the deduplicated candidate list for one token:
// cache candidates first, then remote hits for the token and its expansion
// terms, each fanned out to legal terms and articles.
func (p *Pipeline) resolveKeyword(ctx context.Context, token string, opts Options, result *term.ResultBundle) term.KeywordBundle {
	bundle := term.KeywordBundle{Token: token, DailyTerms: []term.EverydayTerm{}}
	seen := make(map[string]struct{})

	for _, cand := range p.cache.Candidates(token, opts.DailyPerKeyword*2) {
		id := cand.Identity()
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		cand.Keyword = token
		bundle.DailyTerms = append(bundle.DailyTerms, cand)
	}

	// One wall-clock budget covers the token and all of its expansion terms.
	deadline := time.Now().Add(p.budget.TimeBudget)
	searchTerms := append([]string{token}, p.extractor.ExpandRelated(token)...)

	for _, searchTerm := range searchTerms {
		items, exhausted := p.fetchDailyPages(ctx, searchTerm, deadline, result)
		for _, item := range items {
			if item.ID == "" {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			bundle.DailyTerms = append(bundle.DailyTerms, p.resolveDaily(ctx, token, item, opts, result))
		}
		if exhausted {
			break
		}
	}
	return bundle
}

// fetchDailyPages pages one search term until the page budget, a short page,
// the reported total, or the shared deadline stops it.  The deadline is
// checked before each fetch, never mid-flight: a slow call may overrun the
// budget by its own duration.
func (p *Pipeline) fetchDailyPages(ctx context.Context, searchTerm string, deadline time.Time, result *term.ResultBundle) (items []lawapi.DailyTermItem, exhausted bool) {
	totalCount := 0
	for page := 1; page <= p.budget.MaxPages; page++ {
		if time.Now().After(deadline) {
			p.warn(result, "daily search timeout for '%s' (>%s)", searchTerm, p.budget.TimeBudget)
			return items, true
		}

		pageResult, err := p.client.SearchDailyTerms(ctx, searchTerm, page, p.budget.PageSize)
		if err != nil {
			p.metrics.RemoteCall("dlytrm", "error")
			p.warn(result, "daily search failed for '%s': %v", searchTerm, err)
			return items, false
		}
		p.metrics.RemoteCall("dlytrm", "ok")

		items = append(items, pageResult.Items...)
		if pageResult.TotalCount > 0 {
			totalCount = pageResult.TotalCount
		}
		if totalCount > 0 && len(items) >= totalCount {
			break
		}
		if len(pageResult.Items) < p.budget.PageSize {
			// Short page: nothing further to fetch.
			break
		}
	}
	return items, false
}

// resolveDaily fans one everyday term out to its legal terms and their
// articles.  Every remote failure degrades to a warning and an empty slot.
func (p *Pipeline) resolveDaily(ctx context.Context, token string, item lawapi.DailyTermItem, opts Options, result *term.ResultBundle) term.EverydayTerm {
	daily := term.EverydayTerm{
		ID:         item.ID,
		Name:       item.Name,
		Source:     item.Source,
		Keyword:    token,
		LegalTerms: []term.LegalTermLink{},
	}

	mapped, err := p.client.ResolveDailyToLegal(ctx, item.ID)
	if err != nil {
		p.metrics.RemoteCall("dlytrmRlt", "error")
		p.warn(result, "daily->legal failed for '%s': %v", item.ID, err)
		return daily
	}
	p.metrics.RemoteCall("dlytrmRlt", "ok")

	links := mapped.LegalTerms
	if len(links) > opts.LegalPerDaily {
		links = links[:opts.LegalPerDaily]
	}
	for _, link := range links {
		if link.ID == "" {
			continue
		}
		daily.LegalTerms = append(daily.LegalTerms, p.resolveLegal(ctx, link, result))
	}
	return daily
}

// resolveLegal attaches articles and a summary to one legal-term link.
func (p *Pipeline) resolveLegal(ctx context.Context, link term.LegalTermLink, result *term.ResultBundle) term.LegalTermLink {
	link.LegalTermName = link.Name
	link.Articles = []term.Article{}

	articleResult, err := p.client.ResolveLegalToArticles(ctx, link.ID)
	if err != nil {
		p.metrics.RemoteCall("lstrmRltJo", "error")
		p.warn(result, "legal->article failed for '%s': %v", link.ID, err)
		return link
	}
	p.metrics.RemoteCall("lstrmRltJo", "ok")

	if articleResult.Articles != nil {
		link.Articles = articleResult.Articles
	}
	if articleResult.LegalTermName != "" {
		link.LegalTermName = articleResult.LegalTermName
	}
	contents := make([]string, 0, len(articleResult.Articles))
	for _, a := range articleResult.Articles {
		contents = append(contents, a.Content)
	}
	link.Summary = pickSummary(contents)
	return link
}
