// Package collect builds the local terminology snapshot: a full sweep of the
// legal-term vocabulary followed by the everyday-term relations of every
// collected id.  A run takes hours against the real service, so progress is
// persisted incrementally and a second run can resume where the first
// stopped.
package collect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/lawapi"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/internal/infrastructure/snapshot"
	"github.com/lawglot/lawglot/pkg/errors"
)

// ganaCodes enumerate the syllable groups the vocabulary search pages by;
// sweeping all of them visits the whole dictionary.
var ganaCodes = []string{"ga", "na", "da", "ra", "ma", "ba", "sa", "aa", "ja", "cha", "ka", "ta", "pa", "ha"}

// Storage is what a collection run persists through.  Both snapshot
// backends satisfy it.
type Storage interface {
	snapshot.Store
	snapshot.Sink
}

// Options tune one collection run.
type Options struct {
	// PageSize is the vocabulary page size (service maximum 100).
	PageSize int

	// Retries is the attempt count per remote call; Sleep spaces requests
	// and scales linearly as the backoff between attempts.
	Retries int
	Sleep   time.Duration

	// SkipTerms reuses the stored vocabulary instead of sweeping again.
	SkipTerms bool

	// Resume skips legal-term ids that already have stored relations.
	Resume bool

	// MaxTerms, when positive, bounds how many terms get their relations
	// fetched.  Meant for partial and trial runs.
	MaxTerms int
}

func (o Options) normalized() Options {
	if o.PageSize <= 0 {
		o.PageSize = 100
	}
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.Sleep < 0 {
		o.Sleep = 0
	}
	return o
}

// Stats summarizes a finished run.
type Stats struct {
	Terms     int
	Relations int
	Skipped   int
}

// Collector drives the two-stage collection.
type Collector struct {
	client  lawapi.Client
	storage Storage
	logger  logging.Logger
}

// NewCollector wires a collector.
func NewCollector(client lawapi.Client, storage Storage, logger logging.Logger) *Collector {
	return &Collector{client: client, storage: storage, logger: logger}
}

// Run executes the sweep and the relation fetch.  Cancelling ctx aborts the
// run; whatever was persisted before the abort stays usable for resume.
func (c *Collector) Run(ctx context.Context, opts Options) (*Stats, error) {
	opts = opts.normalized()
	stats := &Stats{}

	var terms []term.LegalTermRecord
	if opts.SkipTerms {
		snap, err := c.storage.Load(ctx)
		if err != nil {
			return nil, err
		}
		terms = snap.LegalTerms
		if len(terms) == 0 {
			return nil, errors.New(errors.CodeCollectAborted, "no stored vocabulary to reuse")
		}
		c.logger.Info("reusing stored vocabulary", logging.Int("terms", len(terms)))
	} else {
		var err error
		terms, err = c.collectTerms(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := c.storage.WriteLegalTerms(ctx, terms); err != nil {
			return nil, err
		}
		c.logger.Info("vocabulary sweep finished", logging.Int("terms", len(terms)))
	}
	stats.Terms = len(terms)

	if opts.MaxTerms > 0 && len(terms) > opts.MaxTerms {
		terms = terms[:opts.MaxTerms]
	}

	if err := c.collectRelations(ctx, terms, opts, stats); err != nil {
		return nil, err
	}
	c.logger.Info("collection finished",
		logging.Int("terms", stats.Terms),
		logging.Int("relations", stats.Relations),
		logging.Int("skipped", stats.Skipped))
	return stats, nil
}

// collectTerms sweeps every syllable group, deduplicating by term id.
func (c *Collector) collectTerms(ctx context.Context, opts Options) ([]term.LegalTermRecord, error) {
	var results []term.LegalTermRecord
	seen := make(map[string]struct{})

	for _, gana := range ganaCodes {
		for page := 1; ; page++ {
			if err := aborted(ctx); err != nil {
				return nil, err
			}

			var records []term.LegalTermRecord
			err := c.withRetry(ctx, opts, fmt.Sprintf("lstrm %s/%d", gana, page), func() error {
				var callErr error
				records, callErr = c.client.SearchLegalTerms(ctx, gana, page, opts.PageSize)
				return callErr
			})
			if err != nil || len(records) == 0 {
				break
			}

			added := 0
			for _, rec := range records {
				if rec.ID == "" {
					continue
				}
				if _, dup := seen[rec.ID]; dup {
					continue
				}
				seen[rec.ID] = struct{}{}
				results = append(results, rec)
				added++
			}
			// A page of nothing but duplicates means the group wrapped.
			if added == 0 {
				break
			}
			sleep(ctx, opts.Sleep)
		}
	}
	return results, nil
}

// collectRelations fetches and persists the everyday-term links of every
// legal term.  Persisting per id keeps an aborted run resumable.
func (c *Collector) collectRelations(ctx context.Context, terms []term.LegalTermRecord, opts Options, stats *Stats) error {
	processed := make(map[string]struct{})
	if opts.Resume {
		stored, err := c.storage.ProcessedLegalIDs(ctx)
		if err != nil {
			return err
		}
		processed = stored
		c.logger.Info("resuming relation fetch", logging.Int("already_processed", len(processed)))
	}

	for _, t := range terms {
		// A vocabulary row may carry several comma-joined ids.
		for _, id := range splitIDs(t.ID) {
			if _, done := processed[id]; done {
				stats.Skipped++
				continue
			}
			if err := aborted(ctx); err != nil {
				return err
			}

			var links []lawapi.DailyLink
			err := c.withRetry(ctx, opts, "lstrmRlt "+id, func() error {
				var callErr error
				links, callErr = c.client.ResolveLegalToDaily(ctx, id)
				return callErr
			})
			if err != nil {
				// Leave the id unprocessed so a resume run retries it.
				sleep(ctx, opts.Sleep)
				continue
			}

			records := make([]term.RelationRecord, 0, len(links))
			for _, link := range links {
				records = append(records, term.RelationRecord{
					LegalID:      id,
					LegalName:    t.Name,
					DailyID:      link.DailyID,
					DailyName:    link.DailyName,
					RelationCode: link.RelationCode,
					Relation:     link.Relation,
				})
			}
			if err := c.storage.AppendRelations(ctx, records); err != nil {
				return err
			}
			stats.Relations += len(records)
			processed[id] = struct{}{}
			sleep(ctx, opts.Sleep)
		}
	}
	return nil
}

// withRetry runs fn up to opts.Retries times with linearly growing backoff,
// logging each failure.  The last error is returned.
func (c *Collector) withRetry(ctx context.Context, opts Options, label string, fn func() error) error {
	var last error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		if err := aborted(ctx); err != nil {
			return err
		}
		if last = fn(); last == nil {
			return nil
		}
		c.logger.Warn("collector call failed",
			logging.String("call", label),
			logging.Int("attempt", attempt),
			logging.Int("retries", opts.Retries),
			logging.Err(last))
		if attempt < opts.Retries {
			sleep(ctx, opts.Sleep*time.Duration(attempt))
		}
	}
	return last
}

func splitIDs(raw string) []string {
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func aborted(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CodeCollectAborted, "collection aborted")
	default:
		return nil
	}
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
