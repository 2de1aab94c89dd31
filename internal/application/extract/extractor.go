// Package extract turns raw Korean text into a ranked list of normalized
// keyword tokens, optionally expanded with related legal vocabulary.  It is
// a best-effort heuristic aid: suffix stripping and lemma recovery are
// driven by ordered rule tables, not by a full morphological analysis.
package extract

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Extractor extracts and expands keywords.  Construct once and share; it is
// immutable after construction and safe for concurrent use.
type Extractor struct {
	tokenizer      Tokenizer
	stopwords      map[string]struct{}
	suffixes       []string // trailing formal suffixes, longest first
	endings        []string // meaning-unit endings, longest first
	verbBases      []verbBaseRule
	synonymSeeds   map[string][]string
	searchSynonyms map[string][]string
	domainRules    []domainRule
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithTokenizer replaces the fallback regex tokenizer, e.g. with a
// morphological-analysis strategy.
func WithTokenizer(t Tokenizer) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tokenizer = t
		}
	}
}

// WithStopwords adds to the builtin stopword set.
func WithStopwords(words ...string) Option {
	return func(e *Extractor) {
		for _, w := range words {
			e.stopwords[w] = struct{}{}
		}
	}
}

// NewExtractor builds an Extractor with the builtin rule tables.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		tokenizer:      RegexTokenizer{},
		stopwords:      make(map[string]struct{}, len(defaultStopwords)),
		suffixes:       sortedByLengthDesc(trailingSuffixes),
		endings:        sortedByLengthDesc(endingsToStrip),
		verbBases:      verbBaseRules,
		synonymSeeds:   synonymSeeds,
		searchSynonyms: searchSynonyms,
		domainRules:    domainRules,
	}
	for _, w := range defaultStopwords {
		e.stopwords[w] = struct{}{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sortedByLengthDesc returns a copy of table ordered longest-first so that
// suffix matching is longest-match-first.  The sort is stable to keep table
// order among equal lengths.
func sortedByLengthDesc(table []string) []string {
	out := make([]string, len(table))
	copy(out, table)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// trimLastRune removes the final rune of s.
func trimLastRune(s string) string {
	r, size := utf8.DecodeLastRuneInString(s)
	if r == utf8.RuneError && size == 0 {
		return s
	}
	return s[:len(s)-size]
}

// normalize strips one trailing formal suffix (longest match first) and then
// a single trailing particle character.
func (e *Extractor) normalize(token string) string {
	token = strings.TrimSpace(token)
	for _, suffix := range e.suffixes {
		if strings.HasSuffix(token, suffix) {
			token = strings.TrimSuffix(token, suffix)
			break
		}
	}
	if r, _ := utf8.DecodeLastRuneInString(token); r != utf8.RuneError {
		if _, ok := particleRunes[r]; ok {
			token = trimLastRune(token)
		}
	}
	return token
}

// meaningUnits splits a normalized token into meaning-unit candidates: the
// ending-stripped stem and any recovered dictionary base forms.  Every unit
// keeps at least two characters and is reported once.
func (e *Extractor) meaningUnits(token string) []string {
	var units []string
	add := func(u string) {
		if runeLen(u) < 2 {
			return
		}
		for _, existing := range units {
			if existing == u {
				return
			}
		}
		units = append(units, u)
	}

	for _, ending := range e.endings {
		if strings.HasSuffix(token, ending) && runeLen(token)-runeLen(ending) >= 2 {
			token = strings.TrimSuffix(token, ending)
			add(token)
			break
		}
	}

	for _, rule := range e.verbBases {
		if rule.pattern.MatchString(token) {
			add(rule.base)
		}
	}

	// 하다-class verbs: a stem ending in 하 implies the base 하다.
	if strings.HasSuffix(token, "하") {
		add("하다")
	}

	return units
}

// expandDomain returns the additions of every domain rule whose pattern
// matches the token, in rule order.
func (e *Extractor) expandDomain(token string) []string {
	var extras []string
	for _, rule := range e.domainRules {
		if rule.pattern.MatchString(token) {
			extras = append(extras, rule.additions...)
		}
	}
	return extras
}

// ExpandRelated generates remote search expansion terms for a token: static
// search synonyms followed by domain-rule additions, deduplicated and never
// containing the token itself.
func (e *Extractor) ExpandRelated(token string) []string {
	var related []string
	related = append(related, e.searchSynonyms[token]...)
	related = append(related, e.expandDomain(token)...)

	var deduped []string
	seen := map[string]struct{}{token: {}}
	for _, r := range related {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped
}

// Extract returns at most topK keywords for text, most frequent first with
// first-seen order breaking ties.  Tokens shorter than two characters and
// stopwords (builtin plus extraStopwords) are discarded.  When
// expandSynonyms is set, synonym-seed and domain-rule expansions are
// appended after the base keywords, in the order of their triggering
// keyword.
func (e *Extractor) Extract(text string, topK int, extraStopwords []string, expandSynonyms bool) []string {
	if text == "" || topK <= 0 {
		return nil
	}

	stop := e.stopwords
	if len(extraStopwords) > 0 {
		stop = make(map[string]struct{}, len(e.stopwords)+len(extraStopwords))
		for w := range e.stopwords {
			stop[w] = struct{}{}
		}
		for _, w := range extraStopwords {
			stop[w] = struct{}{}
		}
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	record := func(piece string) {
		if _, ok := stop[piece]; ok {
			return
		}
		if _, ok := firstSeen[piece]; !ok {
			firstSeen[piece] = len(order)
			order = append(order, piece)
		}
		counts[piece]++
	}

	for _, raw := range e.tokenizer.Tokenize(text) {
		norm := e.normalize(raw)
		if runeLen(norm) < 2 {
			continue
		}
		if _, ok := stop[norm]; ok {
			continue
		}
		record(norm)
		for _, unit := range e.meaningUnits(norm) {
			record(unit)
		}
	}

	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	keywords := ranked

	if expandSynonyms {
		present := make(map[string]struct{}, len(keywords))
		for _, k := range keywords {
			present[k] = struct{}{}
		}
		appendExtra := func(w string) {
			if _, ok := stop[w]; ok {
				return
			}
			if _, ok := present[w]; ok {
				return
			}
			present[w] = struct{}{}
			keywords = append(keywords, w)
		}
		base := keywords[:len(keywords):len(keywords)]
		for _, key := range base {
			for _, syn := range e.synonymSeeds[key] {
				appendExtra(syn)
			}
			for _, extra := range e.expandDomain(key) {
				appendExtra(extra)
			}
		}
	}

	return keywords
}
