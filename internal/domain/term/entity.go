// Package term holds the terminology data model shared by the resolution
// pipeline, the local cache index, and the remote client: everyday terms as
// non-experts use them, the legal terms statutes define, and the statute
// articles that invoke them.
package term

import "time"

// Article is one statute article excerpt linked to a legal term.  Sourced
// entirely from the remote service and never mutated after creation.
type Article struct {
	LawID               string `json:"lawId"`
	LawName             string `json:"lawName"`
	ArticleNumber       string `json:"articleNumber"`
	SubArticleNumber    string `json:"subArticleNumber"`
	Content             string `json:"content"`
	TermTypeCode        string `json:"termTypeCode"`
	TermType            string `json:"termType"`
	ArticleRelationLink string `json:"articleRelationLink"`
}

// LegalTermLink is one legal term linked to an everyday term, together with
// its resolved articles and a short article-derived summary.
type LegalTermLink struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RelationCode  string    `json:"relationCode"`
	Relation      string    `json:"relation"`
	Note          string    `json:"note"`
	LegalTermName string    `json:"legalTermName"`
	Summary       string    `json:"summary"`
	Articles      []Article `json:"articles"`
}

// Everyday-term provenance values.
const (
	SourceCache = "cache:lstrmRlt"
)

// EverydayTerm is a plain-language term candidate produced for one extracted
// keyword.  Identity is the remote/cache-assigned id; when a record carries
// no id, the display name serves as fallback identity.
type EverydayTerm struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Source     string          `json:"source"`
	Keyword    string          `json:"keyword"`
	LegalTerms []LegalTermLink `json:"legalTerms"`
}

// Identity returns the deduplication key for the candidate.
func (e EverydayTerm) Identity() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

// KeywordBundle pairs one extracted token with its deduplicated candidate
// list.  Cache-sourced candidates always precede remote-sourced ones.
type KeywordBundle struct {
	Token      string         `json:"token"`
	DailyTerms []EverydayTerm `json:"dailyTerms"`
}

// ResultBundle is the top-level translation response.  Keywords repeats the
// flat token list for backward compatibility; Warnings records every
// non-fatal degradation in the order it occurred.
type ResultBundle struct {
	Tokens   []KeywordBundle `json:"tokens"`
	Keywords []string        `json:"keywords"`
	Warnings []string        `json:"warnings"`
}

// SearchBudget bounds the remote work one keyword resolution may perform.
// The time budget is evaluated once per prospective page fetch, not
// preemptively: a single slow in-flight call can overrun the budget by that
// call's duration.  That is accepted behavior, not a bug.
type SearchBudget struct {
	// MaxPages bounds pages fetched per search term.
	MaxPages int

	// PageSize is the number of rows requested per page.  A page shorter
	// than PageSize terminates paging for that term.
	PageSize int

	// TimeBudget is the shared wall-clock budget for all search terms tried
	// on behalf of one keyword.
	TimeBudget time.Duration
}

// LegalTermRecord is one line of the collected lstrm.jsonl snapshot.
type LegalTermRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Note         string `json:"note"`
	DictKindCode string `json:"dict_kind_code"`
	LawKindCode  string `json:"law_kind_code"`
}

// RelationRecord is one line of the collected lstrm_rlt.jsonl snapshot,
// linking a legal term to an everyday term.
type RelationRecord struct {
	LegalID      string `json:"legal_id"`
	LegalName    string `json:"legal_name"`
	DailyID      string `json:"daily_id"`
	DailyName    string `json:"daily_name"`
	RelationCode string `json:"relation_code"`
	Relation     string `json:"relation"`
}

// Snapshot is the full pre-collected record set a cache index is built from.
type Snapshot struct {
	LegalTerms []LegalTermRecord
	Relations  []RelationRecord
}
