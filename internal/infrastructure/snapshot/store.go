// Package snapshot persists and loads the collected terminology record set.
// Two backends exist: newline-delimited JSON files in a data directory, which
// is what the collector writes by default, and PostgreSQL for deployments
// that share one snapshot across instances.
package snapshot

import (
	"context"

	"github.com/lawglot/lawglot/internal/domain/term"
)

// Canonical snapshot file names inside the data directory.
const (
	LegalTermsFile = "lstrm.jsonl"
	RelationsFile  = "lstrm_rlt.jsonl"
)

// Store loads a snapshot for index building.
type Store interface {
	Load(ctx context.Context) (*term.Snapshot, error)
}

// Sink receives collector output.  WriteLegalTerms replaces the stored term
// list; AppendRelations adds rows so an interrupted sweep can resume.
type Sink interface {
	WriteLegalTerms(ctx context.Context, records []term.LegalTermRecord) error
	AppendRelations(ctx context.Context, records []term.RelationRecord) error

	// ProcessedLegalIDs reports which legal-term ids already have stored
	// relations, for resume support.
	ProcessedLegalIDs(ctx context.Context) (map[string]struct{}, error)
}
