package snapshot

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// scanBufferSize accommodates long article notes on a single JSONL line.
const scanBufferSize = 1 << 20

// FileStore reads and writes the JSONL snapshot files in one data directory.
// A missing file is an empty record set, not an error: a fresh deployment
// starts with no snapshot and fills it via the collector.
type FileStore struct {
	dir    string
	logger logging.Logger
}

// NewFileStore creates a JSONL snapshot store rooted at dir.
func NewFileStore(dir string, logger logging.Logger) *FileStore {
	return &FileStore{dir: dir, logger: logger}
}

// Dir returns the data directory the store operates on.
func (s *FileStore) Dir() string { return s.dir }

// Load reads both snapshot files.  Lines that fail to decode are skipped and
// counted, never fatal: one corrupt line must not discard the rest of a
// multi-hour collection run.
func (s *FileStore) Load(_ context.Context) (*term.Snapshot, error) {
	snap := &term.Snapshot{}

	skipped, err := readJSONLines(filepath.Join(s.dir, LegalTermsFile), func(line []byte) bool {
		var rec term.LegalTermRecord
		if json.Unmarshal(line, &rec) != nil {
			return false
		}
		snap.LegalTerms = append(snap.LegalTerms, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	total := skipped

	skipped, err = readJSONLines(filepath.Join(s.dir, RelationsFile), func(line []byte) bool {
		var rec term.RelationRecord
		if json.Unmarshal(line, &rec) != nil {
			return false
		}
		snap.Relations = append(snap.Relations, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	total += skipped

	if total > 0 && s.logger != nil {
		s.logger.Warn("skipped undecodable snapshot lines",
			logging.Int("count", total),
			logging.String("dir", s.dir))
	}
	return snap, nil
}

// readJSONLines feeds every non-empty line to accept and returns how many
// lines accept rejected.  A missing file yields zero lines.
func readJSONLines(path string, accept func(line []byte) bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.CodeSnapshotLoad, "open snapshot file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !accept(line) {
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return skipped, errors.Wrap(err, errors.CodeSnapshotLoad, "read snapshot file")
	}
	return skipped, nil
}

// WriteLegalTerms replaces the stored legal-term list.
func (s *FileStore) WriteLegalTerms(_ context.Context, records []term.LegalTermRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "create data directory")
	}
	f, err := os.Create(filepath.Join(s.dir, LegalTermsFile))
	if err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "create legal terms file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return errors.Wrap(err, errors.CodeSnapshotLoad, "encode legal term record")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "flush legal terms file")
	}
	return nil
}

// AppendRelations appends relation rows, creating the file when absent.
func (s *FileStore) AppendRelations(_ context.Context, records []term.RelationRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "create data directory")
	}
	f, err := os.OpenFile(filepath.Join(s.dir, RelationsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "open relations file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return errors.Wrap(err, errors.CodeSnapshotLoad, "encode relation record")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "flush relations file")
	}
	return nil
}

// ProcessedLegalIDs scans the relations file and reports every legal-term id
// that already has at least one stored row.
func (s *FileStore) ProcessedLegalIDs(_ context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{})
	_, err := readJSONLines(filepath.Join(s.dir, RelationsFile), func(line []byte) bool {
		var rec term.RelationRecord
		if json.Unmarshal(line, &rec) != nil {
			return false
		}
		if rec.LegalID != "" {
			ids[rec.LegalID] = struct{}{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
