package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// PostgresStore keeps the snapshot in two tables so several server instances
// can share one collected record set.  It implements both Store and Sink.
type PostgresStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewPostgresStore opens a pgx-backed connection pool and verifies it.
func NewPostgresStore(dsn string, logger logging.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "open postgres connection")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "postgres connection failed")
	}

	logger.Info("connected to postgres snapshot store")
	return &PostgresStore{db: db, logger: logger}, nil
}

// NewPostgresStoreWithDB wraps an existing pool, for tests.
func NewPostgresStoreWithDB(db *sql.DB, logger logging.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Migrate applies all pending schema migrations from migrationsDir.
func (s *PostgresStore) Migrate(migrationsDir string) error {
	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create migration driver")
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create migrate instance")
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		version, _, _ := m.Version()
		return errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("run migrations (current version: %d)", version))
	}
	s.logger.Info("snapshot schema migrations applied")
	return nil
}

// Load reads the whole snapshot.
func (s *PostgresStore) Load(ctx context.Context) (*term.Snapshot, error) {
	snap := &term.Snapshot{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, note, dict_kind_code, law_kind_code FROM legal_terms ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "query legal terms")
	}
	defer rows.Close()
	for rows.Next() {
		var rec term.LegalTermRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Note, &rec.DictKindCode, &rec.LawKindCode); err != nil {
			return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "scan legal term row")
		}
		snap.LegalTerms = append(snap.LegalTerms, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "iterate legal term rows")
	}

	relRows, err := s.db.QueryContext(ctx,
		`SELECT legal_id, legal_name, daily_id, daily_name, relation_code, relation
		 FROM term_relations ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "query relations")
	}
	defer relRows.Close()
	for relRows.Next() {
		var rec term.RelationRecord
		if err := relRows.Scan(&rec.LegalID, &rec.LegalName, &rec.DailyID, &rec.DailyName,
			&rec.RelationCode, &rec.Relation); err != nil {
			return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "scan relation row")
		}
		snap.Relations = append(snap.Relations, rec)
	}
	if err := relRows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "iterate relation rows")
	}
	return snap, nil
}

// WriteLegalTerms upserts the collected term list by id.
func (s *PostgresStore) WriteLegalTerms(ctx context.Context, records []term.LegalTermRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "begin transaction")
	}
	defer tx.Rollback()

	const stmt = `INSERT INTO legal_terms (id, name, note, dict_kind_code, law_kind_code)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			note = EXCLUDED.note,
			dict_kind_code = EXCLUDED.dict_kind_code,
			law_kind_code = EXCLUDED.law_kind_code`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, stmt,
			rec.ID, rec.Name, rec.Note, rec.DictKindCode, rec.LawKindCode); err != nil {
			return errors.Wrap(err, errors.CodeSnapshotLoad, "upsert legal term")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "commit legal terms")
	}
	return nil
}

// AppendRelations inserts relation rows.
func (s *PostgresStore) AppendRelations(ctx context.Context, records []term.RelationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "begin transaction")
	}
	defer tx.Rollback()

	const stmt = `INSERT INTO term_relations
		(legal_id, legal_name, daily_id, daily_name, relation_code, relation)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, stmt,
			rec.LegalID, rec.LegalName, rec.DailyID, rec.DailyName,
			rec.RelationCode, rec.Relation); err != nil {
			return errors.Wrap(err, errors.CodeSnapshotLoad, "insert relation")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeSnapshotLoad, "commit relations")
	}
	return nil
}

// ProcessedLegalIDs reports legal-term ids that already have relation rows.
func (s *PostgresStore) ProcessedLegalIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT legal_id FROM term_relations`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "query processed ids")
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "scan processed id")
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeSnapshotLoad, "iterate processed ids")
	}
	return ids, nil
}
