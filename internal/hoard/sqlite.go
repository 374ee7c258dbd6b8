package hoard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dyluth/sweep/internal/filter"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	created_at_ms    INTEGER NOT NULL,
	model            TEXT NOT NULL,
	mode             TEXT NOT NULL,
	iterations       INTEGER NOT NULL,
	k                REAL NOT NULL,
	half_life        REAL NOT NULL,
	max_unchanged    INTEGER NOT NULL,
	temp_scale       REAL NOT NULL,
	trials           INTEGER NOT NULL,
	seed             INTEGER NOT NULL,
	initial_energy   REAL NOT NULL,
	final_energy     REAL NOT NULL,
	improvement      REAL NOT NULL,
	mean_improvement REAL NOT NULL,
	stddev           REAL NOT NULL,
	mean_distance    REAL NOT NULL,
	corpus_digest    TEXT NOT NULL,
	fingerprint      TEXT NOT NULL,
	layout           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at_ms);
`

const runColumns = `id, created_at_ms, model, mode, iterations, k, half_life, max_unchanged,
	temp_scale, trials, seed, initial_energy, final_energy, improvement,
	mean_improvement, stddev, mean_distance, corpus_digest, fingerprint, layout`

// SQLiteStore keeps runs in a local SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database %s: %w", path, err)
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise run database %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the run.
func (s *SQLiteStore) Save(ctx context.Context, r *Run) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", 20), ", ")
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO runs ("+runColumns+") VALUES ("+placeholders+")",
		r.ID, r.CreatedAtMs, r.Model, r.Mode, r.Iterations, r.K, r.HalfLife, r.MaxUnchanged,
		r.TempScale, r.Trials, r.Seed, r.InitialEnergy, r.FinalEnergy, r.Improvement,
		r.MeanImprovement, r.StdDev, r.MeanDistance, r.CorpusDigest, r.Fingerprint, string(r.Layout),
	)
	if err != nil {
		return fmt.Errorf("failed to write run to database: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	var layoutJSON string
	err := row.Scan(
		&r.ID, &r.CreatedAtMs, &r.Model, &r.Mode, &r.Iterations, &r.K, &r.HalfLife, &r.MaxUnchanged,
		&r.TempScale, &r.Trials, &r.Seed, &r.InitialEnergy, &r.FinalEnergy, &r.Improvement,
		&r.MeanImprovement, &r.StdDev, &r.MeanDistance, &r.CorpusDigest, &r.Fingerprint, &layoutJSON,
	)
	if err != nil {
		return nil, err
	}
	r.Layout = []byte(layoutJSON)
	return &r, nil
}

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &RunNotFoundError{RunID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run from database: %w", err)
	}
	return r, nil
}

// List returns matching runs, oldest first. The time window is applied in
// SQL, the remaining criteria in Go.
func (s *SQLiteStore) List(ctx context.Context, criteria *filter.Criteria) ([]*Run, error) {
	query := "SELECT " + runColumns + " FROM runs WHERE 1=1"
	var args []any
	if criteria != nil && criteria.SinceTimestampMs > 0 {
		query += " AND created_at_ms >= ?"
		args = append(args, criteria.SinceTimestampMs)
	}
	if criteria != nil && criteria.UntilTimestampMs > 0 {
		query += " AND created_at_ms <= ?"
		args = append(args, criteria.UntilTimestampMs)
	}
	query += " ORDER BY created_at_ms, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read run row: %w", err)
		}
		if criteria.Matches(r) {
			runs = append(runs, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// IDsWithPrefix returns run IDs starting with prefix.
func (s *SQLiteStore) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id", prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to search runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to read run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
