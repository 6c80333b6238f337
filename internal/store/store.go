// Package store persists search runs and the patterns they find in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"casearch/internal/patterns"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed results sink. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection: SQLite has a single writer and an in-memory database
	// lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("store: %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Run describes one search invocation.
type Run struct {
	ID         string
	Search     string
	Rule       string
	Seed       int64
	Iterations int
	StartedAt  time.Time
}

// NewRunID returns a time-ordered run identifier.
func NewRunID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("store: run id: %w", err)
	}
	return id.String(), nil
}

// CreateRun records a run. A zero StartedAt is set to now.
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, search, rule, seed, iterations, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Search, r.Rule, r.Seed, r.Iterations, r.StartedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: create run %s: %w", r.ID, err)
	}
	return nil
}

// SavePattern stores p under runID. A pattern saved under a key already
// present in the run replaces the earlier row's contents.
func (s *Store) SavePattern(ctx context.Context, runID string, p *patterns.Pattern) error {
	var minRule, maxRule sql.NullString
	if p.MinRule != nil && p.MaxRule != nil {
		minRule = sql.NullString{String: p.MinRule.Rulestring(), Valid: true}
		maxRule = sql.NullString{String: p.MaxRule.Rulestring(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (run_id, pattern_key, kind, description, rule, min_rule, max_rule,
			period, dx, dy, repeat_time, power, rle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, pattern_key) DO UPDATE SET
			kind = excluded.kind, description = excluded.description, rule = excluded.rule,
			min_rule = excluded.min_rule, max_rule = excluded.max_rule, period = excluded.period,
			dx = excluded.dx, dy = excluded.dy, repeat_time = excluded.repeat_time,
			power = excluded.power, rle = excluded.rle`,
		runID, p.Key(), p.Kind.String(), p.String(), p.Rule.Rulestring(), minRule, maxRule,
		p.Period, p.Displacement.X, p.Displacement.Y, p.RepeatTime, p.Power, p.RLE())
	if err != nil {
		return fmt.Errorf("store: save pattern for run %s: %w", runID, err)
	}
	return nil
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, search, rule, seed, iterations, started_at FROM runs ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Search, &r.Rule, &r.Seed, &r.Iterations, &started); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Record is a stored pattern.
type Record struct {
	ID          int64
	RunID       string
	Kind        string
	Description string
	Rule        string
	MinRule     string
	MaxRule     string
	Period      int
	DX, DY      int
	RepeatTime  int
	Power       float64
	RLE         string
}

// Patterns lists the patterns of a run in the order they were saved.
func (s *Store) Patterns(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, kind, description, rule, COALESCE(min_rule, ''), COALESCE(max_rule, ''),
			period, dx, dy, repeat_time, power, rle
		FROM patterns WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list patterns of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.RunID, &r.Kind, &r.Description, &r.Rule, &r.MinRule, &r.MaxRule,
			&r.Period, &r.DX, &r.DY, &r.RepeatTime, &r.Power, &r.RLE); err != nil {
			return nil, fmt.Errorf("store: scan pattern: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
