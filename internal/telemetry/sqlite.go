package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Compile-time interface check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists telemetry in SQLite so run history survives
// restarts.
//
// It expects an *sql.DB opened with a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteStore initializes the required schema in the given database
// and returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB, log *logger.Logger) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, log: log}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initializing telemetry schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			plan TEXT NOT NULL,
			step INTEGER NOT NULL,
			state TEXT NOT NULL,
			message TEXT
		);
		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			seconds REAL NOT NULL,
			temperature REAL NOT NULL
		);`,
	)
	return err
}

// RecordEvent inserts a run transition.
func (s *SQLiteStore) RecordEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (at, plan, step, state, message)
		VALUES (?, ?, ?, ?, ?)`,
		e.At.UTC().Format(time.RFC3339Nano),
		e.Plan,
		e.Step,
		e.State,
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	s.log.Debug("telemetry: event plan=%q step=%d state=%s", e.Plan, e.Step, e.State)
	return nil
}

// RecordSample inserts a temperature reading.
func (s *SQLiteStore) RecordSample(ctx context.Context, sample Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO samples (at, seconds, temperature)
		VALUES (?, ?, ?)`,
		sample.At.UTC().Format(time.RFC3339Nano),
		sample.Seconds,
		sample.Temperature,
	)
	if err != nil {
		return fmt.Errorf("recording sample: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first.
func (s *SQLiteStore) RecentEvents(ctx context.Context, limit int) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, plan, step, state, message
		FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var at string
		if err := rows.Scan(&at, &e.Plan, &e.Step, &e.State, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecentSamples returns up to limit samples, newest first.
func (s *SQLiteStore) RecentSamples(ctx context.Context, limit int) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT at, seconds, temperature
		FROM samples ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		var at string
		if err := rows.Scan(&at, &sm.Seconds, &sm.Temperature); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		sm.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
