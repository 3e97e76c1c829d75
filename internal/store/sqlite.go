package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	scheme          TEXT NOT NULL,
	rebalance       TEXT NOT NULL,
	initial_capital REAL NOT NULL,
	final_value     REAL NOT NULL,
	total_return    REAL NOT NULL,
	sharpe          REAL NOT NULL,
	max_drawdown    REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS trials (
	study  TEXT NOT NULL,
	number INTEGER NOT NULL,
	params TEXT NOT NULL,
	value  REAL NOT NULL,
	state  TEXT NOT NULL,
	PRIMARY KEY (study, number)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies the
// schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run record, assigning a UUID and timestamp when unset.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, scheme, rebalance, initial_capital,
			final_value, total_return, sharpe, max_drawdown)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(time.RFC3339Nano), run.Scheme, run.Rebalance,
		run.InitialCapital, run.FinalValue, run.TotalReturn, run.Sharpe, run.MaxDrawdown)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, scheme, rebalance, initial_capital,
			final_value, total_return, sharpe, max_drawdown
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, scheme, rebalance, initial_capital,
			final_value, total_return, sharpe, max_drawdown
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// SaveTrial inserts or replaces a trial record.
func (s *SQLiteStore) SaveTrial(ctx context.Context, trial *Trial) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO trials (study, number, params, value, state)
		 VALUES (?, ?, ?, ?, ?)`,
		trial.Study, trial.Number, trial.Params, trial.Value, trial.State)
	if err != nil {
		return fmt.Errorf("saving trial %s/%d: %w", trial.Study, trial.Number, err)
	}
	return nil
}

// ListTrials returns all trials of a study ordered by trial number.
func (s *SQLiteStore) ListTrials(ctx context.Context, study string) ([]Trial, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT study, number, params, value, state
		 FROM trials WHERE study = ? ORDER BY number`, study)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		var t Trial
		if err := rows.Scan(&t.Study, &t.Number, &t.Params, &t.Value, &t.State); err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt string
	err := row.Scan(&run.ID, &createdAt, &run.Scheme, &run.Rebalance,
		&run.InitialCapital, &run.FinalValue, &run.TotalReturn, &run.Sharpe, &run.MaxDrawdown)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return &run, nil
}
