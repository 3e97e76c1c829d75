// Package store persists engine artifacts: price/signal panels as Parquet
// files, and backtest run summaries plus tuning trials in SQLite.
package store

import (
	"context"
	"time"

	"quantstarter/internal/panel"
)

// PanelStore persists and retrieves named panels.
type PanelStore interface {
	// WritePanel persists a panel under the given name, replacing any
	// previous contents.
	WritePanel(ctx context.Context, name string, p *panel.Panel) error

	// ReadPanel loads the named panel.
	ReadPanel(ctx context.Context, name string) (*panel.Panel, error)

	// ListPanels returns the names of all stored panels, sorted.
	ListPanels(ctx context.Context) ([]string, error)
}

// Run is the persisted summary of one backtest run.
type Run struct {
	ID             string
	CreatedAt      time.Time
	Scheme         string
	Rebalance      string
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	Sharpe         float64
	MaxDrawdown    float64
}

// Trial is one persisted hyperparameter-tuning evaluation.
type Trial struct {
	Study  string
	Number int
	Params string // JSON-encoded parameter set
	Value  float64
	State  string // "complete" or "failed"
}

// RunStore persists backtest run summaries and tuning trials.
type RunStore interface {
	// SaveRun inserts a run record, assigning an ID and timestamp when
	// they are unset.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first, up to limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// SaveTrial inserts or replaces a trial record.
	SaveTrial(ctx context.Context, trial *Trial) error

	// ListTrials returns all trials of a study ordered by trial number.
	ListTrials(ctx context.Context, study string) ([]Trial, error)
}
