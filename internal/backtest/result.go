package backtest

import (
	"time"

	"quantstarter/internal/panel"
)

// Trade records a single fill. The engine trades in weight space and does
// not currently emit fills; the field exists so result consumers have a
// stable shape when execution modeling lands.
type Trade struct {
	Symbol   string
	Date     time.Time
	Quantity float64
	Price    float64
}

// Result is the bundle produced by a single Run call. It is created fresh
// per run and never mutated afterward, so it is safe to read concurrently.
type Result struct {
	// PortfolioValue starts at InitialCapital on the first aligned price
	// date and compounds the daily strategy returns.
	PortfolioValue *panel.Series

	// Returns are the daily changes of PortfolioValue, one observation
	// shorter than it.
	Returns *panel.Series

	// Positions holds the daily weight vectors, indexed like Returns.
	Positions *panel.Panel

	// Trades is always empty for now.
	Trades []Trade

	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
}
