// Package backtest implements the vectorized backtesting engine: it converts
// a signal panel into portfolio weights under a configurable scheme, applies
// a rebalancing-frequency policy, charges transaction costs on turnover, and
// compounds daily strategy returns into a portfolio-value series.
package backtest

import (
	"math"
	"time"

	"quantstarter/internal/panel"
)

// Scheme selects how a cross-section of signals becomes portfolio weights.
type Scheme string

// Supported weight schemes.
const (
	SchemeRank      Scheme = "rank"
	SchemeZScore    Scheme = "zscore"
	SchemeLongShort Scheme = "long_short"
)

// Frequency is the cadence at which target weights are recomputed. Between
// rebalances the previous weight vector is carried forward unchanged.
type Frequency string

// Supported rebalance frequencies.
const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// Config holds the engine parameters fixed at construction time.
type Config struct {
	InitialCapital  float64
	TransactionCost float64 // proportional cost per unit of turnover
	MaxLeverage     float64 // cap on total absolute weight
	MinPositionSize float64 // advisory; not applied by the algorithm
	RebalanceFreq   Frequency
}

// DefaultConfig returns the engine defaults: $1M capital, 10 bps costs,
// 1.0x leverage, daily rebalancing.
func DefaultConfig() Config {
	return Config{
		InitialCapital:  1_000_000,
		TransactionCost: 0.001,
		MaxLeverage:     1.0,
		MinPositionSize: 0.001,
		RebalanceFreq:   FreqDaily,
	}
}

// Engine runs vectorized backtests over an aligned price and signal panel.
// An Engine is safe for concurrent Run calls as long as it is not mutated;
// each Run produces an independent Result.
type Engine struct {
	prices  *panel.Panel
	signals *panel.Panel
	cfg     Config

	// sigCol maps each price column to the matching signal column, or -1
	// when the signal panel has no column for that symbol.
	sigCol []int
}

// New aligns the two panels on their common dates and returns a ready
// engine. It fails with *AlignmentError when the date intersection is empty;
// that error is fatal and non-recoverable.
func New(prices, signals *panel.Panel, cfg Config) (*Engine, error) {
	common := panel.CommonDates(prices, signals)
	if len(common) == 0 {
		return nil, &AlignmentError{PriceDates: prices.Len(), SignalDates: signals.Len()}
	}

	e := &Engine{
		prices:  prices.Restrict(common),
		signals: signals.Restrict(common),
		cfg:     cfg,
	}

	// Weights are expressed over the price columns; signals are matched to
	// them by symbol name, as in the source panels' own column order.
	symbols := e.prices.Symbols()
	e.sigCol = make([]int, len(symbols))
	for j, sym := range symbols {
		e.sigCol[j] = e.signals.SymbolIndex(sym)
	}
	return e, nil
}

// Prices returns the price panel restricted to the aligned date range.
func (e *Engine) Prices() *panel.Panel { return e.prices }

// Signals returns the signal panel restricted to the aligned date range.
func (e *Engine) Signals() *panel.Panel { return e.signals }

// Run executes the backtest under the given weight scheme and returns the
// full result bundle, or an error from the rebalance policy or weight
// calculator. On error there is no partial result.
func (e *Engine) Run(scheme Scheme) (*Result, error) {
	returns := e.prices.PctChange()
	symbols := e.prices.Symbols()
	nSym := len(symbols)

	// Compute daily weights from signals, rebalancing only on rebalance
	// dates; otherwise the previous weight vector is held.
	weights := make([][]float64, returns.Len())
	current := make([]float64, nSym)
	var lastRebalance *time.Time
	for i := 0; i < returns.Len(); i++ {
		date := returns.Date(i)
		rebalance, err := e.shouldRebalance(date, lastRebalance)
		if err != nil {
			return nil, err
		}
		if rebalance {
			row := e.signalRow(i + 1) // returns index i corresponds to panel row i+1
			w, err := computeWeights(row, scheme, e.cfg.MaxLeverage)
			if err != nil {
				return nil, err
			}
			current = w
			d := date
			lastRebalance = &d
		}
		weights[i] = append([]float64(nil), current...)
	}

	// Previous-day weights are the positions in force going into each day.
	// Day 0 starts flat.
	zero := make([]float64, nSym)
	stratReturns := make([]float64, returns.Len())
	for i := range stratReturns {
		prev := zero
		if i > 0 {
			prev = weights[i-1]
		}

		// Turnover is half the L1 distance: a unit of turnover is an
		// equal buy and sell.
		turnover := 0.0
		for j := 0; j < nSym; j++ {
			turnover += math.Abs(weights[i][j] - prev[j])
		}
		turnover *= 0.5

		ret := 0.0
		for j := 0; j < nSym; j++ {
			r := returns.At(i, j)
			if math.IsNaN(r) {
				continue // missing price: that asset contributes nothing
			}
			ret += prev[j] * r
		}
		stratReturns[i] = ret - turnover*e.cfg.TransactionCost
	}

	// Compound into a portfolio-value series anchored at InitialCapital on
	// the first aligned price date.
	pvDates := e.prices.Dates()
	pv := make([]float64, len(pvDates))
	pv[0] = e.cfg.InitialCapital
	for i := 1; i < len(pv); i++ {
		pv[i] = pv[i-1] * (1 + stratReturns[i-1])
	}

	portfolioValue, err := panel.NewSeries(pvDates, pv)
	if err != nil {
		return nil, err
	}
	positions, err := panel.New(returns.Dates(), symbols, weights)
	if err != nil {
		return nil, err
	}

	finalValue := portfolioValue.Last()
	return &Result{
		PortfolioValue: portfolioValue,
		Returns:        portfolioValue.PctChange(),
		Positions:      positions,
		Trades:         nil,
		InitialCapital: e.cfg.InitialCapital,
		FinalValue:     finalValue,
		TotalReturn:    finalValue/e.cfg.InitialCapital - 1,
	}, nil
}

// signalRow builds the cross-section for panel row i in price-column order.
// Symbols missing from the signal panel read as NaN and end up with zero
// weight.
func (e *Engine) signalRow(i int) []float64 {
	row := make([]float64, len(e.sigCol))
	for j, sc := range e.sigCol {
		if sc < 0 {
			row[j] = math.NaN()
			continue
		}
		row[j] = e.signals.At(i, sc)
	}
	return row
}
