// Package tuning runs hyperparameter searches over the backtesting engine:
// a deterministic parameter grid evaluated across a bounded worker pool,
// scored by a pluggable objective (Sharpe by default).
package tuning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"quantstarter/internal/backtest"
	"quantstarter/internal/factors"
	"quantstarter/internal/metrics"
	"quantstarter/internal/panel"
	"quantstarter/internal/store"
)

// Trial states.
const (
	StateComplete = "complete"
	StateFailed   = "failed"
)

// Params is one point of the search grid.
type Params struct {
	Scheme          backtest.Scheme    `json:"scheme"`
	Frequency       backtest.Frequency `json:"rebalance"`
	TransactionCost float64            `json:"transaction_cost"`
	Lookback        int                `json:"lookback"`
}

// SearchSpace declares the candidate values per parameter. The grid is the
// cross product of all slices.
type SearchSpace struct {
	Schemes          []backtest.Scheme
	Frequencies      []backtest.Frequency
	TransactionCosts []float64
	Lookbacks        []int
}

// DefaultSearchSpace covers all schemes and frequencies with a small range
// of costs and momentum lookbacks.
func DefaultSearchSpace() SearchSpace {
	return SearchSpace{
		Schemes:          []backtest.Scheme{backtest.SchemeRank, backtest.SchemeZScore, backtest.SchemeLongShort},
		Frequencies:      []backtest.Frequency{backtest.FreqDaily, backtest.FreqWeekly, backtest.FreqMonthly},
		TransactionCosts: []float64{0, 0.0005, 0.001},
		Lookbacks:        []int{21, 63, 126},
	}
}

// grid enumerates the cross product in a fixed order, so trial numbers are
// stable across runs.
func (s SearchSpace) grid() []Params {
	var out []Params
	for _, scheme := range s.Schemes {
		for _, freq := range s.Frequencies {
			for _, cost := range s.TransactionCosts {
				for _, lb := range s.Lookbacks {
					out = append(out, Params{
						Scheme:          scheme,
						Frequency:       freq,
						TransactionCost: cost,
						Lookback:        lb,
					})
				}
			}
		}
	}
	return out
}

// Trial is the outcome of evaluating one grid point.
type Trial struct {
	Number int
	Params Params
	Value  float64
	State  string
	Err    error
}

// Objective scores a backtest result; higher is better.
type Objective func(*backtest.Result) float64

// SharpeObjective scores a result by its Sharpe ratio.
func SharpeObjective(res *backtest.Result) float64 {
	return metrics.Compute(res.Returns).SharpeRatio
}

// StudyResult bundles the best grid point with the full trial history.
type StudyResult struct {
	BestParams Params
	BestValue  float64
	Trials     []Trial
}

// Runner evaluates a search space against a price panel. Signals are
// recomputed per trial from the momentum factor at the trial's lookback.
type Runner struct {
	Prices    *panel.Panel
	Base      backtest.Config // per-trial fields overwritten from Params
	Space     SearchSpace
	Objective Objective // nil means SharpeObjective
	Workers   int       // <= 0 means 4
	Log       *slog.Logger
}

// Optimize evaluates the whole grid and returns the study result. It stops
// early with the context's error on cancellation. Individual trial failures
// are recorded, not fatal; Optimize fails only when no trial completes.
func (r *Runner) Optimize(ctx context.Context) (*StudyResult, error) {
	grid := r.Space.grid()
	if len(grid) == 0 {
		return nil, fmt.Errorf("tuning: empty search space")
	}
	objective := r.Objective
	if objective == nil {
		objective = SharpeObjective
	}
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	trials := make([]Trial, len(grid))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				trials[i] = r.evaluate(grid[i], i, objective)
				if r.Log != nil {
					r.Log.Debug("trial finished",
						"number", i, "state", trials[i].State, "value", trials[i].Value)
				}
			}
		}()
	}

	var cancelled error
dispatch:
	for i := range grid {
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if cancelled != nil {
		return nil, cancelled
	}

	best := -1
	for i, t := range trials {
		if t.State != StateComplete || math.IsNaN(t.Value) {
			continue
		}
		if best < 0 || t.Value > trials[best].Value {
			best = i
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("tuning: no trials completed")
	}

	return &StudyResult{
		BestParams: trials[best].Params,
		BestValue:  trials[best].Value,
		Trials:     trials,
	}, nil
}

// evaluate runs one backtest at the given grid point.
func (r *Runner) evaluate(p Params, number int, objective Objective) Trial {
	trial := Trial{Number: number, Params: p, Value: math.NaN(), State: StateFailed}

	signals, err := factors.Momentum(r.Prices, factors.Params{Lookback: p.Lookback, SkipPeriod: 1})
	if err != nil {
		trial.Err = err
		return trial
	}

	cfg := r.Base
	cfg.TransactionCost = p.TransactionCost
	cfg.RebalanceFreq = p.Frequency

	engine, err := backtest.New(r.Prices, signals, cfg)
	if err != nil {
		trial.Err = err
		return trial
	}
	res, err := engine.Run(p.Scheme)
	if err != nil {
		trial.Err = err
		return trial
	}

	trial.Value = objective(res)
	trial.State = StateComplete
	return trial
}

// SaveStudy persists every trial of a study through the given RunStore.
func SaveStudy(ctx context.Context, rs store.RunStore, study string, result *StudyResult) error {
	for _, t := range result.Trials {
		params, err := json.Marshal(t.Params)
		if err != nil {
			return fmt.Errorf("encoding trial %d params: %w", t.Number, err)
		}
		rec := store.Trial{
			Study:  study,
			Number: t.Number,
			Params: string(params),
			Value:  t.Value,
			State:  t.State,
		}
		if err := rs.SaveTrial(ctx, &rec); err != nil {
			return err
		}
	}
	return nil
}
