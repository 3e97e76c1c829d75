package factors

import (
	"fmt"
	"math"

	"quantstarter/internal/panel"
)

// Momentum computes trailing price momentum: price_t / price_{t-lookback} - 1,
// with the most recent SkipPeriod days excluded to sidestep short-term
// reversal. Leading NaN rows are backfilled with the first valid window so
// the output keeps the input's date index. Defaults: lookback 21, skip 1.
func Momentum(prices *panel.Panel, p Params) (*panel.Panel, error) {
	lookback := p.Lookback
	if lookback == 0 {
		lookback = 21
	}
	skip := p.SkipPeriod
	if skip == 0 {
		skip = 1
	}
	total := lookback + skip
	if err := validate(prices, total); err != nil {
		return nil, err
	}

	rows, cols := prices.Len(), prices.NumSymbols()
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = math.NaN()
			if i-total < 0 {
				continue
			}
			// Both endpoints shifted by the skip period.
			recent := prices.At(i-skip, j)
			past := prices.At(i-total, j)
			if math.IsNaN(recent) || math.IsNaN(past) || past == 0 {
				continue
			}
			row[j] = recent/past - 1
		}
		values[i] = row
	}
	backfill(values)

	return panel.New(prices.Dates(), prices.Symbols(), values)
}

// CrossSectionalMomentum is momentum normalized to z-scores within each
// date's cross-section (relative strength).
func CrossSectionalMomentum(prices *panel.Panel, p Params) (*panel.Panel, error) {
	raw, err := Momentum(prices, p)
	if err != nil {
		return nil, err
	}
	rows := raw.Len()
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		values[i] = raw.Row(i)
	}
	z := crossSectionalZScore(values)
	out, err := panel.New(raw.Dates(), raw.Symbols(), z)
	if err != nil {
		return nil, fmt.Errorf("cross-sectional momentum: %w", err)
	}
	return out, nil
}

// backfill replaces leading NaN runs in each column with the first valid
// value below them.
func backfill(values [][]float64) {
	if len(values) == 0 {
		return
	}
	cols := len(values[0])
	for j := 0; j < cols; j++ {
		next := math.NaN()
		for i := len(values) - 1; i >= 0; i-- {
			if math.IsNaN(values[i][j]) {
				values[i][j] = next
			} else {
				next = values[i][j]
			}
		}
	}
}
