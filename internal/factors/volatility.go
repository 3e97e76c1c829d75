package factors

import (
	"math"

	"quantstarter/internal/panel"
)

// Volatility scores assets by inverted annualized historical volatility (the
// low-volatility anomaly: calm assets score high). Returns are computed over
// the lookback window; the first lookback-1 dates are dropped from the
// output. Scores are z-scored cross-sectionally when there is more than one
// column. Default lookback: 21.
func Volatility(prices *panel.Panel, p Params) (*panel.Panel, error) {
	lookback := p.Lookback
	if lookback == 0 {
		lookback = 21
	}
	if err := validate(prices, lookback); err != nil {
		return nil, err
	}

	rows, cols := prices.Len(), prices.NumSymbols()

	// Daily returns with a NaN first row, keeping the price date index.
	returns := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = math.NaN()
			if i == 0 {
				continue
			}
			prev, cur := prices.At(i-1, j), prices.At(i, j)
			if !math.IsNaN(prev) && !math.IsNaN(cur) && prev != 0 {
				row[j] = cur/prev - 1
			}
		}
		returns[i] = row
	}

	vol := rollingStd(returns, lookback)
	scores := make([][]float64, 0, rows-lookback+1)
	for i := lookback - 1; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := vol[i][j]
			if math.IsNaN(v) {
				row[j] = math.NaN()
			} else {
				row[j] = -v * math.Sqrt(252) * 10.0
			}
		}
		scores = append(scores, row)
	}
	if cols > 1 {
		scores = crossSectionalZScore(scores)
	}

	return panel.New(prices.Dates()[lookback-1:], prices.Symbols(), scores)
}

// Bollinger computes the Bollinger band z-score: (price - rolling mean) /
// rolling std over the lookback window. The first lookback-1 entries per
// column are NaN. Default lookback: 20.
func Bollinger(prices *panel.Panel, p Params) (*panel.Panel, error) {
	lookback := p.Lookback
	if lookback == 0 {
		lookback = 20
	}
	if err := validate(prices, lookback); err != nil {
		return nil, err
	}

	rows, cols := prices.Len(), prices.NumSymbols()
	raw := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		raw[i] = prices.Row(i)
	}

	m := rollingMean(raw, lookback)
	s := rollingStd(raw, lookback)

	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			if math.IsNaN(m[i][j]) || math.IsNaN(s[i][j]) || s[i][j] == 0 {
				row[j] = math.NaN()
			} else {
				row[j] = (raw[i][j] - m[i][j]) / s[i][j]
			}
		}
		values[i] = row
	}

	return panel.New(prices.Dates(), prices.Symbols(), values)
}
