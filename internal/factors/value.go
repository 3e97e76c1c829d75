package factors

import (
	"math"
	"math/rand"

	"quantstarter/internal/panel"
)

// Value produces a synthetic value signal: a persistent per-asset score plus
// a slow upward drift and a little day-to-day noise, z-scored within each
// cross-section. A real implementation would use fundamental ratios; the
// synthetic signal keeps the pipeline runnable without fundamental data.
// Default seed: 42.
func Value(prices *panel.Panel, p Params) (*panel.Panel, error) {
	if err := validate(prices, 1); err != nil {
		return nil, err
	}
	seed := p.Seed
	if seed == 0 {
		seed = 42
	}
	rng := rand.New(rand.NewSource(seed))

	rows, cols := prices.Len(), prices.NumSymbols()

	base := make([]float64, cols)
	for j := range base {
		base[j] = rng.NormFloat64()
	}

	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		// Drift rises linearly from 0 to 0.5 over the sample.
		trend := 0.0
		if rows > 1 {
			trend = 0.5 * float64(i) / float64(rows-1)
		}
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = base[j] + trend + rng.NormFloat64()*0.1
		}
		values[i] = row
	}

	return panel.New(prices.Dates(), prices.Symbols(), crossSectionalZScore(values))
}

// Size computes a size signal using -log(price) as a market-cap proxy
// (small trades rich relative to large), z-scored within each cross-section.
func Size(prices *panel.Panel, p Params) (*panel.Panel, error) {
	if err := validate(prices, 1); err != nil {
		return nil, err
	}

	rows, cols := prices.Len(), prices.NumSymbols()
	values := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			v := prices.At(i, j)
			if math.IsNaN(v) || v <= 0 {
				row[j] = math.NaN()
			} else {
				row[j] = -math.Log(v)
			}
		}
		values[i] = row
	}

	return panel.New(prices.Dates(), prices.Symbols(), crossSectionalZScore(values))
}
