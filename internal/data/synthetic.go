// Package data supplies price panels to the rest of the pipeline: a seeded
// synthetic generator for demos and tests, and CSV load/save for real data.
package data

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"quantstarter/internal/panel"
)

// PriceOptions configures synthetic price generation.
type PriceOptions struct {
	Symbols      int
	Days         int
	StartDate    time.Time
	InitialPrice float64
	Volatility   float64 // daily return volatility
	Drift        float64 // daily drift
	Correlated   bool    // impose sector-block correlation structure
}

// DefaultPriceOptions returns the generator defaults: 10 symbols, 1000 days
// of correlated 2%-vol returns starting 2020-01-01 at price 100.
func DefaultPriceOptions() PriceOptions {
	return PriceOptions{
		Symbols:      10,
		Days:         1000,
		StartDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialPrice: 100.0,
		Volatility:   0.02,
		Drift:        0.0005,
		Correlated:   true,
	}
}

// SyntheticGenerator produces synthetic price panels from a seeded source,
// so identical seeds yield identical panels.
type SyntheticGenerator struct {
	rng *rand.Rand
}

// NewSyntheticGenerator creates a generator seeded with the given value.
func NewSyntheticGenerator(seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(rand.NewSource(seed))}
}

// GeneratePrices builds a price panel of geometric random walks. With
// Correlated set, returns are drawn with a base cross-correlation of 0.3 and
// tighter 0.7 blocks of three symbols, falling back to uncorrelated draws
// when the correlation matrix cannot be factored.
func (g *SyntheticGenerator) GeneratePrices(opts PriceOptions) (*panel.Panel, error) {
	if opts.Symbols <= 0 || opts.Days <= 0 {
		return nil, fmt.Errorf("data: need positive symbol and day counts, got %d/%d", opts.Symbols, opts.Days)
	}

	dates := make([]time.Time, opts.Days)
	for i := range dates {
		dates[i] = opts.StartDate.AddDate(0, 0, i)
	}
	symbols := make([]string, opts.Symbols)
	for j := range symbols {
		symbols[j] = fmt.Sprintf("SYMBOL_%02d", j)
	}

	var returns [][]float64
	if opts.Correlated {
		var err error
		returns, err = g.correlatedReturns(opts)
		if err != nil {
			returns = g.uncorrelatedReturns(opts)
		}
	} else {
		returns = g.uncorrelatedReturns(opts)
	}

	values := make([][]float64, opts.Days)
	prev := make([]float64, opts.Symbols)
	for j := range prev {
		prev[j] = opts.InitialPrice
	}
	for i := 0; i < opts.Days; i++ {
		row := make([]float64, opts.Symbols)
		for j := 0; j < opts.Symbols; j++ {
			row[j] = prev[j] * (1 + returns[i][j])
			prev[j] = row[j]
		}
		values[i] = row
	}

	return panel.New(dates, symbols, values)
}

func (g *SyntheticGenerator) uncorrelatedReturns(opts PriceOptions) [][]float64 {
	returns := make([][]float64, opts.Days)
	for i := range returns {
		row := make([]float64, opts.Symbols)
		for j := range row {
			row[j] = opts.Drift + g.rng.NormFloat64()*opts.Volatility
		}
		returns[i] = row
	}
	return returns
}

// correlatedReturns draws correlated daily returns via a Cholesky factor of
// a block correlation matrix.
func (g *SyntheticGenerator) correlatedReturns(opts PriceOptions) ([][]float64, error) {
	n := opts.Symbols

	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		for j := range corr[i] {
			corr[i][j] = 0.3
		}
	}
	// Sector-like blocks of three.
	for b := 0; b+2 < n; b += 3 {
		for i := b; i < b+3; i++ {
			for j := b; j < b+3; j++ {
				corr[i][j] = 0.7
			}
		}
	}
	// Diagonal jitter keeps the matrix positive definite.
	for i := range corr {
		corr[i][i] = 1.0 + 1e-6
	}

	chol, err := cholesky(corr)
	if err != nil {
		return nil, err
	}

	returns := make([][]float64, opts.Days)
	draw := make([]float64, n)
	for i := range returns {
		for j := range draw {
			draw[j] = opts.Drift + g.rng.NormFloat64()*opts.Volatility
		}
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			// row = draw * L^T
			s := 0.0
			for k := 0; k <= j; k++ {
				s += draw[k] * chol[j][k]
			}
			row[j] = s
		}
		returns[i] = row
	}
	return returns, nil
}

// cholesky returns the lower-triangular factor L with m = L L^T, or an
// error when the matrix is not positive definite.
func cholesky(m [][]float64) ([][]float64, error) {
	n := len(m)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return nil, fmt.Errorf("data: matrix not positive definite at row %d", i)
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, nil
}
