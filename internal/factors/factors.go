// Package factors computes signal panels from price panels. Each factor is a
// pure function selected by name; there is no shared factor state beyond the
// parameters passed per call.
package factors

import (
	"fmt"
	"math"
	"sort"

	"quantstarter/internal/panel"
)

// Params carries per-call factor parameters. Zero fields fall back to each
// factor's own default.
type Params struct {
	Lookback   int     // window length in trading days
	SkipPeriod int     // most-recent days skipped by momentum
	NumStd     float64 // band width for bollinger
	Seed       int64   // rng seed for the synthetic value factor
}

// Func computes a signal panel from a price panel.
type Func func(prices *panel.Panel, p Params) (*panel.Panel, error)

var registry = map[string]Func{
	"momentum":   Momentum,
	"value":      Value,
	"size":       Size,
	"volatility": Volatility,
	"bollinger":  Bollinger,
}

// Lookup returns the named factor function. The second return value reports
// whether the name is known.
func Lookup(name string) (Func, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names returns the sorted list of registered factor names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validate rejects empty panels and panels shorter than the lookback.
func validate(prices *panel.Panel, lookback int) error {
	if prices.Len() == 0 || prices.NumSymbols() == 0 {
		return fmt.Errorf("factors: price panel is empty")
	}
	if prices.Len() < lookback {
		return fmt.Errorf("factors: need at least %d periods of data, have %d", lookback, prices.Len())
	}
	return nil
}

// crossSectionalZScore normalizes each row to zero mean and unit standard
// deviation over its non-NaN entries. Rows with near-zero dispersion come
// out as NaN, which downstream weight policies treat as no signal.
func crossSectionalZScore(values [][]float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, row := range values {
		m, s := rowMeanStd(row)
		zrow := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || s == 0 {
				zrow[j] = math.NaN()
			} else {
				zrow[j] = (v - m) / s
			}
		}
		out[i] = zrow
	}
	return out
}

// rowMeanStd returns the mean and sample standard deviation over the
// non-NaN entries of a row.
func rowMeanStd(row []float64) (float64, float64) {
	sum, n := 0.0, 0
	for _, v := range row {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN(), 0
	}
	m := sum / float64(n)
	if n < 2 {
		return m, 0
	}
	ss := 0.0
	for _, v := range row {
		if !math.IsNaN(v) {
			d := v - m
			ss += d * d
		}
	}
	return m, math.Sqrt(ss / float64(n-1))
}

// rollingStd computes the sample standard deviation over a trailing window
// per column. Entries are NaN until a full window of non-NaN values is
// available.
func rollingStd(values [][]float64, window int) [][]float64 {
	rows := len(values)
	if rows == 0 {
		return nil
	}
	cols := len(values[0])
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = math.NaN()
		}
	}
	buf := make([]float64, 0, window)
	for j := 0; j < cols; j++ {
		for i := window - 1; i < rows; i++ {
			buf = buf[:0]
			ok := true
			for k := i - window + 1; k <= i; k++ {
				v := values[k][j]
				if math.IsNaN(v) {
					ok = false
					break
				}
				buf = append(buf, v)
			}
			if !ok {
				continue
			}
			_, s := rowMeanStd(buf)
			out[i][j] = s
		}
	}
	return out
}

// rollingMean computes the mean over a trailing window per column, NaN until
// a full window of non-NaN values is available.
func rollingMean(values [][]float64, window int) [][]float64 {
	rows := len(values)
	if rows == 0 {
		return nil
	}
	cols := len(values[0])
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = math.NaN()
		}
	}
	for j := 0; j < cols; j++ {
		for i := window - 1; i < rows; i++ {
			sum := 0.0
			ok := true
			for k := i - window + 1; k <= i; k++ {
				v := values[k][j]
				if math.IsNaN(v) {
					ok = false
					break
				}
				sum += v
			}
			if ok {
				out[i][j] = sum / float64(window)
			}
		}
	}
	return out
}
