// Package panel provides the tabular types consumed by the backtesting
// engine: a Panel of float64 values indexed by ascending trading dates and
// named asset columns, and a date-indexed Series. Missing observations are
// represented by NaN; any arithmetic touching a NaN cell yields NaN, and
// consumers implement their own skip/zero policies on top of that rule.
package panel

import (
	"fmt"
	"math"
	"time"
)

// Panel is an immutable date-by-asset table of float64 values. Dates are
// strictly ascending and unique; NaN marks a missing observation.
type Panel struct {
	dates   []time.Time
	symbols []string
	values  [][]float64 // [date][symbol]
}

// New creates a Panel from the given dates, symbols, and values. Inputs are
// copied so later mutation of the arguments does not affect the panel.
// It returns an error when the shape is inconsistent or dates are not
// strictly ascending.
func New(dates []time.Time, symbols []string, values [][]float64) (*Panel, error) {
	if len(values) != len(dates) {
		return nil, fmt.Errorf("panel: %d value rows for %d dates", len(values), len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("panel: dates not strictly ascending at index %d (%s >= %s)",
				i, dates[i-1].Format("2006-01-02"), dates[i].Format("2006-01-02"))
		}
	}
	p := &Panel{
		dates:   append([]time.Time(nil), dates...),
		symbols: append([]string(nil), symbols...),
		values:  make([][]float64, len(values)),
	}
	for i, row := range values {
		if len(row) != len(symbols) {
			return nil, fmt.Errorf("panel: row %d has %d values for %d symbols", i, len(row), len(symbols))
		}
		p.values[i] = append([]float64(nil), row...)
	}
	return p, nil
}

// Len returns the number of dates in the panel.
func (p *Panel) Len() int { return len(p.dates) }

// NumSymbols returns the number of asset columns.
func (p *Panel) NumSymbols() int { return len(p.symbols) }

// Date returns the i-th date.
func (p *Panel) Date(i int) time.Time { return p.dates[i] }

// Dates returns a copy of the date index.
func (p *Panel) Dates() []time.Time { return append([]time.Time(nil), p.dates...) }

// Symbols returns a copy of the asset column names.
func (p *Panel) Symbols() []string { return append([]string(nil), p.symbols...) }

// At returns the value at date index i, symbol index j.
func (p *Panel) At(i, j int) float64 { return p.values[i][j] }

// Row returns a copy of the cross-section at date index i.
func (p *Panel) Row(i int) []float64 { return append([]float64(nil), p.values[i]...) }

// SymbolIndex returns the column index of the given symbol, or -1.
func (p *Panel) SymbolIndex(symbol string) int {
	for j, s := range p.symbols {
		if s == symbol {
			return j
		}
	}
	return -1
}

// PctChange returns the daily simple returns of the panel. The first date has
// no defined return and is dropped, so the result is one row shorter. A
// return is NaN when either endpoint is missing.
func (p *Panel) PctChange() *Panel {
	if len(p.dates) == 0 {
		return &Panel{symbols: append([]string(nil), p.symbols...)}
	}
	out := &Panel{
		dates:   append([]time.Time(nil), p.dates[1:]...),
		symbols: append([]string(nil), p.symbols...),
		values:  make([][]float64, len(p.dates)-1),
	}
	for i := 1; i < len(p.dates); i++ {
		row := make([]float64, len(p.symbols))
		for j := range p.symbols {
			prev, cur := p.values[i-1][j], p.values[i][j]
			if math.IsNaN(prev) || math.IsNaN(cur) {
				row[j] = math.NaN()
			} else {
				row[j] = cur/prev - 1
			}
		}
		out.values[i-1] = row
	}
	return out
}

// CommonDates returns the dates present in both panels, in ascending order.
func CommonDates(a, b *Panel) []time.Time {
	var common []time.Time
	i, j := 0, 0
	for i < len(a.dates) && j < len(b.dates) {
		switch {
		case a.dates[i].Before(b.dates[j]):
			i++
		case b.dates[j].Before(a.dates[i]):
			j++
		default:
			common = append(common, a.dates[i])
			i++
			j++
		}
	}
	return common
}

// Restrict returns a panel limited to the given dates, preserving the
// original column set. Dates absent from the panel are skipped.
func (p *Panel) Restrict(dates []time.Time) *Panel {
	idx := make(map[time.Time]int, len(p.dates))
	for i, d := range p.dates {
		idx[d] = i
	}
	out := &Panel{symbols: append([]string(nil), p.symbols...)}
	for _, d := range dates {
		i, ok := idx[d]
		if !ok {
			continue
		}
		out.dates = append(out.dates, d)
		out.values = append(out.values, append([]float64(nil), p.values[i]...))
	}
	return out
}

// RowMean returns the cross-sectional mean per date, skipping NaN cells.
// A date with no valid cells yields NaN.
func (p *Panel) RowMean() *Series {
	values := make([]float64, len(p.dates))
	for i, row := range p.values {
		sum, n := 0.0, 0
		for _, v := range row {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			values[i] = math.NaN()
		} else {
			values[i] = sum / float64(n)
		}
	}
	s, _ := NewSeries(p.dates, values)
	return s
}

// Broadcast expands a series into a panel by repeating its value across all
// of the given symbols on each date.
func Broadcast(s *Series, symbols []string) *Panel {
	values := make([][]float64, s.Len())
	for i := range values {
		row := make([]float64, len(symbols))
		v := s.Value(i)
		for j := range row {
			row[j] = v
		}
		values[i] = row
	}
	p, _ := New(s.Dates(), symbols, values)
	return p
}
