package panel

import (
	"fmt"
	"math"
	"time"
)

// Series is an immutable date-indexed float64 vector with the same date and
// NaN conventions as Panel.
type Series struct {
	dates  []time.Time
	values []float64
}

// NewSeries creates a Series from dates and values of equal length. Inputs
// are copied. Dates must be strictly ascending.
func NewSeries(dates []time.Time, values []float64) (*Series, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("series: %d values for %d dates", len(values), len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("series: dates not strictly ascending at index %d", i)
		}
	}
	return &Series{
		dates:  append([]time.Time(nil), dates...),
		values: append([]float64(nil), values...),
	}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.dates) }

// Date returns the i-th date.
func (s *Series) Date(i int) time.Time { return s.dates[i] }

// Value returns the i-th value.
func (s *Series) Value(i int) float64 { return s.values[i] }

// Dates returns a copy of the date index.
func (s *Series) Dates() []time.Time { return append([]time.Time(nil), s.dates...) }

// Values returns a copy of the values.
func (s *Series) Values() []float64 { return append([]float64(nil), s.values...) }

// Last returns the final value of the series, or NaN when empty.
func (s *Series) Last() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	return s.values[len(s.values)-1]
}

// PctChange returns the daily simple changes of the series, one observation
// shorter than the input.
func (s *Series) PctChange() *Series {
	if len(s.dates) == 0 {
		return &Series{}
	}
	out := &Series{
		dates:  append([]time.Time(nil), s.dates[1:]...),
		values: make([]float64, len(s.dates)-1),
	}
	for i := 1; i < len(s.dates); i++ {
		prev, cur := s.values[i-1], s.values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) {
			out.values[i-1] = math.NaN()
		} else {
			out.values[i-1] = cur/prev - 1
		}
	}
	return out
}

// Column extracts one symbol column of a panel as a Series.
func Column(p *Panel, symbol string) (*Series, error) {
	j := p.SymbolIndex(symbol)
	if j < 0 {
		return nil, fmt.Errorf("series: symbol %q not in panel", symbol)
	}
	values := make([]float64, p.Len())
	for i := range values {
		values[i] = p.At(i, j)
	}
	return NewSeries(p.Dates(), values)
}

// AlignSeries restricts both series to their common dates, in ascending
// order. The returned series have equal length, possibly zero.
func AlignSeries(a, b *Series) (*Series, *Series) {
	var dates []time.Time
	var av, bv []float64
	i, j := 0, 0
	for i < len(a.dates) && j < len(b.dates) {
		switch {
		case a.dates[i].Before(b.dates[j]):
			i++
		case b.dates[j].Before(a.dates[i]):
			j++
		default:
			dates = append(dates, a.dates[i])
			av = append(av, a.values[i])
			bv = append(bv, b.values[j])
			i++
			j++
		}
	}
	return &Series{dates: dates, values: av}, &Series{dates: dates, values: bv}
}
