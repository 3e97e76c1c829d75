package factors

import (
	"math"
	"testing"
	"time"

	"quantstarter/internal/panel"
)

var t0 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func mkPrices(t *testing.T, days int, syms []string, f func(i, j int) float64) *panel.Panel {
	t.Helper()
	dates := make([]time.Time, days)
	values := make([][]float64, days)
	for i := 0; i < days; i++ {
		dates[i] = t0.AddDate(0, 0, i)
		row := make([]float64, len(syms))
		for j := range syms {
			row[j] = f(i, j)
		}
		values[i] = row
	}
	p, err := panel.New(dates, syms, values)
	if err != nil {
		t.Fatalf("building prices: %v", err)
	}
	return p
}

func TestLookupAndNames(t *testing.T) {
	want := []string{"bollinger", "momentum", "size", "value", "volatility"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, ok := Lookup("momentum"); !ok {
		t.Error("Lookup(momentum) not found")
	}
	if _, ok := Lookup("alpha101"); ok {
		t.Error("Lookup(alpha101) should not be found")
	}
}

func TestMomentumValues(t *testing.T) {
	// Prices double every 10 days for symbol 0, flat for symbol 1.
	prices := mkPrices(t, 30, []string{"UP", "FLAT"}, func(i, j int) float64 {
		if j == 0 {
			return 100 * math.Pow(2, float64(i)/10)
		}
		return 100
	})

	signal, err := Momentum(prices, Params{Lookback: 10, SkipPeriod: 1})
	if err != nil {
		t.Fatalf("Momentum: %v", err)
	}
	if signal.Len() != prices.Len() {
		t.Fatalf("momentum length = %d, want %d (backfilled index)", signal.Len(), prices.Len())
	}

	// At row 20: price[19]/price[9] - 1 = 2 - 1 = 1 for the doubling asset.
	if got := signal.At(20, 0); math.Abs(got-1) > 1e-9 {
		t.Errorf("momentum[20][UP] = %v, want 1", got)
	}
	if got := signal.At(20, 1); math.Abs(got) > 1e-12 {
		t.Errorf("momentum[20][FLAT] = %v, want 0", got)
	}

	// Leading rows are backfilled with the first valid window, not NaN.
	if got := signal.At(0, 0); math.IsNaN(got) {
		t.Error("momentum[0] should be backfilled, got NaN")
	}
	if got, want := signal.At(0, 0), signal.At(11, 0); got != want {
		t.Errorf("backfilled momentum[0] = %v, want first valid value %v", got, want)
	}
}

func TestMomentumTooShort(t *testing.T) {
	prices := mkPrices(t, 10, []string{"A"}, func(i, j int) float64 { return 100 })
	if _, err := Momentum(prices, Params{Lookback: 21, SkipPeriod: 1}); err == nil {
		t.Error("Momentum should fail when the sample is shorter than the window")
	}
}

func TestCrossSectionalMomentumIsZScored(t *testing.T) {
	prices := mkPrices(t, 40, []string{"A", "B", "C", "D"}, func(i, j int) float64 {
		return 100 * math.Pow(1+0.001*float64(j), float64(i))
	})

	signal, err := CrossSectionalMomentum(prices, Params{Lookback: 10, SkipPeriod: 1})
	if err != nil {
		t.Fatalf("CrossSectionalMomentum: %v", err)
	}

	// Each cross-section has mean 0 and unit sample std.
	row := signal.Row(30)
	mean, std := rowMeanStd(row)
	if math.Abs(mean) > 1e-9 {
		t.Errorf("cross-section mean = %v, want 0", mean)
	}
	if math.Abs(std-1) > 1e-9 {
		t.Errorf("cross-section std = %v, want 1", std)
	}
}

func TestValueDeterministicPerSeed(t *testing.T) {
	prices := mkPrices(t, 50, []string{"A", "B", "C"}, func(i, j int) float64 { return 100 })

	a, err := Value(prices, Params{Seed: 7})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	b, err := Value(prices, Params{Seed: 7})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	c, err := Value(prices, Params{Seed: 8})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	same, diff := true, false
	for i := 0; i < a.Len(); i++ {
		for j := 0; j < a.NumSymbols(); j++ {
			if a.At(i, j) != b.At(i, j) {
				same = false
			}
			if a.At(i, j) != c.At(i, j) {
				diff = true
			}
		}
	}
	if !same {
		t.Error("Value with the same seed should be reproducible")
	}
	if !diff {
		t.Error("Value with different seeds should differ")
	}
}

func TestSizeRanksSmallAboveLarge(t *testing.T) {
	prices := mkPrices(t, 5, []string{"SMALL", "MID", "BIG"}, func(i, j int) float64 {
		return []float64{10, 100, 1000}[j]
	})

	signal, err := Size(prices, Params{})
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	for i := 0; i < signal.Len(); i++ {
		if !(signal.At(i, 0) > signal.At(i, 1) && signal.At(i, 1) > signal.At(i, 2)) {
			t.Fatalf("size ordering at row %d = %v, %v, %v, want descending by -log(price)",
				i, signal.At(i, 0), signal.At(i, 1), signal.At(i, 2))
		}
	}
}

func TestVolatilityPrefersCalmAssets(t *testing.T) {
	// CALM oscillates 0.1%, WILD oscillates 5%.
	prices := mkPrices(t, 60, []string{"CALM", "WILD"}, func(i, j int) float64 {
		amp := 0.001
		if j == 1 {
			amp = 0.05
		}
		if i%2 == 1 {
			return 100 * (1 + amp)
		}
		return 100
	})

	signal, err := Volatility(prices, Params{Lookback: 21})
	if err != nil {
		t.Fatalf("Volatility: %v", err)
	}
	if want := 60 - 21 + 1; signal.Len() != want {
		t.Fatalf("volatility length = %d, want %d", signal.Len(), want)
	}
	last := signal.Len() - 1
	if !(signal.At(last, 0) > signal.At(last, 1)) {
		t.Errorf("volatility scores = %v (CALM), %v (WILD), want CALM above WILD",
			signal.At(last, 0), signal.At(last, 1))
	}
}

func TestBollingerZScore(t *testing.T) {
	// A flat series with one spike at the end: the spike sits far above its
	// rolling mean.
	prices := mkPrices(t, 30, []string{"A", "B"}, func(i, j int) float64 {
		if j == 0 && i == 29 {
			return 120
		}
		if j == 1 {
			return 100 + float64(i%3) // mild wiggle so std > 0
		}
		return 100
	})

	signal, err := Bollinger(prices, Params{Lookback: 20})
	if err != nil {
		t.Fatalf("Bollinger: %v", err)
	}
	if signal.Len() != prices.Len() {
		t.Fatalf("bollinger length = %d, want %d", signal.Len(), prices.Len())
	}

	// First lookback-1 rows are NaN.
	if got := signal.At(10, 1); !math.IsNaN(got) {
		t.Errorf("bollinger[10] = %v, want NaN before a full window", got)
	}
	if got := signal.At(29, 0); !(got > 2) {
		t.Errorf("bollinger spike score = %v, want well above 2", got)
	}
}

func TestAverageRankHelpersNaNAware(t *testing.T) {
	mean, std := rowMeanStd([]float64{1, math.NaN(), 3})
	if mean != 2 {
		t.Errorf("rowMeanStd mean = %v, want 2 (NaN skipped)", mean)
	}
	if math.Abs(std-math.Sqrt2) > 1e-12 {
		t.Errorf("rowMeanStd std = %v, want sqrt(2)", std)
	}

	mean, std = rowMeanStd([]float64{math.NaN(), math.NaN()})
	if !math.IsNaN(mean) || std != 0 {
		t.Errorf("all-NaN rowMeanStd = %v, %v, want NaN, 0", mean, std)
	}
}
