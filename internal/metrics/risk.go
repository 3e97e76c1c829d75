// Package metrics computes risk and performance statistics from a daily
// return series, optionally relative to a benchmark return series.
package metrics

import (
	"math"
	"sort"

	"quantstarter/internal/panel"
)

// tradingDaysPerYear annualizes daily volatility figures.
const tradingDaysPerYear = 252

// Summary holds every computed metric. Benchmark-relative fields are zero
// and HasBenchmark false unless ComputeWithBenchmark was used.
type Summary struct {
	TotalReturn      float64 `json:"total_return"`
	CAGR             float64 `json:"cagr"`
	AnnualizedReturn float64 `json:"annualized_return"`

	Volatility         float64 `json:"volatility"`
	DownsideVolatility float64 `json:"downside_volatility"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	DrawdownDuration   int     `json:"drawdown_duration"`
	VaR95              float64 `json:"var_95"`
	CVaR95             float64 `json:"cvar_95"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	HasBenchmark     bool    `json:"has_benchmark,omitempty"`
	Alpha            float64 `json:"alpha,omitempty"`
	Beta             float64 `json:"beta,omitempty"`
	TrackingError    float64 `json:"tracking_error,omitempty"`
	InformationRatio float64 `json:"information_ratio,omitempty"`
	ActiveReturn     float64 `json:"active_return,omitempty"`
}

// Compute calculates all return-based metrics for the given daily returns.
func Compute(returns *panel.Series) Summary {
	values := returns.Values()

	cagr := cagrOf(returns)
	vol := sampleStd(values) * math.Sqrt(tradingDaysPerYear)
	downVol := downsideVol(values)
	maxDD, ddDuration := drawdown(returns)

	s := Summary{
		TotalReturn:        totalReturn(values),
		CAGR:               cagr,
		AnnualizedReturn:   cagr,
		Volatility:         vol,
		DownsideVolatility: downVol,
		MaxDrawdown:        maxDD,
		DrawdownDuration:   ddDuration,
		VaR95:              quantile(values, 0.05),
		CVaR95:             cvar(values),
	}
	if vol > 0 {
		s.SharpeRatio = cagr / vol
	}
	if downVol > 0 {
		s.SortinoRatio = cagr / downVol
	}
	if maxDD < 0 {
		s.CalmarRatio = cagr / math.Abs(maxDD)
	}
	return s
}

// ComputeWithBenchmark calculates all metrics plus benchmark-relative ones.
// The two series are aligned by date intersection first.
func ComputeWithBenchmark(returns, benchmark *panel.Series) Summary {
	s := Compute(returns)

	strat, bench := panel.AlignSeries(returns, benchmark)
	if strat.Len() == 0 {
		return s
	}
	x := bench.Values()
	y := strat.Values()

	// Beta via OLS slope; zero when the benchmark barely moves.
	xMean := mean(x)
	yMean := mean(y)
	xVar, cov := 0.0, 0.0
	for i := range x {
		dx := x[i] - xMean
		cov += dx * (y[i] - yMean)
		xVar += dx * dx
	}
	xVar /= float64(len(x))
	cov /= float64(len(x))

	beta := 0.0
	if xVar > 0 {
		beta = cov / xVar
	}

	stratCAGR := cagrOf(strat)
	benchCAGR := cagrOf(bench)

	active := make([]float64, len(x))
	for i := range active {
		active[i] = y[i] - x[i]
	}
	trackingError := sampleStd(active) * math.Sqrt(tradingDaysPerYear)

	s.HasBenchmark = true
	s.Beta = beta
	s.Alpha = stratCAGR - beta*benchCAGR
	s.TrackingError = trackingError
	s.ActiveReturn = stratCAGR - benchCAGR
	if trackingError > 0 {
		s.InformationRatio = (stratCAGR - benchCAGR) / trackingError
	}
	return s
}

// totalReturn compounds the returns: prod(1+r) - 1.
func totalReturn(returns []float64) float64 {
	prod := 1.0
	for _, r := range returns {
		prod *= 1 + r
	}
	return prod - 1
}

// cagrOf annualizes the total return over the elapsed calendar period.
// Zero or negative elapsed time yields 0.
func cagrOf(returns *panel.Series) float64 {
	if returns.Len() == 0 {
		return 0
	}
	total := totalReturn(returns.Values())
	years := returns.Date(returns.Len()-1).Sub(returns.Date(0)).Hours() / 24 / 365.25
	if years <= 0 {
		return 0
	}
	return math.Pow(1+total, 1/years) - 1
}

// downsideVol is the annualized standard deviation of the negative returns,
// or 0 when there are none.
func downsideVol(returns []float64) float64 {
	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}
	if len(negative) == 0 {
		return 0
	}
	return sampleStd(negative) * math.Sqrt(tradingDaysPerYear)
}

// drawdown finds the maximum peak-to-trough decline of the cumulative value
// curve and its duration in days, measured from the last peak before the
// trough to the trough date.
func drawdown(returns *panel.Series) (float64, int) {
	n := returns.Len()
	if n == 0 {
		return 0, 0
	}

	cumulative := make([]float64, n)
	runningMax := make([]float64, n)
	prod := 1.0
	peak := math.Inf(-1)
	for i := 0; i < n; i++ {
		prod *= 1 + returns.Value(i)
		cumulative[i] = prod
		if prod > peak {
			peak = prod
		}
		runningMax[i] = peak
	}

	maxDD := 0.0
	trough := 0
	for i := 0; i < n; i++ {
		dd := cumulative[i]/runningMax[i] - 1
		if dd < maxDD {
			maxDD = dd
			trough = i
		}
	}

	// The last date at or before the trough on which the curve touched the
	// prevailing peak.
	start := 0
	for i := 0; i <= trough; i++ {
		if cumulative[i] == runningMax[trough] {
			start = i
		}
	}

	duration := int(returns.Date(trough).Sub(returns.Date(start)).Hours() / 24)
	return maxDD, duration
}

// cvar is the conditional mean of returns at or below the 5% quantile.
func cvar(returns []float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	cutoff := quantile(returns, 0.05)
	sum, n := 0.0, 0
	for _, r := range returns {
		if r <= cutoff {
			sum += r
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 denominator standard deviation; 0 for fewer than two
// observations.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// quantile computes the q-th empirical quantile with linear interpolation.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
