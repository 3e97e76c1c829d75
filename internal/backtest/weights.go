package backtest

import (
	"math"
	"sort"
)

// computeWeights converts one cross-section of signals into a same-width
// weight vector. Signals are computed only over non-NaN entries and
// reinserted into a full-width zero vector, so NaN-signal assets always
// receive weight zero. An all-NaN cross-section yields all zeros.
func computeWeights(signals []float64, scheme Scheme, maxLeverage float64) ([]float64, error) {
	full := make([]float64, len(signals))

	var validIdx []int
	var valid []float64
	for j, v := range signals {
		if !math.IsNaN(v) {
			validIdx = append(validIdx, j)
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return full, nil
	}

	var weights []float64
	switch scheme {
	case SchemeRank:
		weights = rankWeights(valid, maxLeverage)
	case SchemeZScore:
		weights = zscoreWeights(valid, maxLeverage)
	case SchemeLongShort:
		weights = longShortWeights(valid)
	default:
		return nil, &UnknownSchemeError{Scheme: scheme}
	}

	for k, j := range validIdx {
		full[j] = weights[k]
	}
	return full, nil
}

// rankWeights goes long the top signal decile with equal weight and short
// the bottom decile, then uniformly scales down when gross exposure exceeds
// the leverage cap. With very few assets the two deciles can overlap; an
// asset qualifying for both sides is degenerate and stays at zero, so a
// single-asset cross-section takes no position.
func rankWeights(signals []float64, maxLeverage float64) []float64 {
	ranks := averageRanks(signals)
	longThreshold := quantile(ranks, 0.9)
	shortThreshold := quantile(ranks, 0.1)

	weights := make([]float64, len(signals))
	longCount, shortCount := 0, 0
	for i, r := range ranks {
		isLong := r >= longThreshold
		isShort := r <= shortThreshold
		switch {
		case isLong && isShort:
			// Degenerate overlap: no position.
		case isLong:
			weights[i] = 1
			longCount++
		case isShort:
			weights[i] = -1
			shortCount++
		}
	}

	for i := range weights {
		if weights[i] > 0 {
			weights[i] = 1.0 / float64(longCount)
		} else if weights[i] < 0 {
			weights[i] = -1.0 / float64(shortCount)
		}
	}

	gross := 0.0
	for _, w := range weights {
		gross += math.Abs(w)
	}
	if gross > maxLeverage {
		scale := maxLeverage / gross
		for i := range weights {
			weights[i] *= scale
		}
	}
	return weights
}

// zscoreWeights uses the raw signal values as weights, clipped to +/-3 to
// bound tail influence, scaled so gross exposure equals the leverage cap
// exactly.
func zscoreWeights(signals []float64, maxLeverage float64) []float64 {
	const capLevel = 3.0

	weights := make([]float64, len(signals))
	gross := 0.0
	for i, v := range signals {
		w := math.Max(-capLevel, math.Min(capLevel, v))
		weights[i] = w
		gross += math.Abs(w)
	}
	if gross > 0 {
		scale := maxLeverage / gross
		for i := range weights {
			weights[i] *= scale
		}
	}
	return weights
}

// longShortWeights assigns equal weight to every strictly positive signal
// and equal negative weight to every strictly negative one. No leverage
// scaling is applied; when long and short counts differ the gross exposure
// can exceed the cap. That asymmetry is preserved from the reference
// behavior on purpose.
func longShortWeights(signals []float64) []float64 {
	longCount, shortCount := 0, 0
	for _, v := range signals {
		if v > 0 {
			longCount++
		} else if v < 0 {
			shortCount++
		}
	}

	weights := make([]float64, len(signals))
	for i, v := range signals {
		if v > 0 && longCount > 0 {
			weights[i] = 1.0 / float64(longCount)
		} else if v < 0 && shortCount > 0 {
			weights[i] = -1.0 / float64(shortCount)
		}
	}
	return weights
}

// averageRanks returns 1-based ascending ranks with ties assigned the
// average of the positions they span.
func averageRanks(values []float64) []float64 {
	n := len(values)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[order[j+1]] == values[order[i]] {
			j++
		}
		// Positions i..j hold tied values; average their 1-based ranks.
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// quantile computes the q-th empirical quantile with linear interpolation
// between order statistics.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
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
