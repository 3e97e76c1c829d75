package backtest

import "time"

// shouldRebalance decides whether new target weights are computed on the
// given date. The frequency is validated here rather than in New, so a bad
// value surfaces as *UnsupportedFrequencyError on the first simulated date.
func (e *Engine) shouldRebalance(date time.Time, last *time.Time) (bool, error) {
	switch e.cfg.RebalanceFreq {
	case FreqDaily, FreqWeekly, FreqMonthly:
	default:
		return false, &UnsupportedFrequencyError{Frequency: e.cfg.RebalanceFreq}
	}

	// The first date of a backtest always rebalances.
	if last == nil {
		return true, nil
	}

	switch e.cfg.RebalanceFreq {
	case FreqWeekly:
		_, week := date.ISOWeek()
		_, lastWeek := last.ISOWeek()
		return week != lastWeek || date.Year() != last.Year(), nil
	case FreqMonthly:
		return date.Month() != last.Month() || date.Year() != last.Year(), nil
	default: // FreqDaily
		return true, nil
	}
}
