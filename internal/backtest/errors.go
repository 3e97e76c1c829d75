package backtest

import "fmt"

// AlignmentError reports that the price and signal panels share no dates.
// It is returned by New and is fatal: no Engine is constructed.
type AlignmentError struct {
	PriceDates  int
	SignalDates int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("no common dates between price panel (%d dates) and signal panel (%d dates)",
		e.PriceDates, e.SignalDates)
}

// UnsupportedFrequencyError reports a rebalance frequency outside the
// supported set. It surfaces from Run on the first simulated date, never
// from New.
type UnsupportedFrequencyError struct {
	Frequency Frequency
}

func (e *UnsupportedFrequencyError) Error() string {
	return fmt.Sprintf("unsupported rebalance frequency %q: supported frequencies are %q, %q, %q",
		e.Frequency, FreqDaily, FreqWeekly, FreqMonthly)
}

// UnknownSchemeError reports a weight scheme outside the supported set.
type UnknownSchemeError struct {
	Scheme Scheme
}

func (e *UnknownSchemeError) Error() string {
	return fmt.Sprintf("unknown weight scheme %q: supported schemes are %q, %q, %q",
		e.Scheme, SchemeRank, SchemeZScore, SchemeLongShort)
}
