package backtest

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestShouldRebalanceFirstDate(t *testing.T) {
	for _, freq := range []Frequency{FreqDaily, FreqWeekly, FreqMonthly} {
		e := &Engine{cfg: Config{RebalanceFreq: freq}}
		got, err := e.shouldRebalance(date(2024, time.January, 3), nil)
		if err != nil {
			t.Fatalf("shouldRebalance(%s): %v", freq, err)
		}
		if !got {
			t.Errorf("%s: the first simulated date must rebalance", freq)
		}
	}
}

func TestShouldRebalanceWeekly(t *testing.T) {
	e := &Engine{cfg: Config{RebalanceFreq: FreqWeekly}}

	// 2024-01-01 is a Monday; the following Monday starts ISO week 2.
	monday := date(2024, time.January, 1)
	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2024, time.January, 2), false},
		{date(2024, time.January, 7), false}, // Sunday, same ISO week
		{date(2024, time.January, 8), true},  // next Monday
	}
	for _, tt := range tests {
		got, err := e.shouldRebalance(tt.day, &monday)
		if err != nil {
			t.Fatalf("shouldRebalance: %v", err)
		}
		if got != tt.want {
			t.Errorf("weekly rebalance on %s = %v, want %v",
				tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestShouldRebalanceWeeklyAcrossYears(t *testing.T) {
	e := &Engine{cfg: Config{RebalanceFreq: FreqWeekly}}

	// Same ISO week number one year apart must still rebalance.
	last := date(2023, time.January, 9) // ISO week 2 of 2023
	got, err := e.shouldRebalance(date(2024, time.January, 8), &last)
	if err != nil {
		t.Fatalf("shouldRebalance: %v", err)
	}
	if !got {
		t.Error("same ISO week in a different year should rebalance")
	}
}

func TestShouldRebalanceMonthly(t *testing.T) {
	e := &Engine{cfg: Config{RebalanceFreq: FreqMonthly}}

	jan := date(2024, time.January, 15)
	tests := []struct {
		day  time.Time
		want bool
	}{
		{date(2024, time.January, 31), false},
		{date(2024, time.February, 1), true},
		{date(2025, time.January, 15), true}, // same month, next year
	}
	for _, tt := range tests {
		got, err := e.shouldRebalance(tt.day, &jan)
		if err != nil {
			t.Fatalf("shouldRebalance: %v", err)
		}
		if got != tt.want {
			t.Errorf("monthly rebalance on %s = %v, want %v",
				tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestShouldRebalanceUnsupportedFrequency(t *testing.T) {
	e := &Engine{cfg: Config{RebalanceFreq: Frequency("hourly")}}

	_, err := e.shouldRebalance(date(2024, time.January, 1), nil)
	if err == nil {
		t.Fatal("shouldRebalance should reject an unsupported frequency")
	}
	var freqErr *UnsupportedFrequencyError
	if !errors.As(err, &freqErr) {
		t.Fatalf("error type = %T, want *UnsupportedFrequencyError", err)
	}
	if freqErr.Frequency != "hourly" {
		t.Errorf("error frequency = %q, want %q", freqErr.Frequency, "hourly")
	}
}
