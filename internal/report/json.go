package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"quantstarter/internal/backtest"
	"quantstarter/internal/metrics"
)

// Report is the JSON export of one backtest run: the risk summary plus the
// full equity curve.
type Report struct {
	Metrics        *metrics.Summary `json:"metrics"`
	Dates          []string         `json:"dates"`
	PortfolioValue []float64        `json:"portfolio_value"`
}

// Build assembles a Report from a backtest result and its risk summary.
func Build(res *backtest.Result, summary *metrics.Summary) *Report {
	pv := res.PortfolioValue
	dates := make([]string, pv.Len())
	values := make([]float64, pv.Len())
	for i := 0; i < pv.Len(); i++ {
		dates[i] = pv.Date(i).Format("2006-01-02")
		values[i] = pv.Value(i)
	}
	return &Report{Metrics: summary, Dates: dates, PortfolioValue: values}
}

// WriteJSON writes the report to path as indented JSON, creating parent
// directories as needed.
func (r *Report) WriteJSON(path string) error {
	buf, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0o644)
}
