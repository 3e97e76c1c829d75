// Package report renders backtest results for human consumption: equity
// curve charts and JSON result files.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vicanso/go-charts/v2"

	"quantstarter/internal/backtest"
	"quantstarter/internal/metrics"
)

// EquityCurvePNG renders the portfolio value series as a line chart and
// returns the encoded PNG bytes.
func EquityCurvePNG(res *backtest.Result, summary *metrics.Summary) ([]byte, error) {
	pv := res.PortfolioValue
	if pv.Len() == 0 {
		return nil, fmt.Errorf("report: empty portfolio value series")
	}

	xLabels := make([]string, pv.Len())
	values := make([]float64, pv.Len())
	for i := 0; i < pv.Len(); i++ {
		// Denser series get coarser labels.
		if pv.Len() <= 60 {
			xLabels[i] = pv.Date(i).Format("Jan 02")
		} else {
			xLabels[i] = pv.Date(i).Format("Jan '06")
		}
		values[i] = pv.Value(i)
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	padding := (maxVal - minVal) * 0.05
	if padding == 0 {
		padding = maxVal * 0.05
	}
	yMin := minVal - padding
	yMax := maxVal + padding

	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	title := fmt.Sprintf("Backtest Performance (Total Return: %+.1f%%)", summary.TotalReturn*100)
	subtitle := fmt.Sprintf("CAGR: %.2f%% | Sharpe: %.2f | Vol: %.2f%% | MaxDD: %.2f%%",
		summary.CAGR*100, summary.SharpeRatio, summary.Volatility*100, summary.MaxDrawdown*100)

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title+"\n"+subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("rendering equity curve: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding equity curve: %w", err)
	}
	return buf, nil
}

// WriteEquityCurvePNG renders the equity curve and writes it to path,
// creating parent directories as needed.
func WriteEquityCurvePNG(path string, res *backtest.Result, summary *metrics.Summary) error {
	buf, err := EquityCurvePNG(res, summary)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
