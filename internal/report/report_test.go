package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quantstarter/internal/backtest"
	"quantstarter/internal/metrics"
	"quantstarter/internal/panel"
)

func testResult(t *testing.T) (*backtest.Result, *metrics.Summary) {
	t.Helper()
	syms := []string{"A", "B", "C", "D"}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := 50

	dates := make([]time.Time, days)
	prices := make([][]float64, days)
	signals := make([][]float64, days)
	for i := 0; i < days; i++ {
		dates[i] = start.AddDate(0, 0, i)
		prow := make([]float64, len(syms))
		srow := make([]float64, len(syms))
		for j := range syms {
			prow[j] = 100 * math.Pow(1+0.0003*float64(j), float64(i))
			srow[j] = float64(j) - 1.5
		}
		prices[i] = prow
		signals[i] = srow
	}
	pp, err := panel.New(dates, syms, prices)
	if err != nil {
		t.Fatalf("price panel: %v", err)
	}
	sp, err := panel.New(dates, syms, signals)
	if err != nil {
		t.Fatalf("signal panel: %v", err)
	}

	engine, err := backtest.New(pp, sp, backtest.DefaultConfig())
	if err != nil {
		t.Fatalf("backtest.New: %v", err)
	}
	res, err := engine.Run(backtest.SchemeZScore)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	summary := metrics.Compute(res.Returns)
	return res, &summary
}

func TestBuildReport(t *testing.T) {
	res, summary := testResult(t)
	rep := Build(res, summary)

	if len(rep.Dates) != res.PortfolioValue.Len() {
		t.Fatalf("dates = %d, want %d", len(rep.Dates), res.PortfolioValue.Len())
	}
	if len(rep.PortfolioValue) != res.PortfolioValue.Len() {
		t.Fatalf("values = %d, want %d", len(rep.PortfolioValue), res.PortfolioValue.Len())
	}
	if rep.Dates[0] != "2024-01-01" {
		t.Errorf("dates[0] = %q, want 2024-01-01", rep.Dates[0])
	}
	if rep.PortfolioValue[0] != res.InitialCapital {
		t.Errorf("values[0] = %v, want the initial capital", rep.PortfolioValue[0])
	}
	if rep.Metrics != summary {
		t.Error("report should reference the provided summary")
	}
}

func TestWriteJSON(t *testing.T) {
	res, summary := testResult(t)
	path := filepath.Join(t.TempDir(), "out", "results.json")

	if err := Build(res, summary).WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var decoded struct {
		Metrics struct {
			TotalReturn float64 `json:"total_return"`
			SharpeRatio float64 `json:"sharpe_ratio"`
		} `json:"metrics"`
		Dates          []string  `json:"dates"`
		PortfolioValue []float64 `json:"portfolio_value"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if len(decoded.Dates) != res.PortfolioValue.Len() {
		t.Errorf("decoded dates = %d, want %d", len(decoded.Dates), res.PortfolioValue.Len())
	}
	if decoded.Metrics.TotalReturn != summary.TotalReturn {
		t.Errorf("decoded total_return = %v, want %v", decoded.Metrics.TotalReturn, summary.TotalReturn)
	}
}

func TestEquityCurvePNG(t *testing.T) {
	res, summary := testResult(t)

	buf, err := EquityCurvePNG(res, summary)
	if err != nil {
		t.Fatalf("EquityCurvePNG: %v", err)
	}
	if len(buf) == 0 {
		t.Fatal("EquityCurvePNG returned no bytes")
	}
	pngMagic := []byte{0x89, 'P', 'N', 'G'}
	if !bytes.HasPrefix(buf, pngMagic) {
		t.Errorf("output does not start with the PNG signature: % x", buf[:4])
	}
}

func TestWriteEquityCurvePNG(t *testing.T) {
	res, summary := testResult(t)
	path := filepath.Join(t.TempDir(), "charts", "equity.png")

	if err := WriteEquityCurvePNG(path, res, summary); err != nil {
		t.Fatalf("WriteEquityCurvePNG: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("chart file is empty")
	}
}
