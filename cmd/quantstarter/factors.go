package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"quantstarter/internal/data"
	"quantstarter/internal/factors"
	"quantstarter/internal/panel"
)

func factorsCmd() *cobra.Command {
	var (
		dataFile string
		names    []string
		output   string
		lookback int
	)

	cmd := &cobra.Command{
		Use:   "factors",
		Short: "Compute factor signals from price data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			prices, err := loadPrices(dataFile, cfg.Data.Seed, log)
			if err != nil {
				return err
			}

			log.Info("computing factors", "factors", names, "lookback", lookback)

			// One cross-sectional mean series per factor.
			series := make(map[string]*panel.Series, len(names))
			for _, name := range names {
				fn, ok := factors.Lookup(name)
				if !ok {
					return fmt.Errorf("unknown factor %q (available: %v)", name, factors.Names())
				}
				p := factors.Params{Seed: cfg.Data.Seed}
				if name == "momentum" {
					p.Lookback = lookback
				}
				signal, err := fn(prices, p)
				if err != nil {
					return fmt.Errorf("computing %s: %w", name, err)
				}
				series[name] = signal.RowMean()
			}

			combined, err := combineFactorSeries(names, series)
			if err != nil {
				return err
			}

			if err := writePanel(output, combined); err != nil {
				return err
			}
			fmt.Printf("Factors computed -> %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data-file", "d", "data/sample_prices.csv", "Price data file path")
	cmd.Flags().StringSliceVarP(&names, "factors", "f", []string{"momentum", "value"}, "Factors to compute")
	cmd.Flags().StringVarP(&output, "output", "o", "output/factors.csv", "Output file for factors")
	cmd.Flags().IntVar(&lookback, "lookback", 63, "Momentum lookback in trading days")

	return cmd
}

// loadPrices reads the price file, falling back to a synthetic panel when the
// file does not exist.
func loadPrices(path string, seed int64, log *slog.Logger) (*panel.Panel, error) {
	if _, err := os.Stat(path); err == nil {
		return readPanel(path)
	}
	log.Warn("data file not found, generating synthetic prices", "path", path)
	gen := data.NewSyntheticGenerator(seed)
	return gen.GeneratePrices(data.DefaultPriceOptions())
}

// combineFactorSeries joins per-factor series on the union of their dates and
// appends a composite column: the mean of the available factor values per
// date.
func combineFactorSeries(names []string, series map[string]*panel.Series) (*panel.Panel, error) {
	dateSet := make(map[int64]time.Time)
	for _, s := range series {
		for i := 0; i < s.Len(); i++ {
			d := s.Date(i)
			dateSet[d.UnixNano()] = d
		}
	}
	keys := make([]int64, 0, len(dateSet))
	for k := range dateSet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	dates := make([]time.Time, len(keys))
	index := make(map[int64]int, len(keys))
	for i, k := range keys {
		dates[i] = dateSet[k]
		index[k] = i
	}

	cols := append(append([]string(nil), names...), "composite")
	values := make([][]float64, len(dates))
	for i := range values {
		row := make([]float64, len(cols))
		for j := range row {
			row[j] = math.NaN()
		}
		values[i] = row
	}
	for j, name := range names {
		s := series[name]
		for i := 0; i < s.Len(); i++ {
			values[index[s.Date(i).UnixNano()]][j] = s.Value(i)
		}
	}
	for i := range values {
		sum, n := 0.0, 0
		for j := range names {
			if v := values[i][j]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n > 0 {
			values[i][len(names)] = sum / float64(n)
		}
	}

	return panel.New(dates, cols, values)
}
