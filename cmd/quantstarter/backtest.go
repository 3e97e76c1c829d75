package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quantstarter/internal/backtest"
	"quantstarter/internal/factors"
	"quantstarter/internal/metrics"
	"quantstarter/internal/panel"
	"quantstarter/internal/report"
	"quantstarter/internal/store"
)

func backtestCmd() *cobra.Command {
	var (
		dataFile    string
		signalsFile string
		capital     float64
		output      string
		plotPath    string
		scheme      string
		rebalance   string
		cost        float64
		leverage    float64
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a backtest with given signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			// Flags left at their defaults fall back to config.
			if !cmd.Flags().Changed("initial-capital") {
				capital = cfg.Backtest.InitialCapital
			}
			if !cmd.Flags().Changed("scheme") {
				scheme = cfg.Backtest.Scheme
			}
			if !cmd.Flags().Changed("rebalance") {
				rebalance = cfg.Backtest.Rebalance
			}
			if !cmd.Flags().Changed("cost") {
				cost = cfg.Backtest.TransactionCost
			}
			if !cmd.Flags().Changed("leverage") {
				leverage = cfg.Backtest.MaxLeverage
			}

			prices, err := loadPrices(dataFile, cfg.Data.Seed, log)
			if err != nil {
				return err
			}
			signals, err := loadSignals(signalsFile, prices, log)
			if err != nil {
				return err
			}

			engCfg := backtest.Config{
				InitialCapital:  capital,
				TransactionCost: cost,
				MaxLeverage:     leverage,
				MinPositionSize: cfg.Backtest.MinPositionSize,
				RebalanceFreq:   backtest.Frequency(rebalance),
			}
			engine, err := backtest.New(prices, signals, engCfg)
			if err != nil {
				return err
			}

			log.Info("running backtest",
				"scheme", scheme, "rebalance", rebalance,
				"capital", capital, "cost", cost)

			res, err := engine.Run(backtest.Scheme(scheme))
			if err != nil {
				return err
			}
			summary := metrics.Compute(res.Returns)

			rep := report.Build(res, &summary)
			if err := rep.WriteJSON(output); err != nil {
				return err
			}
			fmt.Printf("Results saved -> %s\n", output)

			if plotPath != "" {
				if err := report.WriteEquityCurvePNG(plotPath, res, &summary); err != nil {
					return err
				}
				fmt.Printf("Equity curve -> %s\n", plotPath)
			}

			if save {
				rs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
				if err != nil {
					return err
				}
				defer rs.Close()
				run := store.Run{
					Scheme:         scheme,
					Rebalance:      rebalance,
					InitialCapital: res.InitialCapital,
					FinalValue:     res.FinalValue,
					TotalReturn:    res.TotalReturn,
					Sharpe:         summary.SharpeRatio,
					MaxDrawdown:    summary.MaxDrawdown,
				}
				if err := rs.SaveRun(context.Background(), &run); err != nil {
					return err
				}
				fmt.Printf("Run saved: %s\n", run.ID)
			}

			fmt.Printf("Total return: %+.2f%% | Sharpe: %.2f | MaxDD: %.2f%%\n",
				res.TotalReturn*100, summary.SharpeRatio, summary.MaxDrawdown*100)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data-file", "d", "data/sample_prices.csv", "Price data file path")
	cmd.Flags().StringVarP(&signalsFile, "signals-file", "s", "output/factors.csv", "Factor signals file path")
	cmd.Flags().Float64VarP(&capital, "initial-capital", "c", 1_000_000, "Initial capital")
	cmd.Flags().StringVarP(&output, "output", "o", "output/backtest_results.json", "Output file for results")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write an equity curve PNG to this path")
	cmd.Flags().StringVar(&scheme, "scheme", "rank", "Weight scheme: rank, zscore, long_short")
	cmd.Flags().StringVar(&rebalance, "rebalance", "daily", "Rebalance frequency: daily, weekly, monthly")
	cmd.Flags().Float64Var(&cost, "cost", 0.001, "Proportional transaction cost per unit of turnover")
	cmd.Flags().Float64Var(&leverage, "leverage", 1.0, "Maximum total absolute weight")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run summary to SQLite")

	return cmd
}

// loadSignals reads the signals file and broadcasts its composite column (or
// the first column when no composite exists) across the price symbols. When
// the file is missing a momentum signal is computed instead.
func loadSignals(path string, prices *panel.Panel, log *slog.Logger) (*panel.Panel, error) {
	if _, err := os.Stat(path); err != nil {
		log.Warn("signals file not found, computing momentum signal", "path", path)
		signal, err := factors.Momentum(prices, factors.Params{Lookback: 63, SkipPeriod: 1})
		if err != nil {
			return nil, err
		}
		return panel.Broadcast(signal.RowMean(), prices.Symbols()), nil
	}

	loaded, err := readPanel(path)
	if err != nil {
		return nil, err
	}
	column := loaded.Symbols()[0]
	if loaded.SymbolIndex("composite") >= 0 {
		column = "composite"
	}
	s, err := panel.Column(loaded, column)
	if err != nil {
		return nil, err
	}
	return panel.Broadcast(s, prices.Symbols()), nil
}
