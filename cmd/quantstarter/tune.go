package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quantstarter/internal/backtest"
	"quantstarter/internal/store"
	"quantstarter/internal/tuning"
)

func tuneCmd() *cobra.Command {
	var (
		dataFile string
		study    string
		workers  int
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "tune",
		Short: "Grid-search engine parameters for the best Sharpe ratio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("study") {
				study = cfg.Tuning.Study
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Tuning.Workers
			}

			prices, err := loadPrices(dataFile, cfg.Data.Seed, log)
			if err != nil {
				return err
			}

			base := backtest.DefaultConfig()
			base.InitialCapital = cfg.Backtest.InitialCapital
			base.MaxLeverage = cfg.Backtest.MaxLeverage
			base.MinPositionSize = cfg.Backtest.MinPositionSize

			runner := &tuning.Runner{
				Prices:  prices,
				Base:    base,
				Space:   tuning.DefaultSearchSpace(),
				Workers: workers,
				Log:     log,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Info("starting study", "study", study, "workers", workers)
			result, err := runner.Optimize(ctx)
			if err != nil {
				return err
			}

			completed := 0
			for _, t := range result.Trials {
				if t.State == tuning.StateComplete {
					completed++
				}
			}
			fmt.Printf("Study %s: %d/%d trials completed\n", study, completed, len(result.Trials))
			fmt.Printf("Best Sharpe: %.3f\n", result.BestValue)
			fmt.Printf("Best params: scheme=%s rebalance=%s cost=%g lookback=%d\n",
				result.BestParams.Scheme, result.BestParams.Frequency,
				result.BestParams.TransactionCost, result.BestParams.Lookback)

			if save {
				rs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
				if err != nil {
					return err
				}
				defer rs.Close()
				if err := tuning.SaveStudy(ctx, rs, study, result); err != nil {
					return err
				}
				fmt.Printf("Trials saved under study %q\n", study)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data-file", "d", "data/sample_prices.csv", "Price data file path")
	cmd.Flags().StringVar(&study, "study", "default", "Study name used when saving trials")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent trial workers")
	cmd.Flags().BoolVar(&save, "save", false, "Persist trials to SQLite")

	return cmd
}
