package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quantstarter/internal/data"
)

func generateDataCmd() *cobra.Command {
	var (
		output  string
		symbols int
		days    int
		start   string
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "generate-data",
		Short: "Generate synthetic price data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			// Flags that were left at their defaults fall back to config.
			if !cmd.Flags().Changed("symbols") {
				symbols = cfg.Data.Symbols
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Data.Days
			}
			if !cmd.Flags().Changed("start") {
				start = cfg.Data.StartDate
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Data.Seed
			}

			startDate, err := time.ParseInLocation("2006-01-02", start, time.UTC)
			if err != nil {
				return fmt.Errorf("bad start date %q: %w", start, err)
			}

			opts := data.DefaultPriceOptions()
			opts.Symbols = symbols
			opts.Days = days
			opts.StartDate = startDate

			gen := data.NewSyntheticGenerator(seed)
			prices, err := gen.GeneratePrices(opts)
			if err != nil {
				return err
			}

			if err := writePanel(output, prices); err != nil {
				return err
			}

			log.Info("generated synthetic prices",
				"symbols", symbols, "days", days, "start", start, "output", output)
			fmt.Printf("Generated %d symbols for %d days -> %s\n", symbols, days, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "data/sample_prices.csv", "Output file path (.csv or .parquet)")
	cmd.Flags().IntVarP(&symbols, "symbols", "s", 10, "Number of symbols")
	cmd.Flags().IntVarP(&days, "days", "d", 1000, "Number of trading days")
	cmd.Flags().StringVar(&start, "start", "2020-01-01", "Start date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")

	return cmd
}
