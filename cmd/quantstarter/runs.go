package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quantstarter/internal/store"
)

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved backtest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			rs, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
			if err != nil {
				return err
			}
			defer rs.Close()

			runs, err := rs.ListRuns(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No saved runs.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %s  %-10s %-8s return=%+.2f%%  sharpe=%.2f  maxdd=%.2f%%\n",
					run.ID, run.CreatedAt.Format("2006-01-02 15:04"),
					run.Scheme, run.Rebalance,
					run.TotalReturn*100, run.Sharpe, run.MaxDrawdown*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}
