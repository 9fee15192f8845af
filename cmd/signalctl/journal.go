package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alias1177/SignalBridge/internal/database"
	"github.com/Alias1177/SignalBridge/models"
)

type journalFlags struct {
	driver string
	dsn    string
}

func newJournalCmd() *cobra.Command {
	jf := &journalFlags{}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the order journal",
	}
	cmd.PersistentFlags().StringVar(&jf.driver, "driver", envOr("JOURNAL_DRIVER", database.DriverSQLite), "journal driver (postgres or sqlite)")
	cmd.PersistentFlags().StringVar(&jf.dsn, "dsn", os.Getenv("JOURNAL_DSN"), "journal DSN")

	var limit int
	recent := &cobra.Command{
		Use:   "recent",
		Short: "List the latest journaled legs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("invalid --limit %d", limit)
			}
			db, err := jf.open()
			if err != nil {
				return err
			}
			defer db.Close()

			recs, err := db.RecentOrders(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}
	recent.Flags().IntVarP(&limit, "limit", "n", 20, "number of legs")

	show := &cobra.Command{
		Use:   "show <correlation id>",
		Short: "List every leg of one signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := jf.open()
			if err != nil {
				return err
			}
			defer db.Close()

			recs, err := db.OrdersByCorrelation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				return fmt.Errorf("no journaled legs for %q", args[0])
			}
			printRecords(cmd.OutOrStdout(), recs)
			return nil
		},
	}

	cmd.AddCommand(recent, show)
	return cmd
}

func (jf *journalFlags) open() (*database.DB, error) {
	if jf.dsn == "" {
		return nil, fmt.Errorf("--dsn or JOURNAL_DSN is required")
	}
	return database.Open(jf.driver, jf.dsn)
}

func printRecords(out io.Writer, recs []models.OrderRecord) {
	for _, r := range recs {
		tp := "-"
		if r.TakeProfit != nil {
			tp = fmt.Sprint(*r.TakeProfit)
		}
		line := fmt.Sprintf("%s  %s #%d  %s %s %s  vol=%v entry=%v sl=%v tp=%s  %s",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.CorrelationID, r.LegIndex+1,
			r.Kind, r.Direction, r.Symbol, r.Volume, r.EntryPrice, r.StopLoss, tp, r.Status)
		if r.Reason != "" {
			line += ": " + r.Reason
		}
		fmt.Fprintln(out, line)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
