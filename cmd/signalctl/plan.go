package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alias1177/SignalBridge/internal/orderplan"
	"github.com/Alias1177/SignalBridge/internal/trading/risk"
	"github.com/Alias1177/SignalBridge/internal/venue"
)

func newPlanCmd(rc *rootConfig) *cobra.Command {
	var (
		balance  float64
		fallback float64
	)

	cmd := &cobra.Command{
		Use:   "plan <signal text>",
		Short: "Dry-run a signal against the paper venue with the current configuration",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if balance <= 0 {
				return fmt.Errorf("invalid --balance %v", balance)
			}
			logger := rc.logger(cmd.ErrOrStderr())

			instruments, err := rc.loadInstruments()
			if err != nil {
				return err
			}
			store, err := rc.readOnlyStore(logger)
			if err != nil {
				return err
			}

			sig, err := rc.parser(instruments, logger).Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			paper := venue.NewPaper(instruments, balance, logger)
			builder := orderplan.NewBuilder(paper, store, risk.NewSizer(fallback, logger),
				orderplan.Options{LegTimeout: 5 * time.Second}, logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			report := builder.Run(ctx, sig)

			out := cmd.OutOrStdout()
			for _, o := range report.Outcomes {
				tp := "-"
				if o.Leg.TakeProfit != nil {
					tp = fmt.Sprint(*o.Leg.TakeProfit)
				}
				status := "placed"
				if o.Err != nil {
					status = "failed"
				}
				fmt.Fprintf(out, "leg %d  %s %s %s  vol=%v entry=%v sl=%v tp=%s expiry=%s  %s\n",
					o.Leg.Index+1, o.Leg.Kind, o.Leg.Direction, o.Leg.Symbol,
					o.Leg.Volume, o.Leg.EntryPrice, o.Leg.StopLoss, tp, o.Leg.Expiry, status)
			}
			fmt.Fprintln(out, report.Summary())
			return nil
		},
	}

	cmd.Flags().Float64Var(&balance, "balance", 10000, "paper account balance")
	cmd.Flags().Float64Var(&fallback, "fallback", risk.DefaultFallbackVolume, "volume used when sizing a leg fails")
	return cmd
}
