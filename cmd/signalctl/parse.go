package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

func newParseCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <signal text>",
		Short: "Parse a signal and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instruments, err := rc.loadInstruments()
			if err != nil {
				return err
			}

			sig, err := rc.parser(instruments, rc.logger(cmd.ErrOrStderr())).Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sig)
		},
	}
}
