package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alias1177/SignalBridge/internal/riskconfig"
)

func newConfigCmd(rc *rootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create and check risk configuration documents",
	}
	cmd.AddCommand(newConfigInitCmd(rc), newConfigValidateCmd(rc))
	return cmd
}

func newConfigInitCmd(rc *rootConfig) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in default document",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := output
			if path == "" {
				path = rc.riskFile
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}

			if err := riskconfig.NewFilePersister(path).Save(riskconfig.DefaultDocument()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (.json, .yaml or .yml); defaults to --config")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigValidateCmd(rc *rootConfig) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a document and report what would be repaired",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := file
			if path == "" {
				path = rc.riskFile
			}

			doc, err := riskconfig.NewFilePersister(path).Load()
			if errors.Is(err, riskconfig.ErrCorrupt) {
				return fmt.Errorf("%s is not a valid configuration document: %w", path, err)
			}
			if err != nil {
				return err
			}

			healed, notes := riskconfig.Heal(doc)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\nActive: %s\nConfigurations: %d\nTake-profit classes: %d\n",
				healed.Mode, healed.ActiveProfile, len(healed.Profiles), len(healed.TakeProfitTargets))
			if len(notes) == 0 {
				fmt.Fprintln(out, "OK")
				return nil
			}
			fmt.Fprintf(out, "%d repair(s) will be applied on next start:\n", len(notes))
			for _, n := range notes {
				fmt.Fprintf(out, "- %s\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "document to validate; defaults to --config")
	return cmd
}
