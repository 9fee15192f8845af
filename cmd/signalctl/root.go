package main

import (
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alias1177/SignalBridge/internal/instrument"
	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/internal/signal"
	"github.com/Alias1177/SignalBridge/internal/venue"
	"github.com/Alias1177/SignalBridge/models"
)

type rootConfig struct {
	riskFile    string
	instruments string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	rc := &rootConfig{}

	cmd := &cobra.Command{
		Use:          "signalctl",
		Short:        "Offline tools for the SignalBridge trading bot",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&rc.riskFile, "config", "c", "risk_config.json", "risk configuration document")
	cmd.PersistentFlags().StringVar(&rc.instruments, "instruments", "", "YAML or JSON instrument list (built-in paper list when empty)")
	cmd.PersistentFlags().BoolVarP(&rc.verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newParseCmd(rc),
		newPlanCmd(rc),
		newConfigCmd(rc),
		newJournalCmd(),
	)
	return cmd
}

func (rc *rootConfig) logger(errOut io.Writer) zerolog.Logger {
	if !rc.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: errOut}).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func (rc *rootConfig) loadInstruments() ([]models.InstrumentMetadata, error) {
	if rc.instruments == "" {
		return venue.DefaultInstruments(), nil
	}
	return venue.LoadInstruments(rc.instruments)
}

func (rc *rootConfig) parser(instruments []models.InstrumentMetadata, logger zerolog.Logger) *signal.Parser {
	resolver := instrument.NewResolver(instrument.NewSnapshot(instruments), nil)
	return signal.NewParser(resolver, signal.DefaultRescalePolicy(), logger)
}

// readOnlyStore opens the configuration document without writing to it
func (rc *rootConfig) readOnlyStore(logger zerolog.Logger) (*riskconfig.Store, error) {
	doc, err := riskconfig.NewFilePersister(rc.riskFile).Load()
	switch {
	case err == nil:
		return riskconfig.Open(riskconfig.NewMemoryPersister(&doc), logger)
	case errors.Is(err, os.ErrNotExist):
		return riskconfig.Open(riskconfig.NewMemoryPersister(nil), logger)
	}
	return nil, err
}
