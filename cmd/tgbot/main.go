package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/bot"
	"github.com/Alias1177/SignalBridge/internal/command"
	"github.com/Alias1177/SignalBridge/internal/config"
	"github.com/Alias1177/SignalBridge/internal/database"
	"github.com/Alias1177/SignalBridge/internal/instrument"
	"github.com/Alias1177/SignalBridge/internal/orderplan"
	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/internal/signal"
	"github.com/Alias1177/SignalBridge/internal/trading/risk"
	"github.com/Alias1177/SignalBridge/internal/venue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := newLogger(cfg)

	if err := cfg.RequireTelegram(); err != nil {
		logger.Fatal().Err(err).Msg("Telegram is not configured")
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := riskconfig.Open(riskconfig.NewFilePersister(cfg.RiskConfigFile), logger)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.RiskConfigFile).Msg("Failed to open risk configuration")
	}
	profile, _, mode := store.Active()
	logger.Info().Str("profile", profile).Str("mode", string(mode)).Msg("Risk configuration loaded")

	v, err := newVenue(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize venue")
	}

	instruments, err := v.Instruments(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load instrument catalog")
	}
	catalog := instrument.NewSnapshot(instruments)
	logger.Info().Int("symbols", catalog.Len()).Str("venue", cfg.VenueMode).Msg("Instrument catalog loaded")

	opts := orderplan.Options{LegTimeout: cfg.VenueTimeoutDuration()}
	closeJournal := func() {}
	if cfg.JournalDriver != "" {
		db, err := database.Open(cfg.JournalDriver, cfg.JournalDSN)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.JournalDriver).Msg("Failed to initialize order journal")
		}
		// os.Exit in logger.Fatal skips defers, so every later exit path calls this
		closeJournal = func() {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close order journal")
			}
		}
		opts.Recorder = db
	}

	parser := signal.NewParser(
		instrument.NewResolver(catalog, nil),
		signal.NewRescalePolicy(cfg.RescaleThreshold, cfg.RescaleDivisor, cfg.RescaleExempt),
		logger,
	)
	plans := orderplan.NewBuilder(v, store, risk.NewSizer(cfg.FallbackVolume, logger), opts, logger)
	router := bot.NewRouter(command.NewProcessor(store, logger), parser, plans, logger)

	dispatcher := bot.NewDispatcher(router.Route, 64, logger)
	stopped := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(stopped)
	}()

	tg, err := bot.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, dispatcher, logger)
	if err != nil {
		closeJournal()
		logger.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	logger.Info().Msg("Listening for signals")
	tg.Run(ctx)
	logger.Info().Msg("Shutting down")

	// the in-flight message may still be journaling its legs
	stop()
	<-stopped
	closeJournal()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if cfg.LogFormat == "json" {
		return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
}

func newVenue(cfg *config.Config, logger zerolog.Logger) (venue.Venue, error) {
	if cfg.VenueMode == "bridge" {
		return venue.NewBridge(venue.BridgeOptions{
			BaseURL:        cfg.BridgeURL,
			Token:          cfg.BridgeToken,
			Timeout:        cfg.VenueTimeoutDuration(),
			RequestsPerSec: cfg.VenueRPS,
		}, logger), nil
	}

	instruments := venue.DefaultInstruments()
	if cfg.PaperInstruments != "" {
		var err error
		if instruments, err = venue.LoadInstruments(cfg.PaperInstruments); err != nil {
			return nil, err
		}
	}
	logger.Warn().Float64("balance", cfg.PaperBalance).Msg("Using paper venue, no real orders will be placed")
	return venue.NewPaper(instruments, cfg.PaperBalance, logger), nil
}
