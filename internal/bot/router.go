// Package bot connects the chat transport to commands and order plans.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/orderplan"
	"github.com/Alias1177/SignalBridge/internal/signal"
	"github.com/Alias1177/SignalBridge/models"
)

// CommandHandler answers configuration commands. handled is false for text
// that is not a command.
type CommandHandler interface {
	Handle(text string) (reply string, handled bool)
}

type SignalParser interface {
	Parse(text string) (models.TradeSignal, error)
}

// PlanRunner builds and submits the order legs of a signal
type PlanRunner interface {
	Run(ctx context.Context, sig models.TradeSignal) orderplan.Report
}

// Router turns one inbound text into one reply
type Router struct {
	commands CommandHandler
	parser   SignalParser
	plans    PlanRunner
	logger   zerolog.Logger
}

func NewRouter(commands CommandHandler, parser SignalParser, plans PlanRunner, logger zerolog.Logger) *Router {
	return &Router{
		commands: commands,
		parser:   parser,
		plans:    plans,
		logger:   logger.With().Str("component", "router").Logger(),
	}
}

// Route handles commands first; anything else is treated as a trade signal
func (r *Router) Route(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if reply, ok := r.commands.Handle(text); ok {
		return reply
	}

	sig, err := r.parser.Parse(text)
	if err != nil {
		var perr *signal.ParseError
		if errors.As(err, &perr) {
			r.logger.Info().Str("reason", string(perr.Reason)).Msg("Rejected signal")
		} else {
			r.logger.Error().Err(err).Msg("Failed to parse signal")
		}
		return fmt.Sprintf("Error: %v", err)
	}

	r.logger.Info().Str("symbol", sig.Symbol).Str("direction", string(sig.Direction)).
		Int("legs", sig.Legs()).Str("expiry", string(sig.Expiry)).Msg("Parsed signal")
	return r.plans.Run(ctx, sig).Summary()
}
