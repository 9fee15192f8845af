package signal

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/instrument"
	"github.com/Alias1177/SignalBridge/models"
)

// MaxEntries is the largest leg count the risk tables define
const MaxEntries = 8

var (
	directionRe = regexp.MustCompile(`(?i)\b(long|short)\b`)
	numberRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	commentsRe  = regexp.MustCompile(`(?i)comments:([^\n]*)`)
)

// Parser turns alert text into a TradeSignal
type Parser struct {
	resolver *instrument.Resolver
	rescale  RescalePolicy
	logger   zerolog.Logger
}

func NewParser(resolver *instrument.Resolver, rescale RescalePolicy, logger zerolog.Logger) *Parser {
	return &Parser{
		resolver: resolver,
		rescale:  rescale,
		logger:   logger.With().Str("component", "signal_parser").Logger(),
	}
}

// Parse extracts a signal or returns a *ParseError
func (p *Parser) Parse(text string) (models.TradeSignal, error) {
	res := p.resolver.Resolve(text)
	switch res.Status {
	case instrument.Ambiguous:
		return models.TradeSignal{}, &ParseError{Reason: ReasonAmbiguousSymbol, Word: res.Word, Candidates: res.Candidates}
	case instrument.NotFound:
		return models.TradeSignal{}, &ParseError{Reason: ReasonNoSymbol}
	}
	symbol := res.Symbol

	m := directionRe.FindStringSubmatch(text)
	if m == nil {
		return models.TradeSignal{}, &ParseError{Reason: ReasonNoDirection}
	}
	direction, err := models.ParseDirection(m[1])
	if err != nil {
		return models.TradeSignal{}, &ParseError{Reason: ReasonNoDirection}
	}

	numbers := extractNumbers(text, symbol)
	if len(numbers) < 2 {
		return models.TradeSignal{}, &ParseError{Reason: ReasonInsufficientNumbers}
	}
	if scaled, ok := p.rescale.Apply(symbol, numbers); ok {
		p.logger.Debug().Str("symbol", symbol).Floats64("raw", numbers).Floats64("scaled", scaled).Msg("Rescaled quotes")
		numbers = scaled
	}

	entries := numbers[:len(numbers)-1]
	if len(entries) > MaxEntries {
		return models.TradeSignal{}, &ParseError{Reason: ReasonTooManyEntries, Count: len(entries)}
	}

	sig := models.TradeSignal{
		Symbol:      symbol,
		Direction:   direction,
		EntryPrices: append([]float64(nil), entries...),
		StopLoss:    numbers[len(numbers)-1],
		Expiry:      resolveExpiry(symbol, text),
		Comment:     extractComment(text),
	}

	p.logger.Debug().
		Str("symbol", sig.Symbol).
		Str("direction", string(sig.Direction)).
		Floats64("entries", sig.EntryPrices).
		Float64("stop_loss", sig.StopLoss).
		Str("expiry", string(sig.Expiry)).
		Str("strategy", string(res.Strategy)).
		Msg("Parsed signal")
	return sig, nil
}

// extractNumbers returns every number in text, left to right. A token that
// names the resolved symbol (US30, DE40) is not a price and is skipped.
func extractNumbers(text, symbol string) []float64 {
	var out []float64
	for _, tok := range strings.Fields(text) {
		if strings.EqualFold(tok, symbol) {
			continue
		}
		for _, s := range numberRe.FindAllString(tok, -1) {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

func extractComment(text string) string {
	comment := ""
	if m := commentsRe.FindStringSubmatch(text); m != nil {
		comment = strings.TrimSpace(m[1])
	}
	if strings.Contains(strings.ToLower(text), "hot") {
		comment = strings.TrimSpace(comment + " HOT")
	}
	return comment
}
