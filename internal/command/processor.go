// Package command implements the text commands that edit the risk
// configuration.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/instrument"
	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/internal/trading/takeprofit"
)

// Processor answers config, tp and add commands against a Store
type Processor struct {
	store  *riskconfig.Store
	logger zerolog.Logger
}

func NewProcessor(store *riskconfig.Store, logger zerolog.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger.With().Str("component", "command_processor").Logger(),
	}
}

// Handle runs text if it is a command. handled is false for anything that
// should be treated as a trade signal.
func (p *Processor) Handle(text string) (reply string, handled bool) {
	parts := strings.Fields(strings.ToLower(text))
	if len(parts) == 0 {
		return "", false
	}

	switch {
	case parts[0] == "config" && len(parts) > 1:
		reply = p.config(parts)
	case len(parts) == 2 && parts[0] == "tp" && parts[1] == "config":
		reply = p.takeProfitReport()
	case parts[0] == "tp" && len(parts) > 1:
		reply = p.takeProfit(parts)
	case parts[0] == "add" && len(parts) > 1:
		reply = p.add(parts)
	default:
		return "", false
	}

	p.logger.Debug().Str("command", parts[0]).Msg("Handled command")
	return reply, true
}

func (p *Processor) config(parts []string) string {
	switch parts[1] {
	case "help":
		return helpText
	case "list":
		return p.list()
	case "show":
		if len(parts) < 3 {
			return msgInvalidConfig
		}
		return p.show(parts[2])
	case "create":
		if len(parts) < 3 {
			return msgInvalidConfig
		}
		name := parts[2]
		return p.reply(p.store.CreateProfile(name), name, fmt.Sprintf("Configuration '%s' created.", name))
	case "delete":
		if len(parts) < 3 {
			return msgInvalidConfig
		}
		name := parts[2]
		return p.reply(p.store.DeleteProfile(name), name, fmt.Sprintf("Configuration '%s' deleted.", name))
	case "set":
		return p.set(parts)
	}
	return msgInvalidConfig
}

func (p *Processor) set(parts []string) string {
	if len(parts) < 4 {
		return msgInvalidConfig
	}

	switch parts[2] {
	case "mode":
		mode, err := riskconfig.ParseMode(parts[3])
		if err != nil {
			return msgInvalidMode
		}
		return p.reply(p.store.SetMode(mode), "", fmt.Sprintf("Mode set to: %s", mode))
	case "active":
		name := parts[3]
		return p.reply(p.store.SetActive(name), name, fmt.Sprintf("Active configuration set to: %s", name))
	case "fixed", "risk":
		if len(parts) < 5 {
			return msgInvalidConfig
		}
		return p.setTable(riskconfig.TableKind(parts[2]), parts[3], parts[4], parts[5:])
	}
	return msgInvalidConfig
}

func (p *Processor) setTable(kind riskconfig.TableKind, name, legsArg string, args []string) string {
	if _, ok := p.store.Profile(name); !ok {
		return fmt.Sprintf("Configuration '%s' not found.", name)
	}
	legs, err := strconv.Atoi(legsArg)
	if err != nil {
		return msgNumberFormat
	}
	if legs < riskconfig.MinLegs || legs > riskconfig.MaxLegs {
		return msgLimitRange
	}
	if len(args) < legs {
		return fmt.Sprintf("Expected %d values, got %d.", legs, len(args))
	}

	values := make([]float64, legs)
	for i := range values {
		if values[i], err = strconv.ParseFloat(args[i], 64); err != nil {
			return msgNumberFormat
		}
	}

	var ok string
	if kind == riskconfig.TableRisk {
		ok = fmt.Sprintf("Risk percentage values for %d limit(s) in '%s' set to: %s%%", legs, name, joinNumbers(values))
	} else {
		ok = fmt.Sprintf("Fixed lot values for %d limit(s) in '%s' set to: %s", legs, name, joinNumbers(values))
	}
	return p.reply(p.store.SetTable(name, kind, legs, values), name, ok)
}

func (p *Processor) list() string {
	doc := p.store.Snapshot()
	names := doc.ProfileNames()
	if len(names) == 0 {
		return "No configurations found."
	}
	return fmt.Sprintf("Mode: %s\nActive: %s\nConfigurations: %s", doc.Mode, doc.ActiveProfile, strings.Join(names, ", "))
}

func (p *Processor) show(name string) string {
	profile, ok := p.store.Profile(name)
	if !ok {
		return fmt.Sprintf("Configuration '%s' not found.", name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Configuration: %s\n\nFixed lots:\n", name)
	for _, legs := range profile.FixedLots.LegCounts() {
		fmt.Fprintf(&b, "%d limit(s): %s\n", legs, joinNumbers(profile.FixedLots[legs]))
	}
	b.WriteString("\nRisk percentages:\n")
	for _, legs := range profile.RiskPercentages.LegCounts() {
		fmt.Fprintf(&b, "%d limit(s): %s%%\n", legs, joinNumbers(profile.RiskPercentages[legs]))
	}
	return b.String()
}

func (p *Processor) takeProfit(parts []string) string {
	if len(parts) < 3 {
		return msgTPFormat
	}
	key := parts[1]
	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return msgTPValue
	}
	if instrument.IsStock(key) {
		key = strings.ToUpper(key)
	}

	err = p.store.SetTakeProfit(key, value)
	switch {
	case errors.Is(err, riskconfig.ErrUnregisteredClass):
		return fmt.Sprintf("Stock symbol '%s' not found in configuration. Reply with `add %s` to add it.", key, key)
	case errors.Is(err, riskconfig.ErrMalformedValues):
		return msgTPValue
	}

	if key == takeprofit.ForexClass {
		return p.reply(err, "", fmt.Sprintf("Take profit for %s set to %s pips.", key, formatNumber(value)))
	}
	return p.reply(err, "", fmt.Sprintf("Take profit for %s set to $%s.", key, formatNumber(value)))
}

func (p *Processor) takeProfitReport() string {
	targets := p.store.Snapshot().TakeProfitTargets
	if len(targets) == 0 {
		return msgNoTPConfig
	}

	var forex, other, stocks []string
	for key, value := range targets {
		switch {
		case instrument.IsStock(key):
			stocks = append(stocks, fmt.Sprintf("%s: $%s", key, formatNumber(value)))
		case key == takeprofit.ForexClass:
			forex = append(forex, fmt.Sprintf("%s: %s pips", key, formatNumber(value)))
		default:
			other = append(other, fmt.Sprintf("%s: %s dollars", key, formatNumber(value)))
		}
	}
	sort.Strings(forex)
	sort.Strings(other)
	sort.Strings(stocks)

	var b strings.Builder
	b.WriteString("**Take Profit Configuration**\n")
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n**%s:**\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "• %s\n", item)
		}
	}
	section("Forex Pairs", forex)
	section("Other Symbols", other)
	section("Stock Symbols", stocks)
	b.WriteString("\nUse `tp <symbol_type> <value>` to change settings.")
	b.WriteString("\n(Forex uses pips, other symbols use dollar values)")
	return b.String()
}

func (p *Processor) add(parts []string) string {
	if len(parts) < 2 {
		return msgAddFormat
	}
	symbol := strings.ToUpper(parts[1])
	if !instrument.IsStock(symbol) {
		return fmt.Sprintf("Invalid stock symbol format. Symbol should end with %s",
			strings.Join(instrument.StockSuffixes, " or "))
	}

	added, err := p.store.AddStockClass(symbol)
	if err == nil && !added {
		return fmt.Sprintf("Stock symbol '%s' is already in the configuration. Use `tp %s <value>` to change it.",
			symbol, strings.ToLower(symbol))
	}
	return p.reply(err, "", fmt.Sprintf("Stock symbol '%s' added to configuration. Use `tp %s <pips>` to set the take profit.",
		symbol, strings.ToLower(symbol)))
}

// reply renders the outcome of a store mutation. A persistence failure still
// reports success, followed by a warning.
func (p *Processor) reply(err error, name, ok string) string {
	if err == nil {
		return ok
	}

	var perr *riskconfig.PersistenceError
	switch {
	case errors.As(err, &perr):
		return ok + "\n" + fmt.Sprintf(msgPersistWarning, perr.Err)
	case errors.Is(err, riskconfig.ErrNotFound):
		return fmt.Sprintf("Configuration '%s' not found.", name)
	case errors.Is(err, riskconfig.ErrAlreadyExists):
		return fmt.Sprintf("Configuration '%s' already exists.", name)
	case errors.Is(err, riskconfig.ErrReservedProfile):
		return msgReserved
	case errors.Is(err, riskconfig.ErrInvalidRange):
		return msgLimitRange
	case errors.Is(err, riskconfig.ErrMalformedValues):
		return fmt.Sprintf("Invalid values: %v", err)
	}

	p.logger.Error().Err(err).Msg("Unexpected command failure")
	return fmt.Sprintf("Error: %v", err)
}

// formatNumber prints whole numbers with one decimal so 10 reads as 10.0
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func joinNumbers(values []float64) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = formatNumber(v)
	}
	return strings.Join(out, " ")
}
