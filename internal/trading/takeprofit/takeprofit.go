// Package takeprofit turns configured per-class targets into order prices.
package takeprofit

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/SignalBridge/internal/instrument"
	"github.com/Alias1177/SignalBridge/models"
)

// ForexClass is the shared class key for every currency pair
const ForexClass = "forex"

// SymbolClasses maps majors to their dedicated class keys
var SymbolClasses = map[string]string{
	"BTCUSD": "btc",
	"ETHUSD": "eth",
	"US30":   "us30",
	"US500":  "us500",
	"USTEC":  "ustec",
	"DE40":   "de40",
	"FR40":   "fr40",
	"XAUUSD": "gold",
	"XAGUSD": "silver",
	"XTIUSD": "oil",
}

// Targets reads the configured value for a class key
type Targets interface {
	TakeProfit(classKey string) (float64, bool)
}

// ClassKey returns the class bucket for symbol, or "" when it has none
func ClassKey(symbol string) string {
	upper := strings.ToUpper(symbol)
	if key, ok := SymbolClasses[upper]; ok {
		return key
	}
	if instrument.IsStock(upper) {
		return upper
	}
	if instrument.IsForexPair(upper) {
		return ForexClass
	}
	return ""
}

type Calculator struct {
	targets Targets
}

func NewCalculator(targets Targets) *Calculator {
	return &Calculator{targets: targets}
}

// Target returns the take-profit price for one leg. ok is false when the
// symbol has no class, the class has no value, or the value is zero.
func (c *Calculator) Target(symbol string, dir models.Direction, entry float64, digits int32) (float64, bool) {
	key := ClassKey(symbol)
	if key == "" {
		return 0, false
	}
	value, ok := c.targets.TakeProfit(key)
	if !ok || value == 0 {
		return 0, false
	}
	return Price(symbol, key, dir, entry, value, digits), true
}

// Price applies value to entry. Forex values are pips, everything else is an
// absolute price offset.
func Price(symbol, classKey string, dir models.Direction, entry, value float64, digits int32) float64 {
	offset := decimal.NewFromFloat(value)
	if classKey == ForexClass {
		offset = offset.Mul(decimal.NewFromFloat(instrument.PipSize(symbol)))
	}
	if dir == models.Short {
		offset = offset.Neg()
	}
	return decimal.NewFromFloat(entry).Add(offset).Round(digits).InexactFloat64()
}
