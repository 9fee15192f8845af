package instrument

import "strings"

// StockSuffixes are the exchange suffixes that mark a stock symbol
var StockSuffixes = []string{".NYSE", ".NAS"}

var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "AUD": true,
	"NZD": true, "CAD": true, "CHF": true, "SGD": true, "HKD": true,
}

// IsStock reports whether symbol carries a stock exchange suffix (case-insensitive)
func IsStock(symbol string) bool {
	up := strings.ToUpper(symbol)
	for _, suffix := range StockSuffixes {
		if strings.HasSuffix(up, suffix) {
			return true
		}
	}
	return false
}

// IsForexPair reports whether symbol is a six letter pair of known currencies
func IsForexPair(symbol string) bool {
	if len(symbol) != 6 {
		return false
	}
	return currencyCodes[symbol[:3]] && currencyCodes[symbol[3:]]
}

// IsJPYQuoted reports whether the pair is quoted in yen
func IsJPYQuoted(symbol string) bool {
	return strings.HasSuffix(symbol, "JPY")
}

// PipSize returns the forex pip size for symbol
func PipSize(symbol string) float64 {
	if IsJPYQuoted(symbol) {
		return 0.01
	}
	return 0.0001
}
