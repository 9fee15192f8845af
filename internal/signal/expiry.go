package signal

import (
	"strings"

	"github.com/Alias1177/SignalBridge/models"
)

var majorPairs = map[string]bool{
	"EURUSD": true, "USDJPY": true, "GBPUSD": true, "USDCHF": true,
	"AUDUSD": true, "USDCAD": true, "NZDUSD": true,
}

// expiryKeywords are checked in this order; a later match overrides an earlier one
var expiryKeywords = []struct {
	word   string
	policy models.ExpiryPolicy
}{
	{"vth", models.ExpiryWeek},
	{"alien", models.ExpiryAlien},
	{"day", models.ExpiryDay},
	{"week", models.ExpiryWeek},
}

// resolveExpiry picks WEEK, DAY for major pairs, then applies keyword overrides
func resolveExpiry(symbol, text string) models.ExpiryPolicy {
	policy := models.ExpiryWeek
	if majorPairs[symbol] {
		policy = models.ExpiryDay
	}
	lower := strings.ToLower(text)
	for _, kw := range expiryKeywords {
		if strings.Contains(lower, kw.word) {
			policy = kw.policy
		}
	}
	return policy
}
