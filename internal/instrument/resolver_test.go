package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SignalBridge/models"
)

func testCatalog(extra ...models.InstrumentMetadata) *Snapshot {
	items := []models.InstrumentMetadata{
		{Symbol: "XAUUSD", Description: "Gold vs US Dollar", Digits: 2},
		{Symbol: "EURUSD", Description: "Euro vs US Dollar", Digits: 5},
		{Symbol: "USDJPY", Description: "US Dollar vs Yen", Digits: 3},
		{Symbol: "US500", Description: "S&P 500 Index", Digits: 2},
		{Symbol: "AAPL.NAS", Description: "Apple Inc", Digits: 2},
		{Symbol: "MSFT.NAS", Description: "Microsoft Corporation", Digits: 2},
		{Symbol: "PEP.NAS", Description: "PepsiCo, Inc.", Digits: 2},
		{Symbol: "KO.NYSE", Description: "Coca-Cola Company", Digits: 2},
	}
	return NewSnapshot(append(items, extra...))
}

func TestResolve(t *testing.T) {
	r := NewResolver(testCatalog(), nil)

	tests := []struct {
		name     string
		text     string
		status   Status
		symbol   string
		strategy Strategy
	}{
		{"stock suffix", "long AAPL.NAS 180 175", Found, "AAPL.NAS", StrategyStockSuffix},
		{"stock suffix lower case", "long aapl.nas 180 175", Found, "AAPL.NAS", StrategyStockSuffix},
		{"stock suffix beats alias", "long gold AAPL.NAS 180 175", Found, "AAPL.NAS", StrategyStockSuffix},
		{"unknown stock fails without fallback", "long FAKE.NYSE gold 1 2", NotFound, "", StrategyStockSuffix},
		{"one of two stocks unknown", "long AAPL.NAS FAKE.NYSE gold 1 2", NotFound, "", StrategyStockSuffix},
		{"alias", "long gold 1950.5 1949.0", Found, "XAUUSD", StrategyAlias},
		{"alias beats exact token", "short gold EURUSD 1 2", Found, "XAUUSD", StrategyAlias},
		{"exact token", "long EURUSD 1.1 1.0", Found, "EURUSD", StrategyExactToken},
		{"exact token beats description", "long apple US500 1 2", Found, "US500", StrategyExactToken},
		{"description", "long apple 180 175", Found, "AAPL.NAS", StrategyDescription},
		{"description skips stop words", "Long hot stops microsoft 300 290", Found, "MSFT.NAS", StrategyDescription},
		{"description ignores non stocks", "long euro 1 2", NotFound, "", StrategyDescription},
		{"nothing", "long zebra 1 2", NotFound, "", StrategyDescription},
		{"only numbers", "1 2 3", NotFound, "", StrategyDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.text)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.symbol, got.Symbol)
			assert.Equal(t, tt.strategy, got.Strategy)
		})
	}
}

func TestResolveAliasTableOrder(t *testing.T) {
	r := NewResolver(testCatalog(models.InstrumentMetadata{Symbol: "BTCUSD"}), nil)

	// "btc" appears first in the text but "gold" is declared first in the table
	got := r.Resolve("btc and gold long 1 2")
	require.Equal(t, Found, got.Status)
	assert.Equal(t, "XAUUSD", got.Symbol)
}

func TestResolveAliasMissingFromCatalog(t *testing.T) {
	r := NewResolver(testCatalog(), nil)

	got := r.Resolve("long btc EURUSD 1 2")
	assert.Equal(t, NotFound, got.Status)
	assert.Equal(t, StrategyAlias, got.Strategy)
}

func TestResolveAmbiguous(t *testing.T) {
	r := NewResolver(testCatalog(), nil)

	got := r.Resolve("long inc 10 9")
	require.Equal(t, Ambiguous, got.Status)
	assert.Equal(t, []string{"AAPL.NAS", "PEP.NAS"}, got.Candidates)
	assert.Equal(t, "inc", got.Word)
}

func TestResolveCustomAliases(t *testing.T) {
	r := NewResolver(testCatalog(), []Alias{{"fiber", "EURUSD"}})

	got := r.Resolve("short fiber 1.1 1.2")
	assert.Equal(t, Found, got.Status)
	assert.Equal(t, "EURUSD", got.Symbol)

	// default aliases are not consulted
	got = r.Resolve("long gold 1 2")
	assert.NotEqual(t, "XAUUSD", got.Symbol)
}

func TestSymbolClassification(t *testing.T) {
	assert.True(t, IsForexPair("EURUSD"))
	assert.True(t, IsForexPair("GBPJPY"))
	assert.False(t, IsForexPair("XAUUSD"))
	assert.False(t, IsForexPair("US500"))

	assert.True(t, IsStock("AAPL.NAS"))
	assert.True(t, IsStock("ko.nyse"))
	assert.False(t, IsStock("EURUSD"))

	assert.InDelta(t, 0.01, PipSize("USDJPY"), 1e-12)
	assert.InDelta(t, 0.0001, PipSize("EURUSD"), 1e-12)
}

func TestSnapshot(t *testing.T) {
	s := testCatalog()
	assert.Equal(t, 8, s.Len())

	syms := s.Symbols()
	assert.Equal(t, "AAPL.NAS", syms[0])
	syms[0] = "mutated"
	assert.Equal(t, "AAPL.NAS", s.Symbols()[0])

	m, ok := s.Lookup("XAUUSD")
	require.True(t, ok)
	assert.Equal(t, int32(2), m.Digits)
}
