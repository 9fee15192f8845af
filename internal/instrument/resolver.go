package instrument

import (
	"sort"
	"strings"
	"unicode"
)

// Status is the outcome kind of a resolution attempt
type Status int

const (
	NotFound Status = iota
	Found
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not-found"
	}
}

// Strategy names the resolution step that produced an outcome
type Strategy string

const (
	StrategyNone        Strategy = ""
	StrategyStockSuffix Strategy = "stock-suffix"
	StrategyAlias       Strategy = "alias"
	StrategyExactToken  Strategy = "exact-token"
	StrategyDescription Strategy = "description"
)

// Resolution is the tagged result of Resolve. Callers must switch on Status.
type Resolution struct {
	Status     Status
	Symbol     string
	Candidates []string
	// Word is the search word used by the description strategy
	Word     string
	Strategy Strategy
}

// Alias maps a lower-case nickname to a canonical symbol
type Alias struct {
	Key    string
	Symbol string
}

// DefaultAliases is scanned in declaration order; the first key found as a
// substring of the lower-cased text wins. Do not sort.
var DefaultAliases = []Alias{
	{"gold", "XAUUSD"},
	{"dax", "DE40"},
	{"spx", "US500"},
	{"nas", "USTEC"},
	{"btc", "BTCUSD"},
	{"eth", "ETHUSD"},
	{"gu", "GBPUSD"},
	{"uj", "USDJPY"},
	{"silver", "XAGUSD"},
}

var descriptionStopWords = map[string]bool{
	"long": true, "short": true, "vth": true, "hot": true,
	"stops": true, "comments": true, "call": true, "loss": true,
}

// Resolver maps free text to a canonical catalog symbol
type Resolver struct {
	catalog Catalog
	aliases []Alias
}

// NewResolver builds a resolver. A nil alias list selects DefaultAliases.
func NewResolver(catalog Catalog, aliases []Alias) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Resolver{catalog: catalog, aliases: aliases}
}

// Resolve runs the strategies in fixed order: stock suffix, alias, exact
// token, description. The first strategy that reaches a verdict ends the search.
func (r *Resolver) Resolve(text string) Resolution {
	tokens := strings.Fields(strings.ToUpper(text))

	if res, done := r.byStockSuffix(tokens); done {
		return res
	}
	if res, done := r.byAlias(strings.ToLower(text)); done {
		return res
	}
	for _, tok := range tokens {
		if _, ok := r.catalog.Lookup(tok); ok {
			return Resolution{Status: Found, Symbol: tok, Strategy: StrategyExactToken}
		}
	}
	return r.byDescription(text)
}

// byStockSuffix treats an explicit stock reference as authoritative: every
// suffixed token must exist, and the first one is returned.
func (r *Resolver) byStockSuffix(tokens []string) (Resolution, bool) {
	var first string
	for _, tok := range tokens {
		if !IsStock(tok) {
			continue
		}
		if _, ok := r.catalog.Lookup(tok); !ok {
			return Resolution{Status: NotFound, Strategy: StrategyStockSuffix}, true
		}
		if first == "" {
			first = tok
		}
	}
	if first == "" {
		return Resolution{}, false
	}
	return Resolution{Status: Found, Symbol: first, Strategy: StrategyStockSuffix}, true
}

func (r *Resolver) byAlias(lower string) (Resolution, bool) {
	for _, a := range r.aliases {
		if !strings.Contains(lower, a.Key) {
			continue
		}
		if _, ok := r.catalog.Lookup(a.Symbol); !ok {
			return Resolution{Status: NotFound, Strategy: StrategyAlias}, true
		}
		return Resolution{Status: Found, Symbol: a.Symbol, Strategy: StrategyAlias}, true
	}
	return Resolution{}, false
}

func (r *Resolver) byDescription(text string) Resolution {
	word := firstSearchWord(text)
	if word == "" {
		return Resolution{Status: NotFound, Strategy: StrategyDescription}
	}

	var matches []string
	for _, sym := range r.catalog.Symbols() {
		if !IsStock(sym) {
			continue
		}
		if strings.Contains(strings.ToLower(sym), word) {
			matches = append(matches, sym)
			continue
		}
		meta, ok := r.catalog.Lookup(sym)
		if ok && meta.Description != "" && strings.Contains(strings.ToLower(meta.Description), word) {
			matches = append(matches, sym)
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return Resolution{Status: NotFound, Word: word, Strategy: StrategyDescription}
	case 1:
		return Resolution{Status: Found, Symbol: matches[0], Word: word, Strategy: StrategyDescription}
	default:
		return Resolution{Status: Ambiguous, Candidates: matches, Word: word, Strategy: StrategyDescription}
	}
}

// firstSearchWord returns the first purely alphabetic token that is not a stop word
func firstSearchWord(text string) string {
	for _, tok := range strings.Fields(text) {
		w := strings.ToLower(tok)
		if descriptionStopWords[w] || !isAlpha(w) {
			continue
		}
		return w
	}
	return ""
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
