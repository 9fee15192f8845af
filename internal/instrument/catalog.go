package instrument

import (
	"sort"

	"github.com/Alias1177/SignalBridge/models"
)

// Catalog is a read-only view of the venue's tradable symbols
type Catalog interface {
	// Symbols returns every symbol name in ascending order
	Symbols() []string
	Lookup(symbol string) (models.InstrumentMetadata, bool)
}

// Snapshot is an immutable Catalog captured at startup
type Snapshot struct {
	bySymbol map[string]models.InstrumentMetadata
	symbols  []string
}

// NewSnapshot copies the given metadata into a new catalog.
// Later entries win when a symbol appears twice.
func NewSnapshot(items []models.InstrumentMetadata) *Snapshot {
	s := &Snapshot{bySymbol: make(map[string]models.InstrumentMetadata, len(items))}
	for _, it := range items {
		if it.Symbol == "" {
			continue
		}
		s.bySymbol[it.Symbol] = it
	}
	s.symbols = make([]string, 0, len(s.bySymbol))
	for sym := range s.bySymbol {
		s.symbols = append(s.symbols, sym)
	}
	sort.Strings(s.symbols)
	return s
}

func (s *Snapshot) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

func (s *Snapshot) Lookup(symbol string) (models.InstrumentMetadata, bool) {
	m, ok := s.bySymbol[symbol]
	return m, ok
}

// Len returns the number of instruments in the snapshot
func (s *Snapshot) Len() int {
	return len(s.symbols)
}
