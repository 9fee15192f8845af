package riskconfig

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/instrument"
)

// Store is the process-wide risk configuration. Every mutation is applied in
// memory and then the full document is saved before the call returns.
type Store struct {
	mu        sync.RWMutex
	doc       Document
	persister Persister
	logger    zerolog.Logger
}

type quarantiner interface {
	Quarantine() (string, error)
}

// Open loads the document, heals it with built-in defaults and writes the
// healed version back. A missing document starts from DefaultDocument; an
// undecodable one is quarantined when the persister supports it.
func Open(p Persister, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		persister: p,
		logger:    logger.With().Str("component", "risk_config").Logger(),
	}

	doc, err := p.Load()
	switch {
	case err == nil:
		s.logger.Info().Msg("Loaded existing risk configuration")
	case errors.Is(err, os.ErrNotExist):
		s.logger.Info().Msg("No risk configuration found, creating defaults")
		doc = DefaultDocument()
	case errors.Is(err, ErrCorrupt):
		s.logger.Error().Err(err).Msg("Risk configuration unreadable, starting from defaults")
		if q, ok := p.(quarantiner); ok {
			moved, qerr := q.Quarantine()
			if qerr != nil {
				return nil, fmt.Errorf("quarantine corrupt risk config: %w", qerr)
			}
			s.logger.Warn().Str("path", moved).Msg("Corrupt risk configuration moved aside")
		}
		doc = DefaultDocument()
	default:
		return nil, err
	}

	for _, note := range doc.heal() {
		s.logger.Warn().Str("repair", note).Msg("Healed risk configuration")
	}
	s.doc = doc

	if err := p.Save(s.doc); err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return s, nil
}

// Snapshot returns a deep copy of the current document
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Active returns the active profile name, its tables and the active mode
func (s *Store) Active() (string, Profile, Mode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.doc.Profiles[s.doc.ActiveProfile]
	return s.doc.ActiveProfile, p.clone(), s.doc.Mode
}

// Profile returns a copy of the named profile
func (s *Store) Profile(name string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.doc.Profiles[name]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// TakeProfit returns the configured target for a class key
func (s *Store) TakeProfit(classKey string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.TakeProfitTargets[normalizeClassKey(classKey)]
	return v, ok
}

func (s *Store) CreateProfile(name string) error {
	return s.mutate(func(d *Document) error {
		if _, ok := d.Profiles[name]; ok {
			return fmt.Errorf("configuration '%s' %w", name, ErrAlreadyExists)
		}
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("profile name is empty: %w", ErrMalformedValues)
		}
		d.Profiles[name] = DefaultProfileTables()
		return nil
	})
}

// DeleteProfile removes a profile; the active profile reverts to default if it was deleted
func (s *Store) DeleteProfile(name string) error {
	return s.mutate(func(d *Document) error {
		if name == DefaultProfile {
			return fmt.Errorf("cannot delete the default configuration: %w", ErrReservedProfile)
		}
		if _, ok := d.Profiles[name]; !ok {
			return fmt.Errorf("configuration '%s' %w", name, ErrNotFound)
		}
		delete(d.Profiles, name)
		if d.ActiveProfile == name {
			d.ActiveProfile = DefaultProfile
		}
		return nil
	})
}

func (s *Store) SetActive(name string) error {
	return s.mutate(func(d *Document) error {
		if _, ok := d.Profiles[name]; !ok {
			return fmt.Errorf("configuration '%s' %w", name, ErrNotFound)
		}
		d.ActiveProfile = name
		return nil
	})
}

func (s *Store) SetMode(m Mode) error {
	mode, err := ParseMode(string(m))
	if err != nil {
		return err
	}
	return s.mutate(func(d *Document) error {
		d.Mode = mode
		return nil
	})
}

// SetTable overwrites one row of a profile table
func (s *Store) SetTable(name string, kind TableKind, legs int, values []float64) error {
	if kind != TableFixed && kind != TableRisk {
		return fmt.Errorf("table kind %q: %w", kind, ErrMalformedValues)
	}
	if err := validateRow(kind, legs, values); err != nil {
		return err
	}
	row := append([]float64(nil), values...)
	return s.mutate(func(d *Document) error {
		p, ok := d.Profiles[name]
		if !ok {
			return fmt.Errorf("configuration '%s' %w", name, ErrNotFound)
		}
		if kind == TableRisk {
			p.RiskPercentages[legs] = row
		} else {
			p.FixedLots[legs] = row
		}
		d.Profiles[name] = p
		return nil
	})
}

// SetTakeProfit upserts a class target. Stock classes must be registered
// with AddStockClass first.
func (s *Store) SetTakeProfit(classKey string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("take-profit %v: %w", value, ErrMalformedValues)
	}
	key := normalizeClassKey(classKey)
	if key == "" {
		return fmt.Errorf("class key is empty: %w", ErrMalformedValues)
	}
	return s.mutate(func(d *Document) error {
		if _, ok := d.TakeProfitTargets[key]; !ok && instrument.IsStock(key) {
			return fmt.Errorf("stock symbol '%s' %w", key, ErrUnregisteredClass)
		}
		d.TakeProfitTargets[key] = value
		return nil
	})
}

// AddStockClass registers a stock class with no target. It reports false
// when the class already exists.
func (s *Store) AddStockClass(symbol string) (bool, error) {
	key := normalizeClassKey(symbol)
	if !instrument.IsStock(key) {
		return false, fmt.Errorf("symbol %q should end with %s: %w",
			symbol, strings.Join(instrument.StockSuffixes, " or "), ErrMalformedValues)
	}
	added := false
	err := s.mutate(func(d *Document) error {
		if _, ok := d.TakeProfitTargets[key]; ok {
			return errUnchanged
		}
		d.TakeProfitTargets[key] = 0
		added = true
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	return added, err
}

var errUnchanged = errors.New("unchanged")

// mutate applies fn under the write lock and saves the result. A rejected
// fn leaves the document untouched; a failed save keeps the change.
func (s *Store) mutate(fn func(d *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.doc = next

	if err := s.persister.Save(s.doc); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist risk configuration, in-memory change kept")
		return &PersistenceError{Err: err}
	}
	return nil
}

// normalizeClassKey upper-cases stock symbols and lower-cases everything else
func normalizeClassKey(k string) string {
	k = strings.TrimSpace(k)
	if instrument.IsStock(k) {
		return strings.ToUpper(k)
	}
	return strings.ToLower(k)
}
