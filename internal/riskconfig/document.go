package riskconfig

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Mode selects how leg volumes are computed
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeRisk  Mode = "risk"
)

// ParseMode accepts "fixed" or "risk" in any case
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFixed:
		return ModeFixed, nil
	case ModeRisk:
		return ModeRisk, nil
	}
	return "", fmt.Errorf("mode %q: %w", s, ErrMalformedValues)
}

// TableKind names one of the two per-profile tables
type TableKind string

const (
	TableFixed TableKind = "fixed"
	TableRisk  TableKind = "risk"
)

const (
	MinLegs = 1
	MaxLegs = 8

	DefaultProfile = "default"
)

// Table maps a leg count (1..8) to one value per leg
type Table map[int][]float64

// Row returns the values for legs if the row is present and well formed
func (t Table) Row(legs int) ([]float64, bool) {
	row, ok := t[legs]
	if !ok || len(row) != legs {
		return nil, false
	}
	return row, true
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for k, v := range t {
		out[k] = append([]float64(nil), v...)
	}
	return out
}

// LegCounts returns the populated leg counts in ascending order
func (t Table) LegCounts() []int {
	keys := make([]int, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Profile is a named pair of sizing tables
type Profile struct {
	FixedLots       Table `json:"fixedLots" yaml:"fixedLots"`
	RiskPercentages Table `json:"riskPercentages" yaml:"riskPercentages"`
}

// Table returns the table of the given kind
func (p Profile) Table(kind TableKind) Table {
	if kind == TableRisk {
		return p.RiskPercentages
	}
	return p.FixedLots
}

func (p Profile) clone() Profile {
	return Profile{FixedLots: p.FixedLots.clone(), RiskPercentages: p.RiskPercentages.clone()}
}

// Document is the persisted configuration record
type Document struct {
	ActiveProfile     string             `json:"activeProfile" yaml:"activeProfile"`
	Mode              Mode               `json:"mode" yaml:"mode"`
	Profiles          map[string]Profile `json:"profiles" yaml:"profiles"`
	TakeProfitTargets map[string]float64 `json:"takeProfitTargets" yaml:"takeProfitTargets"`
}

// Clone returns a deep copy
func (d Document) Clone() Document {
	out := Document{
		ActiveProfile:     d.ActiveProfile,
		Mode:              d.Mode,
		Profiles:          make(map[string]Profile, len(d.Profiles)),
		TakeProfitTargets: make(map[string]float64, len(d.TakeProfitTargets)),
	}
	for name, p := range d.Profiles {
		out.Profiles[name] = p.clone()
	}
	for k, v := range d.TakeProfitTargets {
		out.TakeProfitTargets[k] = v
	}
	return out
}

// ProfileNames returns profile names sorted, with the default profile first
func (d Document) ProfileNames() []string {
	names := make([]string, 0, len(d.Profiles))
	for name := range d.Profiles {
		if name != DefaultProfile {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := d.Profiles[DefaultProfile]; ok {
		names = append([]string{DefaultProfile}, names...)
	}
	return names
}

// validateRow checks a row against its leg count before it enters a table
func validateRow(kind TableKind, legs int, values []float64) error {
	if legs < MinLegs || legs > MaxLegs {
		return fmt.Errorf("number of limits must be between %d and %d: %w", MinLegs, MaxLegs, ErrInvalidRange)
	}
	if len(values) != legs {
		return fmt.Errorf("expected %d values, got %d: %w", legs, len(values), ErrMalformedValues)
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("value %v must be a positive number: %w", v, ErrMalformedValues)
		}
		if kind == TableRisk && v > 100 {
			return fmt.Errorf("risk percentage %v exceeds 100: %w", v, ErrMalformedValues)
		}
	}
	return nil
}
