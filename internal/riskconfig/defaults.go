package riskconfig

import (
	"fmt"
	"math"
)

var defaultFixedLots = Table{
	1: {0.50},
	2: {0.25, 0.25},
	3: {0.10, 0.20, 0.30},
	4: {0.10, 0.15, 0.15, 0.20},
	5: {0.10, 0.10, 0.10, 0.15, 0.15},
	6: {0.10, 0.10, 0.10, 0.10, 0.10, 0.10},
	7: {0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10},
	8: {0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10},
}

var defaultRiskPercentages = Table{
	1: {10.0},
	2: {5.0, 5.0},
	3: {3.0, 3.0, 4.0},
	4: {2.0, 2.0, 3.0, 3.0},
	5: {1.5, 1.5, 2.0, 2.0, 3.0},
	6: {1.0, 1.0, 1.5, 1.5, 2.0, 2.0},
	7: {1.0, 1.0, 1.0, 1.0, 1.5, 1.5, 2.0},
	8: {1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 2.0, 2.0},
}

// Uniform values used when a profile has no row for a leg count
const (
	UniformFixedLot    = 0.1
	UniformRiskPercent = 1.0
)

// DefaultTakeProfitClasses are always present in the take-profit table; 0 means no target
var DefaultTakeProfitClasses = []string{
	"forex", "btc", "eth", "us30", "us500", "ustec", "de40", "fr40", "gold", "silver", "oil",
}

// DefaultProfileTables returns a fresh copy of the built-in tables
func DefaultProfileTables() Profile {
	return Profile{FixedLots: defaultFixedLots.clone(), RiskPercentages: defaultRiskPercentages.clone()}
}

// UniformRow returns the built-in fallback row for legs
func UniformRow(kind TableKind, legs int) []float64 {
	v := UniformFixedLot
	if kind == TableRisk {
		v = UniformRiskPercent
	}
	row := make([]float64, legs)
	for i := range row {
		row[i] = v
	}
	return row
}

// DefaultDocument returns the document written on first start
func DefaultDocument() Document {
	d := Document{
		ActiveProfile:     DefaultProfile,
		Mode:              ModeRisk,
		Profiles:          map[string]Profile{DefaultProfile: DefaultProfileTables()},
		TakeProfitTargets: make(map[string]float64, len(DefaultTakeProfitClasses)),
	}
	for _, k := range DefaultTakeProfitClasses {
		d.TakeProfitTargets[k] = 0
	}
	return d
}

// Heal returns a repaired copy of doc and a description of every repair
func Heal(doc Document) (Document, []string) {
	healed := doc.Clone()
	notes := healed.heal()
	return healed, notes
}

// heal adds missing profiles, tables and take-profit classes, drops invalid
// rows and returns a description of every repair.
func (d *Document) heal() []string {
	var notes []string

	if d.Profiles == nil {
		d.Profiles = make(map[string]Profile)
	}
	if _, ok := d.Profiles[DefaultProfile]; !ok {
		d.Profiles[DefaultProfile] = DefaultProfileTables()
		notes = append(notes, "added default profile")
	}

	for name, p := range d.Profiles {
		p.FixedLots, notes = healTable(name, TableFixed, p.FixedLots, defaultFixedLots, notes)
		p.RiskPercentages, notes = healTable(name, TableRisk, p.RiskPercentages, defaultRiskPercentages, notes)
		d.Profiles[name] = p
	}

	if _, ok := d.Profiles[d.ActiveProfile]; !ok {
		notes = append(notes, fmt.Sprintf("active profile %q missing, reverted to %s", d.ActiveProfile, DefaultProfile))
		d.ActiveProfile = DefaultProfile
	}
	if m, err := ParseMode(string(d.Mode)); err != nil {
		notes = append(notes, fmt.Sprintf("invalid mode %q, reverted to %s", d.Mode, ModeRisk))
		d.Mode = ModeRisk
	} else {
		d.Mode = m
	}

	healed := make(map[string]float64, len(d.TakeProfitTargets)+len(DefaultTakeProfitClasses))
	for k, v := range d.TakeProfitTargets {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			notes = append(notes, fmt.Sprintf("invalid take-profit for %s reset to 0", k))
			v = 0
		}
		healed[normalizeClassKey(k)] = v
	}
	for _, k := range DefaultTakeProfitClasses {
		if _, ok := healed[k]; !ok {
			healed[k] = 0
			notes = append(notes, fmt.Sprintf("added take-profit class %s", k))
		}
	}
	d.TakeProfitTargets = healed
	return notes
}

// healTable replaces a missing table with the built-in one. Rows of a present
// table are never filled in: invalid rows are dropped so sizing falls back to
// UniformRow for that leg count.
func healTable(profile string, kind TableKind, t, defaults Table, notes []string) (Table, []string) {
	if t == nil {
		notes = append(notes, fmt.Sprintf("%s: added %s table", profile, kind))
		return defaults.clone(), notes
	}
	for legs, row := range t {
		if legs < MinLegs || legs > MaxLegs || validateRow(kind, legs, row) != nil {
			delete(t, legs)
			notes = append(notes, fmt.Sprintf("%s: dropped invalid %s row for %d legs", profile, kind, legs))
		}
	}
	return t, notes
}
