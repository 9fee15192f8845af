package orderplan

import (
	"fmt"
	"strconv"
	"strings"
)

// Report is what happened to every leg of an executed plan
type Report struct {
	Plan     Plan
	Outcomes []LegOutcome
	Placed   int
}

// SizingFailures counts legs submitted with the fallback volume
func (r Report) SizingFailures() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Leg.SizingErr != nil {
			n++
		}
	}
	return n
}

// Summary is the reply sent back to the chat
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Placed %d/%d trades using %s mode with '%s' configuration",
		r.Placed, len(r.Plan.Legs), r.Plan.Mode, r.Plan.Profile)

	if n := r.SizingFailures(); n > 0 {
		fmt.Fprintf(&b, "\nSizing failed for %d leg(s), fallback volume used:", n)
		for _, o := range r.Outcomes {
			if o.Leg.SizingErr != nil {
				fmt.Fprintf(&b, "\n• leg %d @ %s: %v (volume %s)",
					o.Leg.Index+1, price(o.Leg.EntryPrice), o.Leg.SizingErr, price(o.Leg.Volume))
			}
		}
	}

	if failed := len(r.Outcomes) - r.Placed; failed > 0 {
		fmt.Fprintf(&b, "\nFailed to place %d leg(s):", failed)
		for _, o := range r.Outcomes {
			if o.Err != nil {
				fmt.Fprintf(&b, "\n• leg %d @ %s: %v", o.Leg.Index+1, price(o.Leg.EntryPrice), o.Err)
			}
		}
	}
	return b.String()
}

func price(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
