package signal

// RescalePolicy repairs quotes written without a decimal point (61234 for
// 0.61234). It is a heuristic: a non-exempt symbol with a genuinely large
// second number is rescaled too.
type RescalePolicy struct {
	Threshold float64
	Divisor   float64
	Exempt    map[string]bool
}

// DefaultRescalePolicy returns the 30000 / 100000 rule with the large-nominal exemptions
func DefaultRescalePolicy() RescalePolicy {
	return NewRescalePolicy(30000, 100000, []string{"US30", "JP225", "BTCUSD", "USTEC"})
}

func NewRescalePolicy(threshold, divisor float64, exempt []string) RescalePolicy {
	p := RescalePolicy{Threshold: threshold, Divisor: divisor, Exempt: make(map[string]bool, len(exempt))}
	for _, s := range exempt {
		p.Exempt[s] = true
	}
	return p
}

// Apply returns the numbers divided by Divisor when the second number exceeds
// Threshold and symbol is not exempt, otherwise the input unchanged.
func (p RescalePolicy) Apply(symbol string, numbers []float64) ([]float64, bool) {
	if len(numbers) < 2 || p.Divisor == 0 || p.Exempt[symbol] {
		return numbers, false
	}
	if numbers[1] <= p.Threshold {
		return numbers, false
	}
	out := make([]float64, len(numbers))
	for i, n := range numbers {
		out[i] = n / p.Divisor
	}
	return out, true
}
