package signal

import (
	"fmt"
	"strings"
)

// Reason classifies why a message could not be parsed as a trade signal
type Reason string

const (
	ReasonNoSymbol            Reason = "no-symbol"
	ReasonAmbiguousSymbol     Reason = "ambiguous-symbol"
	ReasonNoDirection         Reason = "no-direction"
	ReasonInsufficientNumbers Reason = "insufficient-numbers"
	ReasonTooManyEntries      Reason = "too-many-entries"
)

// ParseError aborts the whole signal; its message is shown to the sender verbatim
type ParseError struct {
	Reason     Reason
	Word       string
	Candidates []string
	Count      int
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case ReasonNoSymbol:
		return "No valid trading symbol found in string"
	case ReasonAmbiguousSymbol:
		return fmt.Sprintf("Several matches were found for %s. Please specify the symbol with one of the following:\n* %s",
			e.Word, strings.Join(e.Candidates, "\n* "))
	case ReasonNoDirection:
		return "Position (long/short) not found in string"
	case ReasonInsufficientNumbers:
		return "Not enough numbers found in string. There must be at least 1 limit price and 1 stop loss."
	case ReasonTooManyEntries:
		return fmt.Sprintf("Too many entry prices (%d). At most %d limits are supported.", e.Count, MaxEntries)
	default:
		return string(e.Reason)
	}
}
