package venue

import (
	"errors"
	"fmt"
)

// Return codes reported by the terminal
const (
	RetcodeDone                = 10009
	RetcodeInvalidRequest      = 10013
	RetcodeInvalidVolume       = 10014
	RetcodeInvalidPrice        = 10015
	RetcodeInvalidStops        = 10016
	RetcodeAutoTradingDisabled = 10027
)

var (
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrTransport          = errors.New("venue transport failure")
)

// RejectedError is a venue refusing an order
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	if e.Code == RetcodeAutoTradingDisabled {
		return fmt.Sprintf("order rejected (%d): %s, check that autotrading is enabled in the terminal", e.Code, e.Message)
	}
	return fmt.Sprintf("order rejected (%d): %s", e.Code, e.Message)
}
