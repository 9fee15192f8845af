package models

import (
	"fmt"
	"strings"
)

// Direction is the side of a trade signal
type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// Sign returns +1 for LONG and -1 for SHORT
func (d Direction) Sign() float64 {
	if d == Short {
		return -1
	}
	return 1
}

// ParseDirection accepts "long" / "short" in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Long):
		return Long, nil
	case string(Short):
		return Short, nil
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// ExpiryPolicy controls how long a pending order stays live
type ExpiryPolicy string

const (
	ExpiryDay   ExpiryPolicy = "DAY"
	ExpiryWeek  ExpiryPolicy = "WEEK"
	ExpiryAlien ExpiryPolicy = "ALIEN" // good till cancelled
)

// OrderKind is the execution type sent to the venue
type OrderKind string

const (
	OrderMarket OrderKind = "MARKET"
	OrderLimit  OrderKind = "LIMIT"
)

// TradeSignal is the structured form of one inbound alert
type TradeSignal struct {
	Symbol      string       `json:"symbol"`
	Direction   Direction    `json:"direction"`
	EntryPrices []float64    `json:"entry_prices"`
	StopLoss    float64      `json:"stop_loss"`
	Expiry      ExpiryPolicy `json:"expiry"`
	Comment     string       `json:"comment,omitempty"`
}

// Legs returns the number of orders the signal expands to
func (s TradeSignal) Legs() int {
	return len(s.EntryPrices)
}

// OrderLeg is one order derived from one entry price
type OrderLeg struct {
	Index      int          `json:"index"`
	Symbol     string       `json:"symbol"`
	Direction  Direction    `json:"direction"`
	Kind       OrderKind    `json:"kind"`
	Volume     float64      `json:"volume"`
	EntryPrice float64      `json:"entry_price"`
	StopLoss   float64      `json:"stop_loss"`
	TakeProfit *float64     `json:"take_profit,omitempty"`
	Expiry     ExpiryPolicy `json:"expiry"`
	Comment    string       `json:"comment,omitempty"`

	// SizingErr is set when the volume is the fallback volume
	SizingErr error `json:"-"`
}
