package models

import "time"

// LegStatus is the final state of one submitted leg
type LegStatus string

const (
	LegPlaced LegStatus = "placed"
	LegFailed LegStatus = "failed"
)

// OrderRecord is one journal row describing a leg and its outcome
type OrderRecord struct {
	ID            int64        `json:"id"`
	CorrelationID string       `json:"correlation_id"`
	ClientOrderID string       `json:"client_order_id"`
	LegIndex      int          `json:"leg_index"`
	Symbol        string       `json:"symbol"`
	Direction     Direction    `json:"direction"`
	Kind          OrderKind    `json:"kind"`
	Volume        float64      `json:"volume"`
	EntryPrice    float64      `json:"entry_price"`
	StopLoss      float64      `json:"stop_loss"`
	TakeProfit    *float64     `json:"take_profit,omitempty"`
	Expiry        ExpiryPolicy `json:"expiry"`
	Comment       string       `json:"comment,omitempty"`
	Profile       string       `json:"profile"`
	Mode          string       `json:"mode"`
	Status        LegStatus    `json:"status"`
	Reason        string       `json:"reason,omitempty"`
	Ticket        int64        `json:"ticket,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
