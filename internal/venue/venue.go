// Package venue submits order legs to a trading venue.
package venue

import (
	"context"

	"github.com/Alias1177/SignalBridge/models"
)

const (
	// Magic tags every order this process places
	Magic = 234000
	// Deviation is the accepted slippage in points
	Deviation = 20
)

// Venue is the trading account orders are sent to
type Venue interface {
	// Instrument returns ErrInstrumentNotFound for unknown symbols
	Instrument(ctx context.Context, symbol string) (models.InstrumentMetadata, error)
	Instruments(ctx context.Context) ([]models.InstrumentMetadata, error)
	AccountBalance(ctx context.Context) (float64, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
}

// OrderRequest is one leg ready for submission. Prices are already rounded
// to the instrument's digits.
type OrderRequest struct {
	ClientOrderID string              `json:"client_order_id"`
	Symbol        string              `json:"symbol"`
	Direction     models.Direction    `json:"direction"`
	Kind          models.OrderKind    `json:"kind"`
	Volume        float64             `json:"volume"`
	Price         float64             `json:"price"`
	StopLoss      float64             `json:"stop_loss"`
	TakeProfit    *float64            `json:"take_profit,omitempty"`
	Comment       string              `json:"comment,omitempty"`
	Expiry        models.ExpiryPolicy `json:"expiry"`
}

// OrderResult is a venue's acknowledgement of an accepted order
type OrderResult struct {
	Ticket  uint64 `json:"ticket"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RequestFromLeg converts a sized leg into a submission request
func RequestFromLeg(leg models.OrderLeg, clientOrderID string) OrderRequest {
	return OrderRequest{
		ClientOrderID: clientOrderID,
		Symbol:        leg.Symbol,
		Direction:     leg.Direction,
		Kind:          leg.Kind,
		Volume:        leg.Volume,
		Price:         leg.EntryPrice,
		StopLoss:      leg.StopLoss,
		TakeProfit:    leg.TakeProfit,
		Comment:       leg.Comment,
		Expiry:        leg.Expiry,
	}
}
