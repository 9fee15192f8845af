package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/models"
)

// NegligibleLossPerLot is the smallest per-lot loss that can be sized against
const NegligibleLossPerLot = 1e-4

// DefaultFallbackVolume is used for a leg whose sizing failed
const DefaultFallbackVolume = 0.1

var (
	ErrNegligibleRisk     = errors.New("potential loss per lot is zero or negligible, check SL and entry price")
	ErrNoMetadata         = errors.New("instrument metadata not available")
	ErrInvalidMetadata    = errors.New("instrument has no tick size")
	ErrBalanceUnavailable = errors.New("account balance unavailable")
)

// Input is everything needed to size every leg of one signal
type Input struct {
	Signal  models.TradeSignal
	Profile riskconfig.Profile
	Mode    riskconfig.Mode
	// Instrument is nil when the venue did not return metadata
	Instrument *models.InstrumentMetadata
	// Balance and BalanceErr are only consulted in RISK mode
	Balance    float64
	BalanceErr error
}

// LegSize is the outcome for one leg. Err is non-nil when Volume is the fallback.
type LegSize struct {
	Volume float64
	// RowValue is the lot (FIXED) or percentage (RISK) taken from the profile row
	RowValue float64
	Err      error
}

// Sizer computes a volume for every leg. It never fails the whole signal.
type Sizer struct {
	fallback float64
	logger   zerolog.Logger
}

func NewSizer(fallback float64, logger zerolog.Logger) *Sizer {
	if fallback <= 0 {
		fallback = DefaultFallbackVolume
	}
	return &Sizer{fallback: fallback, logger: logger.With().Str("component", "position_sizer").Logger()}
}

// Fallback returns the volume used for failed legs
func (s *Sizer) Fallback() float64 {
	return s.fallback
}

// Size returns exactly one LegSize per entry price
func (s *Sizer) Size(in Input) []LegSize {
	legs := in.Signal.Legs()
	out := make([]LegSize, legs)
	if legs == 0 {
		return out
	}

	kind := riskconfig.TableRisk
	if in.Mode == riskconfig.ModeFixed {
		kind = riskconfig.TableFixed
	}
	row, ok := in.Profile.Table(kind).Row(legs)
	if !ok {
		s.logger.Warn().Int("legs", legs).Str("table", string(kind)).Msg("No row for leg count, using uniform defaults")
		row = riskconfig.UniformRow(kind, legs)
	}

	for i, entry := range in.Signal.EntryPrices {
		rowValue := row[i]
		out[i].RowValue = rowValue

		if kind == riskconfig.TableFixed {
			out[i].Volume = rowValue
			if in.Instrument != nil {
				out[i].Volume = Clamp(rowValue, *in.Instrument)
			}
			continue
		}

		var (
			vol float64
			err error
		)
		switch {
		case in.BalanceErr != nil:
			err = fmt.Errorf("%w: %v", ErrBalanceUnavailable, in.BalanceErr)
		case in.Instrument == nil:
			err = ErrNoMetadata
		default:
			vol, err = LotSize(*in.Instrument, in.Balance, rowValue, entry, in.Signal.StopLoss)
		}
		if err != nil {
			s.logger.Warn().Err(err).Int("leg", i+1).Str("symbol", in.Signal.Symbol).
				Float64("fallback", s.fallback).Msg("Failed to calculate lot size")
			out[i] = LegSize{Volume: s.fallback, RowValue: rowValue, Err: err}
			continue
		}
		out[i].Volume = vol

		s.logger.Debug().Int("leg", i+1).Str("symbol", in.Signal.Symbol).
			Float64("risk_pct", rowValue).Float64("volume", vol).Msg("Sized leg")
	}
	return out
}

// LotSize computes the clamped volume that loses riskPct of balance if the
// stop is hit.
func LotSize(meta models.InstrumentMetadata, balance, riskPct, entry, stop float64) (float64, error) {
	tick := meta.TickSize
	if tick <= 0 {
		tick = meta.PointSize
	}
	if tick <= 0 {
		return 0, fmt.Errorf("%s: %w", meta.Symbol, ErrInvalidMetadata)
	}

	riskAmount := balance * riskPct / 100
	stopTicks := math.Abs(entry-stop) / tick
	lossPerLot := stopTicks * meta.TickValue
	if lossPerLot < NegligibleLossPerLot {
		return 0, ErrNegligibleRisk
	}

	return Clamp(riskAmount/lossPerLot, meta), nil
}

// Clamp bounds v to [MinVolume, MaxVolume]. Inside the bounds it is floored
// to a multiple of VolumeStep so the intended risk is never exceeded.
func Clamp(v float64, meta models.InstrumentMetadata) float64 {
	if meta.MinVolume > 0 && v < meta.MinVolume {
		return meta.MinVolume
	}
	if meta.MaxVolume > 0 && v > meta.MaxVolume {
		return meta.MaxVolume
	}
	if meta.VolumeStep <= 0 {
		return v
	}
	step := decimal.NewFromFloat(meta.VolumeStep)
	// float noise such as 0.09999999999999999 must not lose a whole step
	steps := decimal.NewFromFloat(v).Div(step).Round(8).Floor()
	floored := steps.Mul(step).InexactFloat64()
	if floored < meta.MinVolume {
		return meta.MinVolume
	}
	return floored
}
