// Package orderplan expands a parsed signal into sized order legs and
// submits them to a venue.
package orderplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/internal/trading/risk"
	"github.com/Alias1177/SignalBridge/internal/trading/takeprofit"
	"github.com/Alias1177/SignalBridge/internal/venue"
	"github.com/Alias1177/SignalBridge/models"
)

// DefaultLegTimeout bounds every venue call
const DefaultLegTimeout = 15 * time.Second

// Recorder journals leg outcomes. Failures are logged and ignored.
type Recorder interface {
	RecordLeg(ctx context.Context, rec *models.OrderRecord) error
}

type Options struct {
	LegTimeout time.Duration
	Recorder   Recorder
	// NewID generates correlation and client order ids; uuid.NewString when nil
	NewID func() string
}

// Builder turns signals into plans and executes them
type Builder struct {
	venue      venue.Venue
	store      *riskconfig.Store
	sizer      *risk.Sizer
	tp         *takeprofit.Calculator
	recorder   Recorder
	legTimeout time.Duration
	newID      func() string
	logger     zerolog.Logger
}

func NewBuilder(v venue.Venue, store *riskconfig.Store, sizer *risk.Sizer, opts Options, logger zerolog.Logger) *Builder {
	if opts.LegTimeout <= 0 {
		opts.LegTimeout = DefaultLegTimeout
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Builder{
		venue:      v,
		store:      store,
		sizer:      sizer,
		tp:         takeprofit.NewCalculator(store),
		recorder:   opts.Recorder,
		legTimeout: opts.LegTimeout,
		newID:      opts.NewID,
		logger:     logger.With().Str("component", "order_plan").Logger(),
	}
}

// Plan is a signal expanded into one leg per entry price
type Plan struct {
	CorrelationID string
	Signal        models.TradeSignal
	Profile       string
	Mode          riskconfig.Mode
	// Instrument is nil when the venue could not describe the symbol
	Instrument *models.InstrumentMetadata
	Legs       []models.OrderLeg
}

// Build sizes every leg and attaches take-profit targets. It never fails:
// problems are recorded on the legs and surface when the plan executes.
func (b *Builder) Build(ctx context.Context, sig models.TradeSignal) Plan {
	profileName, profile, mode := b.store.Active()
	plan := Plan{
		CorrelationID: b.newID(),
		Signal:        sig,
		Profile:       profileName,
		Mode:          mode,
	}
	log := b.logger.With().Str("correlation_id", plan.CorrelationID).Str("symbol", sig.Symbol).Logger()

	meta, err := b.instrument(ctx, sig.Symbol)
	if err != nil {
		log.Warn().Err(err).Msg("Instrument metadata unavailable")
	} else {
		plan.Instrument = &meta
	}

	in := risk.Input{Signal: sig, Profile: profile, Mode: mode, Instrument: plan.Instrument}
	if mode == riskconfig.ModeRisk {
		in.Balance, in.BalanceErr = b.balance(ctx)
		if in.BalanceErr != nil {
			log.Warn().Err(in.BalanceErr).Msg("Failed to get account balance")
		}
	}
	sizes := b.sizer.Size(in)

	plan.Legs = make([]models.OrderLeg, len(sig.EntryPrices))
	for i, entry := range sig.EntryPrices {
		leg := models.OrderLeg{
			Index:      i,
			Symbol:     sig.Symbol,
			Direction:  sig.Direction,
			Kind:       models.OrderLimit,
			Volume:     sizes[i].Volume,
			EntryPrice: entry,
			StopLoss:   sig.StopLoss,
			Expiry:     sig.Expiry,
			Comment:    sig.Comment,
			SizingErr:  sizes[i].Err,
		}
		if plan.Instrument != nil {
			digits := plan.Instrument.Digits
			leg.EntryPrice = venue.RoundPrice(entry, digits)
			leg.StopLoss = venue.RoundPrice(sig.StopLoss, digits)
			if tp, ok := b.tp.Target(sig.Symbol, sig.Direction, entry, digits); ok {
				leg.TakeProfit = &tp
			}
		}
		plan.Legs[i] = leg
	}

	log.Info().Str("profile", plan.Profile).Str("mode", string(plan.Mode)).Int("legs", len(plan.Legs)).Msg("Built order plan")
	return plan
}

func (b *Builder) instrument(ctx context.Context, symbol string) (models.InstrumentMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, b.legTimeout)
	defer cancel()
	return b.venue.Instrument(ctx, symbol)
}

func (b *Builder) balance(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, b.legTimeout)
	defer cancel()
	return b.venue.AccountBalance(ctx)
}

// LegOutcome is the result of submitting one leg
type LegOutcome struct {
	Leg           models.OrderLeg
	ClientOrderID string
	Result        venue.OrderResult
	Err           error
}

func (o LegOutcome) Placed() bool {
	return o.Err == nil
}

// Execute submits legs one at a time in entry order. A failed leg does not
// stop the others and nothing already placed is undone.
func (b *Builder) Execute(ctx context.Context, plan Plan) Report {
	report := Report{Plan: plan, Outcomes: make([]LegOutcome, 0, len(plan.Legs))}

	for _, leg := range plan.Legs {
		out := LegOutcome{Leg: leg, ClientOrderID: b.newID()}
		log := b.logger.With().Str("correlation_id", plan.CorrelationID).Str("symbol", leg.Symbol).
			Int("leg", leg.Index+1).Str("client_order_id", out.ClientOrderID).Logger()

		log.Debug().Float64("volume", leg.Volume).Float64("price", leg.EntryPrice).
			Float64("sl", leg.StopLoss).Msg("Submitting leg")
		out.Result, out.Err = b.submit(ctx, venue.RequestFromLeg(leg, out.ClientOrderID))
		if out.Err != nil {
			log.Warn().Err(out.Err).Msg("Leg not placed")
		} else {
			report.Placed++
		}

		report.Outcomes = append(report.Outcomes, out)
		b.record(ctx, plan, out)
	}

	b.logger.Info().Str("correlation_id", plan.CorrelationID).Str("symbol", plan.Signal.Symbol).
		Int("placed", report.Placed).Int("legs", len(plan.Legs)).Msg("Order plan executed")
	return report
}

// Run builds and executes a plan for sig
func (b *Builder) Run(ctx context.Context, sig models.TradeSignal) Report {
	return b.Execute(ctx, b.Build(ctx, sig))
}

func (b *Builder) submit(ctx context.Context, req venue.OrderRequest) (venue.OrderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.legTimeout)
	defer cancel()

	res, err := b.venue.SubmitOrder(ctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, venue.ErrTransport) {
		err = fmt.Errorf("%w: timed out after %s: %w", venue.ErrTransport, b.legTimeout, err)
	}
	return res, err
}

func (b *Builder) record(ctx context.Context, plan Plan, out LegOutcome) {
	if b.recorder == nil {
		return
	}

	rec := &models.OrderRecord{
		CorrelationID: plan.CorrelationID,
		ClientOrderID: out.ClientOrderID,
		LegIndex:      out.Leg.Index,
		Symbol:        out.Leg.Symbol,
		Direction:     out.Leg.Direction,
		Kind:          out.Leg.Kind,
		Volume:        out.Leg.Volume,
		EntryPrice:    out.Leg.EntryPrice,
		StopLoss:      out.Leg.StopLoss,
		TakeProfit:    out.Leg.TakeProfit,
		Expiry:        out.Leg.Expiry,
		Comment:       out.Leg.Comment,
		Profile:       plan.Profile,
		Mode:          string(plan.Mode),
		Status:        models.LegPlaced,
		Ticket:        int64(out.Result.Ticket),
	}
	if out.Err != nil {
		rec.Status = models.LegFailed
		rec.Reason = out.Err.Error()
	} else if out.Leg.SizingErr != nil {
		rec.Reason = out.Leg.SizingErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.legTimeout)
	defer cancel()
	if err := b.recorder.RecordLeg(ctx, rec); err != nil {
		b.logger.Error().Err(err).Str("client_order_id", out.ClientOrderID).Msg("Failed to journal leg")
	}
}
