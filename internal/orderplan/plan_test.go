package orderplan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SignalBridge/internal/riskconfig"
	"github.com/Alias1177/SignalBridge/internal/trading/risk"
	"github.com/Alias1177/SignalBridge/internal/venue"
	"github.com/Alias1177/SignalBridge/models"
)

type memRecorder struct {
	mu   sync.Mutex
	recs []models.OrderRecord
	err  error
}

func (m *memRecorder) RecordLeg(_ context.Context, rec *models.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, *rec)
	return m.err
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T) *riskconfig.Store {
	t.Helper()
	store, err := riskconfig.Open(riskconfig.NewFilePersister(filepath.Join(t.TempDir(), "risk.json")), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func newBuilder(v venue.Venue, store *riskconfig.Store, rec Recorder) *Builder {
	return NewBuilder(v, store, risk.NewSizer(0.1, zerolog.Nop()), Options{
		LegTimeout: 200 * time.Millisecond,
		Recorder:   rec,
		NewID:      sequentialIDs(),
	}, zerolog.Nop())
}

func goldSignal(entries ...float64) models.TradeSignal {
	return models.TradeSignal{
		Symbol:      "XAUUSD",
		Direction:   models.Long,
		EntryPrices: entries,
		StopLoss:    1949.0,
		Expiry:      models.ExpiryWeek,
		Comment:     "vth",
	}
}

func TestGoldSignalEndToEnd(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SetTakeProfit("gold", 10))
	paper := venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop())
	rec := &memRecorder{}

	report := newBuilder(paper, store, rec).Run(context.Background(), goldSignal(1950.5))

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, 1, report.Placed)
	leg := report.Outcomes[0].Leg
	require.NotNil(t, leg.TakeProfit)
	assert.Equal(t, 1960.5, *leg.TakeProfit)
	assert.Equal(t, models.OrderLimit, leg.Kind)

	orders := paper.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "id-2", orders[0].ClientOrderID)
	assert.Equal(t, models.ExpiryWeek, orders[0].Expiry)

	assert.Equal(t, "Placed 1/1 trades using risk mode with 'default' configuration", report.Summary())

	require.Len(t, rec.recs, 1)
	assert.Equal(t, "id-1", rec.recs[0].CorrelationID)
	assert.Equal(t, models.LegPlaced, rec.recs[0].Status)
	assert.Equal(t, int64(1), rec.recs[0].Ticket)
}

func TestFixedModeUsesConfiguredRow(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.SetMode(riskconfig.ModeFixed))
	require.NoError(t, store.SetTable(riskconfig.DefaultProfile, riskconfig.TableFixed, 3, []float64{0.1, 0.2, 0.3}))
	paper := venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop())

	report := newBuilder(paper, store, nil).Run(context.Background(), goldSignal(1950, 1952, 1954))

	require.Len(t, report.Plan.Legs, 3)
	for i, want := range []float64{0.1, 0.2, 0.3} {
		assert.InDelta(t, want, report.Plan.Legs[i].Volume, 1e-9)
	}
	assert.Equal(t, 3, report.Placed)
	assert.True(t, strings.HasPrefix(report.Summary(), "Placed 3/3 trades using fixed mode with 'default' configuration"))
}

func TestLegCountMatchesEntries(t *testing.T) {
	store := newStore(t)
	paper := venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop())
	b := newBuilder(paper, store, nil)

	for n := 1; n <= 8; n++ {
		entries := make([]float64, n)
		for i := range entries {
			entries[i] = 1950 + float64(i)
		}
		plan := b.Build(context.Background(), goldSignal(entries...))
		require.Len(t, plan.Legs, n)
		for i, leg := range plan.Legs {
			assert.Equal(t, i, leg.Index)
			assert.Equal(t, entries[i], leg.EntryPrice)
		}
	}
}

func TestZeroStopDistanceStillSubmitted(t *testing.T) {
	store := newStore(t)
	paper := venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop())
	rec := &memRecorder{}

	sig := goldSignal(1949.0, 1951.0)
	report := newBuilder(paper, store, rec).Run(context.Background(), sig)

	require.Len(t, report.Outcomes, 2)
	assert.ErrorIs(t, report.Outcomes[0].Leg.SizingErr, risk.ErrNegligibleRisk)
	assert.Equal(t, 0.1, report.Outcomes[0].Leg.Volume)
	assert.Equal(t, 2, report.Placed, "fallback leg is still submitted")
	assert.Equal(t, 1, report.SizingFailures())

	summary := report.Summary()
	assert.Contains(t, summary, "Placed 2/2 trades")
	assert.Contains(t, summary, "Sizing failed for 1 leg(s)")
	assert.Contains(t, summary, "leg 1 @ 1949")

	assert.Contains(t, rec.recs[0].Reason, "negligible")
}

func TestBalanceFailureUsesFallback(t *testing.T) {
	store := newStore(t)
	paper := venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop())
	paper.FailBalance(errors.New("terminal offline"))

	report := newBuilder(paper, store, nil).Run(context.Background(), goldSignal(1950, 1952))

	assert.Equal(t, 2, report.SizingFailures())
	for _, o := range report.Outcomes {
		assert.ErrorIs(t, o.Leg.SizingErr, risk.ErrBalanceUnavailable)
	}
}

// scriptedVenue wraps a paper venue and fails chosen submissions
type scriptedVenue struct {
	*venue.Paper
	fail map[int]error
	hang map[int]bool
	n    int
}

func (s *scriptedVenue) SubmitOrder(ctx context.Context, req venue.OrderRequest) (venue.OrderResult, error) {
	s.n++
	if s.hang[s.n] {
		<-ctx.Done()
		return venue.OrderResult{}, ctx.Err()
	}
	if err := s.fail[s.n]; err != nil {
		return venue.OrderResult{}, err
	}
	return s.Paper.SubmitOrder(ctx, req)
}

func TestFailedLegDoesNotStopOthers(t *testing.T) {
	store := newStore(t)
	v := &scriptedVenue{
		Paper: venue.NewPaper(venue.DefaultInstruments(), 10000, zerolog.Nop()),
		fail:  map[int]error{2: &venue.RejectedError{Code: venue.RetcodeAutoTradingDisabled, Message: "AutoTrading disabled"}},
		hang:  map[int]bool{3: true},
	}
	rec := &memRecorder{err: errors.New("journal down")}

	report := newBuilder(v, store, rec).Run(context.Background(), goldSignal(1950, 1952, 1954, 1956))

	assert.Equal(t, 2, report.Placed)
	require.Len(t, report.Outcomes, 4)
	assert.True(t, report.Outcomes[0].Placed())
	assert.False(t, report.Outcomes[1].Placed())
	assert.ErrorIs(t, report.Outcomes[2].Err, venue.ErrTransport)
	assert.ErrorIs(t, report.Outcomes[2].Err, context.DeadlineExceeded)
	assert.True(t, report.Outcomes[3].Placed())

	summary := report.Summary()
	assert.Contains(t, summary, "Placed 2/4 trades")
	assert.Contains(t, summary, "Failed to place 2 leg(s):")
	assert.Contains(t, summary, "autotrading is enabled")
	assert.Contains(t, summary, "timed out")

	assert.Len(t, rec.recs, 4, "journal errors are ignored")
	assert.Equal(t, models.LegFailed, rec.recs[1].Status)
}

func TestUnknownInstrumentHasNoTarget(t *testing.T) {
	store := newStore(t)
	paper := venue.NewPaper(nil, 10000, zerolog.Nop())

	report := newBuilder(paper, store, nil).Run(context.Background(), goldSignal(1950))

	require.Len(t, report.Outcomes, 1)
	assert.Nil(t, report.Plan.Instrument)
	assert.Nil(t, report.Outcomes[0].Leg.TakeProfit)
	assert.ErrorIs(t, report.Outcomes[0].Leg.SizingErr, risk.ErrNoMetadata)
	assert.Equal(t, 0, report.Placed)
}
