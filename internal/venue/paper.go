package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/SignalBridge/models"
)

// Paper is an in-memory venue. It validates orders the way the terminal
// would and keeps every accepted request.
type Paper struct {
	mu          sync.Mutex
	instruments map[string]models.InstrumentMetadata
	balance     float64
	balanceErr  error
	orders      []OrderRequest
	nextTicket  uint64
	logger      zerolog.Logger
}

func NewPaper(instruments []models.InstrumentMetadata, balance float64, logger zerolog.Logger) *Paper {
	p := &Paper{
		instruments: make(map[string]models.InstrumentMetadata, len(instruments)),
		balance:     balance,
		nextTicket:  1,
		logger:      logger.With().Str("component", "paper_venue").Logger(),
	}
	for _, in := range instruments {
		p.instruments[strings.ToUpper(in.Symbol)] = in
	}
	return p
}

// FailBalance makes AccountBalance return err until called with nil
func (p *Paper) FailBalance(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balanceErr = err
}

func (p *Paper) Instrument(_ context.Context, symbol string) (models.InstrumentMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in, ok := p.instruments[strings.ToUpper(symbol)]
	if !ok {
		return models.InstrumentMetadata{}, fmt.Errorf("%s: %w", symbol, ErrInstrumentNotFound)
	}
	return in, nil
}

func (p *Paper) Instruments(_ context.Context) ([]models.InstrumentMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.InstrumentMetadata, 0, len(p.instruments))
	for _, in := range p.instruments {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (p *Paper) AccountBalance(_ context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.balanceErr != nil {
		return 0, p.balanceErr
	}
	return p.balance, nil
}

func (p *Paper) SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return OrderResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	in, ok := p.instruments[strings.ToUpper(req.Symbol)]
	if !ok {
		return OrderResult{}, &RejectedError{Code: RetcodeInvalidRequest, Message: "unknown symbol " + req.Symbol}
	}
	if err := validateOrder(in, req); err != nil {
		p.logger.Warn().Err(err).Str("symbol", req.Symbol).Msg("Order rejected")
		return OrderResult{}, err
	}

	ticket := p.nextTicket
	p.nextTicket++
	p.orders = append(p.orders, req)

	p.logger.Info().Str("symbol", req.Symbol).Str("client_order_id", req.ClientOrderID).
		Float64("volume", req.Volume).Float64("price", req.Price).Uint64("ticket", ticket).Msg("Order placed")
	return OrderResult{Ticket: ticket, Code: RetcodeDone, Message: "Request executed"}, nil
}

// Orders returns every accepted request in submission order
func (p *Paper) Orders() []OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]OrderRequest(nil), p.orders...)
}

func validateOrder(in models.InstrumentMetadata, req OrderRequest) error {
	if req.Volume <= 0 || (in.MinVolume > 0 && req.Volume < in.MinVolume) || (in.MaxVolume > 0 && req.Volume > in.MaxVolume) {
		return &RejectedError{Code: RetcodeInvalidVolume, Message: fmt.Sprintf("invalid volume %v", req.Volume)}
	}
	if req.Price <= 0 {
		return &RejectedError{Code: RetcodeInvalidPrice, Message: fmt.Sprintf("invalid price %v", req.Price)}
	}
	// a stop on the wrong side of the entry can never protect the position
	if sign := req.Direction.Sign(); (req.Price-req.StopLoss)*sign < 0 {
		return &RejectedError{Code: RetcodeInvalidStops, Message: fmt.Sprintf("invalid stop loss %v", req.StopLoss)}
	}
	return nil
}

type instrumentFile struct {
	Instruments []models.InstrumentMetadata `json:"instruments" yaml:"instruments"`
}

// LoadInstruments reads a YAML or JSON instrument list
func LoadInstruments(path string) ([]models.InstrumentMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instruments: %w", err)
	}

	var f instrumentFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(f.Instruments) == 0 {
		return nil, fmt.Errorf("%s lists no instruments", path)
	}
	return f.Instruments, nil
}

// DefaultInstruments is the catalog used when no instrument file is given
func DefaultInstruments() []models.InstrumentMetadata {
	fx := func(symbol, description string, digits int32, point float64) models.InstrumentMetadata {
		return models.InstrumentMetadata{
			Symbol: symbol, Description: description, Digits: digits, PointSize: point,
			TickSize: point, TickValue: 1, ContractSize: 100000,
			MinVolume: 0.01, MaxVolume: 100, VolumeStep: 0.01,
		}
	}
	cfd := func(symbol, description string, digits int32, point, tickValue, contract float64) models.InstrumentMetadata {
		return models.InstrumentMetadata{
			Symbol: symbol, Description: description, Digits: digits, PointSize: point,
			TickSize: point, TickValue: tickValue, ContractSize: contract,
			MinVolume: 0.01, MaxVolume: 100, VolumeStep: 0.01,
		}
	}
	stock := func(symbol, description string) models.InstrumentMetadata {
		return models.InstrumentMetadata{
			Symbol: symbol, Description: description, Digits: 2, PointSize: 0.01,
			TickSize: 0.01, TickValue: 0.01, ContractSize: 1,
			MinVolume: 1, MaxVolume: 10000, VolumeStep: 1,
		}
	}

	return []models.InstrumentMetadata{
		fx("EURUSD", "Euro vs US Dollar", 5, 0.00001),
		fx("GBPUSD", "Great Britain Pound vs US Dollar", 5, 0.00001),
		fx("AUDUSD", "Australian Dollar vs US Dollar", 5, 0.00001),
		fx("NZDUSD", "New Zealand Dollar vs US Dollar", 5, 0.00001),
		fx("USDCAD", "US Dollar vs Canadian Dollar", 5, 0.00001),
		fx("USDCHF", "US Dollar vs Swiss Franc", 5, 0.00001),
		fx("USDJPY", "US Dollar vs Japanese Yen", 3, 0.001),
		fx("GBPJPY", "Great Britain Pound vs Japanese Yen", 3, 0.001),
		fx("EURJPY", "Euro vs Japanese Yen", 3, 0.001),
		cfd("XAUUSD", "Gold vs US Dollar", 2, 0.01, 1, 100),
		cfd("XAGUSD", "Silver vs US Dollar", 3, 0.001, 5, 5000),
		cfd("XTIUSD", "WTI Crude Oil", 2, 0.01, 10, 1000),
		cfd("US30", "Wall Street 30 Index", 1, 0.1, 0.1, 1),
		cfd("US500", "US 500 Index", 1, 0.1, 0.1, 1),
		cfd("USTEC", "US Tech 100 Index", 1, 0.1, 0.1, 1),
		cfd("DE40", "Germany 40 Index", 1, 0.1, 0.1, 1),
		cfd("FR40", "France 40 Index", 1, 0.1, 0.1, 1),
		cfd("JP225", "Japan 225 Index", 0, 1, 0.01, 1),
		cfd("BTCUSD", "Bitcoin vs US Dollar", 2, 0.01, 0.01, 1),
		cfd("ETHUSD", "Ethereum vs US Dollar", 2, 0.01, 0.01, 1),
		stock("AAPL.NAS", "Apple Inc"),
		stock("MSFT.NAS", "Microsoft Corporation"),
		stock("TSLA.NAS", "Tesla Inc"),
		stock("NVDA.NAS", "NVIDIA Corporation"),
		stock("KO.NYSE", "Coca-Cola Company"),
		stock("JPM.NYSE", "JPMorgan Chase and Co"),
	}
}
