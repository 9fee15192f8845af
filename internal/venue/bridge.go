package venue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	platformhttp "github.com/Alias1177/SignalBridge/internal/platform/http"
	"github.com/Alias1177/SignalBridge/models"
)

// BridgeOptions configures the HTTP bridge to the trading terminal
type BridgeOptions struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RequestsPerSec int
	MaxRetries     int
	RetryInterval  time.Duration
	// Now is used for WEEK expirations; time.Now when nil
	Now func() time.Time
}

// Bridge talks to a terminal bridge exposing symbols, account and orders
// over JSON.
type Bridge struct {
	baseURL string
	token   string
	client  *platformhttp.Client
	now     func() time.Time
	logger  zerolog.Logger
}

func NewBridge(opts BridgeOptions, logger zerolog.Logger) *Bridge {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Bridge{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		client: platformhttp.NewClient(platformhttp.ClientOptions{
			Timeout:         opts.Timeout,
			RequestsPerSec:  opts.RequestsPerSec,
			MaxRetries:      opts.MaxRetries,
			MaxRetryTimeout: opts.Timeout,
			RetryInterval:   opts.RetryInterval,
		}),
		now:    now,
		logger: logger.With().Str("component", "bridge_venue").Logger(),
	}
}

type symbolInfo struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Point             float64 `json:"point"`
	Digits            int32   `json:"digits"`
	TradeContractSize float64 `json:"trade_contract_size"`
	TradeTickSize     float64 `json:"trade_tick_size"`
	TradeTickValue    float64 `json:"trade_tick_value"`
	VolumeMin         float64 `json:"volume_min"`
	VolumeMax         float64 `json:"volume_max"`
	VolumeStep        float64 `json:"volume_step"`
}

func (s symbolInfo) metadata() models.InstrumentMetadata {
	return models.InstrumentMetadata{
		Symbol:       s.Name,
		Description:  s.Description,
		PointSize:    s.Point,
		ContractSize: s.TradeContractSize,
		TickSize:     s.TradeTickSize,
		TickValue:    s.TradeTickValue,
		MinVolume:    s.VolumeMin,
		MaxVolume:    s.VolumeMax,
		VolumeStep:   s.VolumeStep,
		Digits:       s.Digits,
	}
}

type accountInfo struct {
	Balance float64 `json:"balance"`
}

type orderPayload struct {
	Action        string   `json:"action"`
	Symbol        string   `json:"symbol"`
	Volume        float64  `json:"volume"`
	Type          string   `json:"type"`
	Price         float64  `json:"price"`
	SL            float64  `json:"sl"`
	TP            *float64 `json:"tp,omitempty"`
	Deviation     int      `json:"deviation"`
	Magic         int      `json:"magic"`
	TypeFilling   string   `json:"type_filling"`
	TypeTime      string   `json:"type_time"`
	Expiration    int64    `json:"expiration"`
	Comment       string   `json:"comment,omitempty"`
	ClientOrderID string   `json:"client_order_id"`
}

type orderReply struct {
	Retcode int    `json:"retcode"`
	Comment string `json:"comment"`
	Order   uint64 `json:"order"`
}

func (b *Bridge) Instrument(ctx context.Context, symbol string) (models.InstrumentMetadata, error) {
	var info symbolInfo
	status, err := b.call(ctx, http.MethodGet, "/symbols/"+url.PathEscape(symbol), "", nil, &info)
	if status == http.StatusNotFound {
		return models.InstrumentMetadata{}, fmt.Errorf("%s: %w", symbol, ErrInstrumentNotFound)
	}
	if err != nil {
		return models.InstrumentMetadata{}, err
	}
	return info.metadata(), nil
}

func (b *Bridge) Instruments(ctx context.Context) ([]models.InstrumentMetadata, error) {
	var infos []symbolInfo
	if _, err := b.call(ctx, http.MethodGet, "/symbols", "", nil, &infos); err != nil {
		return nil, err
	}
	out := make([]models.InstrumentMetadata, len(infos))
	for i, info := range infos {
		out[i] = info.metadata()
	}
	return out, nil
}

func (b *Bridge) AccountBalance(ctx context.Context) (float64, error) {
	var acc accountInfo
	if _, err := b.call(ctx, http.MethodGet, "/account", "", nil, &acc); err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

func (b *Bridge) SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error) {
	payload := b.payload(req)
	b.logger.Debug().Str("symbol", req.Symbol).Str("client_order_id", req.ClientOrderID).
		Interface("request", payload).Msg("Sending order request")

	var reply orderReply
	if _, err := b.call(ctx, http.MethodPost, "/orders", req.ClientOrderID, payload, &reply); err != nil {
		return OrderResult{}, err
	}

	if reply.Retcode != RetcodeDone {
		rej := &RejectedError{Code: reply.Retcode, Message: reply.Comment}
		b.logger.Warn().Err(rej).Str("symbol", req.Symbol).Str("client_order_id", req.ClientOrderID).Msg("Order rejected")
		return OrderResult{}, rej
	}
	return OrderResult{Ticket: reply.Order, Code: reply.Retcode, Message: reply.Comment}, nil
}

func (b *Bridge) payload(req OrderRequest) orderPayload {
	tif, expiration := Expiration(req.Expiry, b.now())

	action, orderType := "pending", "buy_limit"
	if req.Kind == models.OrderMarket {
		action, orderType = "deal", "buy"
	}
	if req.Direction == models.Short {
		orderType = strings.Replace(orderType, "buy", "sell", 1)
	}

	return orderPayload{
		Action:        action,
		Symbol:        req.Symbol,
		Volume:        req.Volume,
		Type:          orderType,
		Price:         req.Price,
		SL:            req.StopLoss,
		TP:            req.TakeProfit,
		Deviation:     Deviation,
		Magic:         Magic,
		TypeFilling:   "ioc",
		TypeTime:      string(tif),
		Expiration:    expiration,
		Comment:       req.Comment,
		ClientOrderID: req.ClientOrderID,
	}
}

// call performs one JSON round trip. The returned status is 0 when no
// response was received.
func (b *Bridge) call(ctx context.Context, method, path, idempotencyKey string, in, out any) (int, error) {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
	}

	resp, err := b.client.DoRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if b.token != "" {
			req.Header.Set("Authorization", "Bearer "+b.token)
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}
		return req, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w: %s %s: status %d: %s",
			ErrTransport, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: decoding %s response: %w", ErrTransport, path, err)
	}
	return resp.StatusCode, nil
}
