package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	domrepo "Coinsight/internal/domain/repository"
	applogger "Coinsight/pkg/logger"

	"github.com/gorilla/websocket"
)

// Feed streams live ticker updates over WebSocket and keeps the latest
// observed price per symbol. Predictions read the store; the feed only
// complements it with a fresher spot price when one has been seen.
type Feed struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	l       *applogger.Logger
	metrics domrepo.Metrics

	conn *websocket.Conn

	mu     sync.RWMutex
	latest map[string]tick
}

type tick struct {
	price float64
	at    time.Time
}

// New creates a price feed for the given symbols.
func New(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger, m domrepo.Metrics) *Feed {
	return &Feed{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		l:              l,
		metrics:        m,
		latest:         make(map[string]tick),
	}
}

// LastPrice returns the most recent streamed price for a symbol, if any
// arrived within the staleness window.
func (f *Feed) LastPrice(symbol string, maxAge time.Duration) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	t, ok := f.latest[strings.ToUpper(symbol)]
	if !ok {
		return 0, false
	}
	if maxAge > 0 && time.Since(t.at) > maxAge {
		return 0, false
	}
	return t.price, true
}

// Run connects, subscribes and consumes ticks until the context ends,
// reconnecting on failure.
func (f *Feed) Run(ctx context.Context) {
	for {
		if err := f.connect(ctx); err != nil {
			f.l.Warn("pricefeed connect failed", applogger.Error(err))
		} else if err := f.consume(ctx); err != nil {
			f.l.Warn("pricefeed stream ended", applogger.Error(err))
		}

		select {
		case <-ctx.Done():
			_ = f.Close()
			return
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *Feed) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("pricefeed connect: %w", err)
	}
	f.conn = conn

	for _, s := range f.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": strings.ToUpper(s)}
		if err := conn.WriteJSON(msg); err != nil {
			_ = conn.Close()
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}
	f.l.Info("pricefeed connected", applogger.Int("symbols", len(f.symbols)))
	return nil
}

type wsTicker struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	TsMs   int64   `json:"ts"`
}

type wsMessage struct {
	Type string     `json:"type"`
	Data []wsTicker `json:"data"`
}

func (f *Feed) consume(ctx context.Context) error {
	pingCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ticker := time.NewTicker(f.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				return
			case <-ticker.C:
				if f.conn != nil {
					_ = f.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, b, err := f.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("pricefeed read: %w", err)
		}

		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil {
			// ignore non-ticker frames
			continue
		}
		if m.Type != "ticker" {
			continue
		}

		f.mu.Lock()
		for _, d := range m.Data {
			sym := strings.ToUpper(d.Symbol)
			f.latest[sym] = tick{price: d.Price, at: time.UnixMilli(d.TsMs)}
			if f.metrics != nil {
				f.metrics.RecordLastPrice(sym, d.Price)
			}
		}
		f.mu.Unlock()
	}
}

// Close closes the WS connection.
func (f *Feed) Close() error {
	if f.conn != nil {
		return f.conn.Close()
	}
	return nil
}
