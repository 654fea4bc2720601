package exchange

import (
	"encoding/json"
	"log/slog"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// Handlers are the per-type callbacks the router dispatches into. A nil
// handler drops its message type.
type Handlers struct {
	Tick      func(tick domain.Tick)
	OrderBook func(batch domain.BookBatch)
	Trades    func(batch domain.TradeBatch)
	Candles   func(batch domain.CandleBatch)
}

// Router classifies each decoded inbound message by the presence of a
// type-specific marker key and invokes exactly one handler. Unknown shapes
// and unparseable payloads are dropped without error. Handlers run to
// completion on the caller's goroutine; a panic inside one handler is
// recovered and logged so the stream continues.
type Router struct {
	handlers Handlers
	logger   *slog.Logger
}

// NewRouter creates a Router dispatching into the given handlers.
func NewRouter(handlers Handlers, logger *slog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger.With(slog.String("component", "router")),
	}
}

// Dispatch classifies and routes one raw message body.
func (r *Router) Dispatch(raw []byte) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return
	}

	switch {
	case hasKey(probe, "last"):
		var msg TickMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		tick, err := msg.ToDomain()
		if err != nil {
			return
		}
		if r.handlers.Tick != nil {
			r.invoke("tick", func() { r.handlers.Tick(tick) })
		}

	case hasKey(probe, "orderbook"):
		var msg OrderBookMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if r.handlers.OrderBook != nil {
			r.invoke("orderbook", func() { r.handlers.OrderBook(msg.ToDomain()) })
		}

	case hasKey(probe, "trades"):
		var msg TradesMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if r.handlers.Trades != nil {
			r.invoke("trades", func() { r.handlers.Trades(msg.ToDomain()) })
		}

	case hasKey(probe, "candles"):
		var msg CandlesMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return
		}
		if r.handlers.Candles != nil {
			for _, batch := range msg.Batches() {
				b := batch
				r.invoke("candles", func() { r.handlers.Candles(b) })
			}
		}
	}
}

// invoke runs fn inside a recover boundary so one bad handler invocation
// cannot stop the stream.
func (r *Router) invoke(kind string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("message handler panicked",
				slog.String("kind", kind),
				slog.Any("panic", rec),
			)
		}
	}()
	fn()
}

func hasKey(probe map[string]json.RawMessage, key string) bool {
	_, ok := probe[key]
	return ok
}
