// Package store implements the central per-symbol state cache. All
// aggregators write into it and downstream consumers (HTTP API, WS bridge,
// cache mirrors) read from it. The store owns change notification: every
// mutation is delivered synchronously to all subscribers, in registration
// order, before the mutating call returns.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// symbolState is the mutable backing record for one symbol. All slice and
// map fields hold values that were published whole by a single assignment;
// they are never mutated in place after publication.
type symbolState struct {
	lastPrice    float64
	hasLastPrice bool
	book         domain.OrderBook
	hasBook      bool
	trades       []domain.Trade
	candles      map[domain.Interval][]domain.Candle
	liquidity    domain.LiquidityPool
	metrics      domain.Metrics
}

// Store is the symbol state store. A single instance is created at wire time
// and passed explicitly to every component that needs it.
type Store struct {
	mu       sync.RWMutex
	symbols  map[string]*symbolState
	notifier *Notifier
	logger   *slog.Logger
}

// New creates an empty Store.
func New(logger *slog.Logger) *Store {
	return &Store{
		symbols:  make(map[string]*symbolState),
		notifier: NewNotifier(),
		logger:   logger.With(slog.String("component", "store")),
	}
}

// Subscribe registers fn to receive every subsequent change notification.
// Delivery is synchronous and in registration order. The returned ID is used
// to unsubscribe.
func (s *Store) Subscribe(fn func(domain.Change)) string {
	return s.notifier.Subscribe(fn)
}

// Unsubscribe removes a previously registered subscriber.
func (s *Store) Unsubscribe(id string) {
	s.notifier.Unsubscribe(id)
}

// Update stores value under (symbol, kind) and emits one change
// notification. The value must match the kind's canonical type; mismatched
// values are logged and dropped rather than stored.
func (s *Store) Update(symbol string, kind domain.Kind, value any) {
	s.mu.Lock()
	st := s.state(symbol)

	switch kind {
	case domain.KindLastPrice:
		price, ok := value.(float64)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		st.lastPrice = price
		st.hasLastPrice = true
	case domain.KindOrderBook:
		book, ok := value.(domain.OrderBook)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		st.book = book
		st.hasBook = true
	case domain.KindTrades:
		trades, ok := value.([]domain.Trade)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		st.trades = trades
	case domain.KindLiquidity:
		pool, ok := value.(domain.LiquidityPool)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		st.liquidity = pool
	default:
		iv, ok := domain.CandleInterval(kind)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		series, ok := value.([]domain.Candle)
		if !ok {
			s.dropUnlock(symbol, kind, value)
			return
		}
		st.candles[iv] = series
	}

	snap := st.snapshot(symbol)
	s.mu.Unlock()

	s.notifier.Publish(domain.Change{Symbol: symbol, Kind: kind, State: snap})
}

// MergeMetrics merges the patch into the symbol's metrics aggregate and
// emits one change notification. Fields the patch does not touch keep their
// previous values.
func (s *Store) MergeMetrics(symbol string, patch domain.MetricsPatch) {
	s.mu.Lock()
	st := s.state(symbol)
	st.metrics.Apply(patch)
	snap := st.snapshot(symbol)
	s.mu.Unlock()

	s.notifier.Publish(domain.Change{Symbol: symbol, Kind: domain.KindMetrics, State: snap})
}

// Get returns the current value under (symbol, kind). The second return
// value is false when no value has been stored yet; absence is "no value
// yet", not a failure.
func (s *Store) Get(symbol string, kind domain.Kind) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.symbols[symbol]
	if !ok {
		return nil, false
	}

	switch kind {
	case domain.KindLastPrice:
		if !st.hasLastPrice {
			return nil, false
		}
		return st.lastPrice, true
	case domain.KindOrderBook:
		if !st.hasBook {
			return nil, false
		}
		return st.book, true
	case domain.KindTrades:
		if st.trades == nil {
			return nil, false
		}
		return st.trades, true
	case domain.KindLiquidity:
		if st.liquidity == nil {
			return nil, false
		}
		return st.liquidity, true
	case domain.KindMetrics:
		return st.metrics, true
	default:
		iv, ok := domain.CandleInterval(kind)
		if !ok {
			return nil, false
		}
		series, ok := st.candles[iv]
		if !ok {
			return nil, false
		}
		return series, true
	}
}

// LastPrice returns the most recent traded price for the symbol.
func (s *Store) LastPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok || !st.hasLastPrice {
		return 0, false
	}
	return st.lastPrice, true
}

// OrderBook returns the current materialized book for the symbol.
func (s *Store) OrderBook(symbol string) (domain.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok || !st.hasBook {
		return domain.OrderBook{}, false
	}
	return st.book, true
}

// Trades returns the symbol's trade history, most recent first.
func (s *Store) Trades(symbol string) []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return nil
	}
	return st.trades
}

// Candles returns the candle series for (symbol, interval), sorted ascending
// by open time.
func (s *Store) Candles(symbol string, iv domain.Interval) []domain.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return nil
	}
	return st.candles[iv]
}

// Liquidity returns the full (unfiltered) liquidity pool for the symbol.
func (s *Store) Liquidity(symbol string) domain.LiquidityPool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return nil
	}
	return st.liquidity
}

// Metrics returns the symbol's derived metrics aggregate.
func (s *Store) Metrics(symbol string) (domain.Metrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return domain.Metrics{}, false
	}
	return st.metrics, true
}

// Snapshot returns the full aggregate state for one symbol.
func (s *Store) Snapshot(symbol string) (domain.SymbolState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.symbols[symbol]
	if !ok {
		return domain.SymbolState{}, false
	}
	return st.snapshot(symbol), true
}

// Symbols returns every symbol the store currently tracks.
func (s *Store) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.symbols))
	for sym := range s.symbols {
		out = append(out, sym)
	}
	return out
}

// state returns the backing record for symbol, creating it on first use.
// Caller must hold s.mu.
func (s *Store) state(symbol string) *symbolState {
	st, ok := s.symbols[symbol]
	if !ok {
		st = &symbolState{
			candles: make(map[domain.Interval][]domain.Candle),
		}
		s.symbols[symbol] = st
	}
	return st
}

// dropUnlock logs a type-mismatched update and releases the write lock.
// Caller must hold s.mu.
func (s *Store) dropUnlock(symbol string, kind domain.Kind, value any) {
	s.mu.Unlock()
	s.logger.Warn("dropping update with unexpected value type",
		slog.String("symbol", symbol),
		slog.String("kind", string(kind)),
		slog.String("value_type", fmt.Sprintf("%T", value)),
	)
}

// snapshot builds a copy of the full symbol aggregate. Caller must hold s.mu
// (read or write).
func (st *symbolState) snapshot(symbol string) domain.SymbolState {
	candles := make(map[domain.Interval][]domain.Candle, len(st.candles))
	for iv, series := range st.candles {
		candles[iv] = series
	}
	return domain.SymbolState{
		Symbol:    symbol,
		LastPrice: st.lastPrice,
		OrderBook: st.book,
		Trades:    st.trades,
		Candles:   candles,
		Liquidity: st.liquidity,
		Metrics:   st.metrics,
	}
}
