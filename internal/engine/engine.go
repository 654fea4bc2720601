// Package engine is the computational core: it reconstructs per-symbol
// market state (order books, candle series, trade history, liquidity pools)
// from the normalized message stream and derives the metrics aggregate. The
// engine is single-writer: the transport read loop applies each message to
// completion before the next one is read, which is what keeps the per-symbol
// invariants without locks on the write path.
package engine

import (
	"log/slog"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

// Engine bundles the aggregators behind the handler surface the message
// router dispatches into.
type Engine struct {
	books     *BookKeeper
	candles   *CandleKeeper
	liquidity *LiquidityTracker
	metrics   *Metrics
	store     *store.Store
	settings  *settings.Settings
	logger    *slog.Logger
}

// New wires the aggregators around one store and settings provider.
func New(st *store.Store, set *settings.Settings, logger *slog.Logger) *Engine {
	metrics := NewMetrics(st, set, logger)
	return &Engine{
		books:     NewBookKeeper(st, logger),
		candles:   NewCandleKeeper(st, metrics, logger),
		liquidity: NewLiquidityTracker(st, set, time.Now, logger),
		metrics:   metrics,
		store:     st,
		settings:  set,
		logger:    logger.With(slog.String("component", "engine")),
	}
}

// HandleTick stores the symbol's last traded price.
func (e *Engine) HandleTick(t domain.Tick) {
	e.store.Update(t.Symbol, domain.KindLastPrice, t.Price)
}

// HandleOrderBook applies an order-book batch.
func (e *Engine) HandleOrderBook(batch domain.BookBatch) {
	e.books.Apply(batch)
}

// HandleTrades applies a trade batch.
func (e *Engine) HandleTrades(batch domain.TradeBatch) {
	e.liquidity.Apply(batch)
}

// HandleCandles applies a candle batch.
func (e *Engine) HandleCandles(batch domain.CandleBatch) {
	e.candles.Apply(batch)
}

// RefreshViews re-derives every view-dependent projection (visible liquidity
// pools, histograms) from stored state for all tracked symbols. Wired as the
// settings change hook so a new window or view takes effect without waiting
// for fresh market data.
func (e *Engine) RefreshViews() {
	for _, symbol := range e.store.Symbols() {
		e.liquidity.Refilter(symbol)
		e.metrics.Recompute(symbol)
	}
}
