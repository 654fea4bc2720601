package engine

import (
	"log/slog"
	"sort"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

const (
	// tradeHistoryLimit bounds the rolling per-symbol trade history.
	tradeHistoryLimit = 1000

	// recentTradesLimit is the size of the recent-trades ring published
	// into the metrics aggregate.
	recentTradesLimit = 20

	// flowWindow is the fixed trailing window for buy/sell volume.
	flowWindow = time.Minute
)

// LiquidityTracker maintains the per-symbol trade history, the full signed
// liquidity pool, and the trailing trade-flow counters. The visible pool
// published into metrics is always a window-filtered projection of the full
// pool, re-derivable at any time via Refilter.
type LiquidityTracker struct {
	store    *store.Store
	settings *settings.Settings
	now      func() time.Time
	logger   *slog.Logger
}

// NewLiquidityTracker creates a LiquidityTracker. now is the clock used for
// window filtering; pass time.Now outside tests.
func NewLiquidityTracker(st *store.Store, set *settings.Settings, now func() time.Time, logger *slog.Logger) *LiquidityTracker {
	return &LiquidityTracker{
		store:    st,
		settings: set,
		now:      now,
		logger:   logger.With(slog.String("component", "liquidity")),
	}
}

// Apply merges a trade batch. A snapshot replaces the trade history; an
// incremental prepends to it. Either way the result is sorted most-recent-
// first, the full liquidity pool is recomputed from the entire history, and
// the trailing-window flow plus the visible pool projection are merged into
// the symbol's metrics.
func (t *LiquidityTracker) Apply(batch domain.TradeBatch) {
	var trades []domain.Trade
	if batch.Kind == domain.BatchSnapshot {
		trades = append(trades, batch.Trades...)
	} else {
		trades = append(trades, batch.Trades...)
		trades = append(trades, t.store.Trades(batch.Symbol)...)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Time.After(trades[j].Time) })
	if len(trades) > tradeHistoryLimit {
		trades = trades[:tradeHistoryLimit]
	}

	t.store.Update(batch.Symbol, domain.KindTrades, trades)

	// Rebuild the full pool from the entire history, oldest first so the
	// latest trade at each price wins LastUpdated.
	pool := make(domain.LiquidityPool)
	for i := len(trades) - 1; i >= 0; i-- {
		tr := trades[i]
		lvl := pool[tr.Price]
		lvl.Price = tr.Price
		lvl.NetVolume += tr.SignedSize()
		lvl.LastUpdated = tr.Time
		pool[tr.Price] = lvl
	}
	t.store.Update(batch.Symbol, domain.KindLiquidity, pool)

	now := t.now()
	var buyVolume, sellVolume float64
	for _, tr := range trades {
		if now.Sub(tr.Time) > flowWindow {
			continue
		}
		if tr.Side == domain.SideBuy {
			buyVolume += tr.Size
		} else {
			sellVolume += tr.Size
		}
	}

	var avgTradeSize float64
	if len(trades) > 0 {
		avgTradeSize = (buyVolume + sellVolume) / float64(len(trades))
	}

	recent := trades
	if len(recent) > recentTradesLimit {
		recent = recent[:recentTradesLimit]
	}

	visible := domain.VisibleLiquidity(pool, t.settings.LiquidityWindow(), now)

	t.store.MergeMetrics(batch.Symbol, domain.MetricsPatch{
		BuyVolume:    domain.Float(buyVolume),
		SellVolume:   domain.Float(sellVolume),
		AvgTradeSize: domain.Float(avgTradeSize),
		Liquidity:    visible,
		RecentTrades: recent,
	})
}

// Refilter re-projects the visible liquidity pool from stored state using
// the currently selected window, without any new trades. Called when the
// user changes the liquidity window.
func (t *LiquidityTracker) Refilter(symbol string) {
	pool := t.store.Liquidity(symbol)
	if pool == nil {
		return
	}
	visible := domain.VisibleLiquidity(pool, t.settings.LiquidityWindow(), t.now())
	t.store.MergeMetrics(symbol, domain.MetricsPatch{Liquidity: visible})
}
