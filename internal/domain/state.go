package domain

import "strings"

// Kind identifies one slot of per-symbol state in the store.
type Kind string

const (
	KindLastPrice Kind = "last_price"
	KindOrderBook Kind = "orderbook"
	KindTrades    Kind = "trades"
	KindLiquidity Kind = "liquidity"
	KindMetrics   Kind = "metrics"

	candleKindPrefix = "candles:"
)

// CandleKind returns the store kind for a candle series of the given
// interval.
func CandleKind(iv Interval) Kind {
	return Kind(candleKindPrefix + string(iv))
}

// CandleInterval extracts the interval from a candle-series kind. The second
// return value is false for non-candle kinds.
func CandleInterval(k Kind) (Interval, bool) {
	s := string(k)
	if !strings.HasPrefix(s, candleKindPrefix) {
		return "", false
	}
	iv := Interval(strings.TrimPrefix(s, candleKindPrefix))
	if !iv.Valid() {
		return "", false
	}
	return iv, true
}

// SymbolState is the full aggregate for one symbol, as carried by change
// notifications and returned by store snapshots. Slices and maps are copies
// owned by the receiver.
type SymbolState struct {
	Symbol    string               `json:"symbol"`
	LastPrice float64              `json:"last_price"`
	OrderBook OrderBook            `json:"orderbook"`
	Trades    []Trade              `json:"trades,omitempty"`
	Candles   map[Interval][]Candle `json:"candles,omitempty"`
	Liquidity LiquidityPool        `json:"liquidity,omitempty"`
	Metrics   Metrics              `json:"metrics"`
}

// Change is one store mutation, delivered synchronously to subscribers in
// registration order.
type Change struct {
	Symbol string      `json:"symbol"`
	Kind   Kind        `json:"kind"`
	State  SymbolState `json:"state"`
}
