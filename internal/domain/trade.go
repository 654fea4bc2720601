package domain

import "time"

// TradeSide is the taker direction of an executed trade.
type TradeSide string

const (
	SideBuy  TradeSide = "Buy"
	SideSell TradeSide = "Sell"
)

// Trade is one executed trade. Trades are immutable once created; the
// per-symbol trade history is kept most-recent-first.
type Trade struct {
	Time  time.Time `json:"time"` // execution time, nanosecond precision
	Side  TradeSide `json:"side"`
	Price float64   `json:"price"`
	Size  float64   `json:"size"`
}

// SignedSize returns +Size for buys and -Size for sells.
func (t Trade) SignedSize() float64 {
	if t.Side == SideSell {
		return -t.Size
	}
	return t.Size
}

// BatchKind distinguishes full-state snapshot batches from incremental
// deltas on the trade, order-book, and candle channels.
type BatchKind string

const (
	BatchSnapshot    BatchKind = "snapshot"
	BatchIncremental BatchKind = "incremental"
)

// TradeBatch is a normalized snapshot or incremental trade update for one
// symbol.
type TradeBatch struct {
	Symbol string
	Kind   BatchKind
	Trades []Trade
}
