package domain

import "time"

// BookLevel is a single price+size entry in an order book side.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook is the materialized book for one symbol. Bids are sorted
// descending by price, asks ascending. A level with size zero is never
// present; zero-size updates delete the level instead.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Timestamp time.Time   `json:"timestamp"`
}

// BestBid returns the highest bid price. The second return value is false
// when the bid side is empty.
func (b OrderBook) BestBid() (float64, bool) {
	if len(b.Bids) == 0 {
		return 0, false
	}
	return b.Bids[0].Price, true
}

// BestAsk returns the lowest ask price. The second return value is false
// when the ask side is empty.
func (b OrderBook) BestAsk() (float64, bool) {
	if len(b.Asks) == 0 {
		return 0, false
	}
	return b.Asks[0].Price, true
}

// BidVolume is the sum of all resting bid sizes.
func (b OrderBook) BidVolume() float64 {
	var sum float64
	for _, lvl := range b.Bids {
		sum += lvl.Size
	}
	return sum
}

// AskVolume is the sum of all resting ask sizes.
func (b OrderBook) AskVolume() float64 {
	var sum float64
	for _, lvl := range b.Asks {
		sum += lvl.Size
	}
	return sum
}

// BookBatch is a normalized snapshot or incremental order-book update for one
// symbol.
type BookBatch struct {
	Symbol    string
	Kind      BatchKind
	Bids      []BookLevel
	Asks      []BookLevel
	Timestamp time.Time
}
