// Package exchange implements the transport boundary to the market-data
// feed: the WebSocket session, the inbound message codec and router, the
// subscription manager, and the REST bootstrap client.
package exchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// markPricePrefix is the prefix the exchange attaches to the symbol on
// mark-price ticks. It is stripped before the symbol is used as a key.
const markPricePrefix = "."

// Command is an outbound request frame: subscriptions and heartbeats.
type Command struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// TickMessage is a last-price update, identified by the "last" key.
type TickMessage struct {
	Last      string `json:"last"`
	Symbol    string `json:"symbol"`
	Timestamp int64  `json:"timestamp"` // Unix nanoseconds
}

// ToDomain converts the tick to its domain form, stripping the mark-price
// prefix and parsing the decimal price.
func (m TickMessage) ToDomain() (domain.Tick, error) {
	price, err := strconv.ParseFloat(m.Last, 64)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("exchange: parse tick price %q: %w", m.Last, err)
	}
	return domain.Tick{
		Symbol: strings.TrimPrefix(m.Symbol, markPricePrefix),
		Price:  price,
		Time:   time.Unix(0, m.Timestamp),
	}, nil
}

// PriceSizeLevel is one ["price","size"] pair from the order-book channel.
type PriceSizeLevel struct {
	Price float64
	Size  float64
}

// UnmarshalJSON decodes the two-element string tuple.
func (l *PriceSizeLevel) UnmarshalJSON(data []byte) error {
	var raw [2]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("exchange: book level: %w", err)
	}
	price, err := strconv.ParseFloat(raw[0], 64)
	if err != nil {
		return fmt.Errorf("exchange: book level price %q: %w", raw[0], err)
	}
	size, err := strconv.ParseFloat(raw[1], 64)
	if err != nil {
		return fmt.Errorf("exchange: book level size %q: %w", raw[1], err)
	}
	l.Price = price
	l.Size = size
	return nil
}

// BookSides carries the bid and ask level lists of a book message.
type BookSides struct {
	Bids []PriceSizeLevel `json:"bids"`
	Asks []PriceSizeLevel `json:"asks"`
}

// OrderBookMessage is a book update, identified by the "orderbook" key.
type OrderBookMessage struct {
	Symbol    string    `json:"symbol"`
	Type      string    `json:"type"` // "snapshot" or "incremental"
	Sequence  int64     `json:"sequence"`
	Depth     int       `json:"depth"`
	Timestamp int64     `json:"timestamp"`
	OrderBook BookSides `json:"orderbook"`
}

// ToDomain converts the message to a book batch.
func (m OrderBookMessage) ToDomain() domain.BookBatch {
	batch := domain.BookBatch{
		Symbol:    m.Symbol,
		Kind:      batchKind(m.Type),
		Bids:      make([]domain.BookLevel, 0, len(m.OrderBook.Bids)),
		Asks:      make([]domain.BookLevel, 0, len(m.OrderBook.Asks)),
		Timestamp: time.Unix(0, m.Timestamp),
	}
	for _, lvl := range m.OrderBook.Bids {
		batch.Bids = append(batch.Bids, domain.BookLevel{Price: lvl.Price, Size: lvl.Size})
	}
	for _, lvl := range m.OrderBook.Asks {
		batch.Asks = append(batch.Asks, domain.BookLevel{Price: lvl.Price, Size: lvl.Size})
	}
	return batch
}

// TradeEntry is one [timestampNanos, side, "price", "size"] tuple from the
// trade channel.
type TradeEntry struct {
	Timestamp int64
	Side      string
	Price     float64
	Size      float64
}

// UnmarshalJSON decodes the mixed-type four-element tuple.
func (e *TradeEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("exchange: trade tuple: %w", err)
	}
	if len(raw) < 4 {
		return fmt.Errorf("exchange: trade tuple has %d elements, want 4", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Timestamp); err != nil {
		return fmt.Errorf("exchange: trade timestamp: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Side); err != nil {
		return fmt.Errorf("exchange: trade side: %w", err)
	}
	var err error
	if e.Price, err = tupleFloat(raw[2]); err != nil {
		return fmt.Errorf("exchange: trade price: %w", err)
	}
	if e.Size, err = tupleFloat(raw[3]); err != nil {
		return fmt.Errorf("exchange: trade size: %w", err)
	}
	return nil
}

// TradesMessage is a trade batch, identified by the "trades" key.
type TradesMessage struct {
	Symbol   string       `json:"symbol"`
	Type     string       `json:"type"`
	Sequence int64        `json:"sequence"`
	Trades   []TradeEntry `json:"trades"`
}

// ToDomain converts the message to a trade batch.
func (m TradesMessage) ToDomain() domain.TradeBatch {
	batch := domain.TradeBatch{
		Symbol: m.Symbol,
		Kind:   batchKind(m.Type),
		Trades: make([]domain.Trade, 0, len(m.Trades)),
	}
	for _, e := range m.Trades {
		side := domain.SideBuy
		if e.Side == string(domain.SideSell) {
			side = domain.SideSell
		}
		batch.Trades = append(batch.Trades, domain.Trade{
			Time:  time.Unix(0, e.Timestamp),
			Side:  side,
			Price: e.Price,
			Size:  e.Size,
		})
	}
	return batch
}

// CandleEntry is one kline tuple:
// [openTime, resolutionSeconds, lastClose, open, high, low, close, volume, turnover].
// Index 2 duplicates prior-close data and is ignored.
type CandleEntry struct {
	OpenTime          int64
	ResolutionSeconds int64
	Open              float64
	High              float64
	Low               float64
	Close             float64
	Volume            float64
	Turnover          float64
}

// UnmarshalJSON decodes the nine-element tuple, skipping index 2.
func (e *CandleEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("exchange: candle tuple: %w", err)
	}
	if len(raw) < 9 {
		return fmt.Errorf("exchange: candle tuple has %d elements, want 9", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.OpenTime); err != nil {
		return fmt.Errorf("exchange: candle open time: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.ResolutionSeconds); err != nil {
		return fmt.Errorf("exchange: candle resolution: %w", err)
	}
	fields := []struct {
		idx int
		dst *float64
	}{
		{3, &e.Open},
		{4, &e.High},
		{5, &e.Low},
		{6, &e.Close},
		{7, &e.Volume},
		{8, &e.Turnover},
	}
	for _, f := range fields {
		v, err := tupleFloat(raw[f.idx])
		if err != nil {
			return fmt.Errorf("exchange: candle field %d: %w", f.idx, err)
		}
		*f.dst = v
	}
	return nil
}

// ToDomain converts the entry to a candle of the given interval.
func (e CandleEntry) ToDomain(iv domain.Interval) domain.Candle {
	return domain.Candle{
		OpenTime: e.OpenTime,
		Interval: iv,
		Open:     e.Open,
		High:     e.High,
		Low:      e.Low,
		Close:    e.Close,
		Volume:   e.Volume,
		Turnover: e.Turnover,
	}
}

// CandlesMessage is a candle batch, identified by the "candles" key.
type CandlesMessage struct {
	Symbol   string        `json:"symbol"`
	Type     string        `json:"type"`
	Dts      int64         `json:"dts"`
	Mts      int64         `json:"mts"`
	Sequence int64         `json:"sequence"`
	Candles  []CandleEntry `json:"candles"`
}

// Batches groups the message's candles by resolution into per-interval
// batches. Candles with an unsupported resolution are dropped.
func (m CandlesMessage) Batches() []domain.CandleBatch {
	byInterval := make(map[domain.Interval][]domain.Candle)
	for _, e := range m.Candles {
		iv, ok := domain.IntervalFromSeconds(e.ResolutionSeconds)
		if !ok {
			continue
		}
		byInterval[iv] = append(byInterval[iv], e.ToDomain(iv))
	}

	out := make([]domain.CandleBatch, 0, len(byInterval))
	for _, iv := range domain.Intervals {
		candles, ok := byInterval[iv]
		if !ok {
			continue
		}
		out = append(out, domain.CandleBatch{
			Symbol:   m.Symbol,
			Kind:     batchKind(m.Type),
			Interval: iv,
			Candles:  candles,
		})
	}
	return out
}

// batchKind maps the wire "type" field onto BatchKind. Anything that is not
// an explicit snapshot merges as an incremental.
func batchKind(t string) domain.BatchKind {
	if t == string(domain.BatchSnapshot) {
		return domain.BatchSnapshot
	}
	return domain.BatchIncremental
}

// tupleFloat parses a tuple element that the exchange serializes either as a
// JSON string or as a bare number.
func tupleFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}
