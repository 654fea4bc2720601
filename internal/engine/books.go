package engine

import (
	"log/slog"
	"sort"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/store"
)

// BookKeeper reconstructs per-symbol order books from snapshot and
// incremental batches. It never mutates a published book: every apply builds
// fresh sorted sides and publishes them with a single store update, so a
// reader can never observe a half-applied book.
type BookKeeper struct {
	store  *store.Store
	logger *slog.Logger
}

// NewBookKeeper creates a BookKeeper writing into the given store.
func NewBookKeeper(st *store.Store, logger *slog.Logger) *BookKeeper {
	return &BookKeeper{
		store:  st,
		logger: logger.With(slog.String("component", "books")),
	}
}

// Apply merges a book batch. A snapshot discards prior state entirely; an
// incremental starts from a copy of the current book and upserts or deletes
// level by level; a level with size zero is deleted, never stored. After
// either kind the aggregate bid/ask volumes are merged into the symbol's
// metrics.
func (k *BookKeeper) Apply(batch domain.BookBatch) {
	bids := make(map[float64]float64)
	asks := make(map[float64]float64)

	if batch.Kind != domain.BatchSnapshot {
		if prev, ok := k.store.OrderBook(batch.Symbol); ok {
			for _, lvl := range prev.Bids {
				bids[lvl.Price] = lvl.Size
			}
			for _, lvl := range prev.Asks {
				asks[lvl.Price] = lvl.Size
			}
		}
	}

	mergeSide(bids, batch.Bids)
	mergeSide(asks, batch.Asks)

	book := domain.OrderBook{
		Symbol:    batch.Symbol,
		Bids:      sortedSide(bids, true),
		Asks:      sortedSide(asks, false),
		Timestamp: batch.Timestamp,
	}

	k.store.Update(batch.Symbol, domain.KindOrderBook, book)
	k.store.MergeMetrics(batch.Symbol, domain.MetricsPatch{
		BidVolume: domain.Float(book.BidVolume()),
		AskVolume: domain.Float(book.AskVolume()),
	})
}

// mergeSide applies levels onto side: size zero deletes the price key,
// anything else upserts it.
func mergeSide(side map[float64]float64, levels []domain.BookLevel) {
	for _, lvl := range levels {
		if lvl.Size == 0 {
			delete(side, lvl.Price)
			continue
		}
		side[lvl.Price] = lvl.Size
	}
}

// sortedSide materializes a price map as a sorted slice: descending for
// bids, ascending for asks.
func sortedSide(side map[float64]float64, descending bool) []domain.BookLevel {
	out := make([]domain.BookLevel, 0, len(side))
	for price, size := range side {
		out = append(out, domain.BookLevel{Price: price, Size: size})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}
