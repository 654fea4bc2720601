package engine

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBookSnapshotReplaces(t *testing.T) {
	st := store.New(testLogger())
	k := NewBookKeeper(st, testLogger())

	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Bids:   []domain.BookLevel{{Price: 100, Size: 2}},
		Asks:   []domain.BookLevel{{Price: 101, Size: 3}},
	})
	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Bids:   []domain.BookLevel{{Price: 99, Size: 1}},
		Asks:   []domain.BookLevel{{Price: 102, Size: 4}},
	})

	book, ok := st.OrderBook("BTCUSDT")
	if !ok {
		t.Fatal("expected order book")
	}
	if len(book.Bids) != 1 || book.Bids[0].Price != 99 {
		t.Fatalf("snapshot did not replace bids: %+v", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].Price != 102 {
		t.Fatalf("snapshot did not replace asks: %+v", book.Asks)
	}
}

func TestBookIncrementalMerge(t *testing.T) {
	st := store.New(testLogger())
	k := NewBookKeeper(st, testLogger())

	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Bids: []domain.BookLevel{
			{Price: 100, Size: 2},
			{Price: 99, Size: 1},
		},
		Asks: []domain.BookLevel{
			{Price: 101, Size: 3},
		},
	})
	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchIncremental,
		Bids: []domain.BookLevel{
			{Price: 100, Size: 0}, // delete
			{Price: 98, Size: 5},  // insert
		},
		Asks: []domain.BookLevel{
			{Price: 101, Size: 4}, // update
		},
	})

	book, _ := st.OrderBook("BTCUSDT")
	if len(book.Bids) != 2 {
		t.Fatalf("want 2 bids, got %+v", book.Bids)
	}
	if book.Bids[0].Price != 99 || book.Bids[1].Price != 98 {
		t.Fatalf("bids not sorted descending: %+v", book.Bids)
	}
	for _, lvl := range book.Bids {
		if lvl.Price == 100 {
			t.Fatal("zero-size level was not deleted")
		}
	}
	if len(book.Asks) != 1 || book.Asks[0].Size != 4 {
		t.Fatalf("ask not updated: %+v", book.Asks)
	}
}

func TestBookSideOrdering(t *testing.T) {
	st := store.New(testLogger())
	k := NewBookKeeper(st, testLogger())

	k.Apply(domain.BookBatch{
		Symbol: "ETHUSDT",
		Kind:   domain.BatchSnapshot,
		Bids: []domain.BookLevel{
			{Price: 98, Size: 1},
			{Price: 100, Size: 1},
			{Price: 99, Size: 1},
		},
		Asks: []domain.BookLevel{
			{Price: 103, Size: 1},
			{Price: 101, Size: 1},
			{Price: 102, Size: 1},
		},
		Timestamp: time.Now(),
	})

	book, _ := st.OrderBook("ETHUSDT")
	for i := 1; i < len(book.Bids); i++ {
		if book.Bids[i].Price >= book.Bids[i-1].Price {
			t.Fatalf("bids not descending: %+v", book.Bids)
		}
	}
	for i := 1; i < len(book.Asks); i++ {
		if book.Asks[i].Price <= book.Asks[i-1].Price {
			t.Fatalf("asks not ascending: %+v", book.Asks)
		}
	}
}

func TestBookSnapshotThenIncremental(t *testing.T) {
	st := store.New(testLogger())
	k := NewBookKeeper(st, testLogger())

	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Bids:   []domain.BookLevel{{Price: 100, Size: 2}},
		Asks:   []domain.BookLevel{{Price: 101, Size: 1}},
	})
	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchIncremental,
		Bids: []domain.BookLevel{
			{Price: 100, Size: 0},
			{Price: 99, Size: 5},
		},
	})

	book, _ := st.OrderBook("BTCUSDT")
	if len(book.Bids) != 1 || book.Bids[0].Price != 99 || book.Bids[0].Size != 5 {
		t.Fatalf("bids = %+v, want {99 5}", book.Bids)
	}
	if len(book.Asks) != 1 || book.Asks[0].Price != 101 || book.Asks[0].Size != 1 {
		t.Fatalf("asks = %+v, want {101 1}", book.Asks)
	}

	m, _ := st.Metrics("BTCUSDT")
	if m.BidVolume != 5 {
		t.Fatalf("bid volume = %v, want 5", m.BidVolume)
	}
}

func TestBookVolumesMergedIntoMetrics(t *testing.T) {
	st := store.New(testLogger())
	k := NewBookKeeper(st, testLogger())

	k.Apply(domain.BookBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Bids: []domain.BookLevel{
			{Price: 100, Size: 2},
			{Price: 99, Size: 3},
		},
		Asks: []domain.BookLevel{
			{Price: 101, Size: 7},
		},
	})

	m, ok := st.Metrics("BTCUSDT")
	if !ok {
		t.Fatal("expected metrics")
	}
	if m.BidVolume != 5 {
		t.Fatalf("bid volume = %v, want 5", m.BidVolume)
	}
	if m.AskVolume != 7 {
		t.Fatalf("ask volume = %v, want 7", m.AskVolume)
	}
}

func TestEngineRefreshViews(t *testing.T) {
	st := store.New(testLogger())
	set := settings.New("BTCUSDT")
	eng := New(st, set, testLogger())

	now := time.Now()
	eng.HandleTrades(domain.TradeBatch{
		Symbol: "BTCUSDT",
		Kind:   domain.BatchSnapshot,
		Trades: []domain.Trade{
			{Time: now.Add(-10 * time.Minute), Side: domain.SideBuy, Price: 50, Size: 2},
		},
	})

	m, _ := st.Metrics("BTCUSDT")
	if len(m.Liquidity) != 1 {
		t.Fatalf("want 1 visible level under 15m window, got %+v", m.Liquidity)
	}

	// Narrowing the window hides the 10-minute-old level on the next refresh.
	if err := set.SetLiquidityWindow(5 * time.Minute); err != nil {
		t.Fatal(err)
	}
	eng.RefreshViews()

	m, _ = st.Metrics("BTCUSDT")
	if len(m.Liquidity) != 0 {
		t.Fatalf("want no visible levels under 5m window, got %+v", m.Liquidity)
	}
}
