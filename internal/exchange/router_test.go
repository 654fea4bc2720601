package exchange

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchTick(t *testing.T) {
	var got domain.Tick
	r := NewRouter(Handlers{Tick: func(tick domain.Tick) { got = tick }}, testLogger())

	r.Dispatch([]byte(`{"last":"50123.5","symbol":"BTCUSDT","timestamp":1700000000000000000}`))

	if got.Symbol != "BTCUSDT" || got.Price != 50123.5 {
		t.Fatalf("tick = %+v", got)
	}
}

func TestDispatchOrderBook(t *testing.T) {
	var got domain.BookBatch
	r := NewRouter(Handlers{OrderBook: func(b domain.BookBatch) { got = b }}, testLogger())

	r.Dispatch([]byte(`{
		"symbol": "BTCUSDT",
		"type": "snapshot",
		"sequence": 7,
		"timestamp": 1700000000000000000,
		"orderbook": {
			"bids": [["100","2"],["99","1"]],
			"asks": [["101","3"]]
		}
	}`))

	if got.Symbol != "BTCUSDT" || got.Kind != domain.BatchSnapshot {
		t.Fatalf("batch = %+v", got)
	}
	if len(got.Bids) != 2 || len(got.Asks) != 1 {
		t.Fatalf("levels = %+v", got)
	}
	if got.Bids[0].Price != 100 || got.Bids[0].Size != 2 {
		t.Fatalf("bid = %+v", got.Bids[0])
	}
}

func TestDispatchTrades(t *testing.T) {
	var got domain.TradeBatch
	r := NewRouter(Handlers{Trades: func(b domain.TradeBatch) { got = b }}, testLogger())

	r.Dispatch([]byte(`{
		"symbol": "BTCUSDT",
		"type": "incremental",
		"trades": [[1700000000000000000,"Sell","50123.5","0.25"]]
	}`))

	if got.Kind != domain.BatchIncremental || len(got.Trades) != 1 {
		t.Fatalf("batch = %+v", got)
	}
	if got.Trades[0].Side != domain.SideSell {
		t.Fatalf("side = %q", got.Trades[0].Side)
	}
}

func TestDispatchCandlesPerInterval(t *testing.T) {
	var got []domain.CandleBatch
	r := NewRouter(Handlers{Candles: func(b domain.CandleBatch) { got = append(got, b) }}, testLogger())

	r.Dispatch([]byte(`{
		"symbol": "BTCUSDT",
		"type": "snapshot",
		"candles": [
			[60,60,"0","100","101","99","100","1","100"],
			[86400,86400,"0","100","110","90","105","10","1050"]
		]
	}`))

	if len(got) != 2 {
		t.Fatalf("want one invocation per interval, got %d", len(got))
	}
}

func TestDispatchUnknownShapeDropped(t *testing.T) {
	called := false
	r := NewRouter(Handlers{
		Tick:      func(domain.Tick) { called = true },
		OrderBook: func(domain.BookBatch) { called = true },
		Trades:    func(domain.TradeBatch) { called = true },
		Candles:   func(domain.CandleBatch) { called = true },
	}, testLogger())

	r.Dispatch([]byte(`{"result":"pong","id":12345}`))
	r.Dispatch([]byte(`not json at all`))

	if called {
		t.Fatal("unknown shapes must be dropped silently")
	}
}

func TestDispatchHandlerPanicRecovered(t *testing.T) {
	r := NewRouter(Handlers{Tick: func(domain.Tick) { panic("boom") }}, testLogger())

	r.Dispatch([]byte(`{"last":"1","symbol":"BTCUSDT","timestamp":1}`))
	// A second dispatch still works after the panic.
	delivered := false
	r.handlers.Tick = func(domain.Tick) { delivered = true }
	r.Dispatch([]byte(`{"last":"1","symbol":"BTCUSDT","timestamp":1}`))

	if !delivered {
		t.Fatal("router must keep dispatching after a handler panic")
	}
}
