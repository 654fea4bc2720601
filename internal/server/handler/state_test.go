package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStateEndpoint(t *testing.T) {
	st := store.New(testLogger())
	st.Update("BTCUSDT", domain.KindLastPrice, 50123.5)

	h := NewState(st, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/BTCUSDT", nil)
	req.SetPathValue("symbol", "BTCUSDT")
	rec := httptest.NewRecorder()
	h.State(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap domain.SymbolState
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Symbol != "BTCUSDT" || snap.LastPrice != 50123.5 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestStateEndpointUnknownSymbol(t *testing.T) {
	h := NewState(store.New(testLogger()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/state/NOPE", nil)
	req.SetPathValue("symbol", "NOPE")
	rec := httptest.NewRecorder()
	h.State(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	st := store.New(testLogger())
	st.MergeMetrics("BTCUSDT", domain.MetricsPatch{BuyVolume: domain.Float(3)})

	h := NewState(st, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/BTCUSDT", nil)
	req.SetPathValue("symbol", "BTCUSDT")
	rec := httptest.NewRecorder()
	h.Metrics(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m domain.Metrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.BuyVolume != 3 {
		t.Fatalf("metrics = %+v", m)
	}
}
