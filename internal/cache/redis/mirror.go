package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/store"
)

// mirrorTimeout bounds each cache write triggered by a store change.
const mirrorTimeout = 2 * time.Second

// changeChannel is the Pub/Sub channel pattern for change events.
const changeChannel = "changes"

// Mirror is a store subscriber that copies last prices and derived metrics
// into Redis and publishes each change event on the bus. Failures are logged
// and skipped; the in-memory store stays authoritative.
type Mirror struct {
	prices  *PriceMirror
	metrics *MetricsMirror
	bus     *Bus
	logger  *slog.Logger
}

func NewMirror(prices *PriceMirror, metrics *MetricsMirror, bus *Bus, logger *slog.Logger) *Mirror {
	return &Mirror{
		prices:  prices,
		metrics: metrics,
		bus:     bus,
		logger:  logger.With(slog.String("component", "redis_mirror")),
	}
}

// Attach subscribes the mirror to the store and returns the subscription id.
func (m *Mirror) Attach(st *store.Store) string {
	return st.Subscribe(m.onChange)
}

func (m *Mirror) onChange(change domain.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorTimeout)
	defer cancel()

	switch change.Kind {
	case domain.KindLastPrice:
		if err := m.prices.SetPrice(ctx, change.Symbol, change.State.LastPrice, time.Now()); err != nil {
			m.logger.Warn("mirror price", slog.String("symbol", change.Symbol),
				slog.String("error", err.Error()))
		}
	case domain.KindMetrics:
		if err := m.metrics.SetMetrics(ctx, change.Symbol, change.State.Metrics); err != nil {
			m.logger.Warn("mirror metrics", slog.String("symbol", change.Symbol),
				slog.String("error", err.Error()))
		}
	}

	event, err := json.Marshal(struct {
		Symbol string      `json:"symbol"`
		Kind   domain.Kind `json:"kind"`
	}{Symbol: change.Symbol, Kind: change.Kind})
	if err != nil {
		return
	}
	if err := m.bus.Publish(ctx, changeChannel+":"+change.Symbol, event); err != nil {
		m.logger.Warn("publish change", slog.String("symbol", change.Symbol),
			slog.String("error", err.Error()))
	}
}
