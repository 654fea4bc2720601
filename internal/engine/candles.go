package engine

import (
	"log/slog"
	"sort"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/store"
)

// CandleKeeper maintains the per-(symbol, interval) candle series. Batches
// are merged by open time with last-write-wins per candle, so re-applying
// the same batch is idempotent.
type CandleKeeper struct {
	store   *store.Store
	metrics *Metrics
	logger  *slog.Logger
}

// NewCandleKeeper creates a CandleKeeper writing into the given store and
// cascading into the metrics engine.
func NewCandleKeeper(st *store.Store, metrics *Metrics, logger *slog.Logger) *CandleKeeper {
	return &CandleKeeper{
		store:   st,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "candles")),
	}
}

// Apply merges a candle batch into the series for (symbol, interval) and
// triggers the metrics pass for the merged series. Snapshot and incremental
// batches use the same merge rule: seed from the existing series, then
// overwrite with every incoming candle; a candle already present at an open
// time is fully replaced, never partially patched.
func (k *CandleKeeper) Apply(batch domain.CandleBatch) {
	if !batch.Interval.Valid() {
		k.logger.Debug("dropping candle batch with unknown interval",
			slog.String("symbol", batch.Symbol),
			slog.String("interval", string(batch.Interval)),
		)
		return
	}

	existing := k.store.Candles(batch.Symbol, batch.Interval)

	merged := make(map[int64]domain.Candle, len(existing)+len(batch.Candles))
	for _, c := range existing {
		merged[c.OpenTime] = c
	}
	for _, c := range batch.Candles {
		merged[c.OpenTime] = c
	}

	series := make([]domain.Candle, 0, len(merged))
	for _, c := range merged {
		series = append(series, c)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].OpenTime < series[j].OpenTime })

	k.store.Update(batch.Symbol, domain.CandleKind(batch.Interval), series)
	k.metrics.OnCandles(batch.Symbol, batch.Interval, series)
}
