package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// MetricsMirror implements domain.MetricsMirror. The metrics aggregate is
// stored as a JSON blob at "metrics:{symbol}" and replaced whole on every
// merge.
type MetricsMirror struct {
	rdb *redis.Client
}

// NewMetricsMirror creates a MetricsMirror backed by the given Client.
func NewMetricsMirror(c *Client) *MetricsMirror {
	return &MetricsMirror{rdb: c.Underlying()}
}

func metricsKey(symbol string) string {
	return "metrics:" + symbol
}

// SetMetrics stores the symbol's metrics aggregate.
func (mm *MetricsMirror) SetMetrics(ctx context.Context, symbol string, m domain.Metrics) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("redis: marshal metrics %s: %w", symbol, err)
	}
	if err := mm.rdb.Set(ctx, metricsKey(symbol), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis: set metrics %s: %w", symbol, err)
	}
	return nil
}

// GetMetrics retrieves the symbol's metrics aggregate. It returns
// domain.ErrNotFound when no metrics have been mirrored yet.
func (mm *MetricsMirror) GetMetrics(ctx context.Context, symbol string) (domain.Metrics, error) {
	payload, err := mm.rdb.Get(ctx, metricsKey(symbol)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Metrics{}, domain.ErrNotFound
		}
		return domain.Metrics{}, fmt.Errorf("redis: get metrics %s: %w", symbol, err)
	}

	var m domain.Metrics
	if err := json.Unmarshal(payload, &m); err != nil {
		return domain.Metrics{}, fmt.Errorf("redis: decode metrics %s: %w", symbol, err)
	}
	return m, nil
}

// Compile-time interface check.
var _ domain.MetricsMirror = (*MetricsMirror)(nil)
