package domain

import (
	"context"
	"time"
)

// PriceMirror mirrors the latest price per symbol into an external cache so
// out-of-process readers never touch the engine.
type PriceMirror interface {
	SetPrice(ctx context.Context, symbol string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, symbol string) (float64, time.Time, error)
}

// MetricsMirror mirrors the derived metrics aggregate per symbol.
type MetricsMirror interface {
	SetMetrics(ctx context.Context, symbol string, m Metrics) error
	GetMetrics(ctx context.Context, symbol string) (Metrics, error)
}

// Bus is a fire-and-forget pub/sub fan-out for change events.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
