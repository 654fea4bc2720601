package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jellychn/zentra-sub000/internal/cache/redis"
	"github.com/jellychn/zentra-sub000/internal/config"
	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/engine"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

// Dependencies bundles everything the application needs to run. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Store    *store.Store
	Settings *settings.Settings
	Engine   *engine.Engine

	// Redis mirrors, nil unless redis is enabled.
	Redis  *redis.Client
	Mirror *redis.Mirror
}

// Wire constructs all concrete dependencies from the given configuration and
// returns them together with a cleanup function that should be called on
// shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st := store.New(logger)

	set := settings.New(cfg.Exchange.Symbols[0])
	if err := set.SetTimeframe(domain.Interval(cfg.Settings.Timeframe)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: apply initial timeframe: %w", err)
	}
	if err := set.SetLiquidityWindow(time.Duration(cfg.Settings.LiquidityWindowMinutes) * time.Minute); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: apply initial liquidity window: %w", err)
	}
	if err := set.SetView(settings.View(cfg.Settings.View)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("app: apply initial view: %w", err)
	}

	eng := engine.New(st, set, logger)

	// Every settings change re-projects the window-dependent views so the
	// state surface reflects the new selection before the next market event.
	set.OnChange(eng.RefreshViews)

	deps := &Dependencies{
		Store:    st,
		Settings: set,
		Engine:   eng,
	}

	if cfg.Redis.Enabled {
		client, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("app: connect redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })

		mirror := redis.NewMirror(
			redis.NewPriceMirror(client),
			redis.NewMetricsMirror(client),
			redis.NewBus(client),
			logger,
		)
		subID := mirror.Attach(st)
		closers = append(closers, func() { st.Unsubscribe(subID) })

		deps.Redis = client
		deps.Mirror = mirror
	}

	return deps, cleanup, nil
}
