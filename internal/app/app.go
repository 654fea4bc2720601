// Package app provides the top-level application lifecycle. It wires the
// store, settings, engine, optional Redis mirrors, the exchange feed, and the
// HTTP surface, then runs them until the context is cancelled.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jellychn/zentra-sub000/internal/config"
	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/exchange"
	"github.com/jellychn/zentra-sub000/internal/server"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, seeds candle history over REST, starts the feed
// and the HTTP server, and blocks until the context is cancelled or a
// component fails. On return it runs all registered cleanup functions.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Any("symbols", a.cfg.Exchange.Symbols),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)
	defer a.Close()

	a.bootstrapCandles(ctx, deps)

	g, ctx := errgroup.WithContext(ctx)

	router := exchange.NewRouter(exchange.Handlers{
		Tick:      deps.Engine.HandleTick,
		OrderBook: deps.Engine.HandleOrderBook,
		Trades:    deps.Engine.HandleTrades,
		Candles:   deps.Engine.HandleCandles,
	}, a.logger)
	session := exchange.NewSession(exchange.SessionConfig{
		URL:     a.cfg.Exchange.WSURL,
		Symbols: a.cfg.Exchange.Symbols,
	}, router, exchange.NewSubscriptions(a.logger), a.logger)
	g.Go(func() error {
		return session.Run(ctx)
	})

	if a.cfg.Server.Enabled {
		srv := server.New(server.Config{
			Host:         a.cfg.Server.Host,
			Port:         a.cfg.Server.Port,
			ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
			WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
			IdleTimeout:  a.cfg.Server.IdleTimeout.Duration,
		}, deps.Store, deps.Settings, a.logger)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}

	return g.Wait()
}

// bootstrapCandles seeds each symbol's candle series from the REST endpoint
// before the live feed connects, so the derived metrics have history from the
// first streamed update. Failures leave the series empty; the feed snapshot
// fills it later.
func (a *App) bootstrapCandles(ctx context.Context, deps *Dependencies) {
	if a.cfg.Exchange.BootstrapBars <= 0 {
		return
	}
	rest := exchange.NewRESTClient(a.cfg.Exchange.RESTURL)
	for _, symbol := range a.cfg.Exchange.Symbols {
		for _, iv := range domain.Intervals {
			candles, err := rest.Klines(ctx, symbol, iv, a.cfg.Exchange.BootstrapBars)
			if err != nil {
				a.logger.WarnContext(ctx, "bootstrap klines",
					slog.String("symbol", symbol),
					slog.String("interval", string(iv)),
					slog.String("error", err.Error()),
				)
				continue
			}
			deps.Engine.HandleCandles(domain.CandleBatch{
				Symbol:   symbol,
				Kind:     domain.BatchSnapshot,
				Interval: iv,
				Candles:  candles,
			})
		}
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
