// Package server exposes the HTTP surface: health probe, read-only symbol
// state endpoints, a settings endpoint and the websocket stream.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jellychn/zentra-sub000/internal/server/handler"
	"github.com/jellychn/zentra-sub000/internal/server/middleware"
	"github.com/jellychn/zentra-sub000/internal/server/ws"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	logger     *slog.Logger
}

func New(cfg Config, st *store.Store, set *settings.Settings, logger *slog.Logger) *Server {
	hub := ws.NewHub(st, logger)

	stateHandler := handler.NewState(st, logger)
	settingsHandler := handler.NewSettings(set, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /api/v1/state/{symbol}", stateHandler.State)
	mux.HandleFunc("GET /api/v1/metrics/{symbol}", stateHandler.Metrics)
	mux.HandleFunc("PUT /api/v1/settings", settingsHandler.Update)
	mux.HandleFunc("GET /ws", hub.HandleWS)

	var root http.Handler = mux
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      root,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		hub:    hub,
		logger: logger.With(slog.String("component", "server")),
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server: listen: %w", err)
	}
}
