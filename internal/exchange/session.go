package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

const (
	// writeWait is the time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// handshakeTimeout bounds the WebSocket dial.
	handshakeTimeout = 15 * time.Second

	// heartbeatInterval is the fixed keep-alive cadence, independent of
	// message traffic.
	heartbeatInterval = 15 * time.Second

	// heartbeatID is the fixed request ID of the keep-alive ping.
	heartbeatID = 12345

	// heartbeatMethod is the keep-alive RPC method.
	heartbeatMethod = "server.ping"
)

// SessionConfig holds the session's connection parameters.
type SessionConfig struct {
	URL     string
	Symbols []string
}

// Session owns one logical connection to the exchange feed. On a successful
// connect it sends the subscription set for every configured symbol and
// starts a 15-second heartbeat. On session close or transmission error it
// logs and stops the heartbeat; no automatic reconnect is performed, an
// external actor must establish a new session. Shutdown is idempotent: once
// the closing flag is set, further sends, heartbeats, and logging are
// suppressed.
type Session struct {
	cfg    SessionConfig
	router *Router
	subs   *Subscriptions
	logger *slog.Logger

	mu      sync.Mutex // guards conn writes and the closing flag
	conn    *websocket.Conn
	closing bool

	done     chan struct{}
	closeErr error
}

// NewSession creates a Session that dispatches received frames into the
// given router and subscribes via the given subscription manager.
func NewSession(cfg SessionConfig, router *Router, subs *Subscriptions, logger *slog.Logger) *Session {
	return &Session{
		cfg:    cfg,
		router: router,
		subs:   subs,
		logger: logger.With(slog.String("component", "session")),
		done:   make(chan struct{}),
	}
}

// Connect dials the feed, starts the read and heartbeat loops, and sends the
// subscribe requests for every configured symbol.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return fmt.Errorf("exchange: connect: %w", domain.ErrSessionClosed)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("exchange: connect %s: %w", s.cfg.URL, err)
	}
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop()
	go s.heartbeatLoop()

	if err := s.subs.Subscribe(s, s.cfg.Symbols); err != nil {
		return fmt.Errorf("exchange: subscribe on connect: %w", err)
	}

	s.logger.Info("session connected",
		slog.String("url", s.cfg.URL),
		slog.Int("symbols", len(s.cfg.Symbols)),
	)
	return nil
}

// Send transmits a structured request. It fails when the session is not
// open.
func (s *Session) Send(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return domain.ErrSessionClosed
	}
	if s.conn == nil {
		return domain.ErrNotConnected
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("exchange: send %s: %w", cmd.Method, err)
	}
	return nil
}

// Run connects and blocks until the context is cancelled or the session
// ends. A transport fault surfaces as the returned error; cancellation
// returns ctx.Err() after an orderly close.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		_ = s.Close()
		return ctx.Err()
	case <-s.done:
		return s.closeErr
	}
}

// Close shuts the session down. Safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	conn := s.conn
	close(s.done)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return conn.Close()
	}
	return nil
}

// readLoop reads frames and dispatches each to the router, to completion,
// before reading the next. On read error it records the transport fault and
// stops the session.
func (s *Session) readLoop() {
	for {
		s.mu.Lock()
		conn := s.conn
		closing := s.closing
		s.mu.Unlock()
		if closing || conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.fail(err)
			return
		}
		s.router.Dispatch(raw)
	}
}

// heartbeatLoop sends the keep-alive ping every heartbeatInterval while the
// session is open. A send failure stops the loop; fail() has already run or
// will run via the read loop.
func (s *Session) heartbeatLoop() {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cmd := Command{ID: heartbeatID, Method: heartbeatMethod, Params: []any{}}
			if err := s.Send(cmd); err != nil {
				return
			}
		}
	}
}

// fail records a transport fault: log once, stop the heartbeat, leave the
// session closed. The closing flag suppresses everything when already set.
func (s *Session) fail(err error) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return
	}
	s.closing = true
	s.closeErr = fmt.Errorf("exchange: %w: %v", domain.ErrWSDisconnect, err)
	conn := s.conn
	close(s.done)
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	s.logger.Error("session transport fault, no reconnect attempted",
		slog.String("error", err.Error()),
	)
}
