// Package settings holds the user-facing view selections that shape the
// derived analytics: the active symbol, the chart candle timeframe, the
// liquidity window, and the price-line view. Components read the current
// values on every recompute; registered hooks fire after each change so
// window-dependent projections can be rebuilt without waiting for fresh
// market data.
package settings

import (
	"fmt"
	"sync"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// View selects the price-line lookback mode.
type View string

const (
	// ViewDefault covers roughly the last 12 hours of 1-minute candles.
	ViewDefault View = "12h"
	// ViewZoom narrows the 1-minute lookback to roughly the last hour.
	ViewZoom View = "1h"
	// ViewMonth switches the price line to the last 30 daily candles.
	ViewMonth View = "1M"
)

// DefaultLiquidityWindow is the liquidity window used until the user selects
// another one.
const DefaultLiquidityWindow = 15 * time.Minute

// liquidityWindows are the selectable liquidity windows.
var liquidityWindows = map[time.Duration]bool{
	1 * time.Minute:  true,
	5 * time.Minute:  true,
	15 * time.Minute: true,
	30 * time.Minute: true,
	60 * time.Minute: true,
}

// Settings is the concurrency-safe settings provider. A single instance is
// created at wire time and shared by the engine and the HTTP surface.
type Settings struct {
	mu              sync.RWMutex
	symbol          string
	timeframe       domain.Interval
	liquidityWindow time.Duration
	view            View
	hooks           []func()
}

// New creates a Settings provider with the given initial symbol and the
// default timeframe, liquidity window, and view.
func New(symbol string) *Settings {
	return &Settings{
		symbol:          symbol,
		timeframe:       domain.Interval1m,
		liquidityWindow: DefaultLiquidityWindow,
		view:            ViewDefault,
	}
}

// OnChange registers a hook that runs synchronously after every settings
// change.
func (s *Settings) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Symbol returns the currently selected symbol.
func (s *Settings) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// SetSymbol selects a new active symbol.
func (s *Settings) SetSymbol(symbol string) {
	s.mu.Lock()
	s.symbol = symbol
	s.mu.Unlock()
	s.fire()
}

// Timeframe returns the selected chart candle timeframe.
func (s *Settings) Timeframe() domain.Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeframe
}

// SetTimeframe selects the chart candle timeframe.
func (s *Settings) SetTimeframe(iv domain.Interval) error {
	if !iv.Valid() {
		return fmt.Errorf("settings: unsupported timeframe %q", iv)
	}
	s.mu.Lock()
	s.timeframe = iv
	s.mu.Unlock()
	s.fire()
	return nil
}

// LiquidityWindow returns the selected liquidity window.
func (s *Settings) LiquidityWindow() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.liquidityWindow
}

// SetLiquidityWindow selects the liquidity window. Only 1, 5, 15, 30, and 60
// minutes are accepted.
func (s *Settings) SetLiquidityWindow(window time.Duration) error {
	if !liquidityWindows[window] {
		return fmt.Errorf("settings: unsupported liquidity window %s", window)
	}
	s.mu.Lock()
	s.liquidityWindow = window
	s.mu.Unlock()
	s.fire()
	return nil
}

// View returns the selected price-line view.
func (s *Settings) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView selects the price-line view.
func (s *Settings) SetView(v View) error {
	switch v {
	case ViewDefault, ViewZoom, ViewMonth:
	default:
		return fmt.Errorf("settings: unsupported view %q", v)
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.fire()
	return nil
}

// fire runs all hooks outside the settings lock.
func (s *Settings) fire() {
	s.mu.RLock()
	hooks := make([]func(), len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}
