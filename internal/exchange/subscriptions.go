package exchange

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// Subscription RPC methods, one channel per market-data type.
const (
	methodTickSubscribe      = "tick.subscribe"
	methodOrderBookSubscribe = "orderbook.subscribe"
	methodTradeSubscribe     = "trade.subscribe"
	methodKlineSubscribe     = "kline.subscribe"
)

// fullBookDepth requests the complete book rather than a truncated ladder.
const fullBookDepth = 0

// Sender is the send primitive the subscription manager needs; satisfied by
// *Session.
type Sender interface {
	Send(cmd Command) error
}

// Subscriptions builds and sends the subscribe request set for each symbol
// when a session connects: the tick channel, the full-depth order-book
// channel, the trade channel, and one kline channel per supported
// resolution.
type Subscriptions struct {
	nextID atomic.Int64
	logger *slog.Logger
}

// NewSubscriptions creates a Subscriptions manager.
func NewSubscriptions(logger *slog.Logger) *Subscriptions {
	return &Subscriptions{
		logger: logger.With(slog.String("component", "subscriptions")),
	}
}

// Commands builds the subscribe request set for one symbol.
func (s *Subscriptions) Commands(symbol string) []Command {
	cmds := []Command{
		{ID: s.nextID.Add(1), Method: methodTickSubscribe, Params: []any{symbol}},
		{ID: s.nextID.Add(1), Method: methodOrderBookSubscribe, Params: []any{symbol, fullBookDepth}},
		{ID: s.nextID.Add(1), Method: methodTradeSubscribe, Params: []any{symbol}},
	}
	for _, iv := range domain.Intervals {
		cmds = append(cmds, Command{
			ID:     s.nextID.Add(1),
			Method: methodKlineSubscribe,
			Params: []any{symbol, iv.Seconds()},
		})
	}
	return cmds
}

// Subscribe sends the full request set for every symbol through the sender.
func (s *Subscriptions) Subscribe(sender Sender, symbols []string) error {
	for _, symbol := range symbols {
		for _, cmd := range s.Commands(symbol) {
			if err := sender.Send(cmd); err != nil {
				return fmt.Errorf("subscribe %s %s: %w", symbol, cmd.Method, err)
			}
		}
		s.logger.Info("subscribed", slog.String("symbol", symbol))
	}
	return nil
}
