package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// subscriber pairs a registration ID with its callback.
type subscriber struct {
	id string
	fn func(domain.Change)
}

// Notifier delivers typed change payloads to registered subscribers. Delivery
// is synchronous: Publish invokes every callback in registration order on the
// caller's goroutine and returns only when all have run.
type Notifier struct {
	mu   sync.RWMutex
	subs []subscriber
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a callback and returns its registration ID.
func (n *Notifier) Subscribe(fn func(domain.Change)) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := uuid.NewString()
	n.subs = append(n.subs, subscriber{id: id, fn: fn})
	return id
}

// Unsubscribe removes the callback registered under id. Unknown IDs are
// ignored.
func (n *Notifier) Unsubscribe(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, sub := range n.subs {
		if sub.id == id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers the change to all current subscribers in registration
// order.
func (n *Notifier) Publish(change domain.Change) {
	n.mu.RLock()
	subs := make([]subscriber, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}
