// Package notifier broadcasts catalog changes to SSE listeners.
package notifier

import (
	"sync"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Event announces a dataset that was added or replaced.
type Event struct {
	Dataset core.Dataset
}

// Notifier fans events out to every subscriber. Each listener has a
// one-slot buffer holding the most recent event it has not read yet.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives catalog events.
// The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe() chan Event {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Event) {
	n.mu.Lock()
	if _, ok := n.listeners[ch]; ok {
		delete(n.listeners, ch)
		close(ch)
	}
	n.mu.Unlock()
}

// Broadcast delivers ev to all listeners without blocking. A listener
// that has not drained its previous event gets the newer one instead.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

// DatasetAdded adapts Broadcast to the engine's upload hook.
func (n *Notifier) DatasetAdded(ds core.Dataset) {
	n.Broadcast(Event{Dataset: ds})
}

// Len returns the number of active listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}
