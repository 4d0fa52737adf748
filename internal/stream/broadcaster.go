// Package stream pushes player snapshots to connected clients over SSE and
// WebRTC data channels.
package stream

import (
	"context"
	"sync"

	"github.com/satindergrewal/cadence/internal/player"
)

const listenerBuffer = 32

// Broadcaster copies every snapshot from one source to all subscribed
// listeners and remembers the most recent one for late joiners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	latest    player.Snapshot
}

// Listener is one subscriber's feed.
type Listener struct {
	C    chan player.Snapshot
	done chan struct{}
}

// NewBroadcaster returns a broadcaster with no listeners and a zero snapshot.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[*Listener]struct{})}
}

// Subscribe adds a listener whose feed starts with the latest snapshot, so a
// client renders the current state without waiting for the next change.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		C:    make(chan player.Snapshot, listenerBuffer),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[l] = struct{}{}
	l.C <- b.latest
	return l
}

// Unsubscribe removes l and closes its Done channel.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	delete(b.listeners, l)
	b.mu.Unlock()
	close(l.done)
}

// Done is closed once the listener has been unsubscribed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// ListenerCount reports how many listeners are subscribed.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Seed sets the starting snapshot. Call it before Run so that clients
// joining before the first state change see the engine's initial state.
func (b *Broadcaster) Seed(s player.Snapshot) {
	b.mu.Lock()
	b.latest = s
	b.mu.Unlock()
}

// Run forwards snapshots from source until ctx ends or source is closed.
// A listener whose buffer is full misses that snapshot; the next one
// carries the full state anyway.
func (b *Broadcaster) Run(ctx context.Context, source <-chan player.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-source:
			if !ok {
				return
			}
			b.publish(snap)
		}
	}
}

func (b *Broadcaster) publish(snap player.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = snap
	for l := range b.listeners {
		select {
		case l.C <- snap:
		default:
		}
	}
}
