// Package stream fans captured diagnostics events out to live subscribers
// (the HTTP surface's WebSocket endpoint).
package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgnsrekt/browser_agent/internal/diagnostics"
)

const subscriberBufSize = 256

// Event is one captured diagnostics entry on the wire.
type Event struct {
	Class     diagnostics.EventClass `json:"class"`
	Timestamp time.Time              `json:"timestamp"`
	Entry     any                    `json:"entry"`
}

// Broker fans out events to all subscribers. Publishing never blocks:
// slow consumers have events dropped.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int64]chan Event)}
}

// Subscribe registers a new client. The returned channel is buffered;
// events overflowing it are dropped for that client only.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Notify adapts the broker to the diagnostics capture callback.
func (b *Broker) Notify(class diagnostics.EventClass, entry any) {
	b.Publish(Event{Class: class, Timestamp: time.Now().UTC(), Entry: entry})
}

// ClientCount reports the number of active subscribers.
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
