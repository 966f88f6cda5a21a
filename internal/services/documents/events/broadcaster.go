// Package events fans document request lifecycle changes out to in-process
// subscribers, such as the staff live activity feed.
package events

import (
	"sync"
	"time"
)

// subscriberBuffer bounds the per-subscriber queue; slow subscribers lose
// events rather than blocking publishers.
const subscriberBuffer = 16

// RequestEvent describes one request lifecycle change.
type RequestEvent struct {
	Action     string    `json:"action"`
	RequestID  string    `json:"request_id"`
	ClientID   string    `json:"client_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Broadcaster delivers request events to registered subscribers.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[uint64]chan RequestEvent
	nextID      uint64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: make(map[uint64]chan RequestEvent)}
}

// Subscribe registers a subscriber and returns its event channel along with a
// release function. The channel is closed on release.
func (b *Broadcaster) Subscribe() (<-chan RequestEvent, func()) {
	ch := make(chan RequestEvent, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	release := func() {
		b.mu.Lock()
		current, ok := b.subscribers[id]
		if ok {
			delete(b.subscribers, id)
		}
		b.mu.Unlock()
		if ok {
			close(current)
		}
	}
	return ch, release
}

// Publish fans the event out to every subscriber without blocking.
// It is a no-op on a nil broadcaster.
func (b *Broadcaster) Publish(event RequestEvent) {
	if b == nil {
		return
	}

	b.mu.Lock()
	targets := make([]chan RequestEvent, 0, len(b.subscribers))
	for _, ch := range b.subscribers {
		targets = append(targets, ch)
	}
	b.mu.Unlock()

	for _, ch := range targets {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many subscribers are registered.
func (b *Broadcaster) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
