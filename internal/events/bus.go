package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventKind represents the type of domain event published after a commit.
type EventKind string

const (
	EventGuessSubmitted EventKind = "guess_submitted"
)

// Event carries IDs plus the few values consumers need without a store round-trip.
type Event struct {
	Kind          EventKind
	UserID        string
	LocationID    string
	GuessID       string
	Cost          int
	Balance       int
	ErrorDistance float64
	At            time.Time
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
// It has a single consumer; Publish never blocks the producer.
type Bus struct {
	ch      chan Event
	dropped atomic.Int64
	closeMu sync.RWMutex
	closed  bool
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer < 0 {
		buffer = 0
	}
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns false if the buffer is full or the bus is closed.
func (b *Bus) Publish(evt Event) bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	if b.closed {
		b.dropped.Add(1)
		return false
	}
	select {
	case b.ch <- evt:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Subscribe returns a read-only channel for the consumer.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}

// Dropped returns how many events were discarded.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Closed reports whether Close has been called.
func (b *Bus) Closed() bool {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()
	return b.closed
}

// Close stops accepting events and closes the subscriber channel. Safe to call twice.
func (b *Bus) Close() {
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
