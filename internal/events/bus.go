// Package events provides an in-memory bus for store mutation events.
package events

import (
	"sync"
)

// Subscriber is a function that receives events.
type Subscriber func(Event)

type subscription struct {
	types   []Type
	handler Subscriber
}

// Bus fans mutation events out to subscribers and keeps a bounded history
// of recent events in a ring buffer.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	eventChan   chan Event
	ring        *ringBuffer
	closed      bool
	done        chan struct{}
}

// NewBus creates a bus with the given channel and history capacity.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	b := &Bus{
		subscribers: make(map[int]*subscription),
		eventChan:   make(chan Event, bufferSize),
		ring:        newRingBuffer(bufferSize),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	for {
		select {
		case event := <-b.eventChan:
			b.ring.add(event)
			b.notify(event)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) notify(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if matches(sub, event) {
			go sub.handler(event)
		}
	}
}

func matches(sub *subscription, event Event) bool {
	if len(sub.types) == 0 {
		return true
	}
	for _, t := range sub.types {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish sends an event to the bus. Publishing never blocks a mutator: if
// the channel is full the event is dropped from the feed (the snapshot and
// project history remain the durable record).
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Subscribe registers a handler for specific event types (all types when
// none are given). Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, types ...Type) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = &subscription{types: types, handler: handler}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns up to limit most recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.ring.last(limit)
}

// Close stops the dispatch loop. Publish becomes a no-op afterwards.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}
