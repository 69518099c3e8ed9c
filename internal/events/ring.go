package events

import "sync"

// ringBuffer keeps the last capacity events for the history endpoint.
type ringBuffer struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	start    int
	count    int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		events:   make([]Event, capacity),
		capacity: capacity,
	}
}

func (rb *ringBuffer) add(e Event) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.count < rb.capacity {
		rb.events[(rb.start+rb.count)%rb.capacity] = e
		rb.count++
		return
	}
	rb.events[rb.start] = e
	rb.start = (rb.start + 1) % rb.capacity
}

// last returns up to limit most recent events, oldest first.
func (rb *ringBuffer) last(limit int) []Event {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := rb.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, 0, n)
	for i := rb.count - n; i < rb.count; i++ {
		out = append(out, rb.events[(rb.start+i)%rb.capacity])
	}
	return out
}
