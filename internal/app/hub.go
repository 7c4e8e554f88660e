package app

import "sync"

// hub fans values out to subscribers. A subscriber whose buffer is full
// misses the value instead of blocking the publisher.
type hub[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	size   int
	closed bool
}

func newHub[T any](size int) *hub[T] {
	if size <= 0 {
		size = 1
	}
	return &hub[T]{subs: make(map[chan T]struct{}), size: size}
}

// subscribe returns a receive channel and a cancel func that unregisters and
// closes it. Cancel is safe to call more than once.
func (h *hub[T]) subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan T, h.size)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// publish returns the number of subscribers that dropped v.
func (h *hub[T]) publish(v T) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for ch := range h.subs {
		select {
		case ch <- v:
		default:
			dropped++
		}
	}
	return dropped
}

func (h *hub[T]) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.closed = true
}
