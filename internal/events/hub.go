package events

import (
	"context"
	"sync"

	redisrepo "github.com/kirinyoku/antrian-go/internal/repository/redis"
)

// Source delivers queue events until ctx is done.
type Source interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, ev redisrepo.QueueEvent)) error
}

// Hub fans queue events from one Redis subscription out to every open
// stream. Slow listeners lose events rather than block the others.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan redisrepo.QueueEvent]struct{}
	buf    int
	closed bool
}

func NewHub(buf int) *Hub {
	if buf <= 0 {
		buf = 16
	}

	return &Hub{
		subs: make(map[chan redisrepo.QueueEvent]struct{}),
		buf:  buf,
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener goes away; it closes the channel.
func (h *Hub) Subscribe() (<-chan redisrepo.QueueEvent, func()) {
	ch := make(chan redisrepo.QueueEvent, h.buf)

	h.mu.Lock()
	defer h.mu.Unlock()

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

// Close ends every open stream and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

func (h *Hub) Publish(_ context.Context, ev redisrepo.QueueEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Listeners reports how many streams are attached.
func (h *Hub) Listeners() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Run feeds the hub from src until ctx is done.
func (h *Hub) Run(ctx context.Context, src Source) error {
	err := src.Subscribe(ctx, h.Publish)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
