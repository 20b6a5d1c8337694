package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisrepo "github.com/kirinyoku/antrian-go/internal/repository/redis"
)

type chanSource struct {
	events []redisrepo.QueueEvent
}

func (s chanSource) Subscribe(ctx context.Context, handler func(ctx context.Context, ev redisrepo.QueueEvent)) error {
	for _, ev := range s.events {
		handler(ctx, ev)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHub_FanOut(t *testing.T) {
	h := NewHub(4)

	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()

	require.Equal(t, 2, h.Listeners())

	ev := redisrepo.QueueEvent{Day: "2025-01-02", Kind: "called", TicketID: 7}
	h.Publish(context.Background(), ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestHub_DropsForSlowListener(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(context.Background(), redisrepo.QueueEvent{Day: "2025-01-02", Kind: "taken", TicketID: 1})
	h.Publish(context.Background(), redisrepo.QueueEvent{Day: "2025-01-02", Kind: "taken", TicketID: 2})

	got := <-ch
	assert.Equal(t, int64(1), got.TicketID)

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %+v", ev)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Listeners())
}

func TestHub_Run(t *testing.T) {
	h := NewHub(4)
	ch, cancel := h.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)

	src := chanSource{events: []redisrepo.QueueEvent{{Day: "2025-01-02", Kind: "reset"}}}
	go func() { done <- h.Run(ctx, src) }()

	select {
	case ev := <-ch:
		assert.Equal(t, "reset", ev.Kind)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	stop()
	assert.NoError(t, <-done)
}

func TestHub_CloseEndsStreams(t *testing.T) {
	h := NewHub(1)

	ch, cancel := h.Subscribe()
	defer cancel()

	h.Close()

	_, open := <-ch
	assert.False(t, open)

	late, lateCancel := h.Subscribe()
	defer lateCancel()
	_, open = <-late
	assert.False(t, open)
	assert.Equal(t, 0, h.Listeners())
}
