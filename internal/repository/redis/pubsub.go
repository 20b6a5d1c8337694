package redisrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

// QueueEvent announces a committed change to one day's queue.
type QueueEvent struct {
	Day      domain.Day `json:"day"`
	Kind     string     `json:"kind"`
	TicketID int64      `json:"ticketId,omitempty"`
	TsUnix   int64      `json:"ts"`
}

type QueuePubSub struct {
	rdb     *redis.Client
	channel string
}

func NewQueuePubSub(rdb *redis.Client) *QueuePubSub {
	return &QueuePubSub{
		rdb:     rdb,
		channel: ChannelQueueChanged(),
	}
}

func (p *QueuePubSub) PublishQueueChanged(ctx context.Context, day domain.Day, kind string, ticketID int64) error {
	msg := QueueEvent{
		Day:      day,
		Kind:     kind,
		TicketID: ticketID,
		TsUnix:   time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe delivers queue events to handler until ctx is done.
func (p *QueuePubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev QueueEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// Receive confirms the subscription before any message can be missed.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev QueueEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.Day != "" {
				handler(ctx, ev)
			}
		}
	}
}
