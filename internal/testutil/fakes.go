package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/kirinyoku/antrian-go/internal/domain"
)

// ManualClock is a clock tests move by hand.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{t: t}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// Clock wraps c for the services.
func (c *ManualClock) Clock(loc *time.Location) domain.Clock {
	return domain.Clock{Now: c.Now, Location: loc}
}

// CooldownLimiter allows one hit per key until Window has passed on Clock.
type CooldownLimiter struct {
	mu     sync.Mutex
	Clock  *ManualClock
	Window time.Duration
	Err    error
	last   map[string]time.Time
}

func (l *CooldownLimiter) Allow(ctx context.Context, suffix string) (bool, int64, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Err != nil {
		return false, 0, 0, l.Err
	}

	if l.last == nil {
		l.last = make(map[string]time.Time)
	}

	now := l.Clock.Now()
	if prev, ok := l.last[suffix]; ok && now.Sub(prev) < l.Window {
		return false, 1, l.Window - now.Sub(prev), nil
	}

	l.last[suffix] = now
	return true, 1, 0, nil
}

// Recorder captures cache invalidations and published events.
type Recorder struct {
	mu          sync.Mutex
	Invalidated []domain.Day
	Events      []string
	Err         error
}

func (r *Recorder) InvalidateDay(ctx context.Context, day domain.Day) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Invalidated = append(r.Invalidated, day)
	return r.Err
}

func (r *Recorder) PublishQueueChanged(ctx context.Context, day domain.Day, kind string, ticketID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, kind)
	return r.Err
}

func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Events...)
}
