package queue

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrClinicRequired   = errors.New("clinic is required")
	ErrTicketIDRequired = errors.New("ticket id is required")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrNotCancellable   = errors.New("ticket can no longer be cancelled")
	ErrNumberConflict   = errors.New("ticket number already taken")
	ErrCalledConflict   = errors.New("another ticket is already called")
)

// RateLimitedError is returned by Take while the client's cooldown runs.
type RateLimitedError struct {
	RetryAfter time.Duration
	Cooldown   time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}
