package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/repository"
	"github.com/kirinyoku/antrian-go/internal/uow"
)

// Event kinds published after a mutation commits.
const (
	EventTaken         = "taken"
	EventCalled        = "called"
	EventRecalled      = "recalled"
	EventSkipped       = "skipped"
	EventCancelled     = "cancelled"
	EventClinicChanged = "clinic_changed"
	EventReset         = "reset"
)

// Tickets is the ticket storage the queue service writes through.
type Tickets interface {
	LockDay(ctx context.Context, day domain.Day) error
	MaxNumber(ctx context.Context, day domain.Day) (int, error)
	Create(ctx context.Context, day domain.Day, clinic string, number int, createdAt time.Time) (*domain.Ticket, error)
	Get(ctx context.Context, id int64) (*domain.Ticket, error)
	CompleteCalled(ctx context.Context, day domain.Day) (int64, error)
	NextWaiting(ctx context.Context, day domain.Day) (*domain.Ticket, error)
	Apply(ctx context.Context, id int64, action domain.Action, counter int, at time.Time) (*domain.Ticket, error)
	UpdateClinic(ctx context.Context, id int64, clinic string) (*domain.Ticket, error)
	DeleteDay(ctx context.Context, day domain.Day) (int64, error)
}

// Transactor runs fn against Tickets bound to a single transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error) error
}

// Limiter enforces the per-client take cooldown.
type Limiter interface {
	Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

type Invalidator interface {
	InvalidateDay(ctx context.Context, day domain.Day) error
}

type Notifier interface {
	PublishQueueChanged(ctx context.Context, day domain.Day, kind string, ticketID int64) error
}

type Config struct {
	Clock          domain.Clock
	Cooldown       time.Duration
	DefaultCounter int
}

type Service struct {
	tickets  Tickets
	tx       Transactor
	cache    Invalidator
	notifier Notifier
	limiter  Limiter
	log      *slog.Logger
	cfg      Config
}

// New builds the queue service. cache, notifier and limiter are optional.
func New(
	tickets Tickets,
	tx Transactor,
	cache Invalidator,
	notifier Notifier,
	limiter Limiter,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.DefaultCounter <= 0 {
		cfg.DefaultCounter = 1
	}

	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}

	if log == nil {
		log = slog.Default()
	}

	return &Service{
		tickets:  tickets,
		tx:       tx,
		cache:    cache,
		notifier: notifier,
		limiter:  limiter,
		log:      log,
		cfg:      cfg,
	}
}

// Take issues the next number of today for clinic.
//
// Parameters:
//   - ctx: request-scoped context.
//   - clinic: clinic label printed on the ticket.
//   - clientID: identity the cooldown is keyed on; empty disables the check.
//
// Returns:
//   - *domain.Ticket: the created WAITING ticket.
//   - error: queue.ErrClinicRequired if clinic is blank.
//   - error: *queue.RateLimitedError while the client's cooldown runs.
//   - error: queue.ErrNumberConflict if the number was taken concurrently.
func (s *Service) Take(ctx context.Context, clinic, clientID string) (*domain.Ticket, error) {
	const op = "service.queue.Take"

	clinic = strings.TrimSpace(clinic)
	if clinic == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrClinicRequired)
	}

	if s.limiter != nil && clientID != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, clientID)
		switch {
		case err != nil:
			// fail open
			s.log.WarnContext(ctx, "take cooldown check failed", slog.String("op", op), slog.Any("err", err))
		case !ok:
			return nil, fmt.Errorf("%s:%w", op, &RateLimitedError{RetryAfter: retry, Cooldown: s.cfg.Cooldown})
		}
	}

	now, day := s.now()

	var ticket *domain.Ticket

	err := s.tx.InTx(ctx, func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error {
		if err := tickets.LockDay(ctx, day); err != nil {
			return err
		}

		last, err := tickets.MaxNumber(ctx, day)
		if err != nil {
			return err
		}

		t, err := tickets.Create(ctx, day, clinic, last+1, now)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrNumberConflict
			}
			return err
		}

		ticket = t
		after(s.changed(day, EventTaken, t.ID))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return ticket, nil
}

// CallNext completes today's CALLED ticket and calls the lowest WAITING number
// to counter. When nobody is waiting the demotion still happens and the
// returned ticket is nil.
func (s *Service) CallNext(ctx context.Context, counter int) (*domain.Ticket, error) {
	const op = "service.queue.CallNext"

	counter = s.counter(counter)
	now, day := s.now()

	var called *domain.Ticket

	err := s.tx.InTx(ctx, func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error {
		if err := tickets.LockDay(ctx, day); err != nil {
			return err
		}

		done, err := tickets.CompleteCalled(ctx, day)
		if err != nil {
			return err
		}

		next, err := tickets.NextWaiting(ctx, day)
		if errors.Is(err, repository.ErrNotFound) {
			if done > 0 {
				after(s.changed(day, EventCalled, 0))
			}
			return nil
		}
		if err != nil {
			return err
		}

		t, err := tickets.Apply(ctx, next.ID, domain.ActionCall, counter, now)
		if err != nil {
			return mapApplyErr(err)
		}

		called = t
		after(s.changed(day, EventCalled, t.ID))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return called, nil
}

// Recall calls ticket id again, whatever its status, after completing
// today's CALLED ticket. A ticket of an earlier day also completes that day's
// CALLED ticket.
//
// Returns:
//   - error: queue.ErrTicketIDRequired if id is not positive.
//   - error: queue.ErrTicketNotFound if no ticket has that id.
func (s *Service) Recall(ctx context.Context, id int64, counter int) (*domain.Ticket, error) {
	const op = "service.queue.Recall"

	if id <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketIDRequired)
	}

	counter = s.counter(counter)
	now, day := s.now()

	var recalled *domain.Ticket

	err := s.tx.InTx(ctx, func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error {
		cur, err := tickets.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		// both days are locked in date order
		days := []domain.Day{day}
		if cur.Date != day {
			days = append(days, cur.Date)
			slices.Sort(days)
		}

		for _, d := range days {
			if err := tickets.LockDay(ctx, d); err != nil {
				return err
			}
		}

		for _, d := range days {
			if _, err := tickets.CompleteCalled(ctx, d); err != nil {
				return err
			}
		}

		t, err := tickets.Apply(ctx, id, domain.ActionRecall, counter, now)
		if err != nil {
			return mapApplyErr(err)
		}

		recalled = t
		after(s.changed(t.Date, EventRecalled, t.ID))
		if t.Date != day {
			after(s.changed(day, EventRecalled, t.ID))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return recalled, nil
}

// Skip marks ticket id SKIPPED regardless of its status.
func (s *Service) Skip(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "service.queue.Skip"

	t, err := s.apply(ctx, id, domain.ActionSkip)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.changed(t.Date, EventSkipped, t.ID)(ctx)

	return t, nil
}

// Cancel withdraws a WAITING ticket on the patient's request.
//
// Returns:
//   - error: queue.ErrNotCancellable if the ticket has already been called,
//     completed or skipped.
func (s *Service) Cancel(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "service.queue.Cancel"

	t, err := s.apply(ctx, id, domain.ActionCancel)
	if err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, fmt.Errorf("%s:%w", op, ErrNotCancellable)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.changed(t.Date, EventCancelled, t.ID)(ctx)

	return t, nil
}

// ChangeClinic relabels ticket id. Status is not checked.
func (s *Service) ChangeClinic(ctx context.Context, id int64, clinic string) (*domain.Ticket, error) {
	const op = "service.queue.ChangeClinic"

	if id <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrTicketIDRequired)
	}

	clinic = strings.TrimSpace(clinic)
	if clinic == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrClinicRequired)
	}

	t, err := s.tickets.UpdateClinic(ctx, id, clinic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.changed(t.Date, EventClinicChanged, t.ID)(ctx)

	return t, nil
}

// ResetDay deletes every ticket of today and returns how many were removed.
// Other days are left alone.
func (s *Service) ResetDay(ctx context.Context) (int64, error) {
	const op = "service.queue.ResetDay"

	day := s.cfg.Clock.Today()

	var n int64

	err := s.tx.InTx(ctx, func(ctx context.Context, tickets Tickets, after func(uow.AfterCommit)) error {
		if err := tickets.LockDay(ctx, day); err != nil {
			return err
		}

		deleted, err := tickets.DeleteDay(ctx, day)
		if err != nil {
			return err
		}

		n = deleted
		after(s.changed(day, EventReset, 0))

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	s.log.InfoContext(ctx, "queue day reset", slog.String("day", day.String()), slog.Int64("deleted", n))

	return n, nil
}

// now reads the clock once so a ticket's day and timestamps always agree.
func (s *Service) now() (time.Time, domain.Day) {
	t := s.cfg.Clock.Time()
	return t, domain.DayOf(t, s.cfg.Clock.Zone())
}

func (s *Service) apply(ctx context.Context, id int64, action domain.Action) (*domain.Ticket, error) {
	if id <= 0 {
		return nil, ErrTicketIDRequired
	}

	t, err := s.tickets.Apply(ctx, id, action, 0, s.cfg.Clock.Time())
	if err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, err
		}
		return nil, mapApplyErr(err)
	}

	return t, nil
}

func (s *Service) counter(c int) int {
	if c <= 0 {
		return s.cfg.DefaultCounter
	}
	return c
}

// changed returns the hook that drops day's cached views and notifies
// listeners. Failures are logged only; the write has already committed.
func (s *Service) changed(day domain.Day, kind string, ticketID int64) uow.AfterCommit {
	return func(ctx context.Context) {
		if s.cache != nil {
			if err := s.cache.InvalidateDay(ctx, day); err != nil {
				s.log.WarnContext(ctx, "cache invalidation failed",
					slog.String("day", day.String()), slog.Any("err", err))
			}
		}

		if s.notifier != nil {
			if err := s.notifier.PublishQueueChanged(ctx, day, kind, ticketID); err != nil {
				s.log.WarnContext(ctx, "queue event publish failed",
					slog.String("day", day.String()), slog.String("kind", kind), slog.Any("err", err))
			}
		}
	}
}

func mapApplyErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTicketNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrCalledConflict
	default:
		return err
	}
}
