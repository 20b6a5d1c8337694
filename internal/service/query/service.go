package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/repository"
	redisrepo "github.com/kirinyoku/antrian-go/internal/repository/redis"
)

// Tickets is the read side of the ticket storage.
type Tickets interface {
	Get(ctx context.Context, id int64) (*domain.Ticket, error)
	Current(ctx context.Context, day domain.Day) (*domain.Ticket, error)
	List(ctx context.Context, day domain.Day, statuses ...domain.Status) ([]domain.Ticket, error)
	CountWaitingBefore(ctx context.Context, day domain.Day, number int) (int, error)
}

type Config struct {
	Clock         domain.Clock
	SnapshotTTL   time.Duration
	WaitPerTicket time.Duration
	HourFrom      int
	HourTo        int
}

type Service struct {
	tickets Tickets
	cache   *redisrepo.Cache
	cfg     Config
}

// Board is what the public display shows.
type Board struct {
	Current *domain.Ticket  `json:"current"`
	Waiting []domain.Ticket `json:"waiting"`
}

// Position describes where one ticket stands in today's queue.
type Position struct {
	Queue                domain.Ticket `json:"queue"`
	CurrentCalled        *int          `json:"currentCalled"`
	WaitingBefore        int           `json:"waitingBefore"`
	EstimatedWaitMinutes int           `json:"estimatedWaitMinutes"`
}

// Overview is the admin console's view of a day.
type Overview struct {
	Queues     []domain.Ticket      `json:"queues"`
	Stats      domain.StatusCounts  `json:"stats"`
	HourlyData []domain.HourlyCount `json:"hourlyData"`
}

// New builds the read service. cache may be nil, in which case every call
// goes to the database.
func New(tickets Tickets, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.SnapshotTTL < 0 {
		cfg.SnapshotTTL = 0
	}

	if cfg.WaitPerTicket <= 0 {
		cfg.WaitPerTicket = 5 * time.Minute
	}

	return &Service{
		tickets: tickets,
		cache:   cache,
		cfg:     cfg,
	}
}

// Today returns the day the service currently answers for.
func (s *Service) Today() domain.Day {
	return s.cfg.Clock.Today()
}

// Location is the zone ticket times are reported in.
func (s *Service) Location() *time.Location {
	return s.cfg.Clock.Zone()
}

// Status returns today's current ticket and the WAITING list ascending by
// number. A non-empty clinic narrows the waiting list to that clinic.
func (s *Service) Status(ctx context.Context, clinic string) (*Board, error) {
	const op = "service.query.Status"

	day := s.cfg.Clock.Today()

	board, err := cached(ctx, s, day, redisrepo.KeyStatus, func(ctx context.Context) (Board, error) {
		return s.loadBoard(ctx, day)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	board.Waiting = filterClinic(board.Waiting, clinic)

	return &board, nil
}

// Check looks up ticket id and reports how many WAITING tickets of today are
// ahead of it.
//
// Returns:
//   - *Position: the ticket plus today's queue position.
//   - error: query.ErrTicketIDRequired if id is not positive.
//   - error: query.ErrTicketNotFound if no ticket has that id.
func (s *Service) Check(ctx context.Context, id int64) (*Position, error) {
	const op = "service.query.Check"

	if id <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrTicketIDRequired)
	}

	t, err := s.tickets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrTicketNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	day := s.cfg.Clock.Today()

	cur, err := s.current(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	before, err := s.tickets.CountWaitingBefore(ctx, day, t.Number)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pos := &Position{
		Queue:                *t,
		WaitingBefore:        before,
		EstimatedWaitMinutes: int((time.Duration(before) * s.cfg.WaitPerTicket).Minutes()),
	}
	if cur != nil {
		n := cur.Number
		pos.CurrentCalled = &n
	}

	return pos, nil
}

// Overview returns today's tickets by number with per-status counts and the
// hourly histogram of creation times. clinic narrows the ticket list only;
// stats and histogram always cover the whole day.
func (s *Service) Overview(ctx context.Context, clinic string) (*Overview, error) {
	const op = "service.query.Overview"

	day := s.cfg.Clock.Today()

	ov, err := cached(ctx, s, day, redisrepo.KeyOverview, func(ctx context.Context) (Overview, error) {
		list, err := s.tickets.List(ctx, day)
		if err != nil {
			return Overview{}, err
		}

		return Overview{
			Queues:     list,
			Stats:      domain.Count(list),
			HourlyData: domain.Hourly(list, s.cfg.HourFrom, s.cfg.HourTo, s.cfg.Clock.Zone()),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ov.Queues = filterClinic(ov.Queues, clinic)

	return &ov, nil
}

// Export returns every ticket of today straight from the database.
func (s *Service) Export(ctx context.Context) (domain.Day, []domain.Ticket, error) {
	const op = "service.query.Export"

	day := s.cfg.Clock.Today()

	list, err := s.tickets.List(ctx, day)
	if err != nil {
		return day, nil, fmt.Errorf("%s: %w", op, err)
	}

	return day, list, nil
}

// loadBoard reads CALLED and WAITING tickets in one statement so the board
// never mixes rows from before and after a write.
func (s *Service) loadBoard(ctx context.Context, day domain.Day) (Board, error) {
	list, err := s.tickets.List(ctx, day, domain.StatusCalled, domain.StatusWaiting)
	if err != nil {
		return Board{}, err
	}

	board := Board{Waiting: make([]domain.Ticket, 0, len(list))}
	for _, t := range list {
		switch t.Status {
		case domain.StatusCalled:
			// list is ordered by number; the last CALLED wins
			cur := t
			board.Current = &cur
		case domain.StatusWaiting:
			board.Waiting = append(board.Waiting, t)
		}
	}

	return board, nil
}

func (s *Service) current(ctx context.Context, day domain.Day) (*domain.Ticket, error) {
	cur, err := s.tickets.Current(ctx, day)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return cur, err
}

// cached serves a snapshot of day under the day's current generation. The
// generation is read before loading, so a load racing a commit can only ever
// be stored under a key the commit has already retired.
func cached[T any](
	ctx context.Context,
	s *Service,
	day domain.Day,
	key func(day domain.Day, gen int64) string,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if s.cache == nil || s.cfg.SnapshotTTL == 0 {
		return loader(ctx)
	}

	gen, err := s.cache.Generation(ctx, day)
	if err != nil {
		return loader(ctx)
	}

	return redisrepo.GetOrSetJSON(ctx, s.cache, key(day, gen), s.cfg.SnapshotTTL, loader)
}

func filterClinic(list []domain.Ticket, clinic string) []domain.Ticket {
	clinic = strings.TrimSpace(clinic)
	if clinic == "" {
		return list
	}

	out := make([]domain.Ticket, 0, len(list))
	for _, t := range list {
		if strings.EqualFold(t.Clinic, clinic) {
			out = append(out, t)
		}
	}
	return out
}
