package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/repository"
)

const ticketColumns = `id, date, clinic, number, status, created_at, called_at, counter`

type TicketRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *TicketRepo) With(db DB) *TicketRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *TicketRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// LockDay takes a transaction-scoped advisory lock for one day so numbering
// and call transitions for that day run one at a time. Must be called inside
// a transaction; outside one the lock is released immediately.
func (r *TicketRepo) LockDay(ctx context.Context, day domain.Day) error {
	const op = "postgresrepo.TicketRepo.LockDay"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtext('tickets:' || $1::text))`,
		day.String(),
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// MaxNumber returns the highest number issued for day, or 0 when the day has
// no tickets yet.
func (r *TicketRepo) MaxNumber(ctx context.Context, day domain.Day) (int, error) {
	const op = "postgresrepo.TicketRepo.MaxNumber"

	db := r.handle()

	var last int
	if err := db.QueryRow(ctx,
		`SELECT COALESCE(MAX(number), 0)
		 FROM tickets
		 WHERE date = $1`,
		day.Date(),
	).Scan(&last); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return last, nil
}

// Create inserts a WAITING ticket.
//
// Returns:
//   - *domain.Ticket: the stored ticket including its generated id.
//   - error: repository.ErrConflict if number is already taken for day.
func (r *TicketRepo) Create(
	ctx context.Context,
	day domain.Day,
	clinic string,
	number int,
	createdAt time.Time,
) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Create"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`INSERT INTO tickets(date, clinic, number, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+ticketColumns,
		day.Date(), clinic, number, string(domain.StatusWaiting), createdAt,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// Get retrieves a ticket by its ID.
//
// Returns:
//   - *domain.Ticket: the ticket when found.
//   - error: repository.ErrNotFound if the ticket does not exist.
func (r *TicketRepo) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// CompleteCalled moves every CALLED ticket of day to DONE and returns how many
// rows changed.
func (r *TicketRepo) CompleteCalled(ctx context.Context, day domain.Day) (int64, error) {
	const op = "postgresrepo.TicketRepo.CompleteCalled"

	db := r.handle()

	to, _ := domain.ActionComplete.Target()
	tag, err := db.Exec(ctx,
		`UPDATE tickets
		 SET status = $2
		 WHERE date = $1 AND status = ANY($3)`,
		day.Date(), string(to), domain.StatusNames(domain.ActionComplete.AllowedFrom()),
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// NextWaiting returns the lowest-numbered WAITING ticket of day and locks its
// row until the surrounding transaction ends.
//
// Returns:
//   - error: repository.ErrNotFound if nobody is waiting.
func (r *TicketRepo) NextWaiting(ctx context.Context, day domain.Day) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.NextWaiting"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE date = $1 AND status = $2
		 ORDER BY number
		 LIMIT 1
		 FOR UPDATE`,
		day.Date(), string(domain.StatusWaiting),
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// Apply performs action on one ticket when its current status allows it.
// counter and at are only written when the action calls the ticket.
//
// Returns:
//   - *domain.Ticket: the updated ticket.
//   - error: repository.ErrNotFound if the ticket does not exist.
//   - error: repository.ErrStatusMismatch if the ticket exists but its status
//     does not allow the action.
//   - error: repository.ErrConflict if another ticket of the same day is
//     already CALLED.
func (r *TicketRepo) Apply(
	ctx context.Context,
	id int64,
	action domain.Action,
	counter int,
	at time.Time,
) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Apply"

	to, ok := action.Target()
	if !ok {
		return nil, fmt.Errorf("%s: unknown action %q", op, action)
	}

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`UPDATE tickets
		 SET status    = $2::text,
		     called_at = CASE WHEN $2::text = 'CALLED' THEN $3 ELSE called_at END,
		     counter   = CASE WHEN $2::text = 'CALLED' THEN $4 ELSE counter END
		 WHERE id = $1 AND status = ANY($5)
		 RETURNING `+ticketColumns,
		id, string(to), at, counter, domain.StatusNames(action.AllowedFrom()),
	))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapDBErr(op, err)
	}

	var exists bool
	if err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tickets WHERE id = $1)`,
		id,
	).Scan(&exists); err != nil {
		return nil, wrapDBErr(op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil, fmt.Errorf("%s:%w", op, repository.ErrStatusMismatch)
}

func (r *TicketRepo) UpdateClinic(ctx context.Context, id int64, clinic string) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.UpdateClinic"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`UPDATE tickets
		 SET clinic = $2
		 WHERE id = $1
		 RETURNING `+ticketColumns,
		id, clinic,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// Current returns the most recently called ticket of day, i.e. the CALLED
// ticket with the highest number.
//
// Returns:
//   - error: repository.ErrNotFound if no ticket is CALLED.
func (r *TicketRepo) Current(ctx context.Context, day domain.Day) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Current"

	db := r.handle()

	t, err := scanTicket(db.QueryRow(ctx,
		`SELECT `+ticketColumns+`
		 FROM tickets
		 WHERE date = $1 AND status = $2
		 ORDER BY number DESC
		 LIMIT 1`,
		day.Date(), string(domain.StatusCalled),
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return t, nil
}

// List returns the tickets of day ordered by number. With no statuses given
// every ticket of the day is returned.
func (r *TicketRepo) List(
	ctx context.Context,
	day domain.Day,
	statuses ...domain.Status,
) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.List"

	db := r.handle()

	var rows pgx.Rows
	var err error

	if len(statuses) == 0 {
		rows, err = db.Query(ctx,
			`SELECT `+ticketColumns+`
			 FROM tickets
			 WHERE date = $1
			 ORDER BY number`,
			day.Date(),
		)
	} else {
		rows, err = db.Query(ctx,
			`SELECT `+ticketColumns+`
			 FROM tickets
			 WHERE date = $1 AND status = ANY($2)
			 ORDER BY number`,
			day.Date(), domain.StatusNames(statuses),
		)
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// CountWaitingBefore counts WAITING tickets of day whose number is strictly
// below number.
func (r *TicketRepo) CountWaitingBefore(ctx context.Context, day domain.Day, number int) (int, error) {
	const op = "postgresrepo.TicketRepo.CountWaitingBefore"

	db := r.handle()

	var n int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM tickets
		 WHERE date = $1 AND status = $2 AND number < $3`,
		day.Date(), string(domain.StatusWaiting), number,
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *TicketRepo) DeleteDay(ctx context.Context, day domain.Day) (int64, error) {
	const op = "postgresrepo.TicketRepo.DeleteDay"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM tickets WHERE date = $1`, day.Date())
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t      domain.Ticket
		date   time.Time
		status string
	)

	if err := row.Scan(
		&t.ID,
		&date,
		&t.Clinic,
		&t.Number,
		&status,
		&t.CreatedAt,
		&t.CalledAt,
		&t.Counter,
	); err != nil {
		return nil, err
	}

	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	t.Date = domain.DayFromDate(date)
	t.Status = st

	return &t, nil
}
