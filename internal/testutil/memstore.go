// Package testutil holds in-memory stand-ins for the Postgres and Redis
// backed pieces so services and handlers can be tested without either.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/repository"
	"github.com/kirinyoku/antrian-go/internal/service/queue"
	"github.com/kirinyoku/antrian-go/internal/uow"
)

// MemStore keeps tickets in a map and mirrors the table's constraints:
// unique number per day and at most one CALLED ticket per day.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextID  int64
	tickets map[int64]domain.Ticket

	// Fail, when set, is consulted on every call; a non-nil result is
	// returned instead of touching the data.
	Fail func(method string) error
}

func NewMemStore() *MemStore {
	return &MemStore{tickets: make(map[int64]domain.Ticket)}
}

// InTx serializes callers and rolls the map back when fn fails.
func (m *MemStore) InTx(
	ctx context.Context,
	fn func(ctx context.Context, tickets queue.Tickets, after func(uow.AfterCommit)) error,
) error {
	m.txMu.Lock()

	m.mu.Lock()
	snapshot := make(map[int64]domain.Ticket, len(m.tickets))
	for id, t := range m.tickets {
		snapshot[id] = t
	}
	nextID := m.nextID
	m.mu.Unlock()

	var hooks []uow.AfterCommit
	err := fn(ctx, m, func(h uow.AfterCommit) { hooks = append(hooks, h) })
	if err != nil {
		m.mu.Lock()
		m.tickets = snapshot
		m.nextID = nextID
		m.mu.Unlock()
		m.txMu.Unlock()
		return err
	}

	m.txMu.Unlock()

	for _, h := range hooks {
		h(ctx)
	}

	return nil
}

// Seed stores t as is, assigning an id when it has none.
func (m *MemStore) Seed(t domain.Ticket) domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
	} else if t.ID > m.nextID {
		m.nextID = t.ID
	}
	m.tickets[t.ID] = t

	return t
}

// All returns every stored ticket ordered by day and number.
func (m *MemStore) All() []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t)
	}
	sortTickets(out)

	return out
}

func (m *MemStore) LockDay(ctx context.Context, day domain.Day) error {
	return m.fail("LockDay")
}

func (m *MemStore) MaxNumber(ctx context.Context, day domain.Day) (int, error) {
	if err := m.fail("MaxNumber"); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	max := 0
	for _, t := range m.tickets {
		if t.Date == day && t.Number > max {
			max = t.Number
		}
	}

	return max, nil
}

func (m *MemStore) Create(
	ctx context.Context,
	day domain.Day,
	clinic string,
	number int,
	createdAt time.Time,
) (*domain.Ticket, error) {
	if err := m.fail("Create"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tickets {
		if t.Date == day && t.Number == number {
			return nil, repository.ErrConflict
		}
	}

	m.nextID++
	t := domain.Ticket{
		ID:        m.nextID,
		Date:      day,
		Clinic:    clinic,
		Number:    number,
		Status:    domain.StatusWaiting,
		CreatedAt: createdAt,
	}
	m.tickets[t.ID] = t

	return &t, nil
}

func (m *MemStore) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	if err := m.fail("Get"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	return &t, nil
}

func (m *MemStore) CompleteCalled(ctx context.Context, day domain.Day) (int64, error) {
	if err := m.fail("CompleteCalled"); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, t := range m.tickets {
		if t.Date == day && domain.ActionComplete.CanApply(t.Status) {
			t.Status = domain.StatusDone
			m.tickets[id] = t
			n++
		}
	}

	return n, nil
}

func (m *MemStore) NextWaiting(ctx context.Context, day domain.Day) (*domain.Ticket, error) {
	if err := m.fail("NextWaiting"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var next *domain.Ticket
	for _, t := range m.tickets {
		if t.Date != day || t.Status != domain.StatusWaiting {
			continue
		}
		if next == nil || t.Number < next.Number {
			cp := t
			next = &cp
		}
	}

	if next == nil {
		return nil, repository.ErrNotFound
	}

	return next, nil
}

func (m *MemStore) Apply(
	ctx context.Context,
	id int64,
	action domain.Action,
	counter int,
	at time.Time,
) (*domain.Ticket, error) {
	if err := m.fail("Apply"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if !action.CanApply(t.Status) {
		return nil, repository.ErrStatusMismatch
	}

	to, _ := action.Target()
	if to == domain.StatusCalled {
		for oid, o := range m.tickets {
			if oid != id && o.Date == t.Date && o.Status == domain.StatusCalled {
				return nil, repository.ErrConflict
			}
		}
		calledAt := at
		c := counter
		t.CalledAt = &calledAt
		t.Counter = &c
	}
	t.Status = to
	m.tickets[id] = t

	return &t, nil
}

func (m *MemStore) UpdateClinic(ctx context.Context, id int64, clinic string) (*domain.Ticket, error) {
	if err := m.fail("UpdateClinic"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t.Clinic = clinic
	m.tickets[id] = t

	return &t, nil
}

func (m *MemStore) Current(ctx context.Context, day domain.Day) (*domain.Ticket, error) {
	if err := m.fail("Current"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var cur *domain.Ticket
	for _, t := range m.tickets {
		if t.Date != day || t.Status != domain.StatusCalled {
			continue
		}
		if cur == nil || t.Number > cur.Number {
			cp := t
			cur = &cp
		}
	}

	if cur == nil {
		return nil, repository.ErrNotFound
	}

	return cur, nil
}

func (m *MemStore) List(ctx context.Context, day domain.Day, statuses ...domain.Status) ([]domain.Ticket, error) {
	if err := m.fail("List"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.Ticket{}
	for _, t := range m.tickets {
		if t.Date != day {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, t.Status) {
			continue
		}
		out = append(out, t)
	}
	sortTickets(out)

	return out, nil
}

func (m *MemStore) CountWaitingBefore(ctx context.Context, day domain.Day, number int) (int, error) {
	if err := m.fail("CountWaitingBefore"); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tickets {
		if t.Date == day && t.Status == domain.StatusWaiting && t.Number < number {
			n++
		}
	}

	return n, nil
}

func (m *MemStore) DeleteDay(ctx context.Context, day domain.Day) (int64, error) {
	if err := m.fail("DeleteDay"); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, t := range m.tickets {
		if t.Date == day {
			delete(m.tickets, id)
			n++
		}
	}

	return n, nil
}

func (m *MemStore) fail(method string) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(method)
}

func hasStatus(ss []domain.Status, s domain.Status) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

func sortTickets(ts []domain.Ticket) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Date != ts[j].Date {
			return ts[i].Date < ts[j].Date
		}
		return ts[i].Number < ts[j].Number
	})
}
