package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/antrian-go/internal/domain"
	"github.com/kirinyoku/antrian-go/internal/service/query"
	"github.com/kirinyoku/antrian-go/internal/testutil"
)

var wib = time.FixedZone("WIB", 7*3600)

const today = domain.Day("2025-01-02")

func at(h, m int) time.Time {
	return time.Date(2025, 1, 2, h, m, 0, 0, wib)
}

func newService(t *testing.T) (*query.Service, *testutil.MemStore) {
	t.Helper()

	store := testutil.NewMemStore()
	clock := testutil.NewManualClock(at(10, 0))

	svc := query.New(store, nil, query.Config{
		Clock:         clock.Clock(wib),
		WaitPerTicket: 5 * time.Minute,
		HourFrom:      8,
		HourTo:        17,
	})

	return svc, store
}

func seed(store *testutil.MemStore, day domain.Day, number int, clinic string, status domain.Status, created time.Time) domain.Ticket {
	return store.Seed(domain.Ticket{
		Date:      day,
		Clinic:    clinic,
		Number:    number,
		Status:    status,
		CreatedAt: created,
	})
}

func TestStatus(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	seed(store, today, 1, "Umum", domain.StatusDone, at(8, 0))
	called := seed(store, today, 2, "Umum", domain.StatusCalled, at(8, 5))
	seed(store, today, 3, "Gigi", domain.StatusWaiting, at(8, 10))
	seed(store, today, 4, "Umum", domain.StatusSkipped, at(8, 15))
	seed(store, today, 5, "Umum", domain.StatusWaiting, at(8, 20))
	seed(store, "2025-01-01", 9, "Umum", domain.StatusWaiting, at(8, 0).AddDate(0, 0, -1))

	board, err := svc.Status(ctx, "")
	require.NoError(t, err)

	require.NotNil(t, board.Current)
	assert.Equal(t, called.ID, board.Current.ID)

	require.Len(t, board.Waiting, 2)
	assert.Equal(t, 3, board.Waiting[0].Number)
	assert.Equal(t, 5, board.Waiting[1].Number)

	board, err = svc.Status(ctx, "gigi")
	require.NoError(t, err)
	require.Len(t, board.Waiting, 1)
	assert.Equal(t, "Gigi", board.Waiting[0].Clinic)
	assert.NotNil(t, board.Current, "clinic filter does not hide the current number")
}

func TestStatus_EmptyDay(t *testing.T) {
	svc, _ := newService(t)

	board, err := svc.Status(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, board.Current)
	assert.NotNil(t, board.Waiting)
	assert.Empty(t, board.Waiting)
}

func TestCheck(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	seed(store, today, 1, "Umum", domain.StatusCalled, at(8, 0))
	seed(store, today, 2, "Umum", domain.StatusWaiting, at(8, 1))
	seed(store, today, 3, "Umum", domain.StatusSkipped, at(8, 2))
	seed(store, today, 4, "Gigi", domain.StatusWaiting, at(8, 3))
	mine := seed(store, today, 5, "Umum", domain.StatusWaiting, at(8, 4))
	seed(store, today, 6, "Umum", domain.StatusWaiting, at(8, 5))

	pos, err := svc.Check(ctx, mine.ID)
	require.NoError(t, err)

	assert.Equal(t, mine.ID, pos.Queue.ID)
	require.NotNil(t, pos.CurrentCalled)
	assert.Equal(t, 1, *pos.CurrentCalled)
	assert.Equal(t, 2, pos.WaitingBefore)
	assert.Equal(t, 10, pos.EstimatedWaitMinutes)
}

func TestCheck_NoCurrent(t *testing.T) {
	svc, store := newService(t)

	first := seed(store, today, 1, "Umum", domain.StatusWaiting, at(8, 0))

	pos, err := svc.Check(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Nil(t, pos.CurrentCalled)
	assert.Zero(t, pos.WaitingBefore)
	assert.Zero(t, pos.EstimatedWaitMinutes)
}

func TestCheck_Errors(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Check(ctx, 0)
	assert.ErrorIs(t, err, query.ErrTicketIDRequired)

	_, err = svc.Check(ctx, 42)
	assert.ErrorIs(t, err, query.ErrTicketNotFound)

	boom := errors.New("connection reset")
	store.Fail = func(string) error { return boom }

	_, err = svc.Check(ctx, 1)
	assert.ErrorIs(t, err, boom)
}

func TestOverview(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	seed(store, today, 1, "Umum", domain.StatusDone, at(7, 30))
	seed(store, today, 2, "Gigi", domain.StatusCalled, at(8, 10))
	seed(store, today, 3, "Umum", domain.StatusWaiting, at(8, 50))
	seed(store, today, 4, "Umum", domain.StatusSkipped, at(13, 0))
	seed(store, today, 5, "Anak", domain.StatusWaiting, at(17, 30))
	seed(store, "2025-01-01", 1, "Umum", domain.StatusWaiting, at(9, 0).AddDate(0, 0, -1))

	ov, err := svc.Overview(ctx, "")
	require.NoError(t, err)

	require.Len(t, ov.Queues, 5)
	for i, q := range ov.Queues {
		assert.Equal(t, i+1, q.Number)
	}

	assert.Equal(t, domain.StatusCounts{Total: 5, Waiting: 2, Called: 1, Done: 1, Skipped: 1}, ov.Stats)

	require.Len(t, ov.HourlyData, 10)
	assert.Equal(t, domain.HourlyCount{Hour: 8, Count: 2}, ov.HourlyData[0])
	assert.Equal(t, domain.HourlyCount{Hour: 13, Count: 1}, ov.HourlyData[5])
	assert.Equal(t, domain.HourlyCount{Hour: 17, Count: 1}, ov.HourlyData[9])

	ov, err = svc.Overview(ctx, "Umum")
	require.NoError(t, err)
	require.Len(t, ov.Queues, 3)
	assert.Equal(t, 5, ov.Stats.Total, "stats cover the whole day")
}

func TestExport(t *testing.T) {
	svc, store := newService(t)

	seed(store, today, 2, "Umum", domain.StatusWaiting, at(9, 0))
	seed(store, today, 1, "Umum", domain.StatusDone, at(8, 0))

	day, list, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, today, day)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Number)
	assert.Equal(t, wib, svc.Location())
}

func TestOverview_MidnightOnlyHistogram(t *testing.T) {
	store := testutil.NewMemStore()
	clock := testutil.NewManualClock(at(10, 0))

	svc := query.New(store, nil, query.Config{Clock: clock.Clock(wib)})

	seed(store, today, 1, "Umum", domain.StatusWaiting, at(0, 30))
	seed(store, today, 2, "Umum", domain.StatusWaiting, at(8, 0))

	ov, err := svc.Overview(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []domain.HourlyCount{{Hour: 0, Count: 1}}, ov.HourlyData)
}
