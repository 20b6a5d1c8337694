package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tickets := []Ticket{
		{Status: StatusWaiting},
		{Status: StatusWaiting},
		{Status: StatusCalled},
		{Status: StatusDone},
		{Status: StatusDone},
		{Status: StatusDone},
		{Status: StatusSkipped},
	}

	assert.Equal(t, StatusCounts{Total: 7, Waiting: 2, Called: 1, Done: 3, Skipped: 1}, Count(tickets))
	assert.Equal(t, StatusCounts{}, Count(nil))
}

func TestHourly(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	at := func(h, m int) time.Time {
		// stored in UTC, bucketed in local time
		return time.Date(2025, 1, 2, h, m, 0, 0, wib).UTC()
	}

	tickets := []Ticket{
		{CreatedAt: at(7, 59)},
		{CreatedAt: at(8, 0)},
		{CreatedAt: at(8, 45)},
		{CreatedAt: at(12, 10)},
		{CreatedAt: at(17, 59)},
		{CreatedAt: at(18, 0)},
	}

	got := Hourly(tickets, 8, 17, wib)
	require.Len(t, got, 10)

	assert.Equal(t, HourlyCount{Hour: 8, Count: 2}, got[0])
	assert.Equal(t, HourlyCount{Hour: 12, Count: 1}, got[4])
	assert.Equal(t, HourlyCount{Hour: 17, Count: 1}, got[9])

	total := 0
	for _, h := range got {
		total += h.Count
	}
	assert.Equal(t, 4, total)
}

func TestHourly_EmptyDayHasZeroBuckets(t *testing.T) {
	got := Hourly(nil, 8, 17, time.UTC)
	require.Len(t, got, 10)
	for i, h := range got {
		assert.Equal(t, 8+i, h.Hour)
		assert.Zero(t, h.Count)
	}

	assert.Empty(t, Hourly(nil, 10, 9, time.UTC))
}
