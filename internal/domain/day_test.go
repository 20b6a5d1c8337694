package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOf_UsesLocalCalendar(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)

	// 18:30 UTC on Jan 1 is already Jan 2 in Jakarta.
	at := time.Date(2025, 1, 1, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, Day("2025-01-01"), DayOf(at, time.UTC))
	assert.Equal(t, Day("2025-01-02"), DayOf(at, jakarta))
}

func TestDay_DateRoundTrip(t *testing.T) {
	d, err := ParseDay("2025-03-09")
	require.NoError(t, err)

	date := d.Date()
	assert.Equal(t, time.UTC, date.Location())
	assert.Equal(t, 0, date.Hour())
	assert.Equal(t, d, DayFromDate(date))
}

func TestParseDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "09-03-2025", "2025/03/09"} {
		_, err := ParseDay(s)
		assert.Error(t, err, s)
	}
}

func TestClock_Today(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)

	c := Clock{Now: func() time.Time { return now }, Location: jakarta}

	assert.Equal(t, Day("2025-01-02"), c.Today())
	assert.Equal(t, 6, c.Time().Hour())
	assert.Equal(t, jakarta, c.Zone())
}

func TestClock_ZeroValue(t *testing.T) {
	var c Clock
	assert.NotEmpty(t, c.Today())
	assert.Equal(t, time.Local, c.Zone())
}
