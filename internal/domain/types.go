package domain

import (
	"time"
)

type Ticket struct {
	ID        int64      `json:"id"`
	Date      Day        `json:"date"`
	Clinic    string     `json:"clinic"`
	Number    int        `json:"number"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	CalledAt  *time.Time `json:"called_at"`
	Counter   *int       `json:"counter"`
}

// StatusCounts summarises one day of tickets.
type StatusCounts struct {
	Total   int `json:"total"`
	Waiting int `json:"waiting"`
	Called  int `json:"called"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
}

type HourlyCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Count tallies tickets by status.
func Count(tickets []Ticket) StatusCounts {
	sc := StatusCounts{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case StatusWaiting:
			sc.Waiting++
		case StatusCalled:
			sc.Called++
		case StatusDone:
			sc.Done++
		case StatusSkipped:
			sc.Skipped++
		}
	}
	return sc
}

// Hourly buckets ticket creation times into hours from..to inclusive,
// using the wall clock of loc.
func Hourly(tickets []Ticket, from, to int, loc *time.Location) []HourlyCount {
	if to < from {
		return []HourlyCount{}
	}

	out := make([]HourlyCount, 0, to-from+1)
	for h := from; h <= to; h++ {
		out = append(out, HourlyCount{Hour: h})
	}

	for _, t := range tickets {
		h := t.CreatedAt.In(loc).Hour()
		if h < from || h > to {
			continue
		}
		out[h-from].Count++
	}

	return out
}
