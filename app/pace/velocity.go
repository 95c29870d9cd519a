package pace

import (
	"slices"
	"time"

	"github.com/lysyi3m/shelfcard/app/feed"
)

const (
	MinVelocity = 0.05
	MaxVelocity = 1.2

	// sampleSize is how many of the newest finished books feed the estimate.
	sampleSize = 3
)

// Velocity is a reading rate in books per day.
type Velocity struct {
	BooksPerDay float64
	Samples     int
}

// Estimate derives velocity from the span between the newest finished books.
// It reports false when fewer than two books carry a finish date or when they
// were all finished at the same instant.
func Estimate(items []feed.Item) (Velocity, bool) {
	dates := make([]time.Time, 0, len(items))
	for _, item := range items {
		if item.FinishedAt != nil && !item.FinishedAt.IsZero() {
			dates = append(dates, *item.FinishedAt)
		}
	}

	slices.SortFunc(dates, func(a, b time.Time) int {
		return b.Compare(a)
	})
	if len(dates) > sampleSize {
		dates = dates[:sampleSize]
	}
	if len(dates) < 2 {
		return Velocity{}, false
	}

	elapsedDays := dates[0].Sub(dates[len(dates)-1]).Hours() / 24
	if elapsedDays <= 0 {
		return Velocity{}, false
	}

	return Velocity{
		BooksPerDay: clamp(float64(len(dates)-1)/elapsedDays, MinVelocity, MaxVelocity),
		Samples:     len(dates),
	}, true
}

func (v Velocity) Label() string {
	switch {
	case v.BooksPerDay >= 0.7:
		return "locked in"
	case v.BooksPerDay >= 0.35:
		return "steady"
	case v.BooksPerDay >= 0.15:
		return "slow"
	default:
		return "slump"
	}
}

func (v Velocity) Emoji() string {
	switch v.Label() {
	case "locked in":
		return "🔥"
	case "steady":
		return "📖"
	case "slow":
		return "🐢"
	default:
		return "💤"
	}
}

// WindowCount counts books finished within the trailing window ending at now.
func WindowCount(items []feed.Item, now time.Time, window time.Duration) int {
	if window <= 0 {
		return 0
	}
	since := now.Add(-window)
	count := 0
	for _, item := range items {
		if item.FinishedAt == nil {
			continue
		}
		if item.FinishedAt.After(since) && !item.FinishedAt.After(now) {
			count++
		}
	}
	return count
}

func clamp(n, lo, hi float64) float64 {
	return max(lo, min(hi, n))
}
