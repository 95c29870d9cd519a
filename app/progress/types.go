package progress

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPercent = errors.New("percent out of range")

type Source string

const (
	SourceManual Source = "manual"
	SourceHTML   Source = "html"
	SourceRSS    Source = "rss"
	SourceCache  Source = "cache"
)

// ParseSource maps a stored tag back to a Source. Unknown or missing tags
// are reported as SourceCache.
func ParseSource(tag string) Source {
	switch Source(tag) {
	case SourceManual, SourceHTML, SourceRSS:
		return Source(tag)
	default:
		return SourceCache
	}
}

// Record is the resolved progress of the book in hand. Current and Total are
// zero unless the value came from a page fraction.
type Record struct {
	Percent   int
	Source    Source
	Current   int
	Total     int
	UpdatedAt time.Time
}

func (r Record) Validate() error {
	if r.Percent < 0 || r.Percent > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidPercent, r.Percent)
	}
	return nil
}

// Store keeps the single most recent Record. Load returns nil, nil when
// nothing usable is stored.
type Store interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, record Record) error
}
