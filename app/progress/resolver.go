package progress

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/scrape"
)

// RSSFields is the order in which feed item fields are searched for an
// embedded percentage: dedicated progress elements first, free text last.
var RSSFields = []string{
	"user_progress",
	"progress",
	"reading_progress",
	"percent_complete",
	"description",
	"content",
}

var percentPattern = regexp.MustCompile(`\b(\d{1,3})\s*%`)

// PageScraper fetches a book page and returns the reader's page fraction.
type PageScraper interface {
	Scrape(ctx context.Context, pageURL string) (scrape.Fraction, error)
}

type Resolver struct {
	store           Store
	scraper         PageScraper
	marker          string
	bookURLTemplate string
	now             func() time.Time
}

func NewResolver(store Store, scraper PageScraper, marker, bookURLTemplate string) *Resolver {
	return &Resolver{
		store:           store,
		scraper:         scraper,
		marker:          marker,
		bookURLTemplate: bookURLTemplate,
		now:             time.Now,
	}
}

// Run resolves progress for the book in hand. current is the first item of
// the currently-reading shelf, or nil when that feed was unavailable or
// empty. Sources are tried in the order manual override, book page, feed
// fields, cache; every failure falls through to the next one.
func (r *Resolver) Run(ctx context.Context, document string, current *feed.Item) Resolution {
	if percent, ok := ParseOverride(document, r.marker); ok {
		return r.fresh(ctx, Record{Percent: percent, Source: SourceManual})
	}

	if current != nil {
		if record, ok := r.fromPage(ctx, current); ok {
			return r.fresh(ctx, record)
		}
		if record, ok := r.fromFeed(current); ok {
			return r.fresh(ctx, record)
		}
	}

	cached, err := r.store.Load(ctx)
	if err != nil {
		slog.Warn("Progress cache unavailable", "error", err)
		return Resolution{}
	}
	if cached == nil {
		slog.Debug("No progress source available")
		return Resolution{}
	}

	slog.Debug("Progress inferred from cache", "percent", cached.Percent, "source", cached.Source)
	return Resolution{Record: cached, Inferred: true}
}

func (r *Resolver) fresh(ctx context.Context, record Record) Resolution {
	record.UpdatedAt = r.now()

	if err := r.store.Save(ctx, record); err != nil {
		slog.Warn("Failed to save progress cache", "source", record.Source, "error", err)
	}

	slog.Debug("Progress resolved", "percent", record.Percent, "source", record.Source)
	return Resolution{Record: &record}
}

func (r *Resolver) fromPage(ctx context.Context, item *feed.Item) (Record, bool) {
	if r.scraper == nil {
		return Record{}, false
	}

	pageURL := item.Link
	if pageURL == "" {
		pageURL = feed.BookURL(r.bookURLTemplate, item.BookID)
	}
	if pageURL == "" {
		return Record{}, false
	}

	fraction, err := r.scraper.Scrape(ctx, pageURL)
	if err != nil {
		slog.Debug("Book page gave no progress", "url", pageURL, "error", err)
		return Record{}, false
	}

	record := Record{
		Percent: fraction.Percent(),
		Source:  SourceHTML,
		Current: fraction.Current,
		Total:   fraction.Total,
	}
	if fraction.Total <= 0 || fraction.Current < 0 || fraction.Current > fraction.Total || record.Validate() != nil {
		return Record{}, false
	}
	return record, true
}

// fromFeed takes the first field holding "<digits>%". An out-of-range value
// in that field makes the whole tier unavailable.
func (r *Resolver) fromFeed(item *feed.Item) (Record, bool) {
	for _, name := range RSSFields {
		match := percentPattern.FindStringSubmatch(itemField(item, name))
		if match == nil {
			continue
		}

		percent, err := strconv.Atoi(match[1])
		if err != nil {
			return Record{}, false
		}
		record := Record{Percent: percent, Source: SourceRSS}
		if err := record.Validate(); err != nil {
			slog.Debug("Feed progress out of range", "field", name, "percent", percent)
			return Record{}, false
		}
		return record, true
	}
	return Record{}, false
}

func itemField(item *feed.Item, name string) string {
	switch name {
	case "description":
		return item.Description
	case "content":
		return item.Content
	default:
		return item.Field(name)
	}
}
