package feed

import (
	"errors"
	"time"
)

var ErrNotRSS = errors.New("document is not an RSS feed")

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Item is one shelf entry. Goodreads ships its shelf data as custom
// elements on each RSS item; the ones we use are lifted into fields and the
// rest stay reachable through Custom.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Content     string
	AuthorName  string
	BookID      string
	ImageURL    string
	Rating      int        // 1-5, 0 when unrated
	PublishedAt *time.Time // pubDate
	FinishedAt  *time.Time // user_read_at, falling back to pubDate
	Custom      map[string]string
}

// Field returns a custom element value by name.
func (i Item) Field(name string) string {
	if i.Custom == nil {
		return ""
	}
	return i.Custom[name]
}

// Shelf is the parsed content of one shelf feed.
type Shelf struct {
	Name     string
	Metadata *Metadata
	Items    []Item
}

// First returns the first item on the shelf, or nil for an empty shelf.
func (s *Shelf) First() *Item {
	if s == nil || len(s.Items) == 0 {
		return nil
	}
	return &s.Items[0]
}
