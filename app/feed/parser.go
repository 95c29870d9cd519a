package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
)

// Goodreads custom item elements.
const (
	fieldAuthorName = "author_name"
	fieldBookID     = "book_id"
	fieldImageURL   = "book_image_url"
	fieldUserRating = "user_rating"
	fieldUserReadAt = "user_read_at"

	minRating = 1
	maxRating = 5
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses an RSS document. Anything without an <rss root, including
// well-formed Atom, is rejected with ErrNotRSS.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	if !bytes.Contains(data, []byte("<rss")) {
		return nil, nil, ErrNotRSS
	}

	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if feed.FeedType != "rss" {
		return nil, nil, ErrNotRSS
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
		Content:     item.Content,
		Custom:      maps.Clone(item.Custom),
	}

	normalized.AuthorName = cmp.Or(
		strings.TrimSpace(normalized.Field(fieldAuthorName)),
		p.extractAuthor(item),
	)
	normalized.BookID = strings.TrimSpace(normalized.Field(fieldBookID))
	normalized.ImageURL = strings.TrimSpace(normalized.Field(fieldImageURL))
	if normalized.ImageURL == "" && item.Image != nil {
		normalized.ImageURL = item.Image.URL
	}
	normalized.Rating = p.parseRating(normalized.Field(fieldUserRating))

	if item.PublishedParsed != nil {
		published := *item.PublishedParsed
		normalized.PublishedAt = &published
	}

	normalized.FinishedAt = p.parseDate(normalized.Field(fieldUserReadAt))
	if normalized.FinishedAt == nil {
		normalized.FinishedAt = normalized.PublishedAt
	}

	return normalized
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := strings.TrimSpace(author.Name); name != "" {
			return name
		}
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}

func (p *Parser) parseRating(value string) int {
	rating, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || rating < minRating || rating > maxRating {
		return 0
	}
	return rating
}

func (p *Parser) parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := dateparse.ParseAny(value)
	if err != nil || parsed.IsZero() {
		return nil
	}
	return &parsed
}
