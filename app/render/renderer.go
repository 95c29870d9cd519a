package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/pace"
	"github.com/lysyi3m/shelfcard/app/progress"
)

const barCells = 10

var markdownEscaper = strings.NewReplacer(
	`[`, `\[`,
	`]`, `\]`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`|`, `\|`,
)

// Card holds everything the reading insights table can show. Velocity and
// ETA are nil when velocity is undefined.
type Card struct {
	Progress    progress.Resolution
	Velocity    *pace.Velocity
	ETA         *pace.ETA
	WindowCount int
	WindowDays  int
	Now         time.Time
}

type Renderer struct {
	policy  *bluemonday.Policy
	printer *message.Printer
}

func NewRenderer() *Renderer {
	return &Renderer{
		policy:  bluemonday.StrictPolicy(),
		printer: message.NewPrinter(language.English),
	}
}

// ReadingCard renders the insights table. The progress row is always
// present, as an explicit unknown when nothing was resolved.
func (r *Renderer) ReadingCard(card Card) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.Style().Format.Header = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	t.AppendHeader(table.Row{"📊 **Reading insights**", ""})

	if card.Velocity != nil {
		t.AppendRow(table.Row{"**Reading velocity**", fmt.Sprintf("%s %s (%.2f books/day)",
			card.Velocity.Label(), card.Velocity.Emoji(), card.Velocity.BooksPerDay)})
	}

	if card.ETA != nil {
		t.AppendRow(table.Row{"**ETA**", fmt.Sprintf("%s · %s %s confidence",
			card.ETA.Label, card.ETA.Confidence.Emoji(), card.ETA.Confidence)})
	}

	t.AppendRow(table.Row{"**Progress**", r.progressCell(card.Progress, card.Now)})

	if card.WindowDays > 0 {
		t.AppendRow(table.Row{fmt.Sprintf("**Finished (%d days)**", card.WindowDays),
			r.printer.Sprintf("%d %s", card.WindowCount, plural(card.WindowCount, "book", "books"))})
	}

	return t.RenderMarkdown()
}

func (r *Renderer) progressCell(resolution progress.Resolution, now time.Time) string {
	record := resolution.Record
	if record == nil {
		return "in progress · percentage unknown"
	}

	var cell strings.Builder
	if resolution.Inferred {
		cell.WriteString("≈")
	}
	fmt.Fprintf(&cell, "%d%% %s", record.Percent, ProgressBar(record.Percent))

	if record.Total > 0 {
		cell.WriteString(r.printer.Sprintf(" (%d of %d pages)", record.Current, record.Total))
	}

	if resolution.Inferred {
		fmt.Fprintf(&cell, " · inferred from %s", record.Source)
		if !record.UpdatedAt.IsZero() && !now.IsZero() {
			fmt.Fprintf(&cell, ", %s", humanize.RelTime(record.UpdatedAt, now, "ago", "from now"))
		}
	}

	return cell.String()
}

// CurrentlyReading lists the books on the currently-reading shelf.
func (r *Renderer) CurrentlyReading(items []feed.Item) string {
	if len(items) == 0 {
		return "_Not reading anything right now._"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- 📖 "+r.bookLine(item, true))
	}
	return strings.Join(lines, "\n")
}

// RecentlyRead lists up to limit books from the read shelf with their
// ratings.
func (r *Renderer) RecentlyRead(items []feed.Item, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	if len(items) == 0 {
		return "_Nothing finished yet._"
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := "- " + r.bookLine(item, false)
		if stars := Stars(item.Rating); stars != "" {
			line += " " + stars
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) LastUpdated(now time.Time) string {
	return fmt.Sprintf("_⏳ last updated on %s_", now.In(time.Local).Format(time.RFC1123))
}

func (r *Renderer) bookLine(item feed.Item, bold bool) string {
	title := r.clean(item.Title)
	if title == "" {
		title = "Untitled"
	}
	if bold {
		title = "**" + title + "**"
	}
	if item.Link != "" {
		title = fmt.Sprintf("[%s](%s)", title, item.Link)
	}
	if author := r.clean(item.AuthorName); author != "" {
		return title + " by " + author
	}
	return title
}

// clean strips markup from feed text and escapes what markdown would
// interpret.
func (r *Renderer) clean(s string) string {
	s = r.policy.Sanitize(s)
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	return markdownEscaper.Replace(s)
}

// ProgressBar draws ten cells, rounding to the nearest cell.
func ProgressBar(percent int) string {
	percent = max(0, min(100, percent))
	filled := int(math.Round(float64(percent) / 100 * barCells))
	return strings.Repeat("▰", filled) + strings.Repeat("▱", barCells-filled)
}

// Stars renders a 1-5 rating; unrated books get an empty string.
func Stars(rating int) string {
	if rating < 1 || rating > 5 {
		return ""
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
