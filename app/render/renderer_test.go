package render

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/pace"
	"github.com/lysyi3m/shelfcard/app/progress"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		percent  int
		expected string
	}{
		{0, "▱▱▱▱▱▱▱▱▱▱"},
		{42, "▰▰▰▰▱▱▱▱▱▱"},
		{46, "▰▰▰▰▰▱▱▱▱▱"},
		{100, "▰▰▰▰▰▰▰▰▰▰"},
		{150, "▰▰▰▰▰▰▰▰▰▰"},
		{-5, "▱▱▱▱▱▱▱▱▱▱"},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.percent); got != tt.expected {
			t.Errorf("ProgressBar(%d) = %s, want %s", tt.percent, got, tt.expected)
		}
	}
}

func TestStars(t *testing.T) {
	if got := Stars(4); got != "★★★★☆" {
		t.Errorf("Expected '★★★★☆', got '%s'", got)
	}
	if got := Stars(0); got != "" {
		t.Errorf("Expected no stars for unrated book, got '%s'", got)
	}
	if got := Stars(6); got != "" {
		t.Errorf("Expected no stars for invalid rating, got '%s'", got)
	}
}

func TestReadingCardFullRows(t *testing.T) {
	velocity := pace.Velocity{BooksPerDay: 0.5, Samples: 3}
	eta := pace.EstimateETA(velocity, pace.DefaultNominalPages, 42, true)

	card := NewRenderer().ReadingCard(Card{
		Progress:    progress.Resolution{Record: &progress.Record{Percent: 42, Source: progress.SourceManual}},
		Velocity:    &velocity,
		ETA:         &eta,
		WindowCount: 3,
		WindowDays:  30,
	})

	expected := []string{
		"📊 **Reading insights**",
		"**Reading velocity**",
		"steady 📖 (0.50 books/day)",
		"**ETA**",
		eta.Label + " · 🟢 high confidence",
		"42% ▰▰▰▰▱▱▱▱▱▱",
		"**Finished (30 days)**",
		"3 books",
	}
	for _, want := range expected {
		if !strings.Contains(card, want) {
			t.Errorf("Expected card to contain '%s', got:\n%s", want, card)
		}
	}
	if strings.Contains(card, "READING INSIGHTS") {
		t.Error("Expected header casing to be preserved")
	}
}

func TestReadingCardWithoutVelocity(t *testing.T) {
	card := NewRenderer().ReadingCard(Card{})

	if strings.Contains(card, "Reading velocity") || strings.Contains(card, "**ETA**") {
		t.Errorf("Expected velocity and ETA rows to be omitted, got:\n%s", card)
	}
	if !strings.Contains(card, "in progress · percentage unknown") {
		t.Errorf("Expected explicit unknown progress, got:\n%s", card)
	}
}

func TestReadingCardInferredProgress(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	card := NewRenderer().ReadingCard(Card{
		Progress: progress.Resolution{
			Record: &progress.Record{
				Percent:   55,
				Source:    progress.SourceHTML,
				Current:   1024,
				Total:     1862,
				UpdatedAt: now.Add(-72 * time.Hour),
			},
			Inferred: true,
		},
		Now: now,
	})

	expected := []string{"≈55%", "(1,024 of 1,862 pages)", "inferred from html", "3 days ago"}
	for _, want := range expected {
		if !strings.Contains(card, want) {
			t.Errorf("Expected card to contain '%s', got:\n%s", want, card)
		}
	}
}

func TestCurrentlyReading(t *testing.T) {
	r := NewRenderer()

	got := r.CurrentlyReading([]feed.Item{
		{Title: "  Dune  <b>Messiah</b>", Link: "https://www.goodreads.com/book/show/44492285", AuthorName: "Frank Herbert"},
	})
	expected := "- 📖 [**Dune Messiah**](https://www.goodreads.com/book/show/44492285) by Frank Herbert"
	if got != expected {
		t.Errorf("Expected '%s', got '%s'", expected, got)
	}

	if got := r.CurrentlyReading(nil); got != "_Not reading anything right now._" {
		t.Errorf("Unexpected empty rendering: '%s'", got)
	}
}

func TestRecentlyReadLimitAndRatings(t *testing.T) {
	items := []feed.Item{
		{Title: "Hyperion", AuthorName: "Dan Simmons", Rating: 5},
		{Title: "Piranesi", AuthorName: "Susanna Clarke"},
		{Title: "Solaris", AuthorName: "Stanislaw Lem", Rating: 3},
	}

	got := NewRenderer().RecentlyRead(items, 2)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "- Hyperion by Dan Simmons ★★★★★" {
		t.Errorf("Unexpected first line: '%s'", lines[0])
	}
	if lines[1] != "- Piranesi by Susanna Clarke" {
		t.Errorf("Unexpected second line: '%s'", lines[1])
	}
}

func TestRecentlyReadEscapesMarkdown(t *testing.T) {
	got := NewRenderer().RecentlyRead([]feed.Item{{Title: "The [Annotated] Edition"}}, 0)
	if got != `- The \[Annotated\] Edition` {
		t.Errorf("Expected escaped brackets, got '%s'", got)
	}
}

func TestLastUpdated(t *testing.T) {
	original := time.Local
	time.Local = time.UTC
	defer func() { time.Local = original }()

	got := NewRenderer().LastUpdated(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if got != "_⏳ last updated on Fri, 02 Jan 2026 03:04:05 UTC_" {
		t.Errorf("Unexpected last updated line: '%s'", got)
	}
}
