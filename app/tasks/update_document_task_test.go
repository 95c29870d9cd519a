package tasks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/shelfcard/app/cfg"
	"github.com/lysyi3m/shelfcard/app/document"
	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/progress"
	"github.com/lysyi3m/shelfcard/app/render"
	"github.com/lysyi3m/shelfcard/app/scrape"
)

const currentShelfRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Reader's bookshelf: currently-reading</title>
    <item>
      <guid>%[1]s/review/show/9</guid>
      <title>Dune</title>
      <link>%[1]s/review/show/9</link>
      <author_name>Frank Herbert</author_name>
      <description><![CDATA[progress: 37%%]]></description>
    </item>
  </channel>
</rss>`

const readShelfRSS = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Reader's bookshelf: read</title>
    <item>
      <title>Hyperion</title>
      <author_name>Dan Simmons</author_name>
      <user_rating>5</user_rating>
      <pubDate>Sat, 20 Jun 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Solaris</title>
      <author_name>Stanislaw Lem</author_name>
      <user_rating>3</user_rating>
      <pubDate>Wed, 10 Jun 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Piranesi</title>
      <author_name>Susanna Clarke</author_name>
      <pubDate>Mon, 01 Jun 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const readme = `# Hi

<!-- GOODREADS-READING-CARD:START -->
old
<!-- GOODREADS-READING-CARD:END -->

<!-- GOODREADS-CURRENTLY-READING:START -->
old
<!-- GOODREADS-CURRENTLY-READING:END -->

<!-- GOODREADS-RECENTLY-READ:START -->
old
<!-- GOODREADS-RECENTLY-READ:END -->

<!-- GOODREADS-LAST-UPDATED:START -->
old
<!-- GOODREADS-LAST-UPDATED:END -->
`

type shelfResponses map[string]func(w http.ResponseWriter, baseURL string)

func newGoodreadsServer(t *testing.T, shelves shelfResponses) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/review/list_rss/42", func(w http.ResponseWriter, r *http.Request) {
		respond, ok := shelves[r.URL.Query().Get("shelf")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		respond(w, srv.URL)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func rssResponse(body string) func(w http.ResponseWriter, baseURL string) {
	return func(w http.ResponseWriter, baseURL string) {
		w.Header().Set("Content-Type", "application/rss+xml")
		payload := body
		if strings.Contains(payload, "%[1]s") {
			payload = fmt.Sprintf(payload, baseURL)
		}
		fmt.Fprint(w, payload)
	}
}

func setupTask(t *testing.T, srv *httptest.Server, dryRun bool, out *bytes.Buffer) (*UpdateDocumentTask, string, string) {
	t.Helper()

	dir := t.TempDir()
	docPath := filepath.Join(dir, "README.md")
	if err := os.WriteFile(docPath, []byte(readme), 0644); err != nil {
		t.Fatal(err)
	}
	cachePath := filepath.Join(dir, "cache.json")

	c := &cfg.Cfg{
		UserID:          "42",
		FeedURLTemplate: srv.URL + "/review/list_rss/{user_id}?shelf={shelf}",
		CurrentShelf:    "currently-reading",
		ReadShelf:       "read",
		Document:        docPath,
		OverrideMarker:  "GOODREADS-PROGRESS",
		NominalPages:    350,
		DryRun:          dryRun,
		Layout:          *cfg.DefaultLayout(),
	}

	scraper := scrape.NewScraper(srv.Client(), scrape.NewRegexExtractor(5000), "test-agent", false)
	resolver := progress.NewResolver(progress.NewFileStore(cachePath), scraper, c.OverrideMarker, "")

	task := NewUpdateDocumentTask(c, feed.NewClient(srv.Client(), "test-agent"), feed.NewParser(),
		resolver, render.NewRenderer(), document.NewPatcher(), out)
	task.now = func() time.Time { return time.Date(2026, 6, 25, 12, 0, 0, 0, time.UTC) }

	return task, docPath, cachePath
}

func TestUpdateDocumentTask(t *testing.T) {
	srv := newGoodreadsServer(t, shelfResponses{
		"currently-reading": rssResponse(currentShelfRSS),
		"read":              rssResponse(readShelfRSS),
	})
	task, docPath, cachePath := setupTask(t, srv, false, nil)

	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	expected := []string{
		"📊 **Reading insights**",
		"**Reading velocity**",
		"37% ▰▰▰▰▱▱▱▱▱▱",
		"🟢 high confidence",
		"**Finished (30 days)**",
		"- 📖 [**Dune**](" + srv.URL + "/review/show/9) by Frank Herbert",
		"- Hyperion by Dan Simmons ★★★★★",
		"_⏳ last updated on ",
		"# Hi",
	}
	for _, want := range expected {
		if !strings.Contains(content, want) {
			t.Errorf("Expected document to contain '%s', got:\n%s", want, content)
		}
	}
	if strings.Contains(content, "\nold\n") {
		t.Errorf("Expected every region to be replaced, got:\n%s", content)
	}

	record, err := progress.NewFileStore(cachePath).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if record == nil || record.Percent != 37 || record.Source != progress.SourceRSS {
		t.Errorf("Expected rss progress to be cached, got %+v", record)
	}
}

func TestUpdateDocumentTaskFeedsUnavailable(t *testing.T) {
	srv := newGoodreadsServer(t, shelfResponses{
		"currently-reading": func(w http.ResponseWriter, baseURL string) {
			fmt.Fprint(w, "<html><body>Page not found</body></html>")
		},
		"read": func(w http.ResponseWriter, baseURL string) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	task, docPath, _ := setupTask(t, srv, false, nil)

	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Expected degraded run to succeed, got: %v", err)
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "in progress · percentage unknown") {
		t.Errorf("Expected unknown progress in card, got:\n%s", content)
	}
	if strings.Contains(content, "Reading velocity") || strings.Contains(content, "**ETA**") {
		t.Errorf("Expected no velocity or ETA without the read shelf, got:\n%s", content)
	}

	currentRegion := "<!-- GOODREADS-CURRENTLY-READING:START -->\nold\n<!-- GOODREADS-CURRENTLY-READING:END -->"
	if !strings.Contains(content, currentRegion) {
		t.Errorf("Expected list regions to be left alone, got:\n%s", content)
	}
}

func TestUpdateDocumentTaskDryRun(t *testing.T) {
	srv := newGoodreadsServer(t, shelfResponses{
		"currently-reading": rssResponse(currentShelfRSS),
		"read":              rssResponse(readShelfRSS),
	})
	var out bytes.Buffer
	task, docPath, _ := setupTask(t, srv, true, &out)

	if err := Run(context.Background(), task); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != readme {
		t.Error("Expected document to be untouched in dry-run mode")
	}
	if !strings.Contains(out.String(), "37% ▰▰▰▰▱▱▱▱▱▱") {
		t.Errorf("Expected patched document on output, got:\n%s", out.String())
	}
}

func TestUpdateDocumentTaskMissingDocument(t *testing.T) {
	srv := newGoodreadsServer(t, shelfResponses{})
	task, docPath, _ := setupTask(t, srv, false, nil)
	if err := os.Remove(docPath); err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), task); err == nil {
		t.Error("Expected error for missing document")
	}
}

func TestRunCancelledContext(t *testing.T) {
	srv := newGoodreadsServer(t, shelfResponses{})
	task, _, _ := setupTask(t, srv, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, task); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected cancelled task not to start")
	}
}

func TestNewTaskAssignsUniqueIDs(t *testing.T) {
	a := NewTask(TaskTypeUpdateDocument, "README.md")
	b := NewTask(TaskTypeUpdateDocument, "README.md")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("Expected distinct non-empty ids, got '%s' and '%s'", a.ID, b.ID)
	}
	if a.GetType() != TaskTypeUpdateDocument || a.GetDocument() != "README.md" {
		t.Errorf("Unexpected task fields: %+v", a)
	}
}
