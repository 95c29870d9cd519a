package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Goodreads feeds
	UserID          string `long:"user-id" env:"GOODREADS_USER_ID" description:"Goodreads user identifier (required)"`
	FeedURLTemplate string `long:"feed-url-template" env:"FEED_URL_TEMPLATE" default:"https://www.goodreads.com/review/list_rss/{user_id}?shelf={shelf}" description:"Shelf feed URL template with {user_id} and {shelf} placeholders"`
	BookURLTemplate string `long:"book-url-template" env:"BOOK_URL_TEMPLATE" default:"https://www.goodreads.com/book/show/{book_id}" description:"Book page URL template used when a feed item has no link"`
	CurrentShelf    string `long:"current-shelf" env:"CURRENT_SHELF" default:"currently-reading" description:"Shelf holding the book in progress"`
	ReadShelf       string `long:"read-shelf" env:"READ_SHELF" default:"read" description:"Shelf holding finished books"`

	// Target document
	Document       string `long:"document" env:"DOCUMENT" default:"README.md" description:"Document to patch"`
	OverrideMarker string `long:"override-marker" env:"OVERRIDE_MARKER" default:"GOODREADS-PROGRESS" description:"Marker for a manual progress override inside the document"`
	LayoutFile     string `long:"layout" env:"LAYOUT_FILE" default:"shelfcard.yml" description:"YAML file with region tags and list sizes (optional)"`

	// Progress cache
	CacheDriver string `long:"cache-driver" env:"CACHE_DRIVER" default:"file" choice:"file" choice:"sqlite" description:"Progress cache backend"`
	CachePath   string `long:"cache-path" env:"CACHE_PATH" default:".goodreads-progress-cache.json" description:"Progress cache location"`

	// Estimation
	NominalPages int `long:"nominal-pages" env:"NOMINAL_PAGES" default:"350" description:"Assumed book length for ETA estimation"`
	MaxPages     int `long:"max-pages" env:"MAX_PAGES" default:"5000" description:"Largest plausible page total when scraping"`

	// Application metadata
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"shelfcard/1.0" description:"User agent string for HTTP requests"`
	IgnoreRobots bool   `long:"ignore-robots" env:"IGNORE_ROBOTS" description:"Scrape book pages even when robots.txt disallows it"`
	Timezone     string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug        bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	DryRun       bool   `long:"dry-run" env:"DRY_RUN" description:"Print the patched document instead of writing it"`
	ShowVersion  bool   `long:"version" description:"Print the version and exit"`
}

// Load parses the process arguments. It returns nil, nil when help was
// requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.ShowVersion {
		return &Cfg{ShowVersion: true, Version: GetVersion()}, nil
	}

	cfg := &Cfg{
		UserID:          raw.UserID,
		FeedURLTemplate: raw.FeedURLTemplate,
		BookURLTemplate: raw.BookURLTemplate,
		CurrentShelf:    raw.CurrentShelf,
		ReadShelf:       raw.ReadShelf,
		Document:        raw.Document,
		OverrideMarker:  raw.OverrideMarker,
		CacheDriver:     raw.CacheDriver,
		CachePath:       raw.CachePath,
		NominalPages:    raw.NominalPages,
		MaxPages:        raw.MaxPages,
		UserAgent:       raw.UserAgent,
		IgnoreRobots:    raw.IgnoreRobots,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		DryRun:          raw.DryRun,
		Version:         GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	layout, err := LoadLayout(raw.LayoutFile)
	if err != nil {
		return nil, err
	}
	cfg.Layout = *layout

	return cfg, nil
}

func validate(cfg *Cfg) error {
	requiredFields := map[string]string{
		"user id":           cfg.UserID,
		"feed URL template": cfg.FeedURLTemplate,
		"document":          cfg.Document,
		"override marker":   cfg.OverrideMarker,
		"cache path":        cfg.CachePath,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	positiveFields := map[string]int{
		"nominal pages": cfg.NominalPages,
		"max pages":     cfg.MaxPages,
	}

	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}

// ApplyTimezone sets time.Local so rendered timestamps use the configured zone.
func ApplyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
