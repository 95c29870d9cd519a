package cfg

type Cfg struct {
	// Goodreads feeds
	UserID          string
	FeedURLTemplate string
	BookURLTemplate string
	CurrentShelf    string
	ReadShelf       string

	// Target document
	Document       string
	OverrideMarker string
	Layout         Layout

	// Progress cache
	CacheDriver string
	CachePath   string

	// Estimation
	NominalPages int
	MaxPages     int

	// Application metadata
	UserAgent    string
	IgnoreRobots bool
	Timezone     string
	Debug        bool
	DryRun       bool
	ShowVersion  bool
	Version      string
}

// Layout describes which regions of the document get patched and how much
// goes into the list regions. Empty region tags are skipped.
type Layout struct {
	Regions     Regions `yaml:"regions"`
	RecentLimit int     `yaml:"recent_limit"`
	WindowDays  int     `yaml:"window_days"`
}

type Regions struct {
	Card             string `yaml:"card"`
	LastUpdated      string `yaml:"last_updated"`
	CurrentlyReading string `yaml:"currently_reading"`
	RecentlyRead     string `yaml:"recently_read"`
}

const (
	CacheDriverFile   = "file"
	CacheDriverSQLite = "sqlite"
)
