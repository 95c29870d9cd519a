package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultCardRegion             = "GOODREADS-READING-CARD"
	DefaultLastUpdatedRegion      = "GOODREADS-LAST-UPDATED"
	DefaultCurrentlyReadingRegion = "GOODREADS-CURRENTLY-READING"
	DefaultRecentlyReadRegion     = "GOODREADS-RECENTLY-READ"

	DefaultRecentLimit = 5
	DefaultWindowDays  = 30
)

func DefaultLayout() *Layout {
	return &Layout{
		Regions: Regions{
			Card:             DefaultCardRegion,
			LastUpdated:      DefaultLastUpdatedRegion,
			CurrentlyReading: DefaultCurrentlyReadingRegion,
			RecentlyRead:     DefaultRecentlyReadRegion,
		},
		RecentLimit: DefaultRecentLimit,
		WindowDays:  DefaultWindowDays,
	}
}

// LoadLayout reads the YAML layout file. A missing file yields the default
// layout; keys left out of the file keep their defaults.
func LoadLayout(path string) (*Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return layout, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}

	if err := yaml.Unmarshal(data, layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}

	if err := validateLayout(layout); err != nil {
		return nil, fmt.Errorf("invalid layout %s: %w", path, err)
	}

	return layout, nil
}

func validateLayout(layout *Layout) error {
	nonNegativeFields := map[string]int{
		"recent limit": layout.RecentLimit,
		"window days":  layout.WindowDays,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	seen := make(map[string]string)
	tags := map[string]string{
		"card":              layout.Regions.Card,
		"last_updated":      layout.Regions.LastUpdated,
		"currently_reading": layout.Regions.CurrentlyReading,
		"recently_read":     layout.Regions.RecentlyRead,
	}
	for name, tag := range tags {
		if tag == "" {
			continue
		}
		if other, ok := seen[tag]; ok {
			return fmt.Errorf("regions %s and %s share tag %q", other, name, tag)
		}
		seen[tag] = name
	}

	return nil
}
