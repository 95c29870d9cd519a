package document

import (
	"regexp"
	"strings"
)

// Region is one marker-delimited block of a document.
type Region struct {
	Tag  string
	Body string
}

func startMarker(tag string) string { return "<!-- " + tag + ":START -->" }
func endMarker(tag string) string   { return "<!-- " + tag + ":END -->" }

// Patch replaces the first START..END span for tag with the markers around
// body. It reports false and returns content untouched when the region is
// missing.
func Patch(content, tag, body string) (string, bool) {
	pattern := regexp.MustCompile(regexp.QuoteMeta(startMarker(tag)) + `[\s\S]*?` + regexp.QuoteMeta(endMarker(tag)))

	loc := pattern.FindStringIndex(content)
	if loc == nil {
		return content, false
	}

	replacement := startMarker(tag) + "\n" + strings.TrimSpace(body) + "\n" + endMarker(tag)
	return content[:loc[0]] + replacement + content[loc[1]:], true
}

type Patcher struct{}

func NewPatcher() *Patcher {
	return &Patcher{}
}

// Apply patches every region in order. Regions with an empty tag are
// disabled; regions absent from content are skipped. The tags that were
// found are returned.
func (p *Patcher) Apply(content string, regions []Region) (string, []string) {
	var applied []string
	for _, region := range regions {
		if region.Tag == "" {
			continue
		}

		patched, ok := Patch(content, region.Tag, region.Body)
		if !ok {
			continue
		}
		content = patched
		applied = append(applied, region.Tag)
	}
	return content, applied
}
