package scrape

import (
	"regexp"
	"strconv"
)

// Fraction is a "current of total" page pair.
type Fraction struct {
	Current int
	Total   int
}

// Percent floors current/total to a whole percentage. It is only meaningful
// for a fraction that passed validation.
func (f Fraction) Percent() int {
	if f.Total <= 0 {
		return 0
	}
	return f.Current * 100 / f.Total
}

// Extractor finds a page fraction in a blob of page text.
type Extractor interface {
	PageFraction(text string) (Fraction, bool)
}

// DefaultPatterns are tried in order. Each must capture current then total.
var DefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpage\s+(\d{1,6})\s+of\s+(\d{1,6})`),
	regexp.MustCompile(`(?i)\b(\d{1,6})\s+of\s+(\d{1,6})\s+pages`),
	regexp.MustCompile(`(?i)\b(\d{1,6})\s*/\s*(\d{1,6})\s*(?:pages|pp)`),
	regexp.MustCompile(`(?i)"current_?page"\s*:\s*(\d{1,6})[^{}]{0,200}?"total_?pages"\s*:\s*(\d{1,6})`),
}

type RegexExtractor struct {
	patterns []*regexp.Regexp
	maxPages int
}

// NewRegexExtractor builds an extractor that rejects totals above maxPages.
// With no patterns it uses DefaultPatterns.
func NewRegexExtractor(maxPages int, patterns ...*regexp.Regexp) *RegexExtractor {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &RegexExtractor{
		patterns: patterns,
		maxPages: maxPages,
	}
}

// PageFraction returns the first match, in pattern order, that forms a
// plausible fraction. Implausible matches are skipped, not fatal.
func (e *RegexExtractor) PageFraction(text string) (Fraction, bool) {
	for _, pattern := range e.patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) < 3 {
				continue
			}
			current, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			total, err := strconv.Atoi(match[2])
			if err != nil {
				continue
			}
			fraction := Fraction{Current: current, Total: total}
			if e.valid(fraction) {
				return fraction, true
			}
		}
	}
	return Fraction{}, false
}

func (e *RegexExtractor) valid(f Fraction) bool {
	if f.Total <= 0 || f.Current < 0 || f.Current > f.Total {
		return false
	}
	return e.maxPages <= 0 || f.Total <= e.maxPages
}
