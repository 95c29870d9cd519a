package progress

import (
	"regexp"
	"strconv"
)

// ParseOverride looks for "<marker>:<0-100>" in the document. The marker may
// sit inside an HTML comment and whitespace around the colon is tolerated.
// Values outside 0-100 are ignored.
func ParseOverride(document, marker string) (int, bool) {
	if marker == "" {
		return 0, false
	}

	pattern := regexp.MustCompile(`(?:<!--\s*)?` + regexp.QuoteMeta(marker) + `\s*:\s*(\d{1,3})\b(?:\s*-->)?`)

	for _, match := range pattern.FindAllStringSubmatch(document, -1) {
		percent, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if percent >= 0 && percent <= 100 {
			return percent, true
		}
	}
	return 0, false
}
