package review

import (
	"strings"
	"time"
)

// dateLayouts in priority order. Bluebeam exports mostly use US-style
// slash dates; the single-digit layout forms accept both padded and
// unpadded month/day/hour.
var dateLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses a free-text timestamp. An unparseable or empty value
// reports ok=false; it never returns an error.
func ParseDateTime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
