package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/ticket-import/internal/domain"
)

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Slash dates read month first; dash and dot dates read day first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	time.RFC822Z,
	time.RFC822,
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"2.1.2006 15:04:05",
	"2.1.2006 15:04",
	"2.1.2006",
	"2-1-2006 15:04:05",
	"2-1-2006 15:04",
	"2-1-2006",
	"Jan 2, 2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"20060102T150405",
	"20060102",
}

// parseDateTime interprets free-form date text relative to now.
func parseDateTime(raw string, now time.Time) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	switch strings.ToLower(s) {
	case "now":
		return now, true
	case "today":
		return startOfDay(now), true
	case "tomorrow":
		return startOfDay(now).AddDate(0, 0, 1), true
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), true
	}

	if strings.HasPrefix(s, "@") {
		secs, err := strconv.ParseInt(s[1:], 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).In(now.Location()), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeDate keeps values already in YYYY-MM-DD form and rewrites others
// into the canonical layout. ok is false when the value cannot be parsed.
func normalizeDate(raw string, now time.Time) (string, bool) {
	if isoDatePrefix.MatchString(raw) {
		return raw, true
	}
	t, ok := parseDateTime(raw, now)
	if !ok {
		return "", false
	}
	return t.Format(domain.DateTimeLayout), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseActionTime accepts whole seconds or a Go duration such as "1h30m".
func parseActionTime(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if id, ok := parseNumericID(s); ok {
		if id < 0 {
			return 0, false
		}
		return id, true
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, false
	}
	return int64(d / time.Second), true
}
