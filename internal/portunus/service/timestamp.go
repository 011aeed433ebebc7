package service

import (
	"strings"
	"time"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
)

// Zone-less layouts, read in the site location. The first two are what the
// dashboard's access log shows.
var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

// ParseTimestamp reads a terminal-supplied timestamp. RFC3339 values keep
// their instant and are shown in loc; zone-less values are taken as wall
// time in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, apperr.InvalidTimestamp(raw, nil)
	}
	// RFC3339Nano parsing also accepts plain RFC3339.
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	var lastErr error
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, apperr.InvalidTimestamp(raw, lastErr)
}
