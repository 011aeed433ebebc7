package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
)

type StatusFilter string

const (
	StatusAll     StatusFilter = "all"
	StatusAllowed StatusFilter = "allowed"
	StatusDenied  StatusFilter = "denied"
)

func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusAllowed:
		return StatusAllowed, nil
	case StatusDenied:
		return StatusDenied, nil
	}
	return "", fmt.Errorf("unknown status filter %q", s)
}

// LogFilter selects access log entries. Zero fields match everything.
// The time range is half-open: From <= ts < To.
type LogFilter struct {
	From       time.Time
	To         time.Time
	Status     StatusFilter
	Text       string // case-insensitive substring of person name or document id
	TerminalID string
	PersonID   string
	Limit      int // 0 means no limit
}

// Match reports whether e passes every predicate of f except Limit.
func (f LogFilter) Match(e types.AccessLogEntry) bool {
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Timestamp.Before(f.To) {
		return false
	}
	switch f.Status {
	case StatusAllowed:
		if !e.Allowed {
			return false
		}
	case StatusDenied:
		if e.Allowed {
			return false
		}
	}
	if f.TerminalID != "" && e.TerminalID != f.TerminalID {
		return false
	}
	if f.PersonID != "" && e.PersonID != f.PersonID {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Text)); q != "" {
		if !strings.Contains(strings.ToLower(e.PersonName), q) &&
			!strings.Contains(strings.ToLower(e.DocumentID), q) {
			return false
		}
	}
	return true
}

// DayBucket resolves the dashboard's date shortcuts ("today", "yesterday")
// to a [from, to) range in now's location. "all" or "" returns zero times.
func DayBucket(bucket string, now time.Time) (from, to time.Time, err error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch strings.ToLower(strings.TrimSpace(bucket)) {
	case "", "all":
		return time.Time{}, time.Time{}, nil
	case "today":
		return midnight, midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), midnight, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown date bucket %q", bucket)
}
