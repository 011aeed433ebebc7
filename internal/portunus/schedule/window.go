// Package schedule models access windows: a set of weekdays plus a start and
// end time of day. A window whose end is before its start runs overnight and
// admits the early hours of the following day. Start is inclusive and end is
// exclusive everywhere.
package schedule

import (
	"strings"
	"time"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
)

// Window is one schedule. The zero value is not valid; build one with
// NewWindow or check it with Validate.
type Window struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Days  WeekdaySet `json:"days"`
	Start TimeOfDay  `json:"start_time"`
	End   TimeOfDay  `json:"end_time"`
}

func NewWindow(id, name string, days WeekdaySet, start, end TimeOfDay) (Window, error) {
	w := Window{
		ID:    strings.TrimSpace(id),
		Name:  strings.TrimSpace(name),
		Days:  days,
		Start: start,
		End:   end,
	}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks the window invariants. The id is not checked here; the
// registry assigns one when it is empty.
func (w Window) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return apperr.Invalid("name", "must not be empty")
	}
	if w.Days.Empty() {
		return apperr.Invalid("days", "select at least one day")
	}
	if !w.Start.Valid() {
		return apperr.Invalid("start_time", "%d outside 0..%d", int(w.Start), int(LastMinute))
	}
	if !w.End.Valid() {
		return apperr.Invalid("end_time", "%d outside 0..%d", int(w.End), int(LastMinute))
	}
	return nil
}

func (w Window) Overnight() bool { return w.End < w.Start }

// FullDay reports the start == end case, which covers all 24 hours of every
// listed day.
func (w Window) FullDay() bool { return w.End == w.Start }

// Contains reports whether the wall-clock instant (day, t) falls inside w.
// For overnight windows the part after midnight belongs to the previous
// day's membership: a Friday 22:00-06:00 window admits Saturday 02:00.
func (w Window) Contains(day Weekday, t TimeOfDay) bool {
	if !day.Valid() || !t.Valid() {
		return false
	}
	switch {
	case w.FullDay():
		return w.Days.Has(day)
	case w.Overnight():
		if w.Days.Has(day) && t >= w.Start {
			return true
		}
		return w.Days.Has(day.Prev()) && t < w.End
	default:
		return w.Days.Has(day) && t >= w.Start && t < w.End
	}
}

// ContainsTime evaluates Contains against t's wall clock in t's location.
func (w Window) ContainsTime(t time.Time) bool {
	return w.Contains(WeekdayOf(t.Weekday()), ClockOf(t))
}
