package report

import (
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
)

// Local date-time without a zone: schedules are site wall time.
const floatingLayout = "20060102T150405"

var icalDay = map[schedule.Weekday]string{
	schedule.Monday:    "MO",
	schedule.Tuesday:   "TU",
	schedule.Wednesday: "WE",
	schedule.Thursday:  "TH",
	schedule.Friday:    "FR",
	schedule.Saturday:  "SA",
	schedule.Sunday:    "SU",
}

// WriteSchedules renders windows as weekly recurring events. Each series
// starts on the first listed day on or after from's date.
func WriteSchedules(w io.Writer, windows []schedule.Window, from time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//qr-access-nexus//schedules//EN")

	stamp := time.Now().UTC()
	for _, win := range windows {
		addWindow(cal, win, from, stamp)
	}

	_, err := io.WriteString(w, cal.Serialize())
	return err
}

func addWindow(cal *ics.Calendar, win schedule.Window, from, stamp time.Time) {
	start := firstOccurrence(win, from)
	end := time.Date(start.Year(), start.Month(), start.Day(), win.End.Hour(), win.End.Minute(), 0, 0, time.UTC)
	if !end.After(start) {
		// overnight, or a full day when end == start
		end = end.AddDate(0, 0, 1)
	}

	days := make([]string, 0, 7)
	for _, d := range win.Days.Days() {
		days = append(days, icalDay[d])
	}

	ev := cal.AddEvent(win.ID + "@qr-access-nexus")
	ev.SetDtStampTime(stamp)
	ev.SetSummary(win.Name)
	ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(floatingLayout))
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(floatingLayout))
	ev.SetProperty(ics.ComponentPropertyRrule, "FREQ=WEEKLY;BYDAY="+strings.Join(days, ","))
}

// firstOccurrence returns the start of the first window on or after from's
// calendar date, as a zone-less wall time carried in UTC.
func firstOccurrence(win schedule.Window, from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	for range 7 {
		if win.Days.Has(schedule.WeekdayOf(day.Weekday())) {
			break
		}
		day = day.AddDate(0, 0, 1)
	}
	return day.Add(time.Duration(win.Start) * time.Minute)
}
