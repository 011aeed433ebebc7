package report_test

import (
	"bytes"
	"iter"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/types"
	"github.com/Renatocm0708/qr-access-nexus/internal/report"
)

func seq(entries ...types.AccessLogEntry) iter.Seq2[types.AccessLogEntry, error] {
	return func(yield func(types.AccessLogEntry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func TestWriteAccessLog(t *testing.T) {
	loc := time.FixedZone("site", -5*3600)
	entries := seq(
		types.AccessLogEntry{
			ID: "e1", Timestamp: time.Date(2026, 10, 21, 14, 30, 0, 0, time.UTC),
			PersonName: "Juan Pérez", DocumentID: "12345678", TerminalID: "T1", TerminalName: "Main Entrance",
			ScheduleID: "office", Allowed: true, Reason: types.ReasonAllowed,
		},
		types.AccessLogEntry{
			ID: "e2", Timestamp: time.Date(2026, 10, 21, 2, 0, 0, 0, time.UTC),
			DocumentID: "99999999", TerminalID: "T2", Reason: types.ReasonNoCredential,
		},
	)

	var buf bytes.Buffer
	n, err := report.WriteAccessLog(&buf, entries, loc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Access log")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2026-10-21", "09:30", "Juan Pérez", "12345678", "Main Entrance", "office", "Allowed", "allowed"}, rows[1])
	// Previous day at the site; terminal id stands in for a missing name.
	assert.Equal(t, "2026-10-20", rows[2][0])
	assert.Equal(t, "T2", rows[2][4])
	assert.Equal(t, "Denied", rows[2][6])
}

func TestWriteSchedules(t *testing.T) {
	office, err := schedule.NewWindow("office", "Office hours",
		schedule.NewWeekdaySet(schedule.Monday, schedule.Wednesday, schedule.Friday),
		schedule.TimeOfDay(8*60), schedule.TimeOfDay(18*60))
	require.NoError(t, err)
	night, err := schedule.NewWindow("night", "Night shift",
		schedule.NewWeekdaySet(schedule.Saturday),
		schedule.TimeOfDay(22*60), schedule.TimeOfDay(6*60))
	require.NoError(t, err)

	var buf bytes.Buffer
	// Tuesday
	from := time.Date(2026, 10, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, report.WriteSchedules(&buf, []schedule.Window{office, night}, from))

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, "office@qr-access-nexus", events[0].Id())
	assert.Equal(t, "Office hours", events[0].GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20261021T080000", events[0].GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20261021T180000", events[0].GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO,WE,FR", events[0].GetProperty(ics.ComponentPropertyRrule).Value)

	// Overnight windows end on the following day.
	assert.Equal(t, "20261024T220000", events[1].GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20261025T060000", events[1].GetProperty(ics.ComponentPropertyDtEnd).Value)
}
