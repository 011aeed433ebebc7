package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/apperr"
	"github.com/Renatocm0708/qr-access-nexus/internal/portunus/schedule"
)

func tod(t *testing.T, s string) schedule.TimeOfDay {
	t.Helper()
	v, err := schedule.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

var weekdays = schedule.NewWeekdaySet(
	schedule.Monday, schedule.Tuesday, schedule.Wednesday, schedule.Thursday, schedule.Friday,
)

// ── Construction ─────────────────────────────────────────────────────────────

func TestNewWindow_EmptyDaysRejected(t *testing.T) {
	_, err := schedule.NewWindow("s1", "Office", 0, tod(t, "08:00"), tod(t, "18:00"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "days", ve.Field)
}

func TestNewWindow_OutOfRangeTimesRejected(t *testing.T) {
	_, err := schedule.NewWindow("s1", "Office", weekdays, -1, tod(t, "18:00"))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = schedule.NewWindow("s1", "Office", weekdays, tod(t, "08:00"), 1440)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestNewWindow_EmptyNameRejected(t *testing.T) {
	_, err := schedule.NewWindow("s1", "   ", weekdays, tod(t, "08:00"), tod(t, "18:00"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

// ── Contains: same-day windows ───────────────────────────────────────────────

func TestContains_SameDayMatchesHalfOpenRange(t *testing.T) {
	w, err := schedule.NewWindow("s1", "Office", weekdays, tod(t, "08:00"), tod(t, "18:00"))
	require.NoError(t, err)

	for day := schedule.Monday; day <= schedule.Sunday; day++ {
		for m := schedule.TimeOfDay(0); m <= schedule.LastMinute; m++ {
			want := weekdays.Has(day) && m >= w.Start && m < w.End
			if got := w.Contains(day, m); got != want {
				t.Fatalf("Contains(%s, %s) = %v, want %v", day, m, got, want)
			}
		}
	}
}

func TestContains_BoundaryStartInclusiveEndExclusive(t *testing.T) {
	w, err := schedule.NewWindow("s1", "Office", weekdays, tod(t, "08:00"), tod(t, "18:00"))
	require.NoError(t, err)

	assert.False(t, w.Contains(schedule.Wednesday, tod(t, "07:59")))
	assert.True(t, w.Contains(schedule.Wednesday, tod(t, "08:00")))
	assert.True(t, w.Contains(schedule.Wednesday, tod(t, "17:59")))
	assert.False(t, w.Contains(schedule.Wednesday, tod(t, "18:00")))
	assert.False(t, w.Contains(schedule.Saturday, tod(t, "09:00")))
}

// ── Contains: overnight windows ──────────────────────────────────────────────

func TestContains_OvernightAttributesEarlyHoursToPreviousDay(t *testing.T) {
	friday := schedule.NewWeekdaySet(schedule.Friday)
	w, err := schedule.NewWindow("s2", "Night", friday, tod(t, "22:00"), tod(t, "06:00"))
	require.NoError(t, err)
	require.True(t, w.Overnight())

	assert.True(t, w.Contains(schedule.Friday, tod(t, "23:00")))
	assert.True(t, w.Contains(schedule.Saturday, tod(t, "02:00")))
	assert.True(t, w.Contains(schedule.Saturday, tod(t, "05:59")))
	assert.False(t, w.Contains(schedule.Saturday, tod(t, "06:00")))
	assert.False(t, w.Contains(schedule.Saturday, tod(t, "23:00")), "saturday is not a member")
	assert.False(t, w.Contains(schedule.Friday, tod(t, "05:00")), "thursday is not a member")
	assert.False(t, w.Contains(schedule.Friday, tod(t, "21:59")))
}

func TestContains_OvernightWrapsSundayIntoMonday(t *testing.T) {
	sunday := schedule.NewWeekdaySet(schedule.Sunday)
	w, err := schedule.NewWindow("s3", "Weekend night", sunday, tod(t, "20:00"), tod(t, "02:00"))
	require.NoError(t, err)

	assert.True(t, w.Contains(schedule.Monday, tod(t, "01:30")))
	assert.False(t, w.Contains(schedule.Tuesday, tod(t, "01:30")))
}

// ── Contains: full-day windows ───────────────────────────────────────────────

func TestContains_StartEqualsEndCoversWholeDay(t *testing.T) {
	days := schedule.NewWeekdaySet(schedule.Monday, schedule.Thursday)
	w, err := schedule.NewWindow("s4", "All day", days, tod(t, "07:00"), tod(t, "07:00"))
	require.NoError(t, err)
	require.True(t, w.FullDay())

	for m := schedule.TimeOfDay(0); m <= schedule.LastMinute; m++ {
		require.True(t, w.Contains(schedule.Monday, m))
		require.True(t, w.Contains(schedule.Thursday, m))
		require.False(t, w.Contains(schedule.Tuesday, m))
	}
}

func TestContainsTime_UsesLocalWallClock(t *testing.T) {
	w, err := schedule.NewWindow("s1", "Office", weekdays, tod(t, "08:00"), tod(t, "18:00"))
	require.NoError(t, err)

	loc := time.FixedZone("UTC-5", -5*3600)
	// 2026-10-21 is a Wednesday; 09:00 local is 14:00 UTC.
	at := time.Date(2026, 10, 21, 9, 0, 0, 0, loc)
	assert.True(t, w.ContainsTime(at))
	assert.True(t, w.ContainsTime(at.UTC()), "14:00 UTC is still inside")
	assert.False(t, w.ContainsTime(time.Date(2026, 10, 21, 19, 0, 0, 0, loc)))
}

// ── Weekday and time parsing ─────────────────────────────────────────────────

func TestParseWeekdaySet_OrderIndependent(t *testing.T) {
	a, err := schedule.ParseWeekdaySet([]string{"friday", "Monday", "wed"})
	require.NoError(t, err)
	b, err := schedule.ParseWeekdaySet([]string{"mon", "wednesday", "FRIDAY", "friday"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, a.Names())

	_, err = schedule.ParseWeekdaySet([]string{"funday"})
	assert.Error(t, err)
}

func TestWeekdayOf_SundayIsSeventh(t *testing.T) {
	assert.Equal(t, schedule.Sunday, schedule.WeekdayOf(time.Sunday))
	assert.Equal(t, schedule.Monday, schedule.WeekdayOf(time.Monday))
	assert.Equal(t, schedule.Sunday, schedule.Monday.Prev())
}

func TestParseTimeOfDay(t *testing.T) {
	v, err := schedule.ParseTimeOfDay("06:05")
	require.NoError(t, err)
	assert.Equal(t, schedule.TimeOfDay(365), v)
	assert.Equal(t, "06:05", v.String())

	v, err = schedule.ParseTimeOfDay("8:30")
	require.NoError(t, err)
	assert.Equal(t, schedule.TimeOfDay(510), v)

	for _, bad := range []string{"", "24:00", "12:60", "7", "12:5", "ab:cd", "+8:00", "-0:00", "08:+5", " 8:00x"} {
		_, err := schedule.ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestWindowJSON_UsesNamesAndClockStrings(t *testing.T) {
	w, err := schedule.NewWindow("s1", "Office", weekdays, tod(t, "08:00"), tod(t, "18:00"))
	require.NoError(t, err)

	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id":"s1","name":"Office",
		"days":["monday","tuesday","wednesday","thursday","friday"],
		"start_time":"08:00","end_time":"18:00"
	}`, string(b))

	var back schedule.Window
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, w, back)
}
