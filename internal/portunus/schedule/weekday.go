package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Weekday numbers days ISO style, Monday=1 through Sunday=7.
type Weekday uint8

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", uint8(d))
	}
	return weekdayNames[d]
}

// Prev returns the day before d, wrapping Monday to Sunday.
func (d Weekday) Prev() Weekday {
	if d == Monday {
		return Sunday
	}
	return d - 1
}

// WeekdayOf converts a time.Weekday (Sunday=0) into a Weekday.
func WeekdayOf(wd time.Weekday) Weekday {
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// ParseWeekday accepts full English names and three-letter abbreviations,
// case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := Monday; i <= Sunday; i++ {
		name := weekdayNames[i]
		if s == name || s == name[:3] {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// WeekdaySet is a bitmask of weekdays. Membership is order independent.
type WeekdaySet uint8

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// ParseWeekdaySet parses a list of day names. Duplicates collapse.
func ParseWeekdaySet(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return 0, err
		}
		s = s.With(d)
	}
	return s, nil
}

func (s WeekdaySet) With(d Weekday) WeekdaySet {
	if !d.Valid() {
		return s
	}
	return s | 1<<(d-1)
}

func (s WeekdaySet) Has(d Weekday) bool {
	return d.Valid() && s&(1<<(d-1)) != 0
}

func (s WeekdaySet) Empty() bool { return s&0x7f == 0 }

// Days lists the members Monday first.
func (s WeekdaySet) Days() []Weekday {
	out := make([]Weekday, 0, 7)
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (s WeekdaySet) Names() []string {
	days := s.Days()
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()
	}
	return out
}

func (s WeekdaySet) String() string { return strings.Join(s.Names(), ",") }

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	set, err := ParseWeekdaySet(names)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
