package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format accepted from forms.
const DateLayout = "2006-01-02"

// Weekdays is a sorted set of weekday indices where 0 is Monday and 6 is Sunday.
// The empty set means the subscription has no restriction and delivers every day.
type Weekdays []int

// ParseWeekdays decodes the stored comma separated form, e.g. "0,1,2,3,4".
// Malformed input yields the empty set rather than an error.
func ParseWeekdays(raw string) Weekdays {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	seen := make(map[int]struct{}, 7)
	for _, part := range strings.Split(raw, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || idx < 0 || idx > 6 {
			return nil
		}
		seen[idx] = struct{}{}
	}

	days := make(Weekdays, 0, len(seen))
	for idx := range seen {
		days = append(days, idx)
	}
	sort.Ints(days)
	return days
}

// NewWeekdays validates and normalizes a list of indices.
func NewWeekdays(indices []int) (Weekdays, error) {
	parts := make([]string, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx > 6 {
			return nil, ErrInvalidWeekday
		}
		parts = append(parts, strconv.Itoa(idx))
	}
	return ParseWeekdays(strings.Join(parts, ",")), nil
}

// String encodes the set in its stored form.
func (w Weekdays) String() string {
	parts := make([]string, len(w))
	for i, idx := range w {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

// Count is the number of delivery days per week; an unrestricted set counts as seven.
func (w Weekdays) Count() int {
	if len(w) == 0 {
		return 7
	}
	return len(w)
}

// Contains reports whether the Go weekday is part of the set.
func (w Weekdays) Contains(day time.Weekday) bool {
	if len(w) == 0 {
		return true
	}
	idx := WeekdayIndex(day)
	for _, d := range w {
		if d == idx {
			return true
		}
	}
	return false
}

// WeekdayIndex converts Go's Sunday-first weekday to the Monday-first index used in storage.
func WeekdayIndex(day time.Weekday) int {
	return (int(day) + 6) % 7
}

// IsDeliveryDay reports whether date falls on one of the subscription's delivery weekdays.
func IsDeliveryDay(w Weekdays, date time.Time) bool {
	return w.Contains(date.Weekday())
}

// UpcomingDates lists the delivery dates in [from, from+days).
func UpcomingDates(w Weekdays, from time.Time, days int) []time.Time {
	start := DateOf(from)
	var dates []time.Time
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		if IsDeliveryDay(w, d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD value as midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}
