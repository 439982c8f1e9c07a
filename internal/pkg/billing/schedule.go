package billing

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// GenerateDueDates returns count due dates, the i-th being i*intervalMonths
// calendar months after firstDueDate. A day that does not exist in the target
// month is clamped to its last day (Jan 31 + 1 month = Feb 28/29).
func GenerateDueDates(firstDueDate time.Time, count, intervalMonths int) []string {
	dates := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, AddMonthsClamped(firstDueDate, i*intervalMonths).Format(DateLayout))
	}
	return dates
}

// AddMonthsClamped adds months to d keeping the day of month when the target
// month is long enough, and using its last day otherwise.
func AddMonthsClamped(d time.Time, months int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	last := daysIn(first.Year(), first.Month(), d.Location())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// ParseDueDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDueDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// DateOf truncates t to its calendar date in loc, returned as UTC midnight so
// it compares directly with stored DATE columns.
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
