package http

import (
	"fmt"
	"time"
)

var (
	shortDays   = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	shortMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// BrokenDownTime is a calendar time already in UTC.
// Month runs 1-12 and Weekday runs 0 (Monday) to 6 (Sunday).
type BrokenDownTime struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int
}

// BreakDown converts t to UTC and splits it into its calendar fields.
func BreakDown(t time.Time) BrokenDownTime {
	t = t.UTC()
	return BrokenDownTime{
		Year:    t.Year(),
		Month:   int(t.Month()),
		Day:     t.Day(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Second:  t.Second(),
		Weekday: (int(t.Weekday()) + 6) % 7,
	}
}

// FormatDate renders bt as an RFC 1123 date, e.g. "Sun, 21 Oct 2018 12:16:24 GMT".
// Out of range weekday or month values are wrapped rather than rejected.
func FormatDate(bt BrokenDownTime) string {
	day := shortDays[((bt.Weekday%7)+7)%7]
	month := shortMonths[(((bt.Month-1)%12)+12)%12]
	return fmt.Sprintf("%s, %02d %s %04d %02d:%02d:%02d GMT",
		day, bt.Day, month, bt.Year, bt.Hour, bt.Minute, bt.Second)
}
