package http

import (
	"testing"
	"time"

	"github.com/freekieb7/userver/test"
)

func TestFormatDate(t *testing.T) {
	testCases := []struct {
		name     string
		input    BrokenDownTime
		expected string
	}{
		{
			name:     "reference",
			input:    BrokenDownTime{Year: 2018, Month: 10, Day: 21, Hour: 12, Minute: 16, Second: 24, Weekday: 6},
			expected: "Sun, 21 Oct 2018 12:16:24 GMT",
		},
		{
			name:     "zero padding",
			input:    BrokenDownTime{Year: 999, Month: 1, Day: 2, Hour: 3, Minute: 4, Second: 5, Weekday: 0},
			expected: "Mon, 02 Jan 0999 03:04:05 GMT",
		},
		{
			name:     "december",
			input:    BrokenDownTime{Year: 2024, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59, Weekday: 1},
			expected: "Tue, 31 Dec 2024 23:59:59 GMT",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			test.AssertEqual(t, tc.expected, FormatDate(tc.input))
		})
	}
}

func TestBreakDownConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2018, time.October, 21, 14, 16, 24, 0, loc)

	bt := BreakDown(local)
	test.AssertEqual(t, BrokenDownTime{Year: 2018, Month: 10, Day: 21, Hour: 12, Minute: 16, Second: 24, Weekday: 6}, bt)
}

func TestFormatDateMatchesTimeFormat(t *testing.T) {
	start := time.Date(2020, time.February, 28, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		now := start.Add(time.Duration(i) * 37 * time.Hour)
		test.AssertEqual(t, now.Format("Mon, 02 Jan 2006 15:04:05 GMT"), FormatDate(BreakDown(now)))
	}
}
