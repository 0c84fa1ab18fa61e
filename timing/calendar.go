package timing

import "time"

type holiday struct {
	Month time.Month
	Day   int
}

// Market holidays with a fixed date.
var holidays = []holiday{
	{time.January, 1},
	{time.July, 4},
	{time.December, 25},
}

// holidayWindow is how many days either side of a holiday count as its week.
const holidayWindow = 3

var earningsMonths = map[time.Month]bool{
	time.January: true,
	time.April:   true,
	time.July:    true,
	time.October: true,
}

// IsHolidayWeek reports whether t is within three days of a fixed market
// holiday in the same month. The window is intentional; checking only the
// holiday date itself would miss the thin sessions around it.
func IsHolidayWeek(t time.Time) bool {
	for _, h := range holidays {
		if t.Month() != h.Month {
			continue
		}
		d := t.Day() - h.Day
		if d >= -holidayWindow && d <= holidayWindow {
			return true
		}
	}
	return false
}

// ThirdFriday returns the monthly options expiration date.
func ThirdFriday(year int, month time.Month, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}

// IsExpirationWeek reports whether t falls in the Sunday-to-Saturday week
// that contains its month's third Friday.
func IsExpirationWeek(t time.Time) bool {
	tf := ThirdFriday(t.Year(), t.Month(), t.Location())
	return weekStart(t).Equal(weekStart(tf))
}

// IsEarningsWeek reports the second half of a quarterly earnings month.
func IsEarningsWeek(t time.Time) bool {
	return earningsMonths[t.Month()] && t.Day() >= 15
}

func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, t.Location())
}
