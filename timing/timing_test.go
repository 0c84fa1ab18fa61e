package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestEntryDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date time.Time
		want Rating
	}{
		{"monday", day(2024, 3, 4), Excellent},
		{"tuesday", day(2024, 3, 5), Good},
		{"wednesday", day(2024, 3, 6), Fair},
		{"thursday", day(2024, 3, 7), Poor},
		{"friday", day(2024, 3, 8), Avoid},
		{"saturday", day(2024, 3, 9), Closed},
		{"sunday", day(2024, 3, 3), Closed},
		{"third friday", day(2024, 3, 15), Caution},
		{"monday of expiration week", day(2024, 3, 11), Caution},
		{"holiday beats weekday", day(2024, 7, 1), Avoid},
		{"christmas week", day(2024, 12, 23), Avoid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, analysis := EntryDay(tt.date)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, analysis)
		})
	}
}

func TestThirdFridayIsAlwaysCaution(t *testing.T) {
	t.Parallel()

	for y := 2023; y <= 2027; y++ {
		for m := time.January; m <= time.December; m++ {
			tf := ThirdFriday(y, m, time.UTC)
			assert.Equal(t, time.Friday, tf.Weekday())
			assert.GreaterOrEqual(t, tf.Day(), 15)
			assert.LessOrEqual(t, tf.Day(), 21)

			rating, _ := EntryDay(tf)
			assert.Equal(t, Caution, rating, tf.Format("2006-01-02"))
			assert.Equal(t, ExpirationWeek, Status(tf))
		}
	}
}

func TestHolidayWeek(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHolidayWeek(day(2025, 1, 1)))
	assert.True(t, IsHolidayWeek(day(2025, 1, 4)))
	assert.False(t, IsHolidayWeek(day(2025, 1, 5)))
	assert.True(t, IsHolidayWeek(day(2025, 7, 7)))
	assert.False(t, IsHolidayWeek(day(2025, 7, 8)))
	assert.True(t, IsHolidayWeek(day(2025, 12, 22)))
	assert.False(t, IsHolidayWeek(day(2025, 12, 31)))
	assert.False(t, IsHolidayWeek(day(2025, 6, 30)))
}

func TestStatusPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		date time.Time
		want WeekStatus
	}{
		{day(2024, 7, 3), HolidayWeek},
		// Earnings month, but the 15th falls in expiration week.
		{day(2024, 10, 15), ExpirationWeek},
		{day(2024, 4, 22), EarningsHeavy},
		{day(2024, 4, 10), Normal},
		{day(2024, 3, 4), Normal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.date), tt.date.Format("2006-01-02"))
	}
}

func TestWeeklyScores(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DayScores{100, 85, 65, 40, 20}, WeeklyScores(day(2024, 3, 4)))
	assert.Equal(t, DayScores{80, 68, 52, 32, 16}, WeeklyScores(day(2024, 3, 13)))
	assert.Equal(t, DayScores{60, 51, 39, 24, 12}, WeeklyScores(day(2024, 7, 2)))
}

func TestOptimalDTE(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target int
		day    time.Weekday
		want   int
	}{
		{30, time.Monday, 30},
		{30, time.Tuesday, 30},
		{30, time.Wednesday, 28},
		{22, time.Wednesday, 21},
		{30, time.Thursday, 25},
		{30, time.Friday, 25},
		{16, time.Friday, 14},
		{30, time.Saturday, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OptimalDTE(tt.target, tt.day), "%d on %s", tt.target, tt.day)
	}
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	a := Analyze(day(2024, 3, 7), 45)
	assert.Equal(t, "Thursday", a.CurrentDay)
	assert.Equal(t, Poor, a.EntryRating)
	assert.Equal(t, Normal, a.WeekStatus)
	assert.Equal(t, 40, a.OptimalDTE)
	assert.Equal(t, 100, a.DayScores.Monday)
}
