// Package timing rates a calendar date for opening credit spreads. Every
// function is a pure function of the date it is given; callers decide which
// clock and time zone to use.
package timing

import "time"

// Rating is the entry quality for a day.
type Rating string

const (
	Excellent Rating = "EXCELLENT"
	Good      Rating = "GOOD"
	Fair      Rating = "FAIR"
	Poor      Rating = "POOR"
	Avoid     Rating = "AVOID"
	Caution   Rating = "CAUTION"
	Closed    Rating = "CLOSED"
)

// WeekStatus labels the week a date falls in.
type WeekStatus string

const (
	HolidayWeek    WeekStatus = "HOLIDAY WEEK"
	ExpirationWeek WeekStatus = "EXPIRATION WEEK"
	EarningsHeavy  WeekStatus = "EARNINGS HEAVY"
	Normal         WeekStatus = "NORMAL"
)

type entry struct {
	Rating   Rating
	Analysis string
}

var weekdayEntries = map[time.Weekday]entry{
	time.Monday:    {Excellent, "Monday is optimal for opening credit spreads. Full week of theta decay ahead."},
	time.Tuesday:   {Good, "Tuesday is very good for entries. Strong theta decay potential."},
	time.Wednesday: {Fair, "Wednesday entries are acceptable but not optimal."},
	time.Thursday:  {Poor, "Thursday entries face weekend theta inefficiency."},
	time.Friday:    {Avoid, "Friday entries are suboptimal due to weekend pause."},
}

var (
	closedEntry     = entry{Closed, "Markets are closed. Plan entries for Monday or Tuesday."}
	holidayEntry    = entry{Avoid, "Holiday week detected. Reduced trading volume and unpredictable theta decay."}
	expirationEntry = entry{Caution, "Options expiration week. Increased volatility and gamma risk."}
)

// EntryDay rates t for opening a position. Holiday weeks override expiration
// weeks, which override the weekday table.
func EntryDay(t time.Time) (Rating, string) {
	var e entry
	switch {
	case IsHolidayWeek(t):
		e = holidayEntry
	case IsExpirationWeek(t):
		e = expirationEntry
	default:
		var ok bool
		if e, ok = weekdayEntries[t.Weekday()]; !ok {
			e = closedEntry
		}
	}
	return e.Rating, e.Analysis
}

// Status picks the first matching label: holiday, expiration, earnings,
// otherwise normal.
func Status(t time.Time) WeekStatus {
	switch {
	case IsHolidayWeek(t):
		return HolidayWeek
	case IsExpirationWeek(t):
		return ExpirationWeek
	case IsEarningsWeek(t):
		return EarningsHeavy
	}
	return Normal
}

// DayScores are entry scores for each trading day of the week.
type DayScores struct {
	Monday    int `json:"monday"`
	Tuesday   int `json:"tuesday"`
	Wednesday int `json:"wednesday"`
	Thursday  int `json:"thursday"`
	Friday    int `json:"friday"`
}

var baseScores = DayScores{Monday: 100, Tuesday: 85, Wednesday: 65, Thursday: 40, Friday: 20}

// WeeklyScores scales the base table down by 0.6 in a holiday week or 0.8
// in an expiration week.
func WeeklyScores(t time.Time) DayScores {
	factor := 1.0
	switch {
	case IsHolidayWeek(t):
		factor = 0.6
	case IsExpirationWeek(t):
		factor = 0.8
	}
	scale := func(v int) int { return int(float64(v)*factor + 0.5) }
	return DayScores{
		Monday:    scale(baseScores.Monday),
		Tuesday:   scale(baseScores.Tuesday),
		Wednesday: scale(baseScores.Wednesday),
		Thursday:  scale(baseScores.Thursday),
		Friday:    scale(baseScores.Friday),
	}
}

// OptimalDTE shortens the target for late-week entries: by 2 days (not
// below 21) on Wednesday and by 5 days (not below 14) on Thursday and Friday.
func OptimalDTE(targetDTE int, day time.Weekday) int {
	switch day {
	case time.Wednesday:
		return max(targetDTE-2, 21)
	case time.Thursday, time.Friday:
		return max(targetDTE-5, 14)
	}
	return targetDTE
}

// Analysis is the full timing view for one moment.
type Analysis struct {
	Date        time.Time  `json:"date"`
	CurrentDay  string     `json:"currentDay"`
	EntryRating Rating     `json:"entryRating"`
	Analysis    string     `json:"analysis"`
	WeekStatus  WeekStatus `json:"weekStatus"`
	DayScores   DayScores  `json:"dayScores"`
	OptimalDTE  int        `json:"optimalDTE"`
}

func Analyze(now time.Time, targetDTE int) Analysis {
	rating, analysis := EntryDay(now)
	return Analysis{
		Date:        now,
		CurrentDay:  now.Weekday().String(),
		EntryRating: rating,
		Analysis:    analysis,
		WeekStatus:  Status(now),
		DayScores:   WeeklyScores(now),
		OptimalDTE:  OptimalDTE(targetDTE, now.Weekday()),
	}
}
