package market

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Impact string

const (
	High   Impact = "HIGH"
	Medium Impact = "MEDIUM"
	Low    Impact = "LOW"
)

// MapImpactLevel normalizes provider impact values. Strings containing
// "high" or "medium" and the numeric levels 3 and 2 are recognized; anything
// else, including nil, is Low.
func MapImpactLevel(v any) Impact {
	var s string
	switch x := v.(type) {
	case nil:
		return Low
	case string:
		s = x
	case json.Number:
		s = x.String()
	case float64:
		s = fmt.Sprint(x)
	case int:
		s = fmt.Sprint(x)
	default:
		s = fmt.Sprint(x)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(s, "high") || s == "3":
		return High
	case strings.Contains(s, "medium") || s == "2":
		return Medium
	}
	return Low
}

// Event is one economic calendar release.
type Event struct {
	Name    string    `json:"name"`
	Country string    `json:"country"`
	Time    time.Time `json:"time"`
	Impact  Impact    `json:"impact"`
}

// Calendar is the week ahead. Available is false when the provider failed;
// Events is then empty.
type Calendar struct {
	Events      []Event   `json:"events"`
	Updated     time.Time `json:"updated"`
	Available   bool      `json:"available"`
	NeedsAPIKey bool      `json:"needsApiKey,omitempty"`
}

type CalendarRisk struct {
	Level    Impact `json:"riskLevel"`
	Advice   string `json:"advice"`
	Analysis string `json:"analysis"`
}

// AnalyzeCalendarRisk grades the week by its high and medium impact events.
func AnalyzeCalendarRisk(events []Event) CalendarRisk {
	var high []Event
	medium := 0
	for _, e := range events {
		switch e.Impact {
		case High:
			high = append(high, e)
		case Medium:
			medium++
		}
	}

	switch {
	case len(high) >= 2:
		return CalendarRisk{High, "AVOID TRADING",
			fmt.Sprintf("%d high-impact events this week. Avoid opening new credit spreads.", len(high))}
	case len(high) == 1:
		return CalendarRisk{Medium, "TRADE WITH CAUTION",
			fmt.Sprintf("1 high-impact event this week (%s). Be very selective with new positions.", high[0].Name)}
	case medium >= 3:
		return CalendarRisk{Medium, "TRADE WITH CAUTION",
			fmt.Sprintf("%d medium-impact events this week. Monitor positions closely.", medium)}
	}
	return CalendarRisk{Low, "FAVORABLE",
		"Light economic calendar this week. Good environment for opening new credit spread positions."}
}
