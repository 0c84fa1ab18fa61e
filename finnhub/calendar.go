package finnhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"go.uber.org/zap"

	"github.com/rustyeddy/spreads/market"
)

// The calendar endpoint has shipped its list under different keys; the
// first path that yields an array wins.
var calendarPaths = []string{
	"$.economicCalendar",
	"$.events",
	"$",
}

var eventTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Calendar returns economic events between from and to. Events that cannot
// be parsed are skipped.
func (c *Client) Calendar(ctx context.Context, from, to time.Time) ([]market.Event, error) {
	params := url.Values{
		"from": {from.Format("2006-01-02")},
		"to":   {to.Format("2006-01-02")},
	}
	body, err := c.get(ctx, "/calendar/economic", params, c.calendarTTL)
	if err != nil {
		return nil, fmt.Errorf("economic calendar: %w", err)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("economic calendar: %w: %v", ErrBadPayload, err)
	}

	raw := eventList(doc)
	if raw == nil {
		c.log.Warn("unexpected economic calendar format")
		return []market.Event{}, nil
	}

	events := make([]market.Event, 0, len(raw))
	for _, item := range raw {
		e, err := parseEvent(item)
		if err != nil {
			c.log.Debug("skipping economic event", zap.Error(err))
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func eventList(doc any) []any {
	for _, path := range calendarPaths {
		v, err := jsonpath.Get(path, doc)
		if err != nil {
			continue
		}
		if list, ok := v.([]any); ok {
			return list
		}
	}
	return nil
}

// first returns the first non-empty value among keys.
func first(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func parseEvent(item any) (market.Event, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return market.Event{}, fmt.Errorf("event is %T, not an object", item)
	}

	ts, _ := first(obj, "time", "date", "datetime").(string)
	at, err := parseEventTime(ts)
	if err != nil {
		return market.Event{}, err
	}

	name, _ := first(obj, "event", "name", "title").(string)
	if name == "" {
		name = "Economic Event"
	}
	country, _ := first(obj, "country", "region").(string)
	if country == "" {
		country = "US"
	}

	return market.Event{
		Name:    name,
		Country: country,
		Time:    at,
		Impact:  market.MapImpactLevel(first(obj, "impact", "importance", "level")),
	}, nil
}

func parseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable event time %q", s)
}

// EconomicCalendar returns the coming week's events and never fails.
func (c *Client) EconomicCalendar(ctx context.Context) market.Calendar {
	now := c.now()
	if !c.Configured() {
		return market.Calendar{Events: []market.Event{}, Updated: now, NeedsAPIKey: true}
	}
	events, err := c.Calendar(ctx, now, now.AddDate(0, 0, 7))
	if err != nil {
		c.log.Warn("economic calendar unavailable", zap.Error(err))
		return market.Calendar{Events: []market.Event{}, Updated: now}
	}
	return market.Calendar{Events: events, Updated: now, Available: true}
}
