package account

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/spreads/spread"
)

// Status is a trade's lifecycle state. Open moves to Closed exactly once.
type Status string

const (
	Open   Status = "Open"
	Closed Status = "Closed"
)

func (s Status) Valid() bool { return s == Open || s == Closed }

// ID identifies a trade. Older ledgers stored millisecond timestamps as
// JSON numbers; those decode into their decimal string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("trade id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Date is a point in time that marshals as RFC3339 and also accepts the
// date-only and US locale ("1/2/2006") forms found in exported ledgers.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
	"1/2/2006, 3:04:05 PM",
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("unrecognized date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Trade is one credit spread position.
type Trade struct {
	ID           ID          `json:"id"`
	Type         spread.Type `json:"type"`
	Underlying   string      `json:"underlying"`
	OpenDate     Date        `json:"openDate"`
	CurrentPrice float64     `json:"currentPrice"`
	ShortStrike  float64     `json:"shortStrike"`
	LongStrike   float64     `json:"longStrike"`
	Credit       float64     `json:"credit"`
	MaxRisk      float64     `json:"maxRisk"`
	DTE          int         `json:"dte"`
	Status       Status      `json:"status"`
	PnL          float64     `json:"pnl"`
	CloseDate    *Date       `json:"closeDate"`
}

func (t Trade) IsOpen() bool { return t.Status == Open }

// ReturnOnRisk is realized P/L as a percent of the max risk taken. Trades
// with no positive risk have no meaningful return and report ok=false.
func (t Trade) ReturnOnRisk() (pct float64, ok bool) {
	if t.MaxRisk <= 0 {
		return 0, false
	}
	return t.PnL / t.MaxRisk * 100, true
}

func (t Trade) clone() Trade {
	if t.CloseDate != nil {
		d := *t.CloseDate
		t.CloseDate = &d
	}
	return t
}
