package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a closed spread as an Org-mode entry. The heading
// is tagged :win: or :loss:, the facts sit in a PROPERTIES drawer and the
// review sections are left for the trader to fill in.
func FormatTradeOrg(t TradeRecord) string {
	tag := "win"
	if t.RealizedPL < 0 {
		tag = "loss"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)  :%s:\n", t.Underlying, t.Type, shortID(t.TradeID), tag)
	b.WriteString(":PROPERTIES:\n")
	props := [][2]string{
		{"TRADE_ID", t.TradeID},
		{"UNDERLYING", t.Underlying},
		{"TYPE", t.Type},
		{"STRIKES", fmt.Sprintf("%.2f/%.2f", t.ShortStrike, t.LongStrike)},
		{"CREDIT", fmt.Sprintf("%.2f", t.Credit)},
		{"MAX_RISK", fmt.Sprintf("%.2f", t.MaxRisk)},
		{"DTE", fmt.Sprint(t.DTE)},
		{"OPEN_TIME", t.OpenTime.UTC().Format(time.RFC3339)},
		{"CLOSE_TIME", t.CloseTime.UTC().Format(time.RFC3339)},
		{"DAYS_HELD", fmt.Sprint(daysHeld(t))},
		{"REALIZED_PL", fmt.Sprintf("%.2f", t.RealizedPL)},
		{"RETURN_ON_RISK", fmt.Sprintf("%.1f", t.ReturnOnRisk)},
	}
	for _, p := range props {
		fmt.Fprintf(&b, ":%s: %s\n", p[0], p[1])
	}
	b.WriteString(":END:\n\n")
	for _, section := range []string{"Setup", "Management", "Lessons"} {
		fmt.Fprintf(&b, "*** %s\n- \n\n", section)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// FormatTradesOrg renders trades one after another, separated by a blank line.
func FormatTradesOrg(trades []TradeRecord) string {
	blocks := make([]string, len(trades))
	for i, t := range trades {
		blocks[i] = FormatTradeOrg(t)
	}
	return strings.Join(blocks, "\n\n")
}

func daysHeld(t TradeRecord) int {
	d := t.CloseTime.Sub(t.OpenTime)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// shortID keeps the tail of long ids; ULIDs opened close together share
// their leading characters.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
