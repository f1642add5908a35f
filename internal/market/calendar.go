package market

import (
	"time"
)

// LastTradingDay returns the most recent trading day on or before now,
// given a calendar table with a trade_date column of YYYY-MM-DD strings.
// Returns "" when the calendar holds no past dates.
func LastTradingDay(calendar *Table, now time.Time) string {
	if calendar.Empty() {
		return ""
	}
	idx := calendar.ColumnIndex("trade_date")
	if idx < 0 {
		return ""
	}

	today := now.Format("2006-01-02")
	last := ""
	for _, row := range calendar.Rows {
		date, ok := row[idx].(string)
		if !ok || date > today {
			continue
		}
		if date > last {
			last = date
		}
	}
	return last
}
