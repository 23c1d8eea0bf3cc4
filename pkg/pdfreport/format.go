package pdfreport

import (
	"time"

	"github.com/goodsign/monday"
	"github.com/shopspring/decimal"
)

// DescriptionBudget is how many characters of a work-item description fit
// in the table before it is cut.
const DescriptionBudget = 30

const ellipsis = "..."

// Truncate shortens s to n runes plus an ellipsis. Strings of n runes or
// fewer come back unchanged.
func Truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + ellipsis
}

func formatDate(t time.Time, loc monday.Locale) string {
	if t.IsZero() {
		return "-"
	}
	return monday.Format(t, "02 January 2006", loc)
}

func formatPercent(d decimal.Decimal) string {
	return d.String()
}
