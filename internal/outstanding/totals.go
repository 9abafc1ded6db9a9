package outstanding

import "github.com/shopspring/decimal"

// Totals aggregates the amounts of a set of summaries.
type Totals struct {
	Amount   decimal.Decimal
	Accounts int
	// Skipped counts rows whose amount was absent or unparseable.
	Skipped int
}

// Total sums the parseable amounts of rows.
func Total(rows []Summary) Totals {
	var t Totals
	for _, s := range rows {
		d, ok := s.Amount.Decimal()
		if !ok {
			t.Skipped++
			continue
		}
		t.Amount = t.Amount.Add(d)
		t.Accounts++
	}
	return t
}

// Overdue keeps the rows outstanding for at least days, preserving order.
// A days value of zero or less keeps every row.
func Overdue(rows []Summary, days int) []Summary {
	if days <= 0 {
		return rows
	}
	kept := make([]Summary, 0, len(rows))
	for _, s := range rows {
		if s.DaysOutstanding >= days {
			kept = append(kept, s)
		}
	}
	return kept
}
