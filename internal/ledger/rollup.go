package ledger

import (
	"sort"
	"time"

	"controlly/internal/core"
)

// DashboardMonths is how many months the dashboard chart covers.
const DashboardMonths = 4

type MonthTotals struct {
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Income   core.Money `json:"income"`
	Expenses core.Money `json:"expenses"`
	Balance  core.Money `json:"balance"`
}

// MonthBounds returns the first and last calendar day of ref's month.
func MonthBounds(ref core.Date) (core.Date, core.Date) {
	first := core.NewDate(ref.Year(), ref.Month(), 1)
	last := core.DateOf(first.AddDate(0, 1, -1))
	return first, last
}

// MonthlyRollup totals the last months calendar months ending with ref's
// month, oldest first. Months without transactions are still listed.
func MonthlyRollup(txs []core.Transaction, ref core.Date, months int) []MonthTotals {
	if months <= 0 {
		return []MonthTotals{}
	}
	out := make([]MonthTotals, 0, months)
	first, _ := MonthBounds(ref)
	for i := months - 1; i >= 0; i-- {
		start := core.DateOf(first.AddDate(0, -i, 0))
		_, end := MonthBounds(start)
		s := Summarize(ByPeriod(txs, start, end))
		out = append(out, MonthTotals{
			Year:     start.Year(),
			Month:    start.Month(),
			Income:   s.TotalIncome,
			Expenses: s.TotalExpenses,
			Balance:  s.Balance,
		})
	}
	return out
}

// GroupByMonth totals every month that has at least one transaction,
// oldest first. Reports use it over an arbitrary period.
func GroupByMonth(txs []core.Transaction) []MonthTotals {
	byKey := make(map[time.Time]*MonthTotals)
	var keys []time.Time
	for _, t := range txs {
		start, _ := MonthBounds(t.Date)
		m, ok := byKey[start.Time]
		if !ok {
			m = &MonthTotals{Year: start.Year(), Month: start.Month()}
			byKey[start.Time] = m
			keys = append(keys, start.Time)
		}
		switch t.Type {
		case core.Income:
			m.Income = m.Income.Add(t.Amount)
		case core.Expense:
			m.Expenses = m.Expenses.Add(t.Amount)
		}
		m.Balance = m.Income.Sub(m.Expenses)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	out := make([]MonthTotals, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}
