// Package cards computes spend, utilization and due-date figures for
// payment cards from the transaction list.
package cards

import (
	"time"

	"controlly/internal/core"
	"controlly/internal/ledger"
)

// DefaultAlertPercent is the utilization at which a card counts as near its limit.
const DefaultAlertPercent = 80.0

type Usage struct {
	CardID       string      `json:"cardId"`
	MonthlySpend core.Money  `json:"monthlySpend"`
	Limit        *core.Money `json:"limit,omitempty"`
	Available    *core.Money `json:"available,omitempty"`
	Utilization  *float64    `json:"utilization,omitempty"`
	NearLimit    bool        `json:"nearLimit"`
	DaysUntilDue *int        `json:"daysUntilDue,omitempty"`
}

// MonthlySpend sums the card's expenses dated within ref's calendar month.
func MonthlySpend(card core.Card, txs []core.Transaction, ref core.Date) core.Money {
	start, end := ledger.MonthBounds(ref)
	return ledger.TotalExpenses(ledger.ByPeriod(ledger.ExpensesByCard(txs, card.ID), start, end))
}

// Utilization is spend as a percentage of the limit. ok is false when the
// card has no limit.
func Utilization(card core.Card, spend core.Money) (pct float64, ok bool) {
	if !card.HasLimit() {
		return 0, false
	}
	return float64(spend.Cents) / float64(card.Limit.Cents) * 100, true
}

// Available is the limit minus spend; it goes negative past the limit.
func Available(card core.Card, spend core.Money) (core.Money, bool) {
	if !card.HasLimit() {
		return core.Money{}, false
	}
	return card.Limit.Sub(spend), true
}

// NearLimit reports whether utilization reached alertPercent.
func NearLimit(card core.Card, spend core.Money, alertPercent float64) bool {
	pct, ok := Utilization(card, spend)
	return ok && pct >= alertPercent
}

func dueIn(year int, month time.Month, dueDay int) core.Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dueDay > last {
		dueDay = last
	}
	return core.NewDate(year, int(month), dueDay)
}

// DaysUntilDue counts days from ref to the next due date on or after ref.
// A due day the month does not have falls on its last day.
func DaysUntilDue(dueDay int, ref core.Date) int {
	due := dueIn(ref.Year(), ref.Time.Month(), dueDay)
	if due.Compare(ref) < 0 {
		next := time.Date(ref.Year(), ref.Time.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		due = dueIn(next.Year(), next.Month(), dueDay)
	}
	start := core.DateOf(ref.Time)
	return int(due.Sub(start.Time).Hours() / 24)
}

// Summarize gathers every figure the card page shows for ref's month.
func Summarize(card core.Card, txs []core.Transaction, ref core.Date, alertPercent float64) Usage {
	spend := MonthlySpend(card, txs, ref)
	u := Usage{CardID: card.ID, MonthlySpend: spend}
	if card.HasLimit() {
		limit := *card.Limit
		avail, _ := Available(card, spend)
		pct, _ := Utilization(card, spend)
		u.Limit = &limit
		u.Available = &avail
		u.Utilization = &pct
		u.NearLimit = pct >= alertPercent
	}
	if card.DueDay > 0 {
		days := DaysUntilDue(card.DueDay, ref)
		u.DaysUntilDue = &days
	}
	return u
}
