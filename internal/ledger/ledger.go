// Package ledger derives dashboard and report figures from a transaction
// list. Every function is pure: inputs are never modified and an empty list
// yields zero values, never an error.
package ledger

import (
	"sort"

	"controlly/internal/core"
)

// Summary is the headline of a report or dashboard.
type Summary struct {
	TotalIncome   core.Money `json:"totalIncome"`
	TotalExpenses core.Money `json:"totalExpenses"`
	Balance       core.Money `json:"balance"`
	Count         int        `json:"count"`
}

func sumType(txs []core.Transaction, typ core.TransactionType) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.Type == typ {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalIncome sums income amounts.
func TotalIncome(txs []core.Transaction) core.Money {
	return sumType(txs, core.Income)
}

// TotalExpenses sums expense amounts.
func TotalExpenses(txs []core.Transaction) core.Money {
	return sumType(txs, core.Expense)
}

// TotalBalance is income minus expenses.
func TotalBalance(txs []core.Transaction) core.Money {
	return TotalIncome(txs).Sub(TotalExpenses(txs))
}

func Summarize(txs []core.Transaction) Summary {
	income, expenses := TotalIncome(txs), TotalExpenses(txs)
	return Summary{
		TotalIncome:   income,
		TotalExpenses: expenses,
		Balance:       income.Sub(expenses),
		Count:         len(txs),
	}
}

// ByPeriod keeps transactions with start <= date <= end, compared by calendar day.
func ByPeriod(txs []core.Transaction, start, end core.Date) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range txs {
		if t.Date.Compare(start) >= 0 && t.Date.Compare(end) <= 0 {
			out = append(out, t)
		}
	}
	return out
}

// ByCard keeps transactions referencing cardID, in list order.
func ByCard(txs []core.Transaction, cardID string) []core.Transaction {
	out := []core.Transaction{}
	if cardID == "" {
		return out
	}
	for _, t := range txs {
		if t.CardID == cardID {
			out = append(out, t)
		}
	}
	return out
}

// ExpensesByCard keeps the expenses charged to cardID.
func ExpensesByCard(txs []core.Transaction, cardID string) []core.Transaction {
	out := []core.Transaction{}
	for _, t := range ByCard(txs, cardID) {
		if t.Type == core.Expense {
			out = append(out, t)
		}
	}
	return out
}

// Recent returns up to n transactions, newest date first. Equal dates keep
// list order. txs is not reordered.
func Recent(txs []core.Transaction, n int) []core.Transaction {
	if n <= 0 {
		return []core.Transaction{}
	}
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Compare(sorted[j].Date) > 0
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// InstallmentAmount is the per-installment value of a parcelado purchase,
// rounded down to the cent. Other purchases return the full amount.
func InstallmentAmount(t core.Transaction) core.Money {
	if t.PurchaseType != core.PurchaseParcelado || t.Installments <= 0 {
		return t.Amount
	}
	return core.Money{Cents: t.Amount.Cents / int64(t.Installments)}
}
