package ledger

import (
	"sort"

	"controlly/internal/core"
)

// Palette colors categories in first-seen order, wrapping around.
var Palette = []string{"#ef4444", "#f59e0b", "#3b82f6", "#10b981", "#8b5cf6", "#ec4899", "#f97316"}

type CategoryTotal struct {
	Name  string     `json:"name"`
	Total core.Money `json:"value"`
	Color string     `json:"color"`
}

// CategoryTotals groups expenses by category label, largest total first.
// Ties keep first-seen order.
func CategoryTotals(txs []core.Transaction) []CategoryTotal {
	out := []CategoryTotal{}
	index := make(map[string]int)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{
				Name:  t.Category,
				Color: Palette[i%len(Palette)],
			})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.Cents > out[j].Total.Cents
	})
	return out
}
