package ledger

import (
	"strings"

	"controlly/internal/core"
)

// Rule splits income into essentials, wants and savings, in percent.
type Rule struct {
	Name       string `json:"name"`
	Essentials int    `json:"essentials"`
	Wants      int    `json:"wants"`
	Savings    int    `json:"savings"`
}

var (
	Classic      = Rule{Name: "classic", Essentials: 50, Wants: 30, Savings: 20}
	Conservative = Rule{Name: "conservative", Essentials: 60, Wants: 20, Savings: 20}
	Aggressive   = Rule{Name: "aggressive", Essentials: 40, Wants: 30, Savings: 30}
	Basic        = Rule{Name: "basic", Essentials: 70, Wants: 20, Savings: 10}
)

// Presets lists the named rules in display order.
var Presets = []Rule{Classic, Conservative, Aggressive, Basic}

// PresetRule looks a preset up by name; an empty name means Classic.
func PresetRule(name string) (Rule, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Classic, true
	}
	for _, r := range Presets {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

func (r Rule) Validate() error {
	if r.Essentials < 0 || r.Wants < 0 || r.Savings < 0 {
		return core.Invalid("rule", core.ErrInvalidRule)
	}
	if r.Essentials+r.Wants+r.Savings != 100 {
		return core.Invalid("rule", core.ErrInvalidRule)
	}
	return nil
}

type Distribution struct {
	Rule       Rule       `json:"rule"`
	Income     core.Money `json:"income"`
	Essentials core.Money `json:"essentials"`
	Wants      core.Money `json:"wants"`
	Savings    core.Money `json:"savings"`
	// Actual is what the recorded transactions show, next to the suggestion.
	Actual Actuals `json:"actual"`
}

// Expenses carry no essentials/wants tag, so the actual split is estimated
// at this share of spending for essentials.
const estimatedEssentialsPct = 60

// Actuals compares recorded income and spending against a distribution.
type Actuals struct {
	Income     core.Money `json:"income"`
	Expenses   core.Money `json:"expenses"`
	Essentials core.Money `json:"essentials"`
	Wants      core.Money `json:"wants"`
	// Savings is income minus expenses, never below zero.
	Savings core.Money `json:"savings"`
	// HighSpending is set when expenses pass 80% of income.
	HighSpending bool `json:"highSpending"`
	// LowSavings is set when what is left is under 10% of income.
	LowSavings bool `json:"lowSavings"`
}

// Distribute splits income by rule. Shares round down to the cent and the
// leftover cents go to savings, so the parts always add up to income.
func Distribute(income core.Money, rule Rule) (Distribution, error) {
	if err := rule.Validate(); err != nil {
		return Distribution{}, err
	}
	share := func(pct int) core.Money {
		return core.Money{Cents: income.Cents * int64(pct) / 100}
	}
	d := Distribution{
		Rule:       rule,
		Income:     income,
		Essentials: share(rule.Essentials),
		Wants:      share(rule.Wants),
	}
	d.Savings = income.Sub(d.Essentials).Sub(d.Wants)
	return d, nil
}

// ActualSpending summarizes txs for comparison with a suggested split.
func ActualSpending(txs []core.Transaction) Actuals {
	income, expenses := TotalIncome(txs), TotalExpenses(txs)
	a := Actuals{
		Income:     income,
		Expenses:   expenses,
		Essentials: core.Money{Cents: expenses.Cents * estimatedEssentialsPct / 100},
	}
	a.Wants = expenses.Sub(a.Essentials)
	left := income.Cents - expenses.Cents
	if left > 0 {
		a.Savings = core.Money{Cents: left}
	}
	a.HighSpending = expenses.Cents*100 > income.Cents*80
	a.LowSavings = left*100 < income.Cents*10
	return a
}
