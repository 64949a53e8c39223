package ledger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controlly/internal/core"
)

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func income(id string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{ID: id, Type: core.Income, Amount: money(cents), Description: id, Category: "Salary", Date: d}
}

func expense(id, category string, cents int64, d core.Date) core.Transaction {
	return core.Transaction{ID: id, Type: core.Expense, Amount: money(cents), Description: id, Category: category, Date: d}
}

func sample() []core.Transaction {
	return []core.Transaction{
		income("t1", 500000, core.NewDate(2024, 3, 1)),
		expense("t2", "Food", 4500, core.NewDate(2024, 3, 2)),
		expense("t3", "Transport", 12000, core.NewDate(2024, 3, 2)),
		expense("t4", "Food", 7500, core.NewDate(2024, 3, 10)),
		income("t5", 25000, core.NewDate(2024, 2, 20)),
		expense("t6", "Rent", 150000, core.NewDate(2024, 2, 5)),
		expense("t7", "Leisure", 12000, core.NewDate(2024, 1, 31)),
	}
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name     string
		txs      []core.Transaction
		income   int64
		expenses int64
	}{
		{"empty", nil, 0, 0},
		{"only income", []core.Transaction{income("a", 100, core.NewDate(2024, 1, 1))}, 100, 0},
		{"mixed", sample(), 525000, 186000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.income, TotalIncome(tt.txs).Cents)
			assert.Equal(t, tt.expenses, TotalExpenses(tt.txs).Cents)
			assert.Equal(t, TotalIncome(tt.txs).Cents-TotalExpenses(tt.txs).Cents, TotalBalance(tt.txs).Cents)

			s := Summarize(tt.txs)
			assert.Equal(t, TotalBalance(tt.txs), s.Balance)
			assert.Equal(t, len(tt.txs), s.Count)
		})
	}
}

func TestCategoryTotals(t *testing.T) {
	got := CategoryTotals(sample())
	require.Len(t, got, 4)

	var sum int64
	for i, c := range got {
		sum += c.Total.Cents
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Total.Cents, c.Total.Cents, "descending order")
		}
	}
	assert.Equal(t, TotalExpenses(sample()).Cents, sum)

	assert.Equal(t, "Rent", got[0].Name)
	assert.Equal(t, int64(150000), got[0].Total.Cents)

	// Food (12000) and Transport (12000) and Leisure (12000) tie; first seen wins.
	assert.Equal(t, []string{"Food", "Transport", "Leisure"}, []string{got[1].Name, got[2].Name, got[3].Name})

	// Colors follow first-seen order, not sorted position.
	colors := map[string]string{}
	for _, c := range got {
		colors[c.Name] = c.Color
	}
	assert.Equal(t, Palette[0], colors["Food"])
	assert.Equal(t, Palette[1], colors["Transport"])
	assert.Equal(t, Palette[2], colors["Rent"])
	assert.Equal(t, Palette[3], colors["Leisure"])
}

func TestCategoryTotalsPaletteWraps(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < len(Palette)+2; i++ {
		txs = append(txs, expense("x", string(rune('A'+i)), int64(100-i), core.NewDate(2024, 1, 1)))
	}
	got := CategoryTotals(txs)
	require.Len(t, got, len(Palette)+2)
	assert.Equal(t, Palette[0], got[len(Palette)].Color)
	assert.Equal(t, Palette[1], got[len(Palette)+1].Color)
}

func TestCategoryTotalsEmpty(t *testing.T) {
	got := CategoryTotals(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, CategoryTotals([]core.Transaction{income("a", 1, core.NewDate(2024, 1, 1))}))
}

func TestByPeriod(t *testing.T) {
	txs := sample()

	t.Run("single day", func(t *testing.T) {
		d := core.NewDate(2024, 3, 2)
		got := ByPeriod(txs, d, d)
		require.Len(t, got, 2)
		assert.Equal(t, "t2", got[0].ID)
		assert.Equal(t, "t3", got[1].ID)
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		got := ByPeriod(txs, core.NewDate(2024, 2, 5), core.NewDate(2024, 3, 1))
		var ids []string
		for _, tx := range got {
			ids = append(ids, tx.ID)
		}
		assert.Equal(t, []string{"t1", "t5", "t6"}, ids)
	})

	t.Run("inverted range", func(t *testing.T) {
		assert.Empty(t, ByPeriod(txs, core.NewDate(2024, 3, 31), core.NewDate(2024, 1, 1)))
	})
}

func TestByCard(t *testing.T) {
	txs := sample()
	txs[1].CardID = "card_1"
	txs[3].CardID = "card_1"
	txs[0].CardID = "card_1"

	assert.Len(t, ByCard(txs, "card_1"), 3)
	assert.Len(t, ExpensesByCard(txs, "card_1"), 2)
	assert.Empty(t, ByCard(txs, ""))
	assert.Empty(t, ByCard(txs, "card_2"))
}

func TestRecent(t *testing.T) {
	txs := sample()
	before := append([]core.Transaction(nil), txs...)

	got := Recent(txs, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"t4", "t2", "t3"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, before, txs, "input untouched")

	assert.Len(t, Recent(txs, 100), len(txs))
	assert.Empty(t, Recent(txs, 0))
}

func TestMonthlyRollup(t *testing.T) {
	got := MonthlyRollup(sample(), core.NewDate(2024, 3, 20), DashboardMonths)
	require.Len(t, got, 4)

	assert.Equal(t, MonthTotals{Year: 2023, Month: 12}, got[0])
	assert.Equal(t, 1, got[1].Month)
	assert.Equal(t, int64(12000), got[1].Expenses.Cents)
	assert.Equal(t, int64(25000), got[2].Income.Cents)
	assert.Equal(t, int64(150000), got[2].Expenses.Cents)
	assert.Equal(t, int64(-125000), got[2].Balance.Cents)
	assert.Equal(t, 2024, got[3].Year)
	assert.Equal(t, 3, got[3].Month)
	assert.Equal(t, int64(500000-24000), got[3].Balance.Cents)

	assert.Empty(t, MonthlyRollup(sample(), core.NewDate(2024, 3, 20), 0))
}

func TestMonthlyRollupEndOfMonthReference(t *testing.T) {
	// March 31st minus one month must land in February, not March 2nd.
	got := MonthlyRollup(nil, core.NewDate(2024, 3, 31), 2)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Month)
	assert.Equal(t, 3, got[1].Month)
}

func TestGroupByMonth(t *testing.T) {
	got := GroupByMonth(sample())
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Month, got[1].Month, got[2].Month})
	assert.Equal(t, int64(525000-186000), got[0].Balance.Cents+got[1].Balance.Cents+got[2].Balance.Cents)
}

func TestInstallmentAmount(t *testing.T) {
	tx := expense("p", "Electronics", 100000, core.NewDate(2024, 1, 1))
	assert.Equal(t, int64(100000), InstallmentAmount(tx).Cents)

	tx.PurchaseType = core.PurchaseParcelado
	tx.Installments = 3
	assert.Equal(t, int64(33333), InstallmentAmount(tx).Cents)
}

func TestDistribute(t *testing.T) {
	for _, rule := range Presets {
		t.Run(rule.Name, func(t *testing.T) {
			d, err := Distribute(money(333333), rule)
			require.NoError(t, err)
			assert.Equal(t, int64(333333), d.Essentials.Cents+d.Wants.Cents+d.Savings.Cents)
		})
	}

	d, err := Distribute(money(500000), Classic)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), d.Essentials.Cents)
	assert.Equal(t, int64(150000), d.Wants.Cents)
	assert.Equal(t, int64(100000), d.Savings.Cents)

	_, err = Distribute(money(1000), Rule{Essentials: 50, Wants: 30, Savings: 30})
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.True(t, errors.Is(err, core.ErrInvalidRule))

	_, err = Distribute(money(1000), Rule{Essentials: 120, Wants: -10, Savings: -10})
	assert.ErrorIs(t, err, core.ErrInvalidRule)
}

func TestActualSpending(t *testing.T) {
	d := core.NewDate(2024, 3, 1)
	tests := []struct {
		name         string
		txs          []core.Transaction
		essentials   int64
		wants        int64
		savings      int64
		highSpending bool
		lowSavings   bool
	}{
		{"sample", sample(), 111600, 74400, 339000, false, false},
		{"tight month", []core.Transaction{income("i", 100000, d), expense("e", "Rent", 95000, d)}, 57000, 38000, 5000, true, true},
		{"overspent", []core.Transaction{income("i", 1000, d), expense("e", "Rent", 1500, d)}, 900, 600, 0, true, true},
		{"empty", nil, 0, 0, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ActualSpending(tt.txs)
			assert.Equal(t, tt.essentials, a.Essentials.Cents)
			assert.Equal(t, tt.wants, a.Wants.Cents)
			assert.Equal(t, a.Expenses.Cents, a.Essentials.Cents+a.Wants.Cents)
			assert.Equal(t, tt.savings, a.Savings.Cents)
			assert.Equal(t, tt.highSpending, a.HighSpending)
			assert.Equal(t, tt.lowSavings, a.LowSavings)
		})
	}
}

func TestPresetRule(t *testing.T) {
	r, ok := PresetRule("")
	assert.True(t, ok)
	assert.Equal(t, Classic, r)

	r, ok = PresetRule(" Aggressive ")
	assert.True(t, ok)
	assert.Equal(t, 30, r.Savings)

	_, ok = PresetRule("yolo")
	assert.False(t, ok)
}

func TestWriteCSV(t *testing.T) {
	txs := []core.Transaction{
		expense("t1", "Food", 1234, core.NewDate(2024, 3, 2)),
		income("t2", 500000, core.NewDate(2024, 3, 5)),
	}
	txs[0].Description = "Lunch, with team"

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txs))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,type,description,category,amount", lines[0])
	assert.Equal(t, `2024-03-02,expense,"Lunch, with team",Food,12.34`, lines[1])
	assert.Equal(t, "2024-03-05,income,t2,Salary,5000.00", lines[2])
}
