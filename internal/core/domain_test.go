package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateCompareIgnoresTimeOfDay(t *testing.T) {
	a := Date{Time: time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)}
	b := NewDate(2025, 3, 10)
	if a.Compare(b) != 0 {
		t.Fatalf("expected same day to compare equal")
	}
	if NewDate(2025, 3, 9).Compare(b) != -1 || NewDate(2025, 3, 11).Compare(b) != 1 {
		t.Fatalf("unexpected ordering")
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, 7, 4)
	b, err := json.Marshal(d)
	if err != nil || string(b) != `"2025-07-04"` {
		t.Fatalf("marshal got %s err=%v", b, err)
	}
	var back Date
	if err := json.Unmarshal([]byte(`"2025-07-04T15:04:05Z"`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Compare(d) != 0 {
		t.Fatalf("expected %v, got %v", d, back)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &back); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 100},
		Description: "ok",
		Category:    "Food",
		Date:        NewDate(2025, 1, 1),
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	mutate := func(f func(*Transaction)) Transaction {
		tx := validTransaction()
		f(&tx)
		return tx
	}
	bads := []struct {
		name  string
		tx    Transaction
		field string
	}{
		{"bad type", mutate(func(tx *Transaction) { tx.Type = "transfer" }), "type"},
		{"zero amount", mutate(func(tx *Transaction) { tx.Amount = Money{} }), "amount"},
		{"empty description", mutate(func(tx *Transaction) { tx.Description = " " }), "description"},
		{"empty category", mutate(func(tx *Transaction) { tx.Category = "" }), "category"},
		{"zero date", mutate(func(tx *Transaction) { tx.Date = Date{} }), "date"},
		{"one installment", mutate(func(tx *Transaction) { tx.PurchaseType = PurchaseParcelado; tx.Installments = 1 }), "installments"},
		{"too many installments", mutate(func(tx *Transaction) { tx.PurchaseType = PurchaseParcelado; tx.Installments = 25 }), "installments"},
		{"installments without parcelado", mutate(func(tx *Transaction) { tx.PurchaseType = PurchaseAVista; tx.Installments = 3 }), "installments"},
		{"unknown purchase type", mutate(func(tx *Transaction) { tx.PurchaseType = "fiado" }), "purchaseType"},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tx.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
		})
	}
}

func TestCardValidate(t *testing.T) {
	limit := Money{Cents: 100000}
	good := Card{Name: "Nubank", Type: Credit, LastFourDigits: "1234", Limit: &limit, DueDay: 10}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		card Card
		want error
	}{
		{"three digits", Card{Name: "c", Type: Debit, LastFourDigits: "123"}, ErrInvalidDigits},
		{"letters", Card{Name: "c", Type: Debit, LastFourDigits: "12a4"}, ErrInvalidDigits},
		{"limit on debit", Card{Name: "c", Type: Debit, LastFourDigits: "1234", Limit: &limit}, ErrLimitOnDebit},
		{"due day 32", Card{Name: "c", Type: Credit, LastFourDigits: "1234", DueDay: 32}, ErrInvalidDueDay},
		{"no name", Card{Type: Credit, LastFourDigits: "1234"}, ErrEmptyName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.card.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGoalInputApply(t *testing.T) {
	today := NewDate(2025, 6, 15)
	in := GoalInput{Title: "Trip", TargetAmount: "1000", TargetDate: "2025-12-01", Type: Savings}

	g := Goal{ID: "goal_1", CurrentAmount: Money{Cents: 40000}}
	if err := in.Apply(&g, today); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if g.ID != "goal_1" || g.CurrentAmount.Cents != 40000 || g.TargetAmount.Cents != 100000 {
		t.Fatalf("unexpected goal after apply: %+v", g)
	}

	past := in
	past.TargetDate = "2025-06-15"
	if err := past.Apply(&g, today); !errors.Is(err, ErrTargetDateNotFuture) {
		t.Fatalf("expected future date error, got %v", err)
	}

	reduction := in
	reduction.Type = ExpenseReduction
	if err := reduction.Apply(&g, today); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected category error, got %v", err)
	}
}

func TestTransactionInputApplyKeepsIdentity(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	tx := Transaction{ID: "trans_1", UserID: DefaultUserID, CreatedAt: created}
	in := TransactionInput{
		Type: Expense, Amount: "12,50", Description: "Lunch", Category: "Food",
		Date: "2025-02-03", PurchaseType: PurchaseParcelado, Installments: 3,
	}
	if err := in.Apply(&tx); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if tx.ID != "trans_1" || !tx.CreatedAt.Equal(created) || tx.Amount.Cents != 1250 || tx.Installments != 3 {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	bad := in
	bad.Amount = "-3"
	before := tx
	if err := bad.Apply(&tx); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if tx != before {
		t.Fatalf("failed apply must not modify the transaction")
	}
}

func TestTransactionInputApplyNoneSpelling(t *testing.T) {
	for _, pt := range []PurchaseType{"none", "NONE", PurchaseNone} {
		var tx Transaction
		in := TransactionInput{
			Type: Income, Amount: "100", Description: "Salary", Category: "Work",
			Date: "2025-02-03", PurchaseType: pt,
		}
		if err := in.Apply(&tx); err != nil {
			t.Fatalf("%q: apply: %v", pt, err)
		}
		if tx.PurchaseType != PurchaseNone {
			t.Fatalf("%q: purchase type stored as %q", pt, tx.PurchaseType)
		}
	}
}

func TestCardInputApply(t *testing.T) {
	var c Card
	in := CardInput{Name: "Inter", Type: Credit, LastFourDigits: "9876", Limit: "1500.00", AnnualFee: "0"}
	if err := in.Apply(&c); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Limit == nil || c.Limit.Cents != 150000 || c.AnnualFee == nil || c.AnnualFee.Cents != 0 {
		t.Fatalf("unexpected card: %+v", c)
	}

	in.Limit = ""
	if err := in.Apply(&c); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if c.Limit != nil {
		t.Fatalf("expected limit cleared on update")
	}
}
