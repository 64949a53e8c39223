package core

import "strings"

// Form payloads as submitted by clients. Amounts and dates arrive as strings
// and are parsed here, at the boundary, before anything reaches a store.
type (
	TransactionInput struct {
		Type         TransactionType `json:"type"`
		Amount       string          `json:"amount"`
		Description  string          `json:"description"`
		Category     string          `json:"category"`
		Date         string          `json:"date"`
		CardID       string          `json:"cardId,omitempty"`
		PurchaseType PurchaseType    `json:"purchaseType,omitempty"`
		Installments int             `json:"installments,omitempty"`
	}

	CardInput struct {
		Name           string   `json:"name"`
		Type           CardType `json:"type"`
		LastFourDigits string   `json:"lastFourDigits"`
		Limit          string   `json:"limit,omitempty"`
		DueDay         int      `json:"dueDate,omitempty"`
		AnnualFee      string   `json:"annualFee,omitempty"`
	}

	GoalInput struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		TargetAmount string   `json:"targetAmount"`
		TargetDate   string   `json:"targetDate"`
		Type         GoalType `json:"type"`
		Category     string   `json:"category,omitempty"`
	}
)

// Apply validates the input and copies it onto t, leaving identity fields alone.
func (in TransactionInput) Apply(t *Transaction) error {
	amount, err := ParseMoney(in.Amount)
	if err != nil {
		return Invalid("amount", err)
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return Invalid("date", err)
	}
	next := *t
	next.Type = in.Type
	next.Amount = amount
	next.Description = strings.TrimSpace(in.Description)
	next.Category = strings.TrimSpace(in.Category)
	next.Date = date
	next.CardID = strings.TrimSpace(in.CardID)
	next.PurchaseType = in.PurchaseType.Normalize()
	next.Installments = in.Installments
	if next.PurchaseType != PurchaseParcelado {
		next.Installments = 0
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*t = next
	return nil
}

// Apply validates the input and copies it onto c, leaving identity fields alone.
func (in CardInput) Apply(c *Card) error {
	next := *c
	next.Name = strings.TrimSpace(in.Name)
	next.Type = in.Type
	next.LastFourDigits = strings.TrimSpace(in.LastFourDigits)
	next.DueDay = in.DueDay
	next.Limit = nil
	next.AnnualFee = nil
	if strings.TrimSpace(in.Limit) != "" {
		limit, err := ParseMoney(in.Limit)
		if err != nil {
			return Invalid("limit", err)
		}
		next.Limit = &limit
	}
	if strings.TrimSpace(in.AnnualFee) != "" {
		cents, err := parseCents(in.AnnualFee)
		if err != nil {
			return Invalid("annualFee", err)
		}
		next.AnnualFee = &Money{Cents: cents}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Apply validates the input and copies it onto g. Progress and the completion
// flag are kept; today is the reference for the future-date rule.
func (in GoalInput) Apply(g *Goal, today Date) error {
	target, err := ParseMoney(in.TargetAmount)
	if err != nil {
		return Invalid("targetAmount", err)
	}
	date, err := ParseDate(in.TargetDate)
	if err != nil {
		return Invalid("targetDate", err)
	}
	if date.Compare(today) <= 0 {
		return Invalid("targetDate", ErrTargetDateNotFuture)
	}
	next := *g
	next.Title = strings.TrimSpace(in.Title)
	next.Description = strings.TrimSpace(in.Description)
	next.TargetAmount = target
	next.TargetDate = date
	next.Type = in.Type
	next.Category = strings.TrimSpace(in.Category)
	if err := next.Validate(); err != nil {
		return err
	}
	*g = next
	return nil
}
