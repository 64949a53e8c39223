package core

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	PurchaseNone      PurchaseType = ""
	PurchaseAVista    PurchaseType = "avista"
	PurchaseParcelado PurchaseType = "parcelado"

	Credit CardType = "credit"
	Debit  CardType = "debit"

	Savings          GoalType = "savings"
	ExpenseReduction GoalType = "expense_reduction"
)

// DefaultUserID tags every record; the durable slots are not partitioned by owner.
const DefaultUserID = "default_user"

const (
	MinInstallments = 2
	MaxInstallments = 24
)

// DateLayout is the calendar-date wire format.
const DateLayout = "2006-01-02"

type (
	TransactionType string
	PurchaseType    string
	CardType        string
	GoalType        string

	// Date is a calendar date pinned to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID           string          `json:"id"`
		Type         TransactionType `json:"type"`
		Amount       Money           `json:"amount"`
		Description  string          `json:"description"`
		Category     string          `json:"category"`
		Date         Date            `json:"date"`
		CardID       string          `json:"cardId,omitempty"`
		PurchaseType PurchaseType    `json:"purchaseType,omitempty"`
		Installments int             `json:"installments,omitempty"`
		UserID       string          `json:"userId"`
		CreatedAt    time.Time       `json:"createdAt"`
	}

	Card struct {
		ID             string    `json:"id"`
		Name           string    `json:"name"`
		Type           CardType  `json:"type"`
		LastFourDigits string    `json:"lastFourDigits"`
		Limit          *Money    `json:"limit,omitempty"`
		DueDay         int       `json:"dueDate,omitempty"` // day of month, 0 when unset
		AnnualFee      *Money    `json:"annualFee,omitempty"`
		UserID         string    `json:"userId"`
		CreatedAt      time.Time `json:"createdAt"`
	}

	Goal struct {
		ID            string    `json:"id"`
		Title         string    `json:"title"`
		Description   string    `json:"description"`
		TargetAmount  Money     `json:"targetAmount"`
		CurrentAmount Money     `json:"currentAmount"`
		TargetDate    Date      `json:"targetDate"`
		Type          GoalType  `json:"type"`
		Category      string    `json:"category,omitempty"`
		UserID        string    `json:"userId"`
		CreatedAt     time.Time `json:"createdAt"`
		Completed     bool      `json:"completed"`
	}
)

func (t Transaction) EntityID() string { return t.ID }
func (c Card) EntityID() string        { return c.ID }
func (g Goal) EntityID() string        { return g.ID }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date, keeping t's wall clock fields.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses YYYY-MM-DD, falling back to RFC3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Compare orders two dates by calendar day: -1, 0 or +1.
func (d Date) Compare(o Date) int {
	a, b := DateOf(d.Time), DateOf(o.Time)
	switch {
	case a.Time.Before(b.Time):
		return -1
	case a.Time.After(b.Time):
		return 1
	}
	return 0
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool { return t == Income || t == Expense }
func (c CardType) Valid() bool        { return c == Credit || c == Debit }
func (g GoalType) Valid() bool        { return g == Savings || g == ExpenseReduction }

// Normalize maps the "none" spelling clients may send onto PurchaseNone.
func (p PurchaseType) Normalize() PurchaseType {
	if strings.EqualFold(strings.TrimSpace(string(p)), "none") {
		return PurchaseNone
	}
	return p
}

func (p PurchaseType) Valid() bool {
	switch p {
	case PurchaseNone, PurchaseAVista, PurchaseParcelado:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if err := t.Amount.Validate(); err != nil {
		return Invalid("amount", err)
	}
	if strings.TrimSpace(t.Description) == "" {
		return Invalid("description", ErrEmptyDescription)
	}
	if strings.TrimSpace(t.Category) == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	if err := t.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if !t.PurchaseType.Valid() {
		return Invalid("purchaseType", ErrInvalidPurchaseType)
	}
	if t.PurchaseType == PurchaseParcelado {
		if t.Installments < MinInstallments || t.Installments > MaxInstallments {
			return Invalid("installments", ErrInvalidInstallments)
		}
	} else if t.Installments != 0 {
		return Invalid("installments", ErrInvalidInstallments)
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if !c.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if !ValidLastFour(c.LastFourDigits) {
		return Invalid("lastFourDigits", ErrInvalidDigits)
	}
	if c.Limit != nil {
		if c.Type != Credit {
			return Invalid("limit", ErrLimitOnDebit)
		}
		if err := c.Limit.Validate(); err != nil {
			return Invalid("limit", err)
		}
	}
	if c.DueDay != 0 && (c.DueDay < 1 || c.DueDay > 31) {
		return Invalid("dueDate", ErrInvalidDueDay)
	}
	if c.AnnualFee != nil && c.AnnualFee.Cents < 0 {
		return Invalid("annualFee", ErrInvalidAmount)
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return Invalid("title", ErrEmptyTitle)
	}
	if err := g.TargetAmount.Validate(); err != nil {
		return Invalid("targetAmount", err)
	}
	if g.CurrentAmount.Cents < 0 {
		return Invalid("currentAmount", ErrInvalidAmount)
	}
	if err := g.TargetDate.Validate(); err != nil {
		return Invalid("targetDate", err)
	}
	if !g.Type.Valid() {
		return Invalid("type", ErrInvalidType)
	}
	if g.Type == ExpenseReduction && strings.TrimSpace(g.Category) == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	return nil
}

// HasLimit reports whether a spending limit is configured.
func (c Card) HasLimit() bool {
	return c.Limit != nil && c.Limit.Cents > 0
}

// ValidLastFour reports whether s is exactly four ASCII digits.
func ValidLastFour(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
