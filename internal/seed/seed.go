// Package seed fills a backend with plausible fake data for demos and local
// development. Everything goes through the services, so seeded records pass
// the same validation as real ones.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"controlly/internal/core"
	"controlly/internal/log"
	"controlly/internal/services"
)

var (
	expenseCategories = []string{"Food", "Transport", "Home", "Health", "Leisure", "Shopping", "Utilities"}
	incomeCategories  = []string{"Salary", "Freelance", "Refund"}
)

// Counts says how much to generate.
type Counts struct {
	Cards        int
	Transactions int
	Goals        int
	// Months is how far back transaction dates reach.
	Months int
}

// Result lists what was created.
type Result struct {
	Cards        []core.Card
	Transactions []core.Transaction
	Goals        []core.Goal
}

type Generator struct {
	faker  *gofakeit.Faker
	now    func() time.Time
	logger *log.Logger

	txs   *services.TransactionService
	cards *services.CardService
	goals *services.GoalService
}

// NewGenerator builds a generator. A zero seed picks a random one.
func NewGenerator(txs *services.TransactionService, cardSvc *services.CardService, goalSvc *services.GoalService, seed int64, logger *log.Logger, now func() time.Time) *Generator {
	if logger == nil {
		logger = log.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{
		faker:  gofakeit.New(seed),
		now:    now,
		logger: logger.WithComponent(log.ComponentSeed),
		txs:    txs,
		cards:  cardSvc,
		goals:  goalSvc,
	}
}

func (g *Generator) amount(min, max float64) string {
	return fmt.Sprintf("%.2f", g.faker.Price(min, max))
}

// Run creates cards first so transactions can reference them, then
// transactions, then goals with some progress.
func (g *Generator) Run(ctx context.Context, n Counts) (Result, error) {
	if n.Months < 1 {
		n.Months = 1
	}
	var res Result

	for i := 0; i < n.Cards; i++ {
		c, err := g.cards.Create(ctx, g.cardInput())
		if err != nil {
			return res, fmt.Errorf("seed card %d: %w", i, err)
		}
		res.Cards = append(res.Cards, c)
	}

	today := core.DateOf(g.now())
	earliest := today.AddDate(0, -n.Months, 0)
	for i := 0; i < n.Transactions; i++ {
		date := g.faker.DateRange(earliest, today.Time)
		t, err := g.txs.Create(ctx, g.transactionInput(core.DateOf(date), res.Cards))
		if err != nil {
			return res, fmt.Errorf("seed transaction %d: %w", i, err)
		}
		res.Transactions = append(res.Transactions, t)
	}

	for i := 0; i < n.Goals; i++ {
		goal, err := g.goals.Create(ctx, g.goalInput(today))
		if err != nil {
			return res, fmt.Errorf("seed goal %d: %w", i, err)
		}
		// Up to 90% of the target, so no confirmation is needed.
		part := core.Money{Cents: int64(float64(goal.TargetAmount.Cents) * g.faker.Float64Range(0, 0.9))}
		if part.Cents > 0 {
			if goal, err = g.goals.AddProgress(ctx, goal.ID, part, false); err != nil {
				return res, fmt.Errorf("seed goal %d progress: %w", i, err)
			}
		}
		res.Goals = append(res.Goals, goal)
	}

	g.logger.InfoContext(ctx, "Seed data created",
		"cards", len(res.Cards),
		"transactions", len(res.Transactions),
		"goals", len(res.Goals))
	return res, nil
}

func (g *Generator) cardInput() core.CardInput {
	in := core.CardInput{
		Name:           g.faker.CreditCardType() + " " + g.faker.Company(),
		Type:           core.Debit,
		LastFourDigits: fmt.Sprintf("%04d", g.faker.Number(0, 9999)),
	}
	if g.faker.Bool() {
		in.Type = core.Credit
		in.Limit = fmt.Sprintf("%d", g.faker.Number(5, 50)*100)
		in.DueDay = g.faker.Number(1, 28)
		if g.faker.Bool() {
			in.AnnualFee = g.amount(20, 150)
		}
	}
	return in
}

func (g *Generator) transactionInput(date core.Date, cardList []core.Card) core.TransactionInput {
	if g.faker.Number(1, 5) == 1 {
		return core.TransactionInput{
			Type:        core.Income,
			Amount:      g.amount(500, 3000),
			Description: g.faker.Company(),
			Category:    g.faker.RandomString(incomeCategories),
			Date:        date.String(),
		}
	}

	in := core.TransactionInput{
		Type:        core.Expense,
		Amount:      g.amount(2, 250),
		Description: g.faker.Sentence(3),
		Category:    g.faker.RandomString(expenseCategories),
		Date:        date.String(),
	}
	if len(cardList) > 0 && g.faker.Bool() {
		card := cardList[g.faker.Number(0, len(cardList)-1)]
		in.CardID = card.ID
		in.PurchaseType = core.PurchaseAVista
		if card.Type == core.Credit && g.faker.Number(1, 4) == 1 {
			in.PurchaseType = core.PurchaseParcelado
			in.Installments = g.faker.Number(core.MinInstallments, 12)
		}
	}
	return in
}

func (g *Generator) goalInput(today core.Date) core.GoalInput {
	in := core.GoalInput{
		Title:        "Save for " + g.faker.Noun(),
		Description:  g.faker.Sentence(6),
		TargetAmount: fmt.Sprintf("%d", g.faker.Number(5, 100)*100),
		TargetDate:   today.AddDate(0, 0, g.faker.Number(30, 720)).Format(core.DateLayout),
		Type:         core.Savings,
	}
	if g.faker.Bool() {
		in.Type = core.ExpenseReduction
		in.Category = g.faker.RandomString(expenseCategories)
	}
	return in
}
