package services

import (
	"context"
	"fmt"

	"controlly/internal/amqp"
	"controlly/internal/cards"
	"controlly/internal/core"
	"controlly/internal/ledger"
	"controlly/internal/log"
	"controlly/internal/store"
)

type CardService struct {
	cards        *store.Collection[core.Card]
	txs          *store.Collection[core.Transaction]
	alertPercent float64
	opts         Options
	notifier
	audit *log.StructuredLogger
}

func NewCardService(cardList *store.Collection[core.Card], txs *store.Collection[core.Transaction], alertPercent float64, logger *log.Logger, opts Options) *CardService {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentService)
	if alertPercent <= 0 {
		alertPercent = cards.DefaultAlertPercent
	}
	opts = opts.withDefaults()
	return &CardService{
		cards:        cardList,
		txs:          txs,
		alertPercent: alertPercent,
		opts:         opts,
		notifier:     notifier{events: opts.Events, logger: logger},
		audit:        log.NewStructuredLogger(logger),
	}
}

func (s *CardService) List(ctx context.Context) []core.Card {
	return s.cards.List(ctx)
}

func (s *CardService) Get(ctx context.Context, id string) (core.Card, error) {
	return s.cards.Get(ctx, id)
}

func (s *CardService) Revision(ctx context.Context) string { return s.cards.Revision(ctx) }

func (s *CardService) Create(ctx context.Context, in core.CardInput) (core.Card, error) {
	c := core.Card{
		ID:        s.opts.NewID("card"),
		UserID:    core.DefaultUserID,
		CreatedAt: s.opts.Clock().UTC(),
	}
	if err := in.Apply(&c); err != nil {
		return core.Card{}, err
	}
	if err := s.cards.Add(ctx, c); err != nil {
		return core.Card{}, fmt.Errorf("add card: %w", err)
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityCard, c.ID, log.OpCreate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityCard, amqp.ActionCreated, c.ID).WithCard(c.ID))
	return c, nil
}

func (s *CardService) Update(ctx context.Context, id string, in core.CardInput) (core.Card, error) {
	c, err := s.cards.Update(ctx, id, func(c core.Card) (core.Card, error) {
		err := in.Apply(&c)
		return c, err
	})
	if err != nil {
		return core.Card{}, err
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityCard, c.ID, log.OpUpdate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityCard, amqp.ActionUpdated, c.ID).WithCard(c.ID))
	return c, nil
}

// Delete removes the card. Transactions that reference it keep the id.
func (s *CardService) Delete(ctx context.Context, id string) error {
	removed, err := s.cards.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if removed {
		s.audit.LogEntityChanged(ctx, amqp.EntityCard, id, log.OpDelete)
		s.notify(ctx, amqp.NewEntityEvent(amqp.EntityCard, amqp.ActionDeleted, id))
	}
	return nil
}

// Usage computes the card's figures for the month of ref.
func (s *CardService) Usage(ctx context.Context, id string, ref core.Date) (cards.Usage, error) {
	c, err := s.cards.Get(ctx, id)
	if err != nil {
		return cards.Usage{}, err
	}
	return cards.Summarize(c, s.txs.List(ctx), ref, s.alertPercent), nil
}

// UsageAll computes usage for every card, in list order.
func (s *CardService) UsageAll(ctx context.Context, ref core.Date) []cards.Usage {
	txs := s.txs.List(ctx)
	list := s.cards.List(ctx)
	out := make([]cards.Usage, 0, len(list))
	for _, c := range list {
		out = append(out, cards.Summarize(c, txs, ref, s.alertPercent))
	}
	return out
}

// Transactions lists the expenses charged to the card, newest first.
func (s *CardService) Transactions(ctx context.Context, id string) ([]core.Transaction, error) {
	if _, err := s.cards.Get(ctx, id); err != nil {
		return nil, err
	}
	txs := ledger.ExpensesByCard(s.txs.List(ctx), id)
	return ledger.Recent(txs, len(txs)), nil
}
