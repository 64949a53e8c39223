package services

import (
	"context"
	"fmt"

	"controlly/internal/amqp"
	"controlly/internal/core"
	"controlly/internal/ledger"
	"controlly/internal/log"
	"controlly/internal/store"
)

type TransactionService struct {
	txs   *store.Collection[core.Transaction]
	cards *store.Collection[core.Card]
	opts  Options
	notifier
	audit *log.StructuredLogger
}

func NewTransactionService(txs *store.Collection[core.Transaction], cards *store.Collection[core.Card], logger *log.Logger, opts Options) *TransactionService {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentService)
	opts = opts.withDefaults()
	return &TransactionService{
		txs:      txs,
		cards:    cards,
		opts:     opts,
		notifier: notifier{events: opts.Events, logger: logger},
		audit:    log.NewStructuredLogger(logger),
	}
}

func (s *TransactionService) List(ctx context.Context) []core.Transaction {
	return s.txs.List(ctx)
}

// ListByPeriod returns the transactions dated within [start, end].
func (s *TransactionService) ListByPeriod(ctx context.Context, start, end core.Date) []core.Transaction {
	return ledger.ByPeriod(s.txs.List(ctx), start, end)
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.txs.Get(ctx, id)
}

// Revision changes whenever the stored transaction list changes.
func (s *TransactionService) Revision(ctx context.Context) string { return s.txs.Revision(ctx) }

// checkCard enforces that a referenced card exists and that instalments are
// only used on credit cards.
func (s *TransactionService) checkCard(ctx context.Context, t core.Transaction) error {
	if t.CardID == "" {
		if t.PurchaseType != core.PurchaseNone {
			return core.Invalid("purchaseType", core.ErrInvalidPurchaseType)
		}
		return nil
	}
	if s.cards == nil {
		return nil
	}
	card, err := s.cards.Get(ctx, t.CardID)
	if err != nil {
		return core.Invalid("cardId", core.ErrUnknownCard)
	}
	if t.PurchaseType == core.PurchaseParcelado && card.Type != core.Credit {
		return core.Invalid("purchaseType", core.ErrInvalidPurchaseType)
	}
	return nil
}

func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		ID:        s.opts.NewID("trans"),
		UserID:    core.DefaultUserID,
		CreatedAt: s.opts.Clock().UTC(),
	}
	if err := in.Apply(&t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCard(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	if err := s.txs.Add(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityTransaction, t.ID, log.OpCreate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityTransaction, amqp.ActionCreated, t.ID).WithCard(t.CardID))
	return t, nil
}

// Update replaces every non-identity field of the transaction.
func (s *TransactionService) Update(ctx context.Context, id string, in core.TransactionInput) (core.Transaction, error) {
	var previousCard string
	t, err := s.txs.Update(ctx, id, func(t core.Transaction) (core.Transaction, error) {
		previousCard = t.CardID
		if err := in.Apply(&t); err != nil {
			return t, err
		}
		return t, s.checkCard(ctx, t)
	})
	if err != nil {
		return core.Transaction{}, err
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityTransaction, t.ID, log.OpUpdate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityTransaction, amqp.ActionUpdated, t.ID).WithCard(t.CardID))
	if previousCard != "" && previousCard != t.CardID {
		s.notify(ctx, amqp.NewEntityEvent(amqp.EntityTransaction, amqp.ActionUpdated, t.ID).WithCard(previousCard))
	}
	return t, nil
}

// Delete removes the transaction. Deleting an unknown id succeeds.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	existing, getErr := s.txs.Get(ctx, id)
	removed, err := s.txs.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if !removed {
		return nil
	}
	ev := amqp.NewEntityEvent(amqp.EntityTransaction, amqp.ActionDeleted, id)
	if getErr == nil {
		ev.WithCard(existing.CardID)
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityTransaction, id, log.OpDelete)
	s.notify(ctx, ev)
	return nil
}

// ByCard lists the transactions charged to cardID.
func (s *TransactionService) ByCard(ctx context.Context, cardID string) []core.Transaction {
	return ledger.ByCard(s.txs.List(ctx), cardID)
}
