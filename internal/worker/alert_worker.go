// Package worker reacts to entity change events outside the request path:
// it recomputes card usage after spending and notices completed goals.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"controlly/internal/amqp"
	"controlly/internal/cards"
	"controlly/internal/core"
	"controlly/internal/log"
	"controlly/internal/services"
)

// Stats counts what the worker has seen and raised.
type Stats struct {
	EventsHandled    int64
	NearLimitAlerts  int64
	GoalsCompleted   int64
	SweepsCompleted  int64
	SkippedUnknownID int64
}

// AlertWorker raises near-limit warnings for cards and completion notices for
// goals. Each card alerts at most once per calendar month and each goal once.
type AlertWorker struct {
	cards  *services.CardService
	goals  *services.GoalService
	clock  func() time.Time
	logger *log.Logger

	mu        sync.Mutex
	alerted   map[string]string // card id -> "YYYY-MM" of the last alert
	completed map[string]bool

	handled   int64
	nearLimit int64
	finished  int64
	sweeps    int64
	skipped   int64
}

func NewAlertWorker(cardSvc *services.CardService, goalSvc *services.GoalService, logger *log.Logger, clock func() time.Time) *AlertWorker {
	if logger == nil {
		logger = log.Nop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &AlertWorker{
		cards:     cardSvc,
		goals:     goalSvc,
		clock:     clock,
		logger:    logger.WithComponent(log.ComponentWorker),
		alerted:   make(map[string]string),
		completed: make(map[string]bool),
	}
}

// HandleEvent processes one entity event from AMQP. An event about an entity
// that no longer exists is acknowledged and skipped.
func (w *AlertWorker) HandleEvent(ctx context.Context, ev *amqp.EntityEvent) error {
	atomic.AddInt64(&w.handled, 1)
	w.logger.DebugContext(ctx, "Processing entity event",
		log.FieldEntity, ev.Entity,
		log.FieldEntityID, ev.ID,
		"action", ev.Action)

	var err error
	switch ev.Entity {
	case amqp.EntityTransaction:
		if ev.CardID != "" {
			err = w.checkCard(ctx, ev.CardID)
		}
	case amqp.EntityCard:
		if ev.Action == amqp.ActionDeleted {
			w.forgetCard(ev.ID)
			return nil
		}
		err = w.checkCard(ctx, ev.ID)
	case amqp.EntityGoal:
		if ev.Action == amqp.ActionDeleted {
			w.forgetGoal(ev.ID)
			return nil
		}
		err = w.checkGoal(ctx, ev.ID)
	default:
		w.logger.WarnContext(ctx, "Ignoring event for unknown entity", log.FieldEntity, ev.Entity)
		return nil
	}

	if errors.Is(err, core.ErrNotFound) {
		atomic.AddInt64(&w.skipped, 1)
		w.logger.DebugContext(ctx, "Entity gone before event was handled",
			log.FieldEntity, ev.Entity, log.FieldEntityID, ev.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("handle %s %s: %w", ev.Entity, ev.Action, err)
	}
	return nil
}

func (w *AlertWorker) checkCard(ctx context.Context, cardID string) error {
	ref := core.DateOf(w.clock())
	usage, err := w.cards.Usage(ctx, cardID, ref)
	if err != nil {
		return err
	}
	w.alertIfNearLimit(ctx, usage, ref)
	return nil
}

func (w *AlertWorker) alertIfNearLimit(ctx context.Context, usage cards.Usage, ref core.Date) bool {
	if !usage.NearLimit {
		return false
	}
	month := ref.Format("2006-01")

	w.mu.Lock()
	if w.alerted[usage.CardID] == month {
		w.mu.Unlock()
		return false
	}
	w.alerted[usage.CardID] = month
	w.mu.Unlock()

	atomic.AddInt64(&w.nearLimit, 1)
	args := []any{
		log.FieldCardID, usage.CardID,
		log.FieldAmountCents, usage.MonthlySpend.Cents,
	}
	if usage.Utilization != nil {
		args = append(args, log.FieldUtilization, *usage.Utilization)
	}
	if usage.Available != nil {
		args = append(args, "available_cents", usage.Available.Cents)
	}
	w.logger.WarnContext(ctx, "Card is near its limit", args...)
	return true
}

func (w *AlertWorker) checkGoal(ctx context.Context, goalID string) error {
	view, err := w.goals.Progress(ctx, goalID)
	if err != nil {
		return err
	}
	w.noteCompletion(ctx, view)
	return nil
}

// noteCompletion logs a completed goal the first time it is seen and
// reports whether it did.
func (w *AlertWorker) noteCompletion(ctx context.Context, view services.GoalView) bool {
	if !view.Completed {
		return false
	}

	w.mu.Lock()
	seen := w.completed[view.ID]
	w.completed[view.ID] = true
	w.mu.Unlock()
	if seen {
		return false
	}

	atomic.AddInt64(&w.finished, 1)
	w.logger.InfoContext(ctx, "Goal completed",
		log.FieldGoalID, view.ID,
		"title", view.Title,
		log.FieldAmountCents, view.CurrentAmount.Cents,
		"percentage", view.Progress.Percentage)
	return true
}

func (w *AlertWorker) forgetCard(id string) {
	w.mu.Lock()
	delete(w.alerted, id)
	w.mu.Unlock()
}

func (w *AlertWorker) forgetGoal(id string) {
	w.mu.Lock()
	delete(w.completed, id)
	w.mu.Unlock()
}

// Sweep recomputes usage for every card and progress for every goal. It
// backs up the event path when messages are lost or no broker is
// configured. It returns the alerts and completion notices raised.
func (w *AlertWorker) Sweep(ctx context.Context) int {
	ref := core.DateOf(w.clock())
	raised := 0
	for _, usage := range w.cards.UsageAll(ctx, ref) {
		if w.alertIfNearLimit(ctx, usage, ref) {
			raised++
		}
	}
	for _, g := range w.goals.List(ctx) {
		if w.noteCompletion(ctx, w.goals.View(g)) {
			raised++
		}
	}
	atomic.AddInt64(&w.sweeps, 1)
	w.logger.DebugContext(ctx, "Sweep completed", "raised", raised)
	return raised
}

// Run sweeps once at startup and then every interval until ctx is done.
func (w *AlertWorker) Run(ctx context.Context, interval time.Duration) error {
	w.logger.InfoContext(ctx, "Performing startup sweep...")
	w.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		EventsHandled:    atomic.LoadInt64(&w.handled),
		NearLimitAlerts:  atomic.LoadInt64(&w.nearLimit),
		GoalsCompleted:   atomic.LoadInt64(&w.finished),
		SweepsCompleted:  atomic.LoadInt64(&w.sweeps),
		SkippedUnknownID: atomic.LoadInt64(&w.skipped),
	}
}
