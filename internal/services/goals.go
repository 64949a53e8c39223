package services

import (
	"context"
	"errors"
	"fmt"

	"controlly/internal/amqp"
	"controlly/internal/core"
	"controlly/internal/goals"
	"controlly/internal/log"
	"controlly/internal/store"
)

// ErrOvershootNotConfirmed is returned when a contribution would pass the
// goal's target and the caller did not confirm it.
var ErrOvershootNotConfirmed = errors.New("amount exceeds the goal target; confirm to continue")

// OvershootError carries the details the caller needs to ask for confirmation.
type OvershootError struct {
	goals.Overshoot
}

func (e *OvershootError) Error() string {
	if e.AlreadyComplete {
		return "goal is already complete; confirm to continue"
	}
	return fmt.Sprintf("amount exceeds the goal target (max %s); confirm to continue", e.MaxAllowed)
}

func (e *OvershootError) Unwrap() error { return ErrOvershootNotConfirmed }

// GoalView is a goal together with its derived figures.
type GoalView struct {
	core.Goal
	Progress      goals.Progress `json:"progress"`
	DaysRemaining int            `json:"daysRemaining"`
}

type GoalService struct {
	goals *store.Collection[core.Goal]
	opts  Options
	notifier
	audit *log.StructuredLogger
}

func NewGoalService(list *store.Collection[core.Goal], logger *log.Logger, opts Options) *GoalService {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentService)
	opts = opts.withDefaults()
	return &GoalService{
		goals:    list,
		opts:     opts,
		notifier: notifier{events: opts.Events, logger: logger},
		audit:    log.NewStructuredLogger(logger),
	}
}

func (s *GoalService) today() core.Date {
	return core.DateOf(s.opts.Clock())
}

// View attaches progress figures to g.
func (s *GoalService) View(g core.Goal) GoalView {
	return GoalView{
		Goal:          g,
		Progress:      goals.Compute(g),
		DaysRemaining: goals.DaysRemaining(g, s.opts.Clock()),
	}
}

func (s *GoalService) List(ctx context.Context) []core.Goal {
	return s.goals.List(ctx)
}

func (s *GoalService) Get(ctx context.Context, id string) (core.Goal, error) {
	return s.goals.Get(ctx, id)
}

func (s *GoalService) Revision(ctx context.Context) string { return s.goals.Revision(ctx) }

func (s *GoalService) Create(ctx context.Context, in core.GoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:        s.opts.NewID("goal"),
		UserID:    core.DefaultUserID,
		CreatedAt: s.opts.Clock().UTC(),
	}
	if err := in.Apply(&g, s.today()); err != nil {
		return core.Goal{}, err
	}
	if err := s.goals.Add(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("add goal: %w", err)
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityGoal, g.ID, log.OpCreate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityGoal, amqp.ActionCreated, g.ID))
	return g, nil
}

// Update replaces the goal's descriptive fields; progress is kept.
func (s *GoalService) Update(ctx context.Context, id string, in core.GoalInput) (core.Goal, error) {
	today := s.today()
	g, err := s.goals.Update(ctx, id, func(g core.Goal) (core.Goal, error) {
		err := in.Apply(&g, today)
		return g, err
	})
	if err != nil {
		return core.Goal{}, err
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityGoal, g.ID, log.OpUpdate)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityGoal, amqp.ActionUpdated, g.ID))
	return g, nil
}

func (s *GoalService) Delete(ctx context.Context, id string) error {
	removed, err := s.goals.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if removed {
		s.audit.LogEntityChanged(ctx, amqp.EntityGoal, id, log.OpDelete)
		s.notify(ctx, amqp.NewEntityEvent(amqp.EntityGoal, amqp.ActionDeleted, id))
	}
	return nil
}

// AddProgress adds amount to the goal. Passing the target needs confirm;
// without it an *OvershootError is returned and nothing is written.
func (s *GoalService) AddProgress(ctx context.Context, id string, amount core.Money, confirm bool) (core.Goal, error) {
	g, err := s.goals.Update(ctx, id, func(g core.Goal) (core.Goal, error) {
		if err := amount.Validate(); err != nil {
			return g, core.Invalid("amount", err)
		}
		if o := goals.CheckOvershoot(g, amount); o.Exceeds && !confirm {
			return g, &OvershootError{Overshoot: o}
		}
		return goals.AddProgress(g, amount)
	})
	if err != nil {
		return core.Goal{}, err
	}
	s.audit.LogEntityChanged(ctx, amqp.EntityGoal, g.ID, log.OpProgress)
	s.notify(ctx, amqp.NewEntityEvent(amqp.EntityGoal, amqp.ActionProgress, g.ID))
	return g, nil
}

// Progress returns the goal with its derived figures.
func (s *GoalService) Progress(ctx context.Context, id string) (GoalView, error) {
	g, err := s.goals.Get(ctx, id)
	if err != nil {
		return GoalView{}, err
	}
	return s.View(g), nil
}
