package services

import (
	"context"
	"errors"
	"time"

	"controlly/internal/amqp"
	"controlly/internal/log"
)

// Fanout publishes each event to every target. One target failing does not
// stop the others; the errors are joined.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev *amqp.EntityEvent) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// eventTimeout bounds how long a mutation waits on event delivery.
const eventTimeout = 10 * time.Second

// notifier logs publish failures instead of returning them: a change that
// reached the store is never rolled back because an event was lost.
type notifier struct {
	events Publisher
	logger *log.Logger
}

func (n notifier) notify(ctx context.Context, ev *amqp.EntityEvent) {
	if n.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()
	if err := n.events.Publish(ctx, ev); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish entity event",
			log.FieldEntity, ev.Entity,
			log.FieldEntityID, ev.ID,
			"action", ev.Action,
			log.FieldError, err)
	}
}
