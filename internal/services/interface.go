// Package services wires the entity collections to the aggregation layer.
// Each service owns one collection, validates inputs at the boundary and
// announces committed changes to a Publisher.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"controlly/internal/amqp"
)

// Publisher receives an event after each committed mutation.
//
//go:generate mockgen -destination=mocks/mock_publisher.go -package=mock_services -source=interface.go Publisher
type Publisher interface {
	Publish(ctx context.Context, ev *amqp.EntityEvent) error
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Options carries the collaborators shared by every service.
type Options struct {
	Events Publisher
	Clock  Clock
	NewID  func(prefix string) string
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.NewID == nil {
		o.NewID = NewID
	}
	return o
}

// NewID returns "<prefix>_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
