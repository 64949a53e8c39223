// Package storage holds the durable slot backends. A slot is a named key
// whose value is one entity kind's full serialized list.
package storage

import (
	"context"
	"errors"
)

// ErrSlotEmpty is returned by Load when nothing was ever saved under the key.
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a durable key-value backend. Save replaces the whole payload; a
// reader never observes a partial write.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Ping reads key to check the backend answers. An empty slot is healthy.
func Ping(ctx context.Context, s Slot, key string) error {
	_, err := s.Load(ctx, key)
	if errors.Is(err, ErrSlotEmpty) {
		return nil
	}
	return err
}
