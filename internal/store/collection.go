// Package store binds an ordered in-memory list of entities to one durable
// slot. Every mutation reads the current list, computes the new one and
// writes the whole list back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"controlly/internal/core"
	"controlly/internal/log"
	"controlly/internal/storage"
)

// Slot keys, one per entity kind.
const (
	TransactionsKey = "controlly_transactions"
	CardsKey        = "controlly_cards"
	GoalsKey        = "controlly_goals"
)

// Entity is anything with a stable id inside its list.
type Entity interface {
	EntityID() string
}

// Collection is the list of one entity kind. The mutex makes each
// read-modify-write cycle exclusive, so there is at most one writer per slot.
type Collection[T Entity] struct {
	mu      sync.Mutex
	slot    storage.Slot
	key     string
	logger  *log.Logger
	version uint64
}

func NewCollection[T Entity](slot storage.Slot, key string, logger *log.Logger) *Collection[T] {
	if logger == nil {
		logger = log.Nop()
	}
	return &Collection[T]{
		slot:   slot,
		key:    key,
		logger: logger.WithComponent(log.ComponentStore),
	}
}

// Key returns the slot key this collection is bound to.
func (c *Collection[T]) Key() string { return c.key }

// read decodes the slot. An absent or malformed payload is an empty list;
// any other backend failure is returned.
func (c *Collection[T]) read(ctx context.Context) ([]T, error) {
	data, err := c.slot.Load(ctx, c.key)
	if errors.Is(err, storage.ErrSlotEmpty) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.WarnContext(ctx, "Slot payload malformed, using empty list",
			log.FieldSlotKey, c.key, log.FieldError, err)
		return []T{}, nil
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// load is read for callers that only look: a backend failure degrades to
// an empty list.
func (c *Collection[T]) load(ctx context.Context) []T {
	items, err := c.read(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Slot unreadable, using empty list",
			log.FieldSlotKey, c.key, log.FieldError, err)
		return []T{}
	}
	return items
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.slot.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	c.version++
	c.logger.DebugContext(ctx, "Slot written", log.FieldSlotKey, c.key, log.FieldCount, len(items))
	return nil
}

// List returns the current snapshot in insertion order.
func (c *Collection[T]) List(ctx context.Context) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Get returns the entity with id or core.ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.load(ctx) {
		if item.EntityID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%s %s: %w", c.key, id, core.ErrNotFound)
}

// Replace overwrites the whole list.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, append([]T(nil), items...))
}

// Add appends item to the end of the list. Mutators never write when the
// slot cannot be read, so a backend hiccup cannot replace stored records.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.read(ctx)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if existing.EntityID() == item.EntityID() {
			return fmt.Errorf("%s: duplicate id %s", c.key, item.EntityID())
		}
	}
	return c.save(ctx, append(items, item))
}

// Update replaces the entity with id by fn's result, keeping its position.
// fn may reject the change by returning an error; the list is then left as is.
// A missing id returns core.ErrNotFound without writing.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	items, err := c.read(ctx)
	if err != nil {
		return zero, err
	}
	for i, item := range items {
		if item.EntityID() != id {
			continue
		}
		next, err := fn(item)
		if err != nil {
			return zero, err
		}
		items[i] = next
		if err := c.save(ctx, items); err != nil {
			return zero, err
		}
		return next, nil
	}
	return zero, fmt.Errorf("%s %s: %w", c.key, id, core.ErrNotFound)
}

// Delete removes the entity with id. Deleting a missing id is a no-op and
// reports whether anything was removed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.read(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.EntityID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if err := c.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Version counts successful writes made through this collection.
func (c *Collection[T]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Revision identifies the slot's current contents, including writes made by
// other processes sharing the backend. An unreadable slot yields a value
// that never matches a readable one.
func (c *Collection[T]) Revision(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := c.slot.Load(ctx, c.key)
	switch {
	case errors.Is(err, storage.ErrSlotEmpty):
		return "empty"
	case err != nil:
		return fmt.Sprintf("unreadable.%d", c.version)
	}
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum64())
}
