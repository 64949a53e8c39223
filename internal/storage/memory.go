package storage

import (
	"context"
	"sync"
)

// MemorySlot keeps payloads in process memory. Used by tests and the
// "memory" backend; contents are lost on exit.
type MemorySlot struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{items: make(map[string][]byte)}
}

func (s *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	if !ok {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), v...), nil
}

func (s *MemorySlot) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = append([]byte(nil), payload...)
	return nil
}

func (s *MemorySlot) Close() error { return nil }
