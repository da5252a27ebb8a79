package repository

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps a bounded history per key in process memory. It is
// safe for concurrent use. Each key holds at most perKey items, oldest dropped
// first; keys not written for ttl are evicted.
type InMemoryRepository[T any] struct {
	mu        sync.Mutex
	perKey    int
	ttl       time.Duration
	now       func() time.Time
	data      map[string]*history[T]
	lastSweep time.Time
}

type history[T any] struct {
	items   []T
	touched time.Time
}

// NewInMemoryRepository creates a new in-memory repository. perKey <= 0 keeps
// every item; ttl <= 0 never evicts.
func NewInMemoryRepository[T any](perKey int, ttl time.Duration) *InMemoryRepository[T] {
	return &InMemoryRepository[T]{
		perKey: perKey,
		ttl:    ttl,
		now:    time.Now,
		data:   make(map[string]*history[T]),
	}
}

// Append adds an item to the end of key's history.
func (r *InMemoryRepository[T]) Append(ctx context.Context, key string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	h, ok := r.data[key]
	if !ok {
		h = &history[T]{}
		r.data[key] = h
	}
	h.items = append(h.items, item)
	if r.perKey > 0 && len(h.items) > r.perKey {
		h.items = append(h.items[:0:0], h.items[len(h.items)-r.perKey:]...)
	}
	h.touched = now
}

// List returns a copy of key's history, oldest first.
func (r *InMemoryRepository[T]) List(ctx context.Context, key string) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.data[key]
	if !ok || r.expired(h, r.now()) {
		return nil
	}
	items := make([]T, len(h.items))
	copy(items, h.items)
	return items
}

// Keys returns the number of live keys.
func (r *InMemoryRepository[T]) Keys() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked(r.now())
	return len(r.data)
}

func (r *InMemoryRepository[T]) expired(h *history[T], now time.Time) bool {
	return r.ttl > 0 && now.Sub(h.touched) > r.ttl
}

func (r *InMemoryRepository[T]) sweepLocked(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl/2 {
		return
	}
	r.lastSweep = now
	for key, h := range r.data {
		if r.expired(h, now) {
			delete(r.data, key)
		}
	}
}
