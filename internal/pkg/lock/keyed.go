// Package lock provides in-process mutual exclusion keyed by an arbitrary
// string identity. It is the unit of atomicity for order state transitions:
// all work on one order serializes behind its key while different keys
// proceed fully in parallel.
package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// KeyedMutex is a map of single-permit semaphores, one per key.
// Entries are reference counted and removed once the last holder or
// waiter for a key is gone, so the map does not grow with key churn.
//
// Acquisition is context-aware: a caller-supplied deadline or cancellation
// aborts the wait instead of blocking forever.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*lockEntry),
	}
}

// Lock acquires exclusive ownership of key, blocking until the key is free
// or ctx is done. On success it returns the release function; the caller
// must invoke it on every exit path, typically via defer.
//
// On context cancellation or deadline the wait is abandoned and ctx.Err()
// is returned; the key is left untouched for other waiters.
func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	entry := m.retain(key)

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		m.release(key)
		return nil, err
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			entry.sem.Release(1)
			m.release(key)
		})
	}
	return unlock, nil
}

func (m *KeyedMutex) retain(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		m.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (m *KeyedMutex) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(m.entries, key)
	}
}
