package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when the lock could not be obtained within the
// acquisition timeout.
var ErrNotAcquired = errors.New("lock not acquired")

// EntityLocker serializes mutating operations per entity key. Acquire blocks
// up to timeout and returns a release function that must be called on every
// exit path.
type EntityLocker interface {
	Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error)
}

// KeyedMutex is an in-process arena of channel-based mutexes keyed by entity
// identity. Unrelated keys never contend; idle entries are removed once the
// last holder releases.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*mutexEntry
}

type mutexEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*mutexEntry)}
}

func (m *KeyedMutex) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), error) {
	entry := m.ref(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case entry.ch <- struct{}{}:
		return func() {
			<-entry.ch
			m.unref(key, entry)
		}, nil
	case <-timer.C:
		m.unref(key, entry)
		return nil, ErrNotAcquired
	case <-ctx.Done():
		m.unref(key, entry)
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) ref(key string) *mutexEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &mutexEntry{ch: make(chan struct{}, 1)}
		m.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (m *KeyedMutex) unref(key string, entry *mutexEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(m.entries, key)
	}
}
