package namecache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	name     string
	storedAt time.Time
}

// Memory is an in-process Cache. Expiry is checked on read; Sweep removes
// expired entries so the map does not grow with dead conversations.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an in-memory cache. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]entry{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !m.valid(e, m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.name, true, nil
}

func (m *Memory) Set(_ context.Context, key, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{name: name, storedAt: m.now()}
	return nil
}

// Sweep deletes expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if !m.valid(e, now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) valid(e entry, now time.Time) bool {
	return now.Sub(e.storedAt) < m.ttl
}
