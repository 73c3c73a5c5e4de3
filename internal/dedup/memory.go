package dedup

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process TTL set.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[string]time.Time
}

// NewMemory creates an in-memory store. A nil now uses time.Now.
func NewMemory(ttl time.Duration, now func() time.Time) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{ttl: ttl, now: now, expires: map[string]time.Time{}}
}

func (m *Memory) MarkSeen(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.expires[id]; ok && now.Before(exp) {
		return false, nil
	}
	m.expires[id] = now.Add(m.ttl)
	return true, nil
}

func (m *Memory) Forget(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, id)
	return nil
}

// Sweep removes expired ids and returns how many were dropped.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, exp := range m.expires {
		if !now.Before(exp) {
			delete(m.expires, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of remembered ids.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.expires)
}
