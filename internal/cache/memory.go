package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	tags    []string
	expires time.Time
}

// Memory is an in-process Cache. Values are stored JSON-encoded so callers
// never share memory with the cache.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
	byTag   map[string]map[string]struct{}
	gens    map[string]uint64
}

// NewMemory returns an empty cache. A ttl of zero keeps entries until invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
		byTag:   make(map[string]map[string]struct{}),
		gens:    make(map[string]uint64),
	}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		m.removeLocked(key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(entry.data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %q: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, tags ...string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, data, tags)
	return nil
}

func (m *Memory) SetIfCurrent(_ context.Context, version uint64, key string, value any, tags ...string) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode cache entry %q: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versionLocked(tags) != version {
		return false, nil
	}
	m.setLocked(key, data, tags)
	return true, nil
}

func (m *Memory) Version(_ context.Context, tags ...string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versionLocked(tags), nil
}

// versionLocked sums the generations of tags. Generations only grow, so the
// sum moves whenever one of them does.
func (m *Memory) versionLocked(tags []string) uint64 {
	var v uint64
	for _, tag := range tags {
		v += m.gens[tag]
	}
	return v
}

func (m *Memory) setLocked(key string, data []byte, tags []string) {
	m.removeLocked(key)
	entry := memoryEntry{data: data, tags: append([]string(nil), tags...)}
	if m.ttl > 0 {
		entry.expires = m.now().Add(m.ttl)
	}
	m.entries[key] = entry
	for _, tag := range tags {
		keys, ok := m.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			m.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
}

func (m *Memory) Invalidate(_ context.Context, tags ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range tags {
		m.gens[tag]++
		for key := range m.byTag[tag] {
			m.removeLocked(key)
		}
		delete(m.byTag, tag)
	}
	return nil
}

func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) removeLocked(key string) {
	entry, ok := m.entries[key]
	if !ok {
		return
	}
	delete(m.entries, key)
	for _, tag := range entry.tags {
		if keys, ok := m.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(m.byTag, tag)
			}
		}
	}
}
