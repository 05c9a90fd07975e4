package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cppla/yatube/clock"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
	window   time.Duration
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.window
}

const (
	// DefaultMaxEntries bounds a MemoryBackend unless WithMaxEntries says otherwise.
	DefaultMaxEntries = 1000
	// DefaultSweepInterval is how often Set drops expired entries.
	DefaultSweepInterval = time.Minute
)

// MemoryBackend keeps entries in process memory. Expiry is judged against
// an injected clock: an entry is valid while now - storedAt < window.
//
// Expired entries are swept on Set at most once per sweep interval, and
// whenever the backend is full. If it is still full after the sweep, the
// oldest third is culled.
type MemoryBackend struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	clock      clock.Clock
	maxEntries int
	sweepEvery time.Duration
	lastSweep  time.Time
}

// MemoryOption configures a MemoryBackend.
type MemoryOption func(*MemoryBackend)

// WithMaxEntries caps the number of stored entries. n <= 0 keeps the default.
func WithMaxEntries(n int) MemoryOption {
	return func(m *MemoryBackend) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// WithSweepInterval sets how often Set drops expired entries.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(m *MemoryBackend) {
		if d > 0 {
			m.sweepEvery = d
		}
	}
}

// NewMemoryBackend creates an empty backend. A nil clock means the system clock.
func NewMemoryBackend(clk clock.Clock, opts ...MemoryOption) *MemoryBackend {
	if clk == nil {
		clk = clock.System{}
	}
	m := &MemoryBackend{
		entries:    map[string]memoryEntry{},
		clock:      clk,
		maxEntries: DefaultMaxEntries,
		sweepEvery: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastSweep = clk.Now()
	return m
}

// Get returns the live value for key.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(m.clock.Now()) {
		m.mu.Lock()
		// Only drop what we looked at; a concurrent Set may have replaced it.
		if cur, ok := m.entries[key]; ok && cur.storedAt.Equal(e.storedAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores value under key for window.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, window time.Duration) error {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	_, replacing := m.entries[key]
	full := !replacing && len(m.entries) >= m.maxEntries
	if full || now.Sub(m.lastSweep) >= m.sweepEvery {
		m.sweepLocked(now)
	}
	if !replacing && len(m.entries) >= m.maxEntries {
		m.cullLocked()
	}
	m.entries[key] = memoryEntry{value: value, storedAt: now, window: window}
	return nil
}

// sweepLocked drops every expired entry.
func (m *MemoryBackend) sweepLocked(now time.Time) {
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}
	m.lastSweep = now
}

// cullLocked drops the oldest third of the entries, at least one.
func (m *MemoryBackend) cullLocked() {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.entries[keys[i]].storedAt.Before(m.entries[keys[j]].storedAt)
	})
	n := len(keys) / 3
	if n == 0 {
		n = 1
	}
	for _, k := range keys[:n] {
		delete(m.entries, k)
	}
}

// Delete drops key.
func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeletePrefix drops every key starting with prefix.
func (m *MemoryBackend) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k := range m.entries {
		if hasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, live or not.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
