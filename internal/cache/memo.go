package cache

import (
	"sync"
	"time"
)

// memo is a thread-safe read-through cache of parsed items keyed by
// item ID, so repeated Gets skip XML parsing. It tracks one timestamp
// for the whole map; once the TTL elapses every entry is stale.
type memo[K comparable, V any] struct {
	mu        sync.RWMutex
	data      map[K]V
	timestamp time.Time
	ttl       time.Duration
}

// newMemo returns an empty memo. The zero timestamp counts as expired,
// so the first get always misses.
func newMemo[K comparable, V any](ttl time.Duration) *memo[K, V] {
	return &memo[K, V]{
		data: make(map[K]V),
		ttl:  ttl,
	}
}

// get returns the memoized value for key, or ok=false on a miss or
// after expiry.
func (m *memo[K, V]) get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.expiredLocked() {
		var zero V
		return zero, false
	}
	value, ok := m.data[key]
	return value, ok
}

// set stores a value and restarts the TTL window. An expired map is
// dropped first so stale siblings do not come back to life.
func (m *memo[K, V]) set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expiredLocked() {
		m.data = make(map[K]V)
	}
	m.data[key] = value
	m.timestamp = time.Now()
}

// delete drops one entry without touching the TTL window.
func (m *memo[K, V]) delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// invalidate clears everything and resets the timestamp, forcing the
// memo to be expired until the next set.
func (m *memo[K, V]) invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[K]V)
	m.timestamp = time.Time{}
}

// len reports the entry count, expired or not.
func (m *memo[K, V]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// expiredLocked must be called with at least a read lock held.
func (m *memo[K, V]) expiredLocked() bool {
	return m.timestamp.IsZero() || time.Since(m.timestamp) >= m.ttl
}
