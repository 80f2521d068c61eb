package csync

import (
	"sort"
	"sync"
)

// Map guards a plain map with a RWMutex. Reads (handler lookups on every
// request) vastly outnumber writes (registration at startup).
type Map[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// Set stores value under key, replacing any previous value.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

// Get returns the value for key and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

// SortedKeys returns the keys of a string-keyed map in ascending order.
func SortedKeys[V any](m *Map[string, V]) []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	return keys
}
