package csync

import (
	"sync"
)

// Recent is a bounded set that evicts its oldest member when full.
type Recent[K comparable] struct {
	mu      sync.Mutex
	members map[K]struct{}
	order   []K // ring buffer, next slot at head
	head    int
}

// NewRecent creates a set holding at most capacity keys (minimum 1).
func NewRecent[K comparable](capacity int) *Recent[K] {
	if capacity < 1 {
		capacity = 1
	}
	return &Recent[K]{
		members: make(map[K]struct{}, capacity),
		order:   make([]K, 0, capacity),
	}
}

// Add records key. Re-adding a present key does not refresh its age.
func (r *Recent[K]) Add(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[key]; ok {
		return
	}

	if len(r.order) < cap(r.order) {
		r.order = append(r.order, key)
	} else {
		delete(r.members, r.order[r.head])
		r.order[r.head] = key
		r.head = (r.head + 1) % len(r.order)
	}
	r.members[key] = struct{}{}
}

// Has reports whether key is still remembered.
func (r *Recent[K]) Has(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[key]
	return ok
}

// Len returns how many keys are remembered.
func (r *Recent[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}
