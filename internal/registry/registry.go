// Package registry tracks the charts currently drawn, keyed by container id.
package registry

import (
	"sync"

	"github.com/control-theory/plotdeck/internal/chart"
)

// DefaultMaxCharts is the default number of concurrently displayed charts
const DefaultMaxCharts = 4

// Entry is the last-applied state of one displayed chart
type Entry struct {
	Kind    chart.Kind
	Series  []chart.Series
	Layout  chart.Layout
	Options chart.Options
	// Generation increases every time the container is (re)created, so late
	// completions for an older chart can be recognised and dropped.
	Generation uint64
}

// Registry maps container ids to entries. Iteration follows insertion order;
// replacing an entry keeps its position. There is no eviction: entries live
// until removed.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
	max     int
}

// New creates a registry. max <= 0 means unlimited.
func New(max int) *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		max:     max,
	}
}

// Max returns the configured chart limit (0 when unlimited)
func (r *Registry) Max() int {
	if r.max < 0 {
		return 0
	}
	return r.max
}

// HasRoom reports whether id can be stored without exceeding the limit.
// Replacing an existing id always has room.
func (r *Registry) HasRoom(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.entries[id]; ok || r.max <= 0 {
		return true
	}
	return len(r.entries) < r.max
}

// Put stores or replaces the entry for id
func (r *Registry) Put(id string, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		r.order = append(r.order, id)
	}
	r.entries[id] = e
}

// Get returns the entry for id
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Update applies fn to the entry for id if it exists and still has the given
// generation. It reports whether fn ran.
func (r *Registry) Update(id string, generation uint64, fn func(*Entry)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Generation != generation {
		return false
	}
	fn(&e)
	r.entries[id] = e
	return true
}

// Remove deletes the entry for id and reports whether it existed
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(id)
}

// RemoveIf deletes the entry for id only if it has the given generation
func (r *Registry) RemoveIf(id string, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Generation != generation {
		return false
	}
	return r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Count returns the number of registered charts
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// IDs returns the registered ids in insertion order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Item is one element of a Snapshot
type Item struct {
	ID    string
	Entry Entry
}

// Snapshot copies the current entries in insertion order
func (r *Registry) Snapshot() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		items = append(items, Item{ID: id, Entry: r.entries[id]})
	}
	return items
}

// ForEach calls fn for every entry of a snapshot taken before the first
// call, so fn may add or remove entries.
func (r *Registry) ForEach(fn func(id string, e Entry)) {
	for _, it := range r.Snapshot() {
		fn(it.ID, it.Entry)
	}
}
