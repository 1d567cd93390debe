package layout

import (
	"reflect"

	loom "github.com/loomui/loom"
	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/constraint"
)

// entry is one cached measurement, keyed by node identity. The merged
// constraint it was computed under forms the second half of the logical
// key: a lookup whose merged constraint differs is a miss.
type entry struct {
	incoming constraint.Constraint // parent's resolved constraint last seen
	merged   constraint.Constraint // constraint the size was computed under
	size     loom.Size
	origins  []loom.Point // child placements, restored on hit
	specType reflect.Type // guards against type-confused reuse
}

// Cache persists measurements across frames.
type Cache struct {
	entries map[arena.NodeIdentity]*entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[arena.NodeIdentity]*entry, 64)}
}

// Len returns the number of cached measurements.
func (c *Cache) Len() int { return len(c.entries) }

// lookup returns the entry for id, treating a stored spec type that does
// not match the spec registered this frame as "no entry". The stale entry
// is evicted so the remeasure can overwrite it cleanly.
func (c *Cache) lookup(id arena.NodeIdentity, specType reflect.Type) (*entry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if e.specType != specType {
		delete(c.entries, id)
		return nil, false
	}
	return e, true
}

// Evict drops entries for nodes torn down by the arena sweep.
func (c *Cache) Evict(ids []arena.NodeIdentity) {
	for _, id := range ids {
		delete(c.entries, id)
	}
}

// store writes back a finished measurement.
func (c *Cache) store(id arena.NodeIdentity, e *entry) {
	c.entries[id] = e
}
