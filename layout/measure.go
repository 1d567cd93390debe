package layout

import (
	"reflect"
	"time"

	loom "github.com/loomui/loom"
	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/constraint"
	"github.com/loomui/loom/profile"
)

// Measurer drives one frame's measure pass over the persistent cache,
// classifying every lookup and keeping per-node diagnostics.
type Measurer struct {
	cache   *Cache
	stats   *profile.FrameStats
	classes map[arena.NodeIdentity]profile.Classification
	elapsed map[arena.NodeIdentity]time.Duration
}

// NewMeasurer binds a frame's stats to the persistent cache.
func NewMeasurer(cache *Cache, stats *profile.FrameStats) *Measurer {
	return &Measurer{
		cache:   cache,
		stats:   stats,
		classes: make(map[arena.NodeIdentity]profile.Classification, 64),
		elapsed: make(map[arena.NodeIdentity]time.Duration, 64),
	}
}

// Class returns the classification recorded for a node this frame.
func (m *Measurer) Class(id arena.NodeIdentity) (profile.Classification, bool) {
	c, ok := m.classes[id]
	return c, ok
}

// Elapsed returns the measure time recorded for a node this frame,
// inclusive of its children.
func (m *Measurer) Elapsed(id arena.NodeIdentity) time.Duration {
	return m.elapsed[id]
}

// Measure resolves node's size under the parent's resolved constraint,
// consulting the cache. Exactly one classification is recorded per call.
func (m *Measurer) Measure(node *arena.ComponentNode, incoming constraint.Constraint) (loom.Size, error) {
	start := time.Now()
	size, err := m.measure(node, incoming)
	m.elapsed[node.Identity] = time.Since(start)
	return size, err
}

func (m *Measurer) measure(node *arena.ComponentNode, incoming constraint.Constraint) (loom.Size, error) {
	spec := node.Layout
	if spec == nil {
		spec = passthrough{}
	}
	merged := constraint.Merge(spec.Declared(), incoming)
	id := node.Identity

	if !spec.Cacheable() {
		m.classify(id, profile.NonCacheable)
		size, err := m.runSpec(node, spec, merged)
		if err != nil {
			return loom.Size{}, err
		}
		// Never stored: the next lookup must measure again.
		delete(m.cache.entries, id)
		node.Size = size
		return size, nil
	}

	e, ok := m.cache.lookup(id, reflect.TypeOf(spec))

	switch {
	case !ok:
		return m.remeasure(node, spec, incoming, merged, profile.MissNoEntry)
	case node.Dirt.Has(arena.DirtStructure):
		return m.remeasure(node, spec, incoming, merged, profile.MissDirtyStructure)
	case node.Dirt.Has(arena.DirtParams):
		return m.remeasure(node, spec, incoming, merged, profile.MissDirtyParams)
	case node.Dirt.Has(arena.DirtAncestor):
		return m.remeasure(node, spec, incoming, merged, profile.MissDirtyAncestor)
	case e.merged != merged:
		return m.remeasure(node, spec, incoming, merged, profile.MissConstraint)
	case node.DescendantDirty:
		// Something beneath changed: the subtree must be walked, but this
		// node's own result may still hold if the aggregate size does.
		size, err := m.runSpec(node, spec, merged)
		if err != nil {
			return loom.Size{}, err
		}
		if size != e.size {
			m.classify(id, profile.MissChildSize)
		} else if incoming != e.incoming {
			m.classify(id, profile.HitBoundary)
		} else {
			m.classify(id, profile.HitDirect)
		}
		m.storeResult(node, incoming, merged, spec, size)
		node.Size = size
		return size, nil
	default:
		// Reusable verbatim: no child recursion.
		if incoming != e.incoming {
			m.classify(id, profile.HitBoundary)
			e.incoming = incoming
		} else {
			m.classify(id, profile.HitDirect)
		}
		m.restore(node, e)
		return e.size, nil
	}
}

// remeasure runs the spec fully and overwrites the cache.
func (m *Measurer) remeasure(node *arena.ComponentNode, spec arena.LayoutSpec, incoming, merged constraint.Constraint, class profile.Classification) (loom.Size, error) {
	m.classify(node.Identity, class)
	size, err := m.runSpec(node, spec, merged)
	if err != nil {
		return loom.Size{}, err
	}
	m.storeResult(node, incoming, merged, spec, size)
	node.Size = size
	return size, nil
}

// runSpec executes the spec's Measure, giving the nearest spec that can
// substitute a fallback size the chance to absorb a child failure.
func (m *Measurer) runSpec(node *arena.ComponentNode, spec arena.LayoutSpec, merged constraint.Constraint) (loom.Size, error) {
	ctx := &measureContext{m: m, node: node}
	size, err := spec.Measure(ctx, merged)
	if err != nil {
		if fb, ok := spec.(arena.Fallback); ok {
			if fallback, handled := fb.FallbackSize(merged, err); handled {
				return fallback, nil
			}
		}
		return loom.Size{}, err
	}
	return size, nil
}

func (m *Measurer) classify(id arena.NodeIdentity, class profile.Classification) {
	m.classes[id] = class
	m.stats.CountLookup(class)
}

func (m *Measurer) storeResult(node *arena.ComponentNode, incoming, merged constraint.Constraint, spec arena.LayoutSpec, size loom.Size) {
	origins := make([]loom.Point, len(node.Children))
	for i, c := range node.Children {
		origins[i] = c.Origin
	}
	m.cache.store(node.Identity, &entry{
		incoming: incoming,
		merged:   merged,
		size:     size,
		origins:  origins,
		specType: reflect.TypeOf(spec),
	})
	m.stats.Stores++
}

// restore applies a cached result to the live tree without recursing.
func (m *Measurer) restore(node *arena.ComponentNode, e *entry) {
	node.Size = e.size
	for i, c := range node.Children {
		if i < len(e.origins) {
			c.Origin = e.origins[i]
		}
	}
}

// measureContext is the spec-facing view of one node's children.
type measureContext struct {
	m    *Measurer
	node *arena.ComponentNode
}

func (c *measureContext) ChildCount() int { return len(c.node.Children) }

func (c *measureContext) MeasureChild(i int, cons constraint.Constraint) (loom.Size, error) {
	return c.m.Measure(c.node.Children[i], cons)
}

func (c *measureContext) PlaceChild(i int, origin loom.Point) {
	c.node.Children[i].Origin = origin
}

// passthrough is the implicit spec for nodes that registered none: it
// forwards the merged constraint to every child and sizes to the largest,
// an overlay of its children.
type passthrough struct{}

func (passthrough) Declared() constraint.Constraint {
	return constraint.Constraint{
		Width:  constraint.Wrap(constraint.None, constraint.None),
		Height: constraint.Wrap(constraint.None, constraint.None),
	}
}

func (passthrough) Measure(ctx arena.MeasureContext, merged constraint.Constraint) (loom.Size, error) {
	var size loom.Size
	for i := 0; i < ctx.ChildCount(); i++ {
		cs, err := ctx.MeasureChild(i, merged)
		if err != nil {
			return loom.Size{}, err
		}
		ctx.PlaceChild(i, loom.Point{})
		if cs.Width > size.Width {
			size.Width = cs.Width
		}
		if cs.Height > size.Height {
			size.Height = cs.Height
		}
	}
	return size, nil
}

func (passthrough) Record(arena.RecordContext, loom.Rect) {}

func (passthrough) Cacheable() bool { return true }
