package arena

import (
	loom "github.com/loomui/loom"
	"github.com/loomui/loom/constraint"
)

// LayoutSpec is the capability a component registers to describe how its
// node measures, places and records itself. A node carries at most one.
type LayoutSpec interface {
	// Declared returns the node's own sizing intent, merged with the
	// parent's resolved constraint before Measure runs.
	Declared() constraint.Constraint

	// Measure computes the node's size under the merged constraint,
	// measuring and placing children through ctx as needed.
	Measure(ctx MeasureContext, merged constraint.Constraint) (loom.Size, error)

	// Record emits draw fragments for the node's resolved bounds.
	// Child recording is driven by the engine, not the spec.
	Record(ctx RecordContext, bounds loom.Rect)

	// Cacheable reports whether measurement results may be memoized.
	// Specs that read live frame-varying state (an animation clock, a
	// scroll controller mid-fling) must return false.
	Cacheable() bool
}

// MeasureContext gives a LayoutSpec access to its children during Measure.
type MeasureContext interface {
	// ChildCount returns the number of child nodes this frame.
	ChildCount() int

	// MeasureChild resolves child i under the given constraint, going
	// through the layout memoization cache.
	MeasureChild(i int, c constraint.Constraint) (loom.Size, error)

	// PlaceChild records child i's origin relative to this node.
	PlaceChild(i int, origin loom.Point)
}

// RecordContext receives draw fragments during the record pass. Bounds are
// absolute; the engine resolves placement before calling Record.
type RecordContext interface {
	Solid(bounds loom.Rect, color loom.Color)
	Outline(bounds loom.Rect, color loom.Color, width float64)
	Glyphs(bounds loom.Rect, text string, color loom.Color)
}

// Fallback is implemented by layout specs that can substitute a size when a
// child's measurement fails. The engine consults the nearest ancestor spec
// implementing it before surfacing the failure at the frame boundary.
type Fallback interface {
	FallbackSize(merged constraint.Constraint, cause error) (loom.Size, bool)
}
