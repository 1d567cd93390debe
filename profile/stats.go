package profile

import (
	"fmt"
	"time"
)

// Classification is the typed verdict for one layout cache lookup. Every
// measure call lands in exactly one class.
type Classification uint8

const (
	// HitDirect: identity and constraint both matched, no dirtiness; the
	// cached size was returned without child recursion.
	HitDirect Classification = iota
	// HitBoundary: an ancestor's resolved constraint changed but this
	// node's own merged constraint and intrinsic measurement were
	// reusable.
	HitBoundary
	// MissNoEntry: first measurement of this (identity, constraint) pair,
	// or the cached entry's spec type no longer matched.
	MissNoEntry
	// MissConstraint: an entry existed for a different merged constraint.
	MissConstraint
	// MissDirtyParams: the node was replayed with changed props.
	MissDirtyParams
	// MissDirtyStructure: the node was created or rebuilt after a
	// fingerprint divergence.
	MissDirtyStructure
	// MissDirtyAncestor: the node sat beneath a structurally dirty
	// ancestor.
	MissDirtyAncestor
	// MissChildSize: a recursive remeasure of children produced a
	// different aggregate size than previously recorded.
	MissChildSize
	// NonCacheable: the layout spec declares itself non-cacheable; the
	// lookup always measures and never stores.
	NonCacheable

	classCount
)

func (c Classification) String() string {
	switch c {
	case HitDirect:
		return "hit_direct"
	case HitBoundary:
		return "hit_boundary"
	case MissNoEntry:
		return "miss_no_entry"
	case MissConstraint:
		return "miss_constraint_changed"
	case MissDirtyParams:
		return "miss_dirty_params"
	case MissDirtyStructure:
		return "miss_dirty_structure"
	case MissDirtyAncestor:
		return "miss_dirty_ancestor"
	case MissChildSize:
		return "miss_child_size_changed"
	case NonCacheable:
		return "non_cacheable"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Hit reports whether the class reuses a cached result.
func (c Classification) Hit() bool {
	return c == HitDirect || c == HitBoundary
}

// Classifications lists all classes in declaration order.
func Classifications() []Classification {
	out := make([]Classification, classCount)
	for i := range out {
		out[i] = Classification(i)
	}
	return out
}

// BuildMode is how much of the build pass a frame performed.
type BuildMode uint8

const (
	// FullInitial: no previous tree existed at the root; the whole tree
	// was built from scratch.
	FullInitial BuildMode = iota
	// PartialReplay: the previous tree was walked and only dirty subtrees
	// re-executed.
	PartialReplay
	// SkipNoInvalidation: zero redraw reasons; the previous frame's tree,
	// layout and fragments were reused unconditionally.
	SkipNoInvalidation
)

func (m BuildMode) String() string {
	switch m {
	case FullInitial:
		return "full_initial"
	case PartialReplay:
		return "partial_replay"
	case SkipNoInvalidation:
		return "skip_no_invalidation"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// FrameStats are the per-frame diagnostics counters, reset at frame start.
type FrameStats struct {
	// Dirtiness, as decided by the replay engine.
	DirtyParams    uint64 // nodes replayed with changed props
	DirtyStructure uint64 // nodes created or rebuilt on fingerprint divergence
	DirtyTotal     uint64 // all dirty nodes, including ancestor propagation

	// Fingerprint bookkeeping.
	FingerprintTime time.Duration

	// Layout cache accounting.
	MeasureCalls uint64
	Lookups      [classCount]uint64
	Stores       uint64

	// Nodes torn down by the post-build sweep.
	TornDown uint64
}

// Reset zeroes the counters for a new frame.
func (s *FrameStats) Reset() {
	*s = FrameStats{}
}

// CountLookup records one classified cache lookup alongside the total
// measure call count.
func (s *FrameStats) CountLookup(c Classification) {
	s.MeasureCalls++
	s.Lookups[c]++
}

// Lookup returns the count for one class.
func (s *FrameStats) Lookup(c Classification) uint64 {
	return s.Lookups[c]
}

// LookupTotal sums all classified lookups. It must equal MeasureCalls for
// any frame: classification is exhaustive and exclusive.
func (s *FrameStats) LookupTotal() uint64 {
	var total uint64
	for _, n := range s.Lookups {
		total += n
	}
	return total
}

// Hits sums direct and boundary hits.
func (s *FrameStats) Hits() uint64 {
	return s.Lookups[HitDirect] + s.Lookups[HitBoundary]
}

// NonCacheableDrops returns the count of lookups that bypassed the cache
// because the spec declared itself non-cacheable.
func (s *FrameStats) NonCacheableDrops() uint64 {
	return s.Lookups[NonCacheable]
}
