package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/input"
)

// Build is one frame's build pass. Component bodies receive it to invoke
// children, wrap control flow in fingerprint markers, and register their
// layout and input capabilities.
type Build struct {
	rt *Runtime

	// structuralDepth is positive while executing inside a subtree the
	// fingerprint comparison judged structurally dirty.
	structuralDepth int

	firstErr error
}

// Child invokes a component as a child of the current scope. The replay
// decision happens here: a surviving call site with equal props is skipped,
// changed props re-run the stored body, anything else rebuilds.
func (b *Build) Child(c Component, key arena.InstanceKey, props arena.Props) {
	if props == nil {
		props = arena.None{}
	}
	rt := b.rt
	a := rt.arena
	parent := a.Current()

	var logic uint32
	if parent != nil {
		logic = parent.NextLogic(c.Type, key)
	}
	id := arena.NodeIdentity{Type: c.Type, Key: key, Logic: logic}

	if _, known := rt.components[c.Type]; !known {
		rt.components[c.Type] = c
	}

	n, existed := a.Enter(id)
	defer func() {
		if err := a.Exit(); err != nil && b.firstErr == nil {
			b.firstErr = err
		}
	}()

	structural := !existed
	if existed && parent != nil {
		if parent.Diverged() ||
			n.Marker != n.PrevMarker ||
			n.Ordinal != n.PrevOrdinal ||
			(n.Marker != 0 && !parent.HasPrevMarker(n.Marker)) {
			structural = true
		}
	}

	switch {
	case structural:
		rt.markDirty(n, arena.DirtStructure)
		b.execute(n, c, props, true)

	case !n.RunnerMatches(props):
		// Stored descriptor can't be applied to this prop type; fall back
		// to a full re-execution, never a type-confused reuse.
		rt.markDirty(n, arena.DirtParams)
		b.execute(n, c, props, false)

	case rt.pendingInvalid[n.Identity] || !props.Equals(n.StoredProps):
		rt.markDirty(n, arena.DirtParams)
		b.execute(n, c, props, false)

	default:
		b.skip(n)
	}
}

// execute runs the component body, recording the replay descriptor and
// checking the resulting fingerprint against the previous frame's.
func (b *Build) execute(n *arena.ComponentNode, c Component, props arena.Props, structural bool) {
	if structural {
		b.structuralDepth++
		defer func() { b.structuralDepth-- }()
	}

	n.PropsUnchanged = false
	n.BeginExecution()
	n.SetRunner(b.rt.runnerFor(c), props)
	c.Body(b, props)

	start := time.Now()
	diverged := n.FingerprintDivergence() != -1
	b.rt.stats.FingerprintTime += time.Since(start)
	if diverged {
		b.rt.markDirty(n, arena.DirtStructure)
	}
}

// skip reuses the node's entire previous output without executing its body.
// Invalidated descendants are still replayed in place.
func (b *Build) skip(n *arena.ComponentNode) {
	n.PropsUnchanged = true
	if b.structuralDepth > 0 {
		// The ancestor's re-layout can move or resize this node even
		// though nothing about it changed.
		b.rt.markDirty(n, arena.DirtAncestor)
	}
	b.rt.arena.MarkSubtreeVisited(n)
	for _, child := range n.Children {
		b.replayInvalidated(child)
	}
}

// replayInvalidated walks a skipped subtree replaying nodes that were
// explicitly invalidated, without touching their ancestors.
func (b *Build) replayInvalidated(n *arena.ComponentNode) {
	if b.rt.pendingInvalid[n.Identity] {
		b.replayInPlace(n)
		return
	}
	for _, child := range n.Children {
		b.replayInvalidated(child)
	}
}

// replayInPlace re-runs a node's stored body over its stored props. The
// scope stack is temporarily repointed at the node so child invocations
// parent correctly.
func (b *Build) replayInPlace(n *arena.ComponentNode) {
	c, ok := b.rt.components[n.Identity.Type]
	if !ok || n.Runner == nil {
		// Nothing replayable survives here; the subtree stays as-is and
		// the invalidation is dropped.
		Logger().Warn("invalidated node has no replay descriptor",
			zap.String("node", n.Identity.String()))
		return
	}
	b.rt.markDirty(n, arena.DirtParams)
	a := b.rt.arena
	a.PushExisting(n)
	b.execute(n, c, n.StoredProps, false)
	if err := a.Exit(); err != nil && b.firstErr == nil {
		b.firstErr = err
	}
}

// Identity returns the arena identity of the component whose body is
// executing, the value Runtime.Invalidate expects.
func (b *Build) Identity() arena.NodeIdentity {
	if n := b.rt.arena.Current(); n != nil {
		return n.Identity
	}
	return arena.NodeIdentity{}
}

// Group wraps one control-flow block (an if/else branch, a match arm, a
// loop body iteration) in a scoped fingerprint marker. slot is a per-block
// constant the author assigns, distinct within one component body, so that
// an if and its else fingerprint differently even though only one runs.
// Nested conditionals nest their markers; the entered sequence is the
// invocation's structural fingerprint.
func (b *Build) Group(slot int, fn func()) {
	n := b.rt.arena.Current()
	if n == nil {
		fn()
		return
	}
	start := time.Now()
	n.EnterGroup(uint32(slot))
	b.rt.stats.FingerprintTime += time.Since(start)
	defer n.ExitGroup()
	fn()
}

// Layout declares how the current node measures, places and records itself.
// Component bodies call this at most once; a second call this frame wins
// but is a caller bug.
func (b *Build) Layout(spec arena.LayoutSpec) {
	if b.rt.arena.SetLayout(spec) {
		Logger().Debug("duplicate layout registration",
			zap.String("node", b.rt.arena.Current().Identity.String()))
	}
}

// OnInput declares the current node's input handler. Last write wins, as
// with Layout.
func (b *Build) OnInput(h input.Handler) {
	if b.rt.arena.SetInput(h) {
		Logger().Debug("duplicate input handler registration",
			zap.String("node", b.rt.arena.Current().Identity.String()))
	}
}

// OnInputFunc is OnInput for a bare function.
func (b *Build) OnInputFunc(fn func(ev input.Event) bool) {
	b.OnInput(input.HandlerFunc(fn))
}
