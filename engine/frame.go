package engine

import (
	"time"

	"go.uber.org/zap"

	loom "github.com/loomui/loom"
	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/constraint"
	"github.com/loomui/loom/input"
	"github.com/loomui/loom/layout"
	"github.com/loomui/loom/profile"
	"github.com/loomui/loom/render"
)

// FrameInput is what the windowing backend supplies per frame: the redraw
// reasons it observed and the raw event batch, plus the viewport the root
// is measured against.
type FrameInput struct {
	Reasons  []input.RedrawReason
	Events   input.Batch
	Viewport loom.Size
}

// FrameResult is one finished frame.
type FrameResult struct {
	Mode      profile.BuildMode
	Size      loom.Size
	Fragments []render.Fragment
	Stats     profile.FrameStats
	Consumed  int // input deliveries consumed by handlers
}

// Frame runs one complete frame: the O(1) skip gate, then build, sweep,
// measure, record and input passes, run to completion in that order on the
// calling thread.
func (rt *Runtime) Frame(in FrameInput, root Component, props arena.Props) (*FrameResult, error) {
	frameStart := time.Now()
	rt.stats.Reset()

	// Frame-level gate, checked once before any per-node work: zero
	// invalidation signals means the previous frame is reused verbatim.
	if len(in.Reasons) == 0 && len(rt.pendingInvalid) == 0 && rt.prev != nil {
		res := &FrameResult{
			Mode:      profile.SkipNoInvalidation,
			Size:      rt.prev.Size,
			Fragments: rt.prev.Fragments,
			Consumed:  rt.prev.Consumed,
		}
		rt.emitRecord(res, in, nil, time.Since(frameStart))
		rt.prev = res
		return res, nil
	}

	mode := profile.PartialReplay
	if rt.arena.Root() == nil {
		mode = profile.FullInitial
	}

	// Build pass.
	rt.arena.BeginGeneration()
	b := &Build{rt: rt}
	rt.build = b
	b.Child(root, "", props)
	rt.build = nil
	if b.firstErr != nil {
		return nil, b.firstErr
	}

	// Teardown: call sites the fingerprints no longer visit.
	dead := rt.arena.Sweep()
	rt.stats.TornDown = uint64(len(dead))
	rt.cache.Evict(dead)
	clear(rt.pendingInvalid)

	rootNode := rt.arena.Root()
	arena.PropagateDescendantDirty(rootNode)

	// Measure pass, top-down through the memoization cache.
	measurer := layout.NewMeasurer(rt.cache, &rt.stats)
	size, err := measurer.Measure(rootNode, rt.rootConstraint(in.Viewport))
	if err != nil {
		// Frame boundary: surfaced, never cached.
		rt.log.Error("measure pass failed",
			zap.Uint64("frame", rt.seq),
			zap.Error(err))
		return nil, err
	}
	rootNode.Origin = loom.Point{}

	// Record pass.
	recorder := render.NewRecorder()
	render.Record(recorder, rootNode)

	// Input pass, bottom-up.
	consumed := input.Dispatch(in.Events, collectTargets(rootNode, loom.Point{}, nil))

	res := &FrameResult{
		Mode:      mode,
		Size:      size,
		Fragments: recorder.Fragments(),
		Stats:     rt.stats,
		Consumed:  consumed,
	}
	rt.emitRecord(res, in, rt.nodeRecord(rootNode, measurer), time.Since(frameStart))

	// Dirt is consumed; next frame starts clean.
	arena.Walk(rootNode, func(n *arena.ComponentNode) { n.ClearDirt() })

	rt.prev = res
	return res, nil
}

// rootConstraint fixes the root to the viewport when one is known.
func (rt *Runtime) rootConstraint(vp loom.Size) constraint.Constraint {
	if vp.Width > 0 && vp.Height > 0 {
		return constraint.Constraint{
			Width:  constraint.Fixed(vp.Width),
			Height: constraint.Fixed(vp.Height),
		}
	}
	return constraint.Constraint{
		Width:  constraint.Wrap(constraint.None, constraint.None),
		Height: constraint.Wrap(constraint.None, constraint.None),
	}
}

// collectTargets gathers registered handlers in post-order with absolute
// bounds, so dispatch sees the innermost node first.
func collectTargets(n *arena.ComponentNode, parentOrigin loom.Point, out []input.Target) []input.Target {
	if n == nil {
		return out
	}
	abs := parentOrigin.Add(n.Origin)
	for _, c := range n.Children {
		out = collectTargets(c, abs, out)
	}
	if n.Handler != nil {
		out = append(out, input.Target{
			Handler: n.Handler,
			Bounds:  loom.Rect{Origin: abs, Size: n.Size},
		})
	}
	return out
}

// emitRecord hands the frame's structured record to the sink and folds the
// counters into the cumulative collector. Both are optional and neither can
// fail the frame.
func (rt *Runtime) emitRecord(res *FrameResult, in FrameInput, root *profile.NodeRecord, elapsed time.Duration) {
	rt.seq++
	if rt.collector != nil {
		rt.collector.Observe(res.Mode, &rt.stats)
	}
	if rt.sink == nil {
		return
	}
	rt.sink.Record(&profile.FrameRecord{
		Session:  rt.session,
		Seq:      rt.seq,
		Mode:     res.Mode.String(),
		Reasons:  input.ReasonStrings(in.Reasons),
		Elapsed:  elapsed,
		Counters: profile.CountersFrom(&rt.stats),
		Root:     root,
	})
}

// nodeRecord mirrors the component tree into per-node diagnostics.
func (rt *Runtime) nodeRecord(n *arena.ComponentNode, m *layout.Measurer) *profile.NodeRecord {
	if n == nil {
		return nil
	}
	rec := &profile.NodeRecord{
		Type:     uint64(n.Identity.Type),
		Key:      string(n.Identity.Key),
		Logic:    n.Identity.Logic,
		Width:    n.Size.Width,
		Height:   n.Size.Height,
		Elapsed:  m.Elapsed(n.Identity),
		Replayed: n.Dirt.Has(arena.DirtParams),
		Skipped:  n.PropsUnchanged,
	}
	if class, ok := m.Class(n.Identity); ok {
		rec.Class = class.String()
	}
	for _, c := range n.Children {
		rec.Children = append(rec.Children, rt.nodeRecord(c, m))
	}
	return rec
}
