package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	loom "github.com/loomui/loom"
	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/constraint"
	loomerr "github.com/loomui/loom/errors"
	"github.com/loomui/loom/input"
	"github.com/loomui/loom/profile"
)

// boxSpec is a fixed-size leaf that records a solid fill.
type boxSpec struct {
	w, h float64
}

func (s boxSpec) Declared() constraint.Constraint {
	return constraint.Constraint{
		Width:  constraint.Fixed(s.w),
		Height: constraint.Fixed(s.h),
	}
}

func (s boxSpec) Measure(arena.MeasureContext, constraint.Constraint) (loom.Size, error) {
	return loom.Size{Width: s.w, Height: s.h}, nil
}

func (boxSpec) Record(ctx arena.RecordContext, bounds loom.Rect) {
	ctx.Solid(bounds, loom.RGB(200, 200, 200))
}

func (boxSpec) Cacheable() bool { return true }

// columnSpec stacks children vertically, wrapping their total extent.
type columnSpec struct{}

func (columnSpec) Declared() constraint.Constraint {
	return constraint.Constraint{
		Width:  constraint.Wrap(constraint.None, constraint.None),
		Height: constraint.Wrap(constraint.None, constraint.None),
	}
}

func (columnSpec) Measure(ctx arena.MeasureContext, merged constraint.Constraint) (loom.Size, error) {
	var y, maxW float64
	for i := 0; i < ctx.ChildCount(); i++ {
		cs, err := ctx.MeasureChild(i, constraint.Constraint{
			Width:  constraint.Wrap(constraint.None, merged.Width.Max),
			Height: constraint.Wrap(constraint.None, constraint.None),
		})
		if err != nil {
			return loom.Size{}, err
		}
		ctx.PlaceChild(i, loom.Point{Y: y})
		y += cs.Height
		if cs.Width > maxW {
			maxW = cs.Width
		}
	}
	return loom.Size{Width: maxW, Height: y}, nil
}

func (columnSpec) Record(arena.RecordContext, loom.Rect) {}

func (columnSpec) Cacheable() bool { return true }

// fillSpec demands an external extent on both axes, so it fails under a
// fully unbounded ancestry.
type fillSpec struct{}

func (fillSpec) Declared() constraint.Constraint {
	return constraint.Constraint{
		Width:  constraint.Fill(constraint.None, constraint.None),
		Height: constraint.Fill(constraint.None, constraint.None),
	}
}

func (fillSpec) Measure(_ arena.MeasureContext, merged constraint.Constraint) (loom.Size, error) {
	w, err := constraint.Resolve(merged.Width, 0, "fill", "width")
	if err != nil {
		return loom.Size{}, err
	}
	h, err := constraint.Resolve(merged.Height, 0, "fill", "height")
	if err != nil {
		return loom.Size{}, err
	}
	return loom.Size{Width: w, Height: h}, nil
}

func (fillSpec) Record(arena.RecordContext, loom.Rect) {}

func (fillSpec) Cacheable() bool { return true }

func viewport(w, h float64) FrameInput {
	return FrameInput{
		Reasons:  []input.RedrawReason{input.ReasonInvalidation},
		Viewport: loom.Size{Width: w, Height: h},
	}
}

func mustFrame(t *testing.T, rt *Runtime, in FrameInput, root Component, props arena.Props) *FrameResult {
	t.Helper()
	res, err := rt.Frame(in, root, props)
	if err != nil {
		t.Fatalf("frame failed: %v", err)
	}
	return res
}

func TestFrame_InitialBuildThenReplay(t *testing.T) {
	leafRuns := 0
	leaf := Define("test.Leaf", func(b *Build, props arena.Props) {
		leafRuns++
		b.Layout(boxSpec{w: 10, h: 10})
	})
	root := Define("test.Root", func(b *Build, props arena.Props) {
		b.Layout(columnSpec{})
		b.Child(leaf, "", nil)
	})

	rt := New()
	defer rt.Close()

	res := mustFrame(t, rt, viewport(100, 100), root, nil)
	if res.Mode != profile.FullInitial {
		t.Errorf("first frame mode = %v, want full_initial", res.Mode)
	}
	if leafRuns != 1 {
		t.Fatalf("leaf ran %d times", leafRuns)
	}
	if res.Size != (loom.Size{Width: 10, Height: 10}) {
		t.Errorf("size = %v", res.Size)
	}
	if len(res.Fragments) != 1 {
		t.Errorf("fragments = %d, want 1", len(res.Fragments))
	}

	res = mustFrame(t, rt, viewport(100, 100), root, nil)
	if res.Mode != profile.PartialReplay {
		t.Errorf("second frame mode = %v, want partial_replay", res.Mode)
	}
	if leafRuns != 1 {
		t.Errorf("unchanged leaf re-ran, total %d runs", leafRuns)
	}
}

// With no redraw reasons and no pending invalidations, the frame is reused
// verbatim without touching a single node, any number of times in a row.
func TestFrame_SkipGate(t *testing.T) {
	bodyRuns := 0
	root := Define("test.Root", func(b *Build, props arena.Props) {
		bodyRuns++
		b.Layout(boxSpec{w: 10, h: 10})
	})

	rt := New()
	defer rt.Close()

	first := mustFrame(t, rt, viewport(100, 100), root, nil)

	for i := 0; i < 3; i++ {
		res := mustFrame(t, rt, FrameInput{Viewport: loom.Size{Width: 100, Height: 100}}, root, nil)
		if res.Mode != profile.SkipNoInvalidation {
			t.Fatalf("skip %d: mode = %v", i, res.Mode)
		}
		if res.Size != first.Size {
			t.Errorf("skip %d changed the frame size", i)
		}
		if len(res.Fragments) != len(first.Fragments) {
			t.Errorf("skip %d changed the fragment list", i)
		}
		if res.Stats.MeasureCalls != 0 {
			t.Errorf("skip %d performed %d measure calls", i, res.Stats.MeasureCalls)
		}
	}
	if bodyRuns != 1 {
		t.Errorf("skipped frames ran the body, total %d runs", bodyRuns)
	}
}

// The very first frame builds even when no redraw reason accompanies it.
func TestFrame_FirstFrameNeverSkips(t *testing.T) {
	root := Define("test.Root", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 10, h: 10})
	})

	rt := New()
	defer rt.Close()

	res := mustFrame(t, rt, FrameInput{Viewport: loom.Size{Width: 100, Height: 100}}, root, nil)
	if res.Mode != profile.FullInitial {
		t.Errorf("mode = %v, want full_initial", res.Mode)
	}
}

func TestFrame_ChangedPropsReplayOnlyThatSubtree(t *testing.T) {
	runs := map[string]int{}
	label := Define("test.Label", func(b *Build, props arena.Props) {
		text := props.(arena.ValueProps[string]).V
		runs[text[:1]]++
		b.Layout(boxSpec{w: float64(10 * len(text)), h: 10})
	})
	root := Define("test.Root", func(b *Build, props arena.Props) {
		p := props.(arena.ValueProps[string])
		b.Layout(columnSpec{})
		b.Child(label, "left", arena.Value("l-"+p.V))
		b.Child(label, "right", arena.Value("r-static"))
	})

	rt := New()
	defer rt.Close()

	mustFrame(t, rt, viewport(200, 200), root, arena.Value("a"))
	if runs["l"] != 1 || runs["r"] != 1 {
		t.Fatalf("initial runs = %v", runs)
	}

	res := mustFrame(t, rt, viewport(200, 200), root, arena.Value("b"))
	if runs["l"] != 2 {
		t.Errorf("changed child did not replay: %v", runs)
	}
	if runs["r"] != 1 {
		t.Errorf("unchanged sibling replayed: %v", runs)
	}
	if res.Stats.DirtyParams == 0 {
		t.Error("no nodes counted dirty-by-parameter")
	}
}

func TestFrame_ListShrinkTearsDownExactlyOne(t *testing.T) {
	itemRuns := map[string]int{}
	item := Define("test.Item", func(b *Build, props arena.Props) {
		text := props.(arena.ValueProps[string]).V
		itemRuns[text]++
		b.Layout(boxSpec{w: 50, h: 10})
	})
	list := Define("test.List", func(b *Build, props arena.Props) {
		items := props.(arena.DeepProps).V.([]string)
		b.Layout(columnSpec{})
		for i, it := range items {
			i, it := i, it
			b.Group(1, func() {
				b.Child(item, arena.IndexKey(i), arena.Value(it))
			})
		}
	})

	rt := New()
	defer rt.Close()

	three := []string{"a", "b", "c"}
	mustFrame(t, rt, viewport(200, 200), list, arena.DeepProps{V: three})
	if rt.Arena().Len() != 4 { // list + 3 items
		t.Fatalf("arena holds %d nodes", rt.Arena().Len())
	}

	two := []string{"a", "b"}
	res := mustFrame(t, rt, viewport(200, 200), list, arena.DeepProps{V: two})
	if res.Stats.TornDown != 1 {
		t.Errorf("tore down %d nodes, want exactly 1", res.Stats.TornDown)
	}
	if rt.Arena().Len() != 3 {
		t.Errorf("arena holds %d nodes after shrink", rt.Arena().Len())
	}
	if res.Size != (loom.Size{Width: 50, Height: 20}) {
		t.Errorf("size = %v", res.Size)
	}
	// Surviving items kept their prior output.
	if itemRuns["a"] != 1 || itemRuns["b"] != 1 {
		t.Errorf("surviving items replayed: %v", itemRuns)
	}
}

func TestFrame_BranchFlipRebuildsStructurally(t *testing.T) {
	narrow := Define("test.Narrow", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 10, h: 10})
	})
	wide := Define("test.Wide", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 90, h: 10})
	})
	root := Define("test.Root", func(b *Build, props arena.Props) {
		compact := props.(arena.ValueProps[bool]).V
		b.Layout(columnSpec{})
		if compact {
			b.Group(0, func() { b.Child(narrow, "", nil) })
		} else {
			b.Group(1, func() { b.Child(wide, "", nil) })
		}
	})

	rt := New()
	defer rt.Close()

	res := mustFrame(t, rt, viewport(200, 200), root, arena.Value(true))
	if res.Size.Width != 10 {
		t.Fatalf("size = %v", res.Size)
	}

	res = mustFrame(t, rt, viewport(200, 200), root, arena.Value(false))
	if res.Size.Width != 90 {
		t.Errorf("flipped branch did not take effect: %v", res.Size)
	}
	if res.Stats.DirtyStructure == 0 {
		t.Error("branch flip produced no structurally dirty nodes")
	}
	if res.Stats.TornDown != 1 {
		t.Errorf("tore down %d nodes, want the abandoned branch child", res.Stats.TornDown)
	}
}

func TestFrame_InvalidateReplaysInPlace(t *testing.T) {
	rootRuns, childRuns := 0, 0
	var tickID arena.NodeIdentity
	tick := Define("test.Tick", func(b *Build, props arena.Props) {
		childRuns++
		tickID = b.Identity()
		b.Layout(boxSpec{w: 10, h: 10})
	})
	root := Define("test.Root", func(b *Build, props arena.Props) {
		rootRuns++
		b.Layout(columnSpec{})
		b.Child(tick, "", nil)
	})

	rt := New()
	defer rt.Close()

	mustFrame(t, rt, viewport(100, 100), root, nil)
	if rootRuns != 1 || childRuns != 1 {
		t.Fatalf("initial runs: root %d, child %d", rootRuns, childRuns)
	}

	rt.Invalidate(tickID)

	// No redraw reasons: the invalidation alone must defeat the skip gate.
	res := mustFrame(t, rt, FrameInput{Viewport: loom.Size{Width: 100, Height: 100}}, root, nil)
	if res.Mode != profile.PartialReplay {
		t.Fatalf("mode = %v, want partial_replay", res.Mode)
	}
	if childRuns != 2 {
		t.Errorf("invalidated child ran %d times, want 2", childRuns)
	}
	if rootRuns != 1 {
		t.Errorf("in-place replay re-ran the ancestor, root runs = %d", rootRuns)
	}
}

// A surviving call site handed a different prop type must re-execute rather
// than reuse or crash on the stored descriptor.
func TestFrame_PropTypeChangeForcesReplay(t *testing.T) {
	runs := 0
	leaf := Define("test.Leaf", func(b *Build, props arena.Props) {
		runs++
		b.Layout(boxSpec{w: 10, h: 10})
	})
	root := Define("test.Root", func(b *Build, props arena.Props) {
		b.Layout(columnSpec{})
		b.Child(leaf, "", props)
	})

	rt := New()
	defer rt.Close()

	mustFrame(t, rt, viewport(100, 100), root, arena.Value(1))
	res := mustFrame(t, rt, viewport(100, 100), root, arena.Value("one"))
	if runs != 2 {
		t.Errorf("leaf ran %d times, want 2", runs)
	}
	if res.Stats.DirtyParams == 0 {
		t.Error("type change not counted as dirty-by-parameter")
	}
}

func TestFrame_InputDispatchHitTest(t *testing.T) {
	var clicks int
	root := Define("test.Button", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 100, h: 40})
		b.OnInputFunc(func(ev input.Event) bool {
			if ev.Kind == input.KindPress {
				clicks++
				return true
			}
			return false
		})
	})

	rt := New()
	defer rt.Close()

	in := viewport(200, 200)
	in.Events = input.Batch{Events: []input.Event{
		{Kind: input.KindPress, Pos: loom.Point{X: 10, Y: 10}, Button: input.ButtonLeft},
	}}
	res := mustFrame(t, rt, in, root, nil)
	if clicks != 1 || res.Consumed != 1 {
		t.Errorf("inside press: clicks = %d, consumed = %d", clicks, res.Consumed)
	}

	in.Events = input.Batch{Events: []input.Event{
		{Kind: input.KindPress, Pos: loom.Point{X: 150, Y: 150}, Button: input.ButtonLeft},
	}}
	res = mustFrame(t, rt, in, root, nil)
	if clicks != 1 || res.Consumed != 0 {
		t.Errorf("outside press: clicks = %d, consumed = %d", clicks, res.Consumed)
	}
}

func TestFrame_MeasureFailureSurfaces(t *testing.T) {
	root := Define("test.Fill", func(b *Build, props arena.Props) {
		b.Layout(fillSpec{})
	})

	rt := New()
	defer rt.Close()

	// Zero viewport: the root is measured unbounded and the fill cannot
	// resolve.
	_, err := rt.Frame(FrameInput{Reasons: []input.RedrawReason{input.ReasonStartup}}, root, nil)
	if err == nil {
		t.Fatal("expected a measure failure")
	}
	if !errors.Is(err, &loomerr.Error{Phase: loomerr.PhaseMeasure, Kind: loomerr.KindUnboundedFill}) {
		t.Errorf("error = %v, want unbounded_fill", err)
	}
	if rt.Cache().Len() != 0 {
		t.Error("failed measurement left cache entries behind")
	}
}

func TestFrame_SinkReceivesOneRecordPerFrame(t *testing.T) {
	var buf bytes.Buffer
	sink := profile.NewSink(profile.NewJSONLEncoder(&buf), 16, nil)

	root := Define("test.Root", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 10, h: 10})
	})

	rt := New(WithSink(sink))
	mustFrame(t, rt, viewport(100, 100), root, nil)
	mustFrame(t, rt, FrameInput{Viewport: loom.Size{Width: 100, Height: 100}}, root, nil) // skipped
	rt.Close()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("sink wrote %d records, want 2", len(lines))
	}

	var first, second profile.FrameRecord
	if err := json.Unmarshal(lines[0], &first); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(lines[1], &second); err != nil {
		t.Fatal(err)
	}
	if first.Session != rt.Session() || second.Session != rt.Session() {
		t.Error("records not stamped with the runtime session")
	}
	if first.Mode != profile.FullInitial.String() {
		t.Errorf("first mode = %q", first.Mode)
	}
	if second.Mode != profile.SkipNoInvalidation.String() {
		t.Errorf("second mode = %q", second.Mode)
	}
	if first.Root == nil {
		t.Error("built frame carries no node tree")
	}
	if second.Root != nil {
		t.Error("skipped frame should carry no node tree")
	}
}

func TestFrame_DeepListStaysStable(t *testing.T) {
	item := Define("test.Item", func(b *Build, props arena.Props) {
		b.Layout(boxSpec{w: 50, h: 10})
	})
	list := Define("test.List", func(b *Build, props arena.Props) {
		n := props.(arena.ValueProps[int]).V
		b.Layout(columnSpec{})
		for i := 0; i < n; i++ {
			i := i
			b.Group(1, func() {
				b.Child(item, arena.IndexKey(i), arena.Value(i))
			})
		}
	})

	rt := New()
	defer rt.Close()

	for frame := 0; frame < 5; frame++ {
		res := mustFrame(t, rt, viewport(200, 200), list, arena.Value(20))
		if res.Size.Height != 200 {
			t.Fatalf("frame %d: size = %v", frame, res.Size)
		}
		if res.Stats.TornDown != 0 {
			t.Fatalf("frame %d tore down %d nodes of a stable list", frame, res.Stats.TornDown)
		}
		if frame > 0 && res.Stats.LookupTotal() != res.Stats.MeasureCalls {
			t.Fatalf("frame %d: lookup accounting out of balance", frame)
		}
	}
}

func BenchmarkFrame_SteadyState(b *testing.B) {
	item := Define("bench.Item", func(bld *Build, props arena.Props) {
		bld.Layout(boxSpec{w: 50, h: 10})
	})
	list := Define("bench.List", func(bld *Build, props arena.Props) {
		bld.Layout(columnSpec{})
		for i := 0; i < 100; i++ {
			i := i
			bld.Group(1, func() {
				bld.Child(item, arena.InstanceKey(fmt.Sprintf("row-%d", i)), arena.Value(i))
			})
		}
	})

	rt := New()
	defer rt.Close()
	rt.Frame(viewport(800, 600), list, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rt.Frame(viewport(800, 600), list, nil)
	}
}
