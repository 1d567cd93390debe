package engine

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/loomui/loom/arena"
	"github.com/loomui/loom/layout"
	"github.com/loomui/loom/profile"
)

// Runtime owns the node arena, the scope stack and the layout cache as one
// explicit object. It is confined to the thread driving the frame loop;
// initialize at application start, close at application exit.
type Runtime struct {
	arena *arena.Arena
	cache *layout.Cache
	log   *zap.Logger

	sink      *profile.Sink
	collector *profile.Collector
	session   string

	components     map[arena.TypeID]Component
	pendingInvalid map[arena.NodeIdentity]bool

	stats profile.FrameStats
	seq   uint64
	build *Build

	prev *FrameResult
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithSink attaches a diagnostics sink. One structured record per frame is
// delivered fire-and-forget; the runtime will close the sink on Close.
func WithSink(s *profile.Sink) Option {
	return func(rt *Runtime) { rt.sink = s }
}

// WithCollector attaches a Prometheus collector fed cumulative totals.
func WithCollector(c *profile.Collector) Option {
	return func(rt *Runtime) { rt.collector = c }
}

// WithLogger overrides the package logger for this runtime.
func WithLogger(l *zap.Logger) Option {
	return func(rt *Runtime) { rt.log = l }
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		arena:          arena.New(),
		cache:          layout.NewCache(),
		components:     make(map[arena.TypeID]Component),
		pendingInvalid: make(map[arena.NodeIdentity]bool),
		session:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.log == nil {
		rt.log = Logger()
	}
	return rt
}

// Close releases the runtime, draining the diagnostics sink if one is
// attached.
func (rt *Runtime) Close() {
	if rt.sink != nil {
		rt.sink.Close()
	}
}

// Arena exposes the node registry, read-only by convention; mutation
// outside a frame corrupts the replay bookkeeping.
func (rt *Runtime) Arena() *arena.Arena { return rt.arena }

// Cache exposes the layout memoization cache.
func (rt *Runtime) Cache() *layout.Cache { return rt.cache }

// Session returns the uuid stamped on this runtime's profile records.
func (rt *Runtime) Session() string { return rt.session }

// Invalidate marks a node dirty-by-parameter for the next frame: its stored
// body is re-run over its stored props without touching any ancestor. Used
// by components whose internal state changed outside the prop flow; obtain
// id from Build.Identity during a build of the component.
func (rt *Runtime) Invalidate(id arena.NodeIdentity) {
	rt.pendingInvalid[id] = true
}

// markDirty sets a dirt bit and keeps the frame counters consistent.
func (rt *Runtime) markDirty(n *arena.ComponentNode, d arena.Dirt) {
	if n.Dirt == 0 {
		rt.stats.DirtyTotal++
	}
	if d.Has(arena.DirtParams) && !n.Dirt.Has(arena.DirtParams) {
		rt.stats.DirtyParams++
	}
	if d.Has(arena.DirtStructure) && !n.Dirt.Has(arena.DirtStructure) {
		rt.stats.DirtyStructure++
	}
	n.Dirt |= d
}

// runnerFor boxes a component body as the node's replay descriptor. The
// closure resolves the current frame's Build at call time, so a descriptor
// stored frames ago replays correctly.
func (rt *Runtime) runnerFor(c Component) arena.ReplayRunner {
	return func(props arena.Props) {
		if rt.build == nil {
			rt.log.Error("replay runner invoked outside a build pass",
				zap.String("component", c.Name))
			return
		}
		c.Body(rt.build, props)
	}
}

// Stats returns the previous frame's counters.
func (rt *Runtime) Stats() profile.FrameStats { return rt.stats }
