package arena

import (
	"reflect"

	loom "github.com/loomui/loom"
	"github.com/loomui/loom/input"
)

// Dirt is the set of reasons a node is excluded from cache and replay reuse
// this frame. The three bits are independent.
type Dirt uint8

const (
	// DirtParams marks a node whose prop value changed (or that was
	// explicitly invalidated) and was re-executed via replay.
	DirtParams Dirt = 1 << iota
	// DirtStructure marks a node created or rebuilt because the structural
	// fingerprint diverged at or above its call site.
	DirtStructure
	// DirtAncestor marks a node reused beneath a structurally dirty
	// ancestor; its cached layout cannot be trusted even though the node
	// itself did not change.
	DirtAncestor
)

func (d Dirt) Has(bit Dirt) bool { return d&bit != 0 }

// ReplayRunner re-runs a component body over a prop value without touching
// any ancestor. The concrete signature is owned by the engine; the arena
// stores it type-erased next to the prop type tag it was registered with.
type ReplayRunner func(props Props)

// ComponentNode is one arena entry per live component invocation.
type ComponentNode struct {
	// Identity is the (type id, instance key, logic id) triple.
	Identity NodeIdentity

	// Layout is the optional boxed layout spec, set during build and
	// consumed during the measure and record passes.
	Layout LayoutSpec

	// Handler is the optional input handler closure.
	Handler input.Handler

	// Runner plus StoredProps form the replay descriptor: callable again
	// when props changed, usable for the equality test when they did not.
	Runner      ReplayRunner
	StoredProps Props
	propsType   reflect.Type

	// PropsUnchanged records that this frame's build proved the props
	// identical to the previous frame's, enabling the fast-path skip.
	PropsUnchanged bool

	// Dirt carries the replay engine's verdict for this frame.
	Dirt Dirt

	// DescendantDirty is set before the measure pass when any strict
	// descendant carries dirt; the cache must recurse through such nodes.
	DescendantDirty bool

	// Resolved placement, relative to the parent. Written by the measure
	// pass (directly or restored from cache).
	Origin loom.Point
	Size   loom.Size

	// Children in invocation order for the current frame. Left untouched
	// when the node's body is skipped.
	Children []*ComponentNode

	// Fingerprint state. fp is this frame's marker sequence, prevFP the
	// previous executed frame's. Marker/Ordinal record where this node was
	// created under its parent; the Prev variants are the prior frame's.
	fp          []GroupID
	prevFP      []GroupID
	fpCounter   uint32
	seed        uint64
	Marker      GroupID
	PrevMarker  GroupID
	Ordinal     int
	PrevOrdinal int

	// visit is the build generation that last reached this node.
	visit uint64

	// openGroups is the stack of control-flow markers currently entered
	// while this node's body executes.
	openGroups []GroupID

	// freshLayout/freshHandler distinguish a registration made this frame
	// from one carried over, so duplicate registration can be reported.
	freshLayout  bool
	freshHandler bool

	// diverged is latched once the current invocation's markers depart
	// from the previous frame's sequence.
	diverged bool

	// logicSeq disambiguates repeated (type, key) pairs during one
	// execution of this node's body.
	logicSeq map[logicKey]uint32
}

type logicKey struct {
	typ TypeID
	key InstanceKey
}

// BeginExecution resets the per-invocation state before the node's body
// runs: the previous fingerprint is retired for comparison, the marker
// counter restarts, and the child list is rebuilt from scratch.
func (n *ComponentNode) BeginExecution() {
	n.prevFP, n.fp = n.fp, n.prevFP[:0]
	n.fpCounter = 0
	n.Children = n.Children[:0]
	n.openGroups = n.openGroups[:0]
	n.freshLayout = false
	n.freshHandler = false
	n.diverged = false
	if n.logicSeq == nil {
		n.logicSeq = make(map[logicKey]uint32)
	} else {
		clear(n.logicSeq)
	}
}

// NextGroupID derives and records the next control-flow marker for this
// invocation. The counter increments on every call, so repeated visits to
// the same branch within one invocation still get distinct ids. Divergence
// from the previous frame's sequence is detected as markers are recorded,
// so the build pass knows mid-body that the tree shape changed.
func (n *ComponentNode) NextGroupID(slot uint32) GroupID {
	id := DeriveGroupID(n.seed, slot, n.fpCounter)
	n.fpCounter++
	idx := len(n.fp)
	n.fp = append(n.fp, id)
	if !n.diverged && (idx >= len(n.prevFP) || n.prevFP[idx] != id) {
		n.diverged = true
	}
	return id
}

// Diverged reports whether the markers recorded so far in the current
// invocation have departed from the previous frame's sequence. Everything
// created after this point is structurally new.
func (n *ComponentNode) Diverged() bool { return n.diverged }

// EnterGroup opens a control-flow marker scope and returns its id. Marker
// scopes nest; children invoked inside attach to the innermost open marker.
func (n *ComponentNode) EnterGroup(slot uint32) GroupID {
	id := n.NextGroupID(slot)
	n.openGroups = append(n.openGroups, id)
	return id
}

// ExitGroup closes the innermost marker scope.
func (n *ComponentNode) ExitGroup() {
	if len(n.openGroups) > 0 {
		n.openGroups = n.openGroups[:len(n.openGroups)-1]
	}
}

// currentMarker returns the innermost open marker, or zero at body top level.
func (n *ComponentNode) currentMarker() GroupID {
	if len(n.openGroups) == 0 {
		return 0
	}
	return n.openGroups[len(n.openGroups)-1]
}

// Fingerprint returns this frame's marker sequence.
func (n *ComponentNode) Fingerprint() []GroupID { return n.fp }

// PrevFingerprint returns the previous executed frame's marker sequence.
func (n *ComponentNode) PrevFingerprint() []GroupID { return n.prevFP }

// HasPrevMarker reports whether id appears in the previous fingerprint.
func (n *ComponentNode) HasPrevMarker(id GroupID) bool {
	for _, g := range n.prevFP {
		if g == id {
			return true
		}
	}
	return false
}

// FingerprintDivergence returns the index of the first marker at which this
// frame's sequence diverges from the previous frame's, or -1 if the new
// sequence is an exact match in content and length.
func (n *ComponentNode) FingerprintDivergence() int {
	min := len(n.fp)
	if len(n.prevFP) < min {
		min = len(n.prevFP)
	}
	for i := 0; i < min; i++ {
		if n.fp[i] != n.prevFP[i] {
			return i
		}
	}
	if len(n.fp) != len(n.prevFP) {
		return min
	}
	return -1
}

// NextLogic allocates the logic id for a child invocation of the given type
// and key within the current execution of this node's body.
func (n *ComponentNode) NextLogic(typ TypeID, key InstanceKey) uint32 {
	k := logicKey{typ: typ, key: key}
	logic := n.logicSeq[k]
	n.logicSeq[k] = logic + 1
	return logic
}

// SetRunner installs the replay descriptor. Registered once per build of the
// node; last write wins.
func (n *ComponentNode) SetRunner(run ReplayRunner, props Props) {
	n.Runner = run
	n.StoredProps = props
	if props != nil {
		n.propsType = reflect.TypeOf(props)
	} else {
		n.propsType = nil
	}
}

// RunnerMatches reports whether the stored replay descriptor can be applied
// to props of the given value's type. A mismatch must fall back to a full
// rebuild, never a type-confused reuse.
func (n *ComponentNode) RunnerMatches(props Props) bool {
	return n.Runner != nil && n.propsType != nil && n.propsType == reflect.TypeOf(props)
}

// ClearDirt resets the per-frame dirtiness verdicts after the measure pass
// has consumed them.
func (n *ComponentNode) ClearDirt() {
	n.Dirt = 0
	n.DescendantDirty = false
}
