package arena

import (
	"github.com/loomui/loom/errors"
	"github.com/loomui/loom/input"
)

// Arena owns every live ComponentNode plus the scope stack of the build
// pass currently in flight. It is confined to the frame-driving thread; no
// locking is required because no other thread mutates it.
type Arena struct {
	nodes map[NodeIdentity]*ComponentNode
	stack []*ComponentNode
	root  *ComponentNode
	gen   uint64
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{
		nodes: make(map[NodeIdentity]*ComponentNode, 64),
	}
}

// BeginGeneration starts a new build generation and returns it. Nodes not
// visited during the generation are reclaimed by the next Sweep.
func (a *Arena) BeginGeneration() uint64 {
	a.gen++
	return a.gen
}

// Generation returns the current build generation.
func (a *Arena) Generation() uint64 { return a.gen }

// Len returns the number of live nodes.
func (a *Arena) Len() int { return len(a.nodes) }

// Root returns the tree root, or nil before the first build.
func (a *Arena) Root() *ComponentNode { return a.root }

// Get returns the entry for id, if one survives from a previous frame.
func (a *Arena) Get(id NodeIdentity) (*ComponentNode, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Enter pushes a new or reused arena entry onto the scope stack and returns
// it together with whether the entry already existed. The identity's Site is
// stamped from the enclosing scope before lookup, so callers supply only the
// (type, key, logic) part. The returned node is valid until the matching
// Exit. An Enter whose identity has no live entry is a node creation;
// survival of last frame's children is decided later by fingerprint
// comparison, not here.
func (a *Arena) Enter(id NodeIdentity) (n *ComponentNode, existed bool) {
	if parent := a.Current(); parent != nil {
		id.Site = parent.Identity.ChildSite()
	}
	n, existed = a.nodes[id]
	if !existed {
		n = &ComponentNode{
			Identity: id,
			seed:     id.Type.Seed(),
		}
		a.nodes[id] = n
	}
	n.visit = a.gen

	if parent := a.Current(); parent != nil {
		n.PrevMarker, n.PrevOrdinal = n.Marker, n.Ordinal
		n.Marker = parent.currentMarker()
		n.Ordinal = len(parent.Children)
		parent.Children = append(parent.Children, n)
	} else {
		a.root = n
	}

	a.stack = append(a.stack, n)
	return n, existed
}

// PushExisting pushes an already-live node onto the scope stack so its body
// can be replayed in place, without touching any parent's child list. Used
// when a dirty subtree is replayed beneath a skipped ancestor.
func (a *Arena) PushExisting(n *ComponentNode) {
	n.visit = a.gen
	a.stack = append(a.stack, n)
}

// Exit pops the scope stack, finalizing the innermost node. It performs no
// cleanup of children.
func (a *Arena) Exit() error {
	if len(a.stack) == 0 {
		return errors.ScopeUnderflow(errors.PhaseBuild)
	}
	a.stack = a.stack[:len(a.stack)-1]
	return nil
}

// Current returns the innermost scope's node, or nil outside a build scope.
func (a *Arena) Current() *ComponentNode {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// Depth returns the current scope nesting depth.
func (a *Arena) Depth() int { return len(a.stack) }

// SetLayout registers the layout spec on the innermost scope. Last write
// wins; the return value reports whether a previous registration from this
// frame was overwritten (a caller bug, not a failure).
func (a *Arena) SetLayout(spec LayoutSpec) (replaced bool) {
	n := a.Current()
	if n == nil {
		return false
	}
	replaced = n.Layout != nil && n.freshLayout
	n.Layout = spec
	n.freshLayout = true
	return replaced
}

// SetInput registers the input handler on the innermost scope. Last write
// wins, as with SetLayout.
func (a *Arena) SetInput(h input.Handler) (replaced bool) {
	n := a.Current()
	if n == nil {
		return false
	}
	replaced = n.Handler != nil && n.freshHandler
	n.Handler = h
	n.freshHandler = true
	return replaced
}

// MarkSubtreeVisited stamps n and every node beneath it with the current
// generation. Used when a replay skip reuses a subtree without executing
// any of its bodies.
func (a *Arena) MarkSubtreeVisited(n *ComponentNode) {
	n.visit = a.gen
	for _, c := range n.Children {
		a.MarkSubtreeVisited(c)
	}
}

// Sweep removes every entry not visited in the current generation and
// returns the identities torn down. Reclamation is lazy: a node whose call
// site was not revisited (a loop produced fewer iterations, a branch not
// taken) stays in the arena until the sweep after the build that dropped it.
func (a *Arena) Sweep() []NodeIdentity {
	var dead []NodeIdentity
	for id, n := range a.nodes {
		if n.visit != a.gen {
			dead = append(dead, id)
			delete(a.nodes, id)
		}
	}
	return dead
}

// Walk visits n and its subtree depth-first, parents before children.
func Walk(n *ComponentNode, visit func(*ComponentNode)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// PropagateDescendantDirty recomputes DescendantDirty bottom-up for the
// subtree rooted at n and reports whether n or anything beneath it carries
// dirt this frame.
func PropagateDescendantDirty(n *ComponentNode) bool {
	if n == nil {
		return false
	}
	n.DescendantDirty = false
	for _, c := range n.Children {
		if PropagateDescendantDirty(c) {
			n.DescendantDirty = true
		}
	}
	return n.DescendantDirty || n.Dirt != 0
}
