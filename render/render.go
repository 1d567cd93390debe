// Package render collects the ordered draw fragments emitted during the
// record pass, for hand-off to the rendering backend. The backend's
// pipeline, caching and texture formats are out of scope; fragments are
// opaque shape/position/size/color payloads attached to specific nodes.
package render

import (
	loom "github.com/loomui/loom"
	"github.com/loomui/loom/arena"
)

// Shape discriminates fragment payloads.
type Shape uint8

const (
	ShapeSolid Shape = iota
	ShapeOutline
	ShapeGlyphs
)

func (s Shape) String() string {
	switch s {
	case ShapeSolid:
		return "solid"
	case ShapeOutline:
		return "outline"
	case ShapeGlyphs:
		return "glyphs"
	}
	return "shape?"
}

// Fragment is one opaque draw command. Bounds are absolute.
type Fragment struct {
	Node   arena.NodeIdentity
	Shape  Shape
	Bounds loom.Rect
	Color  loom.Color
	Text   string  // glyphs only
	Stroke float64 // outline only
}

// Recorder accumulates fragments in emission order.
type Recorder struct {
	fragments []Fragment
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Fragments returns the ordered emission list.
func (r *Recorder) Fragments() []Fragment { return r.fragments }

// For returns a RecordContext that tags emitted fragments with node.
func (r *Recorder) For(node arena.NodeIdentity) arena.RecordContext {
	return &nodeContext{rec: r, node: node}
}

type nodeContext struct {
	rec  *Recorder
	node arena.NodeIdentity
}

func (c *nodeContext) Solid(bounds loom.Rect, color loom.Color) {
	c.rec.fragments = append(c.rec.fragments, Fragment{
		Node: c.node, Shape: ShapeSolid, Bounds: bounds, Color: color,
	})
}

func (c *nodeContext) Outline(bounds loom.Rect, color loom.Color, width float64) {
	c.rec.fragments = append(c.rec.fragments, Fragment{
		Node: c.node, Shape: ShapeOutline, Bounds: bounds, Color: color, Stroke: width,
	})
}

func (c *nodeContext) Glyphs(bounds loom.Rect, text string, color loom.Color) {
	c.rec.fragments = append(c.rec.fragments, Fragment{
		Node: c.node, Shape: ShapeGlyphs, Bounds: bounds, Color: color, Text: text,
	})
}

// Record walks the measured tree depth-first, resolving absolute bounds
// from the per-node origins and invoking each node's layout spec.
func Record(rec *Recorder, root *arena.ComponentNode) {
	recordNode(rec, root, loom.Point{})
}

func recordNode(rec *Recorder, n *arena.ComponentNode, parentOrigin loom.Point) {
	if n == nil {
		return
	}
	abs := parentOrigin.Add(n.Origin)
	if n.Layout != nil {
		n.Layout.Record(rec.For(n.Identity), loom.Rect{Origin: abs, Size: n.Size})
	}
	for _, c := range n.Children {
		recordNode(rec, c, abs)
	}
}
