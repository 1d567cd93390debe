package loom

// Size is a resolved width/height pair in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

// Point is a position in the parent's coordinate space.
type Point struct {
	X float64
	Y float64
}

// Rect is a placed rectangle: origin plus extent.
type Rect struct {
	Origin Point
	Size   Size
}

// Add offsets p by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Contains reports whether pt falls inside r.
// The right and bottom edges are exclusive.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.Origin.X && pt.X < r.Origin.X+r.Size.Width &&
		pt.Y >= r.Origin.Y && pt.Y < r.Origin.Y+r.Size.Height
}
