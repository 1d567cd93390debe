package loom

// Color is an 8-bit RGBA color payload carried on draw fragments.
// The engine treats it as opaque; interpretation belongs to the rendering
// backend.
type Color struct {
	R, G, B, A uint8
}

// RGB builds an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xff}
}
