package constraint

import "github.com/loomui/loom/errors"

// Resolve turns a merged dimension into a concrete size. content is the
// measured content extent, consulted only by Wrap. A Fill with no resolvable
// maximum anywhere in the ancestor chain fails loudly: silently producing a
// zero size would poison the layout cache for every frame thereafter.
func Resolve(d DimensionValue, content float64, node, axis string) (float64, error) {
	switch d.Mode {
	case ModeFixed:
		return d.Value, nil
	case ModeWrap:
		v := content
		if d.Min.Set && v < d.Min.Value {
			v = d.Min.Value
		}
		if d.Max.Set && v > d.Max.Value {
			v = d.Max.Value
		}
		return v, nil
	default: // ModeFill
		if !d.Max.Set {
			return 0, errors.UnboundedFill(node, axis)
		}
		v := d.Max.Value
		if d.Min.Set && v < d.Min.Value {
			v = d.Min.Value
		}
		return v, nil
	}
}
