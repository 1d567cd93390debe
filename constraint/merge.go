package constraint

// Merge combines a child's declared constraint with its parent's resolved
// constraint, per axis. It is applied once per ancestor level, top-down, and
// must not be memoized across different parent constraints.
func Merge(child, parent Constraint) Constraint {
	return Constraint{
		Width:  MergeDimension(child.Width, parent.Width),
		Height: MergeDimension(child.Height, parent.Height),
	}
}

// MergeDimension resolves one axis.
//
// A Fixed child wins outright. A Wrap child stays Wrap and never inherits
// the parent's minimum; its maximum is tightened by whatever upper limit the
// parent carries. A Fill child stays Fill, adopts the parent's minimum only
// when it has none of its own, and tightens its maximum the same way.
func MergeDimension(child, parent DimensionValue) DimensionValue {
	if child.Mode == ModeFixed {
		return child
	}

	switch child.Mode {
	case ModeWrap:
		switch parent.Mode {
		case ModeFixed:
			return Wrap(child.Min, capBy(child.Max, parent.Value))
		default: // Wrap or Fill parent: only its max matters
			return Wrap(child.Min, tightest(child.Max, parent.Max))
		}
	case ModeFill:
		switch parent.Mode {
		case ModeFixed:
			return Fill(child.Min, capBy(child.Max, parent.Value))
		case ModeWrap:
			min := child.Min
			if !min.Set {
				min = parent.Min
			}
			return Fill(min, tightest(child.Max, parent.Max))
		default: // Fill vs Fill
			min := loosest(child.Min, parent.Min)
			max := tightest(child.Max, parent.Max)
			if min.Set && max.Set && min.Value > max.Value {
				min = max
			}
			return Fill(min, max)
		}
	}
	return child
}

// capBy tightens b to at most limit; an absent b becomes the limit itself.
func capBy(b Bound, limit float64) Bound {
	if !b.Set || b.Value > limit {
		return B(limit)
	}
	return b
}

// tightest returns the smaller of two maxima, treating absent as unbounded.
func tightest(a, b Bound) Bound {
	switch {
	case !a.Set:
		return b
	case !b.Set:
		return a
	case b.Value < a.Value:
		return b
	}
	return a
}

// loosest returns the larger of two minima, treating absent as zero demand.
func loosest(a, b Bound) Bound {
	switch {
	case !a.Set:
		return b
	case !b.Set:
		return a
	case b.Value > a.Value:
		return b
	}
	return a
}
