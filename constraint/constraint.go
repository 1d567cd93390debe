package constraint

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode discriminates the three sizing intents
type Mode uint8

const (
	// ModeFixed is a non-negotiable exact size. An ancestor can never
	// override it.
	ModeFixed Mode = iota
	// ModeWrap sizes to content, optionally bounded.
	ModeWrap
	// ModeFill takes the available space, optionally bounded.
	ModeFill
)

func (m Mode) String() string {
	switch m {
	case ModeFixed:
		return "fixed"
	case ModeWrap:
		return "wrap"
	case ModeFill:
		return "fill"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Bound is an optional dimension limit. The zero value is "absent".
// Bound is comparable so constraints can key the layout cache directly.
type Bound struct {
	Value float64
	Set   bool
}

// B constructs a present bound.
func B(v float64) Bound {
	return Bound{Value: v, Set: true}
}

// None is the absent bound.
var None = Bound{}

// DimensionValue is one axis worth of sizing intent.
// For ModeFixed only Value is meaningful; Min and Max apply to Wrap and Fill.
type DimensionValue struct {
	Value float64
	Min   Bound
	Max   Bound
	Mode  Mode
}

// Fixed declares an exact, non-overridable size.
func Fixed(v float64) DimensionValue {
	return DimensionValue{Mode: ModeFixed, Value: v}
}

// Wrap declares size-to-content within optional bounds.
func Wrap(min, max Bound) DimensionValue {
	return DimensionValue{Mode: ModeWrap, Min: min, Max: max}
}

// Fill declares take-available-space within optional bounds.
func Fill(min, max Bound) DimensionValue {
	return DimensionValue{Mode: ModeFill, Min: min, Max: max}
}

// Exact returns the dimension's fixed size, if it has one.
func (d DimensionValue) Exact() (float64, bool) {
	if d.Mode == ModeFixed {
		return d.Value, true
	}
	return 0, false
}

// Bounded reports whether the dimension has a resolvable upper limit.
// Fixed dimensions are always bounded.
func (d DimensionValue) Bounded() bool {
	return d.Mode == ModeFixed || d.Max.Set
}

func (d DimensionValue) String() string {
	if d.Mode == ModeFixed {
		return "fixed(" + strconv.FormatFloat(d.Value, 'g', -1, 64) + ")"
	}
	var b strings.Builder
	b.WriteString(d.Mode.String())
	b.WriteByte('{')
	if d.Min.Set {
		b.WriteString("min:")
		b.WriteString(strconv.FormatFloat(d.Min.Value, 'g', -1, 64))
	}
	if d.Max.Set {
		if d.Min.Set {
			b.WriteByte(',')
		}
		b.WriteString("max:")
		b.WriteString(strconv.FormatFloat(d.Max.Value, 'g', -1, 64))
	}
	b.WriteByte('}')
	return b.String()
}

// Constraint pairs a width and height intent.
type Constraint struct {
	Width  DimensionValue
	Height DimensionValue
}

func (c Constraint) String() string {
	return c.Width.String() + " x " + c.Height.String()
}
