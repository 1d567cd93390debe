package arena

import "reflect"

// Props is the per-invocation prop value of a component. Any prop type must
// supply an equality test to participate in replay: an unchanged value lets
// the engine skip re-executing the component body entirely.
type Props interface {
	Equals(other Props) bool
}

// ValueProps wraps a comparable value as Props with == equality.
type ValueProps[T comparable] struct {
	V T
}

func (p ValueProps[T]) Equals(other Props) bool {
	q, ok := other.(ValueProps[T])
	return ok && q.V == p.V
}

// Value is shorthand for constructing ValueProps.
func Value[T comparable](v T) ValueProps[T] {
	return ValueProps[T]{V: v}
}

// DeepProps wraps an arbitrary value, compared structurally. Prefer
// ValueProps or a hand-written Equals for hot components; reflection-based
// equality runs on every frame the node is revisited.
type DeepProps struct {
	V any
}

func (p DeepProps) Equals(other Props) bool {
	q, ok := other.(DeepProps)
	return ok && reflect.DeepEqual(p.V, q.V)
}

// None is the empty prop value for components with no inputs.
type None struct{}

func (None) Equals(other Props) bool {
	_, ok := other.(None)
	return ok
}
