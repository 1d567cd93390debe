package engine

import "github.com/loomui/loom/arena"

// Body is a component's declarative function. It runs during the build pass
// and may register at most one layout spec and one input handler, invoke
// children, and wrap its own control flow in Group markers.
type Body func(b *Build, props arena.Props)

// Component pairs a stable type id with the body that builds it. The type
// id is a hash of the qualified name and stays constant across frames for
// the same definition.
type Component struct {
	Name string
	Type arena.TypeID
	Body Body
}

// Define declares a component. name should be the qualified defining name,
// e.g. "myapp/widgets.TodoRow"; it seeds both the type id and the
// control-flow fingerprint of every invocation.
func Define(name string, body Body) Component {
	return Component{
		Name: name,
		Type: arena.TypeIDFor(name),
		Body: body,
	}
}
