package input

import loom "github.com/loomui/loom"

// Handler receives aggregated input events for one node. Returning true
// consumes the event; it is not delivered to any node further up.
type Handler interface {
	HandleInput(ev Event) bool
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ev Event) bool

func (f HandlerFunc) HandleInput(ev Event) bool { return f(ev) }

// Target is one registered handler with its node's resolved absolute
// bounds. The engine supplies targets innermost-first, matching the
// bottom-up tree walk of the input pass.
type Target struct {
	Handler Handler
	Bounds  loom.Rect
}

// Dispatch delivers a batch to the targets and returns the number of
// deliveries that were consumed.
//
// Pointer events are hit-tested against target bounds and offered to the
// innermost containing target first. Key and IME events skip hit testing
// and are offered in the same innermost-first order. Either way the first
// handler to consume an event ends its propagation.
func Dispatch(batch Batch, targets []Target) int {
	consumed := 0
	for _, ev := range batch.Events {
		for _, t := range targets {
			if t.Handler == nil {
				continue
			}
			if ev.Pointer() && !t.Bounds.Contains(ev.Pos) {
				continue
			}
			if t.Handler.HandleInput(ev) {
				consumed++
				break
			}
		}
	}
	return consumed
}
