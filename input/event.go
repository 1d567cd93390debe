package input

import (
	"fmt"

	loom "github.com/loomui/loom"
)

// EventKind discriminates the raw event variants supplied by the windowing
// backend.
type EventKind uint8

const (
	KindCursorMove EventKind = iota
	KindPress
	KindRelease
	KindScroll
	KindKey
	KindText // IME commit
)

func (k EventKind) String() string {
	switch k {
	case KindCursorMove:
		return "cursor_move"
	case KindPress:
		return "press"
	case KindRelease:
		return "release"
	case KindScroll:
		return "scroll"
	case KindKey:
		return "key"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("event(%d)", uint8(k))
}

// Button identifies a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

// Event is one raw input event. Pos is meaningful for pointer kinds, Delta
// for scroll, Key for keyboard, Text for IME commits.
type Event struct {
	Kind   EventKind
	Pos    loom.Point
	Delta  loom.Point
	Button Button
	Key    string
	Text   string
}

// Pointer reports whether the event is positional and therefore subject to
// hit testing during dispatch.
func (e Event) Pointer() bool {
	switch e.Kind {
	case KindCursorMove, KindPress, KindRelease, KindScroll:
		return true
	}
	return false
}

// Batch is the per-frame set of raw events from the windowing backend.
type Batch struct {
	Events []Event
}
