package input

import "fmt"

// RedrawReason tags why the windowing backend requested a frame. The engine
// uses the reason list solely for the frame-level skip decision: an empty
// list means the whole build pass is skipped and the previous frame reused.
type RedrawReason uint8

const (
	ReasonStartup RedrawReason = iota
	ReasonResize
	ReasonCursorMove
	ReasonMouseInput
	ReasonKeyboardInput
	ReasonFocusChange
	ReasonInvalidation // runtime-internal
)

func (r RedrawReason) String() string {
	switch r {
	case ReasonStartup:
		return "startup"
	case ReasonResize:
		return "resize"
	case ReasonCursorMove:
		return "cursor_move"
	case ReasonMouseInput:
		return "mouse_input"
	case ReasonKeyboardInput:
		return "keyboard_input"
	case ReasonFocusChange:
		return "focus_change"
	case ReasonInvalidation:
		return "invalidation"
	}
	return fmt.Sprintf("reason(%d)", uint8(r))
}

// ReasonStrings renders a reason list for diagnostics records.
func ReasonStrings(reasons []RedrawReason) []string {
	if len(reasons) == 0 {
		return nil
	}
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}
