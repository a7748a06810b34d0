package preview

import "sync/atomic"

// Visibility is the preview ghost's display state. Unset means no renderer
// call has been made yet, so the first Show or Hide always reaches it.
type Visibility int32

const (
	Unset Visibility = iota
	Visible
	Hidden
)

func (v Visibility) String() string {
	switch v {
	case Unset:
		return "unset"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	default:
		return "invalid"
	}
}

// visibility tracks the current state and forwards changes to a renderer.
type visibility struct {
	state atomic.Int32
}

func (v *visibility) get() Visibility {
	return Visibility(v.state.Load())
}

// set switches to next and reports whether the state changed.
func (v *visibility) set(next Visibility) bool {
	return Visibility(v.state.Swap(int32(next))) != next
}
