package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frame is an oriented point: a position and two orthonormal axes.
// Forward is the connection axis, Up is the surface normal used as the
// roll reference.
type Frame struct {
	Position r3.Vec `json:"position"`
	Forward  r3.Vec `json:"forward"`
	Up       r3.Vec `json:"up"`
}

// Right returns the implied third axis, Up × Forward.
func (f Frame) Right() r3.Vec {
	return r3.Cross(f.Up, f.Forward)
}

// Transformed maps a frame expressed in the local space of t into world space.
func (f Frame) Transformed(t Transform) Frame {
	return Frame{
		Position: t.Apply(f.Position),
		Forward:  t.ApplyDir(f.Forward),
		Up:       t.ApplyDir(f.Up),
	}
}

// Orthonormal reports whether Forward and Up are unit length and
// perpendicular within tol.
func (f Frame) Orthonormal(tol float64) bool {
	return math.Abs(r3.Norm(f.Forward)-1) <= tol &&
		math.Abs(r3.Norm(f.Up)-1) <= tol &&
		math.Abs(r3.Dot(f.Forward, f.Up)) <= tol
}
