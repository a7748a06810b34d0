// Package geom is the small immutable math library the snapping engine is
// written against: vectors (gonum r3.Vec), unit-quaternion rotations, rigid
// transforms and oriented frames. Nothing here knows about a scene graph;
// every value is a snapshot passed by value.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the tolerance below which lengths are treated as zero.
const Epsilon = 1e-12

// Rotation is a unit quaternion. The zero value is the identity rotation.
type Rotation r3.Rotation

// Identity is the rotation that leaves every vector unchanged.
var Identity = Rotation{Real: 1}

// number returns the underlying quaternion, mapping the zero value to identity.
func (r Rotation) number() quat.Number {
	if r == (Rotation{}) {
		return quat.Number{Real: 1}
	}
	return quat.Number(r)
}

// AngleAxis returns a rotation of angle radians about axis (right-hand rule).
// A zero angle or a zero axis yields the identity.
func AngleAxis(angle float64, axis r3.Vec) Rotation {
	if angle == 0 || r3.Norm2(axis) < Epsilon {
		return Identity
	}
	return Rotation(r3.NewRotation(angle, axis))
}

// FromTo returns the shortest-arc rotation taking the direction of from onto
// the direction of to. Anti-parallel inputs have no unique shortest arc; the
// result is then a half turn about an axis perpendicular to from, chosen
// deterministically (from × X, or from × Y when from is along X).
func FromTo(from, to r3.Vec) Rotation {
	if r3.Norm2(from) < Epsilon || r3.Norm2(to) < Epsilon {
		return Identity
	}
	a, b := r3.Unit(from), r3.Unit(to)
	d := r3.Dot(a, b)
	if d <= -1+1e-9 {
		axis := r3.Cross(a, r3.Vec{X: 1})
		if r3.Norm2(axis) < 1e-9 {
			axis = r3.Cross(a, r3.Vec{Y: 1})
		}
		return AngleAxis(math.Pi, axis)
	}
	c := r3.Cross(a, b)
	q := quat.Number{Real: 1 + d, Imag: c.X, Jmag: c.Y, Kmag: c.Z}
	return Rotation(quat.Scale(1/quat.Abs(q), q))
}

// Mul composes two rotations. r.Mul(o) applies o first, then r.
func (r Rotation) Mul(o Rotation) Rotation {
	q := quat.Mul(r.number(), o.number())
	if n := quat.Abs(q); n != 1 && n > Epsilon {
		q = quat.Scale(1/n, q)
	}
	return Rotation(q)
}

// Inverse returns the rotation undoing r.
func (r Rotation) Inverse() Rotation {
	return Rotation(quat.Conj(r.number()))
}

// Rotate returns v rotated by r.
func (r Rotation) Rotate(v r3.Vec) r3.Vec {
	return r3.Rotation(r.number()).Rotate(v)
}

// Angle returns the rotation angle in radians, in [0, π].
func (r Rotation) Angle() float64 {
	w := math.Min(1, math.Abs(r.number().Real))
	return 2 * math.Acos(w)
}

// AxisAngle returns the rotation axis (unit length) and angle in radians.
// The identity reports the X axis and a zero angle.
func (r Rotation) AxisAngle() (r3.Vec, float64) {
	q := r.number()
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	s := math.Sqrt(math.Max(0, 1-q.Real*q.Real))
	if s < 1e-9 {
		return r3.Vec{X: 1}, 0
	}
	axis := r3.Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s}
	return axis, 2 * math.Acos(math.Min(1, q.Real))
}

// Equal reports whether r and o describe the same rotation within tol.
// q and -q are the same rotation.
func (r Rotation) Equal(o Rotation, tol float64) bool {
	a, b := r.number(), o.number()
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return 1-math.Abs(dot) <= tol
}

// Matrix returns the 3x3 rotation matrix in row-major order.
func (r Rotation) Matrix() [9]float64 {
	q := r.number()
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// SignedAngle returns the angle in radians that rotates from onto to about
// axis, measured between their projections on the plane perpendicular to
// axis. The sign follows the right-hand rule about axis. Degenerate
// projections yield zero.
func SignedAngle(from, to, axis r3.Vec) float64 {
	if r3.Norm2(axis) < Epsilon {
		return 0
	}
	n := r3.Unit(axis)
	a := r3.Sub(from, r3.Scale(r3.Dot(from, n), n))
	b := r3.Sub(to, r3.Scale(r3.Dot(to, n), n))
	if r3.Norm2(a) < Epsilon || r3.Norm2(b) < Epsilon {
		return 0
	}
	return math.Atan2(r3.Dot(n, r3.Cross(a, b)), r3.Dot(a, b))
}
