package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a rigid transform: rotate, then translate.
// The zero value is the identity transform.
type Transform struct {
	Position r3.Vec   `json:"position"`
	Rotation Rotation `json:"rotation"`
}

// Translation returns a transform that only translates by p.
func Translation(p r3.Vec) Transform {
	return Transform{Position: p, Rotation: Identity}
}

// Apply maps a point from the local frame of t into world space.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(t.Position, t.Rotation.Rotate(p))
}

// ApplyDir maps a direction from the local frame of t into world space.
func (t Transform) ApplyDir(d r3.Vec) r3.Vec {
	return t.Rotation.Rotate(d)
}

// InverseApply maps a world-space point into the local frame of t.
func (t Transform) InverseApply(p r3.Vec) r3.Vec {
	return t.Rotation.Inverse().Rotate(r3.Sub(p, t.Position))
}

// Mul composes two transforms. t.Mul(o) applies o first, then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Position: t.Apply(o.Position),
		Rotation: t.Rotation.Mul(o.Rotation),
	}
}

// Inverse returns the transform undoing t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: inv.Rotate(r3.Scale(-1, t.Position)),
		Rotation: inv,
	}
}

// Equal reports whether the positions agree within tol and the rotations
// agree within tol.
func (t Transform) Equal(o Transform, tol float64) bool {
	return NearlyEqual(t.Position, o.Position, tol) && t.Rotation.Equal(o.Rotation, tol)
}

func (t Transform) String() string {
	axis, angle := t.Rotation.AxisAngle()
	return fmt.Sprintf("pos(%.4f, %.4f, %.4f) rot(%.2f° about %.3f, %.3f, %.3f)",
		t.Position.X, t.Position.Y, t.Position.Z,
		angle*180/math.Pi, axis.X, axis.Y, axis.Z)
}

// NearlyEqual reports whether a and b are within tol of each other.
func NearlyEqual(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

// Degrees converts degrees to radians.
func Degrees(deg float64) float64 {
	return deg * math.Pi / 180.0
}
