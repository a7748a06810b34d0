package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "X")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "Y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "Z")
}

func TestZeroRotationIsIdentity(t *testing.T) {
	var r Rotation
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	assertVec(t, v, r.Rotate(v))
	assert.True(t, r.Equal(Identity, tol))
}

func TestAngleAxisQuarterTurn(t *testing.T) {
	r := AngleAxis(math.Pi/2, r3.Vec{Z: 1})
	assertVec(t, r3.Vec{Y: 1}, r.Rotate(r3.Vec{X: 1}))
	assert.InDelta(t, math.Pi/2, r.Angle(), tol)
}

func TestAngleAxisDegenerate(t *testing.T) {
	assert.Equal(t, Identity, AngleAxis(0, r3.Vec{X: 1}))
	assert.Equal(t, Identity, AngleAxis(1, r3.Vec{}))
}

func TestFromTo(t *testing.T) {
	tests := []struct {
		name     string
		from, to r3.Vec
	}{
		{"same", r3.Vec{X: 1}, r3.Vec{X: 1}},
		{"quarter", r3.Vec{X: 1}, r3.Vec{Y: 1}},
		{"oblique", r3.Vec{X: 1, Y: 2, Z: -1}, r3.Vec{X: -3, Y: 0.5, Z: 2}},
		{"unnormalized", r3.Vec{Z: 5}, r3.Vec{X: 0.1}},
		{"anti-parallel x", r3.Vec{X: 1}, r3.Vec{X: -1}},
		{"anti-parallel oblique", r3.Vec{X: 1, Y: 1}, r3.Vec{X: -1, Y: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromTo(tt.from, tt.to)
			assertVec(t, r3.Unit(tt.to), r.Rotate(r3.Unit(tt.from)))
		})
	}
}

func TestFromToShortestArc(t *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{X: 1, Y: 1}
	r := FromTo(a, b)
	assert.InDelta(t, math.Pi/4, r.Angle(), tol)

	// The rotation axis is perpendicular to both inputs.
	axis, _ := r.AxisAngle()
	assert.InDelta(t, 0, r3.Dot(axis, a), tol)
	assert.InDelta(t, 0, r3.Dot(axis, b), tol)
}

func TestFromToAntiParallelDeterministic(t *testing.T) {
	r1 := FromTo(r3.Vec{Y: 1}, r3.Vec{Y: -1})
	r2 := FromTo(r3.Vec{Y: 1}, r3.Vec{Y: -1})
	assert.Equal(t, r1, r2)
	assert.InDelta(t, math.Pi, r1.Angle(), 1e-9)
}

func TestMulOrder(t *testing.T) {
	rx := AngleAxis(math.Pi/2, r3.Vec{X: 1})
	rz := AngleAxis(math.Pi/2, r3.Vec{Z: 1})

	// rz.Mul(rx) applies rx first: Y -> Z -> Z.
	assertVec(t, r3.Vec{Z: 1}, rz.Mul(rx).Rotate(r3.Vec{Y: 1}))
	// rx.Mul(rz) applies rz first: Y -> -X -> -X.
	assertVec(t, r3.Vec{X: -1}, rx.Mul(rz).Rotate(r3.Vec{Y: 1}))
}

func TestInverse(t *testing.T) {
	r := AngleAxis(0.7, r3.Vec{X: 1, Y: -2, Z: 0.5})
	v := r3.Vec{X: 0.3, Y: 4, Z: -1}
	assertVec(t, v, r.Inverse().Rotate(r.Rotate(v)))
	assert.True(t, r.Mul(r.Inverse()).Equal(Identity, tol))
}

func TestEqualTreatsNegatedQuaternionAsSame(t *testing.T) {
	r := AngleAxis(1.1, r3.Vec{Y: 1})
	neg := Rotation{Real: -r.Real, Imag: -r.Imag, Jmag: -r.Jmag, Kmag: -r.Kmag}
	assert.True(t, r.Equal(neg, tol))
}

func TestAxisAngleRoundTrip(t *testing.T) {
	want := r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1})
	r := AngleAxis(2.0, want)
	axis, angle := r.AxisAngle()
	assert.InDelta(t, 2.0, angle, tol)
	assertVec(t, want, axis)

	axis, angle = Identity.AxisAngle()
	assert.Equal(t, 0.0, angle)
	assert.Equal(t, r3.Vec{X: 1}, axis)
}

func TestMatrixMatchesRotate(t *testing.T) {
	r := AngleAxis(0.9, r3.Vec{X: 0.2, Y: 1, Z: -0.4})
	m := r.Matrix()
	v := r3.Vec{X: 1.5, Y: -2, Z: 0.25}
	got := r3.Vec{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
	assertVec(t, r.Rotate(v), got)
}

func TestSignedAngle(t *testing.T) {
	tests := []struct {
		name           string
		from, to, axis r3.Vec
		want           float64
	}{
		{"positive quarter", r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{Z: 1}, math.Pi / 2},
		{"negative quarter", r3.Vec{Y: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1}, -math.Pi / 2},
		{"projected", r3.Vec{X: 1, Z: 5}, r3.Vec{Y: 1, Z: -3}, r3.Vec{Z: 1}, math.Pi / 2},
		{"parallel to axis", r3.Vec{Z: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1}, 0},
		{"zero axis", r3.Vec{X: 1}, r3.Vec{Y: 1}, r3.Vec{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SignedAngle(tt.from, tt.to, tt.axis), tol)
		})
	}
}

func TestSignedAngleRotatesFromOntoTo(t *testing.T) {
	axis := r3.Unit(r3.Vec{X: 1, Y: 1})
	from := r3.Vec{Z: 1}
	to := r3.Unit(r3.Vec{X: 1, Y: -1})
	a := SignedAngle(from, to, axis)
	assertVec(t, to, AngleAxis(a, axis).Rotate(from))
}

func TestTransformApplyInverse(t *testing.T) {
	tr := Transform{
		Position: r3.Vec{X: 3, Y: -1, Z: 2},
		Rotation: AngleAxis(0.4, r3.Vec{X: 1, Y: 2, Z: 3}),
	}
	p := r3.Vec{X: 0.5, Y: 0.25, Z: -7}
	assertVec(t, p, tr.InverseApply(tr.Apply(p)))
	assertVec(t, p, tr.Inverse().Apply(tr.Apply(p)))
	require.True(t, tr.Mul(tr.Inverse()).Equal(Transform{}, 1e-9))
}

func TestTransformMulOrder(t *testing.T) {
	move := Translation(r3.Vec{X: 10})
	turn := Transform{Rotation: AngleAxis(math.Pi/2, r3.Vec{Z: 1})}
	p := r3.Vec{X: 1}

	// move.Mul(turn): turn first, then move.
	assertVec(t, r3.Vec{X: 10, Y: 1}, move.Mul(turn).Apply(p))
	// turn.Mul(move): move first, then turn.
	assertVec(t, r3.Vec{Y: 11}, turn.Mul(move).Apply(p))
}

func TestFrameTransformed(t *testing.T) {
	f := Frame{Position: r3.Vec{X: 1}, Forward: r3.Vec{X: 1}, Up: r3.Vec{Y: 1}}
	tr := Transform{Position: r3.Vec{Z: 2}, Rotation: AngleAxis(math.Pi/2, r3.Vec{Y: 1})}
	w := f.Transformed(tr)
	assertVec(t, r3.Vec{Z: 1}, w.Position)
	assertVec(t, r3.Vec{Z: -1}, w.Forward)
	assertVec(t, r3.Vec{Y: 1}, w.Up)
	assert.True(t, w.Orthonormal(1e-9))
}

func TestFrameRight(t *testing.T) {
	f := Frame{Forward: r3.Vec{X: 1}, Up: r3.Vec{Y: 1}}
	assertVec(t, r3.Vec{Z: -1}, f.Right())
}

func TestFrameOrthonormal(t *testing.T) {
	assert.False(t, Frame{Forward: r3.Vec{X: 2}, Up: r3.Vec{Y: 1}}.Orthonormal(1e-6))
	assert.False(t, Frame{Forward: r3.Vec{X: 1}, Up: r3.Unit(r3.Vec{X: 1, Y: 1})}.Orthonormal(1e-6))
	assert.True(t, Frame{Forward: r3.Vec{Z: -1}, Up: r3.Vec{X: 1}}.Orthonormal(1e-6))
}
