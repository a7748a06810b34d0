package snap

import (
	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Alignment is the solver output. Transform is meaningful only when Valid.
type Alignment struct {
	Transform geom.Transform `json:"transform"`
	Valid     bool           `json:"valid"`
}

// Align computes the transform that puts the moving chunk, currently at
// source, onto the target sockets of pairs. Each pair's This socket must be
// a world snapshot taken with the chunk at source.
//
// With one pair the forward axes are made parallel and the up axes
// anti-parallel, and This lands on Other. With two or more pairs the first
// two are used: the direction from the first This socket to the second is
// aligned with the matching Other direction, roll is fixed by the first
// pair's up axes, and the first pair is anchored. With no pairs the result
// is invalid.
func Align(source geom.Transform, pairs []chunk.SocketPair) Alignment {
	switch len(pairs) {
	case 0:
		return Alignment{}
	case 1:
		a := pairs[0]
		return Alignment{
			Transform: alignDirs(source, a, a.This.Frame.Forward, a.Other.Frame.Forward),
			Valid:     true,
		}
	default:
		a, b := pairs[0], pairs[1]
		thisDir := r3.Sub(b.This.Frame.Position, a.This.Frame.Position)
		otherDir := r3.Sub(b.Other.Frame.Position, a.Other.Frame.Position)
		if r3.Norm(thisDir) < geom.Epsilon || r3.Norm(otherDir) < geom.Epsilon {
			return Alignment{
				Transform: alignDirs(source, a, a.This.Frame.Forward, a.Other.Frame.Forward),
				Valid:     true,
			}
		}
		return Alignment{
			Transform: alignDirs(source, a, r3.Unit(thisDir), r3.Unit(otherDir)),
			Valid:     true,
		}
	}
}

// alignDirs rotates thisDir onto otherDir, corrects roll about otherDir so
// that the negated up axis of anchor.This meets anchor.Other's up axis, then
// translates so the anchor sockets coincide.
func alignDirs(source geom.Transform, anchor chunk.SocketPair, thisDir, otherDir r3.Vec) geom.Transform {
	toOther := geom.FromTo(thisDir, otherDir)
	flippedUp := toOther.Rotate(r3.Scale(-1, anchor.This.Frame.Up))
	angle := geom.SignedAngle(flippedUp, anchor.Other.Frame.Up, otherDir)
	delta := geom.AngleAxis(angle, otherDir).Mul(toOther)

	rotation := delta.Mul(source.Rotation)
	local := source.InverseApply(anchor.This.Frame.Position)
	position := r3.Sub(anchor.Other.Frame.Position, rotation.Rotate(local))
	return geom.Transform{Position: position, Rotation: rotation}
}
