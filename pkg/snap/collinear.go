package snap

import (
	"math"

	"github.com/chazu/snapjoin/pkg/chunk"
	"gonum.org/v1/gonum/spatial/r3"
)

// FilterCollinear keeps pairs in list order, skipping any pair that is
// collinear with one already kept. Pairs whose target or source positions
// coincide with a kept pair are skipped as well: they carry no direction.
// The input slice is not modified.
func FilterCollinear(pairs []chunk.SocketPair, tol float64) []chunk.SocketPair {
	kept := make([]chunk.SocketPair, 0, len(pairs))
next:
	for _, p := range pairs {
		for _, k := range kept {
			if Collinear(k, p, tol) {
				continue next
			}
		}
		kept = append(kept, p)
	}
	return kept
}

// Collinear reports whether b adds no rotational information to a: the
// displacement between their targets runs along either target's up axis,
// or the two pairs share a target or source position.
func Collinear(a, b chunk.SocketPair, tol float64) bool {
	if coincident(a.Other.Frame.Position, b.Other.Frame.Position) ||
		coincident(a.This.Frame.Position, b.This.Frame.Position) {
		return true
	}
	d := r3.Unit(r3.Sub(a.Other.Frame.Position, b.Other.Frame.Position))
	return alongAxis(a.Other.Frame.Up, d, tol) || alongAxis(b.Other.Frame.Up, d, tol)
}

func alongAxis(axis, dir r3.Vec, tol float64) bool {
	if r3.Norm(axis) == 0 {
		return false
	}
	return 1-math.Abs(r3.Dot(r3.Unit(axis), dir)) < tol
}

func coincident(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-9
}
