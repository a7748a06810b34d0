package snap

import (
	"github.com/chazu/snapjoin/pkg/chunk"
	"gonum.org/v1/gonum/spatial/r3"
)

// FindCandidates returns every pair {This, Other} where This is a socket of
// moving and Other is a socket of a scene chunk, the two positions are
// within cfg.CandidateRadius, and the up axes face each other.
//
// Scene chunks sharing moving's ID produce self-pairs; they are kept and
// can be recognised with SocketPair.IsSelf. A socket never pairs with
// itself. Output order is moving's sockets in declaration order, then scene
// chunks in scene order, then their sockets in declaration order.
func FindCandidates(moving *chunk.Chunk, scene []*chunk.Chunk, cfg Config) []chunk.SocketPair {
	var pairs []chunk.SocketPair
	for _, this := range moving.WorldSockets() {
		for _, c := range scene {
			for _, other := range c.WorldSockets() {
				if other.ID == this.ID {
					continue
				}
				if !near(this, other, cfg.CandidateRadius) {
					continue
				}
				if !opposed(this, other, cfg.MinOpposition) {
					continue
				}
				pairs = append(pairs, chunk.SocketPair{This: this, Other: other})
			}
		}
	}
	return pairs
}

func near(a, b chunk.Socket, radius float64) bool {
	return r3.Norm(r3.Sub(a.Frame.Position, b.Frame.Position)) <= radius
}

// opposed reports whether a's up axis points into b, within minCos.
func opposed(a, b chunk.Socket, minCos float64) bool {
	ua, ub := a.Frame.Up, b.Frame.Up
	na, nb := r3.Norm(ua), r3.Norm(ub)
	if na == 0 || nb == 0 {
		return false
	}
	return -r3.Dot(ua, ub)/(na*nb) >= minCos
}
