package snap

import (
	"sort"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
)

// Result is the outcome of one query.
type Result struct {
	State     ConnectionState `json:"state"`
	Transform geom.Transform  `json:"transform"`
	Valid     bool            `json:"valid"`
	// Pairs are the committable pairs, each socket used at most once,
	// nearest first. They are what a merge consumes.
	Pairs []chunk.SocketPair `json:"pairs"`
	// Anchors are the independent pairs the solver was given.
	Anchors []chunk.SocketPair `json:"anchors"`
}

// HasPairs reports whether committing now would merge anything.
func (r Result) HasPairs() bool {
	return r.Valid && len(r.Pairs) > 0
}

// Resolve runs the whole pipeline for moving, placed at its current
// transform, against scene. Scene may contain a chunk with moving's ID;
// pairs onto it are self-pairs and never snap.
//
// When no snap is possible the result is invalid and its Transform is
// moving's current transform.
func Resolve(moving *chunk.Chunk, scene []*chunk.Chunk, cfg Config) Result {
	candidates := FindCandidates(moving, scene, cfg)

	var foreign []chunk.SocketPair
	for _, p := range candidates {
		if !p.IsSelf() {
			foreign = append(foreign, p)
		}
	}

	var committable []chunk.SocketPair
	for _, p := range foreign {
		if p.Distance() <= cfg.CommitRadius {
			committable = append(committable, p)
		}
	}

	pairs := uniquePairs(committable)
	independent := FilterCollinear(pairs, cfg.CollinearTolerance)

	state := Classify(Observation{
		Candidates:  len(candidates),
		Foreign:     len(foreign),
		Committable: len(pairs),
		Independent: len(independent),
	})
	if !state.Snappable() {
		return Result{State: state, Transform: moving.Transform}
	}

	alignment := Align(moving.Transform, independent)
	anchors := independent
	if len(anchors) > 2 {
		anchors = anchors[:2]
	}
	return Result{
		State:     state,
		Transform: alignment.Transform,
		Valid:     alignment.Valid,
		Pairs:     pairs,
		Anchors:   anchors,
	}
}

// uniquePairs orders pairs nearest first and drops any pair reusing a
// socket already taken by a nearer one. Ties keep candidate order.
func uniquePairs(pairs []chunk.SocketPair) []chunk.SocketPair {
	sorted := make([]chunk.SocketPair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance() < sorted[j].Distance()
	})

	usedThis := make(map[chunk.SocketID]bool, len(sorted))
	usedOther := make(map[chunk.SocketID]bool, len(sorted))
	out := make([]chunk.SocketPair, 0, len(sorted))
	for _, p := range sorted {
		if usedThis[p.This.ID] || usedOther[p.Other.ID] {
			continue
		}
		usedThis[p.This.ID] = true
		usedOther[p.Other.ID] = true
		out = append(out, p)
	}
	return out
}
