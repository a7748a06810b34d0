package chunk

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPairs is returned when a merge is requested without any socket pairs.
var ErrNoPairs = errors.New("chunk: merge requires at least one socket pair")

// Merge fuses parts into one chunk. The first part anchors the result: the
// merged chunk takes its transform, and every other part's blocks and
// sockets are re-expressed in that frame. Sockets named by pairs are
// consumed by the connection and do not appear on the result. Socket names
// are prefixed with their original chunk name to keep them unique.
//
// Every chunk referenced by a pair must be among parts, and every socket
// must exist on its chunk.
func Merge(parts []*Chunk, pairs []SocketPair) (*Chunk, error) {
	if len(parts) == 0 {
		return nil, errors.New("chunk: merge requires at least one part")
	}
	if len(pairs) == 0 {
		return nil, ErrNoPairs
	}

	byID := make(map[ChunkID]*Chunk, len(parts))
	for _, p := range parts {
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("chunk: merge: part %q listed twice", p.ID)
		}
		byID[p.ID] = p
	}

	consumed := make(map[SocketID]bool, 2*len(pairs))
	for i, pair := range pairs {
		for _, s := range []Socket{pair.This, pair.Other} {
			owner, ok := byID[s.Chunk]
			if !ok {
				return nil, fmt.Errorf("chunk: merge: pair %d references chunk %q which is not being merged", i, s.Chunk)
			}
			if _, ok := owner.Socket(s.ID); !ok {
				return nil, fmt.Errorf("chunk: merge: pair %d references unknown socket %s on %q", i, s.ID.Short(), s.Chunk)
			}
			consumed[s.ID] = true
		}
	}

	anchor := parts[0].Transform
	toAnchor := anchor.Inverse()

	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, p.Name)
	}
	name := strings.Join(names, "+")
	merged := New(name, anchor)

	for _, p := range parts {
		rel := toAnchor.Mul(p.Transform)
		for _, b := range p.Blocks {
			merged.Blocks = append(merged.Blocks, Block{Size: b.Size, Pose: rel.Mul(b.Pose)})
		}
		for _, spec := range p.Sockets {
			if consumed[spec.ID] {
				continue
			}
			merged.Sockets = append(merged.Sockets, SocketSpec{
				ID:    spec.ID,
				Name:  p.Name + "/" + spec.Name,
				Local: spec.Local.Transformed(rel),
			})
		}
	}

	return merged, nil
}
