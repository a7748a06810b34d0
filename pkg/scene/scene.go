// Package scene holds the chunks of one evaluated scene script.
package scene

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/chunk"
)

// Scene is the ordered set of chunks produced by evaluation. Once built it
// is never mutated in place; Without and Replace return new scenes with a
// bumped Version.
type Scene struct {
	chunks    []*chunk.Chunk
	nameIndex map[string]int
	Version   uint64
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{nameIndex: make(map[string]int)}
}

// Add appends a chunk. It does not check for duplicates; a later chunk with
// the same name shadows the earlier one in lookups and Validate reports it.
func (s *Scene) Add(c *chunk.Chunk) {
	s.chunks = append(s.chunks, c)
	if c.Name != "" {
		s.nameIndex[c.Name] = len(s.chunks) - 1
	}
}

// Lookup returns the chunk with the given name, or nil.
func (s *Scene) Lookup(name string) *chunk.Chunk {
	i, ok := s.nameIndex[name]
	if !ok {
		return nil
	}
	return s.chunks[i]
}

// MustLookup returns the chunk with the given name, or panics.
func (s *Scene) MustLookup(name string) *chunk.Chunk {
	c := s.Lookup(name)
	if c == nil {
		panic(fmt.Sprintf("scene: no chunk named %q", name))
	}
	return c
}

// Get returns the chunk with the given ID, or nil.
func (s *Scene) Get(id chunk.ChunkID) *chunk.Chunk {
	for i := len(s.chunks) - 1; i >= 0; i-- {
		if s.chunks[i].ID == id {
			return s.chunks[i]
		}
	}
	return nil
}

// Chunks returns the chunks in declaration order.
func (s *Scene) Chunks() []*chunk.Chunk {
	out := make([]*chunk.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Len returns the number of chunks.
func (s *Scene) Len() int {
	return len(s.chunks)
}

// SocketCount returns the total number of sockets across all chunks.
func (s *Scene) SocketCount() int {
	n := 0
	for _, c := range s.chunks {
		n += len(c.Sockets)
	}
	return n
}

// Without returns a copy of s minus the chunk with the given ID.
func (s *Scene) Without(id chunk.ChunkID) *Scene {
	return s.Replace([]chunk.ChunkID{id})
}

// Replace returns a copy of s with the chunks named by remove taken out and
// add appended. IDs in remove that are not present are ignored.
func (s *Scene) Replace(remove []chunk.ChunkID, add ...*chunk.Chunk) *Scene {
	drop := make(map[chunk.ChunkID]bool, len(remove))
	for _, id := range remove {
		drop[id] = true
	}
	next := New()
	next.Version = s.Version + 1
	for _, c := range s.chunks {
		if !drop[c.ID] {
			next.Add(c)
		}
	}
	for _, c := range add {
		next.Add(c)
	}
	return next
}

// Place returns a copy of s in which the chunk sharing c's ID is replaced by
// c, keeping its position in declaration order.
func (s *Scene) Place(c *chunk.Chunk) (*Scene, error) {
	next := New()
	next.Version = s.Version + 1
	found := false
	for _, existing := range s.chunks {
		if existing.ID == c.ID {
			next.Add(c)
			found = true
			continue
		}
		next.Add(existing)
	}
	if !found {
		return nil, fmt.Errorf("scene: no chunk %q to place", c.ID)
	}
	return next, nil
}
