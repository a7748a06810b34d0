package scene

import (
	"fmt"
	"sync"

	"github.com/chazu/snapjoin/pkg/chunk"
)

// Store holds the current scene and applies the results of drags to it.
// It satisfies the preview package's Merger interface.
type Store struct {
	mu    sync.RWMutex
	scene *Scene
}

// NewStore creates a store holding s, or an empty scene when s is nil.
func NewStore(s *Scene) *Store {
	if s == nil {
		s = New()
	}
	return &Store{scene: s}
}

// Scene returns the current scene.
func (st *Store) Scene() *Scene {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.scene
}

// Set replaces the current scene, as after re-evaluating a script.
func (st *Store) Set(s *Scene) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.scene = s
}

// Place moves an existing chunk to c's transform.
func (st *Store) Place(c *chunk.Chunk) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	next, err := st.scene.Place(c)
	if err != nil {
		return err
	}
	st.scene = next
	return nil
}

// Merge fuses moving with every chunk its pairs point at. The first target
// chunk anchors the result. The fused chunks are removed from the scene and
// the merged chunk takes their place.
func (st *Store) Merge(moving *chunk.Chunk, pairs []chunk.SocketPair) (*chunk.Chunk, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	var parts []*chunk.Chunk
	seen := map[chunk.ChunkID]bool{moving.ID: true}
	for _, p := range pairs {
		if p.This.Chunk != moving.ID {
			return nil, fmt.Errorf("scene: pair %s does not start on %q", p, moving.ID)
		}
		id := p.Other.Chunk
		if seen[id] {
			continue
		}
		seen[id] = true
		target := st.scene.Get(id)
		if target == nil {
			return nil, fmt.Errorf("scene: merge target %q not in scene", id)
		}
		parts = append(parts, target)
	}
	parts = append(parts, moving)

	merged, err := chunk.Merge(parts, pairs)
	if err != nil {
		return nil, err
	}

	remove := make([]chunk.ChunkID, 0, len(parts))
	for _, p := range parts {
		remove = append(remove, p.ID)
	}
	st.scene = st.scene.Replace(remove, merged)
	return merged, nil
}
