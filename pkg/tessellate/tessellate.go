// Package tessellate turns scene chunks into triangle meshes using a
// geometry kernel. One mesh is produced per chunk.
package tessellate

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/kernel"
	"github.com/chazu/snapjoin/pkg/scene"
)

// Chunk builds the union of c's blocks, placed at the chunk's world
// transform, and meshes it. A chunk without blocks yields a nil mesh.
func Chunk(c *chunk.Chunk, k kernel.Kernel) (*kernel.Mesh, error) {
	if c == nil || len(c.Blocks) == 0 {
		return nil, nil
	}

	var solid kernel.Solid
	for _, b := range c.Blocks {
		s := k.Box(b.Size.X, b.Size.Y, b.Size.Z)
		// Block pose is chunk-local; compose it under the chunk transform.
		s = k.Transform(s, c.Transform.Mul(b.Pose))
		if solid == nil {
			solid = s
			continue
		}
		solid = k.Union(solid, s)
	}

	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: chunk %s: %w", c.Name, err)
	}
	mesh.ChunkName = c.Name
	return mesh, nil
}

// Scene meshes every chunk of s in declaration order, skipping chunks
// without blocks. The scene is never mutated.
func Scene(s *scene.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	var meshes []*kernel.Mesh
	for _, c := range s.Chunks() {
		m, err := Chunk(c, k)
		if err != nil {
			return nil, err
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}
