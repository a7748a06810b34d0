// Package chunk defines the rigid assemblies the snapping engine moves
// around: chunks made of blocks, and the oriented sockets they expose.
//
// A chunk is a value. Its topology (blocks and socket specs) is fixed at
// construction; moving a chunk produces a copy with a new transform, and
// socket world frames are always derived from the current transform.
package chunk

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// ChunkID identifies a chunk. Preview duplicates share the ID of the chunk
// they shadow.
type ChunkID string

// Block is a rectangular piece of a chunk. Its minimum corner sits at the
// origin of Pose, which is expressed in the chunk's local frame.
type Block struct {
	Size r3.Vec         `json:"size"`
	Pose geom.Transform `json:"pose"`
}

// Center returns the block center in the chunk's local frame.
func (b Block) Center() r3.Vec {
	return b.Pose.Apply(r3.Scale(0.5, b.Size))
}

// SocketSpec is a socket as declared on a chunk, in chunk-local space.
type SocketSpec struct {
	ID    SocketID   `json:"id"`
	Name  string     `json:"name"`
	Local geom.Frame `json:"local"`
}

// Chunk is a rigid assembly with a world transform, a set of blocks and a
// fixed set of sockets.
type Chunk struct {
	ID        ChunkID        `json:"id"`
	Name      string         `json:"name"`
	Transform geom.Transform `json:"transform"`
	Blocks    []Block        `json:"blocks"`
	Sockets   []SocketSpec   `json:"sockets"`
}

// New creates an empty chunk named name at transform t.
func New(name string, t geom.Transform) *Chunk {
	return &Chunk{
		ID:        ChunkID(name),
		Name:      name,
		Transform: t,
	}
}

// AddBlock appends a block. Only valid while the chunk is being built.
func (c *Chunk) AddBlock(b Block) {
	c.Blocks = append(c.Blocks, b)
}

// AddSocket declares a socket with a chunk-local frame and returns its spec.
// Only valid while the chunk is being built.
func (c *Chunk) AddSocket(name string, local geom.Frame) SocketSpec {
	spec := SocketSpec{
		ID:    NewSocketID(c.ID, name),
		Name:  name,
		Local: local,
	}
	c.Sockets = append(c.Sockets, spec)
	return spec
}

// Moved returns a copy of c placed at t. Blocks and sockets are shared with
// c; neither is mutated after construction.
func (c *Chunk) Moved(t geom.Transform) *Chunk {
	moved := *c
	moved.Transform = t
	return &moved
}

// WorldSockets returns every socket with its frame in world space, in
// declaration order.
func (c *Chunk) WorldSockets() []Socket {
	sockets := make([]Socket, 0, len(c.Sockets))
	for _, spec := range c.Sockets {
		sockets = append(sockets, c.world(spec))
	}
	return sockets
}

// Socket returns the world-space socket with the given ID.
func (c *Chunk) Socket(id SocketID) (Socket, bool) {
	for _, spec := range c.Sockets {
		if spec.ID == id {
			return c.world(spec), true
		}
	}
	return Socket{}, false
}

// MustSocket returns the world-space socket with the given ID, or panics.
func (c *Chunk) MustSocket(id SocketID) Socket {
	s, ok := c.Socket(id)
	if !ok {
		panic(fmt.Sprintf("chunk: %s has no socket %s", c.Name, id))
	}
	return s
}

// SocketByName returns the world-space socket with the given name.
func (c *Chunk) SocketByName(name string) (Socket, bool) {
	for _, spec := range c.Sockets {
		if spec.Name == name {
			return c.world(spec), true
		}
	}
	return Socket{}, false
}

func (c *Chunk) world(spec SocketSpec) Socket {
	return Socket{
		ID:    spec.ID,
		Name:  spec.Name,
		Chunk: c.ID,
		Frame: spec.Local.Transformed(c.Transform),
	}
}

// Duplicate returns a preview copy of c: same identity, same geometry, same
// transform, but every socket carries a fresh ID. The returned map sends
// each preview socket ID to the real socket ID it shadows.
func Duplicate(c *Chunk) (*Chunk, map[SocketID]SocketID) {
	dup := *c
	dup.Sockets = make([]SocketSpec, len(c.Sockets))
	mapping := make(map[SocketID]SocketID, len(c.Sockets))
	for i, spec := range c.Sockets {
		previewID := previewSocketID(spec.ID)
		dup.Sockets[i] = SocketSpec{ID: previewID, Name: spec.Name, Local: spec.Local}
		mapping[previewID] = spec.ID
	}
	return &dup, mapping
}
