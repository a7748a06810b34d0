package chunk

import (
	"fmt"

	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// Name-based UUID namespaces. Socket IDs are derived from the owning chunk
// and socket name so that evaluating the same scene twice yields the same IDs.
var (
	socketNamespace  = uuid.MustParse("5b0f3c9e-7d1a-4e0b-9a61-2f4c8d7e1a30")
	previewNamespace = uuid.MustParse("c2e4a7d1-0b9f-4f3e-8c55-6a1d2e9b7f04")
)

// SocketID uniquely identifies a socket.
type SocketID uuid.UUID

// NewSocketID returns the deterministic ID of socket name on chunk.
func NewSocketID(chunk ChunkID, name string) SocketID {
	return SocketID(uuid.NewSHA1(socketNamespace, []byte(string(chunk)+"/"+name)))
}

func previewSocketID(id SocketID) SocketID {
	return SocketID(uuid.NewSHA1(previewNamespace, id[:]))
}

func (id SocketID) String() string {
	return uuid.UUID(id).String()
}

// Short returns the first eight hex digits, for logs and error messages.
func (id SocketID) Short() string {
	return id.String()[:8]
}

// MarshalText encodes the ID in canonical UUID form.
func (id SocketID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText decodes a canonical UUID.
func (id *SocketID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

// Socket is a world-space snapshot of a socket on a chunk.
type Socket struct {
	ID    SocketID   `json:"id"`
	Name  string     `json:"name"`
	Chunk ChunkID    `json:"chunk"`
	Frame geom.Frame `json:"frame"`
}

func (s Socket) String() string {
	return fmt.Sprintf("%s.%s", s.Chunk, s.Name)
}

// SocketPair proposes connecting This (on the moving chunk) to Other (on a
// stationary chunk).
type SocketPair struct {
	This  Socket `json:"this"`
	Other Socket `json:"other"`
}

// IsSelf reports whether both sockets belong to the same chunk.
func (p SocketPair) IsSelf() bool {
	return p.This.Chunk == p.Other.Chunk
}

// Distance returns the distance between the two socket positions.
func (p SocketPair) Distance() float64 {
	return r3.Norm(r3.Sub(p.Other.Frame.Position, p.This.Frame.Position))
}

func (p SocketPair) String() string {
	return fmt.Sprintf("%s -> %s", p.This, p.Other)
}
