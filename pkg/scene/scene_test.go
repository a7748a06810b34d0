package scene

import (
	"strings"
	"testing"

	"github.com/chazu/snapjoin/pkg/chunk"
	"github.com/chazu/snapjoin/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	up   = r3.Vec{Y: 1}
	down = r3.Vec{Y: -1}
	fwd  = r3.Vec{X: 1}
)

func plate(name string, t geom.Transform) *chunk.Chunk {
	c := chunk.New(name, t)
	c.AddBlock(chunk.Block{Size: r3.Vec{X: 2, Y: 1, Z: 1}})
	c.AddSocket("top-0", geom.Frame{Position: r3.Vec{X: 0.5, Y: 1, Z: 0.5}, Forward: fwd, Up: up})
	c.AddSocket("top-1", geom.Frame{Position: r3.Vec{X: 1.5, Y: 1, Z: 0.5}, Forward: fwd, Up: up})
	c.AddSocket("bottom-0", geom.Frame{Position: r3.Vec{X: 0.5, Z: 0.5}, Forward: fwd, Up: down})
	c.AddSocket("bottom-1", geom.Frame{Position: r3.Vec{X: 1.5, Z: 0.5}, Forward: fwd, Up: down})
	return c
}

func buildScene() *Scene {
	s := New()
	s.Add(plate("base", geom.Transform{}))
	s.Add(plate("top", geom.Translation(r3.Vec{Y: 1})))
	s.Add(plate("loose", geom.Translation(r3.Vec{X: 5})))
	return s
}

func TestLookup(t *testing.T) {
	s := buildScene()
	require.Equal(t, 3, s.Len())
	assert.Equal(t, 12, s.SocketCount())

	assert.Equal(t, "top", s.Lookup("top").Name)
	assert.Nil(t, s.Lookup("missing"))
	assert.Equal(t, "loose", s.Get("loose").Name)
	assert.Nil(t, s.Get("missing"))
	assert.Panics(t, func() { s.MustLookup("missing") })
}

func TestChunksInDeclarationOrder(t *testing.T) {
	s := buildScene()
	var names []string
	for _, c := range s.Chunks() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"base", "top", "loose"}, names)

	// The returned slice is a copy.
	s.Chunks()[0] = nil
	assert.NotNil(t, s.Chunks()[0])
}

func TestWithoutAndReplace(t *testing.T) {
	s := buildScene()
	w := s.Without("top")
	assert.Equal(t, 2, w.Len())
	assert.Nil(t, w.Lookup("top"))
	assert.Equal(t, s.Version+1, w.Version)
	assert.Equal(t, 3, s.Len(), "original untouched")

	r := s.Replace([]chunk.ChunkID{"base", "top"}, plate("stack", geom.Transform{}))
	var names []string
	for _, c := range r.Chunks() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"loose", "stack"}, names)
	assert.Equal(t, "stack", r.Lookup("stack").Name)
}

func TestPlace(t *testing.T) {
	s := buildScene()
	moved := s.MustLookup("loose").Moved(geom.Translation(r3.Vec{X: 7}))

	next, err := s.Place(moved)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 7}, next.MustLookup("loose").Transform.Position)
	assert.Equal(t, r3.Vec{X: 5}, s.MustLookup("loose").Transform.Position)

	_, err = s.Place(plate("ghost", geom.Transform{}))
	assert.Error(t, err)
}

func TestStoreMerge(t *testing.T) {
	s := New()
	base := plate("base", geom.Transform{})
	loose := plate("loose", geom.Translation(r3.Vec{X: 5}))
	s.Add(base)
	s.Add(loose)
	st := NewStore(s)

	moved := loose.Moved(geom.Translation(r3.Vec{Y: 1}))
	var pairs []chunk.SocketPair
	for _, n := range []string{"0", "1"} {
		pairs = append(pairs, chunk.SocketPair{
			This:  mustSocket(t, moved, "bottom-"+n),
			Other: mustSocket(t, base, "top-"+n),
		})
	}

	merged, err := st.Merge(moved, pairs)
	require.NoError(t, err)
	assert.Equal(t, "base+loose", merged.Name)
	assert.Len(t, merged.Sockets, 4)

	cur := st.Scene()
	require.Equal(t, 1, cur.Len())
	assert.Same(t, merged, cur.MustLookup("base+loose"))
}

func TestStoreMergeRejectsForeignPairs(t *testing.T) {
	base := plate("base", geom.Transform{})
	loose := plate("loose", geom.Transform{})
	s := New()
	s.Add(base)
	st := NewStore(s)

	pair := chunk.SocketPair{This: mustSocket(t, loose, "bottom-0"), Other: mustSocket(t, base, "top-0")}
	_, err := st.Merge(base, []chunk.SocketPair{pair})
	assert.ErrorContains(t, err, "does not start on")

	_, err = st.Merge(loose, []chunk.SocketPair{{This: pair.This, Other: mustSocket(t, plate("nowhere", geom.Transform{}), "top-0")}})
	assert.ErrorContains(t, err, "not in scene")
}

func TestStorePlaceAndSet(t *testing.T) {
	st := NewStore(nil)
	assert.Equal(t, 0, st.Scene().Len())

	st.Set(buildScene())
	require.NoError(t, st.Place(st.Scene().MustLookup("top").Moved(geom.Transform{})))
	assert.Equal(t, r3.Vec{}, st.Scene().MustLookup("top").Transform.Position)
	assert.Error(t, st.Place(plate("ghost", geom.Transform{})))
}

func mustSocket(t *testing.T, c *chunk.Chunk, name string) chunk.Socket {
	t.Helper()
	s, ok := c.SocketByName(name)
	require.True(t, ok, "no socket %s on %s", name, c.Name)
	return s
}

// hasFinding reports whether errs contains a finding of severity sev whose
// message contains substr.
func hasFinding(errs []ValidationError, sev ValidationSeverity, substr string) bool {
	for _, e := range errs {
		if e.Severity == sev && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
