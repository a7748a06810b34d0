package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/snapjoin/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const testCells = 40

func assertBounds(t *testing.T, gotMin, gotMax, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(gotMin[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, gotMin[i], wantMin[i])
		}
		if math.Abs(gotMax[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, gotMax[i], wantMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := NewWithCells(testCells)
	mesh, err := k.ToMesh(k.Box(4, 2, 1))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() || mesh.TriangleCount() == 0 {
		t.Fatal("expected a non-empty mesh")
	}
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != mesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3", len(mesh.Indices))
	}
}

func TestBoxMinCornerAtOrigin(t *testing.T) {
	k := New()
	min, max := k.Box(4, 2, 1).BoundingBox()
	assertBounds(t, min, max, [3]float64{0, 0, 0}, [3]float64{4, 2, 1}, 1e-6)
}

func TestTransformTranslates(t *testing.T) {
	k := New()
	moved := k.Transform(k.Box(1, 1, 1), geom.Translation(r3.Vec{X: 10, Y: 20, Z: 30}))
	min, max := moved.BoundingBox()
	assertBounds(t, min, max, [3]float64{10, 20, 30}, [3]float64{11, 21, 31}, 1e-6)
}

func TestTransformRotatesThenTranslates(t *testing.T) {
	k := New()
	// A long box along X turned a quarter about Z extends along Y.
	tr := geom.Transform{
		Position: r3.Vec{X: 5},
		Rotation: geom.AngleAxis(math.Pi/2, r3.Vec{Z: 1}),
	}
	min, max := k.Transform(k.Box(10, 1, 1), tr).BoundingBox()
	assertBounds(t, min, max, [3]float64{4, 0, 0}, [3]float64{5, 10, 1}, 1e-6)
}

func TestUnion(t *testing.T) {
	k := NewWithCells(testCells)
	a := k.Box(1, 1, 1)
	b := k.Transform(k.Box(1, 1, 1), geom.Translation(r3.Vec{Y: 1}))
	u := k.Union(a, b)

	min, max := u.BoundingBox()
	assertBounds(t, min, max, [3]float64{0, 0, 0}, [3]float64{1, 2, 1}, 1e-6)

	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	c := mesh.Centroid()
	if math.Abs(c[1]-1) > 0.2 {
		t.Errorf("centroid Y = %f, expected near 1", c[1])
	}
}

func TestNewWithCellsFallback(t *testing.T) {
	if k := NewWithCells(0); k.cells != DefaultMeshCells {
		t.Fatalf("cells = %d, want %d", k.cells, DefaultMeshCells)
	}
}
