// Package kernel defines the abstract geometry kernel interface used to turn
// chunk blocks into renderable meshes. The sdfx subpackage is the only
// backend; the abstraction keeps the rest of the system independent of it.
package kernel

import "github.com/chazu/snapjoin/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box returns a box with its minimum corner at the origin.
	Box(x, y, z float64) Solid

	Union(a, b Solid) Solid

	// Transform applies a rigid transform: rotation first, then translation.
	Transform(s Solid, t geom.Transform) Solid

	ToMesh(s Solid) (*Mesh, error)
}
