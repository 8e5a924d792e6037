// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling behind this interface and report
// the extent of every solid as an envelope.Envelope3D, so callers can prune
// and overlap-test solids without tessellating them.
package kernel

import "github.com/chazu/envelope3d/pkg/envelope"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// Envelope returns the axis-aligned extent of the solid.
	Envelope() envelope.Envelope3D
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Extent returns the merged envelope of the given solids. Nil solids are
// skipped.
func Extent(solids ...Solid) envelope.Envelope3D {
	var acc envelope.Accumulator
	for _, s := range solids {
		if s == nil {
			continue
		}
		acc.Add(s.Envelope())
	}
	return acc.Envelope()
}
