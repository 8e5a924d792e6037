package kernel

import "github.com/chazu/envelope3d/pkg/envelope"

// Mesh is a triangle mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name,omitempty"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Envelope returns the extent of the mesh vertices. Vertices at the origin
// count as geometry. An empty mesh yields the empty envelope; a trailing
// partial vertex is ignored.
func (m *Mesh) Envelope() envelope.Envelope3D {
	var acc envelope.Accumulator
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		acc.AddPoint(float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2]))
	}
	return acc.Envelope()
}
