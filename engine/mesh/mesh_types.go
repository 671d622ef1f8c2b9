package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInvalidMesh is wrapped by every Validate failure.
var ErrInvalidMesh = errors.New("invalid mesh")

// GeometryType selects how a submesh's index list is assembled into primitives.
type GeometryType int

const (
	// GeometryTriangles treats every three indices as one triangle.
	GeometryTriangles GeometryType = iota
	// GeometryLines treats every two indices as one line segment.
	GeometryLines
)

// String returns the lowercase name used in config files.
func (g GeometryType) String() string {
	switch g {
	case GeometryTriangles:
		return "triangles"
	case GeometryLines:
		return "lines"
	default:
		return fmt.Sprintf("GeometryType(%d)", int(g))
	}
}

// IndicesPerPrimitive returns how many indices make up one primitive of this geometry.
func (g GeometryType) IndicesPerPrimitive() int {
	if g == GeometryLines {
		return 2
	}
	return 3
}

// Topology maps the geometry type to its WebGPU primitive topology.
//
// Returns:
//   - wgpu.PrimitiveTopology: TriangleList or LineList
func (g GeometryType) Topology() wgpu.PrimitiveTopology {
	if g == GeometryLines {
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// ParseGeometryType parses a config value. An empty string means triangles.
//
// Parameters:
//   - s: "triangles", "lines" or ""
//
// Returns:
//   - GeometryType: the parsed geometry
//   - error: error if s names no known geometry
func ParseGeometryType(s string) (GeometryType, error) {
	switch s {
	case "", "triangles":
		return GeometryTriangles, nil
	case "lines":
		return GeometryLines, nil
	default:
		return GeometryTriangles, fmt.Errorf("unknown geometry type %q", s)
	}
}

// IndexFormat is the integer width of the packed index buffer.
type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// ByteSize returns the size in bytes of one index.
func (f IndexFormat) ByteSize() int {
	if f == IndexUint16 {
		return 2
	}
	return 4
}

// WGPU maps the index format to its WebGPU counterpart.
func (f IndexFormat) WGPU() wgpu.IndexFormat {
	if f == IndexUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

// IndexFormatFor picks the narrowest index format able to address vertexCount vertices.
// 0xFFFF is kept free because WebGPU reserves it as the uint16 strip restart value.
//
// Parameters:
//   - vertexCount: number of vertices the indices refer to
//
// Returns:
//   - IndexFormat: IndexUint16 when every index fits below 0xFFFF, otherwise IndexUint32
func IndexFormatFor(vertexCount int) IndexFormat {
	if vertexCount <= math.MaxUint16 {
		return IndexUint16
	}
	return IndexUint32
}

// Submesh is one independently drawn index range over the parent mesh's vertices.
type Submesh struct {
	Name     string
	Material string
	Indices  []uint32
	Geometry GeometryType
}

// PrimitiveCount returns the number of whole primitives in the submesh.
func (s *Submesh) PrimitiveCount() int {
	return len(s.Indices) / s.Geometry.IndicesPerPrimitive()
}

// Mesh is a vertex array shared by one or more submeshes.
// A mesh loaded from a model file carries one submesh per object, group or material section.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Submeshes []Submesh
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// IndexCount returns the total number of indices across all submeshes.
func (m *Mesh) IndexCount() int {
	n := 0
	for i := range m.Submeshes {
		n += len(m.Submeshes[i].Indices)
	}
	return n
}

// ComputeBounds returns the axis-aligned bounding box of the vertex positions.
//
// Returns:
//   - [3]float32: minimum corner
//   - [3]float32: maximum corner
//   - bool: false if the mesh has no vertices
func (m *Mesh) ComputeBounds() (lo, hi [3]float32, ok bool) {
	if len(m.Vertices) == 0 {
		return lo, hi, false
	}
	lo = m.Vertices[0].Position
	hi = lo
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v.Position[k] < lo[k] {
				lo[k] = v.Position[k]
			}
			if v.Position[k] > hi[k] {
				hi[k] = v.Position[k]
			}
		}
	}
	return lo, hi, true
}

// Validate checks that the mesh can be packed and drawn.
// A valid mesh has at least one vertex and one submesh, and every submesh has a non-empty index list
// whose length is a multiple of its primitive size and whose indices are all in range.
//
// Returns:
//   - error: an error wrapping ErrInvalidMesh describing the first problem found, or nil
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return fmt.Errorf("%w: %q has no vertices", ErrInvalidMesh, m.Name)
	}
	if len(m.Submeshes) == 0 {
		return fmt.Errorf("%w: %q has no submeshes", ErrInvalidMesh, m.Name)
	}
	n := uint32(len(m.Vertices))
	for i := range m.Submeshes {
		sm := &m.Submeshes[i]
		if len(sm.Indices) == 0 {
			return fmt.Errorf("%w: submesh %d (%q) has no indices", ErrInvalidMesh, i, sm.Name)
		}
		if per := sm.Geometry.IndicesPerPrimitive(); len(sm.Indices)%per != 0 {
			return fmt.Errorf("%w: submesh %d (%q) has %d indices, not a multiple of %d",
				ErrInvalidMesh, i, sm.Name, len(sm.Indices), per)
		}
		for j, idx := range sm.Indices {
			if idx >= n {
				return fmt.Errorf("%w: submesh %d (%q) index %d is %d, mesh has %d vertices",
					ErrInvalidMesh, i, sm.Name, j, idx, n)
			}
		}
	}
	return nil
}
