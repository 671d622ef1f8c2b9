package mesh

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/common"
)

// DefaultSphereExtent is the bounding box size used when WithExtent is not given.
var DefaultSphereExtent = [3]float32{0.75, 0.75, 0.75}

const (
	DefaultSphereRadialSegments   = 100
	DefaultSphereVerticalSegments = 100
)

// NewSphere generates a UV sphere centered on the origin.
//
// Vertices are laid out ring by ring from the +Y pole to the -Y pole, (vertical+1) rings of (radial+1) vertices,
// with the seam column duplicated so texture coordinates wrap cleanly. Triangles wind counter-clockwise when
// seen from outside. The degenerate triangles touching the two poles are not emitted, which leaves
// 2*radial*(vertical-1) triangles.
//
// Parameters:
//   - options: variadic list of SphereBuilderOption functions
//
// Returns:
//   - *Mesh: the generated mesh with a single submesh
//   - error: error if the extent or segment counts are out of range
func NewSphere(options ...SphereBuilderOption) (*Mesh, error) {
	cfg := &sphereConfig{
		name:     "sphere",
		extent:   DefaultSphereExtent,
		radial:   DefaultSphereRadialSegments,
		vertical: DefaultSphereVerticalSegments,
		geometry: GeometryTriangles,
	}
	for _, opt := range options {
		opt(cfg)
	}

	for k, e := range cfg.extent {
		if !(e > 0) {
			return nil, fmt.Errorf("sphere extent[%d] must be positive, got %v", k, e)
		}
	}
	if cfg.radial < 3 {
		return nil, fmt.Errorf("sphere needs at least 3 radial segments, got %d", cfg.radial)
	}
	if cfg.vertical < 2 {
		return nil, fmt.Errorf("sphere needs at least 2 vertical segments, got %d", cfg.vertical)
	}

	radius := common.Scale3(cfg.extent, 0.5)
	cols := cfg.radial + 1
	vertices := make([]Vertex, 0, (cfg.vertical+1)*cols)

	for j := 0; j <= cfg.vertical; j++ {
		theta := math.Pi * float64(j) / float64(cfg.vertical)
		sinT, cosT := math.Sincos(theta)
		// Snap the poles so every pole vertex is bit-identical.
		if j == 0 || j == cfg.vertical {
			sinT = 0
		}
		for i := 0; i <= cfg.radial; i++ {
			phi := 2 * math.Pi * float64(i) / float64(cfg.radial)
			sinP, cosP := math.Sincos(phi)
			unit := [3]float32{float32(sinT * cosP), float32(cosT), float32(sinT * sinP)}
			pos := [3]float32{unit[0] * radius[0], unit[1] * radius[1], unit[2] * radius[2]}

			// Ellipsoid gradient; reduces to the unit direction for a sphere.
			normal := common.Normalize3([3]float32{
				pos[0] / (radius[0] * radius[0]),
				pos[1] / (radius[1] * radius[1]),
				pos[2] / (radius[2] * radius[2]),
			})
			if cfg.inwardNormals {
				normal = common.Scale3(normal, -1)
			}

			vertices = append(vertices, Vertex{
				Position: pos,
				Normal:   normal,
				TexCoord: [2]float32{float32(i) / float32(cfg.radial), float32(j) / float32(cfg.vertical)},
			})
		}
	}

	indices := make([]uint32, 0, 6*cfg.radial*(cfg.vertical-1))
	tri := func(a, b, c uint32) {
		if cfg.inwardNormals {
			b, c = c, b
		}
		indices = append(indices, a, b, c)
	}
	for j := 0; j < cfg.vertical; j++ {
		for i := 0; i < cfg.radial; i++ {
			a := uint32(j*cols + i)
			b := a + uint32(cols)
			c := a + 1
			d := b + 1
			if j != 0 {
				tri(a, c, b)
			}
			if j != cfg.vertical-1 {
				tri(c, d, b)
			}
		}
	}

	sm := Submesh{Name: cfg.name, Indices: indices, Geometry: GeometryTriangles}
	if cfg.geometry == GeometryLines {
		sm = TrianglesToLines(sm)
	}

	return &Mesh{
		Name:      cfg.name,
		Vertices:  vertices,
		Submeshes: []Submesh{sm},
	}, nil
}
