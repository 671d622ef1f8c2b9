package mesh

// SphereBuilderOption is a functional option for configuring a sphere via NewSphere.
type SphereBuilderOption func(*sphereConfig)

type sphereConfig struct {
	name          string
	extent        [3]float32
	radial        int
	vertical      int
	inwardNormals bool
	geometry      GeometryType
}

// WithSphereName is an option builder that sets the name of the generated mesh.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - SphereBuilderOption: a function that applies the name option
func WithSphereName(name string) SphereBuilderOption {
	return func(c *sphereConfig) {
		c.name = name
	}
}

// WithExtent is an option builder that sets the bounding box size of the sphere along each axis.
// Unequal components produce an ellipsoid.
//
// Parameters:
//   - extent: width, height and depth of the bounding box
//
// Returns:
//   - SphereBuilderOption: a function that applies the extent option
func WithExtent(extent [3]float32) SphereBuilderOption {
	return func(c *sphereConfig) {
		c.extent = extent
	}
}

// WithSegments is an option builder that sets the tessellation of the sphere.
//
// Parameters:
//   - radial: number of segments around the vertical axis, at least 3
//   - vertical: number of segments from pole to pole, at least 2
//
// Returns:
//   - SphereBuilderOption: a function that applies the segments option
func WithSegments(radial, vertical int) SphereBuilderOption {
	return func(c *sphereConfig) {
		c.radial = radial
		c.vertical = vertical
	}
}

// WithInwardNormals is an option builder that makes normals point toward the center.
// The triangle winding is reversed as well so the inside faces are front-facing.
//
// Parameters:
//   - inward: true to generate an inside-out sphere
//
// Returns:
//   - SphereBuilderOption: a function that applies the inward normals option
func WithInwardNormals(inward bool) SphereBuilderOption {
	return func(c *sphereConfig) {
		c.inwardNormals = inward
	}
}

// WithGeometry is an option builder that selects triangle or line output.
// Line output contains each triangle edge exactly once.
//
// Parameters:
//   - geometry: GeometryTriangles or GeometryLines
//
// Returns:
//   - SphereBuilderOption: a function that applies the geometry option
func WithGeometry(geometry GeometryType) SphereBuilderOption {
	return func(c *sphereConfig) {
		c.geometry = geometry
	}
}
