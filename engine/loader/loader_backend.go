package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
)

// loaderBackend defines the generic interface for loading meshes from files or streams.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports a mesh from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *mesh.Mesh: the imported mesh, named after the file
	//   - error: error if loading fails
	Load(path string) (*mesh.Mesh, error)

	// LoadReader imports a mesh from a reader stream.
	//
	// Parameters:
	//   - name: the name given to the mesh
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *mesh.Mesh: the imported mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*mesh.Mesh, error)
}
