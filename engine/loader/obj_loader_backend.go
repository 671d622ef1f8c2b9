package loader

import (
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
)

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct{}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ files.
// Each call uses a fresh objParser, so the backend itself holds no state.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - objLoaderBackend: the loader backend for .obj files
func newOBJLoaderBackend() objLoaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Load(path string) (*mesh.Mesh, error) {
	p := newOBJParser()
	if err := p.Parse(path); err != nil {
		return nil, err
	}
	for _, lib := range p.MaterialLibraries() {
		log.Printf("[Loader] %s references material library %s (material names only)", path, lib)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.Mesh(name)
}

func (b *objLoaderBackendImpl) LoadReader(name string, r io.Reader) (*mesh.Mesh, error) {
	p := newOBJParser()
	if err := p.ParseReader(r); err != nil {
		return nil, err
	}
	return p.Mesh(name)
}
