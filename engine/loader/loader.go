package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
)

// ErrUnsupportedFormat is returned when no backend handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	renderer  renderer.Renderer
	allocator mesh.Allocator

	meshCache map[string]*mesh.Mesh

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching meshes.
// It abstracts the file format behind a generic backend and manages a cache of previously loaded meshes.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the mesh is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.obj → OBJ backend).
	// A missing file yields an error wrapping fs.ErrNotExist.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *mesh.Mesh: the loaded and cached mesh
	//   - error: error if loading fails
	Load(path string) (*mesh.Mesh, error)

	// LoadReader imports a mesh from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key and mesh name
	//   - r: the reader providing model data
	//   - ext: the format extension of the stream, e.g. ".obj"
	//
	// Returns:
	//   - *mesh.Mesh: the loaded mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, ext string) (*mesh.Mesh, error)

	// Get retrieves a cached mesh by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *mesh.Mesh: the cached mesh or nil
	Get(name string) *mesh.Mesh

	// Meshes returns a copy of the mesh cache.
	//
	// Returns:
	//   - map[string]*mesh.Mesh: all cached meshes keyed by name
	Meshes() map[string]*mesh.Mesh

	// Upload packs the mesh and creates its vertex and per-submesh index buffers on the GPU.
	// Requires a Renderer (see WithRenderer).
	//
	// Parameters:
	//   - m: the mesh to upload
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the mesh buffers
	//   - error: error if packing or buffer creation fails
	Upload(m *mesh.Mesh) (bind_group_provider.BindGroupProvider, error)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		meshCache: make(map[string]*mesh.Mesh),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*mesh.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.meshCache[path] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader, ext string) (*mesh.Mesh, error) {
	l.mu.RLock()
	if cached, ok := l.meshCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(ext)
	if err != nil {
		return nil, err
	}

	m, err := backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	l.mu.Lock()
	l.meshCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) Get(name string) *mesh.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Meshes() map[string]*mesh.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*mesh.Mesh, len(l.meshCache))
	for k, v := range l.meshCache {
		result[k] = v
	}
	return result
}

func (l *loader) Upload(m *mesh.Mesh) (bind_group_provider.BindGroupProvider, error) {
	if l.renderer == nil {
		return nil, fmt.Errorf("loader: cannot Upload without a Renderer")
	}

	alloc := l.allocator
	if alloc == nil {
		alloc = mesh.NewAllocator()
		defer alloc.Close()
	}

	packed, err := alloc.Pack(m)
	if err != nil {
		return nil, fmt.Errorf("failed to pack mesh %q: %w", m.Name, err)
	}

	provider := bind_group_provider.NewBindGroupProvider(m.Name + "_mesh")
	if err := l.renderer.InitMeshBuffers(provider, packed); err != nil {
		return nil, fmt.Errorf("failed to init mesh buffers for %q: %w", m.Name, err)
	}
	return provider, nil
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only Wavefront OBJ is supported.
func (l *loader) resolveBackend(ext string) (loaderBackend, error) {
	ext = strings.ToLower(ext)
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}
	switch ext {
	case ".obj":
		if l.backend == nil {
			return nil, fmt.Errorf("%w: %s (no backend configured)", ErrUnsupportedFormat, ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
