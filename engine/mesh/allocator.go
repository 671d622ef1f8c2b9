package mesh

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// PackedSubmesh is one submesh's index data, ready for upload into its own index buffer.
type PackedSubmesh struct {
	Name       string
	IndexData  []byte
	IndexCount uint32
	Format     IndexFormat
	Geometry   GeometryType
}

// Packed is a mesh serialized into GPU buffer contents.
// VertexData holds VertexCount interleaved vertices of Stride bytes each.
type Packed struct {
	Name        string
	VertexData  []byte
	Stride      uint64
	VertexCount int
	Submeshes   []PackedSubmesh
}

// Allocator turns meshes into GPU-ready vertex and index bytes.
// Large meshes are split into chunks that a persistent worker pool packs in parallel.
type Allocator interface {
	// Pack validates the mesh and serializes it. The index format is uint16 when the vertex count allows it,
	// otherwise uint32, and every index buffer is padded to a multiple of 4 bytes as WebGPU requires for writes.
	//
	// Parameters:
	//   - m: the mesh to pack
	//
	// Returns:
	//   - *Packed: the packed vertex buffer and one index buffer per submesh
	//   - error: error if the mesh fails validation
	Pack(m *Mesh) (*Packed, error)

	// Close stops the allocator's worker pool. Pack must not be called afterwards.
	Close()
}

type allocator struct {
	pool        worker.DynamicWorkerPool
	workers     int
	chunkSize   int
	idleTimeout time.Duration

	mu     sync.Mutex
	taskID int
	closed bool
}

var _ Allocator = &allocator{}

// NewAllocator creates a new Allocator backed by a worker pool.
//
// Parameters:
//   - options: variadic list of AllocatorBuilderOption functions
//
// Returns:
//   - Allocator: the new allocator
func NewAllocator(options ...AllocatorBuilderOption) Allocator {
	a := &allocator{
		workers:     runtime.NumCPU(),
		chunkSize:   4096,
		idleTimeout: time.Second,
	}
	for _, opt := range options {
		opt(a)
	}
	a.pool = worker.NewDynamicWorkerPool(a.workers, a.workers*4, a.idleTimeout)
	return a
}

func (a *allocator) Pack(m *Mesh) (*Packed, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil mesh", ErrInvalidMesh)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil, fmt.Errorf("allocator is closed")
	}

	format := IndexFormatFor(len(m.Vertices))
	p := &Packed{
		Name:        m.Name,
		VertexData:  make([]byte, len(m.Vertices)*VertexSize),
		Stride:      VertexSize,
		VertexCount: len(m.Vertices),
		Submeshes:   make([]PackedSubmesh, len(m.Submeshes)),
	}

	var wg sync.WaitGroup

	// Chunks write disjoint byte ranges of the shared buffers, so no locking is needed inside tasks.
	a.forEachChunk(&wg, len(m.Vertices), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			m.Vertices[i].MarshalTo(p.VertexData[i*VertexSize:])
		}
	})

	for s := range m.Submeshes {
		sm := &m.Submeshes[s]
		size := format.ByteSize()
		ps := &p.Submeshes[s]
		ps.Name = sm.Name
		ps.IndexCount = uint32(len(sm.Indices))
		ps.Format = format
		ps.Geometry = sm.Geometry
		ps.IndexData = make([]byte, alignTo4(len(sm.Indices)*size))

		indices, dst := sm.Indices, ps.IndexData
		a.forEachChunk(&wg, len(indices), func(lo, hi int) {
			if size == 2 {
				for i := lo; i < hi; i++ {
					binary.LittleEndian.PutUint16(dst[i*2:], uint16(indices[i]))
				}
				return
			}
			for i := lo; i < hi; i++ {
				binary.LittleEndian.PutUint32(dst[i*4:], indices[i])
			}
		})
	}

	wg.Wait()
	return p, nil
}

// forEachChunk splits [0, n) into chunkSize ranges and runs fn for each one.
// A single chunk runs inline; larger inputs are submitted to the pool.
func (a *allocator) forEachChunk(wg *sync.WaitGroup, n int, fn func(lo, hi int)) {
	if n <= a.chunkSize {
		fn(0, n)
		return
	}
	for lo := 0; lo < n; lo += a.chunkSize {
		hi := min(lo+a.chunkSize, n)
		wg.Add(1)
		a.taskID++
		a.pool.SubmitTask(worker.Task{
			ID: a.taskID,
			Do: func() (any, error) {
				defer wg.Done()
				fn(lo, hi)
				return nil, nil
			},
		})
	}
}

func (a *allocator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.pool.Stop()
}

func alignTo4(n int) int {
	return (n + 3) &^ 3
}
