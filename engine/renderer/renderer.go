package renderer

import (
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultClearColor is the pale yellow the playground view clears to.
var DefaultClearColor = wgpu.Color{R: 1, G: 1, B: 0.8, A: 1}

// SurfaceTarget is what the Renderer needs from a window: a surface descriptor and its size.
// window.Window satisfies it.
type SurfaceTarget interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// inFrame is true between a successful BeginFrame and EndFrame
	inFrame bool

	// config collected from builder options, applied once the backend exists
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	clearColor           wgpu.Color
	pendingPipelines     []pipeline.Pipeline
}

// Renderer is the high-level rendering API of the playground. It owns the GPU device and the surface,
// caches registered pipelines by key, and encodes one render pass per frame.
//
// A frame is BeginFrame, one or more Draw calls, EndFrame and Present.
type Renderer interface {
	// SurfaceFormat returns the color format the surface is configured with. Pipelines that pin a
	// different color format are rejected by RegisterPipelines.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface color format
	SurfaceFormat() wgpu.TextureFormat

	// Pipeline retrieves the registered Pipeline with the given key.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines retrieves every registered Pipeline keyed by PipelineKey.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: the registered pipelines
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines validates each pipeline, creates its GPU objects and caches it by PipelineKey.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: error wrapping ErrColorFormatMismatch, a vertex layout mismatch or a GPU creation failure
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// InitMeshBuffers uploads a packed mesh into a vertex buffer and one index buffer per submesh,
	// stored on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - packed: the packed mesh produced by a mesh.Allocator
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, packed *mesh.Packed) error

	// InitBindGroup creates the buffers and bind group described by a layout descriptor and stores
	// them on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created resources on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the surface texture and begins a render pass that clears to the clear color.
	//
	// Returns:
	//   - error: error wrapping ErrNoDrawable if no surface texture is available
	BeginFrame() error

	// Draw encodes indexed draws of a mesh. With perSubmesh false only the first submesh is drawn,
	// otherwise every submesh gets its own draw.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding the mesh vertex and index buffers
	//   - bindGroups: providers whose bind groups are set at their slice index
	//   - perSubmesh: true to draw every submesh
	//
	// Returns:
	//   - error: ErrNoFrame, ErrPipelineNotFound or ErrNoSubmesh
	Draw(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, perSubmesh bool) error

	// EndFrame ends the render pass and submits the command buffer. Does not present.
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface texture acquired by BeginFrame.
	Present()

	// Resize reconfigures the surface and its attachments for a new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// SetPresentMode sets the surface present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor changes the color the next frame clears to.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c wgpu.Color)

	// ClearColor returns the color frames clear to.
	//
	// Returns:
	//   - wgpu.Color: the clear color
	ClearColor() wgpu.Color

	// Release frees every registered pipeline and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer requests a GPU adapter and device for the target's surface, configures the surface at
// the target's size and registers any pipelines passed with WithPipeline.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., BackendTypeWGPU)
//   - target: the window to render into
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: error wrapping ErrNoAdapter, ErrNoDevice or ErrNoQueue, or a surface or pipeline failure
func NewRenderer(backendType RendererBackendType, target SurfaceTarget, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
		msaa:          MSAAOff,
		clearColor:    DefaultClearColor,
	}

	// options first so the adapter request sees forceFallbackAdapter
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeWGPU:
			fallthrough
		default:
			b, err := newWGPURendererBackend(target.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa)
			if err != nil {
				return nil, err
			}
			r.backend = b
		}
	}

	r.backend.SetPresentMode(r.presentMode)
	r.backend.SetClearColor(r.clearColor)
	if err := r.backend.ConfigureSurface(target.Width(), target.Height()); err != nil {
		r.backend.Release()
		return nil, fmt.Errorf("failed to configure surface: %w", err)
	}

	pending := r.pendingPipelines
	r.pendingPipelines = nil
	if err := r.RegisterPipelines(pending...); err != nil {
		r.Release()
		return nil, err
	}

	return r, nil
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	surfaceFormat := r.backend.SurfaceFormat()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		if _, exists := r.pipelineCache[p.PipelineKey()]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		if f := p.ColorFormat(); f != wgpu.TextureFormatUndefined && f != surfaceFormat {
			return fmt.Errorf("pipeline %s: %w: %v != %v", p.PipelineKey(), ErrColorFormatMismatch, f, surfaceFormat)
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.PipelineKey(), err)
		}
		r.pipelineCache[p.PipelineKey()] = p
		log.Printf("[Renderer] pipeline %q created", p.PipelineKey())
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, packed *mesh.Packed) error {
	return r.backend.InitMeshBuffers(provider, packed)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) Draw(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, perSubmesh bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	p, ok := r.pipelineCache[pipelineKey]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPipelineNotFound, pipelineKey)
	}
	submeshes := meshProvider.Submeshes()
	if len(submeshes) == 0 {
		return fmt.Errorf("%w: %s", ErrNoSubmesh, meshProvider.Label())
	}
	if !perSubmesh {
		submeshes = submeshes[:1]
	}

	for _, sub := range submeshes {
		r.backend.DrawIndexed(p, meshProvider.VertexBuffer(), sub, bindGroups)
	}
	return nil
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c wgpu.Color) {
	r.mu.Lock()
	r.clearColor = c
	r.mu.Unlock()
	r.backend.SetClearColor(c)
}

func (r *renderer) ClearColor() wgpu.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
