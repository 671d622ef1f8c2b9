// Package playground runs the mesh playground: one device, one view, one mesh, one pipeline and a
// single render pass that is repeated only when the view is resized.
package playground

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
)

// SphereShaderSource passes sphere positions through unchanged and fills with constant red.
//
//go:embed shaders/sphere.wgsl
var SphereShaderSource string

// ModelShaderSource moves model positions by draw_params.offset and fills with draw_params.color.
//
//go:embed shaders/model.wgsl
var ModelShaderSource string

// playground is the implementation of the Playground interface.
type playground struct {
	cfg Config

	window    window.Window
	renderer  renderer.Renderer
	loader    loader.Loader
	allocator mesh.Allocator
	profiler  *profiler.Profiler

	// ownsWindow and ownsRenderer are false for components injected through options; Close leaves those alone.
	ownsWindow   bool
	ownsRenderer bool

	mesh         *mesh.Mesh
	pipeline     pipeline.Pipeline
	meshProvider bind_group_provider.BindGroupProvider
	drawParams   bind_group_provider.BindGroupProvider
	bindGroups   []bind_group_provider.BindGroupProvider

	ready  bool
	closed bool
}

// Playground drives one run of the mesh playground.
// New brings up the device and the view, Setup builds everything the draw needs, RenderOnce encodes
// and presents one pass, and Run ties them to the live window.
type Playground interface {
	// Config returns the normalized configuration the playground runs with.
	Config() Config

	// Window returns the live view host.
	Window() window.Window

	// Renderer returns the renderer that owns the device, queue and surface.
	Renderer() renderer.Renderer

	// Mesh returns the CPU mesh built by Setup, or nil before Setup.
	Mesh() *mesh.Mesh

	// Pipeline returns the render pipeline registered by Setup, or nil before Setup.
	Pipeline() pipeline.Pipeline

	// Setup builds the mesh, uploads it, compiles the shaders and registers the pipeline.
	// When the vertex shader declares draw_params, the uniform is created and written here too.
	// Calling Setup again after it succeeded does nothing.
	//
	// Returns:
	//   - error: error wrapping ErrAssetNotFound, ErrInvalidConfig, ErrNoSubmesh or ErrPipeline
	Setup() error

	// RenderOnce clears the view, draws the mesh once (or once per submesh), submits and presents.
	//
	// Returns:
	//   - error: error wrapping ErrNoDrawable, ErrNoSubmesh or ErrRenderFailed
	RenderOnce() error

	// Run performs Setup and one RenderOnce, then hands control to the window's message loop until it closes.
	// A resize reconfigures the surface and renders one new pass. Nothing else triggers drawing.
	//
	// Returns:
	//   - error: the first error from Setup or the initial RenderOnce
	Run() error

	// Close releases the GPU resources and the window. It is safe to call more than once.
	Close()
}

var _ Playground = &playground{}

// New validates the config, then acquires the GPU device and command queue and creates the view.
//
// Parameters:
//   - cfg: the playground configuration; zero-valued enumerations are normalized to their defaults
//   - options: functional options that inject pre-built components or enable profiling
//
// Returns:
//   - Playground: the playground, ready for Setup
//   - error: error wrapping ErrInvalidConfig, ErrGPUNotSupported or ErrNoCommandQueue
func New(cfg Config, options ...PlaygroundBuilderOption) (Playground, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &playground{cfg: cfg}
	for _, opt := range options {
		opt(p)
	}
	if p.profiler == nil && cfg.Profile {
		p.profiler = profiler.NewProfiler()
	}

	if p.window == nil {
		w, err := window.NewWindow(
			window.WithTitle(cfg.Title),
			window.WithWidth(cfg.Width),
			window.WithHeight(cfg.Height),
			window.WithResizable(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create window: %w", err)
		}
		p.window = w
		p.ownsWindow = true
	}
	p.profiler.Mark("window")

	if p.renderer == nil {
		mode, _ := renderer.ParsePresentMode(cfg.PresentMode)
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, p.window,
			renderer.WithClearColor(cfg.Clear()),
			renderer.WithPresentMode(mode),
			renderer.WithMSAA(renderer.MSAASampleCount(cfg.MSAA)),
		)
		if err != nil {
			p.Close()
			return nil, classify(err, ErrGPUNotSupported)
		}
		p.renderer = r
		p.ownsRenderer = true
	} else {
		p.renderer.SetClearColor(cfg.Clear())
	}
	p.profiler.Mark("device")

	p.allocator = mesh.NewAllocator()
	p.loader = loader.NewLoader(loader.BackendTypeOBJ,
		loader.WithRenderer(p.renderer),
		loader.WithAllocator(p.allocator),
	)
	return p, nil
}

func (p *playground) Config() Config {
	return p.cfg
}

func (p *playground) Window() window.Window {
	return p.window
}

func (p *playground) Renderer() renderer.Renderer {
	return p.renderer
}

func (p *playground) Mesh() *mesh.Mesh {
	return p.mesh
}

func (p *playground) Pipeline() pipeline.Pipeline {
	return p.pipeline
}

func (p *playground) Setup() error {
	if p.ready {
		return nil
	}

	m, err := buildMesh(p.cfg, p.loader)
	if err != nil {
		return err
	}
	p.mesh = m
	lo, hi, _ := m.ComputeBounds()
	log.Printf("[Playground] mesh %q: %d vertices, %d indices, %d submeshes, bounds %v..%v",
		m.Name, m.VertexCount(), m.IndexCount(), len(m.Submeshes), lo, hi)
	p.profiler.Mark("mesh")

	provider, err := p.loader.Upload(m)
	if err != nil {
		return classify(fmt.Errorf("failed to upload mesh %q: %w", m.Name, err), ErrRenderFailed)
	}
	p.meshProvider = provider
	p.profiler.Mark("upload")

	vert, frag, err := p.compileShaders()
	if err != nil {
		return err
	}

	pl := pipeline.NewPipeline(fmt.Sprintf("playground_%s_%s", p.cfg.Mesh.Kind, p.cfg.Geometry()),
		pipeline.WithVertexShader(vert),
		pipeline.WithFragmentShader(frag),
		pipeline.WithTopology(p.cfg.Geometry().Topology()),
		pipeline.WithColorFormat(p.renderer.SurfaceFormat()),
	)
	if err := p.renderer.RegisterPipelines(pl); err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	p.pipeline = pl
	p.profiler.Mark("pipeline")

	if err := p.initDrawParams(vert); err != nil {
		return err
	}

	p.ready = true
	return nil
}

// compileShaders parses the vertex and fragment stages from the override file when one is configured,
// otherwise from the embedded program for the mesh kind.
func (p *playground) compileShaders() (shader.Shader, shader.Shader, error) {
	source := SphereShaderSource
	if p.cfg.Mesh.Kind == MeshKindModel {
		source = ModelShaderSource
	}

	var vert, frag shader.Shader
	var err error
	if path := p.cfg.Shader.Path; path != "" {
		vert, err = shader.NewShaderFromPath("playground_vs", shader.ShaderTypeVertex, path)
		if err == nil {
			frag, err = shader.NewShaderFromPath("playground_fs", shader.ShaderTypeFragment, path)
		}
	} else {
		vert, err = shader.NewShader("playground_vs", shader.ShaderTypeVertex, source)
		if err == nil {
			frag, err = shader.NewShader("playground_fs", shader.ShaderTypeFragment, source)
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %w", ErrAssetNotFound, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	return vert, frag, nil
}

// initDrawParams creates and fills the draw_params uniform when the vertex shader declares one.
// Every bind group the pipeline uses must be the draw_params group, since it is the only resource the
// playground knows how to fill.
func (p *playground) initDrawParams(vs shader.Shader) error {
	layouts := p.pipeline.BindGroupLayoutDescriptors()
	if len(layouts) == 0 {
		return nil
	}

	group, binding := -1, -1
	for _, a := range vs.Declarations() {
		if a.Type == shader.AnnotationTypeBindingGroup && len(a.Args) == 3 && a.Args[2] == shader.AnnotationArgDrawParams {
			group, binding = *a.Group, *a.Binding
			break
		}
	}

	groups := make([]int, 0, len(layouts))
	for g := range layouts {
		groups = append(groups, g)
	}
	sort.Ints(groups)
	if group != 0 || len(groups) != 1 || groups[0] != 0 {
		return fmt.Errorf("%w: bind groups %v are not supported, only draw_params in group 0", ErrPipeline, groups)
	}

	dp := bind_group_provider.NewBindGroupProvider("draw_params")
	if err := p.renderer.InitBindGroup(dp, layouts[group], map[int]uint64{binding: mesh.DrawParamsSize}); err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	params := p.cfg.DrawParams()
	p.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: dp,
		Binding:  binding,
		Data:     params.Marshal(),
	}})
	p.drawParams = dp
	p.bindGroups = []bind_group_provider.BindGroupProvider{dp}
	return nil
}

func (p *playground) RenderOnce() error {
	if !p.ready {
		return fmt.Errorf("%w: Setup has not completed", ErrRenderFailed)
	}
	start := time.Now()

	if err := p.renderer.BeginFrame(); err != nil {
		return classify(err, ErrRenderFailed)
	}
	if err := p.renderer.Draw(p.pipeline.PipelineKey(), p.meshProvider, p.bindGroups, p.cfg.Draw.PerSubmesh); err != nil {
		// the pass still has to be ended so the surface texture is not left acquired
		_ = p.renderer.EndFrame()
		return classify(err, ErrRenderFailed)
	}
	if err := p.renderer.EndFrame(); err != nil {
		return classify(err, ErrRenderFailed)
	}
	p.renderer.Present()

	p.profiler.Pass(time.Since(start))
	log.Printf("[Playground] frame presented (%dx%d)", p.window.Width(), p.window.Height())
	return nil
}

func (p *playground) Run() error {
	if err := p.Setup(); err != nil {
		return err
	}
	if err := p.RenderOnce(); err != nil {
		return err
	}

	p.window.SetResizeCallback(func(width, height int) {
		if err := p.renderer.Resize(width, height); err != nil {
			log.Printf("[Playground] resize to %dx%d failed: %v", width, height, err)
			return
		}
		if err := p.RenderOnce(); err != nil {
			log.Printf("[Playground] render after resize failed: %v", err)
		}
	})

	p.window.ProcessMessages()
	return nil
}

func (p *playground) Close() {
	if p.closed {
		return
	}
	p.closed = true

	if p.drawParams != nil {
		p.drawParams.Release()
	}
	if p.meshProvider != nil {
		p.meshProvider.Release()
	}
	if p.allocator != nil {
		p.allocator.Close()
	}
	if p.ownsRenderer && p.renderer != nil {
		p.renderer.Release()
	}
	if p.ownsWindow && p.window != nil {
		if err := p.window.Close(); err != nil {
			log.Printf("[Playground] failed to close window: %v", err)
		}
	}
}

// BuildMesh builds the CPU side of the configured mesh without touching the GPU.
// A sphere is generated from the extent and segment counts. A model is loaded from its OBJ file, and a
// lines geometry turns every triangle submesh into its edge list.
//
// Parameters:
//   - cfg: the playground configuration
//
// Returns:
//   - *mesh.Mesh: the mesh ready to be packed
//   - error: error wrapping ErrInvalidConfig, ErrAssetNotFound or ErrNoSubmesh
func BuildMesh(cfg Config) (*mesh.Mesh, error) {
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return buildMesh(cfg, loader.NewLoader(loader.BackendTypeOBJ))
}

func buildMesh(cfg Config, ldr loader.Loader) (*mesh.Mesh, error) {
	geometry := cfg.Geometry()

	switch cfg.Mesh.Kind {
	case MeshKindModel:
		loaded, err := ldr.Load(cfg.Mesh.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %w", ErrAssetNotFound, err)
			}
			return nil, err
		}
		if len(loaded.Submeshes) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoSubmesh, cfg.Mesh.Path)
		}
		// the loader caches meshes, so the wireframe variant is a copy
		m := &mesh.Mesh{
			Name:      loaded.Name,
			Vertices:  loaded.Vertices,
			Submeshes: make([]mesh.Submesh, len(loaded.Submeshes)),
		}
		for i, sm := range loaded.Submeshes {
			if geometry == mesh.GeometryLines {
				sm = mesh.TrianglesToLines(sm)
			}
			m.Submeshes[i] = sm
		}
		return m, nil

	default:
		m, err := mesh.NewSphere(
			mesh.WithSphereName("sphere"),
			mesh.WithExtent(cfg.Mesh.Extent),
			mesh.WithSegments(cfg.Mesh.Segments[0], cfg.Mesh.Segments[1]),
			mesh.WithInwardNormals(cfg.Mesh.InwardNormals),
			mesh.WithGeometry(geometry),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return m, nil
	}
}

// classify maps renderer failures onto the playground's sentinels, wrapping fallback when none applies.
func classify(err error, fallback error) error {
	switch {
	case errors.Is(err, renderer.ErrNoAdapter), errors.Is(err, renderer.ErrNoDevice):
		return fmt.Errorf("%w: %w", ErrGPUNotSupported, err)
	case errors.Is(err, renderer.ErrNoQueue):
		return fmt.Errorf("%w: %w", ErrNoCommandQueue, err)
	case errors.Is(err, renderer.ErrNoDrawable):
		return fmt.Errorf("%w: %w", ErrNoDrawable, err)
	case errors.Is(err, renderer.ErrNoSubmesh):
		return fmt.Errorf("%w: %w", ErrNoSubmesh, err)
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
