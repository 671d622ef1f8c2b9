package playground

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

type fakeWindow struct {
	w, h     int
	onResize func(width, height int)
	loops    int
	closed   bool
}

func (f *fakeWindow) SetUpdateCallback(func()) {}
func (f *fakeWindow) SetKeyDownCallback(func(uint32)) {}
func (f *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f *fakeWindow) IsRunning() bool { return !f.closed }
func (f *fakeWindow) Width() int { return f.w }
func (f *fakeWindow) Height() int { return f.h }
func (f *fakeWindow) Title() string { return "fake" }
func (f *fakeWindow) SetResizeCallback(cb func(width, height int)) { f.onResize = cb }
func (f *fakeWindow) Close() error { f.closed = true; return nil }

// ProcessMessages stands in for the message loop: one resize arrives, then the window closes.
func (f *fakeWindow) ProcessMessages() {
	f.loops++
	if f.onResize != nil {
		f.onResize(f.w*2, f.h*2)
	}
	f.closed = true
}

type fakeRenderer struct {
	pipelines  map[string]pipeline.Pipeline
	clear      wgpu.Color
	bindGroups []wgpu.BindGroupLayoutDescriptor
	overrides  []map[int]uint64
	writes     []bind_group_provider.BufferWrite
	draws      int
	drawGroups int
	frames     int
	presents   int
	resized    [2]int
	beginErr   error
	inFrame    bool
	released   bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{pipelines: make(map[string]pipeline.Pipeline)}
}

func (f *fakeRenderer) SurfaceFormat() wgpu.TextureFormat { return wgpu.TextureFormatBGRA8Unorm }
func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline {
	return f.pipelines[key]
}
func (f *fakeRenderer) Pipelines() map[string]pipeline.Pipeline { return f.pipelines }
func (f *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (f *fakeRenderer) SetClearColor(c wgpu.Color) { f.clear = c }
func (f *fakeRenderer) ClearColor() wgpu.Color { return f.clear }
func (f *fakeRenderer) Present() { f.presents++ }
func (f *fakeRenderer) Release() { f.released = true }

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	for _, p := range pipelines {
		if err := p.Validate(); err != nil {
			return err
		}
		f.pipelines[p.PipelineKey()] = p
	}
	return nil
}

func (f *fakeRenderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, packed *mesh.Packed) error {
	for _, sm := range packed.Submeshes {
		provider.AddSubmesh(bind_group_provider.SubmeshBuffer{Name: sm.Name, IndexCount: sm.IndexCount, Format: sm.Format.WGPU()})
	}
	return nil
}

func (f *fakeRenderer) InitBindGroup(_ bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor, overrides map[int]uint64) error {
	f.bindGroups = append(f.bindGroups, desc)
	f.overrides = append(f.overrides, overrides)
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.inFrame = true
	f.frames++
	return nil
}

func (f *fakeRenderer) Draw(key string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider, perSubmesh bool) error {
	if _, ok := f.pipelines[key]; !ok {
		return renderer.ErrPipelineNotFound
	}
	if len(meshProvider.Submeshes()) == 0 {
		return renderer.ErrNoSubmesh
	}
	if perSubmesh {
		f.draws += len(meshProvider.Submeshes())
	} else {
		f.draws++
	}
	f.drawGroups = len(bindGroups)
	return nil
}

func (f *fakeRenderer) EndFrame() error {
	if !f.inFrame {
		return renderer.ErrNoFrame
	}
	f.inFrame = false
	return nil
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.resized = [2]int{width, height}
	return nil
}

func newTestPlayground(t *testing.T, cfg Config) (Playground, *fakeWindow, *fakeRenderer) {
	t.Helper()
	win := &fakeWindow{w: cfg.Width, h: cfg.Height}
	r := newFakeRenderer()
	p, err := New(cfg, WithWindow(win), WithRenderer(r))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(p.Close)
	return p, win, r
}

func modelConfig() Config {
	cfg := DefaultConfig()
	cfg.Mesh.Kind = MeshKindModel
	cfg.Mesh.Path = "testdata/quads.obj"
	return cfg
}

func TestNewAppliesClearColorToInjectedRenderer(t *testing.T) {
	_, _, r := newTestPlayground(t, DefaultConfig())
	if r.clear != (wgpu.Color{R: 1, G: 1, B: 0.8, A: 1}) {
		t.Errorf("clear color = %+v, want (1, 1, 0.8, 1)", r.clear)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	if _, err := New(cfg, WithWindow(&fakeWindow{}), WithRenderer(newFakeRenderer())); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSphereSetupAndRender(t *testing.T) {
	p, _, r := newTestPlayground(t, DefaultConfig())
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if got := p.Mesh().VertexCount(); got != 101*101 {
		t.Errorf("sphere vertices = %d, want %d", got, 101*101)
	}
	if p.Pipeline().Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v, want triangle list", p.Pipeline().Topology())
	}
	if len(r.bindGroups) != 0 {
		t.Errorf("sphere shader declares no resources, got %d bind groups", len(r.bindGroups))
	}

	if err := p.RenderOnce(); err != nil {
		t.Fatalf("RenderOnce: %v", err)
	}
	if r.frames != 1 || r.draws != 1 || r.presents != 1 {
		t.Errorf("frames/draws/presents = %d/%d/%d, want 1/1/1", r.frames, r.draws, r.presents)
	}
}

func TestModelSetupWritesDrawParams(t *testing.T) {
	p, _, r := newTestPlayground(t, modelConfig())
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if len(r.bindGroups) != 1 {
		t.Fatalf("bind groups = %d, want 1", len(r.bindGroups))
	}
	entries := r.bindGroups[0].Entries
	if len(entries) != 1 || entries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Fatalf("entries = %+v, want one uniform", entries)
	}
	if entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("visibility = %v, want vertex|fragment", entries[0].Visibility)
	}
	if r.overrides[0][0] != mesh.DrawParamsSize {
		t.Errorf("buffer size override = %d, want %d", r.overrides[0][0], mesh.DrawParamsSize)
	}

	if len(r.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(r.writes))
	}
	want := DefaultConfig().DrawParams()
	if string(r.writes[0].Data) != string(want.Marshal()) {
		t.Errorf("draw params bytes do not match the default offset and color")
	}
}

func TestModelPerSubmeshDraws(t *testing.T) {
	tests := []struct {
		name       string
		perSubmesh bool
		wantDraws  int
	}{
		{"first submesh only", false, 1},
		{"one draw per submesh", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := modelConfig()
			cfg.Draw.PerSubmesh = tt.perSubmesh
			p, _, r := newTestPlayground(t, cfg)
			if err := p.Setup(); err != nil {
				t.Fatalf("Setup: %v", err)
			}
			if err := p.RenderOnce(); err != nil {
				t.Fatalf("RenderOnce: %v", err)
			}
			if r.draws != tt.wantDraws {
				t.Errorf("draws = %d, want %d", r.draws, tt.wantDraws)
			}
			if r.drawGroups != 1 {
				t.Errorf("bind groups passed to Draw = %d, want 1", r.drawGroups)
			}
		})
	}
}

func TestWireframeUsesLineList(t *testing.T) {
	cfg := modelConfig()
	cfg.Mesh.Geometry = "lines"
	p, _, _ := newTestPlayground(t, cfg)
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if p.Pipeline().Topology() != wgpu.PrimitiveTopologyLineList {
		t.Errorf("topology = %v, want line list", p.Pipeline().Topology())
	}
	for _, sm := range p.Mesh().Submeshes {
		if sm.Geometry != mesh.GeometryLines {
			t.Errorf("submesh %q geometry = %v, want lines", sm.Name, sm.Geometry)
		}
	}
}

func TestSetupMissingModel(t *testing.T) {
	cfg := modelConfig()
	cfg.Mesh.Path = "testdata/missing.obj"
	p, _, _ := newTestPlayground(t, cfg)
	if err := p.Setup(); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestSetupShaderOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Shader.Path = "testdata/flat.wgsl"
	p, _, _ := newTestPlayground(t, cfg)
	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	cfg.Shader.Path = "testdata/nope.wgsl"
	p, _, _ = newTestPlayground(t, cfg)
	if err := p.Setup(); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestRenderOnceErrors(t *testing.T) {
	p, _, r := newTestPlayground(t, DefaultConfig())
	if err := p.RenderOnce(); !errors.Is(err, ErrRenderFailed) {
		t.Errorf("RenderOnce before Setup: err = %v, want ErrRenderFailed", err)
	}

	if err := p.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	r.beginErr = renderer.ErrNoDrawable
	if err := p.RenderOnce(); !errors.Is(err, ErrNoDrawable) {
		t.Errorf("err = %v, want ErrNoDrawable", err)
	}
	if r.presents != 0 {
		t.Errorf("presents = %d, want 0 after a failed frame", r.presents)
	}
}

func TestRunRendersOnceAndOnResize(t *testing.T) {
	cfg := DefaultConfig()
	win := &fakeWindow{w: cfg.Width, h: cfg.Height}
	r := newFakeRenderer()
	prof := profiler.NewProfiler()
	p, err := New(cfg, WithWindow(win), WithRenderer(r), WithProfiler(prof))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if win.loops != 1 {
		t.Errorf("message loop entered %d times, want 1", win.loops)
	}
	if r.resized != [2]int{1200, 1200} {
		t.Errorf("resized = %v, want [1200 1200]", r.resized)
	}
	if r.frames != 2 || prof.Passes() != 2 {
		t.Errorf("frames = %d, profiled passes = %d, want 2 each", r.frames, prof.Passes())
	}

	var names []string
	for _, s := range prof.Stages() {
		names = append(names, s.Name)
	}
	want := []string{"window", "device", "mesh", "upload", "pipeline"}
	if len(names) != len(want) {
		t.Fatalf("stages = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestCloseLeavesInjectedComponents(t *testing.T) {
	cfg := DefaultConfig()
	win := &fakeWindow{w: cfg.Width, h: cfg.Height}
	r := newFakeRenderer()
	p, err := New(cfg, WithWindow(win), WithRenderer(r))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Close()
	p.Close()
	if win.closed || r.released {
		t.Error("Close must not release an injected window or renderer")
	}
}

func TestBuildMesh(t *testing.T) {
	tests := []struct {
		name          string
		cfg           func() Config
		wantSubmeshes int
		wantErr       error
	}{
		{"default sphere", DefaultConfig, 1, nil},
		{"model", modelConfig, 2, nil},
		{"missing model", func() Config {
			c := modelConfig()
			c.Mesh.Path = "testdata/missing.obj"
			return c
		}, 0, ErrAssetNotFound},
		{"bad segments", func() Config {
			c := DefaultConfig()
			c.Mesh.Segments = [2]int{2, 2}
			return c
		}, 0, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildMesh(tt.cfg())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildMesh: %v", err)
			}
			if len(m.Submeshes) != tt.wantSubmeshes {
				t.Errorf("submeshes = %d, want %d", len(m.Submeshes), tt.wantSubmeshes)
			}
			if err := m.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{renderer.ErrNoAdapter, ErrGPUNotSupported},
		{renderer.ErrNoDevice, ErrGPUNotSupported},
		{renderer.ErrNoQueue, ErrNoCommandQueue},
		{renderer.ErrNoDrawable, ErrNoDrawable},
		{renderer.ErrNoSubmesh, ErrNoSubmesh},
		{errors.New("boom"), ErrRenderFailed},
	}
	for _, tt := range tests {
		got := classify(tt.in, ErrRenderFailed)
		if !errors.Is(got, tt.want) || !errors.Is(got, tt.in) {
			t.Errorf("classify(%v) = %v, want it to wrap %v and the cause", tt.in, got, tt.want)
		}
	}
}
