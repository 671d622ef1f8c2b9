package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

const testShader = `//@play:include vertex_position

@vertex
fn vertex_main(in: VertexIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}

@fragment
fn fragment_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

type fakeTarget struct{ w, h int }

func (f fakeTarget) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f fakeTarget) Width() int { return f.w }
func (f fakeTarget) Height() int { return f.h }

type fakeBackend struct {
	format       wgpu.TextureFormat
	configured   [2]int
	clear        wgpu.Color
	registered   []string
	draws        []bind_group_provider.SubmeshBuffer
	beginErr     error
	frames       int
	released     bool
	presentCalls int
}

func (f *fakeBackend) Device() *wgpu.Device { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue { return nil }
func (f *fakeBackend) Surface() *wgpu.Surface { return nil }
func (f *fakeBackend) SurfaceFormat() wgpu.TextureFormat { return f.format }
func (f *fakeBackend) SetPresentMode(PresentMode) {}
func (f *fakeBackend) SetClearColor(c wgpu.Color) { f.clear = c }
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) {}
func (f *fakeBackend) Present() { f.presentCalls++ }
func (f *fakeBackend) Release() { f.released = true }

func (f *fakeBackend) ConfigureSurface(width, height int) error {
	f.configured = [2]int{width, height}
	return nil
}

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	f.registered = append(f.registered, p.PipelineKey())
	return nil
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, packed *mesh.Packed) error {
	for _, sm := range packed.Submeshes {
		provider.AddSubmesh(bind_group_provider.SubmeshBuffer{Name: sm.Name, IndexCount: sm.IndexCount, Format: sm.Format.WGPU()})
	}
	return nil
}

func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]uint64) error {
	return nil
}

func (f *fakeBackend) BeginFrame() error {
	if f.beginErr != nil {
		return f.beginErr
	}
	f.frames++
	return nil
}

func (f *fakeBackend) DrawIndexed(_ pipeline.Pipeline, _ *wgpu.Buffer, sub bind_group_provider.SubmeshBuffer, _ []bind_group_provider.BindGroupProvider) {
	f.draws = append(f.draws, sub)
}

func (f *fakeBackend) EndFrame() error { return nil }

func newTestPipeline(t *testing.T, key string, opts ...pipeline.PipelineBuilderOption) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader(key, shader.ShaderTypeVertex, testShader)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := shader.NewShader(key, shader.ShaderTypeFragment, testShader)
	if err != nil {
		t.Fatal(err)
	}
	return pipeline.NewPipeline(key, append([]pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	}, opts...)...)
}

func newTestRenderer(t *testing.T, b *fakeBackend, opts ...RendererBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeWGPU, fakeTarget{600, 600}, append([]RendererBuilderOption{withBackend(b)}, opts...)...)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	b := &fakeBackend{format: wgpu.TextureFormatBGRA8Unorm}
	r := newTestRenderer(t, b, WithPipeline(newTestPipeline(t, "sphere")))

	if b.configured != [2]int{600, 600} {
		t.Errorf("surface configured at %v, want 600x600", b.configured)
	}
	if b.clear != DefaultClearColor || r.ClearColor() != DefaultClearColor {
		t.Errorf("clear color = %v, want %v", b.clear, DefaultClearColor)
	}
	if r.Pipeline("sphere") == nil || len(b.registered) != 1 {
		t.Error("WithPipeline should register the pipeline")
	}
	if r.SurfaceFormat() != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v", r.SurfaceFormat())
	}
}

func TestRegisterPipelines(t *testing.T) {
	b := &fakeBackend{format: wgpu.TextureFormatBGRA8Unorm}
	r := newTestRenderer(t, b)

	p := newTestPipeline(t, "a")
	if err := r.RegisterPipelines(p, p); err != nil {
		t.Fatalf("RegisterPipelines: %v", err)
	}
	if len(b.registered) != 1 {
		t.Errorf("duplicate keys should be skipped, registered %v", b.registered)
	}

	mismatch := newTestPipeline(t, "b", pipeline.WithColorFormat(wgpu.TextureFormatRGBA8Unorm))
	if err := r.RegisterPipelines(mismatch); !errors.Is(err, ErrColorFormatMismatch) {
		t.Errorf("err = %v, want ErrColorFormatMismatch", err)
	}

	if err := r.RegisterPipelines(pipeline.NewPipeline("c")); !errors.Is(err, pipeline.ErrMissingShader) {
		t.Errorf("err = %v, want ErrMissingShader", err)
	}
}

func TestDraw(t *testing.T) {
	b := &fakeBackend{format: wgpu.TextureFormatBGRA8Unorm}
	r := newTestRenderer(t, b, WithPipeline(newTestPipeline(t, "model")))

	provider := bind_group_provider.NewBindGroupProvider("mesh",
		bind_group_provider.WithSubmesh(bind_group_provider.SubmeshBuffer{Name: "a", IndexCount: 6}),
		bind_group_provider.WithSubmesh(bind_group_provider.SubmeshBuffer{Name: "b", IndexCount: 12}),
	)

	if err := r.Draw("model", provider, nil, false); !errors.Is(err, ErrNoFrame) {
		t.Fatalf("Draw outside a frame = %v, want ErrNoFrame", err)
	}

	if err := r.BeginFrame(); err != nil {
		t.Fatal(err)
	}
	if err := r.Draw("missing", provider, nil, false); !errors.Is(err, ErrPipelineNotFound) {
		t.Errorf("err = %v, want ErrPipelineNotFound", err)
	}
	if err := r.Draw("model", bind_group_provider.NewBindGroupProvider("empty"), nil, false); !errors.Is(err, ErrNoSubmesh) {
		t.Errorf("err = %v, want ErrNoSubmesh", err)
	}

	if err := r.Draw("model", provider, nil, false); err != nil {
		t.Fatal(err)
	}
	if len(b.draws) != 1 || b.draws[0].Name != "a" {
		t.Fatalf("single draw should use the first submesh, got %+v", b.draws)
	}

	b.draws = nil
	if err := r.Draw("model", provider, nil, true); err != nil {
		t.Fatal(err)
	}
	if len(b.draws) != 2 || b.draws[1].IndexCount != 12 {
		t.Fatalf("per-submesh draw should issue one draw per submesh, got %+v", b.draws)
	}

	if err := r.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if err := r.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("second EndFrame = %v, want ErrNoFrame", err)
	}
	r.Present()
	if b.presentCalls != 1 {
		t.Errorf("Present calls = %d", b.presentCalls)
	}
}

func TestBeginFrameError(t *testing.T) {
	b := &fakeBackend{beginErr: ErrNoDrawable}
	r := newTestRenderer(t, b)
	if err := r.BeginFrame(); !errors.Is(err, ErrNoDrawable) {
		t.Fatalf("err = %v, want ErrNoDrawable", err)
	}
	if err := r.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Error("a failed BeginFrame must not start a frame")
	}
}

func TestRelease(t *testing.T) {
	b := &fakeBackend{}
	r := newTestRenderer(t, b, WithPipeline(newTestPipeline(t, "p")))
	r.Release()
	if !b.released || len(r.Pipelines()) != 0 {
		t.Error("Release should clear pipelines and release the backend")
	}
}

func TestParsePresentMode(t *testing.T) {
	if m, ok := ParsePresentMode("uncapped"); !ok || m != PresentModeUncapped {
		t.Error("uncapped should parse")
	}
	if _, ok := ParsePresentMode("mailbox"); ok {
		t.Error("unknown modes should not parse")
	}
}
