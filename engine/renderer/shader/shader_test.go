package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

const modelSource = `//@play:include vertex_position
//@play:include draw_params
//@play:group 0 0 uniform params draw_params

@vertex
fn vertex_main(in: VertexIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position + params.offset.xyz, 1.0);
}

@fragment
fn fragment_main() -> @location(0) vec4<f32> {
    return params.color;
}
`

func TestNewShaderVertexStage(t *testing.T) {
	s, err := NewShader("model", ShaderTypeVertex, modelSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.EntryPoint() != "vertex_main" {
		t.Errorf("EntryPoint = %q, want vertex_main", s.EntryPoint())
	}
	if strings.Contains(s.Source(), "@play:") {
		t.Error("annotations should be expanded in Source")
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() || s.Module().Label != "model" {
		t.Error("Module should carry the processed source and the key as label")
	}

	layout, ok := s.VertexLayout()
	if !ok {
		t.Fatal("expected a vertex layout")
	}
	if len(layout.Attributes) != 1 || layout.Attributes[0].Format != wgpu.VertexFormatFloat32x3 || layout.ArrayStride != 12 {
		t.Errorf("unexpected vertex layout %+v", layout)
	}

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("expected 1 entry in group 0, got %d", len(desc.Entries))
	}
	e := desc.Entries[0]
	if e.Buffer.Type != wgpu.BufferBindingTypeUniform || e.Visibility != wgpu.ShaderStageVertex || e.Buffer.MinBindingSize != mesh.DrawParamsSize {
		t.Errorf("unexpected entry %+v", e)
	}
	if s.BindGroupVarName(0, 0) != "params" {
		t.Errorf("BindGroupVarName(0, 0) = %q", s.BindGroupVarName(0, 0))
	}
	if b, ok := s.BindGroupFromVarName(0, "params"); !ok || b != 0 {
		t.Errorf("BindGroupFromVarName = %d, %v", b, ok)
	}
	if _, ok := s.BindGroupFromVarName(1, "params"); ok {
		t.Error("group 1 should not declare params")
	}
	if len(s.Declarations()) != 1 {
		t.Errorf("expected 1 declaration, got %d", len(s.Declarations()))
	}
}

func TestNewShaderFragmentStage(t *testing.T) {
	s, err := NewShader("model", ShaderTypeFragment, modelSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.EntryPoint() != "fragment_main" {
		t.Errorf("EntryPoint = %q, want fragment_main", s.EntryPoint())
	}
	if _, ok := s.VertexLayout(); ok {
		t.Error("fragment shaders have no vertex layout")
	}
	if s.BindGroupLayoutDescriptor(0).Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Error("fragment bindings should be visible to the fragment stage")
	}
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name       string
		shaderType ShaderType
		source     string
		want       error
	}{
		{
			name:       "missing entry point",
			shaderType: ShaderTypeFragment,
			source:     "@vertex fn vs() -> @builtin(position) vec4f { return vec4f(); }",
			want:       ErrNoEntryPoint,
		},
		{
			name:       "texture binding",
			shaderType: ShaderTypeFragment,
			source:     "@group(0) @binding(0) var tex: texture_2d<f32>;\n@fragment fn fs() -> @location(0) vec4f { return vec4f(); }",
			want:       ErrUnsupportedBinding,
		},
		{
			name:       "matrix vertex input",
			shaderType: ShaderTypeVertex,
			source:     "@vertex fn vs(@location(0) m: mat2x2<f32>) -> @builtin(position) vec4f { return vec4f(); }",
			want:       ErrUnsupportedVertexType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader("bad", tt.shaderType, tt.source)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewShader("bad", ShaderTypeVertex, "//@play:include nope\n"); err == nil {
		t.Error("expected a pre-processor error")
	}
}

func TestNewShaderFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.wgsl")
	if err := os.WriteFile(path, []byte(modelSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewShaderFromPath("model", ShaderTypeVertex, path); err != nil {
		t.Fatalf("NewShaderFromPath: %v", err)
	}
	if _, err := NewShaderFromPath("model", ShaderTypeVertex, filepath.Join(t.TempDir(), "missing.wgsl")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseVertexInput(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantOK    bool
		wantLocs  []uint32
		wantStide uint64
	}{
		{
			name: "struct parameter",
			source: `struct VertexInput {
    @location(1) normal: vec3<f32>,
    @location(0) position: vec3<f32>,
    @location(2) uv: vec2<f32>,
}
@vertex fn vs(in: VertexInput) -> @builtin(position) vec4f { return vec4f(); }`,
			wantOK:    true,
			wantLocs:  []uint32{0, 1, 2},
			wantStide: 32,
		},
		{
			name:      "loose parameters with builtin",
			source:    `@vertex fn vs(@builtin(vertex_index) i: u32, @location(0) p: vec3f, @location(1) c: vec4f) -> @builtin(position) vec4f { return vec4f(); }`,
			wantOK:    true,
			wantLocs:  []uint32{0, 1},
			wantStide: 28,
		},
		{
			name: "output struct is ignored",
			source: `struct Out { @builtin(position) pos: vec4f, @location(0) color: vec4f, }
@vertex fn vs(@builtin(vertex_index) i: u32) -> Out { var o: Out; return o; }`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, ok, err := parseVertexInput(tt.source, "vs")
			if err != nil {
				t.Fatalf("parseVertexInput: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if layout.ArrayStride != tt.wantStide {
				t.Errorf("stride = %d, want %d", layout.ArrayStride, tt.wantStide)
			}
			for i, loc := range tt.wantLocs {
				if layout.Attributes[i].ShaderLocation != loc {
					t.Errorf("attribute %d location = %d, want %d", i, layout.Attributes[i].ShaderLocation, loc)
				}
			}
		})
	}
}

func TestResolveTypeLayout(t *testing.T) {
	structs := parseStructBlocks(stripComments(`
struct Inner { a: vec3<f32>, b: f32, }
struct Outer { inner: Inner, list: array<vec2f, 3>, }
`))
	known := computeStructSizes(structs)

	tests := []struct {
		typeName string
		size     uint64
		align    uint64
	}{
		{"vec3<f32>", 12, 16},
		{"Inner", 16, 16},
		{"Outer", 48, 16},
		{"array<f32>", 4, 4},
		{"array<vec3f, 2>", 32, 16},
	}
	for _, tt := range tests {
		got, ok := resolveTypeLayout(tt.typeName, known)
		if !ok {
			t.Errorf("%s: not resolved", tt.typeName)
			continue
		}
		if got.size != tt.size || got.align != tt.align {
			t.Errorf("%s = {%d %d}, want {%d %d}", tt.typeName, got.size, got.align, tt.size, tt.align)
		}
	}
	if _, ok := resolveTypeLayout("Unknown", known); ok {
		t.Error("unknown types should not resolve")
	}
}

func TestStripComments(t *testing.T) {
	in := "a /* b /* nested */ c */ d // tail\ne"
	if got := stripComments(in); got != "a  d \ne\n" {
		t.Errorf("stripComments = %q", got)
	}
}
