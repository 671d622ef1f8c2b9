package playground

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 600 {
		t.Errorf("view = %dx%d, want 600x600", cfg.Width, cfg.Height)
	}
	if cfg.Clear() != (wgpu.Color{R: 1, G: 1, B: 0.8, A: 1}) {
		t.Errorf("clear = %+v", cfg.Clear())
	}
	if cfg.Mesh.Kind != MeshKindSphere || cfg.Mesh.Extent != [3]float32{0.75, 0.75, 0.75} || cfg.Mesh.Segments != [2]int{100, 100} {
		t.Errorf("mesh = %+v, want a 0.75 sphere with 100x100 segments", cfg.Mesh)
	}
	if cfg.Geometry() != mesh.GeometryTriangles {
		t.Errorf("geometry = %v, want triangles", cfg.Geometry())
	}

	p := cfg.DrawParams()
	if p.Offset != [4]float32{0, -1, 0, 0} || p.Color != [4]float32{1, 0, 0, 1} {
		t.Errorf("draw params = %+v, want offset (0,-1,0) and red", p)
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	cfg, err := LoadConfig("testdata/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Title != "Model Playground" || cfg.Width != 800 {
		t.Errorf("title/width = %q/%d", cfg.Title, cfg.Width)
	}
	if cfg.Height != 600 {
		t.Errorf("height = %d, want the default 600", cfg.Height)
	}
	if cfg.PresentMode != "uncapped" {
		t.Errorf("present mode = %q, want it lower-cased", cfg.PresentMode)
	}
	if cfg.Mesh.Kind != MeshKindModel || cfg.Geometry() != mesh.GeometryLines {
		t.Errorf("mesh = %+v", cfg.Mesh)
	}
	if !cfg.Draw.PerSubmesh || cfg.Draw.Color != [4]float32{0, 1, 0, 1} {
		t.Errorf("draw = %+v", cfg.Draw)
	}
	if cfg.Draw.Offset != [3]float32{0, -1, 0} {
		t.Errorf("offset = %v, want the default", cfg.Draw.Offset)
	}
}

func TestLoadConfigEmptyFileIsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("empty file = %+v, want defaults", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig("testdata/none.yaml"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: err = %v, want os.ErrNotExist", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"unknown present mode", func(c *Config) { c.PresentMode = "mailbox" }},
		{"msaa 2", func(c *Config) { c.MSAA = 2 }},
		{"unknown geometry", func(c *Config) { c.Mesh.Geometry = "points" }},
		{"flat extent", func(c *Config) { c.Mesh.Extent[1] = 0 }},
		{"two radial segments", func(c *Config) { c.Mesh.Segments[0] = 2 }},
		{"one vertical segment", func(c *Config) { c.Mesh.Segments[1] = 1 }},
		{"model without path", func(c *Config) { c.Mesh.Kind = MeshKindModel }},
		{"unknown kind", func(c *Config) { c.Mesh.Kind = "cube" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := Config{Width: 1, Height: 1}
	cfg.normalize()
	if cfg.Title == "" || cfg.PresentMode != "vsync" || cfg.MSAA != 1 || cfg.Mesh.Kind != MeshKindSphere {
		t.Errorf("normalize left %+v", cfg)
	}

	cfg = Config{Mesh: MeshConfig{Kind: " Model ", Geometry: "LINES"}}
	cfg.normalize()
	if cfg.Mesh.Kind != MeshKindModel || cfg.Mesh.Geometry != "lines" {
		t.Errorf("normalize = %+v", cfg.Mesh)
	}
}
