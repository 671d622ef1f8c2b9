package playground

import (
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"
)

// MeshKind selects where the playground's mesh comes from.
type MeshKind string

const (
	// MeshKindSphere generates a UV sphere.
	MeshKindSphere MeshKind = "sphere"
	// MeshKindModel loads a Wavefront OBJ file.
	MeshKindModel MeshKind = "model"
)

// Config describes one playground run: the view, the mesh, and how it is drawn.
// Every field has a default, so an empty YAML document is a valid config.
type Config struct {
	Title       string     `yaml:"title"`
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	ClearColor  [4]float64 `yaml:"clearColor"`
	PresentMode string     `yaml:"presentMode"`
	MSAA        int        `yaml:"msaa"`
	Profile     bool       `yaml:"profile"`

	Mesh   MeshConfig   `yaml:"mesh"`
	Draw   DrawConfig   `yaml:"draw"`
	Shader ShaderConfig `yaml:"shader"`
}

// MeshConfig selects and shapes the mesh.
type MeshConfig struct {
	Kind          MeshKind   `yaml:"kind"`
	Path          string     `yaml:"path"`
	Extent        [3]float32 `yaml:"extent"`
	Segments      [2]int     `yaml:"segments"`
	InwardNormals bool       `yaml:"inwardNormals"`
	Geometry      string     `yaml:"geometry"`
}

// DrawConfig controls the draw calls and the draw_params uniform.
type DrawConfig struct {
	PerSubmesh bool       `yaml:"perSubmesh"`
	Offset     [3]float32 `yaml:"offset"`
	Color      [4]float32 `yaml:"color"`
}

// ShaderConfig optionally replaces the embedded WGSL program.
type ShaderConfig struct {
	Path string `yaml:"path"`
}

const (
	defaultTitle  = "Mesh Playground"
	defaultWidth  = 600
	defaultHeight = 600
)

// DefaultConfig returns the sphere playground: a 600x600 view cleared to (1, 1, 0.8, 1) showing a
// 0.75 extent sphere with 100x100 segments in constant red.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	c := renderer.DefaultClearColor
	return Config{
		Title:       defaultTitle,
		Width:       defaultWidth,
		Height:      defaultHeight,
		ClearColor:  [4]float64{c.R, c.G, c.B, c.A},
		PresentMode: "vsync",
		MSAA:        int(renderer.MSAAOff),
		Mesh: MeshConfig{
			Kind:     MeshKindSphere,
			Extent:   [3]float32{0.75, 0.75, 0.75},
			Segments: [2]int{100, 100},
			Geometry: mesh.GeometryTriangles.String(),
		},
		Draw: DrawConfig{
			Offset: [3]float32{0, -1, 0},
			Color:  [4]float32{1, 0, 0, 1},
		},
	}
}

// LoadConfig reads a YAML config file over DefaultConfig, so keys left out keep their defaults.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - Config: the merged, normalized and validated config
//   - error: error if the file cannot be read or parsed, or the result fails Validate
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize fills empty strings with their defaults and lower-cases the enumerated values.
func (c *Config) normalize() {
	c.Title = common.Coalesce(c.Title, defaultTitle)
	c.PresentMode = common.Coalesce(strings.ToLower(strings.TrimSpace(c.PresentMode)), "vsync")
	c.MSAA = common.Coalesce(c.MSAA, int(renderer.MSAAOff))
	c.Mesh.Kind = common.Coalesce(MeshKind(strings.ToLower(strings.TrimSpace(string(c.Mesh.Kind)))), MeshKindSphere)
	c.Mesh.Geometry = strings.ToLower(strings.TrimSpace(c.Mesh.Geometry))
}

// Validate reports the first problem that would stop the playground from running.
//
// Returns:
//   - error: error wrapping ErrInvalidConfig, or nil
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: view size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if _, ok := renderer.ParsePresentMode(c.PresentMode); !ok {
		return fmt.Errorf("%w: unknown present mode %q", ErrInvalidConfig, c.PresentMode)
	}
	if c.MSAA != int(renderer.MSAAOff) && c.MSAA != int(renderer.MSAA4x) {
		return fmt.Errorf("%w: msaa must be 1 or 4, got %d", ErrInvalidConfig, c.MSAA)
	}
	if _, err := mesh.ParseGeometryType(c.Mesh.Geometry); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Mesh.Kind {
	case MeshKindSphere:
		for i, e := range c.Mesh.Extent {
			if e <= 0 {
				return fmt.Errorf("%w: sphere extent[%d] = %v must be positive", ErrInvalidConfig, i, e)
			}
		}
		if c.Mesh.Segments[0] < 3 {
			return fmt.Errorf("%w: sphere needs at least 3 radial segments, got %d", ErrInvalidConfig, c.Mesh.Segments[0])
		}
		if c.Mesh.Segments[1] < 2 {
			return fmt.Errorf("%w: sphere needs at least 2 vertical segments, got %d", ErrInvalidConfig, c.Mesh.Segments[1])
		}
	case MeshKindModel:
		if c.Mesh.Path == "" {
			return fmt.Errorf("%w: mesh kind model needs a path", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown mesh kind %q", ErrInvalidConfig, c.Mesh.Kind)
	}
	return nil
}

// Geometry returns the parsed mesh geometry. Call it on a validated config.
func (c Config) Geometry() mesh.GeometryType {
	g, _ := mesh.ParseGeometryType(c.Mesh.Geometry)
	return g
}

// Clear returns the clear color as a wgpu color.
func (c Config) Clear() wgpu.Color {
	return wgpu.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}

// DrawParams returns the draw_params uniform contents for this config.
//
// Returns:
//   - mesh.DrawParams: the vertex offset and fragment color
func (c Config) DrawParams() mesh.DrawParams {
	o := c.Draw.Offset
	return mesh.DrawParams{
		Offset: [4]float32{o[0], o[1], o[2], 0},
		Color:  c.Draw.Color,
	}
}
