package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
)

func parseString(t *testing.T, src string) (*mesh.Mesh, error) {
	t.Helper()
	p := newOBJParser()
	if err := p.ParseReader(strings.NewReader(src)); err != nil {
		return nil, err
	}
	return p.Mesh("test")
}

func TestOBJFaceFormats(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		vertices  int
		indices   int
		hasNormal bool
	}{
		{
			name:     "positions only",
			src:      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
			vertices: 3, indices: 3,
		},
		{
			name:     "with texcoords",
			src:      "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nf 1/1 2/2 3/3\n",
			vertices: 3, indices: 3,
		},
		{
			name:     "with normals no texcoords",
			src:      "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n",
			vertices: 3, indices: 3, hasNormal: true,
		},
		{
			name:     "quad fan",
			src:      "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n",
			vertices: 4, indices: 6,
		},
		{
			name:     "negative indices",
			src:      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n",
			vertices: 3, indices: 3,
		},
		{
			name:     "w component and comments",
			src:      "# header\nv 0 0 0 1\nv 1 0 0 1 # trailing\nv 0 1 0 1\n\nf 1 2 3\n",
			vertices: 3, indices: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := parseString(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if m.VertexCount() != tt.vertices || m.IndexCount() != tt.indices {
				t.Fatalf("got %d vertices / %d indices, want %d / %d",
					m.VertexCount(), m.IndexCount(), tt.vertices, tt.indices)
			}
			if err := m.Validate(); err != nil {
				t.Fatal(err)
			}
			// Every face here lies in the z=0 plane and winds counter-clockwise.
			for i, v := range m.Vertices {
				if v.Normal != ([3]float32{0, 0, 1}) {
					t.Errorf("vertex %d normal = %v, want +z", i, v.Normal)
				}
			}
		})
	}
}

func TestOBJFlipsTexCoordV(t *testing.T) {
	m, err := parseString(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0.25\nf 1/1 2/1 3/1\n")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Vertices[0].TexCoord; got != [2]float32{0, 0.75} {
		t.Errorf("texcoord = %v, want [0 0.75]", got)
	}
}

func TestOBJDeduplicatesVertices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3\nf 1 3 4\n"
	m, err := parseString(t, src)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertices = %d, want 4 after dedupe", m.VertexCount())
	}
}

func TestOBJSubmeshes(t *testing.T) {
	src := strings.Join([]string{
		"v 0 0 0", "v 1 0 0", "v 0 1 0",
		"g empty",
		"g first",
		"usemtl red",
		"f 1 2 3",
		"usemtl blue",
		"f 3 2 1",
		"o second",
		"f 1 3 2",
	}, "\n")
	m, err := parseString(t, src)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ name, material string }{
		{"first", "red"},
		{"first", "blue"},
		{"second", "blue"},
	}
	if len(m.Submeshes) != len(want) {
		t.Fatalf("submeshes = %d, want %d", len(m.Submeshes), len(want))
	}
	for i, w := range want {
		sm := m.Submeshes[i]
		if sm.Name != w.name || sm.Material != w.material || len(sm.Indices) != 3 {
			t.Errorf("submesh %d = %q/%q with %d indices, want %q/%q", i, sm.Name, sm.Material, len(sm.Indices), w.name, w.material)
		}
	}
}

func TestOBJErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine string
	}{
		{"index out of range", "v 0 0 0\nv 1 0 0\nf 1 2 3\n", "line 3"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "line 4"},
		{"bad number", "v 0 x 0\n", "line 1"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n", "line 3"},
		{"bad normal ref", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n", "line 4"},
		{"short vertex", "v 0 0\n", "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseString(t, tt.src)
			if !errors.Is(err, ErrMalformedOBJ) {
				t.Fatalf("error = %v, want ErrMalformedOBJ", err)
			}
			if !strings.Contains(err.Error(), tt.wantLine) {
				t.Errorf("error %q does not mention %q", err, tt.wantLine)
			}
		})
	}
}

func TestOBJNoFaces(t *testing.T) {
	if _, err := parseString(t, "v 0 0 0\nv 1 0 0\n"); err == nil {
		t.Error("expected error for a file without faces")
	}
}
