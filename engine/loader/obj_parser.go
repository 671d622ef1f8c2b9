package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
)

// Common errors returned by the parser
var (
	// ErrMalformedOBJ is wrapped by every syntax or index error in an OBJ stream.
	ErrMalformedOBJ = errors.New("malformed obj")
	errNoFaces      = errors.New("obj contains no faces")
)

// objParserImpl is the implementation of the objParser interface.
type objParserImpl struct {
	baseDir string

	positions [][3]float32
	texCoords [][2]float32
	normals   [][3]float32

	vertices  []mesh.Vertex
	dedupe    map[objVertexKey]uint32
	submeshes []mesh.Submesh
	current   *mesh.Submesh

	materialLibs []string
}

// objVertexKey identifies one unique (position, texcoord, normal) reference triple.
// Missing texcoord or normal references are stored as -1.
type objVertexKey struct {
	v, vt, vn int
}

// objParser defines the interface for reading Wavefront OBJ geometry.
// This is internal to the loader package.
type objParser interface {
	// Parse loads and parses an OBJ file from the given path.
	//
	// Parameters:
	//   - path: path to the .obj file
	//
	// Returns:
	//   - error: error if the file cannot be read or is malformed
	Parse(path string) error

	// ParseReader parses OBJ text from a reader.
	//
	// Parameters:
	//   - r: reader containing OBJ text
	//
	// Returns:
	//   - error: error if reading fails or the text is malformed
	ParseReader(r io.Reader) error

	// Mesh assembles the parsed data into a mesh with one submesh per object, group or material run.
	// Vertices without a normal in the file receive generated ones.
	//
	// Parameters:
	//   - name: the mesh name
	//
	// Returns:
	//   - *mesh.Mesh: the assembled mesh
	//   - error: error if no faces were parsed
	Mesh(name string) (*mesh.Mesh, error)

	// MaterialLibraries returns the mtllib references in file order, resolved against the file's directory.
	MaterialLibraries() []string
}

var _ objParser = &objParserImpl{}

// newOBJParser creates a new OBJ parser instance.
//
// Returns:
//   - objParser: a new parser instance
func newOBJParser() objParser {
	return &objParserImpl{
		dedupe: make(map[objVertexKey]uint32),
	}
}

func (p *objParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.ParseReader(f)
}

func (p *objParserImpl) ParseReader(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := p.parseLine(fields); err != nil {
			return fmt.Errorf("%w: line %d: %w", ErrMalformedOBJ, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	return nil
}

func (p *objParserImpl) MaterialLibraries() []string {
	return p.materialLibs
}

func (p *objParserImpl) Mesh(name string) (*mesh.Mesh, error) {
	var subs []mesh.Submesh
	for _, sm := range p.submeshes {
		if len(sm.Indices) > 0 {
			subs = append(subs, sm)
		}
	}
	if len(subs) == 0 {
		return nil, errNoFaces
	}
	for i := range subs {
		if subs[i].Name == "" {
			subs[i].Name = fmt.Sprintf("%s_%d", name, i)
		}
	}

	m := &mesh.Mesh{
		Name:      name,
		Vertices:  p.vertices,
		Submeshes: subs,
	}
	mesh.GenerateNormals(m)
	return m, nil
}

// parseLine dispatches a single non-empty, comment-free line.
// Unknown statements (curves, smoothing groups, line elements) are skipped.
func (p *objParserImpl) parseLine(fields []string) error {
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3, 4)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.positions = append(p.positions, [3]float32{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 1, 3)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		var uv [2]float32
		uv[0] = v[0]
		if len(v) > 1 {
			uv[1] = v[1]
		}
		// OBJ puts v=0 at the bottom of the image; WebGPU samples v=0 at the top.
		uv[1] = 1 - uv[1]
		p.texCoords = append(p.texCoords, uv)
	case "vn":
		v, err := parseFloats(fields[1:], 3, 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.normals = append(p.normals, [3]float32{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		name := strings.Join(fields[1:], " ")
		p.startSubmesh(name, p.currentMaterial())
	case "usemtl":
		if len(fields) < 2 {
			return fmt.Errorf("usemtl without a material name")
		}
		p.startSubmesh(p.currentName(), strings.Join(fields[1:], " "))
	case "mtllib":
		for _, lib := range fields[1:] {
			p.materialLibs = append(p.materialLibs, filepath.Join(p.baseDir, lib))
		}
	}
	return nil
}

// startSubmesh begins a new submesh, or renames the current one when it has no faces yet.
func (p *objParserImpl) startSubmesh(name, material string) {
	if p.current != nil && len(p.current.Indices) == 0 {
		p.current.Name = name
		p.current.Material = material
		return
	}
	p.submeshes = append(p.submeshes, mesh.Submesh{
		Name:     name,
		Material: material,
		Geometry: mesh.GeometryTriangles,
	})
	p.current = &p.submeshes[len(p.submeshes)-1]
}

func (p *objParserImpl) currentName() string {
	if p.current == nil {
		return ""
	}
	return p.current.Name
}

func (p *objParserImpl) currentMaterial() string {
	if p.current == nil {
		return ""
	}
	return p.current.Material
}

// parseFace resolves every vertex reference of a polygon and fan-triangulates it around the first corner.
func (p *objParserImpl) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face has %d vertices, need at least 3", len(refs))
	}
	if p.current == nil {
		p.startSubmesh("", "")
	}

	corners := make([]uint32, len(refs))
	for i, ref := range refs {
		idx, err := p.resolveVertex(ref)
		if err != nil {
			return fmt.Errorf("face vertex %q: %w", ref, err)
		}
		corners[i] = idx
	}

	sm := p.current
	for k := 1; k+1 < len(corners); k++ {
		sm.Indices = append(sm.Indices, corners[0], corners[k], corners[k+1])
	}
	return nil
}

// resolveVertex converts a "v", "v/vt", "v//vn" or "v/vt/vn" reference into a deduplicated vertex index.
func (p *objParserImpl) resolveVertex(ref string) (uint32, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components")
	}

	key := objVertexKey{v: -1, vt: -1, vn: -1}
	var err error
	if key.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, fmt.Errorf("position: %w", err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolveIndex(parts[1], len(p.texCoords)); err != nil {
			return 0, fmt.Errorf("texcoord: %w", err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, fmt.Errorf("normal: %w", err)
		}
	}

	if idx, ok := p.dedupe[key]; ok {
		return idx, nil
	}

	v := mesh.Vertex{Position: p.positions[key.v]}
	if key.vt >= 0 {
		v.TexCoord = p.texCoords[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = p.normals[key.vn]
	}

	idx := uint32(len(p.vertices))
	p.vertices = append(p.vertices, v)
	p.dedupe[key] = idx
	return idx, nil
}

// resolveIndex converts a 1-based or negative (relative to the end) OBJ index into a 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	switch {
	case n > 0 && n <= count:
		return n - 1, nil
	case n < 0 && -n <= count:
		return count + n, nil
	default:
		return 0, fmt.Errorf("index %d out of range (%d defined)", n, count)
	}
}

// parseFloats parses between minN and maxN float fields.
func parseFloats(fields []string, minN, maxN int) ([]float32, error) {
	if len(fields) < minN || len(fields) > maxN {
		return nil, fmt.Errorf("expected %d to %d values, got %d", minN, maxN, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}
