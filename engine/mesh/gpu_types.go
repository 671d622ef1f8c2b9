package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// VertexSource is the canonical WGSL definition of the full VertexInput struct.
// Matches Vertex layout exactly (32 bytes: position, normal, uv).
//
//go:embed assets/vertex.wgsl
var VertexSource string

// VertexPositionSource is the WGSL definition of a VertexIn struct that only reads location 0.
// Shaders using it bind against the same 32-byte buffer and ignore the normal and uv attributes.
//
//go:embed assets/vertex_position.wgsl
var VertexPositionSource string

// DrawParamsSource is the WGSL definition of the DrawParams uniform struct.
// Matches DrawParams layout exactly (32 bytes).
//
//go:embed assets/draw_params.wgsl
var DrawParamsSource string

// VertexSize is the byte size of one interleaved vertex in the vertex buffer.
const VertexSize = 32

// Vertex is a single interleaved mesh vertex as it is laid out in the GPU vertex buffer.
// Size: 32 bytes (no padding required).
type Vertex struct {
	Position [3]float32 // offset  0: model space position (12 bytes)
	Normal   [3]float32 // offset 12: unit normal, zero when unknown (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the Vertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (v *Vertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// Marshal serializes the vertex into a new 32-byte little-endian buffer.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.MarshalTo(buf)
	return buf
}

// MarshalTo serializes the vertex into dst, which must hold at least VertexSize bytes.
// The allocator uses this to fill one shared vertex buffer from several workers.
//
// Parameters:
//   - dst: destination slice, at least 32 bytes long
func (v *Vertex) MarshalTo(dst []byte) {
	_ = dst[VertexSize-1]
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(dst[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(dst[20:24], math.Float32bits(v.Normal[2]))
	binary.LittleEndian.PutUint32(dst[24:28], math.Float32bits(v.TexCoord[0]))
	binary.LittleEndian.PutUint32(dst[28:32], math.Float32bits(v.TexCoord[1]))
}

// DrawParamsSize is the byte size of the DrawParams uniform.
const DrawParamsSize = 32

// DrawParams is the per-draw uniform consumed by shaders that include DrawParamsSource.
// Size: 32 bytes (two vec4<f32>, uniform aligned).
type DrawParams struct {
	Offset [4]float32 // offset  0: translation added to every vertex position, w unused (16 bytes)
	Color  [4]float32 // offset 16: RGBA output color (16 bytes)
}

// Marshal serializes the draw params into a 32-byte buffer suitable for a uniform upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (p *DrawParams) Marshal() []byte {
	buf := make([]byte, DrawParamsSize)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(p.Offset[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(p.Color[i]))
	}
	return buf
}
