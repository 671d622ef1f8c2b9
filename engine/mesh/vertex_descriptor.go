package mesh

import "github.com/cogentcore/webgpu/wgpu"

// VertexAttribute describes one named attribute inside an interleaved vertex.
type VertexAttribute struct {
	Name     string
	Format   wgpu.VertexFormat
	Offset   uint64
	Location uint32
}

// VertexDescriptor describes how a mesh's vertex buffer is laid out.
// Pipelines build their vertex state from it and check it against what the vertex shader reads.
type VertexDescriptor struct {
	Attributes []VertexAttribute
	Stride     uint64
}

// DefaultVertexDescriptor returns the descriptor matching Vertex: position at location 0,
// normal at location 1 and uv at location 2, with a 32-byte stride.
//
// Returns:
//   - VertexDescriptor: the descriptor for Vertex buffers
func DefaultVertexDescriptor() VertexDescriptor {
	return VertexDescriptor{
		Attributes: []VertexAttribute{
			{Name: "position", Format: wgpu.VertexFormatFloat32x3, Offset: 0, Location: 0},
			{Name: "normal", Format: wgpu.VertexFormatFloat32x3, Offset: 12, Location: 1},
			{Name: "uv", Format: wgpu.VertexFormatFloat32x2, Offset: 24, Location: 2},
		},
		Stride: VertexSize,
	}
}

// Attribute returns the attribute bound to the given shader location.
//
// Parameters:
//   - location: the shader location to look up
//
// Returns:
//   - VertexAttribute: the attribute at that location
//   - bool: false if no attribute uses the location
func (d VertexDescriptor) Attribute(location uint32) (VertexAttribute, bool) {
	for _, a := range d.Attributes {
		if a.Location == location {
			return a, true
		}
	}
	return VertexAttribute{}, false
}

// Layout converts the descriptor into a per-vertex WebGPU buffer layout containing every attribute.
//
// Returns:
//   - wgpu.VertexBufferLayout: the buffer layout for pipeline creation
func (d VertexDescriptor) Layout() wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(d.Attributes))
	for i, a := range d.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         a.Format,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: d.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}
