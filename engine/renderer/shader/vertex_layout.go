package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrVertexLayoutMismatch is returned when a vertex shader reads an attribute the mesh does not provide
// in the same format.
var ErrVertexLayoutMismatch = errors.New("vertex layout mismatch")

// ValidateVertexLayout checks what a vertex shader reads against how mesh vertices are laid out, and
// returns the buffer layout the pipeline should use. Each location the shader reads must exist in the
// descriptor with exactly the same format. The result keeps the descriptor's stride and offsets and
// lists only the attributes the shader reads, so a shader may read a subset of each vertex.
//
// Parameters:
//   - shaderLayout: the tightly packed layout reflected from the shader
//   - desc: the vertex descriptor of the mesh buffers
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout to build the pipeline with
//   - error: error wrapping ErrVertexLayoutMismatch on a missing location or a format difference
func ValidateVertexLayout(shaderLayout wgpu.VertexBufferLayout, desc mesh.VertexDescriptor) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(shaderLayout.Attributes))
	for _, want := range shaderLayout.Attributes {
		have, ok := desc.Attribute(want.ShaderLocation)
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("%w: @location(%d) is not provided by the mesh", ErrVertexLayoutMismatch, want.ShaderLocation)
		}
		if have.Format != want.Format {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("%w: @location(%d) %s is %s in the shader but %s in the mesh",
				ErrVertexLayoutMismatch, want.ShaderLocation, have.Name, want.Format, have.Format)
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         have.Format,
			Offset:         have.Offset,
			ShaderLocation: have.Location,
		})
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: desc.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}
