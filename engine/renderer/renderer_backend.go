package renderer

import "errors"

var (
	// ErrNoAdapter is returned when no GPU adapter compatible with the surface is available.
	ErrNoAdapter = errors.New("no compatible GPU adapter")
	// ErrNoDevice is returned when the adapter refuses to create a device.
	ErrNoDevice = errors.New("failed to create GPU device")
	// ErrNoQueue is returned when the device exposes no command queue.
	ErrNoQueue = errors.New("GPU device has no command queue")
	// ErrNoDrawable is returned by BeginFrame when the surface has no texture to render into.
	ErrNoDrawable = errors.New("surface has no drawable texture")
	// ErrPipelineNotFound is returned when a draw names a pipeline that was never registered.
	ErrPipelineNotFound = errors.New("pipeline not found")
	// ErrColorFormatMismatch is returned when a pipeline's color format differs from the surface format.
	ErrColorFormatMismatch = errors.New("pipeline color format does not match surface format")
	// ErrNoSubmesh is returned when a mesh has no index buffers to draw.
	ErrNoSubmesh = errors.New("mesh has no submeshes")
	// ErrNoFrame is returned by Draw and EndFrame outside of BeginFrame/EndFrame.
	ErrNoFrame = errors.New("no frame in progress")
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// ParsePresentMode maps "vsync" and "uncapped" to a PresentMode.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - PresentMode: the parsed mode
//   - bool: false if the name is unknown
func ParsePresentMode(s string) (PresentMode, bool) {
	switch s {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	default:
		return PresentModeVSync, false
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
