package playground

import "errors"

// Each abort condition of a playground run has its own sentinel. Errors returned by New, Setup
// and RenderOnce wrap one of these together with the underlying cause, so callers can use errors.Is.
var (
	ErrGPUNotSupported = errors.New("GPU is not supported")
	ErrNoCommandQueue  = errors.New("could not create a command queue")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrPipeline        = errors.New("could not build the render pipeline")
	ErrRenderFailed    = errors.New("render pass failed")
	ErrNoSubmesh       = errors.New("mesh has no submesh to draw")
	ErrNoDrawable      = errors.New("no drawable available")
	ErrInvalidConfig   = errors.New("invalid config")
)
