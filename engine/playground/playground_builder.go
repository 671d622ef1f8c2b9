package playground

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
)

// PlaygroundBuilderOption is a functional option for configuring a Playground.
type PlaygroundBuilderOption func(*playground)

// WithWindow uses an existing window as the view host instead of creating one.
// The playground does not close an injected window.
//
// Parameters:
//   - w: the window to render into
//
// Returns:
//   - PlaygroundBuilderOption: a function that applies the window option
func WithWindow(w window.Window) PlaygroundBuilderOption {
	return func(p *playground) {
		p.window = w
	}
}

// WithRenderer uses an existing renderer instead of acquiring a new device.
// The playground does not release an injected renderer.
//
// Parameters:
//   - r: the renderer to draw with, already configured for the window's surface
//
// Returns:
//   - PlaygroundBuilderOption: a function that applies the renderer option
func WithRenderer(r renderer.Renderer) PlaygroundBuilderOption {
	return func(p *playground) {
		p.renderer = r
	}
}

// WithProfiler times each setup stage and render pass with the given profiler.
//
// Parameters:
//   - prof: the profiler to record into
//
// Returns:
//   - PlaygroundBuilderOption: a function that applies the profiler option
func WithProfiler(prof *profiler.Profiler) PlaygroundBuilderOption {
	return func(p *playground) {
		p.profiler = prof
	}
}
