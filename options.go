package ribbon

import "github.com/gogpu/ribbon/render"

// Option configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	// Composite over the host's frame with an explicit projection
//	r, err := ribbon.New(device, queue, area, photos,
//	    ribbon.WithProjection(ribbon.Ortho2D(1920, 1080)),
//	)
type Option func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	projection Mat4
	target     *render.Surface
	clearColor *[4]float64
}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		projection: Mat4Identity(),
	}
}

// WithProjection sets the projector-space to clip-space transform applied
// by the compositing pass. Defaults to identity, which treats projector
// positions as clip-space coordinates. Hosts with pixel-coordinate
// projector spaces typically pass Ortho2D of their output resolution.
//
// The projection can be changed later with Renderer.SetProjection.
func WithProjection(m Mat4) Option {
	return func(o *rendererOptions) {
		o.projection = m
	}
}

// WithTarget sets the default target surface used when Render is called
// with a nil target. Without a default, a nil-target Render is skipped.
func WithTarget(s *render.Surface) Option {
	return func(o *rendererOptions) {
		o.target = s
	}
}

// WithClearColor makes each compositing pass clear the target to the given
// color before drawing. Without it, existing target content is preserved
// and the ribbon is alpha blended over it, which is what projection hosts
// compositing several areas onto one frame want.
func WithClearColor(r, g, b, a float64) Option {
	return func(o *rendererOptions) {
		o.clearColor = &[4]float64{r, g, b, a}
	}
}
