package ribbon

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ribbon/internal/gpu"
	"github.com/gogpu/ribbon/render"
)

// Renderer construction errors.
var (
	// ErrNilDevice is returned when New is called without a device.
	ErrNilDevice = errors.New("ribbon: device is nil")

	// ErrNilQueue is returned when New is called without a queue.
	ErrNilQueue = errors.New("ribbon: queue is nil")

	// ErrNilArea is returned when New is called without an area.
	ErrNilArea = errors.New("ribbon: area is nil")

	// ErrNilPhotoSource is returned when New is called without a photo source.
	ErrNilPhotoSource = errors.New("ribbon: photo source is nil")
)

// Renderer draws one ribbon area. It subscribes to the area's geometry and
// the photo source, defers all derived-state recomputation to the next
// Render call via a single dirty flag, and owns every GPU object of the
// two-pass pipeline through its internal session.
//
// All methods must be called from the thread that owns the rendering
// context; see the package documentation for the threading model.
type Renderer struct {
	device hal.Device
	queue  hal.Queue
	area   *Area
	photos *PhotoSource

	session *gpu.Session

	// Subscription disposers, released on Destroy.
	unsubArea  func()
	unsubPhoto func()

	// photo is the current non-owning photo handle, replaced wholesale by
	// the photo source callback.
	photo *Photo

	// dirty defers rail parameterization, rectification, and buffer
	// rebuilds to the next Render call. Observer callbacks only set it.
	dirty bool

	// width and height size the viewport of on-screen passes. Zero means
	// "use the target surface's dimensions".
	width  int
	height int

	projection Mat4
	target     *render.Surface
	clearColor *[4]float64

	destroyed bool
}

// New creates a Renderer for the given area and photo source, using the
// host-provided device and queue. The renderer starts dirty, so the first
// Render call with a photo present builds all derived state.
func New(device hal.Device, queue hal.Queue, area *Area, photos *PhotoSource, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	if area == nil {
		return nil, ErrNilArea
	}
	if photos == nil {
		return nil, ErrNilPhotoSource
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		device:     device,
		queue:      queue,
		area:       area,
		photos:     photos,
		session:    gpu.NewSession(device, queue),
		photo:      photos.Photo(),
		dirty:      true,
		projection: o.projection,
		target:     o.target,
		clearColor: o.clearColor,
	}
	r.subscribe()

	Logger().Info("ribbon renderer created", "points", area.Len())
	return r, nil
}

// subscribe registers the area and photo observers. Callbacks only mutate
// renderer state; GPU work happens in Render.
func (r *Renderer) subscribe() {
	r.unsubArea = r.area.Subscribe(func() {
		r.dirty = true
	})
	r.unsubPhoto = r.photos.Subscribe(func(p *Photo) {
		r.photo = p
		r.dirty = true
	})
}

// SetResolution updates the viewport size used for on-screen passes.
func (r *Renderer) SetResolution(width, height int) {
	r.width = width
	r.height = height
}

// SetProjection replaces the projector-space to clip-space transform.
// Takes effect on the next Render call; the rectified texture does not
// depend on it, so no regeneration happens.
func (r *Renderer) SetProjection(m Mat4) {
	r.projection = m
}

// Render performs the full pipeline for one frame: if the renderer is
// dirty it recomputes the rail parameterization, regenerates the rectified
// texture, and rebuilds the vertex buffers, then composites the ribbon
// onto the target surface with the scroll offset derived from t.
//
// t is caller-supplied and monotonically increasing; playback speed and
// pause are entirely caller-controlled. The scroll pattern repeats with
// period 2 under mirrored wrapping.
//
// A nil target falls back to the surface configured with WithTarget.
// Failures never propagate: not-yet-renderable states skip the frame
// silently and GPU failures are logged, leaving the dirty flag set so the
// next cycle retries.
func (r *Renderer) Render(t float64, target *render.Surface) {
	if r.destroyed {
		return
	}
	if target == nil {
		target = r.target
	}
	if target == nil || target.View() == nil {
		Logger().Debug("render skipped: no target surface")
		return
	}
	if r.area.Len() < 2 || r.photo == nil || r.photo.View == nil {
		Logger().Debug("render skipped: not yet renderable",
			"points", r.area.Len(), "photo", r.photo != nil)
		return
	}

	if r.dirty {
		r.regenerate()
	}
	if !r.session.Ready() {
		Logger().Debug("render skipped: no generated strip yet")
		return
	}

	vpW, vpH := r.viewportSize(target)

	var clear *gputypes.Color
	if r.clearColor != nil {
		clear = &gputypes.Color{
			R: r.clearColor[0], G: r.clearColor[1],
			B: r.clearColor[2], A: r.clearColor[3],
		}
	}

	err := r.session.Composite(
		gpu.TargetBinding{
			View:   target.View(),
			Width:  uint32(target.Width()),  //nolint:gosec // host-sized surface
			Height: uint32(target.Height()), //nolint:gosec // host-sized surface
		},
		[16]float32(r.projection),
		float32(t),
		uint32(vpW), //nolint:gosec // host-sized viewport
		uint32(vpH), //nolint:gosec // host-sized viewport
		clear,
	)
	if err != nil {
		Logger().Warn("composite pass failed", "err", err)
	}
}

// viewportSize returns the viewport used for on-screen passes: the
// caller-set resolution, or the target's own dimensions when none is set.
func (r *Renderer) viewportSize(target *render.Surface) (int, int) {
	if r.width > 0 && r.height > 0 {
		return r.width, r.height
	}
	return target.Width(), target.Height()
}

// regenerate services the dirty flag: rail parameterization, strip texture
// rectification, and compositing buffer rebuilds. On GPU failure the flag
// stays set so the next cycle retries; previously generated state remains
// usable for compositing.
func (r *Renderer) regenerate() {
	tables, ok := computeRails(r.area.Points(), r.photo.Width, r.photo.Height)
	if !ok {
		Logger().Debug("regenerate skipped: fewer than 2 points")
		return
	}
	if tables.texWidth <= 0 || tables.texHeight <= 0 {
		Logger().Debug("regenerate skipped: degenerate strip dimensions",
			"width", tables.texWidth, "height", tables.texHeight)
		return
	}

	points := r.area.Points()
	err := r.session.Regenerate(
		gpu.PhotoBinding{
			View:   r.photo.View,
			Width:  uint32(r.photo.Width),  //nolint:gosec // bounded by MaxPhotoDim
			Height: uint32(r.photo.Height), //nolint:gosec // bounded by MaxPhotoDim
		},
		buildRectifyVertices(points, tables),
		buildCompositeVertices(points, tables),
		uint32(tables.texWidth),  //nolint:gosec // ceiling of photo-space length
		uint32(tables.texHeight), //nolint:gosec // ceiling of photo-space length
	)
	if err != nil {
		Logger().Warn("regenerate failed, will retry next cycle", "err", err)
		return
	}

	r.dirty = false
	Logger().Debug("strip regenerated",
		"points", len(points), "tex_w", tables.texWidth, "tex_h", tables.texHeight)
}

// Destroy releases all owned GPU resources and both subscriptions, so no
// callback fires afterwards. The renderer must not be used after Destroy.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	if r.unsubArea != nil {
		r.unsubArea()
		r.unsubArea = nil
	}
	if r.unsubPhoto != nil {
		r.unsubPhoto()
		r.unsubPhoto = nil
	}
	if r.session != nil {
		r.session.Destroy()
	}
	r.photo = nil

	Logger().Info("ribbon renderer destroyed")
}

// buildRectifyVertices produces the rectification pass's triangle strip:
// clip-space x is +1 for even-rail points and -1 for odd-rail points, y is
// the normalized rail coordinate remapped to [-1,1], and the second
// attribute carries the point's photo-pixel coordinate.
func buildRectifyVertices(points []BoundaryPoint, tables railTables) []gpu.RectifyVertex {
	verts := make([]gpu.RectifyVertex, len(points))
	for i := range points {
		x := float32(1)
		if i%2 != 0 {
			x = -1
		}
		verts[i] = gpu.RectifyVertex{
			X: x,
			Y: float32(tables.norm[i]*2 - 1),
			U: float32(tables.pixels[i].X),
			V: float32(tables.pixels[i].Y),
		}
	}
	return verts
}

// buildCompositeVertices produces the compositing pass's triangle strip:
// projector-space position with depth, and a UV whose x is 0 for even-rail
// points and 1 for odd-rail points with y the normalized rail coordinate.
func buildCompositeVertices(points []BoundaryPoint, tables railTables) []gpu.CompositeVertex {
	verts := make([]gpu.CompositeVertex, len(points))
	for i, p := range points {
		u := float32(0)
		if i%2 != 0 {
			u = 1
		}
		verts[i] = gpu.CompositeVertex{
			X: float32(p.Position.X),
			Y: float32(p.Position.Y),
			Z: float32(p.Depth),
			U: u,
			V: float32(tables.norm[i]),
		}
	}
	return verts
}
