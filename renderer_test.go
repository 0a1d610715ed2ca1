package ribbon

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/ribbon/render"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// createTargetView creates a BGRA8 render-attachment texture view usable
// as a target surface, and registers its release with t.Cleanup.
func createTargetView(t *testing.T, device hal.Device, w, h uint32) hal.TextureView {
	t.Helper()
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "test_target_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	t.Cleanup(func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	})
	return view
}

// uploadTestPhoto uploads a solid 400x400 photo and registers its release.
func uploadTestPhoto(t *testing.T, device hal.Device, queue hal.Queue) *Photo {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	photo, err := UploadPhoto(device, queue, img)
	if err != nil {
		t.Fatalf("UploadPhoto failed: %v", err)
	}
	t.Cleanup(func() { photo.Destroy(device) })
	return photo
}

func TestNewValidation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea()
	photos := NewPhotoSource()

	tests := []struct {
		name    string
		build   func() (*Renderer, error)
		wantErr error
	}{
		{"nil device", func() (*Renderer, error) { return New(nil, queue, area, photos) }, ErrNilDevice},
		{"nil queue", func() (*Renderer, error) { return New(device, nil, area, photos) }, ErrNilQueue},
		{"nil area", func() (*Renderer, error) { return New(device, queue, nil, photos) }, ErrNilArea},
		{"nil photos", func() (*Renderer, error) { return New(device, queue, area, nil) }, ErrNilPhotoSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.build(); err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRenderFullPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea(rectPoints()...)
	photos := NewPhotoSource()
	photos.Set(uploadTestPhoto(t, device, queue))

	r, err := New(device, queue, area, photos)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	if !r.dirty {
		t.Error("new renderer must start dirty")
	}

	target := render.NewSurface(createTargetView(t, device, 800, 600), 800, 600)
	r.Render(0, target)

	if r.dirty {
		t.Error("render must service the dirty flag")
	}
	if !r.session.Ready() {
		t.Fatal("session must be ready after first render")
	}
	if w, h := r.session.Size(); w != 400 || h != 400 {
		t.Errorf("strip texture = %dx%d, want 400x400", w, h)
	}

	// A second render with the same time must not regenerate.
	r.Render(0, target)
	if r.dirty {
		t.Error("clean renderer must stay clean across renders")
	}
}

func TestRenderSkipsWhenNotRenderable(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea(rectPoints()...)
	photos := NewPhotoSource()

	r, err := New(device, queue, area, photos)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	target := render.NewSurface(createTargetView(t, device, 640, 480), 640, 480)

	// No photo yet: render is a silent no-op and the flag stays dirty.
	r.Render(0, target)
	if !r.dirty {
		t.Error("render without a photo must not service the dirty flag")
	}
	if r.session.Ready() {
		t.Error("session must not be ready without a photo")
	}

	// Too few points: same story even with a photo bound.
	photos.Set(uploadTestPhoto(t, device, queue))
	area.SetPoints(area.Points()[:1])
	r.Render(0, target)
	if r.session.Ready() {
		t.Error("session must not be ready with one point")
	}

	// Nil target with no default: no-op.
	area.SetPoints(rectPoints())
	r.Render(0, nil)
	if r.session.Ready() {
		t.Error("render without a target must not run the pipeline")
	}
}

func TestRenderDirtyOnChanges(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea(rectPoints()...)
	photos := NewPhotoSource()
	photos.Set(uploadTestPhoto(t, device, queue))

	r, err := New(device, queue, area, photos)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	target := render.NewSurface(createTargetView(t, device, 800, 600), 800, 600)
	r.Render(0, target)
	if r.dirty {
		t.Fatal("expected clean after render")
	}

	area.SetPoint(0, BoundaryPoint{Photo: Pt(-0.5, -1)})
	if !r.dirty {
		t.Error("geometry change must mark the renderer dirty")
	}
	r.Render(1, target)
	if r.dirty {
		t.Error("render must service the dirty flag again")
	}

	photos.Set(photos.Photo())
	if !r.dirty {
		t.Error("photo change must mark the renderer dirty")
	}
}

func TestViewportSize(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r, err := New(device, queue, NewArea(), NewPhotoSource())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	target := render.NewSurface(nil, 1024, 768)

	if w, h := r.viewportSize(target); w != 1024 || h != 768 {
		t.Errorf("default viewport = %dx%d, want target 1024x768", w, h)
	}

	r.SetResolution(800, 600)
	if w, h := r.viewportSize(target); w != 800 || h != 600 {
		t.Errorf("viewport = %dx%d, want 800x600 after SetResolution", w, h)
	}
}

func TestDestroyUnsubscribes(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea(rectPoints()...)
	photos := NewPhotoSource()
	photos.Set(uploadTestPhoto(t, device, queue))

	r, err := New(device, queue, area, photos)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	target := render.NewSurface(createTargetView(t, device, 800, 600), 800, 600)
	r.Render(0, target)
	r.Destroy()

	// Mutations after Destroy must not reach the renderer.
	r.dirty = false
	area.SetPoints(rectPoints())
	photos.Set(nil)
	if r.dirty {
		t.Error("callback fired after Destroy")
	}

	// Rendering after Destroy is a no-op, not a crash.
	r.Render(1, target)
}

func TestRenderWithOptions(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	area := NewArea(rectPoints()...)
	photos := NewPhotoSource()
	photos.Set(uploadTestPhoto(t, device, queue))

	target := render.NewSurface(createTargetView(t, device, 1920, 1080), 1920, 1080)

	r, err := New(device, queue, area, photos,
		WithProjection(Ortho2D(1920, 1080)),
		WithTarget(target),
		WithClearColor(0, 0, 0, 1),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer r.Destroy()

	if r.projection != Ortho2D(1920, 1080) {
		t.Error("WithProjection not applied")
	}

	// Nil target falls back to the configured default.
	r.Render(0.5, nil)
	if !r.session.Ready() {
		t.Error("render with default target must run the pipeline")
	}
}
