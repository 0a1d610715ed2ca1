// Package ribbon renders a photographic image onto an irregular
// quadrilateral surface (a "triangle strip area") defined by two rails of
// interleaved boundary points, producing an animated, scrolling, undistorted
// mapping of the photo in projector space.
//
// # Overview
//
// A ribbon is described by an ordered sequence of boundary points. Points at
// even indices form one rail, points at odd indices form the other. Each
// point carries a projector-space position with depth and a photo-space
// position in normalized [-1,1] coordinates. The renderer measures both
// rails in photo-pixel space, resamples the photo content bounded by the
// ribbon into an intermediate rectified texture, and then draws the ribbon
// at its true on-screen geometry while scrolling the rectified texture along
// the rail-distance axis.
//
// # Quick Start
//
//	area := ribbon.NewArea(
//	    ribbon.BoundaryPoint{Position: ribbon.Pt(100, 100), Photo: ribbon.Pt(-1, -1)},
//	    ribbon.BoundaryPoint{Position: ribbon.Pt(500, 120), Photo: ribbon.Pt(1, -1)},
//	    ribbon.BoundaryPoint{Position: ribbon.Pt(80, 400), Photo: ribbon.Pt(-1, 1)},
//	    ribbon.BoundaryPoint{Position: ribbon.Pt(520, 380), Photo: ribbon.Pt(1, 1)},
//	)
//	photos := ribbon.NewPhotoSource()
//
//	r, err := ribbon.New(device, queue, area, photos)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	r.SetResolution(800, 600)
//	r.Render(t, surface) // each frame; t advances the scroll
//
// # Architecture
//
// The library is organized into:
//   - Public API: Area, BoundaryPoint, PhotoSource, Renderer, Mat4, Point
//   - render: host integration (device handoff, target surfaces)
//   - internal/gpu: the two render pipelines (rectification, compositing)
//     and the generated-texture lifecycle
//
// # Rendering Model
//
// Geometry and photo changes never trigger GPU work directly. Observers
// flip a dirty flag, and the next Render call regenerates the rail
// parameterization, the rectified texture, and the vertex buffers at most
// once per frame. Rendering is single-threaded and frame-driven; all work
// happens synchronously on the thread that owns the rendering context.
//
// # Coordinate Systems
//
// Photo space is the source image's own coordinate system, stored
// normalized to [-1,1] per axis. Projector space is the output coordinate
// system in which the ribbon is composited; the host supplies the
// projector-to-clip transform as a Mat4.
package ribbon

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
