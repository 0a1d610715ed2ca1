package ribbon

import "math"

// railTables holds the derived arc-length parameterization of a ribbon:
// per-point photo-pixel positions, cumulative rail distances, normalized
// [0,1] rail coordinates, and the rectified texture dimensions implied by
// the measured edge lengths. All distances are measured in photo-pixel
// space so the rectified texture resolution matches the source content.
type railTables struct {
	// pixels is each boundary point's photo-space position converted to
	// pixel coordinates of the source image.
	pixels []Point

	// dist is the cumulative Euclidean distance along each point's rail,
	// indexed like the boundary sequence. dist[0] and dist[1] are 0.
	dist []float64

	// norm is dist normalized by the owning rail's total length,
	// independently per rail. Zero-length rails normalize to all zeros.
	norm []float64

	// evenTotal and oddTotal are the two rails' total lengths.
	evenTotal float64
	oddTotal  float64

	// texWidth and texHeight are the rectified texture's pixel
	// dimensions: the ceiling of the longer cross-rail edge and of the
	// longer rail, respectively.
	texWidth  int
	texHeight int
}

// computeRails derives the rail parameterization for the given boundary
// sequence and source photo dimensions. It reports false when the sequence
// has fewer than 2 points; callers keep their prior state in that case.
func computeRails(points []BoundaryPoint, photoW, photoH int) (railTables, bool) {
	n := len(points)
	if n < 2 {
		return railTables{}, false
	}

	t := railTables{
		pixels: make([]Point, n),
		dist:   make([]float64, n),
		norm:   make([]float64, n),
	}

	// Photo space is normalized to [-1,1]; map to pixel coordinates.
	for i, p := range points {
		t.pixels[i] = Point{
			X: (p.Photo.X*0.5 + 0.5) * float64(photoW),
			Y: (p.Photo.Y*0.5 + 0.5) * float64(photoH),
		}
	}

	// Walk both rails at once: index i and i+2 are neighbors on the same
	// rail, so each rail accumulates independently.
	for i := 0; i+2 < n; i++ {
		t.dist[i+2] = t.dist[i] + t.pixels[i+2].Distance(t.pixels[i])
	}

	// The last populated index of each rail depends on the parity of the
	// point count.
	evenLast, oddLast := n-2, n-1
	if n%2 != 0 {
		evenLast, oddLast = n-1, n-2
	}
	t.evenTotal = t.dist[evenLast]
	t.oddTotal = t.dist[oddLast]

	// Normalize each rail by its own total so both rails span [0,1]
	// independently; a flow effect then moves at the same relative speed
	// along rails of different physical length. A zero-length rail
	// normalizes to zeros instead of dividing by zero.
	for i := range t.norm {
		total := t.evenTotal
		if i%2 != 0 {
			total = t.oddTotal
		}
		if total > 0 {
			t.norm[i] = t.dist[i] / total
		}
	}

	firstEdge := t.pixels[0].Distance(t.pixels[1])
	lastEdge := t.pixels[n-2].Distance(t.pixels[n-1])
	t.texWidth = int(math.Ceil(math.Max(firstEdge, lastEdge)))
	t.texHeight = int(math.Ceil(math.Max(t.evenTotal, t.oddTotal)))

	return t, true
}

// TextureSize reports the rectified texture dimensions a renderer would
// allocate for the given area and photo dimensions. It reports false when
// the area is not yet renderable (fewer than 2 points).
func TextureSize(area *Area, photoW, photoH int) (width, height int, ok bool) {
	if area == nil {
		return 0, 0, false
	}
	t, ok := computeRails(area.Points(), photoW, photoH)
	if !ok {
		return 0, 0, false
	}
	return t.texWidth, t.texHeight, true
}
