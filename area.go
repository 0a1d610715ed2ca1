package ribbon

// BoundaryPoint is one element of a ribbon's ordered boundary sequence.
// Points at even indices form one rail, points at odd indices form the
// other; the sequence must be interleaved by construction.
type BoundaryPoint struct {
	// Position is the point's projector-space 2D position.
	Position Point

	// Depth is the projector-space depth component.
	Depth float64

	// Photo is the point's photo-space position, normalized to [-1,1]
	// per axis over the source image.
	Photo Point
}

// Area owns the ordered boundary point sequence of one ribbon and notifies
// subscribed observers on every mutation. The renderer holds a non-owning
// reference and subscribes for change notifications; mutation is the
// business of the editing host.
//
// Area is not safe for concurrent use. All mutations and notifications
// happen synchronously on the caller's goroutine, matching the
// single-threaded frame-driven model of the renderer.
type Area struct {
	points    []BoundaryPoint
	observers map[int]func()
	nextID    int
}

// NewArea creates an Area with the given initial boundary points.
func NewArea(points ...BoundaryPoint) *Area {
	a := &Area{
		points:    make([]BoundaryPoint, len(points)),
		observers: make(map[int]func()),
	}
	copy(a.points, points)
	return a
}

// Len returns the number of boundary points.
func (a *Area) Len() int {
	return len(a.points)
}

// Points returns a copy of the boundary point sequence.
func (a *Area) Points() []BoundaryPoint {
	pts := make([]BoundaryPoint, len(a.points))
	copy(pts, a.points)
	return pts
}

// Point returns the boundary point at index i.
func (a *Area) Point(i int) BoundaryPoint {
	return a.points[i]
}

// SetPoints replaces the entire boundary sequence and notifies observers.
func (a *Area) SetPoints(points []BoundaryPoint) {
	a.points = make([]BoundaryPoint, len(points))
	copy(a.points, points)
	a.notify()
}

// SetPoint replaces the boundary point at index i and notifies observers.
func (a *Area) SetPoint(i int, p BoundaryPoint) {
	a.points[i] = p
	a.notify()
}

// Append adds points to the end of the sequence and notifies observers.
func (a *Area) Append(points ...BoundaryPoint) {
	a.points = append(a.points, points...)
	a.notify()
}

// Insert inserts a point before index i and notifies observers.
func (a *Area) Insert(i int, p BoundaryPoint) {
	a.points = append(a.points, BoundaryPoint{})
	copy(a.points[i+1:], a.points[i:])
	a.points[i] = p
	a.notify()
}

// Remove deletes the point at index i and notifies observers.
func (a *Area) Remove(i int) {
	a.points = append(a.points[:i], a.points[i+1:]...)
	a.notify()
}

// Subscribe registers fn to be called synchronously after every mutation.
// The returned function removes the subscription; calling it more than
// once is harmless.
func (a *Area) Subscribe(fn func()) func() {
	id := a.nextID
	a.nextID++
	a.observers[id] = fn
	return func() {
		delete(a.observers, id)
	}
}

// notify invokes every subscribed observer.
func (a *Area) notify() {
	for _, fn := range a.observers {
		fn()
	}
}
