package ribbon

import (
	"math"
	"testing"
)

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	x, y, z, w := m.MulVec4(3, -2, 5, 1)
	if x != 3 || y != -2 || z != 5 || w != 1 {
		t.Errorf("identity transform changed vector: (%v, %v, %v, %v)", x, y, z, w)
	}
}

func TestOrtho2DCorners(t *testing.T) {
	m := Ortho2D(800, 600)
	tests := []struct {
		name         string
		px, py       float32
		wantX, wantY float32
	}{
		{"top-left", 0, 0, -1, 1},
		{"bottom-right", 800, 600, 1, -1},
		{"center", 400, 300, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, _, w := m.MulVec4(tt.px, tt.py, 0, 1)
			if math.Abs(float64(x-tt.wantX)) > 1e-6 || math.Abs(float64(y-tt.wantY)) > 1e-6 {
				t.Errorf("(%v, %v) -> (%v, %v), want (%v, %v)",
					tt.px, tt.py, x, y, tt.wantX, tt.wantY)
			}
			if w != 1 {
				t.Errorf("w = %v, want 1", w)
			}
		})
	}
}

func TestMat4MulComposition(t *testing.T) {
	// Applying m.Mul(n) must equal applying n first, then m.
	m := Ortho2D(640, 480)
	n := Mat4{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 1, 0,
		10, 20, 0, 1,
	}
	combined := m.Mul(n)

	px, py := float32(7), float32(9)
	nx, ny, nz, nw := n.MulVec4(px, py, 0, 1)
	wantX, wantY, wantZ, wantW := m.MulVec4(nx, ny, nz, nw)
	gotX, gotY, gotZ, gotW := combined.MulVec4(px, py, 0, 1)

	if math.Abs(float64(gotX-wantX)) > 1e-5 || math.Abs(float64(gotY-wantY)) > 1e-5 ||
		math.Abs(float64(gotZ-wantZ)) > 1e-5 || math.Abs(float64(gotW-wantW)) > 1e-5 {
		t.Errorf("composition mismatch: got (%v, %v, %v, %v), want (%v, %v, %v, %v)",
			gotX, gotY, gotZ, gotW, wantX, wantY, wantZ, wantW)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := Ortho2D(100, 100)
	if got := m.Mul(Mat4Identity()); got != m {
		t.Error("m * I != m")
	}
	if got := Mat4Identity().Mul(m); got != m {
		t.Error("I * m != m")
	}
}
