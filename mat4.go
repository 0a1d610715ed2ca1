package ribbon

// Mat4 is a 4x4 float32 matrix in column-major order, matching the memory
// layout of a WGSL mat4x4<f32> uniform. Element (row r, col c) is stored at
// index c*4+r.
//
// The host supplies a Mat4 as the projector-space to clip-space transform.
// Ortho2D builds a suitable transform for pixel-coordinate projector spaces.
type Mat4 [16]float32

// Mat4Identity returns the identity matrix.
func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Ortho2D returns an orthographic projection mapping the pixel rectangle
// (0,0)-(width,height) to clip space, with the origin at the top-left and
// y increasing downward. Depth passes through unchanged.
func Ortho2D(width, height float64) Mat4 {
	w := float32(width)
	h := float32(height)
	return Mat4{
		2 / w, 0, 0, 0,
		0, -2 / h, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
}

// Mul returns the matrix product m * n. Applying the result to a vector is
// equivalent to applying n first, then m.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * n[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// MulVec4 transforms the vector (x, y, z, w) by m and returns the result.
func (m Mat4) MulVec4(x, y, z, w float32) (float32, float32, float32, float32) {
	return m[0]*x + m[4]*y + m[8]*z + m[12]*w,
		m[1]*x + m[5]*y + m[9]*z + m[13]*w,
		m[2]*x + m[6]*y + m[10]*z + m[14]*w,
		m[3]*x + m[7]*y + m[11]*z + m[15]*w
}
