package gpu

import (
	"encoding/binary"
	"math"
)

// rectifyVertexStride is the byte stride per vertex in the rectification
// pipeline. Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0, clip space)
//	photo_px (vec2<f32>) = 8 bytes  (location 1, photo pixel coords)
//
// Total = 16 bytes per vertex.
const rectifyVertexStride = 16

// compositeVertexStride is the byte stride per vertex in the compositing
// pipeline. Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0, projector space + depth)
//	uv       (vec2<f32>) = 8 bytes  (location 1, rail UV)
//
// Total = 20 bytes per vertex.
const compositeVertexStride = 20

// rectifyUniformSize is the byte size of the rectification uniform buffer:
// photo_size (vec2<f32>) + padding = 16 bytes.
const rectifyUniformSize = 16

// compositeUniformSize is the byte size of the compositing uniform buffer:
// transform (mat4x4<f32>) = 64 bytes + time (f32) + padding = 80 bytes.
const compositeUniformSize = 80

// RectifyVertex is one vertex of the rectification pass: a clip-space
// position and the boundary point's photo-pixel coordinate.
type RectifyVertex struct {
	X, Y float32
	U, V float32
}

// CompositeVertex is one vertex of the compositing pass: a projector-space
// position with depth and the rail UV.
type CompositeVertex struct {
	X, Y, Z float32
	U, V    float32
}

// buildRectifyVertexData serializes rectification vertices into raw bytes
// for GPU upload.
func buildRectifyVertexData(verts []RectifyVertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	data := make([]byte, len(verts)*rectifyVertexStride)
	off := 0
	for _, v := range verts {
		putFloat32(data[off:], v.X)
		putFloat32(data[off+4:], v.Y)
		putFloat32(data[off+8:], v.U)
		putFloat32(data[off+12:], v.V)
		off += rectifyVertexStride
	}
	return data
}

// buildCompositeVertexData serializes compositing vertices into raw bytes
// for GPU upload.
func buildCompositeVertexData(verts []CompositeVertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	data := make([]byte, len(verts)*compositeVertexStride)
	off := 0
	for _, v := range verts {
		putFloat32(data[off:], v.X)
		putFloat32(data[off+4:], v.Y)
		putFloat32(data[off+8:], v.Z)
		putFloat32(data[off+12:], v.U)
		putFloat32(data[off+16:], v.V)
		off += compositeVertexStride
	}
	return data
}

// makeRectifyUniform creates the 16-byte uniform block for the
// rectification pass: the photo's pixel dimensions plus padding.
func makeRectifyUniform(photoW, photoH uint32) []byte {
	buf := make([]byte, rectifyUniformSize)
	putFloat32(buf[0:], float32(photoW))
	putFloat32(buf[4:], float32(photoH))
	return buf
}

// makeCompositeUniform creates the 80-byte uniform block for the
// compositing pass: the projection transform followed by the scroll time.
func makeCompositeUniform(transform [16]float32, time float32) []byte {
	buf := make([]byte, compositeUniformSize)
	off := 0
	for _, v := range transform {
		putFloat32(buf[off:], v)
		off += 4
	}
	putFloat32(buf[off:], time)
	return buf
}

// putFloat32 writes a little-endian float32 into buf.
func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

// MirrorWrap folds t into the mirrored [0,1] pattern with period 2. It is
// the CPU counterpart of the compositing fragment stage's wrap, used to
// reason about scroll continuity: MirrorWrap(t) == MirrorWrap(t+2k) for
// any integer k.
func MirrorWrap(t float64) float64 {
	m := t - 2*math.Floor(t/2)
	return 1 - math.Abs(m-1)
}
