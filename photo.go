package ribbon

import (
	"errors"
	"fmt"
	"image"
	"io"

	// Register decoders for the formats a projection host feeds us.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	xdraw "golang.org/x/image/draw"
)

// MaxPhotoDim is the maximum side length of an uploaded photo in pixels.
// Larger images are downscaled during decode to stay within common GPU
// texture limits.
const MaxPhotoDim = 4096

// Photo errors.
var (
	// ErrNilImage is returned when uploading a nil image.
	ErrNilImage = errors.New("ribbon: image is nil")

	// ErrEmptyImage is returned when uploading a zero-sized image.
	ErrEmptyImage = errors.New("ribbon: image has no pixels")
)

// Photo is a source image bound to the GPU: a texture, its sampling view,
// and the image's pixel dimensions. The renderer treats a Photo as a
// non-owning handle; whoever created it releases it via Destroy.
type Photo struct {
	Texture hal.Texture
	View    hal.TextureView
	Width   int
	Height  int
}

// Destroy releases the photo's GPU resources. Safe to call on a Photo
// whose resources were never created.
func (p *Photo) Destroy(device hal.Device) {
	if p == nil || device == nil {
		return
	}
	if p.View != nil {
		device.DestroyTextureView(p.View)
		p.View = nil
	}
	if p.Texture != nil {
		device.DestroyTexture(p.Texture)
		p.Texture = nil
	}
}

// PhotoSource holds the currently active photo and notifies subscribed
// observers whenever it is replaced. The active photo is replaced
// wholesale; PhotoSource never mutates a Photo in place.
//
// PhotoSource is not safe for concurrent use; see Area for the threading
// model.
type PhotoSource struct {
	photo     *Photo
	observers map[int]func(*Photo)
	nextID    int
}

// NewPhotoSource creates an empty PhotoSource.
func NewPhotoSource() *PhotoSource {
	return &PhotoSource{observers: make(map[int]func(*Photo))}
}

// Photo returns the currently active photo, or nil if none is set.
func (s *PhotoSource) Photo() *Photo {
	return s.photo
}

// Set replaces the active photo and notifies observers. The previous photo
// is not released; its owner remains responsible for it.
func (s *PhotoSource) Set(p *Photo) {
	s.photo = p
	for _, fn := range s.observers {
		fn(p)
	}
}

// Subscribe registers fn to be called synchronously with the new photo on
// every Set. The returned function removes the subscription.
func (s *PhotoSource) Subscribe(fn func(*Photo)) func() {
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		delete(s.observers, id)
	}
}

// DecodePhoto reads an image (PNG, JPEG, or WebP) and converts it to RGBA.
// Images whose longer side exceeds MaxPhotoDim are downscaled with
// Catmull-Rom resampling to fit, preserving aspect ratio.
func DecodePhoto(r io.Reader) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("ribbon: decode photo: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	dw, dh := fitPhotoDims(w, h, MaxPhotoDim)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
		Logger().Debug("photo downscaled",
			"format", format, "from_w", w, "from_h", h, "to_w", dw, "to_h", dh)
	}
	return dst, nil
}

// fitPhotoDims scales (w, h) uniformly so that neither side exceeds limit.
// Dimensions already within the limit are returned unchanged.
func fitPhotoDims(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		scaled := h * limit / w
		if scaled < 1 {
			scaled = 1
		}
		return limit, scaled
	}
	scaled := w * limit / h
	if scaled < 1 {
		scaled = 1
	}
	return scaled, limit
}

// UploadPhoto creates a GPU texture from img, uploads the pixels, and
// returns a Photo ready to hand to PhotoSource.Set. The caller owns the
// returned Photo and must release it with Photo.Destroy.
func UploadPhoto(device hal.Device, queue hal.Queue, img *image.RGBA) (*Photo, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	tw := uint32(w) //nolint:gosec // bounded by MaxPhotoDim
	th := uint32(h) //nolint:gosec // bounded by MaxPhotoDim

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ribbon_photo",
		Size:          hal.Extent3D{Width: tw, Height: th, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("ribbon: create photo texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "ribbon_photo_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("ribbon: create photo texture view: %w", err)
	}

	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		tightPixels(img),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  tw * 4,
			RowsPerImage: th,
		},
		&hal.Extent3D{Width: tw, Height: th, DepthOrArrayLayers: 1},
	)

	return &Photo{Texture: tex, View: view, Width: w, Height: h}, nil
}

// tightPixels returns img's pixel data with any row padding stripped, as
// required by the tight BytesPerRow layout used for upload.
func tightPixels(img *image.RGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowBytes := w * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix
	}
	out := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*rowBytes:(y+1)*rowBytes], img.Pix[src:src+rowBytes])
	}
	return out
}
