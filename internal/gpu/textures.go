package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// stripTexture holds the generated rectified texture and its sampling view.
// The texture is rendered into by the rectification pass and sampled by the
// compositing pass, so it carries both RenderAttachment and TextureBinding
// usage. It is reallocated only when the required dimensions change.
type stripTexture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// ensure creates or recreates the texture if the requested dimensions
// differ from the current allocation. If dimensions match and the texture
// exists, this is a no-op. It reports whether a new allocation was made,
// in which case bind groups referencing the old view must be rebuilt.
func (st *stripTexture) ensure(device hal.Device, w, h uint32) (bool, error) {
	if st.width == w && st.height == h && st.tex != nil {
		return false, nil
	}
	st.destroy(device)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ribbon_strip",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return false, fmt.Errorf("create strip texture: %w", err)
	}
	st.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "ribbon_strip_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		st.tex = nil
		return false, fmt.Errorf("create strip texture view: %w", err)
	}
	st.view = view
	st.width = w
	st.height = h

	slogger().Debug("strip texture allocated", "width", w, "height", h)
	return true, nil
}

// destroy releases the texture and view. Safe to call when nothing is
// allocated.
func (st *stripTexture) destroy(device hal.Device) {
	if st.view != nil {
		device.DestroyTextureView(st.view)
		st.view = nil
	}
	if st.tex != nil {
		device.DestroyTexture(st.tex)
		st.tex = nil
	}
	st.width = 0
	st.height = 0
}
