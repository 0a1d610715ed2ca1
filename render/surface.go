// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/wgpu/hal"
)

// Surface is a render target for one compositing call: a texture view plus
// its pixel dimensions. The view is typically the host's current swapchain
// texture, but any BGRA8 render-attachment view works, which is how hosts
// composite ribbons offscreen.
//
// Surface does not own the view; the host controls its lifetime and
// presentation.
type Surface struct {
	view   hal.TextureView
	width  int
	height int
}

// NewSurface wraps a texture view and its dimensions as a render target.
func NewSurface(view hal.TextureView, width, height int) *Surface {
	return &Surface{
		view:   view,
		width:  width,
		height: height,
	}
}

// View returns the underlying texture view.
func (s *Surface) View() hal.TextureView {
	return s.view
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	return s.width
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	return s.height
}
