package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// gpuWaitTimeout bounds every fence wait after a submit.
const gpuWaitTimeout = 5 * time.Second

// PhotoBinding is a non-owning reference to the source photo's GPU state.
type PhotoBinding struct {
	View   hal.TextureView
	Width  uint32
	Height uint32
}

// TargetBinding is a non-owning reference to the surface the compositing
// pass draws into. The view must be BGRA8Unorm, the hal surface convention.
type TargetBinding struct {
	View   hal.TextureView
	Width  uint32
	Height uint32
}

// Session manages the GPU state of one ribbon renderer across frames: both
// pipelines, the generated strip texture, and the persistent compositing
// buffers. It encodes one submission per pass, waits on a fence, and frees
// transient resources on every path.
//
// Architecture:
//
//	Session
//	  +-- RectifyPipeline (offscreen pass into the strip texture)
//	  +-- CompositePipeline (animated pass onto the target surface)
//	  +-- stripTexture (reallocated only when dimensions change; a
//	      replacement is committed only after a fully successful cycle)
//	  +-- persistent composite vertex + uniform buffers and bind group,
//	      rebuilt when the geometry or the strip texture changes
type Session struct {
	device hal.Device
	queue  hal.Queue

	rectify   *RectifyPipeline
	composite *CompositePipeline
	strip     stripTexture

	compVertBuf    hal.Buffer
	compUniformBuf hal.Buffer
	compBindGroup  hal.BindGroup
	vertCount      uint32
}

// NewSession creates a session for the given device and queue. GPU objects
// are created lazily on the first Regenerate.
func NewSession(device hal.Device, queue hal.Queue) *Session {
	return &Session{
		device: device,
		queue:  queue,
	}
}

// Size returns the current strip texture dimensions, or zeros before the
// first successful Regenerate.
func (s *Session) Size() (uint32, uint32) {
	return s.strip.width, s.strip.height
}

// Ready reports whether a successful Regenerate has produced everything
// the compositing pass needs.
func (s *Session) Ready() bool {
	return s.compBindGroup != nil && s.vertCount >= 3
}

// Regenerate runs the rectification pass and rebuilds the compositing
// buffers. It allocates the strip texture at exactly (texW, texH),
// resamples the photo into it using rectVerts, and replaces the
// compositing vertex buffer and bind group with ones built from compVerts.
//
// When the dimensions change, the replacement texture is allocated
// alongside the old one and the swap is committed only after the
// rectification pass and the composite rebuild both succeed. On failure
// the previous strip texture and compositing state remain in place and
// drawable; the caller keeps its dirty flag set and retries on the next
// cycle.
func (s *Session) Regenerate(photo PhotoBinding, rectVerts []RectifyVertex, compVerts []CompositeVertex, texW, texH uint32) error {
	if texW == 0 || texH == 0 {
		return fmt.Errorf("regenerate: zero strip dimensions %dx%d", texW, texH)
	}

	if s.rectify == nil {
		s.rectify = NewRectifyPipeline(s.device, s.queue)
	}
	if err := s.rectify.ensurePipeline(); err != nil {
		return fmt.Errorf("rectify pipeline: %w", err)
	}
	if s.composite == nil {
		s.composite = NewCompositePipeline(s.device, s.queue)
	}
	if err := s.composite.ensurePipeline(); err != nil {
		return fmt.Errorf("composite pipeline: %w", err)
	}

	next := s.strip
	replacing := s.strip.tex == nil || s.strip.width != texW || s.strip.height != texH
	if replacing {
		next = stripTexture{}
		if _, err := next.ensure(s.device, texW, texH); err != nil {
			return err
		}
	}

	err := s.regenerateInto(next.view, photo, rectVerts, compVerts, texW, texH)
	if err != nil {
		if replacing {
			next.destroy(s.device)
		}
		return err
	}

	if replacing {
		s.strip.destroy(s.device)
		s.strip = next
	}
	return nil
}

// regenerateInto runs the rectification pass into stripView and rebuilds
// the compositing resources against it. It never touches s.strip, so a
// failure leaves the session drawing its previous state.
func (s *Session) regenerateInto(stripView hal.TextureView, photo PhotoBinding, rectVerts []RectifyVertex, compVerts []CompositeVertex, texW, texH uint32) error {
	res, err := s.rectify.buildResources(photo, rectVerts)
	if err != nil {
		return err
	}
	err = s.encodeRectifyPass(stripView, res, texW, texH)
	res.destroy(s.device)
	if err != nil {
		return err
	}

	return s.rebuildCompositeResources(compVerts, stripView)
}

// encodeRectifyPass encodes, submits, and waits for the offscreen pass
// that fills the strip texture behind stripView.
func (s *Session) encodeRectifyPass(stripView hal.TextureView, res *rectifyResources, texW, texH uint32) error {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "ribbon_rectify_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ribbon_rectify"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "ribbon_rectify_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       stripView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetViewport(0, 0, float32(texW), float32(texH), 0, 1)
	s.rectify.RecordDraws(rp, res)
	rp.End()

	return s.submitAndWait(encoder)
}

// rebuildCompositeResources replaces the compositing vertex buffer, the
// uniform buffer (created once), and the bind group, binding stripView.
// The previous vertex buffer and bind group are destroyed only after
// their replacements exist, so a failure leaves the session drawable.
func (s *Session) rebuildCompositeResources(compVerts []CompositeVertex, stripView hal.TextureView) error {
	vertexData := buildCompositeVertexData(compVerts)
	vertBuf, err := createAndUploadBuffer(s.device, s.queue, "ribbon_composite_verts", vertexData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}

	if s.compUniformBuf == nil {
		uniformBuf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "ribbon_composite_uniform",
			Size:  compositeUniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			s.device.DestroyBuffer(vertBuf)
			return fmt.Errorf("create composite uniform: %w", err)
		}
		s.compUniformBuf = uniformBuf
	}

	bindGroup, err := s.composite.createBindGroup(s.compUniformBuf, stripView)
	if err != nil {
		s.device.DestroyBuffer(vertBuf)
		return err
	}

	if s.compBindGroup != nil {
		s.device.DestroyBindGroup(s.compBindGroup)
	}
	if s.compVertBuf != nil {
		s.device.DestroyBuffer(s.compVertBuf)
	}
	s.compBindGroup = bindGroup
	s.compVertBuf = vertBuf
	s.vertCount = uint32(len(compVerts)) //nolint:gosec // point counts are tiny

	return nil
}

// Composite draws the ribbon onto the target surface with the given
// projection transform and scroll time. The viewport is (0,0,vpW,vpH).
// When clear is non-nil the target is cleared to that color first;
// otherwise existing target content is preserved and the ribbon is alpha
// blended over it.
//
// Callers check Ready before calling; Composite on a session that is not
// ready is a no-op.
func (s *Session) Composite(target TargetBinding, transform [16]float32, scrollTime float32, vpW, vpH uint32, clear *gputypes.Color) error {
	if !s.Ready() {
		return nil
	}

	s.queue.WriteBuffer(s.compUniformBuf, 0, makeCompositeUniform(transform, scrollTime))

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "ribbon_composite_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("ribbon_composite"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	attachment := hal.RenderPassColorAttachment{
		View:    target.View,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	}
	if clear != nil {
		attachment.LoadOp = gputypes.LoadOpClear
		attachment.ClearValue = *clear
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "ribbon_composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	rp.SetViewport(0, 0, float32(vpW), float32(vpH), 0, 1)
	s.composite.RecordDraws(rp, s.compBindGroup, s.compVertBuf, s.vertCount)
	rp.End()

	return s.submitAndWait(encoder)
}

// submitAndWait finishes encoding, submits the command buffer with a
// fence, and waits for completion. All transient handles are released on
// every path.
func (s *Session) submitAndWait(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, gpuWaitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// Destroy releases every GPU object owned by the session. Safe to call
// multiple times.
func (s *Session) Destroy() {
	if s.device == nil {
		return
	}
	if s.compBindGroup != nil {
		s.device.DestroyBindGroup(s.compBindGroup)
		s.compBindGroup = nil
	}
	if s.compVertBuf != nil {
		s.device.DestroyBuffer(s.compVertBuf)
		s.compVertBuf = nil
	}
	if s.compUniformBuf != nil {
		s.device.DestroyBuffer(s.compUniformBuf)
		s.compUniformBuf = nil
	}
	s.vertCount = 0
	s.strip.destroy(s.device)
	if s.composite != nil {
		s.composite.Destroy()
		s.composite = nil
	}
	if s.rectify != nil {
		s.rectify.Destroy()
		s.rectify = nil
	}
}
