package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RectifyPipeline owns the GPU objects of the rectification pass, which
// resamples the source photo into the strip texture's rail-distance layout.
// The ribbon's boundary points arrive as a single triangle strip whose
// clip-space positions are pre-baked on the CPU; the fragment stage divides
// the interpolated photo-pixel coordinate by the photo dimensions and
// samples the photo.
//
// Architecture:
//
//	Session owns per-regeneration buffers and the strip texture
//	RectifyPipeline owns shader, layout, pipeline, sampler
//	a bind group is created per regeneration (uniform + photo + sampler)
type RectifyPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	// Photo sampler: bilinear, clamped to the photo's edges.
	sampler hal.Sampler
}

// NewRectifyPipeline creates a rectification pipeline for the given device
// and queue. GPU objects are not created until ensurePipeline is called.
func NewRectifyPipeline(device hal.Device, queue hal.Queue) *RectifyPipeline {
	return &RectifyPipeline{
		device: device,
		queue:  queue,
	}
}

// ensurePipeline creates the pipeline's GPU objects on first use.
func (p *RectifyPipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}

	shader, err := compileShader(p.device, "ribbon_rectify_shader", rectifyShaderSource)
	if err != nil {
		return err
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Uniforms (photo dimensions, fragment)
	//   Binding 1: photo texture (texture_2d, fragment)
	//   Binding 2: photo sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ribbon_rectify_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create rectify uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ribbon_rectify_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create rectify pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ribbon_photo_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create photo sampler: %w", err)
	}
	p.sampler = sampler

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "ribbon_rectify_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    rectifyVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatRGBA8Unorm,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create rectify pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// buildResources creates the per-regeneration vertex buffer, uniform
// buffer, and bind group for one rectification pass.
func (p *RectifyPipeline) buildResources(photo PhotoBinding, verts []RectifyVertex) (*rectifyResources, error) {
	vertexData := buildRectifyVertexData(verts)
	vertBuf, err := createAndUploadBuffer(p.device, p.queue, "ribbon_rectify_verts", vertexData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	uniformData := makeRectifyUniform(photo.Width, photo.Height)
	uniformBuf, err := createAndUploadBuffer(p.device, p.queue, "ribbon_rectify_uniform", uniformData,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		p.device.DestroyBuffer(vertBuf)
		return nil, err
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ribbon_rectify_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: rectifyUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: photo.View.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		p.device.DestroyBuffer(uniformBuf)
		p.device.DestroyBuffer(vertBuf)
		return nil, fmt.Errorf("create rectify bind group: %w", err)
	}

	return &rectifyResources{
		vertBuf:    vertBuf,
		uniformBuf: uniformBuf,
		bindGroup:  bindGroup,
		vertCount:  uint32(len(verts)), //nolint:gosec // point counts are tiny
	}, nil
}

// RecordDraws records the rectification draw into an existing render pass.
// The render pass targets the strip texture and is owned by the Session.
func (p *RectifyPipeline) RecordDraws(rp hal.RenderPassEncoder, res *rectifyResources) {
	if res == nil || res.vertCount < 3 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	rp.SetVertexBuffer(0, res.vertBuf, 0)
	rp.Draw(res.vertCount, 1, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times or on a pipeline with no allocated resources.
func (p *RectifyPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// rectifyResources holds per-regeneration GPU resources for one
// rectification pass.
type rectifyResources struct {
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	vertCount  uint32
}

// destroy releases the per-regeneration resources.
func (r *rectifyResources) destroy(device hal.Device) {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniformBuf != nil {
		device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.vertBuf != nil {
		device.DestroyBuffer(r.vertBuf)
		r.vertBuf = nil
	}
}

// rectifyVertexLayout returns the vertex buffer layout for the
// rectification pipeline. Matches VertexInput in rectify.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: photo_px (vec2<f32>)
func rectifyVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: rectifyVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // photo_px
			},
		},
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func createAndUploadBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
