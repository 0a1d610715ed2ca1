package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// CompositePipeline owns the GPU objects of the compositing pass, which
// draws the ribbon at its projector-space geometry as a triangle strip,
// sampling the strip texture with a time-varying scroll. Standard alpha
// blending (source-alpha, one-minus-source-alpha) lets the host composite
// the ribbon over its own frame content.
type CompositePipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	// Strip sampler: bilinear with mirrored repeat, so scrolled sample
	// coordinates beyond [0,1] tile back-and-forth without a seam.
	sampler hal.Sampler
}

// NewCompositePipeline creates a compositing pipeline for the given device
// and queue. GPU objects are not created until ensurePipeline is called.
func NewCompositePipeline(device hal.Device, queue hal.Queue) *CompositePipeline {
	return &CompositePipeline{
		device: device,
		queue:  queue,
	}
}

// ensurePipeline creates the pipeline's GPU objects on first use.
func (p *CompositePipeline) ensurePipeline() error {
	if p.pipeline != nil {
		return nil
	}

	shader, err := compileShader(p.device, "ribbon_composite_shader", compositeShaderSource)
	if err != nil {
		return err
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: Uniforms (transform + time, vertex+fragment)
	//   Binding 1: strip texture (texture_2d, fragment)
	//   Binding 2: strip sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "ribbon_composite_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
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
		return fmt.Errorf("create composite uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "ribbon_composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create composite pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "ribbon_strip_sampler",
		AddressModeU: gputypes.AddressModeMirrorRepeat,
		AddressModeV: gputypes.AddressModeMirrorRepeat,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create strip sampler: %w", err)
	}
	p.sampler = sampler

	alphaBlend := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "ribbon_composite_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    compositeVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &alphaBlend,
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
		return fmt.Errorf("create composite pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

// createBindGroup creates the compositing bind group against the current
// strip texture view. Rebuilt by the Session whenever the strip texture or
// the uniform buffer is reallocated.
func (p *CompositePipeline) createBindGroup(uniformBuf hal.Buffer, stripView hal.TextureView) (hal.BindGroup, error) {
	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ribbon_composite_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: compositeUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: stripView.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create composite bind group: %w", err)
	}
	return bindGroup, nil
}

// RecordDraws records the compositing draw into an existing render pass.
func (p *CompositePipeline) RecordDraws(rp hal.RenderPassEncoder, bindGroup hal.BindGroup, vertBuf hal.Buffer, vertCount uint32) {
	if vertCount < 3 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bindGroup, nil)
	rp.SetVertexBuffer(0, vertBuf, 0)
	rp.Draw(vertCount, 1, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times or on a pipeline with no allocated resources.
func (p *CompositePipeline) Destroy() {
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

// compositeVertexLayout returns the vertex buffer layout for the
// compositing pipeline. Matches VertexInput in composite.wgsl:
//
//	location 0: position (vec3<f32>)
//	location 1: uv (vec2<f32>)
func compositeVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: compositeVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1}, // uv
			},
		},
	}
}
