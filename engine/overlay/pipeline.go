package overlay

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oxycore/engine/engine/rendercmd"
)

// ensureBindGroupLayout builds the overlay's one bind group layout the
// first time it's needed: a uniform buffer (the camera/viewport/pixel-snap
// block shader.Adapter writes into) plus one texture and one sampler,
// mirroring the entry.Texture/entry.Sampler/entry.Buffer shape
// wgpuRendererBackendImpl.InitBindGroup already switches on.
func (b *WGPUBackend) ensureBindGroupLayout() error {
	if b.bindGroupLayout != nil {
		return nil
	}
	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "overlay bind group layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat, ViewDimension: wgpu.TextureViewDimension2D},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("overlay: create bind group layout: %w", err)
	}
	b.bindGroupLayout = layout

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "overlay pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("overlay: create pipeline layout: %w", err)
	}
	b.pipelineLayout = pipelineLayout

	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:        "overlay sampler",
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
		LodMaxClamp:  32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("overlay: create sampler: %w", err)
	}
	b.sampler = sampler
	return nil
}

// currentBindGroup rebuilds the bind group whenever the bound uniform
// buffer or the most recently bound texture slot changes. The overlay's
// shader declares exactly one texture_2d binding (shader.go), so only one
// texture can be sampled per draw; batch2d's uploadUniformsAndSamplers
// rebinds every active slot in ascending order each flush, so the last
// slot it names (lastBoundSlot) is the one texture this sub-batch's quads
// were assigned when they were recorded (see Overlay's WithMaxTextureSlots
// wiring — a sub-batch mixing the reserved white texture and one real
// texture samples only the latter; this is a real, documented limitation
// of the single-bind-group scope, not an oversight). Rebuilding per change
// (rather than caching a pool of bind groups) is acceptable here since the
// bound texture changes infrequently within a scene.
func (b *WGPUBackend) currentBindGroup() *wgpu.BindGroup {
	if err := b.ensureBindGroupLayout(); err != nil {
		b.log.Errorf("%v", err)
		return nil
	}

	uboHandle := b.boundBuffer[rendercmd.BufferTargetUniform]
	texHandle := b.boundSlots[b.lastBoundSlot]
	key := fmt.Sprintf("%d:%d", uboHandle, texHandle)
	if key == b.bindGroupKey && b.bindGroup != nil {
		return b.bindGroup
	}

	ubo := b.buffers[uboHandle]
	tex := b.textures[texHandle]
	if ubo == nil || ubo.buf == nil || tex == nil || tex.view == nil {
		return b.bindGroup // not fully set up yet; reuse whatever we have (may be nil)
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "overlay bind group",
		Layout: b.bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: ubo.buf, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: tex.view},
			{Binding: 2, Sampler: b.sampler},
		},
	})
	if err != nil {
		b.log.Errorf("overlay: create bind group: %v", err)
		return b.bindGroup
	}
	b.bindGroup = bg
	b.bindGroupKey = key
	return b.bindGroup
}

// vertexFormatFor maps one batch2d attribute's (size, integer) shape onto a
// wgpu.VertexFormat, the same table wgsl_parser.go's wgslVertexFormatMap
// uses keyed by WGSL type name instead of GL attribute shape.
func vertexFormatFor(a *vertexAttrib) (wgpu.VertexFormat, bool) {
	switch {
	case a.integer && a.size == 1:
		return wgpu.VertexFormatUint32, true
	case !a.integer && a.size == 1:
		return wgpu.VertexFormatFloat32, true
	case !a.integer && a.size == 2:
		return wgpu.VertexFormatFloat32x2, true
	case !a.integer && a.size == 3:
		return wgpu.VertexFormatFloat32x3, true
	case !a.integer && a.size == 4:
		return wgpu.VertexFormatFloat32x4, true
	default:
		return 0, false
	}
}

func topologyFor(t rendercmd.Topology) wgpu.PrimitiveTopology {
	switch t {
	case rendercmd.TopologyTriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case rendercmd.TopologyLineList:
		return wgpu.PrimitiveTopologyLineList
	case rendercmd.TopologyLineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case rendercmd.TopologyPointList:
		return wgpu.PrimitiveTopologyPointList
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

func cullModeFor(c rendercmd.CullMode) wgpu.CullMode {
	switch c {
	case rendercmd.CullFront:
		return wgpu.CullModeFront
	case rendercmd.CullBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func frontFaceFor(f rendercmd.FrontFace) wgpu.FrontFace {
	if f == rendercmd.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func blendFactorFor(f rendercmd.BlendFactor) wgpu.BlendFactor {
	switch f {
	case rendercmd.BlendOne:
		return wgpu.BlendFactorOne
	case rendercmd.BlendSrcAlpha:
		return wgpu.BlendFactorSrcAlpha
	case rendercmd.BlendOneMinusSrcAlpha:
		return wgpu.BlendFactorOneMinusSrcAlpha
	case rendercmd.BlendDstAlpha:
		return wgpu.BlendFactorDstAlpha
	case rendercmd.BlendOneMinusDstAlpha:
		return wgpu.BlendFactorOneMinusDstAlpha
	case rendercmd.BlendSrcColor:
		return wgpu.BlendFactorSrc
	case rendercmd.BlendOneMinusSrcColor:
		return wgpu.BlendFactorOneMinusSrc
	case rendercmd.BlendDstColor:
		return wgpu.BlendFactorDst
	case rendercmd.BlendOneMinusDstColor:
		return wgpu.BlendFactorOneMinusDst
	default:
		return wgpu.BlendFactorZero
	}
}

func blendOpFor(o rendercmd.BlendOp) wgpu.BlendOperation {
	switch o {
	case rendercmd.BlendOpSubtract:
		return wgpu.BlendOperationSubtract
	case rendercmd.BlendOpReverseSubtract:
		return wgpu.BlendOperationReverseSubtract
	case rendercmd.BlendOpMin:
		return wgpu.BlendOperationMin
	case rendercmd.BlendOpMax:
		return wgpu.BlendOperationMax
	default:
		return wgpu.BlendOperationAdd
	}
}

// pipelineSignature derives a cache key from everything that affects
// pipeline creation: the bound program, enabled attribute shapes, topology,
// and blend/cull state (depth is never part of the overlay's pipelines —
// see buildVertexBufferLayout's doc comment below).
func (b *WGPUBackend) pipelineSignature(topology rendercmd.Topology) string {
	indices := make([]int, 0, len(b.attribs))
	for i, a := range b.attribs {
		if a.enabled {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	sig := fmt.Sprintf("prog=%d topo=%d blend=%+v cull=%+v attrs=", b.boundProgram, topology, b.blend, b.cull)
	for _, i := range indices {
		a := b.attribs[i]
		sig += fmt.Sprintf("[%d:%d,%v,%v,%d]", i, a.size, a.integer, a.normalized, a.divisor)
	}
	return sig
}

// buildVertexBufferLayout lays out every enabled attribute into one
// instance-rate wgpu.VertexBufferLayout at slot 0 — the overlay's one
// vertex stream carries only instance data (batch2d's quad corners come
// from @builtin(vertex_index), not a per-vertex buffer), unlike
// wgsl_parser_backend.go's buildVertexBufferLayout which always produces
// VertexStepModeVertex; that function cannot express the instance-rate
// layout batch2d needs (spec §4.8), which is why this backend builds its
// own rather than reusing the WGSL-reflection path.
func (b *WGPUBackend) buildVertexBufferLayout() (wgpu.VertexBufferLayout, error) {
	indices := make([]int, 0, len(b.attribs))
	for i, a := range b.attribs {
		if a.enabled {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	if len(indices) == 0 {
		return wgpu.VertexBufferLayout{}, fmt.Errorf("no enabled vertex attributes")
	}

	attrs := make([]wgpu.VertexAttribute, 0, len(indices))
	instanced := false
	for _, i := range indices {
		a := b.attribs[i]
		format, ok := vertexFormatFor(a)
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("attribute %d has unsupported shape size=%d integer=%v", i, a.size, a.integer)
		}
		if a.divisor > 0 {
			instanced = true
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(b.offsets[i]),
			ShaderLocation: uint32(i),
		})
	}

	stepMode := wgpu.VertexStepModeVertex
	if instanced {
		stepMode = wgpu.VertexStepModeInstance
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(b.layoutStride),
		StepMode:    stepMode,
		Attributes:  attrs,
	}, nil
}

// pipelineFor returns the cached pipeline for the current program/attribute/
// topology/state signature, building it lazily on first use.
func (b *WGPUBackend) pipelineFor(topology rendercmd.Topology) (*wgpu.RenderPipeline, error) {
	sig := b.pipelineSignature(topology)
	if p, ok := b.pipelines[sig]; ok {
		return p, nil
	}

	prog := b.programs[b.boundProgram]
	if prog == nil {
		return nil, fmt.Errorf("draw issued with no shader program bound")
	}
	if err := b.ensureBindGroupLayout(); err != nil {
		return nil, err
	}
	vbl, err := b.buildVertexBufferLayout()
	if err != nil {
		return nil, err
	}

	blendState := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: blendFactorFor(b.blend.SrcFactor),
			DstFactor: blendFactorFor(b.blend.DstFactor),
			Operation: blendOpFor(b.blend.Op),
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: blendFactorFor(b.blend.SrcFactor),
			DstFactor: blendFactorFor(b.blend.DstFactor),
			Operation: blendOpFor(b.blend.Op),
		},
	}
	target := wgpu.ColorTargetState{Format: b.colorFormat, WriteMask: wgpu.ColorWriteMaskAll}
	if b.blend.Enabled {
		target.Blend = blendState
	}

	pipeline, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "overlay render pipeline",
		Layout: b.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     prog.vs,
			EntryPoint: prog.vsEntry,
			Buffers:    []wgpu.VertexBufferLayout{vbl},
		},
		Fragment: &wgpu.FragmentState{
			Module:     prog.fs,
			EntryPoint: prog.fsEntry,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topologyFor(topology),
			FrontFace: frontFaceFor(b.cull.FrontFace),
			CullMode:  cullModeFor(b.cull.Mode),
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		// No DepthStencilState: the overlay's render pass (BeginFrame above)
		// attaches no depth buffer — it draws directly onto the swapchain
		// view the main 3D pass already resolved into, consistent with the
		// overlay pass.Spec always disabling the depth test.
	})
	if err != nil {
		return nil, fmt.Errorf("overlay: create render pipeline: %w", err)
	}
	b.pipelines[sig] = pipeline
	return pipeline, nil
}
