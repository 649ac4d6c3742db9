package core

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// GraphicsPipeline implements rhi.GraphicsPipeline.
type GraphicsPipeline struct {
	dev      *Device
	layout   *PipelineLayout
	hal      hal.RenderPipeline
	topology rhi.PrimitiveTopology

	// vertexBuffers is the number of vertex buffer slots the pipeline reads.
	vertexBuffers uint32

	mu        sync.Mutex
	destroyed bool
}

// CreateGraphicsPipeline implements rhi.Device.
func (d *Device) CreateGraphicsPipeline(info *rhi.GraphicsPipelineCreateInfo) (rhi.GraphicsPipeline, error) {
	const op = "Device.CreateGraphicsPipeline"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	layout, ok := info.Layout.(*PipelineLayout)
	if !ok || layout == nil || layout.dev != d {
		return nil, rhi.InvalidArgument(op, "pipeline layout was not created by this device")
	}
	vs, ok := info.VertexShader.(*ShaderModule)
	if !ok || vs == nil || vs.dev != d {
		return nil, rhi.InvalidArgument(op, "vertex shader was not created by this device")
	}
	if info.VertexEntryPoint == "" {
		return nil, rhi.InvalidArgument(op, "empty vertex entry point")
	}

	l := d.gpu.exposed.Capabilities.Limits
	buffers, err := vertexLayouts(op, &info.VertexState, l)
	if err != nil {
		return nil, err
	}
	primitive, err := primitiveState(op, &info.PrimitiveState)
	if err != nil {
		return nil, err
	}
	depth, err := depthStencilState(op, info.DepthStencilState)
	if err != nil {
		return nil, err
	}

	ms := info.MultiSampleState
	if ms.Count == 0 {
		ms.Count = 1
	}
	switch ms.Count {
	case 1, 2, 4, 8:
	default:
		return nil, rhi.InvalidArgument(op, "unsupported sample count %d", ms.Count)
	}
	mask := uint64(ms.Mask)
	if mask == 0 {
		mask = 0xFFFFFFFF
	}

	targets := info.FragmentState.ColorTargets
	if uint32(len(targets)) > l.MaxColorAttachments {
		return nil, rhi.InvalidArgument(op, "%d color targets exceed %d", len(targets), l.MaxColorAttachments)
	}
	var fragment *hal.FragmentState
	if len(targets) > 0 || info.PixelShader != nil {
		ps, ok := info.PixelShader.(*ShaderModule)
		if !ok || ps == nil || ps.dev != d {
			return nil, rhi.InvalidArgument(op, "pixel shader was not created by this device")
		}
		if info.PixelEntryPoint == "" {
			return nil, rhi.InvalidArgument(op, "empty pixel entry point")
		}
		fragment = &hal.FragmentState{Module: ps.hal, EntryPoint: info.PixelEntryPoint}
		for i, t := range targets {
			ct, err := colorTarget(op, i, &t, d.variant)
			if err != nil {
				return nil, err
			}
			fragment.Targets = append(fragment.Targets, ct)
		}
	}

	hp, err := d.hal.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  info.DebugName,
		Layout: layout.hal,
		Vertex: hal.VertexState{
			Module:     vs.hal,
			EntryPoint: info.VertexEntryPoint,
			Buffers:    buffers,
		},
		Primitive:    primitive,
		DepthStencil: depth,
		Multisample: gputypes.MultisampleState{
			Count:                  ms.Count,
			Mask:                   mask,
			AlphaToCoverageEnabled: ms.AlphaToCoverage,
		},
		Fragment: fragment,
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	d.log.Debug("rhi: graphics pipeline created", "name", info.DebugName, "targets", len(targets), "vertexBuffers", len(buffers))
	return &GraphicsPipeline{
		dev:           d,
		layout:        layout,
		hal:           hp,
		topology:      info.PrimitiveState.Topology,
		vertexBuffers: uint32(len(buffers)),
	}, nil
}

func vertexLayouts(op string, vs *rhi.VertexState, l gputypes.Limits) ([]gputypes.VertexBufferLayout, error) {
	if limit := vertexBufferLimit(l); uint32(len(vs.BufferLayouts)) > limit {
		return nil, rhi.InvalidArgument(op, "%d vertex buffers exceed %d", len(vs.BufferLayouts), limit)
	}
	out := make([]gputypes.VertexBufferLayout, len(vs.BufferLayouts))
	locations := make(map[uint32]struct{})
	for i, b := range vs.BufferLayouts {
		if b.StepMode > rhi.VertexStepModePerInstance {
			return nil, rhi.InvalidArgument(op, "vertex buffer %d has invalid step mode %d", i, b.StepMode)
		}
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: b.Stride,
			StepMode:    vertexStepMode(b.StepMode),
			Attributes:  make([]gputypes.VertexAttribute, len(b.Attributes)),
		}
		for j, a := range b.Attributes {
			if a.Format >= rhi.VertexFormatCount {
				return nil, rhi.InvalidArgument(op, "vertex buffer %d attribute %d has invalid format %d", i, j, a.Format)
			}
			if b.Stride != 0 && a.Offset+vertexFormatSize(a.Format) > b.Stride {
				return nil, rhi.InvalidArgument(op, "vertex buffer %d attribute %d overruns stride %d", i, j, b.Stride)
			}
			if a.Location >= l.MaxVertexAttributes {
				return nil, rhi.InvalidArgument(op, "attribute location %d exceeds %d", a.Location, l.MaxVertexAttributes)
			}
			if _, dup := locations[a.Location]; dup {
				return nil, rhi.InvalidArgument(op, "attribute location %d used twice", a.Location)
			}
			locations[a.Location] = struct{}{}
			out[i].Attributes[j] = gputypes.VertexAttribute{
				Format:         vertexFormats[a.Format],
				Offset:         a.Offset,
				ShaderLocation: a.Location,
			}
		}
	}
	return out, nil
}

func primitiveState(op string, p *rhi.PrimitiveState) (gputypes.PrimitiveState, error) {
	if p.Topology > rhi.PrimitiveTopologyTriangleStrip {
		return gputypes.PrimitiveState{}, rhi.InvalidArgument(op, "invalid topology %d", p.Topology)
	}
	if p.FillMode == rhi.FillModeWireframe {
		return gputypes.PrimitiveState{}, rhi.Unsupported(op, "wireframe fill mode")
	}
	if p.FillMode > rhi.FillModeWireframe {
		return gputypes.PrimitiveState{}, rhi.InvalidArgument(op, "invalid fill mode %d", p.FillMode)
	}
	out := gputypes.PrimitiveState{
		Topology:       primitiveTopology(p.Topology),
		FrontFace:      frontFace(p.FrontFace),
		CullMode:       cullMode(p.CullMode),
		UnclippedDepth: p.UnclippedDepth,
	}
	if isStripTopology(p.Topology) {
		f := indexFormat(p.StripIndexFormat)
		out.StripIndexFormat = &f
	}
	return out, nil
}

func depthStencilState(op string, ds *rhi.DepthStencilState) (*hal.DepthStencilState, error) {
	if ds == nil {
		return nil, nil
	}
	if !ds.Format.IsDepthStencil() {
		return nil, rhi.InvalidArgument(op, "depth-stencil format %s is not a depth format", ds.Format)
	}
	if ds.StencilEnable && !ds.Format.HasStencil() {
		return nil, rhi.InvalidArgument(op, "stencil enabled on %s", ds.Format)
	}
	out := &hal.DepthStencilState{
		Format:              TextureFormat(ds.Format),
		DepthWriteEnabled:   ds.DepthEnable && ds.DepthWrite,
		DepthCompare:        gputypes.CompareFunctionAlways,
		DepthBias:           ds.DepthBias,
		DepthBiasSlopeScale: ds.DepthBiasSlope,
		DepthBiasClamp:      ds.DepthBiasClamp,
	}
	if ds.DepthEnable {
		out.DepthCompare = compareFunc(ds.DepthCompareFunc)
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	out.StencilFront, out.StencilBack = keep, keep
	if ds.StencilEnable {
		out.StencilFront = stencilFace(ds.StencilFront)
		out.StencilBack = stencilFace(ds.StencilBack)
		out.StencilReadMask = ds.StencilReadMask
		out.StencilWriteMask = ds.StencilWriteMask
	}
	return out, nil
}

func colorTarget(op string, i int, t *rhi.ColorTargetState, v Variant) (gputypes.ColorTargetState, error) {
	if !t.Format.IsValid() || t.Format.IsDepthStencil() {
		return gputypes.ColorTargetState{}, rhi.InvalidArgument(op, "color target %d has invalid format %s", i, t.Format)
	}
	if !v.SupportsFormat(t.Format) {
		return gputypes.ColorTargetState{}, rhi.Unsupported(op, "color target %d format %s has no %s mapping", i, t.Format, v.Type())
	}
	out := gputypes.ColorTargetState{
		Format:    TextureFormat(t.Format),
		WriteMask: colorWriteMask(t.WriteFlags),
	}
	if t.BlendEnable {
		out.Blend = &gputypes.BlendState{
			Color: blendComponent(t.Color),
			Alpha: blendComponent(t.Alpha),
		}
	}
	return out, nil
}

// Layout implements rhi.GraphicsPipeline.
func (p *GraphicsPipeline) Layout() rhi.PipelineLayout { return p.layout }

// Topology returns the primitive topology the pipeline was built with.
func (p *GraphicsPipeline) Topology() rhi.PrimitiveTopology { return p.topology }

// Destroy implements rhi.GraphicsPipeline.
func (p *GraphicsPipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.hal.DestroyRenderPipeline(p.hal)
	p.dev.untrack()
}

// =============================================================================
// ComputePipeline
// =============================================================================

// ComputePipeline implements rhi.ComputePipeline.
type ComputePipeline struct {
	dev    *Device
	layout *PipelineLayout
	hal    hal.ComputePipeline

	mu        sync.Mutex
	destroyed bool
}

// CreateComputePipeline implements rhi.Device.
func (d *Device) CreateComputePipeline(info *rhi.ComputePipelineCreateInfo) (rhi.ComputePipeline, error) {
	const op = "Device.CreateComputePipeline"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	layout, ok := info.Layout.(*PipelineLayout)
	if !ok || layout == nil || layout.dev != d {
		return nil, rhi.InvalidArgument(op, "pipeline layout was not created by this device")
	}
	cs, ok := info.ComputeShader.(*ShaderModule)
	if !ok || cs == nil || cs.dev != d {
		return nil, rhi.InvalidArgument(op, "compute shader was not created by this device")
	}
	if info.EntryPoint == "" {
		return nil, rhi.InvalidArgument(op, "empty compute entry point")
	}

	hp, err := d.hal.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  info.DebugName,
		Layout: layout.hal,
		Compute: hal.ComputeState{
			Module:     cs.hal,
			EntryPoint: info.EntryPoint,
		},
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	return &ComputePipeline{dev: d, layout: layout, hal: hp}, nil
}

// Layout implements rhi.ComputePipeline.
func (p *ComputePipeline) Layout() rhi.PipelineLayout { return p.layout }

// Destroy implements rhi.ComputePipeline.
func (p *ComputePipeline) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.hal.DestroyComputePipeline(p.hal)
	p.dev.untrack()
}
