package core

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// pass is the state shared by every pass recorder. A pass is current while
// its command buffer is InPass with the same generation and sequence.
type pass struct {
	cb  *CommandBuffer
	gen uint64
	seq uint64
}

func (p *pass) check(op string) error {
	cb := p.cb
	if cb.destroyed || cb.generation != p.gen || cb.openPass != p.seq {
		return rhi.InvalidState(op, "pass is closed")
	}
	cb.mu.Lock()
	s := cb.state
	cb.mu.Unlock()
	if s != rhi.CommandBufferStateInPass {
		return rhi.InvalidState(op, "pass is closed")
	}
	return nil
}

func (p *pass) close() {
	p.cb.openPass = 0
	p.cb.setState(rhi.CommandBufferStateRecording)
}

// bindings tracks the bind groups set in a compute or graphics pass.
type bindings struct {
	groups []*BindGroup
}

// set validates group against index and the current layout, if any, and
// reserves scratch descriptors for it.
func (b *bindings) set(op string, cb *CommandBuffer, layout *PipelineLayout, index uint32, g rhi.BindGroup) (*BindGroup, error) {
	group, ok := g.(*BindGroup)
	if !ok || group == nil || group.dev != cb.dev {
		return nil, rhi.InvalidArgument(op, "bind group was not created by this device")
	}
	if limit := cb.dev.gpu.exposed.Capabilities.Limits.MaxBindGroups; index >= limit {
		return nil, rhi.InvalidArgument(op, "bind group index %d exceeds limit %d", index, limit)
	}
	if group.layout.info.LayoutIndex != index {
		return nil, rhi.InvalidArgument(op, "bind group layout index %d bound at %d", group.layout.info.LayoutIndex, index)
	}
	if layout != nil && !layout.compatible(index, group) {
		return nil, rhi.InvalidArgument(op, "bind group at %d is incompatible with the pipeline layout", index)
	}
	if err := cb.allocateScratch(op, group); err != nil {
		return nil, err
	}
	if int(index) >= len(b.groups) {
		b.groups = append(b.groups, make([]*BindGroup, int(index)+1-len(b.groups))...)
	}
	b.groups[index] = group
	return group, nil
}

// ready fails unless every group of layout is bound and compatible.
func (b *bindings) ready(op string, layout *PipelineLayout) error {
	for i := range layout.groups {
		if i >= len(b.groups) || b.groups[i] == nil {
			return rhi.InvalidState(op, "bind group %d is not set", i)
		}
		if !layout.compatible(uint32(i), b.groups[i]) {
			return rhi.InvalidState(op, "bind group %d is incompatible with the pipeline layout", i)
		}
	}
	return nil
}

// =============================================================================
// Copy pass
// =============================================================================

type copyPass struct {
	pass
}

// ResourceBarrier implements rhi.CopyPassCommandRecorder.
func (p *copyPass) ResourceBarrier(b rhi.Barrier) error {
	const op = "CopyPass.ResourceBarrier"
	if err := p.check(op); err != nil {
		return err
	}
	return p.cb.barrier(op, b)
}

// copyBuffer resolves b and checks it carries usage.
func (p *copyPass) copyBuffer(op string, b rhi.Buffer, usage rhi.BufferUsageBits) (*Buffer, error) {
	buf, ok := b.(*Buffer)
	if !ok || buf == nil || buf.dev != p.cb.dev {
		return nil, rhi.InvalidArgument(op, "buffer was not created by this device")
	}
	if !buf.info.Usage.Has(usage) {
		return nil, rhi.InvalidArgument(op, "buffer %q lacks %s usage", buf.info.DebugName, usageName(usage))
	}
	return buf, nil
}

func (p *copyPass) copyTexture(op string, t rhi.Texture, usage rhi.TextureUsageBits) (*Texture, error) {
	tex, ok := t.(*Texture)
	if !ok || tex == nil || tex.dev != p.cb.dev {
		return nil, rhi.InvalidArgument(op, "texture was not created by this device")
	}
	if !tex.info.Usage.Has(usage) {
		return nil, rhi.InvalidArgument(op, "texture %q lacks copy usage", tex.info.DebugName)
	}
	return tex, nil
}

func usageName(u rhi.BufferUsageBits) string {
	if u == rhi.BufferUsageCopySrc {
		return "CopySrc"
	}
	return "CopyDst"
}

// CopyBufferToBuffer implements rhi.CopyPassCommandRecorder.
func (p *copyPass) CopyBufferToBuffer(src, dst rhi.Buffer, region *rhi.BufferCopyRegion) error {
	const op = "CopyPass.CopyBufferToBuffer"
	if err := p.check(op); err != nil {
		return err
	}
	if region == nil {
		return rhi.InvalidArgument(op, "nil copy region")
	}
	s, err := p.copyBuffer(op, src, rhi.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	d, err := p.copyBuffer(op, dst, rhi.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	r := *region
	if r.Size == 0 {
		return rhi.InvalidArgument(op, "empty copy")
	}
	if r.SrcOffset%4 != 0 || r.DstOffset%4 != 0 || r.Size%4 != 0 {
		return rhi.InvalidArgument(op, "copy offsets and size must be multiples of 4")
	}
	if r.SrcOffset > s.info.Size || r.Size > s.info.Size-r.SrcOffset {
		return rhi.InvalidRange(op, "source range [%d, +%d) outside buffer of %d bytes", r.SrcOffset, r.Size, s.info.Size)
	}
	if r.DstOffset > d.info.Size || r.Size > d.info.Size-r.DstOffset {
		return rhi.InvalidRange(op, "destination range [%d, +%d) outside buffer of %d bytes", r.DstOffset, r.Size, d.info.Size)
	}
	if s == d && r.SrcOffset < r.DstOffset+r.Size && r.DstOffset < r.SrcOffset+r.Size {
		return rhi.InvalidArgument(op, "source and destination ranges overlap")
	}
	p.cb.encoder.CopyBufferToBuffer(s.hal, d.hal, []hal.BufferCopy{{
		SrcOffset: r.SrcOffset,
		DstOffset: r.DstOffset,
		Size:      r.Size,
	}})
	return nil
}

// CopyBufferToTexture implements rhi.CopyPassCommandRecorder.
func (p *copyPass) CopyBufferToTexture(src rhi.Buffer, dst rhi.Texture, region *rhi.BufferTextureCopyRegion) error {
	const op = "CopyPass.CopyBufferToTexture"
	if err := p.check(op); err != nil {
		return err
	}
	if region == nil {
		return rhi.InvalidArgument(op, "nil copy region")
	}
	buf, err := p.copyBuffer(op, src, rhi.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	tex, err := p.copyTexture(op, dst, rhi.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	c, err := p.bufferTextureCopy(op, buf, tex, region)
	if err != nil {
		return err
	}
	p.cb.encoder.CopyBufferToTexture(buf.hal, tex.hal, []hal.BufferTextureCopy{c})
	return nil
}

// CopyTextureToBuffer implements rhi.CopyPassCommandRecorder.
func (p *copyPass) CopyTextureToBuffer(src rhi.Texture, dst rhi.Buffer, region *rhi.BufferTextureCopyRegion) error {
	const op = "CopyPass.CopyTextureToBuffer"
	if err := p.check(op); err != nil {
		return err
	}
	if region == nil {
		return rhi.InvalidArgument(op, "nil copy region")
	}
	tex, err := p.copyTexture(op, src, rhi.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	buf, err := p.copyBuffer(op, dst, rhi.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	c, err := p.bufferTextureCopy(op, buf, tex, region)
	if err != nil {
		return err
	}
	p.cb.encoder.CopyTextureToBuffer(tex.hal, buf.hal, []hal.BufferTextureCopy{c})
	return nil
}

// bufferTextureCopy validates the buffer side and texture side of r and
// returns the HAL region.
func (p *copyPass) bufferTextureCopy(op string, buf *Buffer, tex *Texture, r *rhi.BufferTextureCopyRegion) (hal.BufferTextureCopy, error) {
	base, err := copySubresource(op, tex, r.TextureSubRes, r.TextureOrigin, r.CopyRegion)
	if err != nil {
		return hal.BufferTextureCopy{}, err
	}
	bpt := tex.info.Format.AspectBytesPerTexel(r.TextureSubRes.Aspect)
	if r.BufferOffset%uint64(bpt) != 0 {
		return hal.BufferTextureCopy{}, rhi.InvalidArgument(op, "buffer offset %d is not a multiple of the %d-byte texel", r.BufferOffset, bpt)
	}
	size := r.CopyRegion
	row := size.Width * bpt
	bpr := r.BytesPerRow
	if bpr == 0 {
		if size.Height > 1 || size.DepthOrArrayLayers > 1 {
			return hal.BufferTextureCopy{}, rhi.InvalidArgument(op, "bytes per row is required for multi-row copies")
		}
		bpr = row
	} else {
		if pitch := p.cb.dev.gpu.exposed.Capabilities.AlignmentsMask.BufferCopyPitch; pitch > 1 && uint64(bpr)%pitch != 0 {
			return hal.BufferTextureCopy{}, rhi.InvalidArgument(op, "bytes per row %d is not a multiple of %d", bpr, pitch)
		}
		if bpr < row {
			return hal.BufferTextureCopy{}, rhi.InvalidArgument(op, "bytes per row %d is less than the %d-byte row", bpr, row)
		}
	}
	rows := r.RowsPerImage
	if rows == 0 {
		rows = size.Height
	}
	if rows < size.Height {
		return hal.BufferTextureCopy{}, rhi.InvalidArgument(op, "rows per image %d is less than the copy height %d", rows, size.Height)
	}
	images := uint64(size.DepthOrArrayLayers)
	need := uint64(bpr)*(uint64(rows)*(images-1)+uint64(size.Height)-1) + uint64(row)
	if r.BufferOffset > buf.info.Size || need > buf.info.Size-r.BufferOffset {
		return hal.BufferTextureCopy{}, rhi.InvalidRange(op, "copy needs %d bytes at offset %d of a %d-byte buffer", need, r.BufferOffset, buf.info.Size)
	}
	return hal.BufferTextureCopy{
		BufferLayout: hal.ImageDataLayout{
			Offset:       r.BufferOffset,
			BytesPerRow:  bpr,
			RowsPerImage: rows,
		},
		TextureBase: base,
		Size:        extent(size),
	}, nil
}

// CopyTextureToTexture implements rhi.CopyPassCommandRecorder.
func (p *copyPass) CopyTextureToTexture(src, dst rhi.Texture, region *rhi.TextureCopyRegion) error {
	const op = "CopyPass.CopyTextureToTexture"
	if err := p.check(op); err != nil {
		return err
	}
	if region == nil {
		return rhi.InvalidArgument(op, "nil copy region")
	}
	s, err := p.copyTexture(op, src, rhi.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	d, err := p.copyTexture(op, dst, rhi.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	if s.info.Format != d.info.Format {
		return rhi.InvalidArgument(op, "format mismatch %s -> %s", s.info.Format, d.info.Format)
	}
	if s.info.Samples != d.info.Samples {
		return rhi.InvalidArgument(op, "sample count mismatch %d -> %d", s.info.Samples, d.info.Samples)
	}
	srcBase, err := copySubresource(op, s, region.SrcSubRes, region.SrcOrigin, region.CopyRegion)
	if err != nil {
		return err
	}
	dstBase, err := copySubresource(op, d, region.DstSubRes, region.DstOrigin, region.CopyRegion)
	if err != nil {
		return err
	}
	p.cb.encoder.CopyTextureToTexture(s.hal, d.hal, []hal.TextureCopy{{
		SrcBase: srcBase,
		DstBase: dstBase,
		Size:    extent(region.CopyRegion),
	}})
	return nil
}

// EndPass implements rhi.CopyPassCommandRecorder.
func (p *copyPass) EndPass() error {
	if err := p.check("CopyPass.EndPass"); err != nil {
		return err
	}
	p.close()
	return nil
}

// copySubresource validates one texture side of a copy. For array textures
// the layer range is BaseArrayLayer plus the copy depth.
func copySubresource(op string, t *Texture, sub rhi.TextureSubResource, o rhi.Origin3D, size rhi.Extent3D) (hal.ImageCopyTexture, error) {
	if size.Width == 0 || size.Height == 0 || size.DepthOrArrayLayers == 0 {
		return hal.ImageCopyTexture{}, rhi.InvalidArgument(op, "empty copy extent %dx%dx%d", size.Width, size.Height, size.DepthOrArrayLayers)
	}
	if sub.MipLevel >= t.info.MipLevels {
		return hal.ImageCopyTexture{}, rhi.InvalidRange(op, "mip %d outside %d mips", sub.MipLevel, t.info.MipLevels)
	}
	if err := checkAspect(op, t.info.Format, sub.Aspect); err != nil {
		return hal.ImageCopyTexture{}, err
	}
	if sub.Aspect == rhi.TextureAspectDepthStencil {
		return hal.ImageCopyTexture{}, rhi.InvalidArgument(op, "copies select the depth or the stencil aspect, not both")
	}

	m := t.mipExtent(sub.MipLevel)
	if o.X > m.Width || size.Width > m.Width-o.X || o.Y > m.Height || size.Height > m.Height-o.Y {
		return hal.ImageCopyTexture{}, rhi.InvalidRange(op, "copy box %dx%d at (%d, %d) outside mip %d of %dx%d",
			size.Width, size.Height, o.X, o.Y, sub.MipLevel, m.Width, m.Height)
	}
	if t.info.Dimension == rhi.TextureDimension3D {
		if o.Z > m.DepthOrArrayLayers || size.DepthOrArrayLayers > m.DepthOrArrayLayers-o.Z {
			return hal.ImageCopyTexture{}, rhi.InvalidRange(op, "copy depth [%d, +%d) outside %d slices", o.Z, size.DepthOrArrayLayers, m.DepthOrArrayLayers)
		}
	} else {
		if o.Z != 0 {
			return hal.ImageCopyTexture{}, rhi.InvalidArgument(op, "origin Z must be 0 for layered textures, select layers with BaseArrayLayer")
		}
		if sub.ArrayLayerNum != 0 && sub.ArrayLayerNum != size.DepthOrArrayLayers {
			return hal.ImageCopyTexture{}, rhi.InvalidArgument(op, "layer count %d does not match copy depth %d", sub.ArrayLayerNum, size.DepthOrArrayLayers)
		}
		layers := t.arrayLayers()
		if sub.BaseArrayLayer > layers || size.DepthOrArrayLayers > layers-sub.BaseArrayLayer {
			return hal.ImageCopyTexture{}, rhi.InvalidRange(op, "copy layers [%d, +%d) outside %d layers", sub.BaseArrayLayer, size.DepthOrArrayLayers, layers)
		}
		o.Z = sub.BaseArrayLayer
	}
	return hal.ImageCopyTexture{
		Texture:  t.hal,
		MipLevel: sub.MipLevel,
		Origin:   origin(o),
		Aspect:   textureAspect(sub.Aspect),
	}, nil
}

// =============================================================================
// Compute pass
// =============================================================================

type computePass struct {
	pass
	hal      hal.ComputePassEncoder
	pipeline *ComputePipeline
	bound    bindings
}

// SetPipeline implements rhi.ComputePassCommandRecorder.
func (p *computePass) SetPipeline(pipeline rhi.ComputePipeline) error {
	const op = "ComputePass.SetPipeline"
	if err := p.check(op); err != nil {
		return err
	}
	cp, ok := pipeline.(*ComputePipeline)
	if !ok || cp == nil || cp.dev != p.cb.dev {
		return rhi.InvalidArgument(op, "pipeline was not created by this device")
	}
	p.pipeline = cp
	p.hal.SetPipeline(cp.hal)
	return nil
}

// SetBindGroup implements rhi.ComputePassCommandRecorder.
func (p *computePass) SetBindGroup(index uint32, group rhi.BindGroup) error {
	const op = "ComputePass.SetBindGroup"
	if err := p.check(op); err != nil {
		return err
	}
	var layout *PipelineLayout
	if p.pipeline != nil {
		layout = p.pipeline.layout
	}
	g, err := p.bound.set(op, p.cb, layout, index, group)
	if err != nil {
		return err
	}
	p.hal.SetBindGroup(index, g.hal, nil)
	return nil
}

// Dispatch implements rhi.ComputePassCommandRecorder.
func (p *computePass) Dispatch(x, y, z uint32) error {
	const op = "ComputePass.Dispatch"
	if err := p.check(op); err != nil {
		return err
	}
	if p.pipeline == nil {
		return rhi.InvalidState(op, "no pipeline set")
	}
	if err := p.bound.ready(op, p.pipeline.layout); err != nil {
		return err
	}
	if limit := p.cb.dev.gpu.exposed.Capabilities.Limits.MaxComputeWorkgroupsPerDimension; limit != 0 && (x > limit || y > limit || z > limit) {
		return rhi.InvalidArgument(op, "dispatch %dx%dx%d exceeds %d groups per dimension", x, y, z, limit)
	}
	p.hal.Dispatch(x, y, z)
	return nil
}

// EndPass implements rhi.ComputePassCommandRecorder.
func (p *computePass) EndPass() error {
	if err := p.check("ComputePass.EndPass"); err != nil {
		return err
	}
	p.hal.End()
	p.close()
	return nil
}

// =============================================================================
// Graphics pass
// =============================================================================

type graphicsPass struct {
	pass
	hal  hal.RenderPassEncoder
	area rhi.Extent3D

	pipeline *GraphicsPipeline
	bound    bindings
	vertices uint64 // bitmask of set vertex buffer slots
	indexed  bool

	viewport rhi.Viewport
	scissor  rhi.ScissorRect
}

// renderPassDescriptor validates the attachments of info and returns the
// HAL descriptor and the common render area.
func (cb *CommandBuffer) renderPassDescriptor(op string, info *rhi.GraphicsPassBeginInfo) (*hal.RenderPassDescriptor, rhi.Extent3D, error) {
	var area rhi.Extent3D
	if info == nil {
		return nil, area, rhi.InvalidArgument(op, "nil begin info")
	}
	limits := cb.dev.gpu.exposed.Capabilities.Limits
	if uint32(len(info.ColorAttachments)) > limits.MaxColorAttachments {
		return nil, area, rhi.InvalidArgument(op, "%d color attachments exceed limit %d", len(info.ColorAttachments), limits.MaxColorAttachments)
	}
	if len(info.ColorAttachments) == 0 && info.DepthStencilAttachment == nil {
		return nil, area, rhi.InvalidArgument(op, "pass has no attachments")
	}

	// matchArea records the first attachment's size and rejects any other.
	matchArea := func(v *TextureView) error {
		m := v.texture.mipExtent(v.info.BaseMipLevel)
		m.DepthOrArrayLayers = 1
		if area.Width == 0 {
			area = m
			return nil
		}
		if m != area {
			return rhi.InvalidArgument(op, "attachment size %dx%d differs from %dx%d", m.Width, m.Height, area.Width, area.Height)
		}
		return nil
	}

	desc := &hal.RenderPassDescriptor{Label: cb.label}
	for i, a := range info.ColorAttachments {
		v, err := cb.attachmentView(op, a.View, rhi.TextureViewTypeColorAttachment)
		if err != nil {
			return nil, area, err
		}
		if err := matchArea(v); err != nil {
			return nil, area, err
		}
		ca := hal.RenderPassColorAttachment{
			View:       v.hal,
			LoadOp:     loadOp(a.LoadOp),
			StoreOp:    storeOp(a.StoreOp),
			ClearValue: color(a.ClearValue),
		}
		if a.Resolve != nil {
			rv, err := cb.attachmentView(op, a.Resolve, rhi.TextureViewTypeColorAttachment)
			if err != nil {
				return nil, area, err
			}
			if v.texture.info.Samples == 1 || rv.texture.info.Samples != 1 {
				return nil, area, rhi.InvalidArgument(op, "color attachment %d resolves from %d to %d samples", i, v.texture.info.Samples, rv.texture.info.Samples)
			}
			if rv.texture.info.Format != v.texture.info.Format {
				return nil, area, rhi.InvalidArgument(op, "color attachment %d resolve format %s differs from %s", i, rv.texture.info.Format, v.texture.info.Format)
			}
			if err := matchArea(rv); err != nil {
				return nil, area, err
			}
			ca.ResolveTarget = rv.hal
		}
		desc.ColorAttachments = append(desc.ColorAttachments, ca)
	}

	if ds := info.DepthStencilAttachment; ds != nil {
		v, err := cb.attachmentView(op, ds.View, rhi.TextureViewTypeDepthStencil)
		if err != nil {
			return nil, area, err
		}
		if err := matchArea(v); err != nil {
			return nil, area, err
		}
		if ds.DepthClearValue < 0 || ds.DepthClearValue > 1 {
			return nil, area, rhi.InvalidArgument(op, "depth clear value %g outside [0, 1]", ds.DepthClearValue)
		}
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              v.hal,
			DepthLoadOp:       loadOp(ds.DepthLoadOp),
			DepthStoreOp:      storeOp(ds.DepthStoreOp),
			DepthClearValue:   ds.DepthClearValue,
			DepthReadOnly:     ds.DepthReadOnly,
			StencilLoadOp:     loadOp(ds.StencilLoadOp),
			StencilStoreOp:    storeOp(ds.StencilStoreOp),
			StencilClearValue: ds.StencilClearValue,
			StencilReadOnly:   ds.StencilReadOnly,
		}
	}
	return desc, area, nil
}

func (cb *CommandBuffer) attachmentView(op string, tv rhi.TextureView, want rhi.TextureViewType) (*TextureView, error) {
	v, ok := tv.(*TextureView)
	if !ok || v == nil || v.texture.dev != cb.dev {
		return nil, rhi.InvalidArgument(op, "attachment view was not created by this device")
	}
	if v.info.Type != want {
		return nil, rhi.InvalidArgument(op, "attachment view has type %d, want %d", v.info.Type, want)
	}
	if v.destroyed {
		return nil, rhi.InvalidArgument(op, "attachment view is destroyed")
	}
	return v, nil
}

// SetPipeline implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetPipeline(pipeline rhi.GraphicsPipeline) error {
	const op = "GraphicsPass.SetPipeline"
	if err := p.check(op); err != nil {
		return err
	}
	gp, ok := pipeline.(*GraphicsPipeline)
	if !ok || gp == nil || gp.dev != p.cb.dev {
		return rhi.InvalidArgument(op, "pipeline was not created by this device")
	}
	p.pipeline = gp
	p.hal.SetPipeline(gp.hal)
	return nil
}

// SetBindGroup implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetBindGroup(index uint32, group rhi.BindGroup) error {
	const op = "GraphicsPass.SetBindGroup"
	if err := p.check(op); err != nil {
		return err
	}
	var layout *PipelineLayout
	if p.pipeline != nil {
		layout = p.pipeline.layout
	}
	g, err := p.bound.set(op, p.cb, layout, index, group)
	if err != nil {
		return err
	}
	p.hal.SetBindGroup(index, g.hal, nil)
	return nil
}

func (p *graphicsPass) bufferView(op string, bv rhi.BufferView, want rhi.BufferViewType) (*BufferView, error) {
	v, ok := bv.(*BufferView)
	if !ok || v == nil || v.buffer.dev != p.cb.dev {
		return nil, rhi.InvalidArgument(op, "buffer view was not created by this device")
	}
	if v.info.Type != want {
		return nil, rhi.InvalidArgument(op, "buffer view has type %d, want %d", v.info.Type, want)
	}
	return v, nil
}

// SetVertexBuffer implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetVertexBuffer(slot uint32, view rhi.BufferView) error {
	const op = "GraphicsPass.SetVertexBuffer"
	if err := p.check(op); err != nil {
		return err
	}
	if limit := vertexBufferLimit(p.cb.dev.gpu.exposed.Capabilities.Limits); slot >= limit {
		return rhi.InvalidArgument(op, "vertex buffer slot %d exceeds limit %d", slot, limit)
	}
	v, err := p.bufferView(op, view, rhi.BufferViewTypeVertex)
	if err != nil {
		return err
	}
	p.hal.SetVertexBuffer(slot, v.buffer.hal, v.info.Offset)
	p.vertices |= 1 << slot
	return nil
}

// maxVertexBufferSlots is the width of the vertex buffer mask.
const maxVertexBufferSlots = 64

// vertexBufferLimit is the number of vertex buffer slots l allows.
func vertexBufferLimit(l gputypes.Limits) uint32 {
	return min(l.MaxVertexBuffers, maxVertexBufferSlots)
}

// SetIndexBuffer implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetIndexBuffer(view rhi.BufferView) error {
	const op = "GraphicsPass.SetIndexBuffer"
	if err := p.check(op); err != nil {
		return err
	}
	v, err := p.bufferView(op, view, rhi.BufferViewTypeIndex)
	if err != nil {
		return err
	}
	p.hal.SetIndexBuffer(v.buffer.hal, indexFormat(v.info.IndexFormat), v.info.Offset)
	p.indexed = true
	return nil
}

// SetViewport implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) error {
	const op = "GraphicsPass.SetViewport"
	if err := p.check(op); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return rhi.InvalidArgument(op, "viewport size %gx%g is empty", width, height)
	}
	if minDepth < 0 || maxDepth > 1 || minDepth > maxDepth {
		return rhi.InvalidArgument(op, "viewport depth [%g, %g] outside [0, 1]", minDepth, maxDepth)
	}
	p.viewport = rhi.Viewport{X: x, Y: y, Width: width, Height: height, MinDepth: minDepth, MaxDepth: maxDepth}
	vp := p.viewport
	p.hal.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	return nil
}

// SetScissor implements rhi.GraphicsPassCommandRecorder. The rectangle
// must lie inside the render area.
func (p *graphicsPass) SetScissor(x, y, width, height uint32) error {
	const op = "GraphicsPass.SetScissor"
	if err := p.check(op); err != nil {
		return err
	}
	if x > p.area.Width || width > p.area.Width-x || y > p.area.Height || height > p.area.Height-y {
		return rhi.InvalidArgument(op, "scissor %dx%d at (%d, %d) outside %dx%d render area", width, height, x, y, p.area.Width, p.area.Height)
	}
	p.scissor = rhi.ScissorRect{X: x, Y: y, Width: width, Height: height}
	s := p.scissor
	p.hal.SetScissorRect(s.X, s.Y, s.Width, s.Height)
	return nil
}

// Viewport returns the current viewport. It covers the render area until
// SetViewport is called.
func (p *graphicsPass) Viewport() rhi.Viewport { return p.viewport }

// Scissor returns the current scissor rectangle.
func (p *graphicsPass) Scissor() rhi.ScissorRect { return p.scissor }

// SetPrimitiveTopology implements rhi.GraphicsPassCommandRecorder. The
// execution layer bakes topology into the pipeline, so only the pipeline's
// own topology is accepted.
func (p *graphicsPass) SetPrimitiveTopology(topology rhi.PrimitiveTopology) error {
	const op = "GraphicsPass.SetPrimitiveTopology"
	if err := p.check(op); err != nil {
		return err
	}
	if p.pipeline == nil {
		return rhi.InvalidState(op, "no pipeline set")
	}
	if topology > rhi.PrimitiveTopologyTriangleStrip {
		return rhi.InvalidArgument(op, "invalid topology %d", topology)
	}
	if topology != p.pipeline.topology {
		return rhi.Unsupported(op, "dynamic topology %d differs from pipeline topology %d", topology, p.pipeline.topology)
	}
	return nil
}

// SetBlendConstant implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetBlendConstant(c rhi.Color) error {
	const op = "GraphicsPass.SetBlendConstant"
	if err := p.check(op); err != nil {
		return err
	}
	gc := color(c)
	p.hal.SetBlendConstant(&gc)
	return nil
}

// SetStencilReference implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) SetStencilReference(reference uint32) error {
	const op = "GraphicsPass.SetStencilReference"
	if err := p.check(op); err != nil {
		return err
	}
	p.hal.SetStencilReference(reference)
	return nil
}

// drawable fails unless a pipeline, its bind groups and its vertex
// buffers are set.
func (p *graphicsPass) drawable(op string) error {
	if p.pipeline == nil {
		return rhi.InvalidState(op, "no pipeline set")
	}
	if err := p.bound.ready(op, p.pipeline.layout); err != nil {
		return err
	}
	for slot := uint32(0); slot < p.pipeline.vertexBuffers; slot++ {
		if p.vertices&(1<<slot) == 0 {
			return rhi.InvalidState(op, "vertex buffer %d is not set", slot)
		}
	}
	return nil
}

// Draw implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	const op = "GraphicsPass.Draw"
	if err := p.check(op); err != nil {
		return err
	}
	if err := p.drawable(op); err != nil {
		return err
	}
	p.hal.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
	return nil
}

// DrawIndexed implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error {
	const op = "GraphicsPass.DrawIndexed"
	if err := p.check(op); err != nil {
		return err
	}
	if err := p.drawable(op); err != nil {
		return err
	}
	if !p.indexed {
		return rhi.InvalidState(op, "no index buffer set")
	}
	p.hal.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
	return nil
}

// EndPass implements rhi.GraphicsPassCommandRecorder.
func (p *graphicsPass) EndPass() error {
	if err := p.check("GraphicsPass.EndPass"); err != nil {
		return err
	}
	p.hal.End()
	p.close()
	return nil
}
