package core

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/cache"
)

// MaxPipelineConstantBytes bounds the push-constant block of a pipeline
// layout.
const MaxPipelineConstantBytes = 128

// =============================================================================
// BindGroupLayout
// =============================================================================

// BindGroupLayout implements rhi.BindGroupLayout.
//
// Entries are kept sorted by (type, slot). Two layouts with equal keys
// declare the same bindings at the same group index and are
// interchangeable when binding groups.
type BindGroupLayout struct {
	dev     *Device
	info    rhi.BindGroupLayoutCreateInfo
	entries []rhi.BindGroupLayoutEntry
	hal     hal.BindGroupLayout
	native  any
	key     uint64

	// halBinding maps sorted entry positions to HAL binding numbers.
	halBinding []uint32

	cbvSrvUav uint32
	samplers  uint32

	mu        sync.Mutex
	destroyed bool
}

// CreateBindGroupLayout implements rhi.Device.
func (d *Device) CreateBindGroupLayout(info *rhi.BindGroupLayoutCreateInfo) (rhi.BindGroupLayout, error) {
	const op = "Device.CreateBindGroupLayout"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}

	l := d.gpu.exposed.Capabilities.Limits
	if info.LayoutIndex >= l.MaxBindGroups {
		return nil, rhi.InvalidArgument(op, "layout index %d exceeds %d bind groups", info.LayoutIndex, l.MaxBindGroups)
	}
	if uint32(len(info.Entries)) > l.MaxBindingsPerBindGroup {
		return nil, rhi.InvalidArgument(op, "%d entries exceed %d bindings per group", len(info.Entries), l.MaxBindingsPerBindGroup)
	}

	entries := slices.Clone(info.Entries)
	for i := range entries {
		e := &entries[i]
		if e.Binding.Type >= rhi.BindingTypeCount {
			return nil, rhi.InvalidArgument(op, "entry %d has invalid binding type %d", i, e.Binding.Type)
		}
		if e.ShaderVisibility.IsEmpty() || !rhi.ShaderStageAll.HasAll(e.ShaderVisibility) {
			return nil, rhi.InvalidArgument(op, "entry %d has invalid shader visibility %#x", i, e.ShaderVisibility.Value())
		}
		if e.Binding.Type == rhi.BindingTypeStorageTexture {
			if e.StorageTextureFormat == rhi.PixelFormatUndefined {
				e.StorageTextureFormat = rhi.PixelFormatRGBA8Unorm
			}
			if !e.StorageTextureFormat.IsValid() || e.StorageTextureFormat.IsDepthStencil() {
				return nil, rhi.InvalidArgument(op, "entry %d has invalid storage format %s", i, e.StorageTextureFormat)
			}
		} else {
			e.StorageTextureFormat = rhi.PixelFormatUndefined
		}
		if err := normalizeTextureSlot(e); err != nil {
			return nil, rhi.InvalidArgument(op, "entry %d: %v", i, err)
		}
	}
	slices.SortFunc(entries, CompareLayoutEntries)
	for i := 1; i < len(entries); i++ {
		if entries[i].Binding == entries[i-1].Binding {
			return nil, rhi.InvalidArgument(op, "slot %d declared twice as %s", entries[i].Binding.Slot, entries[i].Binding.Type)
		}
	}

	sorted := *info
	sorted.Entries = entries
	sig := layoutSignature(info.LayoutIndex, entries)
	native, err := d.layouts.GetOrCreate(signatureString(sig), func() (any, error) {
		return d.variant.ProjectBindGroupLayout(&sorted)
	})
	if err != nil {
		return nil, err
	}

	bgl := &BindGroupLayout{
		dev:        d,
		info:       sorted,
		entries:    entries,
		native:     native,
		key:        cache.Fingerprint(sig...),
		halBinding: ShaderBindings(entries),
	}

	halEntries := make([]gputypes.BindGroupLayoutEntry, len(entries))
	for i, e := range entries {
		he := gputypes.BindGroupLayoutEntry{
			Binding:    bgl.halBinding[i],
			Visibility: shaderStages(e.ShaderVisibility),
		}
		switch e.Binding.Type {
		case rhi.BindingTypeUniformBuffer:
			he.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
			bgl.cbvSrvUav++
		case rhi.BindingTypeStorageBuffer:
			he.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
			bgl.cbvSrvUav++
		case rhi.BindingTypeSampler:
			he.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
			bgl.samplers++
		case rhi.BindingTypeTexture:
			he.Texture = &gputypes.TextureBindingLayout{
				SampleType:    textureSampleType(e.SampleType),
				ViewDimension: textureViewDimension(e.ViewDimension),
			}
			bgl.cbvSrvUav++
		case rhi.BindingTypeStorageTexture:
			he.StorageTexture = &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessReadWrite,
				Format:        TextureFormat(e.StorageTextureFormat),
				ViewDimension: textureViewDimension(e.ViewDimension),
			}
			bgl.cbvSrvUav++
		}
		halEntries[i] = he
	}

	bgl.hal, err = d.hal.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: info.DebugName, Entries: halEntries})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	d.log.Debug("rhi: bind group layout created", "name", info.DebugName, "index", info.LayoutIndex, "entries", len(entries))
	return bgl, nil
}

// normalizeTextureSlot resolves the view dimension and sample type of a
// texture slot and clears them on other slots.
func normalizeTextureSlot(e *rhi.BindGroupLayoutEntry) error {
	switch e.Binding.Type {
	case rhi.BindingTypeTexture, rhi.BindingTypeStorageTexture:
	default:
		e.ViewDimension, e.SampleType = rhi.TextureViewDimensionUndefined, rhi.TextureSampleTypeFloat
		return nil
	}
	if e.ViewDimension == rhi.TextureViewDimensionUndefined {
		e.ViewDimension = rhi.TextureViewDimension2D
	}
	if e.ViewDimension > rhi.TextureViewDimension3D {
		return fmt.Errorf("invalid view dimension %d", e.ViewDimension)
	}
	if e.Binding.Type == rhi.BindingTypeStorageTexture {
		switch e.ViewDimension {
		case rhi.TextureViewDimensionCube, rhi.TextureViewDimensionCubeArray:
			return fmt.Errorf("storage textures cannot be bound as %s", e.ViewDimension)
		}
		e.SampleType = rhi.TextureSampleTypeFloat
		return nil
	}
	if e.SampleType >= rhi.TextureSampleTypeCount {
		return fmt.Errorf("invalid sample type %d", e.SampleType)
	}
	return nil
}

// CompareLayoutEntries orders layout entries by (type, slot).
func CompareLayoutEntries(a, b rhi.BindGroupLayoutEntry) int {
	if a.Binding.Type != b.Binding.Type {
		return int(a.Binding.Type) - int(b.Binding.Type)
	}
	switch {
	case a.Binding.Slot < b.Binding.Slot:
		return -1
	case a.Binding.Slot > b.Binding.Slot:
		return 1
	}
	return 0
}

// layoutSignature encodes the binding signature of a sorted layout. Equal
// signatures project to the same native layout.
func layoutSignature(index uint32, entries []rhi.BindGroupLayoutEntry) []uint32 {
	words := make([]uint32, 0, 1+6*len(entries))
	words = append(words, index)
	for _, e := range entries {
		words = append(words, uint32(e.Binding.Type), e.Binding.Slot, e.ShaderVisibility.Value(),
			uint32(e.StorageTextureFormat), uint32(e.ViewDimension), uint32(e.SampleType))
	}
	return words
}

func signatureString(words []uint32) string {
	b := make([]byte, 0, 4*len(words))
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return string(b)
}

// ShaderBindings assigns the binding numbers shaders and the HAL see for
// sorted entries. Slots are used directly when they are unique across
// types; otherwise entries are numbered by their sorted position.
func ShaderBindings(entries []rhi.BindGroupLayoutEntry) []uint32 {
	out := make([]uint32, len(entries))
	seen := make(map[uint32]struct{}, len(entries))
	unique := true
	for i, e := range entries {
		if _, dup := seen[e.Binding.Slot]; dup {
			unique = false
			break
		}
		seen[e.Binding.Slot] = struct{}{}
		out[i] = e.Binding.Slot
	}
	if !unique {
		for i := range out {
			out[i] = uint32(i)
		}
	}
	return out
}

// find returns the sorted position of binding, or -1.
func (l *BindGroupLayout) find(b rhi.ResourceBinding) int {
	i, ok := slices.BinarySearchFunc(l.entries, b, func(e rhi.BindGroupLayoutEntry, t rhi.ResourceBinding) int {
		return CompareLayoutEntries(e, rhi.BindGroupLayoutEntry{Binding: t})
	})
	if !ok {
		return -1
	}
	return i
}

// GetCreateInfo implements rhi.BindGroupLayout. Entries are returned in
// (type, slot) order.
func (l *BindGroupLayout) GetCreateInfo() rhi.BindGroupLayoutCreateInfo {
	info := l.info
	info.Entries = slices.Clone(l.entries)
	return info
}

// Key returns the binding-signature fingerprint of the layout.
func (l *BindGroupLayout) Key() uint64 { return l.key }

// Native returns the variant's projection of the layout.
func (l *BindGroupLayout) Native() any { return l.native }

// Entries returns the sorted entries. The slice must not be modified.
func (l *BindGroupLayout) Entries() []rhi.BindGroupLayoutEntry { return l.entries }

// DescriptorCounts returns the number of CBV/SRV/UAV and sampler
// descriptors a group of this layout occupies.
func (l *BindGroupLayout) DescriptorCounts() (cbvSrvUav, samplers uint32) {
	return l.cbvSrvUav, l.samplers
}

// Destroy implements rhi.BindGroupLayout.
func (l *BindGroupLayout) Destroy() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.destroyed {
		return
	}
	l.destroyed = true
	l.dev.hal.DestroyBindGroupLayout(l.hal)
	l.dev.untrack()
}

// =============================================================================
// BindGroup
// =============================================================================

// BindGroup implements rhi.BindGroup.
type BindGroup struct {
	dev    *Device
	layout *BindGroupLayout
	hal    hal.BindGroup

	mu        sync.Mutex
	destroyed bool
}

// CreateBindGroup implements rhi.Device. Every layout slot must be bound
// exactly once with a resource of the declared kind.
func (d *Device) CreateBindGroup(info *rhi.BindGroupCreateInfo) (rhi.BindGroup, error) {
	const op = "Device.CreateBindGroup"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	layout, ok := info.Layout.(*BindGroupLayout)
	if !ok || layout == nil || layout.dev != d {
		return nil, rhi.InvalidArgument(op, "layout was not created by this device")
	}

	bound := make([]bool, len(layout.entries))
	halEntries := make([]gputypes.BindGroupEntry, 0, len(info.Entries))
	for i, e := range info.Entries {
		pos := layout.find(e.Binding)
		if pos < 0 {
			return nil, rhi.InvalidArgument(op, "entry %d: layout has no %s slot %d", i, e.Binding.Type, e.Binding.Slot)
		}
		if bound[pos] {
			return nil, rhi.InvalidArgument(op, "entry %d: %s slot %d bound twice", i, e.Binding.Type, e.Binding.Slot)
		}
		bound[pos] = true

		res, err := d.bindingResource(op, i, &layout.entries[pos], &e)
		if err != nil {
			return nil, err
		}
		halEntries = append(halEntries, gputypes.BindGroupEntry{Binding: layout.halBinding[pos], Resource: res})
	}
	for pos, ok := range bound {
		if !ok {
			b := layout.entries[pos].Binding
			return nil, rhi.InvalidArgument(op, "%s slot %d is not bound", b.Type, b.Slot)
		}
	}

	hg, err := d.hal.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   info.DebugName,
		Layout:  layout.hal,
		Entries: halEntries,
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	return &BindGroup{dev: d, layout: layout, hal: hg}, nil
}

// bindingResource checks that e supplies the resource kind declared by le
// and returns its HAL binding.
func (d *Device) bindingResource(op string, i int, le *rhi.BindGroupLayoutEntry, e *rhi.BindGroupEntry) (gputypes.BindingResource, error) {
	set := 0
	if e.Buffer != nil {
		set++
	}
	if e.Texture != nil {
		set++
	}
	if e.Sampler != nil {
		set++
	}
	if set != 1 {
		return nil, rhi.InvalidArgument(op, "entry %d must set exactly one resource, has %d", i, set)
	}

	l := d.gpu.exposed.Capabilities.Limits
	switch t := le.Binding.Type; t {
	case rhi.BindingTypeUniformBuffer, rhi.BindingTypeStorageBuffer:
		v, ok := e.Buffer.(*BufferView)
		if !ok || v == nil || v.buffer.dev != d {
			return nil, rhi.InvalidArgument(op, "entry %d: %s slot needs a buffer view from this device", i, t)
		}
		want, limit := rhi.BufferViewTypeUniformBinding, l.MaxUniformBufferBindingSize
		if t == rhi.BindingTypeStorageBuffer {
			want, limit = rhi.BufferViewTypeStorageBinding, l.MaxStorageBufferBindingSize
		}
		if v.info.Type != want {
			return nil, rhi.InvalidArgument(op, "entry %d: buffer view type %d does not match %s slot", i, v.info.Type, t)
		}
		if limit != 0 && v.info.Size > limit {
			return nil, rhi.InvalidArgument(op, "entry %d: binding size %d exceeds %d", i, v.info.Size, limit)
		}
		return gputypes.BufferBinding{Buffer: v.buffer.hal.NativeHandle(), Offset: v.info.Offset, Size: v.info.Size}, nil

	case rhi.BindingTypeSampler:
		s, ok := e.Sampler.(*Sampler)
		if !ok || s == nil || s.dev != d {
			return nil, rhi.InvalidArgument(op, "entry %d: sampler slot needs a sampler from this device", i)
		}
		return gputypes.SamplerBinding{Sampler: s.hal.NativeHandle()}, nil

	default:
		v, ok := e.Texture.(*TextureView)
		if !ok || v == nil || v.texture.dev != d {
			return nil, rhi.InvalidArgument(op, "entry %d: %s slot needs a texture view from this device", i, t)
		}
		want := rhi.TextureViewTypeTextureBinding
		if t == rhi.BindingTypeStorageTexture {
			want = rhi.TextureViewTypeStorageBinding
			if f := v.texture.info.Format; f != le.StorageTextureFormat {
				return nil, rhi.InvalidArgument(op, "entry %d: storage texture format %s, layout declares %s", i, f, le.StorageTextureFormat)
			}
		}
		if v.info.Type != want {
			return nil, rhi.InvalidArgument(op, "entry %d: texture view type %d does not match %s slot", i, v.info.Type, t)
		}
		if v.info.Dimension != le.ViewDimension {
			return nil, rhi.InvalidArgument(op, "entry %d: %s view bound to a %s slot", i, v.info.Dimension, le.ViewDimension)
		}
		return gputypes.TextureViewBinding{TextureView: v.hal.NativeHandle()}, nil
	}
}

// Layout implements rhi.BindGroup.
func (g *BindGroup) Layout() rhi.BindGroupLayout { return g.layout }

// Destroy implements rhi.BindGroup.
func (g *BindGroup) Destroy() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.destroyed {
		return
	}
	g.destroyed = true
	g.dev.hal.DestroyBindGroup(g.hal)
	g.dev.untrack()
}

// =============================================================================
// PipelineLayout
// =============================================================================

// PipelineLayout implements rhi.PipelineLayout.
type PipelineLayout struct {
	dev       *Device
	groups    []*BindGroupLayout
	constants []rhi.PipelineConstantLayout
	hal       hal.PipelineLayout
	native    any

	mu        sync.Mutex
	destroyed bool
}

// CreatePipelineLayout implements rhi.Device. Layout i must have been
// created with LayoutIndex i.
func (d *Device) CreatePipelineLayout(info *rhi.PipelineLayoutCreateInfo) (rhi.PipelineLayout, error) {
	const op = "Device.CreatePipelineLayout"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	if limit := d.gpu.exposed.Capabilities.Limits.MaxBindGroups; uint32(len(info.BindGroupLayouts)) > limit {
		return nil, rhi.InvalidArgument(op, "%d bind group layouts exceed %d", len(info.BindGroupLayouts), limit)
	}

	groups := make([]*BindGroupLayout, len(info.BindGroupLayouts))
	halGroups := make([]hal.BindGroupLayout, len(groups))
	for i, bl := range info.BindGroupLayouts {
		l, ok := bl.(*BindGroupLayout)
		if !ok || l == nil || l.dev != d {
			return nil, rhi.InvalidArgument(op, "layout %d was not created by this device", i)
		}
		if l.info.LayoutIndex != uint32(i) {
			return nil, rhi.InvalidArgument(op, "layout %d was created for index %d", i, l.info.LayoutIndex)
		}
		groups[i] = l
		halGroups[i] = l.hal
	}

	var total uint32
	ranges := make([]hal.PushConstantRange, len(info.PipelineConstantLayouts))
	for i, c := range info.PipelineConstantLayouts {
		if c.Size == 0 || c.Size%4 != 0 || c.Offset%4 != 0 {
			return nil, rhi.InvalidArgument(op, "constant range %d [%d, +%d) is not a non-empty multiple of 4", i, c.Offset, c.Size)
		}
		if c.StageFlags.IsEmpty() || !rhi.ShaderStageAll.HasAll(c.StageFlags) {
			return nil, rhi.InvalidArgument(op, "constant range %d has invalid stages %#x", i, c.StageFlags.Value())
		}
		if end := c.Offset + c.Size; end > MaxPipelineConstantBytes || end < c.Offset {
			return nil, rhi.InvalidArgument(op, "constant range %d ends past %d bytes", i, MaxPipelineConstantBytes)
		}
		total += c.Size
		ranges[i] = hal.PushConstantRange{
			Stages: shaderStages(c.StageFlags),
			Range:  hal.Range{Start: c.Offset, End: c.Offset + c.Size},
		}
	}
	if total > MaxPipelineConstantBytes {
		return nil, rhi.InvalidArgument(op, "%d constant bytes exceed %d", total, MaxPipelineConstantBytes)
	}

	constants := slices.Clone(info.PipelineConstantLayouts)
	native, err := d.variant.ProjectPipelineLayout(groups, constants)
	if err != nil {
		return nil, err
	}

	hl, err := d.hal.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:              info.DebugName,
		BindGroupLayouts:   halGroups,
		PushConstantRanges: ranges,
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	return &PipelineLayout{dev: d, groups: groups, constants: constants, hal: hl, native: native}, nil
}

// BindGroupLayouts implements rhi.PipelineLayout.
func (p *PipelineLayout) BindGroupLayouts() []rhi.BindGroupLayout {
	out := make([]rhi.BindGroupLayout, len(p.groups))
	for i, g := range p.groups {
		out[i] = g
	}
	return out
}

// Constants returns the push-constant ranges of the layout.
func (p *PipelineLayout) Constants() []rhi.PipelineConstantLayout { return p.constants }

// Native returns the variant's projection of the layout.
func (p *PipelineLayout) Native() any { return p.native }

// compatible reports whether group may be bound at index.
func (p *PipelineLayout) compatible(index uint32, group *BindGroup) bool {
	return index < uint32(len(p.groups)) && p.groups[index].key == group.layout.key
}

// Destroy implements rhi.PipelineLayout.
func (p *PipelineLayout) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.dev.hal.DestroyPipelineLayout(p.hal)
	p.dev.untrack()
}
