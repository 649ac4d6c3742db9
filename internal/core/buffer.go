package core

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// Buffer implements rhi.Buffer.
//
// The map mode is fixed at creation: MapWrite usage maps for writing,
// any other mappable buffer maps for reading.
type Buffer struct {
	dev    *Device
	info   rhi.BufferCreateInfo
	hal    hal.Buffer
	native any

	mappable bool
	mapMode  rhi.MapMode

	mu        sync.Mutex
	mapped    bool
	destroyed bool
}

// CreateBuffer implements rhi.Device.
func (d *Device) CreateBuffer(info *rhi.BufferCreateInfo) (rhi.Buffer, error) {
	const op = "Device.CreateBuffer"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	if info.Size == 0 {
		return nil, rhi.InvalidArgument(op, "buffer %q has zero size", info.DebugName)
	}
	if info.Usage.IsEmpty() || !rhi.BufferUsageAll.HasAll(info.Usage) {
		return nil, rhi.InvalidArgument(op, "buffer %q has invalid usage %#x", info.DebugName, info.Usage.Value())
	}
	if info.InitialState >= rhi.BufferStateCount {
		return nil, rhi.InvalidArgument(op, "buffer %q has invalid initial state %d", info.DebugName, info.InitialState)
	}
	if limit := d.gpu.exposed.Capabilities.Limits.MaxBufferSize; limit != 0 && info.Size > limit {
		return nil, rhi.InvalidArgument(op, "buffer %q size %d exceeds limit %d", info.DebugName, info.Size, limit)
	}

	native, err := d.variant.ProjectBuffer(info)
	if err != nil {
		return nil, err
	}

	hb, err := d.hal.CreateBuffer(&hal.BufferDescriptor{
		Label: info.DebugName,
		Size:  info.Size,
		Usage: bufferUsage(info.Usage),
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}

	b := &Buffer{
		dev:      d,
		info:     *info,
		hal:      hb,
		native:   native,
		mappable: info.Usage.HasAny(rhi.NewFlags(rhi.BufferUsageMapRead, rhi.BufferUsageMapWrite)),
		mapMode:  rhi.MapModeRead,
	}
	if info.Usage.Has(rhi.BufferUsageMapWrite) {
		b.mapMode = rhi.MapModeWrite
	}
	d.track()
	d.log.Debug("rhi: buffer created", "name", info.DebugName, "size", info.Size, "usage", info.Usage.Value())
	return b, nil
}

// GetCreateInfo implements rhi.Buffer.
func (b *Buffer) GetCreateInfo() rhi.BufferCreateInfo { return b.info }

// Native returns the variant's projection of the buffer.
func (b *Buffer) Native() any { return b.native }

// HAL returns the execution-layer buffer.
func (b *Buffer) HAL() hal.Buffer { return b.hal }

// MapMode returns the mode fixed at creation and whether the buffer is
// mappable at all.
func (b *Buffer) MapMode() (rhi.MapMode, bool) { return b.mapMode, b.mappable }

// Map implements rhi.Buffer.
func (b *Buffer) Map(mode rhi.MapMode, offset, length uint64) ([]byte, error) {
	const op = "Buffer.Map"
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case b.destroyed:
		return nil, rhi.InvalidState(op, "buffer %q is destroyed", b.info.DebugName)
	case !b.mappable:
		return nil, rhi.InvalidState(op, "buffer %q has no map usage", b.info.DebugName)
	case mode != b.mapMode:
		return nil, rhi.InvalidState(op, "buffer %q maps for %s, not %s", b.info.DebugName, b.mapMode, mode)
	case b.mapped:
		return nil, rhi.InvalidState(op, "buffer %q is already mapped", b.info.DebugName)
	}

	if offset > b.info.Size {
		return nil, rhi.InvalidRange(op, "offset %d beyond buffer size %d", offset, b.info.Size)
	}
	if length == 0 {
		length = b.info.Size - offset
	}
	if length == 0 || length > b.info.Size-offset {
		return nil, rhi.InvalidRange(op, "range [%d, +%d) outside buffer size %d", offset, length, b.info.Size)
	}

	m, err := b.dev.hal.MapBuffer(b.hal, offset, length)
	if err != nil {
		if errors.Is(err, hal.ErrInvalidMapRange) {
			return nil, rhi.InvalidRange(op, "range [%d, +%d) rejected by backend", offset, length)
		}
		return nil, backendError(b.dev.variant, op, err)
	}
	b.mapped = true
	return unsafe.Slice((*byte)(m.Ptr), length), nil
}

// UnMap implements rhi.Buffer.
func (b *Buffer) UnMap() error {
	const op = "Buffer.UnMap"
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mapped {
		return rhi.InvalidState(op, "buffer %q is not mapped", b.info.DebugName)
	}
	b.mapped = false
	if err := b.dev.hal.UnmapBuffer(b.hal); err != nil {
		return backendError(b.dev.variant, op, err)
	}
	return nil
}

// Destroy implements rhi.Buffer.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return
	}
	b.destroyed = true
	if b.mapped {
		_ = b.dev.hal.UnmapBuffer(b.hal)
		b.mapped = false
	}
	b.dev.hal.DestroyBuffer(b.hal)
	b.dev.untrack()
}

// =============================================================================
// BufferView
// =============================================================================

// BufferView implements rhi.BufferView. It is a range over its buffer and
// owns no native object.
type BufferView struct {
	buffer *Buffer
	info   rhi.BufferViewCreateInfo
}

// CreateBufferView implements rhi.Buffer.
func (b *Buffer) CreateBufferView(info *rhi.BufferViewCreateInfo) (rhi.BufferView, error) {
	const op = "Buffer.CreateBufferView"
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}

	var need rhi.BufferUsageBits
	switch info.Type {
	case rhi.BufferViewTypeVertex:
		need = rhi.BufferUsageVertex
		if info.Stride == 0 {
			return nil, rhi.InvalidArgument(op, "vertex view of %q has zero stride", b.info.DebugName)
		}
	case rhi.BufferViewTypeIndex:
		need = rhi.BufferUsageIndex
		if info.IndexFormat > rhi.IndexFormatUint32 {
			return nil, rhi.InvalidArgument(op, "invalid index format %d", info.IndexFormat)
		}
	case rhi.BufferViewTypeUniformBinding:
		need = rhi.BufferUsageUniform
	case rhi.BufferViewTypeStorageBinding:
		need = rhi.BufferUsageStorage
	default:
		return nil, rhi.InvalidArgument(op, "invalid buffer view type %d", info.Type)
	}
	if !b.info.Usage.Has(need) {
		return nil, rhi.InvalidArgument(op, "buffer %q lacks the usage required by view type %d", b.info.DebugName, info.Type)
	}

	if info.Offset >= b.info.Size {
		return nil, rhi.InvalidRange(op, "offset %d outside buffer size %d", info.Offset, b.info.Size)
	}
	v := &BufferView{buffer: b, info: *info}
	if v.info.Size == 0 {
		v.info.Size = b.info.Size - info.Offset
	}
	if v.info.Size > b.info.Size-info.Offset {
		return nil, rhi.InvalidRange(op, "range [%d, +%d) outside buffer size %d", info.Offset, v.info.Size, b.info.Size)
	}

	l := b.dev.gpu.exposed.Capabilities.Limits
	switch info.Type {
	case rhi.BufferViewTypeUniformBinding:
		if a := uint64(l.MinUniformBufferOffsetAlignment); a > 1 && info.Offset%a != 0 {
			return nil, rhi.InvalidArgument(op, "uniform view offset %d not aligned to %d", info.Offset, a)
		}
	case rhi.BufferViewTypeStorageBinding:
		if a := uint64(l.MinStorageBufferOffsetAlignment); a > 1 && info.Offset%a != 0 {
			return nil, rhi.InvalidArgument(op, "storage view offset %d not aligned to %d", info.Offset, a)
		}
	}
	return v, nil
}

// Buffer implements rhi.BufferView.
func (v *BufferView) Buffer() rhi.Buffer { return v.buffer }

// GetCreateInfo implements rhi.BufferView.
func (v *BufferView) GetCreateInfo() rhi.BufferViewCreateInfo { return v.info }

// Destroy implements rhi.BufferView.
func (v *BufferView) Destroy() {}
