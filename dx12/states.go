package dx12

import "github.com/gogpu/rhi"

// HeapType is a D3D12_HEAP_TYPE value.
type HeapType uint32

// Heap types.
const (
	HeapTypeDefault  HeapType = 1
	HeapTypeUpload   HeapType = 2
	HeapTypeReadback HeapType = 3
)

// ResourceStates is a D3D12_RESOURCE_STATES bitmask.
type ResourceStates uint32

// Resource states.
const (
	StateCommon                  ResourceStates = 0
	StateVertexAndConstantBuffer ResourceStates = 0x1
	StateIndexBuffer             ResourceStates = 0x2
	StateRenderTarget            ResourceStates = 0x4
	StateUnorderedAccess         ResourceStates = 0x8
	StateDepthWrite              ResourceStates = 0x10
	StateDepthRead               ResourceStates = 0x20
	StateNonPixelShaderResource  ResourceStates = 0x40
	StatePixelShaderResource     ResourceStates = 0x80
	StateIndirectArgument        ResourceStates = 0x200
	StateCopyDest                ResourceStates = 0x400
	StateCopySource              ResourceStates = 0x800
	StatePresent                 ResourceStates = 0

	StateShaderResource = StateNonPixelShaderResource | StatePixelShaderResource
	StateGenericRead    = StateVertexAndConstantBuffer | StateIndexBuffer | StateNonPixelShaderResource |
		StatePixelShaderResource | StateIndirectArgument | StateCopySource
)

// AllSubresources selects every subresource of a resource in a barrier.
const AllSubresources = 0xFFFFFFFF

var bufferUsageStates = map[rhi.BufferUsageBits]ResourceStates{
	rhi.BufferUsageCopySrc:  StateCopySource,
	rhi.BufferUsageCopyDst:  StateCopyDest,
	rhi.BufferUsageIndex:    StateIndexBuffer,
	rhi.BufferUsageVertex:   StateVertexAndConstantBuffer,
	rhi.BufferUsageUniform:  StateVertexAndConstantBuffer,
	rhi.BufferUsageStorage:  StateUnorderedAccess,
	rhi.BufferUsageIndirect: StateIndirectArgument,
}

var textureUsageStates = map[rhi.TextureUsageBits]ResourceStates{
	rhi.TextureUsageCopySrc:                StateCopySource,
	rhi.TextureUsageCopyDst:                StateCopyDest,
	rhi.TextureUsageTextureBinding:         StateShaderResource,
	rhi.TextureUsageStorageBinding:         StateUnorderedAccess,
	rhi.TextureUsageRenderAttachment:       StateRenderTarget,
	rhi.TextureUsageDepthStencilAttachment: StateDepthWrite | StateDepthRead,
}

// BufferResourceStates returns every state a buffer with usage may be
// in. Map bits select the heap instead; see BufferHeap.
func BufferResourceStates(usage rhi.BufferUsageFlags) ResourceStates {
	var out ResourceStates
	for _, b := range usage.Bits() {
		out |= bufferUsageStates[b]
	}
	return out
}

// TextureResourceStates returns every state a texture with usage may be in.
func TextureResourceStates(usage rhi.TextureUsageFlags) ResourceStates {
	var out ResourceStates
	for _, b := range usage.Bits() {
		out |= textureUsageStates[b]
	}
	return out
}

// BufferHeap returns the heap a buffer with usage is placed in and the
// state it is created in. Upload heaps must start in GenericRead and
// readback heaps in CopyDest.
func BufferHeap(usage rhi.BufferUsageFlags) (HeapType, ResourceStates) {
	switch {
	case usage.Has(rhi.BufferUsageMapWrite):
		return HeapTypeUpload, StateGenericRead
	case usage.Has(rhi.BufferUsageMapRead):
		return HeapTypeReadback, StateCopyDest
	default:
		return HeapTypeDefault, BufferResourceStates(usage)
	}
}

var textureStates = [rhi.TextureStateCount]ResourceStates{
	rhi.TextureStateUndefined:            StateCommon,
	rhi.TextureStateCopySrc:              StateCopySource,
	rhi.TextureStateCopyDst:              StateCopyDest,
	rhi.TextureStateShaderReadOnly:       StateShaderResource,
	rhi.TextureStateRenderTarget:         StateRenderTarget,
	rhi.TextureStateStorage:              StateUnorderedAccess,
	rhi.TextureStateDepthStencilReadonly: StateDepthRead,
	rhi.TextureStateDepthStencilWrite:    StateDepthWrite,
	rhi.TextureStatePresent:              StatePresent,
}

var bufferStates = [rhi.BufferStateCount]ResourceStates{
	rhi.BufferStateUndefined:      StateCommon,
	rhi.BufferStateStaging:        StateGenericRead,
	rhi.BufferStateCopySrc:        StateCopySource,
	rhi.BufferStateCopyDst:        StateCopyDest,
	rhi.BufferStateShaderReadOnly: StateShaderResource,
	rhi.BufferStateStorage:        StateUnorderedAccess,
	rhi.BufferStateVertex:         StateVertexAndConstantBuffer,
	rhi.BufferStateIndex:          StateIndexBuffer,
	rhi.BufferStateUniform:        StateVertexAndConstantBuffer,
	rhi.BufferStateIndirect:       StateIndirectArgument,
}

// TextureStateOf returns the resource state of s.
func TextureStateOf(s rhi.TextureState) (ResourceStates, error) {
	if s >= rhi.TextureStateCount {
		return 0, rhi.InvalidArgument("dx12.TextureStateOf", "invalid texture state %d", s)
	}
	return textureStates[s], nil
}

// BufferStateOf returns the resource state of s.
func BufferStateOf(s rhi.BufferState) (ResourceStates, error) {
	if s >= rhi.BufferStateCount {
		return 0, rhi.InvalidArgument("dx12.BufferStateOf", "invalid buffer state %d", s)
	}
	return bufferStates[s], nil
}

// Transition is one D3D12_RESOURCE_TRANSITION_BARRIER.
type Transition struct {
	Subresource uint32
	Before      ResourceStates
	After       ResourceStates
}

// Barrier is the translation of one rhi.Barrier: zero or more transitions
// followed by an optional UAV barrier.
type Barrier struct {
	Transitions []Transition
	UAV         bool
}

// SubresourceIndex is D3D12CalcSubresource.
func SubresourceIndex(mip, layer, plane, mips, layers uint32) uint32 {
	return mip + layer*mips + plane*mips*layers
}

// translateBarrier expects the subresource range already resolved against
// the texture. Transitions between identical states are dropped; a
// Storage to Storage transition becomes a UAV barrier.
func translateBarrier(b *rhi.Barrier) (any, error) {
	switch b.Type {
	case rhi.ResourceTypeBuffer:
		before, err := BufferStateOf(b.Buffer.Before)
		if err != nil {
			return nil, err
		}
		after, err := BufferStateOf(b.Buffer.After)
		if err != nil {
			return nil, err
		}
		out := Barrier{UAV: b.Buffer.Before == rhi.BufferStateStorage && b.Buffer.After == rhi.BufferStateStorage}
		if before != after {
			out.Transitions = []Transition{{Subresource: AllSubresources, Before: before, After: after}}
		}
		return out, nil

	case rhi.ResourceTypeTexture:
		return translateTextureBarrier(&b.Texture)
	}
	return nil, rhi.InvalidArgument("dx12.TranslateBarrier", "invalid barrier resource type %d", b.Type)
}

func translateTextureBarrier(t *rhi.TextureTransitionBase) (Barrier, error) {
	before, err := TextureStateOf(t.Before)
	if err != nil {
		return Barrier{}, err
	}
	after, err := TextureStateOf(t.After)
	if err != nil {
		return Barrier{}, err
	}
	out := Barrier{UAV: t.Before == rhi.TextureStateStorage && t.After == rhi.TextureStateStorage}
	if before == after {
		return out, nil
	}

	info := t.Texture.GetCreateInfo()
	mips, layers := info.MipLevels, info.Extent.DepthOrArrayLayers
	if info.Dimension == rhi.TextureDimension3D {
		layers = 1
	}
	planes := planeCount(info.Format)
	firstPlane, lastPlane := uint32(0), planes-1
	switch t.Aspect {
	case rhi.TextureAspectDepth:
		lastPlane = 0
	case rhi.TextureAspectStencil:
		firstPlane = 1
	}

	whole := t.BaseMipLevel == 0 && t.MipLevelNum == mips &&
		t.BaseArrayLayer == 0 && t.ArrayLayerNum == layers &&
		firstPlane == 0 && lastPlane == planes-1
	if whole {
		out.Transitions = []Transition{{Subresource: AllSubresources, Before: before, After: after}}
		return out, nil
	}
	for plane := firstPlane; plane <= lastPlane; plane++ {
		for layer := t.BaseArrayLayer; layer < t.BaseArrayLayer+t.ArrayLayerNum; layer++ {
			for mip := t.BaseMipLevel; mip < t.BaseMipLevel+t.MipLevelNum; mip++ {
				out.Transitions = append(out.Transitions, Transition{
					Subresource: SubresourceIndex(mip, layer, plane, mips, layers),
					Before:      before,
					After:       after,
				})
			}
		}
	}
	return out, nil
}
