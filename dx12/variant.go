package dx12

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

// rootSignatureCacheSize bounds the memoized root signatures per instance.
const rootSignatureCacheSize = 256

// Variant adapts the shared RHI implementation to DirectX 12 semantics.
//
// Bind groups hold persistent descriptors that are copied into a
// per-command-buffer shader-visible scratch heap when bound, and an
// acquired back buffer is reported ready immediately.
type Variant struct {
	roots *roots
}

var _ core.Variant = (*Variant)(nil)

// NewVariant returns a variant with an empty root signature cache.
func NewVariant() *Variant {
	return &Variant{roots: newRoots(rootSignatureCacheSize)}
}

// Type implements core.Variant.
func (*Variant) Type() rhi.RHIType { return rhi.RHITypeDirectX12 }

// Backend implements core.Variant.
func (*Variant) Backend() gputypes.Backend { return gputypes.BackendDX12 }

// QueueCapacity implements core.Variant. Every family fronts the single
// HAL queue.
func (*Variant) QueueCapacity(t rhi.QueueType) uint32 {
	if t < rhi.QueueTypeCount {
		return 1
	}
	return 0
}

// SupportsFormat implements core.Variant.
func (*Variant) SupportsFormat(f rhi.PixelFormat) bool {
	_, err := Format(f)
	return err == nil
}

// ShaderSource implements core.Variant.
func (*Variant) ShaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error) {
	return shaderSource(info)
}

// ProjectBuffer implements core.Variant.
func (*Variant) ProjectBuffer(info *rhi.BufferCreateInfo) (any, error) {
	heap, initial := BufferHeap(info.Usage)
	if heap == HeapTypeDefault {
		s, err := BufferStateOf(info.InitialState)
		if err != nil {
			return nil, err
		}
		initial = s
	}
	return BufferDesc{
		Heap:         heap,
		InitialState: initial,
		States:       BufferResourceStates(info.Usage),
		Descriptors:  BufferDescriptors(info.Usage),
	}, nil
}

// ProjectTexture implements core.Variant.
func (*Variant) ProjectTexture(info *rhi.TextureCreateInfo) (any, error) {
	format, err := Format(info.Format)
	if err != nil {
		return nil, err
	}
	initial, err := TextureStateOf(info.InitialState)
	if err != nil {
		return nil, err
	}
	return TextureDesc{
		Format:       format,
		InitialState: initial,
		States:       TextureResourceStates(info.Usage),
		Descriptors:  TextureDescriptors(info.Usage),
	}, nil
}

// ProjectBindGroupLayout implements core.Variant.
func (*Variant) ProjectBindGroupLayout(info *rhi.BindGroupLayoutCreateInfo) (any, error) {
	return projectTableLayout(info)
}

// ProjectPipelineLayout implements core.Variant.
func (v *Variant) ProjectPipelineLayout(groups []*core.BindGroupLayout, constants []rhi.PipelineConstantLayout) (any, error) {
	return v.roots.project(groups, constants)
}

// TranslateBarrier implements core.Variant.
func (*Variant) TranslateBarrier(b *rhi.Barrier) (any, error) { return translateBarrier(b) }

// UsesScratchDescriptors implements core.Variant.
func (*Variant) UsesScratchDescriptors() bool { return true }

// AcquireSignalsEagerly implements core.Variant.
func (*Variant) AcquireSignalsEagerly() bool { return true }

// ResultCode implements core.Variant.
func (*Variant) ResultCode(err error) int64 { return ResultCode(err).Code() }

// RootSignatures returns the number of distinct root signatures built.
func (v *Variant) RootSignatures() int { return v.roots.cache.Len() }
