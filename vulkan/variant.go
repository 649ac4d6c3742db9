package vulkan

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

// Variant adapts the shared RHI implementation to Vulkan semantics.
//
// Vulkan has no shader-visible descriptor heaps, so bind groups are bound
// directly, and an acquired image only becomes available once its
// previous presentation has completed.
type Variant struct{}

var _ core.Variant = Variant{}

// Type implements core.Variant.
func (Variant) Type() rhi.RHIType { return rhi.RHITypeVulkan }

// Backend implements core.Variant.
func (Variant) Backend() gputypes.Backend { return gputypes.BackendVulkan }

// QueueCapacity implements core.Variant. Every family fronts the single
// HAL queue.
func (Variant) QueueCapacity(t rhi.QueueType) uint32 {
	if t < rhi.QueueTypeCount {
		return 1
	}
	return 0
}

// SupportsFormat implements core.Variant.
func (Variant) SupportsFormat(f rhi.PixelFormat) bool {
	_, err := Format(f)
	return err == nil
}

// ShaderSource implements core.Variant.
func (Variant) ShaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error) {
	return shaderSource(info)
}

// ProjectBuffer implements core.Variant.
func (Variant) ProjectBuffer(info *rhi.BufferCreateInfo) (any, error) {
	access, err := BufferStateScope(info.InitialState)
	if err != nil {
		return nil, err
	}
	return BufferDesc{
		Usage:  BufferUsageFlags(info.Usage),
		Memory: MemoryPropertyFlags(info.Usage),
		Access: access,
	}, nil
}

// ProjectTexture implements core.Variant.
func (Variant) ProjectTexture(info *rhi.TextureCreateInfo) (any, error) {
	format, err := Format(info.Format)
	if err != nil {
		return nil, err
	}
	state, err := TextureStateScope(info.InitialState)
	if err != nil {
		return nil, err
	}
	return ImageDesc{
		Format: format,
		Usage:  ImageUsageFlags(info.Usage),
		Aspect: formatAspects(info.Format),
		State:  state,
	}, nil
}

// ProjectBindGroupLayout implements core.Variant.
func (Variant) ProjectBindGroupLayout(info *rhi.BindGroupLayoutCreateInfo) (any, error) {
	return projectSetLayout(info)
}

// ProjectPipelineLayout implements core.Variant.
func (Variant) ProjectPipelineLayout(groups []*core.BindGroupLayout, constants []rhi.PipelineConstantLayout) (any, error) {
	return projectPipelineLayout(groups, constants)
}

// TranslateBarrier implements core.Variant.
func (Variant) TranslateBarrier(b *rhi.Barrier) (any, error) { return translateBarrier(b) }

// UsesScratchDescriptors implements core.Variant.
func (Variant) UsesScratchDescriptors() bool { return false }

// AcquireSignalsEagerly implements core.Variant.
func (Variant) AcquireSignalsEagerly() bool { return false }

// ResultCode implements core.Variant.
func (Variant) ResultCode(err error) int64 { return int64(ResultCode(err)) }
