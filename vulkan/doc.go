// Package vulkan registers the Vulkan variant of the RHI.
//
// Importing the package makes rhi.RHITypeVulkan available to
// rhi.CreateInstance:
//
//	import _ "github.com/gogpu/rhi/vulkan"
//
// The variant accepts SPIR-V shader modules only. Bind group layouts
// project onto descriptor set layouts with one binding per slot, and
// barriers translate into image layouts with access and stage masks; the
// projections are exposed through BufferInfo, ImageInfo, SetLayoutOf,
// PipelineLayoutOf and Barriers.
//
// Unlike DirectX12, AcquireBackTexture does not signal its semaphore
// until the image's previous presentation has completed.
package vulkan
