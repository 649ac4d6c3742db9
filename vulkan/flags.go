package vulkan

import (
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/rhi"
)

// Per-bit tables. Bits without a native counterpart map to zero.

var bufferUsageBits = map[rhi.BufferUsageBits]vk.BufferUsageFlags{
	rhi.BufferUsageCopySrc:  vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
	rhi.BufferUsageCopyDst:  vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
	rhi.BufferUsageIndex:    vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit),
	rhi.BufferUsageVertex:   vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
	rhi.BufferUsageUniform:  vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
	rhi.BufferUsageStorage:  vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit),
	rhi.BufferUsageIndirect: vk.BufferUsageFlags(vk.BufferUsageIndirectBufferBit),
}

var imageUsageBits = map[rhi.TextureUsageBits]vk.ImageUsageFlags{
	rhi.TextureUsageCopySrc:                vk.ImageUsageFlags(vk.ImageUsageTransferSrcBit),
	rhi.TextureUsageCopyDst:                vk.ImageUsageFlags(vk.ImageUsageTransferDstBit),
	rhi.TextureUsageTextureBinding:         vk.ImageUsageFlags(vk.ImageUsageSampledBit),
	rhi.TextureUsageStorageBinding:         vk.ImageUsageFlags(vk.ImageUsageStorageBit),
	rhi.TextureUsageRenderAttachment:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	rhi.TextureUsageDepthStencilAttachment: vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
}

var shaderStageBits = map[rhi.ShaderStageBits]vk.ShaderStageFlags{
	rhi.ShaderStageVertex:  vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	rhi.ShaderStagePixel:   vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	rhi.ShaderStageCompute: vk.ShaderStageFlags(vk.ShaderStageComputeBit),
}

// BufferUsageFlags returns the VkBufferUsageFlags of usage. Map bits
// select memory properties instead; see MemoryPropertyFlags.
func BufferUsageFlags(usage rhi.BufferUsageFlags) vk.BufferUsageFlags {
	var out vk.BufferUsageFlags
	for _, b := range usage.Bits() {
		out |= bufferUsageBits[b]
	}
	return out
}

// MemoryPropertyFlags returns the memory properties a buffer with usage
// is allocated from. Readback memory is cached; other mapped memory is
// coherent write-combined; everything else is device local.
func MemoryPropertyFlags(usage rhi.BufferUsageFlags) vk.MemoryPropertyFlags {
	var out vk.MemoryPropertyFlags
	if usage.Has(rhi.BufferUsageMapRead) {
		out |= vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit | vk.MemoryPropertyHostCachedBit)
	}
	if usage.Has(rhi.BufferUsageMapWrite) {
		out |= vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	}
	if out == 0 {
		out = vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)
	}
	return out
}

// ImageUsageFlags returns the VkImageUsageFlags of usage.
func ImageUsageFlags(usage rhi.TextureUsageFlags) vk.ImageUsageFlags {
	var out vk.ImageUsageFlags
	for _, b := range usage.Bits() {
		out |= imageUsageBits[b]
	}
	return out
}

// ShaderStageFlags returns the VkShaderStageFlags of stages.
func ShaderStageFlags(stages rhi.ShaderStageFlags) vk.ShaderStageFlags {
	var out vk.ShaderStageFlags
	for _, b := range stages.Bits() {
		out |= shaderStageBits[b]
	}
	return out
}

// DescriptorType returns the descriptor type backing t.
func DescriptorType(t rhi.BindingType) (vk.DescriptorType, error) {
	switch t {
	case rhi.BindingTypeUniformBuffer:
		return vk.DescriptorTypeUniformBuffer, nil
	case rhi.BindingTypeStorageBuffer:
		return vk.DescriptorTypeStorageBuffer, nil
	case rhi.BindingTypeSampler:
		return vk.DescriptorTypeSampler, nil
	case rhi.BindingTypeTexture:
		return vk.DescriptorTypeSampledImage, nil
	case rhi.BindingTypeStorageTexture:
		return vk.DescriptorTypeStorageImage, nil
	}
	return 0, rhi.InvalidArgument("vulkan.DescriptorType", "invalid binding type %d", t)
}

// PresentMode returns the VkPresentModeKHR of m.
func PresentMode(m rhi.PresentMode) (vk.PresentModeKHR, error) {
	switch m {
	case rhi.PresentModeImmediately:
		return vk.PresentModeImmediateKhr, nil
	case rhi.PresentModeVsync:
		return vk.PresentModeFifoKhr, nil
	}
	return 0, rhi.InvalidArgument("vulkan.PresentMode", "invalid present mode %d", m)
}
