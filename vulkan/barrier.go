package vulkan

import (
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/rhi"
)

// ImageState is the synchronization scope of one TextureState.
type ImageState struct {
	Layout vk.ImageLayout
	Access vk.AccessFlags
	Stage  vk.PipelineStageFlags
}

// BufferAccess is the synchronization scope of one BufferState.
type BufferAccess struct {
	Access vk.AccessFlags
	Stage  vk.PipelineStageFlags
}

const (
	shaderStages = vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit |
		vk.PipelineStageFragmentShaderBit | vk.PipelineStageComputeShaderBit)
	depthTestStages = vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
)

var imageStates = [rhi.TextureStateCount]ImageState{
	rhi.TextureStateUndefined: {
		Layout: vk.ImageLayoutUndefined,
		Stage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
	},
	rhi.TextureStateCopySrc: {
		Layout: vk.ImageLayoutTransferSrcOptimal,
		Access: vk.AccessFlags(vk.AccessTransferReadBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	rhi.TextureStateCopyDst: {
		Layout: vk.ImageLayoutTransferDstOptimal,
		Access: vk.AccessFlags(vk.AccessTransferWriteBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	rhi.TextureStateShaderReadOnly: {
		Layout: vk.ImageLayoutShaderReadOnlyOptimal,
		Access: vk.AccessFlags(vk.AccessShaderReadBit),
		Stage:  shaderStages,
	},
	rhi.TextureStateRenderTarget: {
		Layout: vk.ImageLayoutColorAttachmentOptimal,
		Access: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
	},
	rhi.TextureStateStorage: {
		Layout: vk.ImageLayoutGeneral,
		Access: vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
		Stage:  shaderStages,
	},
	rhi.TextureStateDepthStencilReadonly: {
		Layout: vk.ImageLayoutDepthStencilReadOnlyOptimal,
		Access: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit),
		Stage:  depthTestStages,
	},
	rhi.TextureStateDepthStencilWrite: {
		Layout: vk.ImageLayoutDepthStencilAttachmentOptimal,
		Access: vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		Stage:  depthTestStages,
	},
	rhi.TextureStatePresent: {
		Layout: vk.ImageLayoutPresentSrcKhr,
		Stage:  vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit),
	},
}

var bufferStates = [rhi.BufferStateCount]BufferAccess{
	rhi.BufferStateUndefined: {Stage: vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)},
	rhi.BufferStateStaging: {
		Access: vk.AccessFlags(vk.AccessHostReadBit | vk.AccessHostWriteBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageHostBit),
	},
	rhi.BufferStateCopySrc: {
		Access: vk.AccessFlags(vk.AccessTransferReadBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	rhi.BufferStateCopyDst: {
		Access: vk.AccessFlags(vk.AccessTransferWriteBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
	},
	rhi.BufferStateShaderReadOnly: {Access: vk.AccessFlags(vk.AccessShaderReadBit), Stage: shaderStages},
	rhi.BufferStateStorage: {
		Access: vk.AccessFlags(vk.AccessShaderReadBit | vk.AccessShaderWriteBit),
		Stage:  shaderStages,
	},
	rhi.BufferStateVertex: {
		Access: vk.AccessFlags(vk.AccessVertexAttributeReadBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
	},
	rhi.BufferStateIndex: {
		Access: vk.AccessFlags(vk.AccessIndexReadBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageVertexInputBit),
	},
	rhi.BufferStateUniform: {Access: vk.AccessFlags(vk.AccessUniformReadBit), Stage: shaderStages},
	rhi.BufferStateIndirect: {
		Access: vk.AccessFlags(vk.AccessIndirectCommandReadBit),
		Stage:  vk.PipelineStageFlags(vk.PipelineStageDrawIndirectBit),
	},
}

// TextureStateScope returns the layout, access and stage of s.
func TextureStateScope(s rhi.TextureState) (ImageState, error) {
	if s >= rhi.TextureStateCount {
		return ImageState{}, rhi.InvalidArgument("vulkan.TextureStateScope", "invalid texture state %d", s)
	}
	return imageStates[s], nil
}

// BufferStateScope returns the access and stage of s.
func BufferStateScope(s rhi.BufferState) (BufferAccess, error) {
	if s >= rhi.BufferStateCount {
		return BufferAccess{}, rhi.InvalidArgument("vulkan.BufferStateScope", "invalid buffer state %d", s)
	}
	return bufferStates[s], nil
}

// SubresourceRange is a VkImageSubresourceRange.
type SubresourceRange struct {
	AspectMask     vk.ImageAspectFlags
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// ImageBarrier is a translated texture transition.
type ImageBarrier struct {
	Src, Dst ImageState
	Range    SubresourceRange
}

// BufferBarrier is a translated buffer transition over the whole buffer.
type BufferBarrier struct {
	Src, Dst BufferAccess
}

// translateBarrier converts b into an ImageBarrier or BufferBarrier.
func translateBarrier(b *rhi.Barrier) (any, error) {
	const op = "vulkan.TranslateBarrier"
	switch b.Type {
	case rhi.ResourceTypeBuffer:
		src, err := BufferStateScope(b.Buffer.Before)
		if err != nil {
			return nil, err
		}
		dst, err := BufferStateScope(b.Buffer.After)
		if err != nil {
			return nil, err
		}
		return BufferBarrier{Src: src, Dst: dst}, nil

	case rhi.ResourceTypeTexture:
		t := &b.Texture
		src, err := TextureStateScope(t.Before)
		if err != nil {
			return nil, err
		}
		dst, err := TextureStateScope(t.After)
		if err != nil {
			return nil, err
		}
		if dst.Layout == vk.ImageLayoutUndefined {
			return nil, rhi.InvalidArgument(op, "cannot transition a texture to Undefined")
		}
		return ImageBarrier{
			Src: src,
			Dst: dst,
			Range: SubresourceRange{
				AspectMask:     AspectFlags(t.Aspect),
				BaseMipLevel:   t.BaseMipLevel,
				LevelCount:     t.MipLevelNum,
				BaseArrayLayer: t.BaseArrayLayer,
				LayerCount:     t.ArrayLayerNum,
			},
		}, nil
	}
	return nil, rhi.InvalidArgument(op, "invalid barrier resource type %d", b.Type)
}
