package rhi

// ResourceType tags the resource a Barrier transitions.
type ResourceType uint8

const (
	ResourceTypeBuffer ResourceType = iota
	ResourceTypeTexture
)

// BufferTransitionBase describes a buffer state transition.
type BufferTransitionBase struct {
	Buffer Buffer
	Before BufferState
	After  BufferState
}

// TextureTransitionBase describes a texture state transition over a
// subresource range. MipLevelNum and ArrayLayerNum of zero cover the rest
// of the texture.
type TextureTransitionBase struct {
	Texture        Texture
	Before         TextureState
	After          TextureState
	Aspect         TextureAspect
	BaseMipLevel   uint32
	MipLevelNum    uint32
	BaseArrayLayer uint32
	ArrayLayerNum  uint32
}

// Barrier is one explicit resource state transition. The RHI does not
// track resource state; callers record every transition they need.
type Barrier struct {
	Type    ResourceType
	Buffer  BufferTransitionBase
	Texture TextureTransitionBase
}

// TransitionBuffer returns a barrier moving buffer from before to after.
func TransitionBuffer(buffer Buffer, before, after BufferState) Barrier {
	return Barrier{
		Type:   ResourceTypeBuffer,
		Buffer: BufferTransitionBase{Buffer: buffer, Before: before, After: after},
	}
}

// TransitionTexture returns a barrier moving every subresource of texture
// from before to after.
func TransitionTexture(texture Texture, before, after TextureState) Barrier {
	return Barrier{
		Type: ResourceTypeTexture,
		Texture: TextureTransitionBase{
			Texture: texture,
			Before:  before,
			After:   after,
			Aspect:  aspectForTexture(texture),
		},
	}
}

// TransitionTextureRange is TransitionTexture over a subresource range.
func TransitionTextureRange(texture Texture, before, after TextureState, aspect TextureAspect,
	baseMip, mipNum, baseLayer, layerNum uint32) Barrier {
	return Barrier{
		Type: ResourceTypeTexture,
		Texture: TextureTransitionBase{
			Texture:        texture,
			Before:         before,
			After:          after,
			Aspect:         aspect,
			BaseMipLevel:   baseMip,
			MipLevelNum:    mipNum,
			BaseArrayLayer: baseLayer,
			ArrayLayerNum:  layerNum,
		},
	}
}

func aspectForTexture(texture Texture) TextureAspect {
	if texture == nil {
		return TextureAspectColor
	}
	f := texture.GetCreateInfo().Format
	switch {
	case f.HasStencil():
		return TextureAspectDepthStencil
	case f.IsDepthStencil():
		return TextureAspectDepth
	default:
		return TextureAspectColor
	}
}
