package rhi

// Extent3D is a texture or copy size in texels.
type Extent3D struct {
	Width              uint32
	Height             uint32
	DepthOrArrayLayers uint32
}

// Origin3D is a texel offset.
type Origin3D struct {
	X, Y, Z uint32
}

// Color is a linear RGBA clear or blend value.
type Color struct {
	R, G, B, A float64
}

// Viewport is a pass viewport in framebuffer coordinates.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// ScissorRect is a pass scissor rectangle.
type ScissorRect struct {
	X, Y          uint32
	Width, Height uint32
}

// GpuProperty describes a physical adapter.
type GpuProperty struct {
	Name     string
	Vendor   string
	VendorID uint32
	DeviceID uint32
	Type     GpuType
	Driver   string
}

// QueueFamily is the capacity of one queue class on an adapter.
type QueueFamily struct {
	Type  QueueType
	Count uint32
}

// Limits are the adapter limits relevant to RHI validation.
type Limits struct {
	MaxTextureDimension1D           uint32
	MaxTextureDimension2D           uint32
	MaxTextureDimension3D           uint32
	MaxTextureArrayLayers           uint32
	MaxBindGroups                   uint32
	MaxBindingsPerBindGroup         uint32
	MaxBufferSize                   uint64
	MaxUniformBufferBindingSize     uint64
	MaxStorageBufferBindingSize     uint64
	MinUniformBufferOffsetAlignment uint32
	MinStorageBufferOffsetAlignment uint32
	MaxVertexBuffers                uint32
	MaxVertexAttributes             uint32
	MaxColorAttachments             uint32
}
