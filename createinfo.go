package rhi

import "time"

// QueueRequestInfo asks for Num queues of Type.
type QueueRequestInfo struct {
	Type QueueType
	Num  uint32
}

// ScratchDescriptorCapacity sizes the per-command-buffer shader-visible
// descriptor arenas used by heap-based backends.
type ScratchDescriptorCapacity struct {
	CbvSrvUav uint32
	Sampler   uint32
}

// Default scratch arena capacities.
const (
	DefaultScratchCbvSrvUavCapacity = 4096
	DefaultScratchSamplerCapacity   = 256
)

// DeviceCreateInfo describes a device request.
type DeviceCreateInfo struct {
	QueueRequests []QueueRequestInfo

	// ScratchDescriptors is fixed for the lifetime of the device.
	// Zero fields take the defaults.
	ScratchDescriptors ScratchDescriptorCapacity
}

// BufferCreateInfo describes a buffer.
type BufferCreateInfo struct {
	Size         uint64
	Usage        BufferUsageFlags
	InitialState BufferState
	DebugName    string
}

// TextureCreateInfo describes a texture.
type TextureCreateInfo struct {
	Dimension    TextureDimension
	Extent       Extent3D
	Format       PixelFormat
	Usage        TextureUsageFlags
	MipLevels    uint32
	Samples      uint32
	InitialState TextureState
	DebugName    string
}

// BufferViewCreateInfo describes a typed range of a buffer.
type BufferViewCreateInfo struct {
	Type   BufferViewType
	Offset uint64
	Size   uint64

	// Stride is the vertex stride for BufferViewTypeVertex.
	Stride uint32

	// IndexFormat applies to BufferViewTypeIndex.
	IndexFormat IndexFormat
}

// TextureViewCreateInfo describes a subresource range of a texture.
type TextureViewCreateInfo struct {
	Dimension      TextureViewDimension
	Aspect         TextureAspect
	Type           TextureViewType
	BaseMipLevel   uint32
	MipLevelNum    uint32
	BaseArrayLayer uint32
	ArrayLayerNum  uint32
}

// SamplerCreateInfo describes a sampler.
type SamplerCreateInfo struct {
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipFilter    FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32

	// ComparisonFunc is used when HasComparison is set.
	HasComparison  bool
	ComparisonFunc CompareFunc
	MaxAnisotropy  uint16
	DebugName      string
}

// ShaderModuleCreateInfo wraps a precompiled shader blob.
type ShaderModuleCreateInfo struct {
	ByteCode     []byte
	ByteCodeType ByteCodeType
	DebugName    string
}

// ResourceBinding is the backend-neutral binding declaration: a resource
// kind and a numeric slot.
type ResourceBinding struct {
	Type BindingType
	Slot uint32
}

// BindGroupLayoutEntry declares one slot of a bind group layout.
type BindGroupLayoutEntry struct {
	Binding          ResourceBinding
	ShaderVisibility ShaderStageFlags

	// StorageTextureFormat is the texel format of a StorageTexture slot.
	// Undefined selects RGBA8Unorm.
	StorageTextureFormat PixelFormat

	// ViewDimension is the view shape a Texture or StorageTexture slot
	// accepts. Undefined selects 2D.
	ViewDimension TextureViewDimension

	// SampleType is the component type of a Texture slot.
	SampleType TextureSampleType
}

// BindGroupLayoutCreateInfo describes a bind group layout. LayoutIndex is
// the group index the layout is bound at (descriptor set index or root
// descriptor table).
type BindGroupLayoutCreateInfo struct {
	LayoutIndex uint32
	Entries     []BindGroupLayoutEntry
	DebugName   string
}

// BindGroupEntry binds one resource to a slot. Exactly one of Buffer,
// Texture and Sampler must be set, matching Binding.Type.
type BindGroupEntry struct {
	Binding ResourceBinding
	Buffer  BufferView
	Texture TextureView
	Sampler Sampler
}

// BindGroupCreateInfo describes a bind group.
type BindGroupCreateInfo struct {
	Layout    BindGroupLayout
	Entries   []BindGroupEntry
	DebugName string
}

// PipelineConstantLayout declares a push-constant range.
type PipelineConstantLayout struct {
	StageFlags ShaderStageFlags
	Offset     uint32
	Size       uint32
}

// PipelineLayoutCreateInfo describes a pipeline layout.
type PipelineLayoutCreateInfo struct {
	BindGroupLayouts        []BindGroupLayout
	PipelineConstantLayouts []PipelineConstantLayout
	DebugName               string
}

// VertexAttribute describes one attribute within a vertex buffer.
type VertexAttribute struct {
	Format   VertexFormat
	Offset   uint64
	Location uint32
}

// VertexBufferLayout describes one vertex buffer slot.
type VertexBufferLayout struct {
	Stride     uint64
	StepMode   VertexStepMode
	Attributes []VertexAttribute
}

// VertexState describes vertex input.
type VertexState struct {
	BufferLayouts []VertexBufferLayout
}

// PrimitiveState describes primitive assembly and rasterization.
type PrimitiveState struct {
	Topology         PrimitiveTopology
	StripIndexFormat IndexFormat
	FrontFace        FrontFace
	CullMode         CullMode
	FillMode         FillMode
	UnclippedDepth   bool
}

// StencilFaceState describes stencil behaviour for one face.
type StencilFaceState struct {
	CompareFunc CompareFunc
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
}

// DepthStencilState describes the depth-stencil attachment usage.
type DepthStencilState struct {
	Format           PixelFormat
	DepthEnable      bool
	DepthWrite       bool
	DepthCompareFunc CompareFunc
	StencilEnable    bool
	StencilFront     StencilFaceState
	StencilBack      StencilFaceState
	StencilReadMask  uint32
	StencilWriteMask uint32
	DepthBias        int32
	DepthBiasSlope   float32
	DepthBiasClamp   float32
}

// MultiSampleState describes multisampling.
type MultiSampleState struct {
	Count           uint32
	Mask            uint32
	AlphaToCoverage bool
}

// BlendComponent is one half of a blend equation.
type BlendComponent struct {
	SrcFactor BlendFactor
	DstFactor BlendFactor
	Op        BlendOp
}

// ColorTargetState describes one color attachment of a pipeline.
type ColorTargetState struct {
	Format      PixelFormat
	BlendEnable bool
	Color       BlendComponent
	Alpha       BlendComponent
	WriteFlags  ColorWriteFlags
}

// FragmentState describes fragment output.
type FragmentState struct {
	ColorTargets []ColorTargetState
}

// GraphicsPipelineCreateInfo describes a graphics pipeline.
type GraphicsPipelineCreateInfo struct {
	Layout            PipelineLayout
	VertexShader      ShaderModule
	PixelShader       ShaderModule
	VertexEntryPoint  string
	PixelEntryPoint   string
	VertexState       VertexState
	PrimitiveState    PrimitiveState
	DepthStencilState *DepthStencilState
	MultiSampleState  MultiSampleState
	FragmentState     FragmentState
	DebugName         string
}

// ComputePipelineCreateInfo describes a compute pipeline.
type ComputePipelineCreateInfo struct {
	Layout        PipelineLayout
	ComputeShader ShaderModule
	EntryPoint    string
	DebugName     string
}

// SurfaceCreateInfo carries the platform window handles.
type SurfaceCreateInfo struct {
	Window  uintptr
	Display uintptr
}

// SwapChainCreateInfo describes a swap chain.
type SwapChainCreateInfo struct {
	PresentQueue Queue
	Surface      Surface
	TextureNum   uint32
	Format       PixelFormat
	Extent       Extent3D
	PresentMode  PresentMode
}

// MaxSwapChainTextures bounds SwapChainCreateInfo.TextureNum.
const MaxSwapChainTextures = 8

// QueueSubmitInfo lists the synchronization of one submission.
type QueueSubmitInfo struct {
	WaitSemaphores   []Semaphore
	SignalSemaphores []Semaphore
	SignalFence      Fence
}

// ColorAttachment describes one color target of a graphics pass.
type ColorAttachment struct {
	View       TextureView
	Resolve    TextureView
	LoadOp     LoadOp
	StoreOp    StoreOp
	ClearValue Color
}

// DepthStencilAttachment describes the depth-stencil target of a
// graphics pass.
type DepthStencilAttachment struct {
	View              TextureView
	DepthLoadOp       LoadOp
	DepthStoreOp      StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     LoadOp
	StencilStoreOp    StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

// GraphicsPassBeginInfo describes a graphics pass.
type GraphicsPassBeginInfo struct {
	ColorAttachments       []ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
}

// BufferCopyRegion describes a buffer to buffer copy.
type BufferCopyRegion struct {
	SrcOffset uint64
	DstOffset uint64
	Size      uint64
}

// TextureSubResource selects one mip of a texture for copies.
type TextureSubResource struct {
	MipLevel       uint32
	BaseArrayLayer uint32
	ArrayLayerNum  uint32
	Aspect         TextureAspect
}

// BufferTextureCopyRegion describes a copy between a buffer and a texture.
type BufferTextureCopyRegion struct {
	BufferOffset  uint64
	BytesPerRow   uint32
	RowsPerImage  uint32
	TextureSubRes TextureSubResource
	TextureOrigin Origin3D
	CopyRegion    Extent3D
}

// TextureCopyRegion describes a texture to texture copy.
type TextureCopyRegion struct {
	SrcSubRes  TextureSubResource
	SrcOrigin  Origin3D
	DstSubRes  TextureSubResource
	DstOrigin  Origin3D
	CopyRegion Extent3D
}

// FenceWaitForever is the timeout that never expires.
const FenceWaitForever time.Duration = -1
