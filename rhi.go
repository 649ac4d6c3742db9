package rhi

import (
	"time"

	"github.com/gogpu/gpucontext"
)

// Instance is the process-wide connection to one backend. It outlives
// every other RHI object created through it.
type Instance interface {
	// RHIType reports the active backend variant.
	RHIType() RHIType

	// GetGpuNum returns the number of enumerated adapters.
	GetGpuNum() uint32

	// GetGpu returns adapter i.
	GetGpu(index uint32) (Gpu, error)

	// Gpus returns every enumerated adapter.
	Gpus() []Gpu

	// Destroy releases the backend connection.
	Destroy()
}

// Gpu is a physical adapter and its capability query surface.
type Gpu interface {
	Instance() Instance
	GetProperty() GpuProperty
	Limits() Limits

	// QueueFamilies reports the queue capacity per queue type.
	QueueFamilies() []QueueFamily

	// IsFormatSupported reports whether textures of format can be created
	// with usage.
	IsFormatSupported(format PixelFormat, usage TextureUsageFlags) bool

	// RequestDevice opens a device. It fails with UnsupportedFeature when
	// a requested queue count exceeds the family capacity.
	RequestDevice(info *DeviceCreateInfo) (Device, error)
}

// Device is the factory for every resource, binding, pipeline,
// synchronization and presentation object. Created objects are owned by
// the caller and must be destroyed before the Device.
//
// Device methods are safe for concurrent use.
type Device interface {
	Gpu() Gpu

	GetQueueNum(queueType QueueType) uint32
	GetQueue(queueType QueueType, index uint32) (Queue, error)

	CreateBuffer(info *BufferCreateInfo) (Buffer, error)
	CreateTexture(info *TextureCreateInfo) (Texture, error)
	CreateSampler(info *SamplerCreateInfo) (Sampler, error)
	CreateShaderModule(info *ShaderModuleCreateInfo) (ShaderModule, error)

	CreateBindGroupLayout(info *BindGroupLayoutCreateInfo) (BindGroupLayout, error)
	CreateBindGroup(info *BindGroupCreateInfo) (BindGroup, error)
	CreatePipelineLayout(info *PipelineLayoutCreateInfo) (PipelineLayout, error)
	CreateGraphicsPipeline(info *GraphicsPipelineCreateInfo) (GraphicsPipeline, error)
	CreateComputePipeline(info *ComputePipelineCreateInfo) (ComputePipeline, error)

	CreateCommandBuffer() (CommandBuffer, error)
	CreateFence(initialSignaled bool) (Fence, error)
	CreateSemaphore() (Semaphore, error)

	CreateSurface(info *SurfaceCreateInfo) (Surface, error)
	CheckSwapChainFormatSupport(surface Surface, format PixelFormat) bool
	CreateSwapChain(info *SwapChainCreateInfo) (SwapChain, error)

	// DeviceProvider exposes the execution-layer device to other gogpu
	// libraries.
	DeviceProvider() gpucontext.DeviceProvider

	// WaitIdle blocks until all submitted work has completed.
	WaitIdle() error

	Destroy()
}

// Queue submits command buffers. Submission on one queue is FIFO.
type Queue interface {
	Type() QueueType

	// Submit enqueues cmd and returns without waiting for the GPU.
	Submit(cmd CommandBuffer, info *QueueSubmitInfo) error

	// Flush signals fence once all previously submitted work completes.
	Flush(fence Fence) error
}

// Buffer is a linear GPU memory resource.
type Buffer interface {
	GetCreateInfo() BufferCreateInfo

	// Map returns CPU access to [offset, offset+length). The mode must match
	// the map mode fixed at creation. A zero length maps to the end.
	Map(mode MapMode, offset, length uint64) ([]byte, error)
	UnMap() error

	CreateBufferView(info *BufferViewCreateInfo) (BufferView, error)
	Destroy()
}

// Texture is an image GPU memory resource.
type Texture interface {
	GetCreateInfo() TextureCreateInfo
	CreateTextureView(info *TextureViewCreateInfo) (TextureView, error)
	Destroy()
}

// BufferView is a typed, non-owning range of a Buffer.
type BufferView interface {
	Buffer() Buffer
	GetCreateInfo() BufferViewCreateInfo
	Destroy()
}

// TextureView is a typed, non-owning subresource range of a Texture.
type TextureView interface {
	Texture() Texture
	GetCreateInfo() TextureViewCreateInfo
	Destroy()
}

// Sampler is an immutable sampling state object.
type Sampler interface {
	Destroy()
}

// ShaderModule is a loaded shader blob.
type ShaderModule interface {
	ByteCodeType() ByteCodeType
	Destroy()
}

// BindGroupLayout declares binding slots.
type BindGroupLayout interface {
	GetCreateInfo() BindGroupLayoutCreateInfo
	Destroy()
}

// BindGroup binds concrete resources to a layout's slots.
type BindGroup interface {
	Layout() BindGroupLayout
	Destroy()
}

// PipelineLayout is an ordered list of bind group layouts.
type PipelineLayout interface {
	BindGroupLayouts() []BindGroupLayout
	Destroy()
}

// GraphicsPipeline is an immutable compiled graphics state bundle.
type GraphicsPipeline interface {
	Layout() PipelineLayout
	Destroy()
}

// ComputePipeline is an immutable compiled compute state bundle.
type ComputePipeline interface {
	Layout() PipelineLayout
	Destroy()
}

// CommandBufferState is the recording state of a CommandBuffer.
type CommandBufferState uint8

const (
	CommandBufferStateInitial CommandBufferState = iota
	CommandBufferStateRecording
	CommandBufferStateInPass
	CommandBufferStateExecutable
	CommandBufferStatePending
)

func (s CommandBufferState) String() string {
	switch s {
	case CommandBufferStateInitial:
		return "Initial"
	case CommandBufferStateRecording:
		return "Recording"
	case CommandBufferStateInPass:
		return "InPass"
	case CommandBufferStateExecutable:
		return "Executable"
	case CommandBufferStatePending:
		return "Pending"
	}
	return "Unknown"
}

// CommandBuffer records GPU work. A CommandBuffer and its recorders are
// not safe for concurrent use.
//
// State machine:
//
//	Initial    -> Begin()        -> Recording
//	Recording  -> BeginXPass()   -> InPass
//	InPass     -> EndPass()      -> Recording
//	Recording  -> End()          -> Executable
//	Executable -> Queue.Submit() -> Pending
//	Pending    -> (completion)   -> Executable
//	Executable -> Reset()        -> Initial
type CommandBuffer interface {
	State() CommandBufferState
	Begin() (CommandRecorder, error)
	Reset() error
	Destroy()
}

// CommandRecorder records top-level commands between Begin and End.
type CommandRecorder interface {
	ResourceBarrier(barrier Barrier) error
	BeginCopyPass() (CopyPassCommandRecorder, error)
	BeginComputePass() (ComputePassCommandRecorder, error)
	BeginGraphicsPass(info *GraphicsPassBeginInfo) (GraphicsPassCommandRecorder, error)
	End() error
}

// CopyPassCommandRecorder records transfer commands.
type CopyPassCommandRecorder interface {
	ResourceBarrier(barrier Barrier) error
	CopyBufferToBuffer(src, dst Buffer, region *BufferCopyRegion) error
	CopyBufferToTexture(src Buffer, dst Texture, region *BufferTextureCopyRegion) error
	CopyTextureToBuffer(src Texture, dst Buffer, region *BufferTextureCopyRegion) error
	CopyTextureToTexture(src, dst Texture, region *TextureCopyRegion) error
	EndPass() error
}

// ComputePassCommandRecorder records dispatches.
type ComputePassCommandRecorder interface {
	SetPipeline(pipeline ComputePipeline) error
	SetBindGroup(layoutIndex uint32, group BindGroup) error
	Dispatch(groupCountX, groupCountY, groupCountZ uint32) error
	EndPass() error
}

// GraphicsPassCommandRecorder records draws.
type GraphicsPassCommandRecorder interface {
	SetPipeline(pipeline GraphicsPipeline) error
	SetBindGroup(layoutIndex uint32, group BindGroup) error
	SetVertexBuffer(slot uint32, view BufferView) error
	SetIndexBuffer(view BufferView) error
	SetViewport(x, y, width, height, minDepth, maxDepth float32) error
	SetScissor(x, y, width, height uint32) error
	SetPrimitiveTopology(topology PrimitiveTopology) error
	SetBlendConstant(color Color) error
	SetStencilReference(reference uint32) error
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) error
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) error
	EndPass() error
}

// Fence is a CPU-observable completion signal.
type Fence interface {
	IsSignaled() bool

	// Wait blocks until the fence is signaled.
	Wait() error

	// WaitTimeout blocks for at most timeout and reports whether the
	// fence was signaled. FenceWaitForever disables the timeout.
	WaitTimeout(timeout time.Duration) (bool, error)

	// Reset returns a signaled fence to the unsignaled state.
	Reset() error
	Destroy()
}

// Semaphore is a binary GPU-side ordering primitive.
type Semaphore interface {
	IsSignaled() bool
	Destroy()
}

// Surface is the presentation target bound to a platform window.
type Surface interface {
	Destroy()
}

// SwapChain is a ring of presentable textures owned by the swap chain.
type SwapChain interface {
	GetTextureNum() uint32
	GetTexture(index uint32) (Texture, error)

	// AcquireBackTexture returns the next presentable image index and
	// arranges for signal to be signaled once the image is available.
	AcquireBackTexture(signal Semaphore) (uint32, error)

	// Present queues the oldest acquired image for presentation after
	// wait is signaled.
	Present(wait Semaphore) error
	Destroy()
}
