package rhi

import (
	"fmt"
	"strings"
)

// RHIType selects a backend variant.
type RHIType uint8

const (
	RHITypeDirectX12 RHIType = iota
	RHITypeVulkan
	RHITypeMetal
	rhiTypeCount
)

var rhiTypeNames = [...]string{
	RHITypeDirectX12: "DirectX12",
	RHITypeVulkan:    "Vulkan",
	RHITypeMetal:     "Metal",
}

// String returns the backend name as accepted by ParseRHIType.
func (t RHIType) String() string {
	if t < rhiTypeCount {
		return rhiTypeNames[t]
	}
	return fmt.Sprintf("RHIType(%d)", t)
}

// ParseRHIType parses a backend name ("DirectX12", "Vulkan", "Metal").
// Matching is case-insensitive; "dx12" and "vk" are accepted as aliases.
func ParseRHIType(s string) (RHIType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "directx12", "dx12", "d3d12":
		return RHITypeDirectX12, nil
	case "vulkan", "vk":
		return RHITypeVulkan, nil
	case "metal", "mtl":
		return RHITypeMetal, nil
	}
	return 0, InvalidArgument("ParseRHIType", "unknown backend %q", s)
}

// PixelFormat is the neutral texel format vocabulary.
type PixelFormat uint8

const (
	PixelFormatUndefined PixelFormat = iota
	// 8-bit
	PixelFormatR8Unorm
	PixelFormatR8Snorm
	PixelFormatR8Uint
	PixelFormatR8Sint
	// 16-bit
	PixelFormatR16Uint
	PixelFormatR16Sint
	PixelFormatR16Float
	PixelFormatRG8Unorm
	PixelFormatRG8Snorm
	PixelFormatRG8Uint
	PixelFormatRG8Sint
	// 32-bit
	PixelFormatR32Uint
	PixelFormatR32Sint
	PixelFormatR32Float
	PixelFormatRG16Uint
	PixelFormatRG16Sint
	PixelFormatRG16Float
	PixelFormatRGBA8Unorm
	PixelFormatRGBA8UnormSrgb
	PixelFormatRGBA8Snorm
	PixelFormatRGBA8Uint
	PixelFormatRGBA8Sint
	PixelFormatBGRA8Unorm
	PixelFormatBGRA8UnormSrgb
	PixelFormatRGB10A2Unorm
	PixelFormatRG11B10Float
	PixelFormatRGB9E5Float
	// 64-bit
	PixelFormatRG32Uint
	PixelFormatRG32Sint
	PixelFormatRG32Float
	PixelFormatRGBA16Uint
	PixelFormatRGBA16Sint
	PixelFormatRGBA16Float
	// 128-bit
	PixelFormatRGBA32Uint
	PixelFormatRGBA32Sint
	PixelFormatRGBA32Float
	// depth-stencil
	PixelFormatD16Unorm
	PixelFormatD24UnormS8Uint
	PixelFormatD32Float
	PixelFormatD32FloatS8Uint

	PixelFormatCount
)

var pixelFormatNames = [...]string{
	PixelFormatUndefined:      "Undefined",
	PixelFormatR8Unorm:        "R8Unorm",
	PixelFormatR8Snorm:        "R8Snorm",
	PixelFormatR8Uint:         "R8Uint",
	PixelFormatR8Sint:         "R8Sint",
	PixelFormatR16Uint:        "R16Uint",
	PixelFormatR16Sint:        "R16Sint",
	PixelFormatR16Float:       "R16Float",
	PixelFormatRG8Unorm:       "RG8Unorm",
	PixelFormatRG8Snorm:       "RG8Snorm",
	PixelFormatRG8Uint:        "RG8Uint",
	PixelFormatRG8Sint:        "RG8Sint",
	PixelFormatR32Uint:        "R32Uint",
	PixelFormatR32Sint:        "R32Sint",
	PixelFormatR32Float:       "R32Float",
	PixelFormatRG16Uint:       "RG16Uint",
	PixelFormatRG16Sint:       "RG16Sint",
	PixelFormatRG16Float:      "RG16Float",
	PixelFormatRGBA8Unorm:     "RGBA8Unorm",
	PixelFormatRGBA8UnormSrgb: "RGBA8UnormSrgb",
	PixelFormatRGBA8Snorm:     "RGBA8Snorm",
	PixelFormatRGBA8Uint:      "RGBA8Uint",
	PixelFormatRGBA8Sint:      "RGBA8Sint",
	PixelFormatBGRA8Unorm:     "BGRA8Unorm",
	PixelFormatBGRA8UnormSrgb: "BGRA8UnormSrgb",
	PixelFormatRGB10A2Unorm:   "RGB10A2Unorm",
	PixelFormatRG11B10Float:   "RG11B10Float",
	PixelFormatRGB9E5Float:    "RGB9E5Float",
	PixelFormatRG32Uint:       "RG32Uint",
	PixelFormatRG32Sint:       "RG32Sint",
	PixelFormatRG32Float:      "RG32Float",
	PixelFormatRGBA16Uint:     "RGBA16Uint",
	PixelFormatRGBA16Sint:     "RGBA16Sint",
	PixelFormatRGBA16Float:    "RGBA16Float",
	PixelFormatRGBA32Uint:     "RGBA32Uint",
	PixelFormatRGBA32Sint:     "RGBA32Sint",
	PixelFormatRGBA32Float:    "RGBA32Float",
	PixelFormatD16Unorm:       "D16Unorm",
	PixelFormatD24UnormS8Uint: "D24UnormS8Uint",
	PixelFormatD32Float:       "D32Float",
	PixelFormatD32FloatS8Uint: "D32FloatS8Uint",
}

func (f PixelFormat) String() string {
	if f < PixelFormatCount {
		return pixelFormatNames[f]
	}
	return fmt.Sprintf("PixelFormat(%d)", f)
}

// IsValid reports whether f names a concrete format.
func (f PixelFormat) IsValid() bool {
	return f > PixelFormatUndefined && f < PixelFormatCount
}

// IsDepthStencil reports whether f has a depth or stencil aspect.
func (f PixelFormat) IsDepthStencil() bool {
	return f >= PixelFormatD16Unorm && f <= PixelFormatD32FloatS8Uint
}

// HasStencil reports whether f has a stencil aspect.
func (f PixelFormat) HasStencil() bool {
	return f == PixelFormatD24UnormS8Uint || f == PixelFormatD32FloatS8Uint
}

// BytesPerTexel returns the texel size in bytes, or 0 for Undefined.
func (f PixelFormat) BytesPerTexel() uint32 {
	switch {
	case f == PixelFormatUndefined || f >= PixelFormatCount:
		return 0
	case f <= PixelFormatR8Sint:
		return 1
	case f <= PixelFormatRG8Sint, f == PixelFormatD16Unorm:
		return 2
	case f <= PixelFormatRGB9E5Float, f == PixelFormatD24UnormS8Uint, f == PixelFormatD32Float:
		return 4
	case f <= PixelFormatRGBA16Float, f == PixelFormatD32FloatS8Uint:
		return 8
	default:
		return 16
	}
}

// AspectBytesPerTexel returns the size of one texel of aspect a as it is
// laid out in a buffer copy. Stencil is one byte; the depth aspect of a
// combined format drops the stencil.
func (f PixelFormat) AspectBytesPerTexel(a TextureAspect) uint32 {
	if !f.IsDepthStencil() {
		return f.BytesPerTexel()
	}
	switch a {
	case TextureAspectStencil:
		return 1
	case TextureAspectDepth:
		if f == PixelFormatD16Unorm {
			return 2
		}
		return 4
	}
	return f.BytesPerTexel()
}

// BufferUsageBits are the bits of a buffer usage set.
type BufferUsageBits uint32

const (
	BufferUsageMapRead BufferUsageBits = 1 << iota
	BufferUsageMapWrite
	BufferUsageCopySrc
	BufferUsageCopyDst
	BufferUsageIndex
	BufferUsageVertex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect

	bufferUsageMax
)

// BufferUsageFlags is a set of BufferUsageBits.
type BufferUsageFlags = Flags[BufferUsageBits]

// BufferUsageAll is every defined buffer usage bit.
const BufferUsageAll = BufferUsageFlags(bufferUsageMax - 1)

// TextureUsageBits are the bits of a texture usage set.
type TextureUsageBits uint32

const (
	TextureUsageCopySrc TextureUsageBits = 1 << iota
	TextureUsageCopyDst
	TextureUsageTextureBinding
	TextureUsageStorageBinding
	TextureUsageRenderAttachment
	TextureUsageDepthStencilAttachment

	textureUsageMax
)

// TextureUsageFlags is a set of TextureUsageBits.
type TextureUsageFlags = Flags[TextureUsageBits]

// TextureUsageAll is every defined texture usage bit.
const TextureUsageAll = TextureUsageFlags(textureUsageMax - 1)

// ShaderStageBits are the bits of a shader stage set.
type ShaderStageBits uint32

const (
	ShaderStageVertex ShaderStageBits = 1 << iota
	ShaderStagePixel
	ShaderStageCompute

	shaderStageMax
)

// ShaderStageFlags is a set of ShaderStageBits.
type ShaderStageFlags = Flags[ShaderStageBits]

// ShaderStageAll is every defined shader stage bit.
const ShaderStageAll = ShaderStageFlags(shaderStageMax - 1)

// ColorWriteBits are the bits of a color write mask.
type ColorWriteBits uint32

const (
	ColorWriteRed ColorWriteBits = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha
)

// ColorWriteFlags is a set of ColorWriteBits.
type ColorWriteFlags = Flags[ColorWriteBits]

// ColorWriteAll enables every channel.
const ColorWriteAll = ColorWriteFlags(ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha)

// TextureState is the caller-tracked logical state of a texture.
type TextureState uint8

const (
	TextureStateUndefined TextureState = iota
	TextureStateCopySrc
	TextureStateCopyDst
	TextureStateShaderReadOnly
	TextureStateRenderTarget
	TextureStateStorage
	TextureStateDepthStencilReadonly
	TextureStateDepthStencilWrite
	TextureStatePresent

	TextureStateCount
)

var textureStateNames = [...]string{
	TextureStateUndefined:            "Undefined",
	TextureStateCopySrc:              "CopySrc",
	TextureStateCopyDst:              "CopyDst",
	TextureStateShaderReadOnly:       "ShaderReadOnly",
	TextureStateRenderTarget:         "RenderTarget",
	TextureStateStorage:              "Storage",
	TextureStateDepthStencilReadonly: "DepthStencilReadonly",
	TextureStateDepthStencilWrite:    "DepthStencilWrite",
	TextureStatePresent:              "Present",
}

func (s TextureState) String() string {
	if s < TextureStateCount {
		return textureStateNames[s]
	}
	return fmt.Sprintf("TextureState(%d)", s)
}

// BufferState is the caller-tracked logical state of a buffer.
type BufferState uint8

const (
	BufferStateUndefined BufferState = iota
	BufferStateStaging
	BufferStateCopySrc
	BufferStateCopyDst
	BufferStateShaderReadOnly
	BufferStateStorage
	BufferStateVertex
	BufferStateIndex
	BufferStateUniform
	BufferStateIndirect

	BufferStateCount
)

var bufferStateNames = [...]string{
	BufferStateUndefined:      "Undefined",
	BufferStateStaging:        "Staging",
	BufferStateCopySrc:        "CopySrc",
	BufferStateCopyDst:        "CopyDst",
	BufferStateShaderReadOnly: "ShaderReadOnly",
	BufferStateStorage:        "Storage",
	BufferStateVertex:         "Vertex",
	BufferStateIndex:          "Index",
	BufferStateUniform:        "Uniform",
	BufferStateIndirect:       "Indirect",
}

func (s BufferState) String() string {
	if s < BufferStateCount {
		return bufferStateNames[s]
	}
	return fmt.Sprintf("BufferState(%d)", s)
}

// MapMode selects CPU read or write access for Buffer.Map.
type MapMode uint8

const (
	MapModeRead MapMode = iota
	MapModeWrite
)

func (m MapMode) String() string {
	if m == MapModeWrite {
		return "Write"
	}
	return "Read"
}

// QueueType is a queue family class.
type QueueType uint8

const (
	QueueTypeGraphics QueueType = iota
	QueueTypeCompute
	QueueTypeTransfer

	QueueTypeCount
)

func (q QueueType) String() string {
	switch q {
	case QueueTypeGraphics:
		return "Graphics"
	case QueueTypeCompute:
		return "Compute"
	case QueueTypeTransfer:
		return "Transfer"
	}
	return fmt.Sprintf("QueueType(%d)", q)
}

// BindingType is the kind of resource a binding slot accepts.
type BindingType uint8

const (
	BindingTypeUniformBuffer BindingType = iota
	BindingTypeStorageBuffer
	BindingTypeSampler
	BindingTypeTexture
	BindingTypeStorageTexture

	BindingTypeCount
)

func (b BindingType) String() string {
	switch b {
	case BindingTypeUniformBuffer:
		return "UniformBuffer"
	case BindingTypeStorageBuffer:
		return "StorageBuffer"
	case BindingTypeSampler:
		return "Sampler"
	case BindingTypeTexture:
		return "Texture"
	case BindingTypeStorageTexture:
		return "StorageTexture"
	}
	return fmt.Sprintf("BindingType(%d)", b)
}

// PresentMode selects presentation pacing.
type PresentMode uint8

const (
	PresentModeImmediately PresentMode = iota
	PresentModeVsync
)

// ByteCodeType tags the format of a shader blob.
type ByteCodeType uint8

const (
	ByteCodeTypeSPIRV ByteCodeType = iota
	ByteCodeTypeDXIL
	ByteCodeTypeMBC
)

func (b ByteCodeType) String() string {
	switch b {
	case ByteCodeTypeSPIRV:
		return "SPIRV"
	case ByteCodeTypeDXIL:
		return "DXIL"
	case ByteCodeTypeMBC:
		return "MBC"
	}
	return fmt.Sprintf("ByteCodeType(%d)", b)
}

// TextureDimension is the dimensionality of a texture.
type TextureDimension uint8

const (
	TextureDimension1D TextureDimension = iota
	TextureDimension2D
	TextureDimension3D
)

// TextureViewDimension is the dimensionality a view presents to shaders.
type TextureViewDimension uint8

const (
	// TextureViewDimensionUndefined takes the shape of the texture: 1D, 3D,
	// or 2D and 2DArray by the number of layers selected.
	TextureViewDimensionUndefined TextureViewDimension = iota
	TextureViewDimension1D
	TextureViewDimension2D
	TextureViewDimension2DArray
	TextureViewDimensionCube
	TextureViewDimensionCubeArray
	TextureViewDimension3D
)

func (d TextureViewDimension) String() string {
	switch d {
	case TextureViewDimensionUndefined:
		return "Undefined"
	case TextureViewDimension1D:
		return "1D"
	case TextureViewDimension2D:
		return "2D"
	case TextureViewDimension2DArray:
		return "2DArray"
	case TextureViewDimensionCube:
		return "Cube"
	case TextureViewDimensionCubeArray:
		return "CubeArray"
	case TextureViewDimension3D:
		return "3D"
	}
	return fmt.Sprintf("TextureViewDimension(%d)", d)
}

// TextureSampleType is the component type a texture slot samples.
type TextureSampleType uint8

const (
	TextureSampleTypeFloat TextureSampleType = iota
	TextureSampleTypeUnfilterableFloat
	TextureSampleTypeDepth
	TextureSampleTypeSint
	TextureSampleTypeUint

	TextureSampleTypeCount
)

// TextureAspect selects the aspects a view covers.
type TextureAspect uint8

const (
	TextureAspectColor TextureAspect = iota
	TextureAspectDepth
	TextureAspectStencil
	TextureAspectDepthStencil
)

// TextureViewType is the binding role fixed on a texture view.
type TextureViewType uint8

const (
	TextureViewTypeTextureBinding TextureViewType = iota
	TextureViewTypeStorageBinding
	TextureViewTypeColorAttachment
	TextureViewTypeDepthStencil
)

// BufferViewType is the binding role fixed on a buffer view.
type BufferViewType uint8

const (
	BufferViewTypeVertex BufferViewType = iota
	BufferViewTypeIndex
	BufferViewTypeUniformBinding
	BufferViewTypeStorageBinding
)

// LoadOp is the attachment load operation at pass begin.
type LoadOp uint8

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
)

// StoreOp is the attachment store operation at pass end.
type StoreOp uint8

const (
	StoreOpStore StoreOp = iota
	StoreOpDiscard
)

// PrimitiveTopology is the primitive assembly mode.
type PrimitiveTopology uint8

const (
	PrimitiveTopologyPointList PrimitiveTopology = iota
	PrimitiveTopologyLineList
	PrimitiveTopologyLineStrip
	PrimitiveTopologyTriangleList
	PrimitiveTopologyTriangleStrip
)

// IndexFormat is the element type of an index buffer.
type IndexFormat uint8

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// VertexFormat is the type of a vertex attribute.
type VertexFormat uint8

const (
	VertexFormatUint8x2 VertexFormat = iota
	VertexFormatUint8x4
	VertexFormatSint8x2
	VertexFormatSint8x4
	VertexFormatUnorm8x2
	VertexFormatUnorm8x4
	VertexFormatSnorm8x2
	VertexFormatSnorm8x4
	VertexFormatUint16x2
	VertexFormatUint16x4
	VertexFormatSint16x2
	VertexFormatSint16x4
	VertexFormatUnorm16x2
	VertexFormatUnorm16x4
	VertexFormatSnorm16x2
	VertexFormatSnorm16x4
	VertexFormatFloat16x2
	VertexFormatFloat16x4
	VertexFormatFloat32
	VertexFormatFloat32x2
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
	VertexFormatUint32x2
	VertexFormatUint32x3
	VertexFormatUint32x4
	VertexFormatSint32
	VertexFormatSint32x2
	VertexFormatSint32x3
	VertexFormatSint32x4

	VertexFormatCount
)

// VertexStepMode selects per-vertex or per-instance stepping.
type VertexStepMode uint8

const (
	VertexStepModePerVertex VertexStepMode = iota
	VertexStepModePerInstance
)

// FillMode selects polygon rasterization.
type FillMode uint8

const (
	FillModeSolid FillMode = iota
	FillModeWireframe
)

// CullMode selects face culling.
type CullMode uint8

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// FrontFace selects the winding of front-facing triangles.
type FrontFace uint8

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

// CompareFunc is a depth, stencil or sampler comparison.
type CompareFunc uint8

const (
	CompareFuncNever CompareFunc = iota
	CompareFuncLess
	CompareFuncEqual
	CompareFuncLessEqual
	CompareFuncGreater
	CompareFuncNotEqual
	CompareFuncGreaterEqual
	CompareFuncAlways
)

// StencilOp is a stencil buffer update operation.
type StencilOp uint8

const (
	StencilOpKeep StencilOp = iota
	StencilOpZero
	StencilOpReplace
	StencilOpInvert
	StencilOpIncrementClamp
	StencilOpDecrementClamp
	StencilOpIncrementWrap
	StencilOpDecrementWrap
)

// BlendFactor is a blend equation multiplier.
type BlendFactor uint8

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrc
	BlendFactorOneMinusSrc
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDst
	BlendFactorOneMinusDst
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
	BlendFactorSrcAlphaSaturated
	BlendFactorConstant
	BlendFactorOneMinusConstant
)

// BlendOp is a blend equation operator.
type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpReverseSubtract
	BlendOpMin
	BlendOpMax
)

// FilterMode is a texel filter.
type FilterMode uint8

const (
	FilterModeNearest FilterMode = iota
	FilterModeLinear
)

// AddressMode is a texture coordinate wrap mode.
type AddressMode uint8

const (
	AddressModeClampToEdge AddressMode = iota
	AddressModeRepeat
	AddressModeMirrorRepeat
)

// GpuType classifies a physical adapter.
type GpuType uint8

const (
	GpuTypeOther GpuType = iota
	GpuTypeIntegrated
	GpuTypeDiscrete
	GpuTypeVirtual
	GpuTypeSoftware
)

func (g GpuType) String() string {
	switch g {
	case GpuTypeIntegrated:
		return "Integrated"
	case GpuTypeDiscrete:
		return "Discrete"
	case GpuTypeVirtual:
		return "Virtual"
	case GpuTypeSoftware:
		return "Software"
	}
	return "Other"
}
