package core

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// =============================================================================
// Neutral -> execution layer translation
// =============================================================================

var textureFormats = [rhi.PixelFormatCount]gputypes.TextureFormat{
	rhi.PixelFormatUndefined:      gputypes.TextureFormatUndefined,
	rhi.PixelFormatR8Unorm:        gputypes.TextureFormatR8Unorm,
	rhi.PixelFormatR8Snorm:        gputypes.TextureFormatR8Snorm,
	rhi.PixelFormatR8Uint:         gputypes.TextureFormatR8Uint,
	rhi.PixelFormatR8Sint:         gputypes.TextureFormatR8Sint,
	rhi.PixelFormatR16Uint:        gputypes.TextureFormatR16Uint,
	rhi.PixelFormatR16Sint:        gputypes.TextureFormatR16Sint,
	rhi.PixelFormatR16Float:       gputypes.TextureFormatR16Float,
	rhi.PixelFormatRG8Unorm:       gputypes.TextureFormatRG8Unorm,
	rhi.PixelFormatRG8Snorm:       gputypes.TextureFormatRG8Snorm,
	rhi.PixelFormatRG8Uint:        gputypes.TextureFormatRG8Uint,
	rhi.PixelFormatRG8Sint:        gputypes.TextureFormatRG8Sint,
	rhi.PixelFormatR32Uint:        gputypes.TextureFormatR32Uint,
	rhi.PixelFormatR32Sint:        gputypes.TextureFormatR32Sint,
	rhi.PixelFormatR32Float:       gputypes.TextureFormatR32Float,
	rhi.PixelFormatRG16Uint:       gputypes.TextureFormatRG16Uint,
	rhi.PixelFormatRG16Sint:       gputypes.TextureFormatRG16Sint,
	rhi.PixelFormatRG16Float:      gputypes.TextureFormatRG16Float,
	rhi.PixelFormatRGBA8Unorm:     gputypes.TextureFormatRGBA8Unorm,
	rhi.PixelFormatRGBA8UnormSrgb: gputypes.TextureFormatRGBA8UnormSrgb,
	rhi.PixelFormatRGBA8Snorm:     gputypes.TextureFormatRGBA8Snorm,
	rhi.PixelFormatRGBA8Uint:      gputypes.TextureFormatRGBA8Uint,
	rhi.PixelFormatRGBA8Sint:      gputypes.TextureFormatRGBA8Sint,
	rhi.PixelFormatBGRA8Unorm:     gputypes.TextureFormatBGRA8Unorm,
	rhi.PixelFormatBGRA8UnormSrgb: gputypes.TextureFormatBGRA8UnormSrgb,
	rhi.PixelFormatRGB10A2Unorm:   gputypes.TextureFormatRGB10A2Unorm,
	rhi.PixelFormatRG11B10Float:   gputypes.TextureFormatRG11B10Ufloat,
	rhi.PixelFormatRGB9E5Float:    gputypes.TextureFormatRGB9E5Ufloat,
	rhi.PixelFormatRG32Uint:       gputypes.TextureFormatRG32Uint,
	rhi.PixelFormatRG32Sint:       gputypes.TextureFormatRG32Sint,
	rhi.PixelFormatRG32Float:      gputypes.TextureFormatRG32Float,
	rhi.PixelFormatRGBA16Uint:     gputypes.TextureFormatRGBA16Uint,
	rhi.PixelFormatRGBA16Sint:     gputypes.TextureFormatRGBA16Sint,
	rhi.PixelFormatRGBA16Float:    gputypes.TextureFormatRGBA16Float,
	rhi.PixelFormatRGBA32Uint:     gputypes.TextureFormatRGBA32Uint,
	rhi.PixelFormatRGBA32Sint:     gputypes.TextureFormatRGBA32Sint,
	rhi.PixelFormatRGBA32Float:    gputypes.TextureFormatRGBA32Float,
	rhi.PixelFormatD16Unorm:       gputypes.TextureFormatDepth16Unorm,
	rhi.PixelFormatD24UnormS8Uint: gputypes.TextureFormatDepth24PlusStencil8,
	rhi.PixelFormatD32Float:       gputypes.TextureFormatDepth32Float,
	rhi.PixelFormatD32FloatS8Uint: gputypes.TextureFormatDepth32FloatStencil8,
}

// TextureFormat converts a neutral pixel format to the HAL format.
func TextureFormat(f rhi.PixelFormat) gputypes.TextureFormat {
	if f >= rhi.PixelFormatCount {
		return gputypes.TextureFormatUndefined
	}
	return textureFormats[f]
}

// PixelFormatOf is the inverse of TextureFormat. It returns Undefined for
// HAL formats outside the neutral vocabulary.
func PixelFormatOf(f gputypes.TextureFormat) rhi.PixelFormat {
	for i, hf := range textureFormats {
		if hf == f && i != int(rhi.PixelFormatUndefined) {
			return rhi.PixelFormat(i)
		}
	}
	return rhi.PixelFormatUndefined
}

func bufferUsage(u rhi.BufferUsageFlags) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	for _, b := range u.Bits() {
		switch b {
		case rhi.BufferUsageMapRead:
			out |= gputypes.BufferUsageMapRead
		case rhi.BufferUsageMapWrite:
			out |= gputypes.BufferUsageMapWrite
		case rhi.BufferUsageCopySrc:
			out |= gputypes.BufferUsageCopySrc
		case rhi.BufferUsageCopyDst:
			out |= gputypes.BufferUsageCopyDst
		case rhi.BufferUsageIndex:
			out |= gputypes.BufferUsageIndex
		case rhi.BufferUsageVertex:
			out |= gputypes.BufferUsageVertex
		case rhi.BufferUsageUniform:
			out |= gputypes.BufferUsageUniform
		case rhi.BufferUsageStorage:
			out |= gputypes.BufferUsageStorage
		case rhi.BufferUsageIndirect:
			out |= gputypes.BufferUsageIndirect
		}
	}
	return out
}

func textureUsage(u rhi.TextureUsageFlags) gputypes.TextureUsage {
	var out gputypes.TextureUsage
	for _, b := range u.Bits() {
		switch b {
		case rhi.TextureUsageCopySrc:
			out |= gputypes.TextureUsageCopySrc
		case rhi.TextureUsageCopyDst:
			out |= gputypes.TextureUsageCopyDst
		case rhi.TextureUsageTextureBinding:
			out |= gputypes.TextureUsageTextureBinding
		case rhi.TextureUsageStorageBinding:
			out |= gputypes.TextureUsageStorageBinding
		case rhi.TextureUsageRenderAttachment, rhi.TextureUsageDepthStencilAttachment:
			out |= gputypes.TextureUsageRenderAttachment
		}
	}
	return out
}

func shaderStages(s rhi.ShaderStageFlags) gputypes.ShaderStages {
	var out gputypes.ShaderStages
	if s.Has(rhi.ShaderStageVertex) {
		out |= gputypes.ShaderStageVertex
	}
	if s.Has(rhi.ShaderStagePixel) {
		out |= gputypes.ShaderStageFragment
	}
	if s.Has(rhi.ShaderStageCompute) {
		out |= gputypes.ShaderStageCompute
	}
	return out
}

// bufferStateUsage is the HAL usage a buffer in state s is used with.
// Barriers are expressed to the HAL as usage transitions.
func bufferStateUsage(s rhi.BufferState) gputypes.BufferUsage {
	switch s {
	case rhi.BufferStateStaging:
		return gputypes.BufferUsageMapWrite | gputypes.BufferUsageCopySrc
	case rhi.BufferStateCopySrc:
		return gputypes.BufferUsageCopySrc
	case rhi.BufferStateCopyDst:
		return gputypes.BufferUsageCopyDst
	case rhi.BufferStateShaderReadOnly, rhi.BufferStateUniform:
		return gputypes.BufferUsageUniform
	case rhi.BufferStateStorage:
		return gputypes.BufferUsageStorage
	case rhi.BufferStateVertex:
		return gputypes.BufferUsageVertex
	case rhi.BufferStateIndex:
		return gputypes.BufferUsageIndex
	case rhi.BufferStateIndirect:
		return gputypes.BufferUsageIndirect
	}
	return 0
}

// textureStateUsage is the HAL usage a texture in state s is used with.
// Present maps to CopySrc because presentation copies the back texture
// into the surface texture.
func textureStateUsage(s rhi.TextureState) gputypes.TextureUsage {
	switch s {
	case rhi.TextureStateCopySrc, rhi.TextureStatePresent:
		return gputypes.TextureUsageCopySrc
	case rhi.TextureStateCopyDst:
		return gputypes.TextureUsageCopyDst
	case rhi.TextureStateShaderReadOnly, rhi.TextureStateDepthStencilReadonly:
		return gputypes.TextureUsageTextureBinding
	case rhi.TextureStateStorage:
		return gputypes.TextureUsageStorageBinding
	case rhi.TextureStateRenderTarget, rhi.TextureStateDepthStencilWrite:
		return gputypes.TextureUsageRenderAttachment
	}
	return 0
}

func textureDimension(d rhi.TextureDimension) gputypes.TextureDimension {
	switch d {
	case rhi.TextureDimension1D:
		return gputypes.TextureDimension1D
	case rhi.TextureDimension3D:
		return gputypes.TextureDimension3D
	}
	return gputypes.TextureDimension2D
}

func textureViewDimension(d rhi.TextureViewDimension) gputypes.TextureViewDimension {
	switch d {
	case rhi.TextureViewDimension1D:
		return gputypes.TextureViewDimension1D
	case rhi.TextureViewDimension2DArray:
		return gputypes.TextureViewDimension2DArray
	case rhi.TextureViewDimensionCube:
		return gputypes.TextureViewDimensionCube
	case rhi.TextureViewDimensionCubeArray:
		return gputypes.TextureViewDimensionCubeArray
	case rhi.TextureViewDimension3D:
		return gputypes.TextureViewDimension3D
	}
	return gputypes.TextureViewDimension2D
}

func textureSampleType(t rhi.TextureSampleType) gputypes.TextureSampleType {
	switch t {
	case rhi.TextureSampleTypeUnfilterableFloat:
		return gputypes.TextureSampleTypeUnfilterableFloat
	case rhi.TextureSampleTypeDepth:
		return gputypes.TextureSampleTypeDepth
	case rhi.TextureSampleTypeSint:
		return gputypes.TextureSampleTypeSint
	case rhi.TextureSampleTypeUint:
		return gputypes.TextureSampleTypeUint
	}
	return gputypes.TextureSampleTypeFloat
}

func textureAspect(a rhi.TextureAspect) gputypes.TextureAspect {
	switch a {
	case rhi.TextureAspectDepth:
		return gputypes.TextureAspectDepthOnly
	case rhi.TextureAspectStencil:
		return gputypes.TextureAspectStencilOnly
	}
	return gputypes.TextureAspectAll
}

func addressMode(m rhi.AddressMode) gputypes.AddressMode {
	switch m {
	case rhi.AddressModeRepeat:
		return gputypes.AddressModeRepeat
	case rhi.AddressModeMirrorRepeat:
		return gputypes.AddressModeMirrorRepeat
	}
	return gputypes.AddressModeClampToEdge
}

func filterMode(f rhi.FilterMode) gputypes.FilterMode {
	if f == rhi.FilterModeLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

var compareFuncs = [...]gputypes.CompareFunction{
	rhi.CompareFuncNever:        gputypes.CompareFunctionNever,
	rhi.CompareFuncLess:         gputypes.CompareFunctionLess,
	rhi.CompareFuncEqual:        gputypes.CompareFunctionEqual,
	rhi.CompareFuncLessEqual:    gputypes.CompareFunctionLessEqual,
	rhi.CompareFuncGreater:      gputypes.CompareFunctionGreater,
	rhi.CompareFuncNotEqual:     gputypes.CompareFunctionNotEqual,
	rhi.CompareFuncGreaterEqual: gputypes.CompareFunctionGreaterEqual,
	rhi.CompareFuncAlways:       gputypes.CompareFunctionAlways,
}

func compareFunc(c rhi.CompareFunc) gputypes.CompareFunction {
	if int(c) < len(compareFuncs) {
		return compareFuncs[c]
	}
	return gputypes.CompareFunctionUndefined
}

var stencilOps = [...]hal.StencilOperation{
	rhi.StencilOpKeep:           hal.StencilOperationKeep,
	rhi.StencilOpZero:           hal.StencilOperationZero,
	rhi.StencilOpReplace:        hal.StencilOperationReplace,
	rhi.StencilOpInvert:         hal.StencilOperationInvert,
	rhi.StencilOpIncrementClamp: hal.StencilOperationIncrementClamp,
	rhi.StencilOpDecrementClamp: hal.StencilOperationDecrementClamp,
	rhi.StencilOpIncrementWrap:  hal.StencilOperationIncrementWrap,
	rhi.StencilOpDecrementWrap:  hal.StencilOperationDecrementWrap,
}

func stencilOp(op rhi.StencilOp) hal.StencilOperation {
	if int(op) < len(stencilOps) {
		return stencilOps[op]
	}
	return hal.StencilOperationKeep
}

func stencilFace(s rhi.StencilFaceState) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compareFunc(s.CompareFunc),
		FailOp:      stencilOp(s.FailOp),
		DepthFailOp: stencilOp(s.DepthFailOp),
		PassOp:      stencilOp(s.PassOp),
	}
}

var vertexFormats = [rhi.VertexFormatCount]gputypes.VertexFormat{
	rhi.VertexFormatUint8x2:   gputypes.VertexFormatUint8x2,
	rhi.VertexFormatUint8x4:   gputypes.VertexFormatUint8x4,
	rhi.VertexFormatSint8x2:   gputypes.VertexFormatSint8x2,
	rhi.VertexFormatSint8x4:   gputypes.VertexFormatSint8x4,
	rhi.VertexFormatUnorm8x2:  gputypes.VertexFormatUnorm8x2,
	rhi.VertexFormatUnorm8x4:  gputypes.VertexFormatUnorm8x4,
	rhi.VertexFormatSnorm8x2:  gputypes.VertexFormatSnorm8x2,
	rhi.VertexFormatSnorm8x4:  gputypes.VertexFormatSnorm8x4,
	rhi.VertexFormatUint16x2:  gputypes.VertexFormatUint16x2,
	rhi.VertexFormatUint16x4:  gputypes.VertexFormatUint16x4,
	rhi.VertexFormatSint16x2:  gputypes.VertexFormatSint16x2,
	rhi.VertexFormatSint16x4:  gputypes.VertexFormatSint16x4,
	rhi.VertexFormatUnorm16x2: gputypes.VertexFormatUnorm16x2,
	rhi.VertexFormatUnorm16x4: gputypes.VertexFormatUnorm16x4,
	rhi.VertexFormatSnorm16x2: gputypes.VertexFormatSnorm16x2,
	rhi.VertexFormatSnorm16x4: gputypes.VertexFormatSnorm16x4,
	rhi.VertexFormatFloat16x2: gputypes.VertexFormatFloat16x2,
	rhi.VertexFormatFloat16x4: gputypes.VertexFormatFloat16x4,
	rhi.VertexFormatFloat32:   gputypes.VertexFormatFloat32,
	rhi.VertexFormatFloat32x2: gputypes.VertexFormatFloat32x2,
	rhi.VertexFormatFloat32x3: gputypes.VertexFormatFloat32x3,
	rhi.VertexFormatFloat32x4: gputypes.VertexFormatFloat32x4,
	rhi.VertexFormatUint32:    gputypes.VertexFormatUint32,
	rhi.VertexFormatUint32x2:  gputypes.VertexFormatUint32x2,
	rhi.VertexFormatUint32x3:  gputypes.VertexFormatUint32x3,
	rhi.VertexFormatUint32x4:  gputypes.VertexFormatUint32x4,
	rhi.VertexFormatSint32:    gputypes.VertexFormatSint32,
	rhi.VertexFormatSint32x2:  gputypes.VertexFormatSint32x2,
	rhi.VertexFormatSint32x3:  gputypes.VertexFormatSint32x3,
	rhi.VertexFormatSint32x4:  gputypes.VertexFormatSint32x4,
}

// vertexFormatSize returns the byte size of one attribute of format f.
func vertexFormatSize(f rhi.VertexFormat) uint64 {
	switch f {
	case rhi.VertexFormatUint8x2, rhi.VertexFormatSint8x2, rhi.VertexFormatUnorm8x2, rhi.VertexFormatSnorm8x2:
		return 2
	case rhi.VertexFormatUint8x4, rhi.VertexFormatSint8x4, rhi.VertexFormatUnorm8x4, rhi.VertexFormatSnorm8x4,
		rhi.VertexFormatUint16x2, rhi.VertexFormatSint16x2, rhi.VertexFormatUnorm16x2, rhi.VertexFormatSnorm16x2,
		rhi.VertexFormatFloat16x2, rhi.VertexFormatFloat32, rhi.VertexFormatUint32, rhi.VertexFormatSint32:
		return 4
	case rhi.VertexFormatUint16x4, rhi.VertexFormatSint16x4, rhi.VertexFormatUnorm16x4, rhi.VertexFormatSnorm16x4,
		rhi.VertexFormatFloat16x4, rhi.VertexFormatFloat32x2, rhi.VertexFormatUint32x2, rhi.VertexFormatSint32x2:
		return 8
	case rhi.VertexFormatFloat32x3, rhi.VertexFormatUint32x3, rhi.VertexFormatSint32x3:
		return 12
	}
	return 16
}

func vertexStepMode(m rhi.VertexStepMode) gputypes.VertexStepMode {
	if m == rhi.VertexStepModePerInstance {
		return gputypes.VertexStepModeInstance
	}
	return gputypes.VertexStepModeVertex
}

func primitiveTopology(t rhi.PrimitiveTopology) gputypes.PrimitiveTopology {
	switch t {
	case rhi.PrimitiveTopologyPointList:
		return gputypes.PrimitiveTopologyPointList
	case rhi.PrimitiveTopologyLineList:
		return gputypes.PrimitiveTopologyLineList
	case rhi.PrimitiveTopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case rhi.PrimitiveTopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func isStripTopology(t rhi.PrimitiveTopology) bool {
	return t == rhi.PrimitiveTopologyLineStrip || t == rhi.PrimitiveTopologyTriangleStrip
}

func indexFormat(f rhi.IndexFormat) gputypes.IndexFormat {
	if f == rhi.IndexFormatUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func frontFace(f rhi.FrontFace) gputypes.FrontFace {
	if f == rhi.FrontFaceCW {
		return gputypes.FrontFaceCW
	}
	return gputypes.FrontFaceCCW
}

func cullMode(c rhi.CullMode) gputypes.CullMode {
	switch c {
	case rhi.CullModeFront:
		return gputypes.CullModeFront
	case rhi.CullModeBack:
		return gputypes.CullModeBack
	}
	return gputypes.CullModeNone
}

var blendFactors = [...]gputypes.BlendFactor{
	rhi.BlendFactorZero:              gputypes.BlendFactorZero,
	rhi.BlendFactorOne:               gputypes.BlendFactorOne,
	rhi.BlendFactorSrc:               gputypes.BlendFactorSrc,
	rhi.BlendFactorOneMinusSrc:       gputypes.BlendFactorOneMinusSrc,
	rhi.BlendFactorSrcAlpha:          gputypes.BlendFactorSrcAlpha,
	rhi.BlendFactorOneMinusSrcAlpha:  gputypes.BlendFactorOneMinusSrcAlpha,
	rhi.BlendFactorDst:               gputypes.BlendFactorDst,
	rhi.BlendFactorOneMinusDst:       gputypes.BlendFactorOneMinusDst,
	rhi.BlendFactorDstAlpha:          gputypes.BlendFactorDstAlpha,
	rhi.BlendFactorOneMinusDstAlpha:  gputypes.BlendFactorOneMinusDstAlpha,
	rhi.BlendFactorSrcAlphaSaturated: gputypes.BlendFactorSrcAlphaSaturated,
	rhi.BlendFactorConstant:          gputypes.BlendFactorConstant,
	rhi.BlendFactorOneMinusConstant:  gputypes.BlendFactorOneMinusConstant,
}

var blendOps = [...]gputypes.BlendOperation{
	rhi.BlendOpAdd:             gputypes.BlendOperationAdd,
	rhi.BlendOpSubtract:        gputypes.BlendOperationSubtract,
	rhi.BlendOpReverseSubtract: gputypes.BlendOperationReverseSubtract,
	rhi.BlendOpMin:             gputypes.BlendOperationMin,
	rhi.BlendOpMax:             gputypes.BlendOperationMax,
}

func blendComponent(c rhi.BlendComponent) gputypes.BlendComponent {
	out := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorOne,
		DstFactor: gputypes.BlendFactorZero,
		Operation: gputypes.BlendOperationAdd,
	}
	if int(c.SrcFactor) < len(blendFactors) {
		out.SrcFactor = blendFactors[c.SrcFactor]
	}
	if int(c.DstFactor) < len(blendFactors) {
		out.DstFactor = blendFactors[c.DstFactor]
	}
	if int(c.Op) < len(blendOps) {
		out.Operation = blendOps[c.Op]
	}
	return out
}

func colorWriteMask(f rhi.ColorWriteFlags) gputypes.ColorWriteMask {
	var out gputypes.ColorWriteMask
	if f.Has(rhi.ColorWriteRed) {
		out |= gputypes.ColorWriteMaskRed
	}
	if f.Has(rhi.ColorWriteGreen) {
		out |= gputypes.ColorWriteMaskGreen
	}
	if f.Has(rhi.ColorWriteBlue) {
		out |= gputypes.ColorWriteMaskBlue
	}
	if f.Has(rhi.ColorWriteAlpha) {
		out |= gputypes.ColorWriteMaskAlpha
	}
	return out
}

func loadOp(op rhi.LoadOp) gputypes.LoadOp {
	if op == rhi.LoadOpClear {
		return gputypes.LoadOpClear
	}
	return gputypes.LoadOpLoad
}

func storeOp(op rhi.StoreOp) gputypes.StoreOp {
	if op == rhi.StoreOpDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

func presentMode(m rhi.PresentMode) gputypes.PresentMode {
	if m == rhi.PresentModeVsync {
		return gputypes.PresentModeFifo
	}
	return gputypes.PresentModeImmediate
}

func color(c rhi.Color) gputypes.Color {
	return gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

func extent(e rhi.Extent3D) hal.Extent3D {
	return hal.Extent3D{Width: e.Width, Height: e.Height, DepthOrArrayLayers: e.DepthOrArrayLayers}
}

func origin(o rhi.Origin3D) hal.Origin3D {
	return hal.Origin3D{X: o.X, Y: o.Y, Z: o.Z}
}

func gpuType(t gputypes.DeviceType) rhi.GpuType {
	switch t {
	case gputypes.DeviceTypeIntegratedGPU:
		return rhi.GpuTypeIntegrated
	case gputypes.DeviceTypeDiscreteGPU:
		return rhi.GpuTypeDiscrete
	case gputypes.DeviceTypeVirtualGPU:
		return rhi.GpuTypeVirtual
	case gputypes.DeviceTypeCPU:
		return rhi.GpuTypeSoftware
	}
	return rhi.GpuTypeOther
}

func limits(l gputypes.Limits) rhi.Limits {
	return rhi.Limits{
		MaxTextureDimension1D:           l.MaxTextureDimension1D,
		MaxTextureDimension2D:           l.MaxTextureDimension2D,
		MaxTextureDimension3D:           l.MaxTextureDimension3D,
		MaxTextureArrayLayers:           l.MaxTextureArrayLayers,
		MaxBindGroups:                   l.MaxBindGroups,
		MaxBindingsPerBindGroup:         l.MaxBindingsPerBindGroup,
		MaxBufferSize:                   l.MaxBufferSize,
		MaxUniformBufferBindingSize:     l.MaxUniformBufferBindingSize,
		MaxStorageBufferBindingSize:     l.MaxStorageBufferBindingSize,
		MinUniformBufferOffsetAlignment: l.MinUniformBufferOffsetAlignment,
		MinStorageBufferOffsetAlignment: l.MinStorageBufferOffsetAlignment,
		MaxVertexBuffers:                l.MaxVertexBuffers,
		MaxVertexAttributes:             l.MaxVertexAttributes,
		MaxColorAttachments:             l.MaxColorAttachments,
	}
}
