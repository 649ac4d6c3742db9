package dx12

import "github.com/gogpu/rhi"

// DXGIFormat is a DXGI_FORMAT value.
type DXGIFormat uint32

// DXGI formats used by the RHI pixel formats.
const (
	FormatUnknown           DXGIFormat = 0
	FormatR32G32B32A32Float DXGIFormat = 2
	FormatR32G32B32A32Uint  DXGIFormat = 3
	FormatR32G32B32A32Sint  DXGIFormat = 4
	FormatR16G16B16A16Float DXGIFormat = 10
	FormatR16G16B16A16Uint  DXGIFormat = 12
	FormatR16G16B16A16Sint  DXGIFormat = 14
	FormatR32G32Float       DXGIFormat = 16
	FormatR32G32Uint        DXGIFormat = 17
	FormatR32G32Sint        DXGIFormat = 18
	FormatD32FloatS8X24Uint DXGIFormat = 20
	FormatR10G10B10A2Unorm  DXGIFormat = 24
	FormatR11G11B10Float    DXGIFormat = 26
	FormatR8G8B8A8Unorm     DXGIFormat = 28
	FormatR8G8B8A8UnormSrgb DXGIFormat = 29
	FormatR8G8B8A8Uint      DXGIFormat = 30
	FormatR8G8B8A8Snorm     DXGIFormat = 31
	FormatR8G8B8A8Sint      DXGIFormat = 32
	FormatR16G16Float       DXGIFormat = 34
	FormatR16G16Uint        DXGIFormat = 36
	FormatR16G16Sint        DXGIFormat = 38
	FormatD32Float          DXGIFormat = 40
	FormatR32Float          DXGIFormat = 41
	FormatR32Uint           DXGIFormat = 42
	FormatR32Sint           DXGIFormat = 43
	FormatD24UnormS8Uint    DXGIFormat = 45
	FormatR8G8Unorm         DXGIFormat = 49
	FormatR8G8Uint          DXGIFormat = 50
	FormatR8G8Snorm         DXGIFormat = 51
	FormatR8G8Sint          DXGIFormat = 52
	FormatR16Float          DXGIFormat = 54
	FormatD16Unorm          DXGIFormat = 55
	FormatR16Uint           DXGIFormat = 57
	FormatR16Sint           DXGIFormat = 59
	FormatR8Unorm           DXGIFormat = 61
	FormatR8Uint            DXGIFormat = 62
	FormatR8Snorm           DXGIFormat = 63
	FormatR8Sint            DXGIFormat = 64
	FormatR9G9B9E5SharedExp DXGIFormat = 67
	FormatB8G8R8A8Unorm     DXGIFormat = 87
	FormatB8G8R8A8UnormSrgb DXGIFormat = 91
)

var formats = [rhi.PixelFormatCount]DXGIFormat{
	rhi.PixelFormatR8Unorm:        FormatR8Unorm,
	rhi.PixelFormatR8Snorm:        FormatR8Snorm,
	rhi.PixelFormatR8Uint:         FormatR8Uint,
	rhi.PixelFormatR8Sint:         FormatR8Sint,
	rhi.PixelFormatR16Uint:        FormatR16Uint,
	rhi.PixelFormatR16Sint:        FormatR16Sint,
	rhi.PixelFormatR16Float:       FormatR16Float,
	rhi.PixelFormatRG8Unorm:       FormatR8G8Unorm,
	rhi.PixelFormatRG8Snorm:       FormatR8G8Snorm,
	rhi.PixelFormatRG8Uint:        FormatR8G8Uint,
	rhi.PixelFormatRG8Sint:        FormatR8G8Sint,
	rhi.PixelFormatR32Uint:        FormatR32Uint,
	rhi.PixelFormatR32Sint:        FormatR32Sint,
	rhi.PixelFormatR32Float:       FormatR32Float,
	rhi.PixelFormatRG16Uint:       FormatR16G16Uint,
	rhi.PixelFormatRG16Sint:       FormatR16G16Sint,
	rhi.PixelFormatRG16Float:      FormatR16G16Float,
	rhi.PixelFormatRGBA8Unorm:     FormatR8G8B8A8Unorm,
	rhi.PixelFormatRGBA8UnormSrgb: FormatR8G8B8A8UnormSrgb,
	rhi.PixelFormatRGBA8Snorm:     FormatR8G8B8A8Snorm,
	rhi.PixelFormatRGBA8Uint:      FormatR8G8B8A8Uint,
	rhi.PixelFormatRGBA8Sint:      FormatR8G8B8A8Sint,
	rhi.PixelFormatBGRA8Unorm:     FormatB8G8R8A8Unorm,
	rhi.PixelFormatBGRA8UnormSrgb: FormatB8G8R8A8UnormSrgb,
	rhi.PixelFormatRGB10A2Unorm:   FormatR10G10B10A2Unorm,
	rhi.PixelFormatRG11B10Float:   FormatR11G11B10Float,
	rhi.PixelFormatRGB9E5Float:    FormatR9G9B9E5SharedExp,
	rhi.PixelFormatRG32Uint:       FormatR32G32Uint,
	rhi.PixelFormatRG32Sint:       FormatR32G32Sint,
	rhi.PixelFormatRG32Float:      FormatR32G32Float,
	rhi.PixelFormatRGBA16Uint:     FormatR16G16B16A16Uint,
	rhi.PixelFormatRGBA16Sint:     FormatR16G16B16A16Sint,
	rhi.PixelFormatRGBA16Float:    FormatR16G16B16A16Float,
	rhi.PixelFormatRGBA32Uint:     FormatR32G32B32A32Uint,
	rhi.PixelFormatRGBA32Sint:     FormatR32G32B32A32Sint,
	rhi.PixelFormatRGBA32Float:    FormatR32G32B32A32Float,
	rhi.PixelFormatD16Unorm:       FormatD16Unorm,
	rhi.PixelFormatD24UnormS8Uint: FormatD24UnormS8Uint,
	rhi.PixelFormatD32Float:       FormatD32Float,
	rhi.PixelFormatD32FloatS8Uint: FormatD32FloatS8X24Uint,
}

// Format returns the DXGI format of f.
func Format(f rhi.PixelFormat) (DXGIFormat, error) {
	if !f.IsValid() {
		return FormatUnknown, rhi.InvalidArgument("dx12.Format", "invalid pixel format %s", f)
	}
	if formats[f] == FormatUnknown {
		return FormatUnknown, rhi.Unsupported("dx12.Format", "pixel format %s has no DXGI mapping", f)
	}
	return formats[f], nil
}

// PixelFormatOf is the inverse of Format. Unknown formats return
// PixelFormatUndefined.
func PixelFormatOf(f DXGIFormat) rhi.PixelFormat {
	if f == FormatUnknown {
		return rhi.PixelFormatUndefined
	}
	for i, df := range formats {
		if df == f {
			return rhi.PixelFormat(i)
		}
	}
	return rhi.PixelFormatUndefined
}

// planeCount is the number of planes a texture of format f has. Stencil
// lives in plane 1 of the combined depth-stencil formats.
func planeCount(f rhi.PixelFormat) uint32 {
	if f.HasStencil() {
		return 2
	}
	return 1
}
