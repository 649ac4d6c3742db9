package vulkan

import (
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/rhi"
)

// formats maps every PixelFormat to its VkFormat. Undefined stays
// vk.FormatUndefined and is rejected by Format.
var formats = [rhi.PixelFormatCount]vk.Format{
	rhi.PixelFormatR8Unorm:        vk.FormatR8Unorm,
	rhi.PixelFormatR8Snorm:        vk.FormatR8Snorm,
	rhi.PixelFormatR8Uint:         vk.FormatR8Uint,
	rhi.PixelFormatR8Sint:         vk.FormatR8Sint,
	rhi.PixelFormatR16Uint:        vk.FormatR16Uint,
	rhi.PixelFormatR16Sint:        vk.FormatR16Sint,
	rhi.PixelFormatR16Float:       vk.FormatR16Sfloat,
	rhi.PixelFormatRG8Unorm:       vk.FormatR8g8Unorm,
	rhi.PixelFormatRG8Snorm:       vk.FormatR8g8Snorm,
	rhi.PixelFormatRG8Uint:        vk.FormatR8g8Uint,
	rhi.PixelFormatRG8Sint:        vk.FormatR8g8Sint,
	rhi.PixelFormatR32Uint:        vk.FormatR32Uint,
	rhi.PixelFormatR32Sint:        vk.FormatR32Sint,
	rhi.PixelFormatR32Float:       vk.FormatR32Sfloat,
	rhi.PixelFormatRG16Uint:       vk.FormatR16g16Uint,
	rhi.PixelFormatRG16Sint:       vk.FormatR16g16Sint,
	rhi.PixelFormatRG16Float:      vk.FormatR16g16Sfloat,
	rhi.PixelFormatRGBA8Unorm:     vk.FormatR8g8b8a8Unorm,
	rhi.PixelFormatRGBA8UnormSrgb: vk.FormatR8g8b8a8Srgb,
	rhi.PixelFormatRGBA8Snorm:     vk.FormatR8g8b8a8Snorm,
	rhi.PixelFormatRGBA8Uint:      vk.FormatR8g8b8a8Uint,
	rhi.PixelFormatRGBA8Sint:      vk.FormatR8g8b8a8Sint,
	rhi.PixelFormatBGRA8Unorm:     vk.FormatB8g8r8a8Unorm,
	rhi.PixelFormatBGRA8UnormSrgb: vk.FormatB8g8r8a8Srgb,
	rhi.PixelFormatRGB10A2Unorm:   vk.FormatA2b10g10r10UnormPack32,
	rhi.PixelFormatRG11B10Float:   vk.FormatB10g11r11UfloatPack32,
	rhi.PixelFormatRGB9E5Float:    vk.FormatE5b9g9r9UfloatPack32,
	rhi.PixelFormatRG32Uint:       vk.FormatR32g32Uint,
	rhi.PixelFormatRG32Sint:       vk.FormatR32g32Sint,
	rhi.PixelFormatRG32Float:      vk.FormatR32g32Sfloat,
	rhi.PixelFormatRGBA16Uint:     vk.FormatR16g16b16a16Uint,
	rhi.PixelFormatRGBA16Sint:     vk.FormatR16g16b16a16Sint,
	rhi.PixelFormatRGBA16Float:    vk.FormatR16g16b16a16Sfloat,
	rhi.PixelFormatRGBA32Uint:     vk.FormatR32g32b32a32Uint,
	rhi.PixelFormatRGBA32Sint:     vk.FormatR32g32b32a32Sint,
	rhi.PixelFormatRGBA32Float:    vk.FormatR32g32b32a32Sfloat,
	rhi.PixelFormatD16Unorm:       vk.FormatD16Unorm,
	rhi.PixelFormatD24UnormS8Uint: vk.FormatD24UnormS8Uint,
	rhi.PixelFormatD32Float:       vk.FormatD32Sfloat,
	rhi.PixelFormatD32FloatS8Uint: vk.FormatD32SfloatS8Uint,
}

// Format returns the VkFormat of f.
func Format(f rhi.PixelFormat) (vk.Format, error) {
	if !f.IsValid() {
		return vk.FormatUndefined, rhi.InvalidArgument("vulkan.Format", "invalid pixel format %s", f)
	}
	if formats[f] == vk.FormatUndefined {
		return vk.FormatUndefined, rhi.Unsupported("vulkan.Format", "pixel format %s has no Vulkan mapping", f)
	}
	return formats[f], nil
}

// PixelFormatOf is the inverse of Format. Unknown formats return
// PixelFormatUndefined.
func PixelFormatOf(f vk.Format) rhi.PixelFormat {
	if f == vk.FormatUndefined {
		return rhi.PixelFormatUndefined
	}
	for i, vf := range formats {
		if vf == f {
			return rhi.PixelFormat(i)
		}
	}
	return rhi.PixelFormatUndefined
}

// AspectFlags returns the aspect mask of a.
func AspectFlags(a rhi.TextureAspect) vk.ImageAspectFlags {
	switch a {
	case rhi.TextureAspectDepth:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	case rhi.TextureAspectStencil:
		return vk.ImageAspectFlags(vk.ImageAspectStencilBit)
	case rhi.TextureAspectDepthStencil:
		return vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	default:
		return vk.ImageAspectFlags(vk.ImageAspectColorBit)
	}
}

// formatAspects returns every aspect present in f.
func formatAspects(f rhi.PixelFormat) vk.ImageAspectFlags {
	switch {
	case f.HasStencil():
		return AspectFlags(rhi.TextureAspectDepthStencil)
	case f.IsDepthStencil():
		return AspectFlags(rhi.TextureAspectDepth)
	default:
		return AspectFlags(rhi.TextureAspectColor)
	}
}
