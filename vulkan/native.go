package vulkan

import (
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/rhi"
)

// BufferDesc is the native description kept on every Vulkan buffer.
type BufferDesc struct {
	Usage  vk.BufferUsageFlags
	Memory vk.MemoryPropertyFlags
	Access BufferAccess
}

// ImageDesc is the native description kept on every Vulkan texture.
type ImageDesc struct {
	Format vk.Format
	Usage  vk.ImageUsageFlags
	Aspect vk.ImageAspectFlags
	State  ImageState
}

type native interface{ Native() any }

func nativeOf[T any](obj any) (T, bool) {
	var zero T
	n, ok := obj.(native)
	if !ok {
		return zero, false
	}
	v, ok := n.Native().(T)
	return v, ok
}

// BufferInfo returns the native description of b.
func BufferInfo(b rhi.Buffer) (BufferDesc, bool) { return nativeOf[BufferDesc](b) }

// ImageInfo returns the native description of t.
func ImageInfo(t rhi.Texture) (ImageDesc, bool) { return nativeOf[ImageDesc](t) }

// SetLayoutOf returns the descriptor set layout of l.
func SetLayoutOf(l rhi.BindGroupLayout) (*SetLayout, bool) { return nativeOf[*SetLayout](l) }

// PipelineLayoutOf returns the projection of l.
func PipelineLayoutOf(l rhi.PipelineLayout) (*PipelineLayout, bool) {
	return nativeOf[*PipelineLayout](l)
}

// Barriers returns the translated barriers recorded on cmd since its last
// Begin, in order.
func Barriers(cmd rhi.CommandBuffer) []any {
	r, ok := cmd.(interface{ Barriers() []any })
	if !ok {
		return nil
	}
	return r.Barriers()
}
