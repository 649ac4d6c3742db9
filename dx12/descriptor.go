package dx12

import (
	"fmt"

	"github.com/gogpu/rhi"
)

// DescriptorKind names a persistent descriptor created with a resource.
type DescriptorKind uint8

const (
	DescriptorCBV DescriptorKind = iota
	DescriptorSRV
	DescriptorUAV
	DescriptorRTV
	DescriptorDSV
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorCBV:
		return "CBV"
	case DescriptorSRV:
		return "SRV"
	case DescriptorUAV:
		return "UAV"
	case DescriptorRTV:
		return "RTV"
	case DescriptorDSV:
		return "DSV"
	}
	return fmt.Sprintf("DescriptorKind(%d)", uint8(k))
}

// BufferDescriptors returns the views created eagerly for a buffer.
func BufferDescriptors(usage rhi.BufferUsageFlags) []DescriptorKind {
	var out []DescriptorKind
	if usage.Has(rhi.BufferUsageUniform) {
		out = append(out, DescriptorCBV)
	}
	if usage.Has(rhi.BufferUsageStorage) {
		out = append(out, DescriptorUAV)
	}
	return out
}

// TextureDescriptors returns the views created eagerly for a texture.
func TextureDescriptors(usage rhi.TextureUsageFlags) []DescriptorKind {
	var out []DescriptorKind
	if usage.Has(rhi.TextureUsageTextureBinding) {
		out = append(out, DescriptorSRV)
	}
	if usage.Has(rhi.TextureUsageStorageBinding) {
		out = append(out, DescriptorUAV)
	}
	if usage.Has(rhi.TextureUsageRenderAttachment) {
		out = append(out, DescriptorRTV)
	}
	if usage.Has(rhi.TextureUsageDepthStencilAttachment) {
		out = append(out, DescriptorDSV)
	}
	return out
}
