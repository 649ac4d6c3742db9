package dx12

import "github.com/gogpu/rhi"

// BufferDesc is the native description kept on every D3D12 buffer.
// States is every state the buffer's usage allows.
type BufferDesc struct {
	Heap         HeapType
	InitialState ResourceStates
	States       ResourceStates
	Descriptors  []DescriptorKind
}

// TextureDesc is the native description kept on every D3D12 texture.
type TextureDesc struct {
	Format       DXGIFormat
	InitialState ResourceStates
	States       ResourceStates
	Descriptors  []DescriptorKind
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

// TextureInfo returns the native description of t.
func TextureInfo(t rhi.Texture) (TextureDesc, bool) { return nativeOf[TextureDesc](t) }

// TableLayoutOf returns the descriptor table layout of l.
func TableLayoutOf(l rhi.BindGroupLayout) (*TableLayout, bool) { return nativeOf[*TableLayout](l) }

// RootSignatureOf returns the root signature of l.
func RootSignatureOf(l rhi.PipelineLayout) (*RootSignature, bool) {
	return nativeOf[*RootSignature](l)
}

// Barriers returns the translated barriers recorded on cmd since its last
// Begin, in order. Each element is a Barrier.
func Barriers(cmd rhi.CommandBuffer) []Barrier {
	r, ok := cmd.(interface{ Barriers() []any })
	if !ok {
		return nil
	}
	out := make([]Barrier, 0, len(r.Barriers()))
	for _, b := range r.Barriers() {
		out = append(out, b.(Barrier))
	}
	return out
}

// ScratchUsage returns the scratch CBV/SRV/UAV and sampler descriptors
// cmd has allocated since its last Begin.
func ScratchUsage(cmd rhi.CommandBuffer) (cbvSrvUav, samplers uint32) {
	r, ok := cmd.(interface{ ScratchUsage() (uint32, uint32) })
	if !ok {
		return 0, 0
	}
	return r.ScratchUsage()
}
