// Package dx12 registers the DirectX 12 variant of the RHI.
//
// Importing the package makes rhi.RHITypeDirectX12 available to
// rhi.CreateInstance:
//
//	import _ "github.com/gogpu/rhi/dx12"
//
// The variant accepts DXIL containers only. Pipeline layouts project onto
// root signatures laid out the way the DirectX 12 HAL builds them: space 0
// registers numbered per range type across groups, samplers reached
// through a global sampler table. Layouts with the same binding signature
// share one root signature, and RootSignature.CompileOptions gives the
// DXIL compile options whose registers match it. Command buffers copy bound groups into
// fixed-size scratch descriptor heaps sized by
// rhi.DeviceCreateInfo.ScratchDescriptors.
//
// The native D3D12 execution backend is linked on Windows only. Elsewhere
// the variant runs on an injected backend (rhi.WithHALBackend).
package dx12
