package dx12

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

func TestRegistered(t *testing.T) {
	if !rhi.IsBackendRegistered(rhi.RHITypeDirectX12) {
		t.Fatal("DirectX12 variant not registered")
	}
	v := NewVariant()
	if !v.UsesScratchDescriptors() {
		t.Error("DirectX12 must copy bind groups into scratch heaps")
	}
	if !v.AcquireSignalsEagerly() {
		t.Error("DirectX12 acquire must signal eagerly")
	}
	if v.Type() != rhi.RHITypeDirectX12 {
		t.Errorf("Type() = %s", v.Type())
	}
}

func TestBufferProjection(t *testing.T) {
	dev := openDevice(t, rhi.ScratchDescriptorCapacity{})

	tests := []struct {
		name        string
		info        rhi.BufferCreateInfo
		heap        HeapType
		initial     ResourceStates
		descriptors []DescriptorKind
	}{
		{
			name: "uniform upload",
			info: rhi.BufferCreateInfo{Size: 256, Usage: rhi.NewFlags(rhi.BufferUsageUniform, rhi.BufferUsageMapWrite)},
			heap: HeapTypeUpload, initial: StateGenericRead,
			descriptors: []DescriptorKind{DescriptorCBV},
		},
		{
			name: "readback",
			info: rhi.BufferCreateInfo{Size: 256, Usage: rhi.NewFlags(rhi.BufferUsageMapRead, rhi.BufferUsageCopyDst)},
			heap: HeapTypeReadback, initial: StateCopyDest,
		},
		{
			name: "storage",
			info: rhi.BufferCreateInfo{
				Size:         256,
				Usage:        rhi.NewFlags(rhi.BufferUsageStorage, rhi.BufferUsageUniform),
				InitialState: rhi.BufferStateStorage,
			},
			heap: HeapTypeDefault, initial: StateUnorderedAccess,
			descriptors: []DescriptorKind{DescriptorCBV, DescriptorUAV},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := dev.CreateBuffer(&tt.info)
			if err != nil {
				t.Fatalf("CreateBuffer failed: %v", err)
			}
			defer buf.Destroy()
			desc, ok := BufferInfo(buf)
			if !ok {
				t.Fatal("buffer carries no D3D12 description")
			}
			if desc.Heap != tt.heap || desc.InitialState != tt.initial {
				t.Errorf("heap %d state %#x, want %d %#x", desc.Heap, desc.InitialState, tt.heap, tt.initial)
			}
			if desc.States != BufferResourceStates(tt.info.Usage) {
				t.Errorf("States = %#x", desc.States)
			}
			if !slices.Equal(desc.Descriptors, tt.descriptors) {
				t.Errorf("Descriptors = %v, want %v", desc.Descriptors, tt.descriptors)
			}
		})
	}
}

func TestTextureProjection(t *testing.T) {
	dev := openDevice(t, rhi.ScratchDescriptorCapacity{})

	tex, err := dev.CreateTexture(&rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1},
		Format:    rhi.PixelFormatRGBA8Unorm,
		Usage: rhi.NewFlags(rhi.TextureUsageTextureBinding, rhi.TextureUsageStorageBinding,
			rhi.TextureUsageRenderAttachment),
		InitialState: rhi.TextureStateShaderReadOnly,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Destroy()

	desc, ok := TextureInfo(tex)
	if !ok {
		t.Fatal("texture carries no D3D12 description")
	}
	if desc.Format != FormatR8G8B8A8Unorm {
		t.Errorf("Format = %d", desc.Format)
	}
	if desc.InitialState != StateShaderResource {
		t.Errorf("InitialState = %#x", desc.InitialState)
	}
	want := []DescriptorKind{DescriptorSRV, DescriptorUAV, DescriptorRTV}
	if !slices.Equal(desc.Descriptors, want) {
		t.Errorf("Descriptors = %v, want %v", desc.Descriptors, want)
	}
}

func TestScratchExhaustion(t *testing.T) {
	dev := openDevice(t, rhi.ScratchDescriptorCapacity{CbvSrvUav: 2, Sampler: 1})

	layout := mustLayout(t, dev, 0, entry(rhi.BindingTypeUniformBuffer, 0, rhi.ShaderStageCompute))
	buf, err := dev.CreateBuffer(&rhi.BufferCreateInfo{Size: 256, Usage: rhi.NewFlags(rhi.BufferUsageUniform)})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	view, err := buf.CreateBufferView(&rhi.BufferViewCreateInfo{Type: rhi.BufferViewTypeUniformBinding})
	if err != nil {
		t.Fatalf("CreateBufferView failed: %v", err)
	}
	group, err := dev.CreateBindGroup(&rhi.BindGroupCreateInfo{
		Layout: layout,
		Entries: []rhi.BindGroupEntry{{
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0},
			Buffer:  view,
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup failed: %v", err)
	}

	cmd, err := dev.CreateCommandBuffer()
	if err != nil {
		t.Fatalf("CreateCommandBuffer failed: %v", err)
	}
	record := func() (rhi.CommandRecorder, rhi.ComputePassCommandRecorder) {
		t.Helper()
		rec, err := cmd.Begin()
		if err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
		pass, err := rec.BeginComputePass()
		if err != nil {
			t.Fatalf("BeginComputePass failed: %v", err)
		}
		return rec, pass
	}

	rec, pass := record()
	for i := 0; i < 2; i++ {
		if err := pass.SetBindGroup(0, group); err != nil {
			t.Fatalf("SetBindGroup %d failed: %v", i, err)
		}
	}
	wantKind(t, pass.SetBindGroup(0, group), rhi.KindResourceExhausted)
	if views, samplers := ScratchUsage(cmd); views != 2 || samplers != 0 {
		t.Errorf("ScratchUsage = %d, %d; want 2, 0", views, samplers)
	}
	if err := pass.EndPass(); err != nil {
		t.Fatalf("EndPass failed: %v", err)
	}
	if err := rec.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	// Begin rewinds the arenas.
	if err := cmd.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	_, pass = record()
	if views, _ := ScratchUsage(cmd); views != 0 {
		t.Errorf("ScratchUsage after Begin = %d, want 0", views)
	}
	if err := pass.SetBindGroup(0, group); err != nil {
		t.Errorf("SetBindGroup after Begin failed: %v", err)
	}
}

func TestShaderModuleBytecode(t *testing.T) {
	dev := openDevice(t, rhi.ScratchDescriptorCapacity{})
	blob := compileDXIL(t, fragmentWGSL)

	m, err := dev.CreateShaderModule(&rhi.ShaderModuleCreateInfo{ByteCode: blob, ByteCodeType: rhi.ByteCodeTypeDXIL})
	if err != nil {
		t.Fatalf("CreateShaderModule(DXIL) failed: %v", err)
	}
	if m.ByteCodeType() != rhi.ByteCodeTypeDXIL {
		t.Errorf("ByteCodeType() = %s, want DXIL", m.ByteCodeType())
	}
	m.Destroy()

	corrupt := slices.Clone(blob)
	copy(corrupt, "XXXX")
	tests := []struct {
		name string
		info rhi.ShaderModuleCreateInfo
		kind rhi.ErrorKind
	}{
		{"metal", rhi.ShaderModuleCreateInfo{ByteCode: blob, ByteCodeType: rhi.ByteCodeTypeMBC}, rhi.KindUnsupportedFeature},
		{"bad container magic", rhi.ShaderModuleCreateInfo{ByteCode: corrupt, ByteCodeType: rhi.ByteCodeTypeDXIL}, rhi.KindInvalidArgument},
		{"truncated container", rhi.ShaderModuleCreateInfo{ByteCode: blob[:16], ByteCodeType: rhi.ByteCodeTypeDXIL}, rhi.KindInvalidArgument},
		{"spirv", rhi.ShaderModuleCreateInfo{ByteCode: compileSPIRV(t, fragmentWGSL), ByteCodeType: rhi.ByteCodeTypeSPIRV}, rhi.KindUnsupportedFeature},
		{"dxil as spirv", rhi.ShaderModuleCreateInfo{ByteCode: blob, ByteCodeType: rhi.ByteCodeTypeSPIRV}, rhi.KindUnsupportedFeature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dev.CreateShaderModule(&tt.info)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestAcquireSignalsEagerly(t *testing.T) {
	dev := openDevice(t, rhi.ScratchDescriptorCapacity{})
	q, err := dev.GetQueue(rhi.QueueTypeGraphics, 0)
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	surface, err := dev.CreateSurface(&rhi.SurfaceCreateInfo{Window: 1})
	if err != nil {
		t.Fatalf("CreateSurface failed: %v", err)
	}
	sc, err := dev.CreateSwapChain(&rhi.SwapChainCreateInfo{
		PresentQueue: q,
		Surface:      surface,
		TextureNum:   2,
		Format:       rhi.PixelFormatBGRA8Unorm,
		Extent:       rhi.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		PresentMode:  rhi.PresentModeImmediately,
	})
	if err != nil {
		t.Fatalf("CreateSwapChain failed: %v", err)
	}
	defer sc.Destroy()

	sem, err := dev.CreateSemaphore()
	if err != nil {
		t.Fatalf("CreateSemaphore failed: %v", err)
	}
	if _, err := sc.AcquireBackTexture(sem); err != nil {
		t.Fatalf("AcquireBackTexture failed: %v", err)
	}
	if !sem.IsSignaled() {
		t.Error("acquire semaphore not signaled on return")
	}
}

func TestResultCode(t *testing.T) {
	tests := []struct {
		err  error
		want HRESULT
	}{
		{hal.ErrDeviceLost, DXGIErrorDeviceRemoved},
		{hal.ErrDeviceOutOfMemory, EOutOfMemory},
		{hal.ErrTimeout, DXGIErrorWaitTimeout},
		{errors.New("driver exploded"), EFail},
	}
	v := NewVariant()
	for _, tt := range tests {
		if got := ResultCode(tt.err); got != tt.want {
			t.Errorf("ResultCode(%v) = %#x, want %#x", tt.err, uint32(got), uint32(tt.want))
		}
		if got := v.ResultCode(tt.err); got != tt.want.Code() || got >= 0 {
			t.Errorf("Variant.ResultCode(%v) = %d, want negative %d", tt.err, got, tt.want.Code())
		}
	}
	if !EFail.Failed() || SOK.Failed() {
		t.Error("Failed() misreports severity")
	}
}
