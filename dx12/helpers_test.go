package dx12

import (
	"testing"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/dxil"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

// openDevice creates a DirectX12 device with one graphics queue on the
// noop execution backend.
func openDevice(t *testing.T, scratch rhi.ScratchDescriptorCapacity) rhi.Device {
	t.Helper()
	inst, err := rhi.CreateInstance(rhi.RHITypeDirectX12, rhi.WithHALBackend(noop.API{}))
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	t.Cleanup(inst.Destroy)

	gpu, err := inst.GetGpu(0)
	if err != nil {
		t.Fatalf("GetGpu failed: %v", err)
	}
	dev, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{
		QueueRequests:      []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 1}},
		ScratchDescriptors: scratch,
	})
	if err != nil {
		t.Fatalf("RequestDevice failed: %v", err)
	}
	t.Cleanup(dev.Destroy)
	return dev
}

func wantKind(t *testing.T, err error, kind rhi.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := rhi.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}

func mustLayout(t *testing.T, dev rhi.Device, index uint32, entries ...rhi.BindGroupLayoutEntry) rhi.BindGroupLayout {
	t.Helper()
	l, err := dev.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{LayoutIndex: index, Entries: entries})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	return l
}

func entry(typ rhi.BindingType, slot uint32, stages ...rhi.ShaderStageBits) rhi.BindGroupLayoutEntry {
	return rhi.BindGroupLayoutEntry{
		Binding:          rhi.ResourceBinding{Type: typ, Slot: slot},
		ShaderVisibility: rhi.NewFlags(stages...),
	}
}

const fragmentWGSL = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

// compileDXIL compiles the first entry point of src to a DXIL container.
func compileDXIL(t *testing.T, src string) []byte {
	t.Helper()
	ast, err := naga.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	blob, err := dxil.Compile(module, dxil.DefaultOptions())
	if err != nil {
		t.Fatalf("dxil compile: %v", err)
	}
	return blob
}

func compileSPIRV(t *testing.T, src string) []byte {
	t.Helper()
	code, err := naga.CompileWithOptions(src, naga.CompileOptions{Validate: false})
	if err != nil {
		t.Fatalf("naga compile failed: %v", err)
	}
	return code
}
