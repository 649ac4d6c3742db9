package vulkan

import (
	"testing"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

// openDevice creates a Vulkan device with one graphics queue on the noop
// execution backend.
func openDevice(t *testing.T) rhi.Device {
	t.Helper()
	inst, err := rhi.CreateInstance(rhi.RHITypeVulkan, rhi.WithHALBackend(noop.API{}))
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	t.Cleanup(inst.Destroy)

	gpu, err := inst.GetGpu(0)
	if err != nil {
		t.Fatalf("GetGpu failed: %v", err)
	}
	dev, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{
		QueueRequests: []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 1}},
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

const vertexWGSL = `
@vertex
fn main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`

// compileSPIRV compiles src with naga.
func compileSPIRV(t *testing.T, src string) []byte {
	t.Helper()
	code, err := naga.CompileWithOptions(src, naga.CompileOptions{Validate: false})
	if err != nil {
		t.Fatalf("naga compile failed: %v", err)
	}
	return code
}
