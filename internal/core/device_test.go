package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

// unlinkedVariant asks for an execution backend that is never registered.
type unlinkedVariant struct{ *testVariant }

func (unlinkedVariant) Backend() gputypes.Backend { return gputypes.BackendBrowserWebGPU }

func TestNewInstance(t *testing.T) {
	v := &testVariant{}
	inst, err := NewInstance(v, &rhi.InstanceConfig{Type: v.Type(), HALBackend: noop.API{}})
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	defer inst.Destroy()

	if inst.RHIType() != rhi.RHITypeVulkan {
		t.Errorf("RHIType() = %s, want Vulkan", inst.RHIType())
	}
	if n := inst.GetGpuNum(); n == 0 || n != uint32(len(inst.Gpus())) {
		t.Fatalf("GetGpuNum() = %d, Gpus() has %d", n, len(inst.Gpus()))
	}
	_, err = inst.GetGpu(inst.GetGpuNum())
	wantKind(t, err, rhi.KindInvalidArgument)

	gpu, _ := inst.GetGpu(0)
	if gpu.Instance() != rhi.Instance(inst) {
		t.Error("gpu does not report its instance")
	}
	if gpu.Limits().MaxBindGroups != 4 {
		t.Errorf("MaxBindGroups = %d, want 4", gpu.Limits().MaxBindGroups)
	}
	families := gpu.QueueFamilies()
	if len(families) != int(rhi.QueueTypeCount) {
		t.Fatalf("%d queue families, want %d", len(families), rhi.QueueTypeCount)
	}
	if f := families[rhi.QueueTypeGraphics]; f.Type != rhi.QueueTypeGraphics || f.Count != 2 {
		t.Errorf("graphics family = %+v, want 2 graphics queues", f)
	}

	inst.Destroy()
}

func TestNewInstanceUnlinkedBackend(t *testing.T) {
	v := unlinkedVariant{&testVariant{}}
	_, err := NewInstance(v, &rhi.InstanceConfig{Type: v.Type()})
	wantKind(t, err, rhi.KindUnsupportedFeature)
}

func TestIsFormatSupported(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()
	gpu := d.Gpu()

	tests := []struct {
		name   string
		format rhi.PixelFormat
		usage  rhi.TextureUsageFlags
		want   bool
	}{
		{"sampled color", rhi.PixelFormatRGBA8Unorm, rhi.NewFlags(rhi.TextureUsageTextureBinding), true},
		{"depth target", rhi.PixelFormatD32Float, rhi.NewFlags(rhi.TextureUsageDepthStencilAttachment), true},
		{"color as depth target", rhi.PixelFormatRGBA8Unorm, rhi.NewFlags(rhi.TextureUsageDepthStencilAttachment), false},
		{"depth as color target", rhi.PixelFormatD32Float, rhi.NewFlags(rhi.TextureUsageRenderAttachment), false},
		{"unmapped", rhi.PixelFormatRGB9E5Float, rhi.NewFlags(rhi.TextureUsageTextureBinding), false},
		{"undefined", rhi.PixelFormatUndefined, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gpu.IsFormatSupported(tt.format, tt.usage); got != tt.want {
				t.Errorf("IsFormatSupported(%s) = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}

func TestRequestDevice(t *testing.T) {
	v := &testVariant{}
	inst, err := NewInstance(v, &rhi.InstanceConfig{Type: v.Type(), HALBackend: noop.API{}})
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	defer inst.Destroy()
	gpu, _ := inst.GetGpu(0)

	tests := []struct {
		name     string
		requests []rhi.QueueRequestInfo
		kind     rhi.ErrorKind
	}{
		{"over capacity", []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 3}}, rhi.KindUnsupportedFeature},
		{"zero queues", []rhi.QueueRequestInfo{{Type: rhi.QueueTypeCompute, Num: 0}}, rhi.KindInvalidArgument},
		{"bad type", []rhi.QueueRequestInfo{{Type: rhi.QueueTypeCount, Num: 1}}, rhi.KindInvalidArgument},
		{"duplicate type", []rhi.QueueRequestInfo{
			{Type: rhi.QueueTypeTransfer, Num: 1},
			{Type: rhi.QueueTypeTransfer, Num: 1},
		}, rhi.KindInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{QueueRequests: tt.requests})
			wantKind(t, err, tt.kind)
		})
	}

	dev, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{QueueRequests: []rhi.QueueRequestInfo{
		{Type: rhi.QueueTypeGraphics, Num: 2},
		{Type: rhi.QueueTypeTransfer, Num: 1},
	}})
	if err != nil {
		t.Fatalf("RequestDevice failed: %v", err)
	}
	defer dev.Destroy()

	counts := map[rhi.QueueType]uint32{
		rhi.QueueTypeGraphics: 2,
		rhi.QueueTypeCompute:  0,
		rhi.QueueTypeTransfer: 1,
	}
	for typ, want := range counts {
		if got := dev.GetQueueNum(typ); got != want {
			t.Errorf("GetQueueNum(%s) = %d, want %d", typ, got, want)
		}
	}
	q, err := dev.GetQueue(rhi.QueueTypeGraphics, 1)
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	if q.Type() != rhi.QueueTypeGraphics || q.(*Queue).Index() != 1 {
		t.Errorf("GetQueue returned %s queue %d", q.Type(), q.(*Queue).Index())
	}
	_, err = dev.GetQueue(rhi.QueueTypeCompute, 0)
	wantKind(t, err, rhi.KindInvalidArgument)

	scratch := dev.(*Device).ScratchCapacity()
	if scratch.CbvSrvUav != rhi.DefaultScratchCbvSrvUavCapacity || scratch.Sampler != rhi.DefaultScratchSamplerCapacity {
		t.Errorf("scratch capacity %+v, want defaults", scratch)
	}
}

func TestDestroyedDevice(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	d.Destroy()
	d.Destroy()

	_, err := d.CreateBuffer(&rhi.BufferCreateInfo{Size: 16, Usage: rhi.NewFlags(rhi.BufferUsageVertex)})
	wantKind(t, err, rhi.KindInvalidState)
	_, err = d.CreateFence(false)
	wantKind(t, err, rhi.KindInvalidState)
	_, err = d.CreateCommandBuffer()
	wantKind(t, err, rhi.KindInvalidState)
}

func TestLiveObjects(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	if n := d.LiveObjects(); n != 0 {
		t.Fatalf("fresh device has %d live objects", n)
	}
	buf := mustBuffer(t, d, 64, rhi.BufferUsageUniform)
	tex, view := mustColorTarget(t, d, 8, 8)
	fence, _ := d.CreateFence(false)
	if n := d.LiveObjects(); n != 4 {
		t.Errorf("LiveObjects() = %d, want 4", n)
	}
	view.Destroy()
	tex.Destroy()
	buf.Destroy()
	fence.Destroy()
	if n := d.LiveObjects(); n != 0 {
		t.Errorf("LiveObjects() = %d after destroy, want 0", n)
	}
}

func TestBackendErrorCode(t *testing.T) {
	v := &testVariant{}

	err := backendError(v, "Queue.Submit", fmt.Errorf("submit: %w", hal.ErrDeviceLost))
	wantKind(t, err, rhi.KindBackendError)
	var e *rhi.Error
	if !errors.As(err, &e) || e.Code != -4 {
		t.Fatalf("expected native code -4, got %v", err)
	}
	if !rhi.IsDeviceLost(err) {
		t.Error("device loss not visible through the wrapped error")
	}

	// RHI errors from lower layers keep their kind.
	inner := rhi.InvalidRange("Buffer.Map", "outside")
	if got := backendError(v, "outer", inner); got != inner {
		t.Errorf("backendError rewrapped an RHI error: %v", got)
	}
}

func TestDeviceProvider(t *testing.T) {
	d, _, cleanup := createTestDevice(t, nil)
	defer cleanup()

	p := d.DeviceProvider()
	if p.Device() == nil || p.Queue() == nil || p.Adapter() == nil {
		t.Fatal("provider exposes nil handles")
	}
	if f := p.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		t.Errorf("headless SurfaceFormat() = %v, want Undefined", f)
	}
	mustSwapChain(t, d, mustSurface(t, d), 2)
	if f := p.SurfaceFormat(); f != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want BGRA8Unorm", f)
	}
}
