package core

import (
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rhi"
)

// testVariant is a minimal Variant for exercising the shared object model
// on the noop backend.
type testVariant struct {
	scratch bool
	eager   bool

	projected atomic.Int32
}

func (v *testVariant) Type() rhi.RHIType          { return rhi.RHITypeVulkan }
func (v *testVariant) Backend() gputypes.Backend { return gputypes.BackendEmpty }

func (v *testVariant) QueueCapacity(t rhi.QueueType) uint32 {
	if t == rhi.QueueTypeGraphics {
		return 2
	}
	return 1
}

func (v *testVariant) SupportsFormat(f rhi.PixelFormat) bool {
	return f.IsValid() && f != rhi.PixelFormatRGB9E5Float
}

func (v *testVariant) ShaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error) {
	if info.ByteCodeType != rhi.ByteCodeTypeSPIRV {
		return hal.ShaderSource{}, rhi.Unsupported("test", "bytecode %s", info.ByteCodeType)
	}
	words, err := SPIRVWords(info.ByteCode)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}

func (v *testVariant) ProjectBuffer(info *rhi.BufferCreateInfo) (any, error) { return info.Usage, nil }

func (v *testVariant) ProjectTexture(info *rhi.TextureCreateInfo) (any, error) { return info.Format, nil }

func (v *testVariant) ProjectBindGroupLayout(info *rhi.BindGroupLayoutCreateInfo) (any, error) {
	v.projected.Add(1)
	return len(info.Entries), nil
}

func (v *testVariant) ProjectPipelineLayout(groups []*BindGroupLayout, _ []rhi.PipelineConstantLayout) (any, error) {
	return len(groups), nil
}

func (v *testVariant) TranslateBarrier(b *rhi.Barrier) (any, error) { return *b, nil }

func (v *testVariant) UsesScratchDescriptors() bool { return v.scratch }
func (v *testVariant) AcquireSignalsEagerly() bool  { return v.eager }

func (v *testVariant) ResultCode(err error) int64 {
	if errors.Is(err, hal.ErrDeviceLost) {
		return -4
	}
	return 0
}

// heldQueue lets a test stop submissions from completing.
type heldQueue struct {
	hal.Queue
	held atomic.Bool
	at   atomic.Uint64

	presentErr error
}

func (q *heldQueue) PollCompleted() uint64 {
	if q.held.Load() {
		return q.at.Load()
	}
	return q.Queue.PollCompleted()
}

// hold freezes the completed index at its current value.
func (q *heldQueue) hold() {
	q.at.Store(q.Queue.PollCompleted())
	q.held.Store(true)
}

func (q *heldQueue) release() { q.held.Store(false) }

// Present fails with presentErr while it is set.
func (q *heldQueue) Present(s hal.Surface, t hal.SurfaceTexture, damage []image.Rectangle) error {
	if q.presentErr != nil {
		return q.presentErr
	}
	return q.Queue.Present(s, t, damage)
}

type heldAPI struct {
	noop.API
	queue *heldQueue
}

func (a heldAPI) CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error) {
	inst, err := a.API.CreateInstance(desc)
	if err != nil {
		return nil, err
	}
	return heldInstance{Instance: inst, queue: a.queue}, nil
}

type heldInstance struct {
	hal.Instance
	queue *heldQueue
}

func (i heldInstance) EnumerateAdapters(surface hal.Surface) []hal.ExposedAdapter {
	adapters := i.Instance.EnumerateAdapters(surface)
	for n := range adapters {
		adapters[n].Adapter = heldAdapter{Adapter: adapters[n].Adapter, queue: i.queue}
	}
	return adapters
}

type heldAdapter struct {
	hal.Adapter
	queue *heldQueue
}

func (a heldAdapter) Open(features gputypes.Features, limits gputypes.Limits) (hal.OpenDevice, error) {
	open, err := a.Adapter.Open(features, limits)
	if err != nil {
		return open, err
	}
	a.queue.Queue = open.Queue
	open.Queue = a.queue
	return open, nil
}

// createTestDevice opens a device with one graphics queue on the noop
// backend. The returned queue controls completion.
func createTestDevice(t *testing.T, v *testVariant) (*Device, *heldQueue, func()) {
	t.Helper()
	if v == nil {
		v = &testVariant{}
	}
	hq := &heldQueue{}
	inst, err := NewInstance(v, &rhi.InstanceConfig{
		Type:       v.Type(),
		HALBackend: heldAPI{queue: hq},
	})
	if err != nil {
		t.Fatalf("NewInstance failed: %v", err)
	}
	gpu, err := inst.GetGpu(0)
	if err != nil {
		t.Fatalf("GetGpu failed: %v", err)
	}
	dev, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{
		QueueRequests: []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 1}},
		ScratchDescriptors: rhi.ScratchDescriptorCapacity{
			CbvSrvUav: 8,
			Sampler:   2,
		},
	})
	if err != nil {
		t.Fatalf("RequestDevice failed: %v", err)
	}
	return dev.(*Device), hq, func() {
		dev.Destroy()
		inst.Destroy()
	}
}

// wantKind fails the test unless err carries kind.
func wantKind(t *testing.T, err error, kind rhi.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := rhi.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}

func mustBuffer(t *testing.T, d *Device, size uint64, usage ...rhi.BufferUsageBits) *Buffer {
	t.Helper()
	b, err := d.CreateBuffer(&rhi.BufferCreateInfo{Size: size, Usage: rhi.NewFlags(usage...)})
	if err != nil {
		t.Fatalf("CreateBuffer failed: %v", err)
	}
	return b.(*Buffer)
}

func mustTexture(t *testing.T, d *Device, info rhi.TextureCreateInfo) *Texture {
	t.Helper()
	tex, err := d.CreateTexture(&info)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	return tex.(*Texture)
}

func mustColorTarget(t *testing.T, d *Device, w, h uint32) (*Texture, *TextureView) {
	t.Helper()
	tex := mustTexture(t, d, rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format:    rhi.PixelFormatRGBA8Unorm,
		Usage:     rhi.NewFlags(rhi.TextureUsageRenderAttachment, rhi.TextureUsageCopySrc),
	})
	v, err := tex.CreateTextureView(&rhi.TextureViewCreateInfo{
		Dimension: rhi.TextureViewDimension2D,
		Type:      rhi.TextureViewTypeColorAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	return tex, v.(*TextureView)
}

// spirvStub is a bare SPIR-V module header.
var spirvStub = []byte{
	0x03, 0x02, 0x23, 0x07, // magic
	0x00, 0x00, 0x01, 0x00, // version 1.0
	0x00, 0x00, 0x00, 0x00, // generator
	0x01, 0x00, 0x00, 0x00, // bound
	0x00, 0x00, 0x00, 0x00, // schema
}

func mustShader(t *testing.T, d *Device) *ShaderModule {
	t.Helper()
	m, err := d.CreateShaderModule(&rhi.ShaderModuleCreateInfo{ByteCode: spirvStub, ByteCodeType: rhi.ByteCodeTypeSPIRV})
	if err != nil {
		t.Fatalf("CreateShaderModule failed: %v", err)
	}
	return m.(*ShaderModule)
}

// uniformLayout creates a layout with one uniform buffer at slot 0 of
// group index.
func uniformLayout(t *testing.T, d *Device, index uint32) *BindGroupLayout {
	t.Helper()
	l, err := d.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		LayoutIndex: index,
		Entries: []rhi.BindGroupLayoutEntry{{
			Binding:          rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0},
			ShaderVisibility: rhi.NewFlags(rhi.ShaderStageVertex, rhi.ShaderStagePixel, rhi.ShaderStageCompute),
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroupLayout failed: %v", err)
	}
	return l.(*BindGroupLayout)
}

func uniformGroup(t *testing.T, d *Device, layout *BindGroupLayout, buf *Buffer) *BindGroup {
	t.Helper()
	view, err := buf.CreateBufferView(&rhi.BufferViewCreateInfo{Type: rhi.BufferViewTypeUniformBinding})
	if err != nil {
		t.Fatalf("CreateBufferView failed: %v", err)
	}
	g, err := d.CreateBindGroup(&rhi.BindGroupCreateInfo{
		Layout: layout,
		Entries: []rhi.BindGroupEntry{{
			Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0},
			Buffer:  view,
		}},
	})
	if err != nil {
		t.Fatalf("CreateBindGroup failed: %v", err)
	}
	return g.(*BindGroup)
}

func pipelineLayout(t *testing.T, d *Device, groups ...*BindGroupLayout) *PipelineLayout {
	t.Helper()
	ls := make([]rhi.BindGroupLayout, len(groups))
	for i, g := range groups {
		ls[i] = g
	}
	l, err := d.CreatePipelineLayout(&rhi.PipelineLayoutCreateInfo{BindGroupLayouts: ls})
	if err != nil {
		t.Fatalf("CreatePipelineLayout failed: %v", err)
	}
	return l.(*PipelineLayout)
}

func trianglePipeline(t *testing.T, d *Device, layout *PipelineLayout) *GraphicsPipeline {
	t.Helper()
	sh := mustShader(t, d)
	p, err := d.CreateGraphicsPipeline(&rhi.GraphicsPipelineCreateInfo{
		Layout:           layout,
		VertexShader:     sh,
		PixelShader:      sh,
		VertexEntryPoint: "vs_main",
		PixelEntryPoint:  "fs_main",
		PrimitiveState:   rhi.PrimitiveState{Topology: rhi.PrimitiveTopologyTriangleList},
		FragmentState: rhi.FragmentState{ColorTargets: []rhi.ColorTargetState{{
			Format:     rhi.PixelFormatRGBA8Unorm,
			WriteFlags: rhi.ColorWriteAll,
		}}},
	})
	if err != nil {
		t.Fatalf("CreateGraphicsPipeline failed: %v", err)
	}
	return p.(*GraphicsPipeline)
}
