package core

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/cache"
)

// Device implements rhi.Device over a HAL device and its single queue.
//
// Every rhi.Queue of the device fronts the same HAL queue. Submission
// order is FIFO across all of them.
//
// Lock order: object locks (fence, semaphore, swap chain) may be taken
// while holding submitMu, never the other way around.
type Device struct {
	gpu     *Gpu
	variant Variant
	log     *slog.Logger
	hal     hal.Device
	queue   hal.Queue
	scratch rhi.ScratchDescriptorCapacity

	// layouts memoizes bind group layout projections by signature.
	layouts *cache.Sharded[string, any]

	queues [rhi.QueueTypeCount][]*Queue

	submitMu       sync.Mutex
	lastSubmission uint64

	live          atomic.Int64
	surfaceFormat atomic.Uint32

	mu        sync.Mutex
	destroyed bool
}

func newDevice(g *Gpu, open hal.OpenDevice, info *rhi.DeviceCreateInfo, requested [rhi.QueueTypeCount]uint32) *Device {
	d := &Device{
		gpu:     g,
		variant: g.inst.variant,
		log:     g.inst.log,
		hal:     open.Device,
		queue:   open.Queue,
		scratch: info.ScratchDescriptors,
		layouts: cache.New[string, any](0, cache.StringHasher),
	}
	if d.scratch.CbvSrvUav == 0 {
		d.scratch.CbvSrvUav = rhi.DefaultScratchCbvSrvUavCapacity
	}
	if d.scratch.Sampler == 0 {
		d.scratch.Sampler = rhi.DefaultScratchSamplerCapacity
	}
	for t, n := range requested {
		for i := range n {
			d.queues[t] = append(d.queues[t], &Queue{dev: d, typ: rhi.QueueType(t), index: i})
		}
	}
	d.log.Info("rhi: device created",
		"gpu", g.exposed.Info.Name,
		"graphicsQueues", requested[rhi.QueueTypeGraphics],
		"computeQueues", requested[rhi.QueueTypeCompute],
		"transferQueues", requested[rhi.QueueTypeTransfer])
	return d
}

// Variant returns the backend hooks of the device.
func (d *Device) Variant() Variant { return d.variant }

// ScratchCapacity returns the per-command-buffer scratch arena sizes.
func (d *Device) ScratchCapacity() rhi.ScratchDescriptorCapacity { return d.scratch }

// Gpu implements rhi.Device.
func (d *Device) Gpu() rhi.Gpu { return d.gpu }

// GetQueueNum implements rhi.Device.
func (d *Device) GetQueueNum(t rhi.QueueType) uint32 {
	if t >= rhi.QueueTypeCount {
		return 0
	}
	return uint32(len(d.queues[t]))
}

// GetQueue implements rhi.Device.
func (d *Device) GetQueue(t rhi.QueueType, index uint32) (rhi.Queue, error) {
	const op = "Device.GetQueue"
	if t >= rhi.QueueTypeCount {
		return nil, rhi.InvalidArgument(op, "invalid queue type %d", t)
	}
	if index >= uint32(len(d.queues[t])) {
		return nil, rhi.InvalidArgument(op, "%s queue index %d out of range [0, %d)", t, index, len(d.queues[t]))
	}
	return d.queues[t][index], nil
}

// WaitIdle implements rhi.Device.
func (d *Device) WaitIdle() error {
	if err := d.hal.WaitIdle(); err != nil {
		return backendError(d.variant, "Device.WaitIdle", err)
	}
	return nil
}

// Destroy implements rhi.Device. It waits for outstanding work first.
func (d *Device) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true

	if err := d.hal.WaitIdle(); err != nil {
		d.log.Warn("rhi: wait idle before device destroy failed", "err", err)
	}
	if n := d.live.Load(); n > 0 {
		d.log.Warn("rhi: device destroyed with live objects", "count", n)
	}
	d.hal.Destroy()
	d.log.Info("rhi: device destroyed")
}

// checkAlive fails with InvalidState once the device is destroyed.
func (d *Device) checkAlive(op string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return rhi.InvalidState(op, "device is destroyed")
	}
	return nil
}

func (d *Device) track()   { d.live.Add(1) }
func (d *Device) untrack() { d.live.Add(-1) }

// LiveObjects returns the number of created objects not yet destroyed.
func (d *Device) LiveObjects() int64 { return d.live.Load() }

// =============================================================================
// Submission tracking
// =============================================================================

// submitLocked hands command buffers to the HAL queue and returns the submission
// index. Callers hold submitMu.
func (d *Device) submitLocked(op string, cmds []hal.CommandBuffer) (uint64, error) {
	idx, err := d.queue.Submit(cmds)
	if err != nil {
		return 0, backendError(d.variant, op, err)
	}
	d.lastSubmission = idx
	return idx, nil
}

// completed returns the highest submission index known to be complete.
func (d *Device) completed() uint64 {
	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	return d.queue.PollCompleted()
}

// =============================================================================
// gpucontext interop
// =============================================================================

// DeviceProvider implements rhi.Device.
func (d *Device) DeviceProvider() gpucontext.DeviceProvider {
	return provider{d: d}
}

type provider struct{ d *Device }

func (p provider) Device() gpucontext.Device   { return p.d.hal }
func (p provider) Queue() gpucontext.Queue     { return p.d.queue }
func (p provider) Adapter() gpucontext.Adapter { return p.d.gpu.exposed.Adapter }

// SurfaceFormat returns the format of the most recently created swap
// chain, or Undefined when headless.
func (p provider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormat(p.d.surfaceFormat.Load())
}

func (p provider) AdapterInfo() gpucontext.AdapterInfo {
	info := p.d.gpu.exposed.Info
	t := gpucontext.AdapterTypeUnknown
	switch info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: info.Name, Type: t}
}
