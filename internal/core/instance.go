package core

import (
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// Instance implements rhi.Instance over a HAL instance.
type Instance struct {
	variant Variant
	cfg     rhi.InstanceConfig
	log     *slog.Logger
	backend hal.Backend
	hal     hal.Instance
	gpus    []*Gpu

	mu        sync.Mutex
	destroyed bool
}

// NewInstance opens the HAL backend selected by cfg (or the variant's
// platform backend) and enumerates its adapters.
func NewInstance(v Variant, cfg *rhi.InstanceConfig) (*Instance, error) {
	const op = "CreateInstance"

	log := cfg.Logger
	if log == nil {
		log = rhi.Logger()
	}

	backend := cfg.HALBackend
	if backend == nil {
		b, ok := hal.GetBackend(v.Backend())
		if !ok {
			return nil, rhi.Unsupported(op, "%s execution backend is not linked into this build", v.Type())
		}
		backend = b
	}

	flags := gputypes.InstanceFlagsNone
	if cfg.Debug {
		flags |= gputypes.InstanceFlagsDebug
	}
	if cfg.Validation {
		flags |= gputypes.InstanceFlagsValidation
	}

	hi, err := backend.CreateInstance(&hal.InstanceDescriptor{
		Backends: gputypes.Backends(1) << backend.Variant(),
		Flags:    flags,
	})
	if err != nil {
		return nil, backendError(v, op, err)
	}

	inst := &Instance{
		variant: v,
		cfg:     *cfg,
		log:     log.With("rhi", v.Type().String()),
		backend: backend,
		hal:     hi,
	}

	adapters := hi.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		hi.Destroy()
		return nil, rhi.Unsupported(op, "no adapters found on %s", v.Type())
	}
	inst.gpus = make([]*Gpu, len(adapters))
	for i := range adapters {
		inst.gpus[i] = &Gpu{inst: inst, index: uint32(i), exposed: adapters[i]}
		inst.log.Debug("rhi: gpu enumerated",
			"index", i,
			"name", adapters[i].Info.Name,
			"type", gpuType(adapters[i].Info.DeviceType).String())
	}
	return inst, nil
}

// Variant returns the backend hooks of the instance.
func (i *Instance) Variant() Variant { return i.variant }

// RHIType implements rhi.Instance.
func (i *Instance) RHIType() rhi.RHIType { return i.variant.Type() }

// GetGpuNum implements rhi.Instance.
func (i *Instance) GetGpuNum() uint32 { return uint32(len(i.gpus)) }

// GetGpu implements rhi.Instance.
func (i *Instance) GetGpu(index uint32) (rhi.Gpu, error) {
	if index >= uint32(len(i.gpus)) {
		return nil, rhi.InvalidArgument("Instance.GetGpu", "gpu index %d out of range [0, %d)", index, len(i.gpus))
	}
	return i.gpus[index], nil
}

// Gpus implements rhi.Instance.
func (i *Instance) Gpus() []rhi.Gpu {
	out := make([]rhi.Gpu, len(i.gpus))
	for k, g := range i.gpus {
		out[k] = g
	}
	return out
}

// Destroy implements rhi.Instance.
func (i *Instance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.destroyed {
		return
	}
	i.destroyed = true
	for _, g := range i.gpus {
		g.exposed.Adapter.Destroy()
	}
	i.hal.Destroy()
	i.log.Info("rhi: instance destroyed")
}

// =============================================================================
// Gpu
// =============================================================================

// Gpu implements rhi.Gpu over a HAL adapter.
type Gpu struct {
	inst    *Instance
	index   uint32
	exposed hal.ExposedAdapter
}

// Instance implements rhi.Gpu.
func (g *Gpu) Instance() rhi.Instance { return g.inst }

// GetProperty implements rhi.Gpu.
func (g *Gpu) GetProperty() rhi.GpuProperty {
	info := g.exposed.Info
	return rhi.GpuProperty{
		Name:     info.Name,
		Vendor:   info.Vendor,
		VendorID: info.VendorID,
		DeviceID: info.DeviceID,
		Type:     gpuType(info.DeviceType),
		Driver:   info.Driver,
	}
}

// Limits implements rhi.Gpu.
func (g *Gpu) Limits() rhi.Limits {
	return limits(g.exposed.Capabilities.Limits)
}

// QueueFamilies implements rhi.Gpu.
func (g *Gpu) QueueFamilies() []rhi.QueueFamily {
	families := make([]rhi.QueueFamily, 0, rhi.QueueTypeCount)
	for t := rhi.QueueType(0); t < rhi.QueueTypeCount; t++ {
		families = append(families, rhi.QueueFamily{Type: t, Count: g.inst.variant.QueueCapacity(t)})
	}
	return families
}

// IsFormatSupported implements rhi.Gpu.
func (g *Gpu) IsFormatSupported(format rhi.PixelFormat, usage rhi.TextureUsageFlags) bool {
	if !format.IsValid() || !g.inst.variant.SupportsFormat(format) {
		return false
	}
	if usage.Has(rhi.TextureUsageDepthStencilAttachment) && !format.IsDepthStencil() {
		return false
	}
	if usage.Has(rhi.TextureUsageRenderAttachment) && format.IsDepthStencil() {
		return false
	}

	caps := g.exposed.Adapter.TextureFormatCapabilities(TextureFormat(format)).Flags
	need := hal.TextureFormatCapabilityFlags(0)
	if usage.Has(rhi.TextureUsageTextureBinding) {
		need |= hal.TextureFormatCapabilitySampled
	}
	if usage.Has(rhi.TextureUsageStorageBinding) {
		need |= hal.TextureFormatCapabilityStorage
	}
	if usage.HasAny(rhi.NewFlags(rhi.TextureUsageRenderAttachment, rhi.TextureUsageDepthStencilAttachment)) {
		need |= hal.TextureFormatCapabilityRenderAttachment
	}
	return caps&need == need
}

// RequestDevice implements rhi.Gpu.
func (g *Gpu) RequestDevice(info *rhi.DeviceCreateInfo) (rhi.Device, error) {
	const op = "Gpu.RequestDevice"
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}

	var requested [rhi.QueueTypeCount]uint32
	var seen [rhi.QueueTypeCount]bool
	for _, r := range info.QueueRequests {
		if r.Type >= rhi.QueueTypeCount {
			return nil, rhi.InvalidArgument(op, "invalid queue type %d", r.Type)
		}
		if r.Num == 0 {
			return nil, rhi.InvalidArgument(op, "zero %s queues requested", r.Type)
		}
		if seen[r.Type] {
			return nil, rhi.InvalidArgument(op, "duplicate request for %s queues", r.Type)
		}
		seen[r.Type] = true
		requested[r.Type] = r.Num
	}
	for t, n := range requested {
		qt := rhi.QueueType(t)
		if capacity := g.inst.variant.QueueCapacity(qt); n > capacity {
			return nil, rhi.Unsupported(op, "%d %s queues requested, family capacity is %d", n, qt, capacity)
		}
	}

	open, err := g.exposed.Adapter.Open(0, g.exposed.Capabilities.Limits)
	if err != nil {
		return nil, backendError(g.inst.variant, op, err)
	}
	return newDevice(g, open, info, requested), nil
}
