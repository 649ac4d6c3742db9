package rhi

import (
	"fmt"
	"sort"

	"github.com/gogpu/gpucontext"
)

// BackendFactory opens an Instance for one backend variant.
type BackendFactory func(cfg *InstanceConfig) (Instance, error)

// backends holds the variants linked into the binary. Variant packages
// register themselves from init.
var backends = gpucontext.NewRegistry[BackendFactory](
	gpucontext.WithPriority(RHITypeVulkan.String(), RHITypeDirectX12.String(), RHITypeMetal.String()),
)

// RegisterBackend makes a backend variant available to CreateInstance.
// Registering the same type twice replaces the earlier factory.
func RegisterBackend(t RHIType, factory BackendFactory) {
	backends.Register(t.String(), func() BackendFactory { return factory })
	Logger().Debug("rhi: backend registered", "type", t.String())
}

// IsBackendRegistered reports whether t can be passed to CreateInstance.
func IsBackendRegistered(t RHIType) bool {
	return backends.Has(t.String())
}

// RegisteredBackends returns the registered variants in RHIType order.
func RegisteredBackends() []RHIType {
	names := backends.Available()
	types := make([]RHIType, 0, len(names))
	for _, name := range names {
		t, err := ParseRHIType(name)
		if err != nil {
			continue
		}
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DefaultRHIType returns the preferred registered variant: Vulkan, then
// DirectX12, then Metal.
func DefaultRHIType() (RHIType, error) {
	name := backends.BestName()
	if name == "" {
		return 0, NewError(KindUnsupportedFeature, "DefaultRHIType", "no backend registered")
	}
	return ParseRHIType(name)
}

// CreateInstance opens the backend variant t. Only one variant is active
// per Instance; selection happens here and never again.
func CreateInstance(t RHIType, opts ...InstanceOption) (Instance, error) {
	const op = "CreateInstance"

	if t >= rhiTypeCount {
		return nil, InvalidArgument(op, "invalid RHIType %d", t)
	}
	if !backends.Has(t.String()) {
		return nil, Unsupported(op, "backend %s is not available in this build", t)
	}

	cfg := defaultInstanceConfig(t)
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := backends.Get(t.String())
	inst, err := factory(&cfg)
	if err != nil {
		return nil, fmt.Errorf("rhi: create %s instance: %w", t, err)
	}
	cfg.Logger.Info("rhi: instance created", "type", t.String(), "gpus", inst.GetGpuNum())
	return inst, nil
}
