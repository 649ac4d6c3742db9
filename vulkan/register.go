package vulkan

import (
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

func init() {
	rhi.RegisterBackend(rhi.RHITypeVulkan, Open)
}

// Open creates a Vulkan instance. It is the factory registered with
// rhi.CreateInstance.
func Open(cfg *rhi.InstanceConfig) (rhi.Instance, error) {
	inst, err := core.NewInstance(Variant{}, cfg)
	if err != nil {
		return nil, err
	}
	return inst, nil
}
