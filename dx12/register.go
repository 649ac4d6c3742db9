package dx12

import (
	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

func init() {
	rhi.RegisterBackend(rhi.RHITypeDirectX12, Open)
}

// Open creates a DirectX 12 instance. It is the factory registered with
// rhi.CreateInstance.
func Open(cfg *rhi.InstanceConfig) (rhi.Instance, error) {
	inst, err := core.NewInstance(NewVariant(), cfg)
	if err != nil {
		return nil, err
	}
	return inst, nil
}
