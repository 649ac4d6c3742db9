package dx12

import "github.com/gogpu/rhi"

// SyncInterval returns the IDXGISwapChain::Present sync interval of m.
func SyncInterval(m rhi.PresentMode) (uint32, error) {
	switch m {
	case rhi.PresentModeImmediately:
		return 0, nil
	case rhi.PresentModeVsync:
		return 1, nil
	}
	return 0, rhi.InvalidArgument("dx12.SyncInterval", "invalid present mode %d", m)
}
