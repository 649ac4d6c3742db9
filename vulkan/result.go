package vulkan

import (
	"errors"

	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/vulkan/vk"
)

// resultCodes maps execution-layer errors to the VkResult a native
// driver reports for the same condition.
var resultCodes = []struct {
	err  error
	code vk.Result
}{
	{hal.ErrDeviceLost, vk.ErrorDeviceLost},
	{hal.ErrDeviceOutOfMemory, vk.ErrorOutOfDeviceMemory},
	{hal.ErrSurfaceLost, vk.ErrorSurfaceLostKhr},
	{hal.ErrSurfaceOutdated, vk.ErrorOutOfDateKhr},
	{hal.ErrTimeout, vk.Timeout},
	{hal.ErrNotReady, vk.NotReady},
	{hal.ErrInvalidMapRange, vk.ErrorMemoryMapFailed},
	{hal.ErrBackendNotFound, vk.ErrorInitializationFailed},
}

// ResultCode returns the VkResult matching err, or vk.ErrorUnknown.
func ResultCode(err error) vk.Result {
	for _, rc := range resultCodes {
		if errors.Is(err, rc.err) {
			return rc.code
		}
	}
	return vk.ErrorUnknown
}
