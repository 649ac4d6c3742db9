//go:build !android && !js

package vulkan

// Link the native Vulkan execution backend.
import _ "github.com/gogpu/wgpu/hal/vulkan"
