package vulkan

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

// shaderSource accepts SPIR-V only.
func shaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error) {
	if info.ByteCodeType != rhi.ByteCodeTypeSPIRV {
		return hal.ShaderSource{}, rhi.Unsupported("vulkan.ShaderSource", "Vulkan does not accept %s bytecode", info.ByteCodeType)
	}
	words, err := core.SPIRVWords(info.ByteCode)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}
