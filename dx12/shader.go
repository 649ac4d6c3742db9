package dx12

import (
	"github.com/gogpu/naga/dxil"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/core"
)

// shaderSource accepts DXIL containers only. The container is checked
// structurally before it reaches the driver, which otherwise reports a
// corrupt container only at pipeline creation.
func shaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error) {
	const op = "dx12.ShaderSource"
	switch info.ByteCodeType {
	case rhi.ByteCodeTypeDXIL:
		if err := dxil.Validate(info.ByteCode, dxil.ValidateStructural); err != nil {
			return hal.ShaderSource{}, &rhi.Error{Kind: rhi.KindInvalidArgument, Op: op, Msg: "malformed DXIL container", Err: err}
		}
		return core.PackBlob(info.ByteCode), nil
	}
	return hal.ShaderSource{}, rhi.Unsupported(op, "DirectX12 does not accept %s bytecode", info.ByteCodeType)
}
