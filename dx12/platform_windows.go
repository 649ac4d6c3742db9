package dx12

// Link the native Direct3D 12 execution backend.
import _ "github.com/gogpu/wgpu/hal/dx12"
