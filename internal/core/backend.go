// Package core is the shared implementation of the RHI object model on top
// of the gogpu/wgpu HAL. Backend variants plug in through Variant, which
// owns everything that differs between native APIs: format tables, binding
// projection, barrier translation, bytecode acceptance and swap-chain
// signal policy.
package core

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// Variant adapts the shared implementation to one native API.
//
// Projection methods return opaque native descriptions that core stores on
// the created object (see the Native accessors). The variant package reads
// them back with a type assertion.
type Variant interface {
	// Type is the RHI type implemented by the variant.
	Type() rhi.RHIType

	// Backend is the HAL backend used when none is injected.
	Backend() gputypes.Backend

	// QueueCapacity returns how many queues of type t a device exposes.
	QueueCapacity(t rhi.QueueType) uint32

	// SupportsFormat reports whether f has a native format mapping.
	SupportsFormat(f rhi.PixelFormat) bool

	// ShaderSource validates a bytecode blob and converts it for the HAL.
	// Unsupported bytecode types fail with UnsupportedFeature, malformed
	// blobs with InvalidArgument.
	ShaderSource(info *rhi.ShaderModuleCreateInfo) (hal.ShaderSource, error)

	// ProjectBuffer derives the native usage description of a buffer.
	ProjectBuffer(info *rhi.BufferCreateInfo) (any, error)

	// ProjectTexture derives the native usage description of a texture.
	ProjectTexture(info *rhi.TextureCreateInfo) (any, error)

	// ProjectBindGroupLayout derives the native binding layout.
	ProjectBindGroupLayout(info *rhi.BindGroupLayoutCreateInfo) (any, error)

	// ProjectPipelineLayout derives the native pipeline layout from the
	// bind group layouts in set order.
	ProjectPipelineLayout(groups []*BindGroupLayout, constants []rhi.PipelineConstantLayout) (any, error)

	// TranslateBarrier validates a barrier and returns its native form.
	TranslateBarrier(b *rhi.Barrier) (any, error)

	// UsesScratchDescriptors reports whether bind groups are copied into a
	// per-command-buffer shader-visible arena when bound.
	UsesScratchDescriptors() bool

	// AcquireSignalsEagerly reports whether AcquireBackTexture signals its
	// semaphore immediately rather than when the image's previous
	// presentation completes.
	AcquireSignalsEagerly() bool

	// ResultCode maps an execution-layer error to a native result code,
	// or 0 when unknown.
	ResultCode(err error) int64
}

// backendError wraps err as a BackendError carrying the variant's native
// result code.
func backendError(v Variant, op string, err error) error {
	return rhi.BackendFailure(op, v.ResultCode(err), err)
}
