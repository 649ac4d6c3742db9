// Package rhi is a backend-agnostic Render Hardware Interface for Go.
//
// # Overview
//
// rhi exposes one set of interfaces for GPU adapters, devices, queues,
// resources, binding groups, pipelines, command recording, fences,
// semaphores and swap chains. Each backend variant (Vulkan, DirectX12)
// lives in its own package and registers itself on import:
//
//	import (
//		"github.com/gogpu/rhi"
//		_ "github.com/gogpu/rhi/vulkan"
//		_ "github.com/gogpu/rhi/dx12"
//	)
//
//	inst, err := rhi.CreateInstance(rhi.RHITypeVulkan)
//	gpu, err := inst.GetGpu(0)
//	device, err := gpu.RequestDevice(&rhi.DeviceCreateInfo{
//		QueueRequests: []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 1}},
//	})
//
// Variants run on the gogpu/wgpu HAL. Any HAL backend can be injected with
// WithHALBackend, which is how tests run headless on the noop backend.
//
// # Object Lifetime
//
// Every object is owned by its creator and destroyed explicitly. Views,
// bind groups and pipelines are non-owning: they must be destroyed before
// the resources and layouts they reference. An Instance must outlive every
// Device, and a Device every object created from it.
//
// # Resource State
//
// The RHI does not track resource states. Callers describe every
// transition with a Barrier and record it on a CommandRecorder or a copy
// pass. Barriers are rejected inside graphics and compute passes.
//
// # Command Recording
//
// A CommandBuffer moves through Initial, Recording, InPass, Executable and
// Pending. Calls outside the permitted state fail with an error of kind
// KindInvalidState.
//
// # Errors
//
// All errors carry an ErrorKind. Use errors.Is against the sentinel
// values (ErrInvalidArgument, ErrInvalidState, ...) or KindOf.
//
// # Logging
//
// rhi is silent by default. Call SetLogger to receive diagnostics; the
// logger is shared with the gogpu/wgpu HAL.
package rhi
