package core

import (
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/arena"
)

// =============================================================================
// CommandBuffer
// =============================================================================

// CommandBuffer implements rhi.CommandBuffer over a HAL command encoder.
//
// State machine:
//
//	Initial    -> Begin()        -> Recording
//	Recording  -> BeginXPass()   -> InPass
//	InPass     -> EndPass()      -> Recording
//	Recording  -> End()          -> Executable
//	Executable -> Queue.Submit() -> Pending
//	Pending    -> (completion)   -> Executable (spent)
//	Executable -> Reset()        -> Initial
//
// A spent buffer reports Executable but cannot be submitted again until
// it is Reset and re-recorded; the HAL records one-time-submit buffers.
//
// Recorders and passes carry the generation and pass sequence they were
// opened with; once either moves on, every call on them fails with
// InvalidState.
//
// CommandBuffer is NOT safe for concurrent recording. The state lock only
// covers the hand-off to Queue.Submit.
type CommandBuffer struct {
	dev     *Device
	label   string
	encoder hal.CommandEncoder
	cmd     hal.CommandBuffer

	mu         sync.Mutex
	state      rhi.CommandBufferState
	submission uint64
	spent      bool
	destroyed  bool

	generation uint64
	passSeq    uint64
	openPass   uint64

	// Scratch arenas exist only for variants that copy bind groups into a
	// shader-visible heap when bound.
	cbvSrvUav *arena.Arena
	samplers  *arena.Arena

	// barriers holds the native form of every barrier recorded since Begin.
	barriers []any
}

// CreateCommandBuffer implements rhi.Device.
func (d *Device) CreateCommandBuffer() (rhi.CommandBuffer, error) {
	const op = "Device.CreateCommandBuffer"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	enc, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rhi command buffer"})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	cb := &CommandBuffer{dev: d, label: "rhi command buffer", encoder: enc}
	if d.variant.UsesScratchDescriptors() {
		cb.cbvSrvUav = arena.New(d.scratch.CbvSrvUav)
		cb.samplers = arena.New(d.scratch.Sampler)
	}
	d.track()
	return cb, nil
}

// stateAt returns the state, observing completion of a pending submission.
func (cb *CommandBuffer) stateAt(completed uint64) rhi.CommandBufferState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == rhi.CommandBufferStatePending && completed >= cb.submission {
		cb.state = rhi.CommandBufferStateExecutable
	}
	return cb.state
}

func (cb *CommandBuffer) markPending(idx uint64) {
	cb.mu.Lock()
	cb.state = rhi.CommandBufferStatePending
	cb.submission = idx
	cb.spent = true
	cb.mu.Unlock()
}

func (cb *CommandBuffer) setState(s rhi.CommandBufferState) {
	cb.mu.Lock()
	cb.state = s
	if s == rhi.CommandBufferStateInitial {
		cb.spent = false
	}
	cb.mu.Unlock()
}

// isSpent reports whether the current recording was already submitted.
func (cb *CommandBuffer) isSpent() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.spent
}

// State implements rhi.CommandBuffer.
func (cb *CommandBuffer) State() rhi.CommandBufferState {
	return cb.stateAt(cb.dev.completed())
}

// Begin implements rhi.CommandBuffer.
func (cb *CommandBuffer) Begin() (rhi.CommandRecorder, error) {
	const op = "CommandBuffer.Begin"
	if cb.destroyed {
		return nil, rhi.InvalidState(op, "command buffer is destroyed")
	}
	if s := cb.State(); s != rhi.CommandBufferStateInitial {
		return nil, rhi.InvalidState(op, "command buffer is %s, want Initial", s)
	}
	if err := cb.encoder.BeginEncoding(cb.label); err != nil {
		return nil, backendError(cb.dev.variant, op, err)
	}
	if cb.cbvSrvUav != nil {
		cb.cbvSrvUav.Reset()
		cb.samplers.Reset()
	}
	cb.barriers = cb.barriers[:0]
	cb.generation++
	cb.setState(rhi.CommandBufferStateRecording)
	return &recorder{cb: cb, gen: cb.generation}, nil
}

// Reset implements rhi.CommandBuffer. A pending command buffer can only
// be reset once its submission has completed.
func (cb *CommandBuffer) Reset() error {
	const op = "CommandBuffer.Reset"
	switch s := cb.State(); s {
	case rhi.CommandBufferStatePending:
		return rhi.InvalidState(op, "command buffer is pending on submission %d", cb.submission)
	case rhi.CommandBufferStateRecording, rhi.CommandBufferStateInPass:
		cb.encoder.DiscardEncoding()
	case rhi.CommandBufferStateExecutable:
		cb.dev.hal.FreeCommandBuffer(cb.cmd)
		cb.cmd = nil
	}
	cb.generation++
	cb.openPass = 0
	cb.setState(rhi.CommandBufferStateInitial)
	return nil
}

// Destroy implements rhi.CommandBuffer.
func (cb *CommandBuffer) Destroy() {
	if cb.destroyed {
		return
	}
	switch cb.State() {
	case rhi.CommandBufferStatePending:
		cb.dev.log.Warn("rhi: command buffer destroyed while pending", "submission", cb.submission)
		if err := cb.dev.WaitIdle(); err != nil {
			cb.dev.log.Warn("rhi: wait idle before command buffer destroy failed", "err", err)
		}
		cb.dev.hal.FreeCommandBuffer(cb.cmd)
	case rhi.CommandBufferStateRecording, rhi.CommandBufferStateInPass:
		cb.encoder.DiscardEncoding()
	case rhi.CommandBufferStateExecutable:
		cb.dev.hal.FreeCommandBuffer(cb.cmd)
	}
	cb.destroyed = true
	cb.generation++
	cb.cmd = nil
	cb.encoder.Destroy()
	cb.dev.untrack()
}

// Barriers returns the native barriers recorded since the last Begin.
func (cb *CommandBuffer) Barriers() []any { return cb.barriers }

// ScratchUsage returns the scratch descriptors allocated since the last
// Begin. Both are zero for variants without scratch arenas.
func (cb *CommandBuffer) ScratchUsage() (cbvSrvUav, samplers uint32) {
	if cb.cbvSrvUav == nil {
		return 0, 0
	}
	return cb.cbvSrvUav.Used(), cb.samplers.Used()
}

// allocateScratch reserves room for group in the scratch arenas.
func (cb *CommandBuffer) allocateScratch(op string, group *BindGroup) error {
	if cb.cbvSrvUav == nil {
		return nil
	}
	views, samplers := group.layout.DescriptorCounts()
	if views > cb.cbvSrvUav.Remaining() {
		return rhi.ResourceExhausted(op, "scratch CBV/SRV/UAV arena full: %d of %d used, %d requested",
			cb.cbvSrvUav.Used(), cb.cbvSrvUav.Capacity(), views)
	}
	if samplers > cb.samplers.Remaining() {
		return rhi.ResourceExhausted(op, "scratch sampler arena full: %d of %d used, %d requested",
			cb.samplers.Used(), cb.samplers.Capacity(), samplers)
	}
	if _, err := cb.cbvSrvUav.Allocate(views); err != nil {
		return rhi.ResourceExhausted(op, "scratch CBV/SRV/UAV arena: %v", err)
	}
	if _, err := cb.samplers.Allocate(samplers); err != nil {
		return rhi.ResourceExhausted(op, "scratch sampler arena: %v", err)
	}
	return nil
}

// =============================================================================
// Recorder
// =============================================================================

type recorder struct {
	cb  *CommandBuffer
	gen uint64
}

// check fails unless the recorder is current and the buffer is Recording.
func (r *recorder) check(op string) error {
	cb := r.cb
	if cb.destroyed || cb.generation != r.gen {
		return rhi.InvalidState(op, "recorder is closed")
	}
	cb.mu.Lock()
	s := cb.state
	cb.mu.Unlock()
	switch s {
	case rhi.CommandBufferStateRecording:
		return nil
	case rhi.CommandBufferStateInPass:
		return rhi.InvalidState(op, "a pass is open")
	}
	return rhi.InvalidState(op, "recorder is closed")
}

// ResourceBarrier implements rhi.CommandRecorder.
func (r *recorder) ResourceBarrier(b rhi.Barrier) error {
	const op = "CommandRecorder.ResourceBarrier"
	if err := r.check(op); err != nil {
		return err
	}
	return r.cb.barrier(op, b)
}

// beginPass moves the buffer into InPass and returns the pass sequence.
func (r *recorder) beginPass(op string) (uint64, error) {
	if err := r.check(op); err != nil {
		return 0, err
	}
	cb := r.cb
	cb.passSeq++
	cb.openPass = cb.passSeq
	cb.setState(rhi.CommandBufferStateInPass)
	return cb.passSeq, nil
}

// BeginCopyPass implements rhi.CommandRecorder.
func (r *recorder) BeginCopyPass() (rhi.CopyPassCommandRecorder, error) {
	seq, err := r.beginPass("CommandRecorder.BeginCopyPass")
	if err != nil {
		return nil, err
	}
	return &copyPass{pass: pass{cb: r.cb, gen: r.gen, seq: seq}}, nil
}

// BeginComputePass implements rhi.CommandRecorder.
func (r *recorder) BeginComputePass() (rhi.ComputePassCommandRecorder, error) {
	seq, err := r.beginPass("CommandRecorder.BeginComputePass")
	if err != nil {
		return nil, err
	}
	enc := r.cb.encoder.BeginComputePass(&hal.ComputePassDescriptor{})
	return &computePass{pass: pass{cb: r.cb, gen: r.gen, seq: seq}, hal: enc}, nil
}

// BeginGraphicsPass implements rhi.CommandRecorder. Attachments are
// validated before the pass is opened.
func (r *recorder) BeginGraphicsPass(info *rhi.GraphicsPassBeginInfo) (rhi.GraphicsPassCommandRecorder, error) {
	const op = "CommandRecorder.BeginGraphicsPass"
	if err := r.check(op); err != nil {
		return nil, err
	}
	desc, area, err := r.cb.renderPassDescriptor(op, info)
	if err != nil {
		return nil, err
	}
	seq, err := r.beginPass(op)
	if err != nil {
		return nil, err
	}
	enc := r.cb.encoder.BeginRenderPass(desc)
	p := &graphicsPass{pass: pass{cb: r.cb, gen: r.gen, seq: seq}, hal: enc, area: area}
	p.viewport = rhi.Viewport{Width: float32(area.Width), Height: float32(area.Height), MaxDepth: 1}
	p.scissor = rhi.ScissorRect{Width: area.Width, Height: area.Height}
	return p, nil
}

// End implements rhi.CommandRecorder.
func (r *recorder) End() error {
	const op = "CommandRecorder.End"
	if err := r.check(op); err != nil {
		return err
	}
	cb := r.cb
	cmd, err := cb.encoder.EndEncoding()
	if err != nil {
		cb.generation++
		cb.setState(rhi.CommandBufferStateInitial)
		return backendError(cb.dev.variant, op, err)
	}
	cb.cmd = cmd
	cb.generation++
	cb.setState(rhi.CommandBufferStateExecutable)
	if cb.cbvSrvUav != nil {
		cb.dev.log.Debug("rhi: command buffer recorded",
			"barriers", len(cb.barriers),
			"scratchViews", cb.cbvSrvUav.Used(),
			"scratchSamplers", cb.samplers.Used())
	}
	return nil
}

// =============================================================================
// Barriers
// =============================================================================

// barrier validates b, translates it through the variant and records it
// as a HAL usage transition.
func (cb *CommandBuffer) barrier(op string, b rhi.Barrier) error {
	switch b.Type {
	case rhi.ResourceTypeBuffer:
		bt := &b.Buffer
		buf, ok := bt.Buffer.(*Buffer)
		if !ok || buf == nil || buf.dev != cb.dev {
			return rhi.InvalidArgument(op, "barrier buffer was not created by this device")
		}
		if bt.Before >= rhi.BufferStateCount || bt.After >= rhi.BufferStateCount {
			return rhi.InvalidArgument(op, "invalid buffer states %d -> %d", bt.Before, bt.After)
		}
		native, err := cb.dev.variant.TranslateBarrier(&b)
		if err != nil {
			return err
		}
		cb.encoder.TransitionBuffers([]hal.BufferBarrier{{
			Buffer: buf.hal,
			Usage: hal.BufferUsageTransition{
				OldUsage: bufferStateUsage(bt.Before),
				NewUsage: bufferStateUsage(bt.After),
			},
		}})
		cb.barriers = append(cb.barriers, native)
		return nil

	case rhi.ResourceTypeTexture:
		tt := &b.Texture
		tex, ok := tt.Texture.(*Texture)
		if !ok || tex == nil || tex.dev != cb.dev {
			return rhi.InvalidArgument(op, "barrier texture was not created by this device")
		}
		if tt.Before >= rhi.TextureStateCount || tt.After >= rhi.TextureStateCount {
			return rhi.InvalidArgument(op, "invalid texture states %d -> %d", tt.Before, tt.After)
		}
		if err := checkAspect(op, tex.info.Format, tt.Aspect); err != nil {
			return err
		}
		mips, layers := tex.info.MipLevels, tex.arrayLayers()
		if tt.BaseMipLevel >= mips || tt.BaseArrayLayer >= layers {
			return rhi.InvalidRange(op, "barrier base mip %d layer %d outside %d mips %d layers", tt.BaseMipLevel, tt.BaseArrayLayer, mips, layers)
		}
		if tt.MipLevelNum == 0 {
			tt.MipLevelNum = mips - tt.BaseMipLevel
		}
		if tt.ArrayLayerNum == 0 {
			tt.ArrayLayerNum = layers - tt.BaseArrayLayer
		}
		if tt.MipLevelNum > mips-tt.BaseMipLevel || tt.ArrayLayerNum > layers-tt.BaseArrayLayer {
			return rhi.InvalidRange(op, "barrier range mips [%d, +%d) layers [%d, +%d) outside %d mips %d layers",
				tt.BaseMipLevel, tt.MipLevelNum, tt.BaseArrayLayer, tt.ArrayLayerNum, mips, layers)
		}
		native, err := cb.dev.variant.TranslateBarrier(&b)
		if err != nil {
			return err
		}
		cb.encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: tex.hal,
			Range: hal.TextureRange{
				Aspect:          textureAspect(tt.Aspect),
				BaseMipLevel:    tt.BaseMipLevel,
				MipLevelCount:   tt.MipLevelNum,
				BaseArrayLayer:  tt.BaseArrayLayer,
				ArrayLayerCount: tt.ArrayLayerNum,
			},
			Usage: hal.TextureUsageTransition{
				OldUsage: textureStateUsage(tt.Before),
				NewUsage: textureStateUsage(tt.After),
			},
		}})
		cb.barriers = append(cb.barriers, native)
		return nil
	}
	return rhi.InvalidArgument(op, "invalid barrier resource type %d", b.Type)
}

// checkAspect fails when aspect does not exist in format.
func checkAspect(op string, f rhi.PixelFormat, aspect rhi.TextureAspect) error {
	ok := false
	switch aspect {
	case rhi.TextureAspectColor:
		ok = !f.IsDepthStencil()
	case rhi.TextureAspectDepth:
		ok = f.IsDepthStencil()
	case rhi.TextureAspectStencil, rhi.TextureAspectDepthStencil:
		ok = f.HasStencil()
	}
	if !ok {
		return rhi.InvalidArgument(op, "aspect %d does not exist in %s", aspect, f)
	}
	return nil
}
