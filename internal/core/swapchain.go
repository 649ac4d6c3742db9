package core

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// =============================================================================
// Surface
// =============================================================================

// Surface implements rhi.Surface. A surface carries at most one swap chain.
type Surface struct {
	dev *Device
	hal hal.Surface

	mu        sync.Mutex
	chain     *SwapChain
	destroyed bool
}

// CreateSurface implements rhi.Device.
func (d *Device) CreateSurface(info *rhi.SurfaceCreateInfo) (rhi.Surface, error) {
	const op = "Device.CreateSurface"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	if info.Window == 0 {
		return nil, rhi.InvalidArgument(op, "window handle is zero")
	}
	hs, err := d.gpu.inst.hal.CreateSurface(info.Display, info.Window)
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	return &Surface{dev: d, hal: hs}, nil
}

func (d *Device) surface(op string, s rhi.Surface) (*Surface, error) {
	surf, ok := s.(*Surface)
	if !ok || surf == nil || surf.dev != d {
		return nil, rhi.InvalidArgument(op, "surface was not created by this device")
	}
	if surf.destroyed {
		return nil, rhi.InvalidState(op, "surface is destroyed")
	}
	return surf, nil
}

// Destroy implements rhi.Surface. A swap chain still attached to the
// surface is destroyed first.
func (s *Surface) Destroy() {
	s.mu.Lock()
	chain := s.chain
	s.mu.Unlock()
	if chain != nil {
		s.dev.log.Warn("rhi: surface destroyed with a live swap chain")
		chain.Destroy()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.hal.Destroy()
	s.dev.untrack()
}

// CheckSwapChainFormatSupport implements rhi.Device.
func (d *Device) CheckSwapChainFormatSupport(surface rhi.Surface, format rhi.PixelFormat) bool {
	s, err := d.surface("Device.CheckSwapChainFormatSupport", surface)
	if err != nil || !format.IsValid() || format.IsDepthStencil() || !d.variant.SupportsFormat(format) {
		return false
	}
	caps := d.gpu.exposed.Adapter.SurfaceCapabilities(s.hal)
	if caps == nil {
		return false
	}
	want := TextureFormat(format)
	for _, f := range caps.Formats {
		if f == want {
			return true
		}
	}
	return false
}

// =============================================================================
// SwapChain
// =============================================================================

// SwapChain implements rhi.SwapChain.
//
// Images are ordinary RHI textures owned by the swap chain. Acquire hands
// them out round-robin; Present copies the oldest acquired image into the
// surface's texture and presents it. An image may be re-acquired only
// after its previous presentation was submitted, and its acquire
// semaphore signals once that submission completes.
type SwapChain struct {
	dev     *Device
	queue   *Queue
	surface *Surface
	info    rhi.SwapChainCreateInfo

	textures    []*Texture
	presentedAt []uint64

	mu        sync.Mutex
	next      uint32
	acquired  []uint32
	inflight  []presentWork
	destroyed bool
}

// presentWork is one present submission whose encoder is released once
// the submission completes.
type presentWork struct {
	submission uint64
	encoder    hal.CommandEncoder
	cmd        hal.CommandBuffer
}

// CreateSwapChain implements rhi.Device.
func (d *Device) CreateSwapChain(info *rhi.SwapChainCreateInfo) (rhi.SwapChain, error) {
	const op = "Device.CreateSwapChain"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	q, ok := info.PresentQueue.(*Queue)
	if !ok || q == nil || q.dev != d {
		return nil, rhi.InvalidArgument(op, "present queue was not created by this device")
	}
	if q.typ != rhi.QueueTypeGraphics {
		return nil, rhi.InvalidArgument(op, "present queue is %s, want Graphics", q.typ)
	}
	s, err := d.surface(op, info.Surface)
	if err != nil {
		return nil, err
	}
	if info.TextureNum == 0 || info.TextureNum > rhi.MaxSwapChainTextures {
		return nil, rhi.InvalidArgument(op, "texture count %d outside [1, %d]", info.TextureNum, rhi.MaxSwapChainTextures)
	}
	if info.Extent.Width == 0 || info.Extent.Height == 0 {
		return nil, rhi.InvalidArgument(op, "extent %dx%d is empty", info.Extent.Width, info.Extent.Height)
	}
	if info.PresentMode > rhi.PresentModeVsync {
		return nil, rhi.InvalidArgument(op, "invalid present mode %d", info.PresentMode)
	}
	if !d.CheckSwapChainFormatSupport(s, info.Format) {
		return nil, rhi.Unsupported(op, "surface cannot present %s", info.Format)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chain != nil {
		return nil, rhi.InvalidState(op, "surface already has a swap chain")
	}

	err = s.hal.Configure(d.hal, &hal.SurfaceConfiguration{
		Width:       info.Extent.Width,
		Height:      info.Extent.Height,
		Format:      TextureFormat(info.Format),
		Usage:       gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopyDst,
		PresentMode: presentMode(info.PresentMode),
		AlphaMode:   gputypes.CompositeAlphaModeOpaque,
	})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}

	sc := &SwapChain{
		dev:         d,
		queue:       q,
		surface:     s,
		info:        *info,
		presentedAt: make([]uint64, info.TextureNum),
	}
	for range info.TextureNum {
		t, err := d.createTexture(op, rhi.TextureCreateInfo{
			Dimension: rhi.TextureDimension2D,
			Extent:    rhi.Extent3D{Width: info.Extent.Width, Height: info.Extent.Height, DepthOrArrayLayers: 1},
			Format:    info.Format,
			Usage: rhi.NewFlags(rhi.TextureUsageRenderAttachment, rhi.TextureUsageCopySrc,
				rhi.TextureUsageCopyDst, rhi.TextureUsageTextureBinding),
			InitialState: rhi.TextureStatePresent,
			DebugName:    "rhi swap chain image",
		})
		if err != nil {
			for _, t := range sc.textures {
				t.release()
			}
			s.hal.Unconfigure(d.hal)
			return nil, err
		}
		t.chain = sc
		sc.textures = append(sc.textures, t)
	}
	s.chain = sc
	d.surfaceFormat.Store(uint32(TextureFormat(info.Format)))
	d.track()
	d.log.Info("rhi: swap chain created",
		"images", info.TextureNum,
		"width", info.Extent.Width,
		"height", info.Extent.Height,
		"format", info.Format.String())
	return sc, nil
}

// GetTextureNum implements rhi.SwapChain.
func (sc *SwapChain) GetTextureNum() uint32 { return uint32(len(sc.textures)) }

// GetTexture implements rhi.SwapChain.
func (sc *SwapChain) GetTexture(index uint32) (rhi.Texture, error) {
	if index >= uint32(len(sc.textures)) {
		return nil, rhi.InvalidArgument("SwapChain.GetTexture", "image %d outside %d images", index, len(sc.textures))
	}
	return sc.textures[index], nil
}

// AcquireBackTexture implements rhi.SwapChain.
func (sc *SwapChain) AcquireBackTexture(signal rhi.Semaphore) (uint32, error) {
	const op = "SwapChain.AcquireBackTexture"
	sems, err := semaphores(op, sc.dev, []rhi.Semaphore{signal})
	if err != nil {
		return 0, err
	}
	sem := sems[0]

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.destroyed {
		return 0, rhi.InvalidState(op, "swap chain is destroyed")
	}
	if sem.isPending() {
		return 0, rhi.InvalidState(op, "signal semaphore is already pending")
	}
	if len(sc.acquired) == len(sc.textures) {
		return 0, rhi.ResourceExhausted(op, "all %d images are acquired", len(sc.textures))
	}

	idx := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.textures))
	sc.acquired = append(sc.acquired, idx)
	if sc.dev.variant.AcquireSignalsEagerly() {
		sem.arm(0)
	} else {
		sem.arm(sc.presentedAt[idx])
	}
	return idx, nil
}

// Present implements rhi.SwapChain.
func (sc *SwapChain) Present(wait rhi.Semaphore) error {
	const op = "SwapChain.Present"
	sems, err := semaphores(op, sc.dev, []rhi.Semaphore{wait})
	if err != nil {
		return err
	}
	sem := sems[0]

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.destroyed {
		return rhi.InvalidState(op, "swap chain is destroyed")
	}
	if len(sc.acquired) == 0 {
		return rhi.InvalidState(op, "no image is acquired")
	}
	if !sem.isPending() {
		return rhi.InvalidState(op, "wait semaphore has no pending signal")
	}

	d := sc.dev
	idx := sc.acquired[0]
	img := sc.textures[idx]

	acq, err := sc.surface.hal.AcquireTexture(nil)
	if err != nil {
		return backendError(d.variant, op, err)
	}
	if acq.Suboptimal {
		d.log.Debug("rhi: surface is suboptimal", "image", idx)
	}

	enc, cmd, err := sc.recordBlit(op, img, acq.Texture)
	if err != nil {
		sc.surface.hal.DiscardTexture(acq.Texture)
		return err
	}

	d.submitMu.Lock()
	sub, err := d.submitLocked(op, []hal.CommandBuffer{cmd})
	completed := d.queue.PollCompleted()
	d.submitMu.Unlock()
	if err != nil {
		sc.surface.hal.DiscardTexture(acq.Texture)
		d.hal.FreeCommandBuffer(cmd)
		enc.Destroy()
		return err
	}

	sc.inflight = append(sc.inflight, presentWork{submission: sub, encoder: enc, cmd: cmd})
	sc.reap(completed)

	// The blit holds the image until sub completes, so the image is
	// released even when presentation fails.
	sem.consume()
	sc.acquired = sc.acquired[1:]
	sc.presentedAt[idx] = sub
	if err := d.queue.Present(sc.surface.hal, acq.Texture, nil); err != nil {
		sc.surface.hal.DiscardTexture(acq.Texture)
		d.log.Warn("rhi: present failed", "image", idx, "err", err)
		return backendError(d.variant, op, err)
	}
	return nil
}

// recordBlit records a copy of img into the surface texture dst.
func (sc *SwapChain) recordBlit(op string, img *Texture, dst hal.SurfaceTexture) (hal.CommandEncoder, hal.CommandBuffer, error) {
	d := sc.dev
	enc, err := d.hal.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "rhi present"})
	if err != nil {
		return nil, nil, backendError(d.variant, op, err)
	}
	if err := enc.BeginEncoding("rhi present"); err != nil {
		enc.Destroy()
		return nil, nil, backendError(d.variant, op, err)
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: dst,
		Range:   hal.TextureRange{Aspect: gputypes.TextureAspectAll, MipLevelCount: 1, ArrayLayerCount: 1},
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageNone,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})
	size := sc.info.Extent
	size.DepthOrArrayLayers = 1
	enc.CopyTextureToTexture(img.hal, dst, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: img.hal, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: dst, Aspect: gputypes.TextureAspectAll},
		Size:    extent(size),
	}})
	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		return nil, nil, backendError(d.variant, op, err)
	}
	return enc, cmd, nil
}

// reap releases present encoders whose submissions have completed.
func (sc *SwapChain) reap(completed uint64) {
	kept := sc.inflight[:0]
	for _, w := range sc.inflight {
		if w.submission <= completed {
			sc.dev.hal.FreeCommandBuffer(w.cmd)
			w.encoder.Destroy()
			continue
		}
		kept = append(kept, w)
	}
	sc.inflight = kept
}

// Destroy implements rhi.SwapChain. It waits for the device to go idle so
// no image is in use.
func (sc *SwapChain) Destroy() {
	sc.mu.Lock()
	if sc.destroyed {
		sc.mu.Unlock()
		return
	}
	sc.destroyed = true
	sc.mu.Unlock()

	d := sc.dev
	if err := d.WaitIdle(); err != nil {
		d.log.Warn("rhi: wait idle before swap chain destroy failed", "err", err)
	}
	sc.reap(^uint64(0))
	for _, t := range sc.textures {
		t.release()
	}
	sc.surface.hal.Unconfigure(d.hal)

	sc.surface.mu.Lock()
	sc.surface.chain = nil
	sc.surface.mu.Unlock()
	d.untrack()
}
