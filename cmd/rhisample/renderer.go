package main

import (
	"encoding/binary"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// copyPitch is the row alignment of buffer-texture copies on every
// backend the sample runs on.
const copyPitch = 256

// frameSize is the byte size of the Frame uniform in quadWGSL.
const frameSize = 32

// config selects what the renderer draws and where.
type config struct {
	typ    rhi.RHIType
	hal    hal.Backend // nil selects the platform backend
	width  uint32
	height uint32
	image  *image.RGBA
	logger *slog.Logger
}

// renderer draws a textured triangle into an offscreen RGBA8 target.
type renderer struct {
	cfg config
	log *slog.Logger

	inst  rhi.Instance
	dev   rhi.Device
	queue rhi.Queue

	target      rhi.Texture
	targetView  rhi.TextureView
	targetState rhi.TextureState

	frame    rhi.Buffer
	frameBuf rhi.BufferView
	texture  rhi.Texture
	view     rhi.TextureView
	sampler  rhi.Sampler
	layout   rhi.BindGroupLayout
	group    rhi.BindGroup
	pipeLay  rhi.PipelineLayout
	pipeline rhi.GraphicsPipeline
	shaders  []rhi.ShaderModule

	cmd   rhi.CommandBuffer
	fence rhi.Fence
}

func newRenderer(cfg config) (r *renderer, err error) {
	if cfg.width == 0 || cfg.height == 0 {
		return nil, fmt.Errorf("empty target %dx%d", cfg.width, cfg.height)
	}
	if cfg.image == nil {
		cfg.image = solidImage()
	}
	if cfg.logger == nil {
		cfg.logger = rhi.Logger()
	}
	r = &renderer{cfg: cfg, log: cfg.logger}
	defer func() {
		if err != nil {
			r.destroy()
		}
	}()

	opts := []rhi.InstanceOption{rhi.WithLogger(cfg.logger)}
	if cfg.hal != nil {
		opts = append(opts, rhi.WithHALBackend(cfg.hal))
	}
	if r.inst, err = rhi.CreateInstance(cfg.typ, opts...); err != nil {
		return nil, err
	}
	gpu, err := r.inst.GetGpu(0)
	if err != nil {
		return nil, err
	}
	prop := gpu.GetProperty()
	r.log.Info("using gpu", "name", prop.Name, "type", prop.Type.String())

	r.dev, err = gpu.RequestDevice(&rhi.DeviceCreateInfo{
		QueueRequests: []rhi.QueueRequestInfo{{Type: rhi.QueueTypeGraphics, Num: 1}},
	})
	if err != nil {
		return nil, err
	}
	if r.queue, err = r.dev.GetQueue(rhi.QueueTypeGraphics, 0); err != nil {
		return nil, err
	}
	if r.cmd, err = r.dev.CreateCommandBuffer(); err != nil {
		return nil, err
	}
	if r.fence, err = r.dev.CreateFence(false); err != nil {
		return nil, err
	}

	if err := r.createTarget(); err != nil {
		return nil, err
	}
	if err := r.createBindings(); err != nil {
		return nil, err
	}
	if err := r.createPipeline(); err != nil {
		return nil, err
	}
	if err := r.upload(cfg.image); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return r, nil
}

func (r *renderer) createTarget() error {
	var err error
	r.target, err = r.dev.CreateTexture(&rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: r.cfg.width, Height: r.cfg.height, DepthOrArrayLayers: 1},
		Format:    rhi.PixelFormatRGBA8Unorm,
		Usage:     rhi.NewFlags(rhi.TextureUsageRenderAttachment, rhi.TextureUsageCopySrc),
		DebugName: "target",
	})
	if err != nil {
		return err
	}
	r.targetState = rhi.TextureStateUndefined
	r.targetView, err = r.target.CreateTextureView(&rhi.TextureViewCreateInfo{
		Dimension: rhi.TextureViewDimension2D,
		Type:      rhi.TextureViewTypeColorAttachment,
	})
	return err
}

func (r *renderer) createBindings() error {
	var err error
	r.frame, err = r.dev.CreateBuffer(&rhi.BufferCreateInfo{
		Size:      copyPitch,
		Usage:     rhi.NewFlags(rhi.BufferUsageUniform, rhi.BufferUsageMapWrite),
		DebugName: "frame",
	})
	if err != nil {
		return err
	}
	r.frameBuf, err = r.frame.CreateBufferView(&rhi.BufferViewCreateInfo{
		Type: rhi.BufferViewTypeUniformBinding,
		Size: frameSize,
	})
	if err != nil {
		return err
	}

	b := r.cfg.image.Bounds()
	r.texture, err = r.dev.CreateTexture(&rhi.TextureCreateInfo{
		Dimension: rhi.TextureDimension2D,
		Extent:    rhi.Extent3D{Width: uint32(b.Dx()), Height: uint32(b.Dy()), DepthOrArrayLayers: 1},
		Format:    rhi.PixelFormatRGBA8UnormSrgb,
		Usage:     rhi.NewFlags(rhi.TextureUsageTextureBinding, rhi.TextureUsageCopyDst),
		DebugName: "image",
	})
	if err != nil {
		return err
	}
	r.view, err = r.texture.CreateTextureView(&rhi.TextureViewCreateInfo{
		Dimension: rhi.TextureViewDimension2D,
		Type:      rhi.TextureViewTypeTextureBinding,
	})
	if err != nil {
		return err
	}
	r.sampler, err = r.dev.CreateSampler(&rhi.SamplerCreateInfo{
		AddressModeU: rhi.AddressModeClampToEdge,
		AddressModeV: rhi.AddressModeClampToEdge,
		AddressModeW: rhi.AddressModeClampToEdge,
		MagFilter:    rhi.FilterModeLinear,
		MinFilter:    rhi.FilterModeLinear,
		MipFilter:    rhi.FilterModeNearest,
		LodMaxClamp:  32,
		DebugName:    "linear",
	})
	if err != nil {
		return err
	}

	pixel := rhi.NewFlags(rhi.ShaderStagePixel)
	r.layout, err = r.dev.CreateBindGroupLayout(&rhi.BindGroupLayoutCreateInfo{
		LayoutIndex: 0,
		Entries: []rhi.BindGroupLayoutEntry{
			{
				Binding:          rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: slotFrame},
				ShaderVisibility: rhi.NewFlags(rhi.ShaderStageVertex, rhi.ShaderStagePixel),
			},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeTexture, Slot: slotImage}, ShaderVisibility: pixel},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: slotSampler}, ShaderVisibility: pixel},
		},
		DebugName: "quad",
	})
	if err != nil {
		return err
	}
	r.group, err = r.dev.CreateBindGroup(&rhi.BindGroupCreateInfo{
		Layout: r.layout,
		Entries: []rhi.BindGroupEntry{
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: slotFrame}, Buffer: r.frameBuf},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeTexture, Slot: slotImage}, Texture: r.view},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: slotSampler}, Sampler: r.sampler},
		},
		DebugName: "quad",
	})
	return err
}

func (r *renderer) createPipeline() error {
	var err error
	r.pipeLay, err = r.dev.CreatePipelineLayout(&rhi.PipelineLayoutCreateInfo{
		BindGroupLayouts: []rhi.BindGroupLayout{r.layout},
		DebugName:        "quad",
	})
	if err != nil {
		return err
	}
	blobs, err := compileShaders(r.cfg.typ, r.pipeLay)
	if err != nil {
		return fmt.Errorf("compile shaders: %w", err)
	}
	vs, err := r.shader(blobs.typ, blobs.vertex, "quad.vs")
	if err != nil {
		return err
	}
	ps := vs
	if blobs.typ == rhi.ByteCodeTypeDXIL {
		if ps, err = r.shader(blobs.typ, blobs.pixel, "quad.ps"); err != nil {
			return err
		}
	}

	r.pipeline, err = r.dev.CreateGraphicsPipeline(&rhi.GraphicsPipelineCreateInfo{
		Layout:           r.pipeLay,
		VertexShader:     vs,
		PixelShader:      ps,
		VertexEntryPoint: "vs_main",
		PixelEntryPoint:  "fs_main",
		PrimitiveState: rhi.PrimitiveState{
			Topology: rhi.PrimitiveTopologyTriangleList,
			CullMode: rhi.CullModeNone,
		},
		MultiSampleState: rhi.MultiSampleState{Count: 1, Mask: math.MaxUint32},
		FragmentState: rhi.FragmentState{ColorTargets: []rhi.ColorTargetState{{
			Format:     rhi.PixelFormatRGBA8Unorm,
			WriteFlags: rhi.ColorWriteAll,
		}}},
		DebugName: "quad",
	})
	return err
}

func (r *renderer) shader(typ rhi.ByteCodeType, code []byte, name string) (rhi.ShaderModule, error) {
	m, err := r.dev.CreateShaderModule(&rhi.ShaderModuleCreateInfo{
		ByteCode:     code,
		ByteCodeType: typ,
		DebugName:    name,
	})
	if err != nil {
		return nil, err
	}
	r.shaders = append(r.shaders, m)
	return m, nil
}

// upload copies img into the sampled texture through a staging buffer and
// leaves the texture in ShaderReadOnly.
func (r *renderer) upload(img *image.RGBA) error {
	b := img.Bounds()
	w, h := uint32(b.Dx()), uint32(b.Dy())
	pitch := alignTo(w*4, copyPitch)

	staging, err := r.dev.CreateBuffer(&rhi.BufferCreateInfo{
		Size:         uint64(pitch) * uint64(h),
		Usage:        rhi.NewFlags(rhi.BufferUsageMapWrite, rhi.BufferUsageCopySrc),
		InitialState: rhi.BufferStateStaging,
		DebugName:    "staging",
	})
	if err != nil {
		return err
	}
	defer staging.Destroy()

	data, err := staging.Map(rhi.MapModeWrite, 0, 0)
	if err != nil {
		return err
	}
	for y := 0; y < int(h); y++ {
		copy(data[y*int(pitch):], img.Pix[y*img.Stride:y*img.Stride+int(w)*4])
	}
	if err := staging.UnMap(); err != nil {
		return err
	}

	rec, err := r.begin()
	if err != nil {
		return err
	}
	pass, err := rec.BeginCopyPass()
	if err != nil {
		return err
	}
	barriers := []rhi.Barrier{
		rhi.TransitionBuffer(staging, rhi.BufferStateStaging, rhi.BufferStateCopySrc),
		rhi.TransitionTexture(r.texture, rhi.TextureStateUndefined, rhi.TextureStateCopyDst),
	}
	for _, barrier := range barriers {
		if err := pass.ResourceBarrier(barrier); err != nil {
			return err
		}
	}
	err = pass.CopyBufferToTexture(staging, r.texture, &rhi.BufferTextureCopyRegion{
		BytesPerRow:   pitch,
		RowsPerImage:  h,
		TextureSubRes: rhi.TextureSubResource{ArrayLayerNum: 1},
		CopyRegion:    rhi.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	})
	if err != nil {
		return err
	}
	err = pass.ResourceBarrier(rhi.TransitionTexture(r.texture, rhi.TextureStateCopyDst, rhi.TextureStateShaderReadOnly))
	if err != nil {
		return err
	}
	if err := pass.EndPass(); err != nil {
		return err
	}
	if err := rec.End(); err != nil {
		return err
	}
	return r.submit()
}

// begin resets the command buffer left over from the previous submission
// and starts recording.
func (r *renderer) begin() (rhi.CommandRecorder, error) {
	if r.cmd.State() != rhi.CommandBufferStateInitial {
		if err := r.cmd.Reset(); err != nil {
			return nil, err
		}
	}
	return r.cmd.Begin()
}

// submit runs the recorded command buffer and waits for it.
func (r *renderer) submit() error {
	if err := r.fence.Reset(); err != nil {
		return err
	}
	if err := r.queue.Submit(r.cmd, &rhi.QueueSubmitInfo{SignalFence: r.fence}); err != nil {
		return err
	}
	return r.fence.Wait()
}

// transitionTarget records a barrier moving the target to state unless it
// is already there.
func (r *renderer) transitionTarget(rec interface{ ResourceBarrier(rhi.Barrier) error }, state rhi.TextureState) error {
	if r.targetState == state {
		return nil
	}
	if err := rec.ResourceBarrier(rhi.TransitionTexture(r.target, r.targetState, state)); err != nil {
		return err
	}
	r.targetState = state
	return nil
}

// render draws frame n of total and waits for it to complete.
func (r *renderer) render(n, total int) error {
	data, err := r.frame.Map(rhi.MapModeWrite, 0, frameSize)
	if err != nil {
		return err
	}
	u := frameUniforms(n, total)
	copy(data, u[:])
	if err := r.frame.UnMap(); err != nil {
		return err
	}

	rec, err := r.begin()
	if err != nil {
		return err
	}
	if err := r.transitionTarget(rec, rhi.TextureStateRenderTarget); err != nil {
		return err
	}
	pass, err := rec.BeginGraphicsPass(&rhi.GraphicsPassBeginInfo{
		ColorAttachments: []rhi.ColorAttachment{{
			View:       r.targetView,
			LoadOp:     rhi.LoadOpClear,
			StoreOp:    rhi.StoreOpStore,
			ClearValue: rhi.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
		}},
	})
	if err != nil {
		return err
	}
	if err := pass.SetPipeline(r.pipeline); err != nil {
		return err
	}
	if err := pass.SetBindGroup(0, r.group); err != nil {
		return err
	}
	if err := pass.SetViewport(0, 0, float32(r.cfg.width), float32(r.cfg.height), 0, 1); err != nil {
		return err
	}
	if err := pass.SetScissor(0, 0, r.cfg.width, r.cfg.height); err != nil {
		return err
	}
	if err := pass.Draw(3, 1, 0, 0); err != nil {
		return err
	}
	if err := pass.EndPass(); err != nil {
		return err
	}
	if err := rec.End(); err != nil {
		return err
	}
	return r.submit()
}

// readPixels copies the target into host memory.
func (r *renderer) readPixels() (*image.RGBA, error) {
	w, h := r.cfg.width, r.cfg.height
	pitch := alignTo(w*4, copyPitch)
	readback, err := r.dev.CreateBuffer(&rhi.BufferCreateInfo{
		Size:         uint64(pitch) * uint64(h),
		Usage:        rhi.NewFlags(rhi.BufferUsageMapRead, rhi.BufferUsageCopyDst),
		InitialState: rhi.BufferStateCopyDst,
		DebugName:    "readback",
	})
	if err != nil {
		return nil, err
	}
	defer readback.Destroy()

	rec, err := r.begin()
	if err != nil {
		return nil, err
	}
	pass, err := rec.BeginCopyPass()
	if err != nil {
		return nil, err
	}
	if err := r.transitionTarget(pass, rhi.TextureStateCopySrc); err != nil {
		return nil, err
	}
	err = pass.CopyTextureToBuffer(r.target, readback, &rhi.BufferTextureCopyRegion{
		BytesPerRow:   pitch,
		RowsPerImage:  h,
		TextureSubRes: rhi.TextureSubResource{ArrayLayerNum: 1},
		CopyRegion:    rhi.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := pass.EndPass(); err != nil {
		return nil, err
	}
	if err := rec.End(); err != nil {
		return nil, err
	}
	if err := r.submit(); err != nil {
		return nil, err
	}

	data, err := readback.Map(rhi.MapModeRead, 0, 0)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := 0; y < int(h); y++ {
		copy(img.Pix[y*img.Stride:], data[y*int(pitch):y*int(pitch)+int(w)*4])
	}
	return img, readback.UnMap()
}

// destroy releases everything newRenderer created. It is safe on a
// partially constructed renderer.
func (r *renderer) destroy() {
	if r.dev != nil {
		if err := r.dev.WaitIdle(); err != nil {
			r.log.Warn("wait idle failed", "err", err)
		}
	}
	if r.pipeline != nil {
		r.pipeline.Destroy()
	}
	if r.pipeLay != nil {
		r.pipeLay.Destroy()
	}
	for _, m := range r.shaders {
		m.Destroy()
	}
	if r.group != nil {
		r.group.Destroy()
	}
	if r.layout != nil {
		r.layout.Destroy()
	}
	if r.sampler != nil {
		r.sampler.Destroy()
	}
	if r.view != nil {
		r.view.Destroy()
	}
	if r.texture != nil {
		r.texture.Destroy()
	}
	if r.frameBuf != nil {
		r.frameBuf.Destroy()
	}
	if r.frame != nil {
		r.frame.Destroy()
	}
	if r.targetView != nil {
		r.targetView.Destroy()
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.fence != nil {
		r.fence.Destroy()
	}
	if r.cmd != nil {
		r.cmd.Destroy()
	}
	if r.dev != nil {
		r.dev.Destroy()
	}
	if r.inst != nil {
		r.inst.Destroy()
	}
}

// frameUniforms encodes the Frame uniform for frame n of total: the tint
// cycles through hues and the image drifts along a small circle.
func frameUniforms(n, total int) [frameSize]byte {
	var t float64
	if total > 1 {
		t = float64(n) / float64(total-1)
	}
	angle := 2 * math.Pi * t
	values := [8]float32{
		float32(0.5 + 0.5*math.Cos(angle)),
		float32(0.5 + 0.5*math.Cos(angle+2*math.Pi/3)),
		float32(0.5 + 0.5*math.Cos(angle+4*math.Pi/3)),
		1,
		float32(0.1 * math.Cos(angle)),
		float32(0.1 * math.Sin(angle)),
	}
	var out [frameSize]byte
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func alignTo(n, a uint32) uint32 {
	return (n + a - 1) / a * a
}
