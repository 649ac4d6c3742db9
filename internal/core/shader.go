package core

import (
	"encoding/binary"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rhi"
)

// maxAnisotropy is the largest anisotropy any backend accepts.
const maxAnisotropy = 16

// Sampler implements rhi.Sampler.
type Sampler struct {
	dev  *Device
	info rhi.SamplerCreateInfo
	hal  hal.Sampler

	mu        sync.Mutex
	destroyed bool
}

// CreateSampler implements rhi.Device.
func (d *Device) CreateSampler(info *rhi.SamplerCreateInfo) (rhi.Sampler, error) {
	const op = "Device.CreateSampler"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	s := *info
	if s.LodMinClamp < 0 || s.LodMinClamp > s.LodMaxClamp {
		return nil, rhi.InvalidArgument(op, "lod clamp [%g, %g] is empty", s.LodMinClamp, s.LodMaxClamp)
	}
	if s.LodMinClamp == 0 && s.LodMaxClamp == 0 {
		s.LodMaxClamp = 32
	}
	if s.MaxAnisotropy == 0 {
		s.MaxAnisotropy = 1
	}
	if s.MaxAnisotropy > maxAnisotropy {
		return nil, rhi.InvalidArgument(op, "anisotropy %d exceeds %d", s.MaxAnisotropy, maxAnisotropy)
	}
	if s.MaxAnisotropy > 1 && (s.MagFilter != rhi.FilterModeLinear || s.MinFilter != rhi.FilterModeLinear || s.MipFilter != rhi.FilterModeLinear) {
		return nil, rhi.InvalidArgument(op, "anisotropic filtering requires linear filters")
	}

	desc := &hal.SamplerDescriptor{
		Label:        s.DebugName,
		AddressModeU: addressMode(s.AddressModeU),
		AddressModeV: addressMode(s.AddressModeV),
		AddressModeW: addressMode(s.AddressModeW),
		MagFilter:    filterMode(s.MagFilter),
		MinFilter:    filterMode(s.MinFilter),
		MipmapFilter: filterMode(s.MipFilter),
		LodMinClamp:  s.LodMinClamp,
		LodMaxClamp:  s.LodMaxClamp,
		Anisotropy:   s.MaxAnisotropy,
	}
	if s.HasComparison {
		desc.Compare = compareFunc(s.ComparisonFunc)
		if desc.Compare == gputypes.CompareFunctionUndefined {
			return nil, rhi.InvalidArgument(op, "invalid comparison function %d", s.ComparisonFunc)
		}
	}

	hs, err := d.hal.CreateSampler(desc)
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	return &Sampler{dev: d, info: s, hal: hs}, nil
}

// Info returns the create info with defaults applied.
func (s *Sampler) Info() rhi.SamplerCreateInfo { return s.info }

// Destroy implements rhi.Sampler.
func (s *Sampler) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.dev.hal.DestroySampler(s.hal)
	s.dev.untrack()
}

// =============================================================================
// ShaderModule
// =============================================================================

// ShaderModule implements rhi.ShaderModule.
type ShaderModule struct {
	dev  *Device
	kind rhi.ByteCodeType
	hal  hal.ShaderModule

	mu        sync.Mutex
	destroyed bool
}

// CreateShaderModule implements rhi.Device. The variant decides which
// bytecode types it accepts.
func (d *Device) CreateShaderModule(info *rhi.ShaderModuleCreateInfo) (rhi.ShaderModule, error) {
	const op = "Device.CreateShaderModule"
	if err := d.checkAlive(op); err != nil {
		return nil, err
	}
	if info == nil {
		return nil, rhi.InvalidArgument(op, "nil create info")
	}
	if len(info.ByteCode) == 0 {
		return nil, rhi.InvalidArgument(op, "shader %q has empty bytecode", info.DebugName)
	}

	src, err := d.variant.ShaderSource(info)
	if err != nil {
		return nil, err
	}
	hm, err := d.hal.CreateShaderModule(&hal.ShaderModuleDescriptor{Label: info.DebugName, Source: src})
	if err != nil {
		return nil, backendError(d.variant, op, err)
	}
	d.track()
	d.log.Debug("rhi: shader module created", "name", info.DebugName, "bytecode", info.ByteCodeType.String(), "size", len(info.ByteCode))
	return &ShaderModule{dev: d, kind: info.ByteCodeType, hal: hm}, nil
}

// ByteCodeType implements rhi.ShaderModule.
func (m *ShaderModule) ByteCodeType() rhi.ByteCodeType { return m.kind }

// Destroy implements rhi.ShaderModule.
func (m *ShaderModule) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.dev.hal.DestroyShaderModule(m.hal)
	m.dev.untrack()
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// spirvHeaderWords is the length of the SPIR-V module header.
const spirvHeaderWords = 5

// SPIRVWords checks the framing of a SPIR-V blob and returns it as
// little-endian words.
func SPIRVWords(code []byte) ([]uint32, error) {
	const op = "SPIRVWords"
	if len(code)%4 != 0 {
		return nil, rhi.InvalidArgument(op, "SPIR-V size %d is not a multiple of 4", len(code))
	}
	if len(code) < spirvHeaderWords*4 {
		return nil, rhi.InvalidArgument(op, "SPIR-V blob of %d bytes is shorter than its header", len(code))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != SPIRVMagic {
		return nil, rhi.InvalidArgument(op, "bad SPIR-V magic %#08x", magic)
	}
	return packWords(code), nil
}

// packWords reinterprets code as little-endian words, zero-padding the
// last word.
func packWords(code []byte) []uint32 {
	words := make([]uint32, (len(code)+3)/4)
	for i := range words {
		var w [4]byte
		copy(w[:], code[i*4:])
		words[i] = binary.LittleEndian.Uint32(w[:])
	}
	return words
}

// PackBlob carries an opaque bytecode blob in a HAL shader source. The
// D3D12 HAL reads precompiled bytecode back from the SPIR-V word slot.
func PackBlob(code []byte) hal.ShaderSource {
	return hal.ShaderSource{SPIRV: packWords(code)}
}
