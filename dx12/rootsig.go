package dx12

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gogpu/naga/dxil"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/internal/cache"
	"github.com/gogpu/rhi/internal/core"
)

const (
	// SamplerSpace is the register space of sampler bindings. A sampler's
	// register is its index among the samplers of its group; shaders read
	// the heap slot from the group's sampler index buffer.
	SamplerSpace = 255

	// SamplerHeapSize is the descriptor count of each range of the global
	// sampler table. Comparison samplers start at this register.
	SamplerHeapSize = 2048
)

// RangeType is a D3D12_DESCRIPTOR_RANGE_TYPE value.
type RangeType uint32

// Descriptor range types.
const (
	RangeTypeSRV     RangeType = 0
	RangeTypeUAV     RangeType = 1
	RangeTypeCBV     RangeType = 2
	RangeTypeSampler RangeType = 3

	rangeTypeCount = 4
)

func (r RangeType) String() string {
	switch r {
	case RangeTypeSRV:
		return "SRV"
	case RangeTypeUAV:
		return "UAV"
	case RangeTypeCBV:
		return "CBV"
	case RangeTypeSampler:
		return "Sampler"
	}
	return fmt.Sprintf("RangeType(%d)", uint32(r))
}

// ShaderVisibility is a D3D12_SHADER_VISIBILITY value.
type ShaderVisibility uint32

// Shader visibilities. Compute shaders only see ShaderVisibilityAll.
const (
	ShaderVisibilityAll    ShaderVisibility = 0
	ShaderVisibilityVertex ShaderVisibility = 1
	ShaderVisibilityPixel  ShaderVisibility = 5
)

// RootParameterType is a D3D12_ROOT_PARAMETER_TYPE value.
type RootParameterType uint32

// Root parameter types.
const (
	RootParameterDescriptorTable RootParameterType = 0
	RootParameter32BitConstants  RootParameterType = 1
)

// RangeTypeOf returns the descriptor range type of a binding type.
func RangeTypeOf(t rhi.BindingType) (RangeType, error) {
	switch t {
	case rhi.BindingTypeUniformBuffer:
		return RangeTypeCBV, nil
	case rhi.BindingTypeStorageBuffer, rhi.BindingTypeStorageTexture:
		return RangeTypeUAV, nil
	case rhi.BindingTypeTexture:
		return RangeTypeSRV, nil
	case rhi.BindingTypeSampler:
		return RangeTypeSampler, nil
	}
	return 0, rhi.InvalidArgument("dx12.RangeTypeOf", "invalid binding type %d", t)
}

// Visibility returns the root constants visibility of stages: the stage
// itself when exactly one graphics stage sees the constants, otherwise
// ShaderVisibilityAll. Descriptor tables are always visible to all stages.
func Visibility(stages rhi.ShaderStageFlags) ShaderVisibility {
	switch stages {
	case rhi.NewFlags(rhi.ShaderStageVertex):
		return ShaderVisibilityVertex
	case rhi.NewFlags(rhi.ShaderStagePixel):
		return ShaderVisibilityPixel
	}
	return ShaderVisibilityAll
}

// DescriptorRange is a D3D12_DESCRIPTOR_RANGE.
type DescriptorRange struct {
	Type               RangeType
	NumDescriptors     uint32
	BaseShaderRegister uint32
	RegisterSpace      uint32
}

// TableEntry is one binding of a table layout.
type TableEntry struct {
	Binding rhi.ResourceBinding
	// Shader is the binding number shaders declare for the entry.
	Shader uint32
	Type   RangeType
}

// TableLayout is the projection of a bind group layout. Entries keep the
// sorted layout order. Registers are assigned per pipeline layout because
// they run on across groups.
type TableLayout struct {
	Group    uint32
	Entries  []TableEntry
	Samplers uint32
}

// Empty reports whether the group needs no root parameter.
func (l *TableLayout) Empty() bool { return len(l.Entries) == 0 }

func projectTableLayout(info *rhi.BindGroupLayoutCreateInfo) (*TableLayout, error) {
	entries := slices.Clone(info.Entries)
	slices.SortFunc(entries, core.CompareLayoutEntries)
	shader := core.ShaderBindings(entries)

	out := &TableLayout{Group: info.LayoutIndex, Entries: make([]TableEntry, len(entries))}
	for i, e := range entries {
		rt, err := RangeTypeOf(e.Binding.Type)
		if err != nil {
			return nil, err
		}
		if rt == RangeTypeSampler {
			out.Samplers++
		}
		out.Entries[i] = TableEntry{Binding: e.Binding, Shader: shader[i], Type: rt}
	}
	return out, nil
}

// RootConstants is a D3D12_ROOT_CONSTANTS.
type RootConstants struct {
	ShaderRegister uint32
	RegisterSpace  uint32
	Num32BitValues uint32
}

// RootParameter is a D3D12_ROOT_PARAMETER.
type RootParameter struct {
	Type       RootParameterType
	Visibility ShaderVisibility
	Ranges     []DescriptorRange
	Constants  RootConstants
}

// RootSignature is the projection of a pipeline layout, laid out the way
// the DirectX 12 HAL builds it.
//
// Every non-sampler binding gets its own single-descriptor range in space
// 0, numbered by one counter per range type that runs across groups in
// group order. A group with samplers appends a sampler index buffer SRV to
// its table. All samplers live in one global table of two ranges, standard
// at s0 and comparison at s2048. Root constants follow, on the CBV
// registers after the last group's.
type RootSignature struct {
	Parameters []RootParameter

	// GroupParameters[i] is the table parameter of group i, or -1 when the
	// group is empty.
	GroupParameters []int

	// SamplerParameter is the global sampler table, or -1.
	SamplerParameter int

	// Bindings maps every shader binding to its register.
	Bindings dxil.BindingMap

	// SamplerBuffers maps each group with samplers to its index buffer.
	SamplerBuffers map[uint32]dxil.BindTarget
}

// CompileOptions returns DXIL compile options whose registers match the
// root signature.
func (rs *RootSignature) CompileOptions() dxil.Options {
	opts := dxil.DefaultOptions()
	opts.BindingMap = maps.Clone(rs.Bindings)
	opts.SamplerBufferBindingMap = maps.Clone(rs.SamplerBuffers)
	opts.SamplerHeapTargets = &dxil.SamplerHeapBindTargets{
		StandardSamplers:   dxil.BindTarget{Space: 0, Register: 0},
		ComparisonSamplers: dxil.BindTarget{Space: 0, Register: SamplerHeapSize},
	}
	return opts
}

// ProjectRootSignature projects layouts that were never created on a
// device, for compiling shaders offline. groups[i] describes group i.
func ProjectRootSignature(groups []rhi.BindGroupLayoutCreateInfo, constants []rhi.PipelineConstantLayout) (*RootSignature, error) {
	tables := make([]*TableLayout, len(groups))
	for i := range groups {
		if groups[i].LayoutIndex != uint32(i) {
			return nil, rhi.InvalidArgument("dx12.ProjectRootSignature", "layout %d declares index %d", i, groups[i].LayoutIndex)
		}
		t, err := projectTableLayout(&groups[i])
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}
	return buildRootSignature(tables, constants), nil
}

// roots memoizes root signatures by binding signature. Pipeline layouts
// with identical groups and constants share one signature.
type roots struct {
	cache *cache.Sharded[string, *RootSignature]
}

func newRoots(capacity int) *roots {
	return &roots{cache: cache.New[string, *RootSignature](capacity, cache.StringHasher)}
}

func (r *roots) project(groups []*core.BindGroupLayout, constants []rhi.PipelineConstantLayout) (*RootSignature, error) {
	tables := make([]*TableLayout, len(groups))
	for i, g := range groups {
		t, ok := g.Native().(*TableLayout)
		if !ok {
			return nil, rhi.InvalidArgument("dx12.ProjectPipelineLayout", "layout %d was not created by the DirectX12 backend", i)
		}
		tables[i] = t
	}
	return r.cache.GetOrCreate(signatureKey(tables, constants), func() (*RootSignature, error) {
		return buildRootSignature(tables, constants), nil
	})
}

func buildRootSignature(tables []*TableLayout, constants []rhi.PipelineConstantLayout) *RootSignature {
	rs := &RootSignature{
		GroupParameters:  make([]int, len(tables)),
		SamplerParameter: -1,
		Bindings:         make(dxil.BindingMap),
		SamplerBuffers:   make(map[uint32]dxil.BindTarget),
	}
	var next [rangeTypeCount]uint32
	anySampler := false

	for group, t := range tables {
		rs.GroupParameters[group] = -1
		if t.Empty() {
			continue
		}
		var ranges []DescriptorRange
		var samplers uint32
		for _, e := range t.Entries {
			loc := dxil.BindingLocation{Group: uint32(group), Binding: e.Shader}
			if e.Type == RangeTypeSampler {
				rs.Bindings[loc] = dxil.BindTarget{Space: SamplerSpace, Register: samplers}
				samplers++
				continue
			}
			reg := next[e.Type]
			next[e.Type]++
			rs.Bindings[loc] = dxil.BindTarget{Register: reg}
			ranges = append(ranges, DescriptorRange{Type: e.Type, NumDescriptors: 1, BaseShaderRegister: reg})
		}
		if samplers > 0 {
			anySampler = true
			reg := next[RangeTypeSRV]
			next[RangeTypeSRV]++
			rs.SamplerBuffers[uint32(group)] = dxil.BindTarget{Register: reg}
			ranges = append(ranges, DescriptorRange{Type: RangeTypeSRV, NumDescriptors: 1, BaseShaderRegister: reg})
		}
		rs.GroupParameters[group] = len(rs.Parameters)
		rs.Parameters = append(rs.Parameters, RootParameter{
			Type:       RootParameterDescriptorTable,
			Visibility: ShaderVisibilityAll,
			Ranges:     ranges,
		})
	}

	if anySampler {
		rs.SamplerParameter = len(rs.Parameters)
		rs.Parameters = append(rs.Parameters, RootParameter{
			Type:       RootParameterDescriptorTable,
			Visibility: ShaderVisibilityAll,
			Ranges: []DescriptorRange{
				{Type: RangeTypeSampler, NumDescriptors: SamplerHeapSize},
				{Type: RangeTypeSampler, NumDescriptors: SamplerHeapSize, BaseShaderRegister: SamplerHeapSize},
			},
		})
	}

	for _, c := range constants {
		reg := next[RangeTypeCBV]
		next[RangeTypeCBV]++
		rs.Parameters = append(rs.Parameters, RootParameter{
			Type:       RootParameter32BitConstants,
			Visibility: Visibility(c.StageFlags),
			Constants:  RootConstants{ShaderRegister: reg, Num32BitValues: (c.Size + 3) / 4},
		})
	}
	return rs
}

// signatureKey encodes everything buildRootSignature reads.
func signatureKey(tables []*TableLayout, constants []rhi.PipelineConstantLayout) string {
	var b strings.Builder
	var buf [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		b.Write(buf[:])
	}
	put(uint32(len(tables)))
	for _, t := range tables {
		put(uint32(len(t.Entries)))
		for _, e := range t.Entries {
			put(uint32(e.Type))
			put(e.Shader)
		}
	}
	put(uint32(len(constants)))
	for _, c := range constants {
		put(c.StageFlags.Value())
		put(c.Offset)
		put(c.Size)
	}
	return b.String()
}
