package main

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/dxil"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/dx12"
)

func parseTarget(s string) (rhi.ByteCodeType, error) {
	switch strings.ToLower(s) {
	case "spirv", "spv":
		return rhi.ByteCodeTypeSPIRV, nil
	case "dxil":
		return rhi.ByteCodeTypeDXIL, nil
	}
	return 0, fmt.Errorf("unknown target %q (want spirv or dxil)", s)
}

func extension(bc rhi.ByteCodeType) string {
	if bc == rhi.ByteCodeTypeDXIL {
		return ".dxil"
	}
	return ".spv"
}

// compile translates WGSL source to bc. SPIR-V modules keep every entry
// point; a DXIL container holds exactly one, entry or the first declared.
func compile(src string, bc rhi.ByteCodeType, entry string) ([]byte, error) {
	switch bc {
	case rhi.ByteCodeTypeSPIRV:
		return naga.Compile(src)
	case rhi.ByteCodeTypeDXIL:
		return compileDXIL(src, entry)
	}
	return nil, fmt.Errorf("cannot compile to %s", bc)
}

func compileDXIL(src, entry string) ([]byte, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, err
	}
	single, err := selectEntryPoint(module, entry)
	if err != nil {
		return nil, err
	}
	rs, err := rootSignature(module)
	if err != nil {
		return nil, err
	}
	blob, err := dxil.Compile(single, rs.CompileOptions())
	if err != nil {
		return nil, err
	}
	if err := dxil.Validate(blob, dxil.ValidateBitcode); err != nil {
		return nil, fmt.Errorf("generated DXIL is invalid: %w", err)
	}
	return blob, nil
}

// rootSignature projects the resource bindings m declares the way the
// DirectX 12 backend lays out a pipeline layout with the same bindings,
// one group per @group index.
func rootSignature(m *ir.Module) (*dx12.RootSignature, error) {
	var groups []rhi.BindGroupLayoutCreateInfo
	for i := range m.GlobalVariables {
		g := &m.GlobalVariables[i]
		if g.Binding == nil {
			continue
		}
		typ, err := bindingType(m, g)
		if err != nil {
			return nil, err
		}
		for uint32(len(groups)) <= g.Binding.Group {
			groups = append(groups, rhi.BindGroupLayoutCreateInfo{LayoutIndex: uint32(len(groups))})
		}
		grp := &groups[g.Binding.Group]
		grp.Entries = append(grp.Entries, rhi.BindGroupLayoutEntry{
			Binding:          rhi.ResourceBinding{Type: typ, Slot: g.Binding.Binding},
			ShaderVisibility: rhi.ShaderStageAll,
		})
	}
	return dx12.ProjectRootSignature(groups, nil)
}

func bindingType(m *ir.Module, g *ir.GlobalVariable) (rhi.BindingType, error) {
	switch g.Space {
	case ir.SpaceUniform:
		return rhi.BindingTypeUniformBuffer, nil
	case ir.SpaceStorage:
		return rhi.BindingTypeStorageBuffer, nil
	}
	inner := m.Types[g.Type].Inner
	if arr, ok := inner.(ir.BindingArrayType); ok {
		inner = m.Types[arr.Base].Inner
	}
	switch t := inner.(type) {
	case ir.SamplerType:
		return rhi.BindingTypeSampler, nil
	case ir.ImageType:
		if t.Class == ir.ImageClassStorage {
			return rhi.BindingTypeStorageTexture, nil
		}
		return rhi.BindingTypeTexture, nil
	}
	return 0, fmt.Errorf("%q at @group(%d) @binding(%d) is not a bindable resource", g.Name, g.Binding.Group, g.Binding.Binding)
}

// selectEntryPoint returns a shallow copy of m whose only entry point is
// the one named entry.
func selectEntryPoint(m *ir.Module, entry string) (*ir.Module, error) {
	if len(m.EntryPoints) == 0 {
		return nil, fmt.Errorf("shader declares no entry points")
	}
	if entry == "" {
		entry = m.EntryPoints[0].Name
	}
	for _, ep := range m.EntryPoints {
		if ep.Name == entry {
			single := *m
			single.EntryPoints = []ir.EntryPoint{ep}
			return &single, nil
		}
	}
	names := make([]string, len(m.EntryPoints))
	for i, ep := range m.EntryPoints {
		names[i] = ep.Name
	}
	return nil, fmt.Errorf("entry point %q not found (have %s)", entry, strings.Join(names, ", "))
}
