package main

import (
	"encoding/binary"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/dxil"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/dx12"
)

const twoStages = `
@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want rhi.ByteCodeType
		ok   bool
	}{
		{"spirv", rhi.ByteCodeTypeSPIRV, true},
		{"SPV", rhi.ByteCodeTypeSPIRV, true},
		{"dxil", rhi.ByteCodeTypeDXIL, true},
		{"msl", 0, false},
	}
	for _, tt := range tests {
		got, err := parseTarget(tt.in)
		if (err == nil) != tt.ok || (tt.ok && got != tt.want) {
			t.Errorf("parseTarget(%q) = %s, %v", tt.in, got, err)
		}
	}
}

func TestCompileSPIRV(t *testing.T) {
	blob, err := compile(twoStages, rhi.ByteCodeTypeSPIRV, "")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(blob) < 20 || binary.LittleEndian.Uint32(blob) != 0x07230203 {
		t.Fatalf("output is not a SPIR-V module (%d bytes)", len(blob))
	}
}

func TestCompileDXIL(t *testing.T) {
	for _, entry := range []string{"", "fs_main"} {
		blob, err := compile(twoStages, rhi.ByteCodeTypeDXIL, entry)
		if err != nil {
			t.Fatalf("compile(%q) failed: %v", entry, err)
		}
		if err := dxil.Validate(blob, dxil.ValidateStructural); err != nil {
			t.Errorf("compile(%q) produced an invalid container: %v", entry, err)
		}
	}

	_, err := compile(twoStages, rhi.ByteCodeTypeDXIL, "cs_main")
	if err == nil || !strings.Contains(err.Error(), "vs_main, fs_main") {
		t.Errorf("missing entry point error = %v", err)
	}
	_, err = compile("fn broken(", rhi.ByteCodeTypeDXIL, "")
	if err == nil {
		t.Error("malformed WGSL compiled")
	}
}

func TestExtension(t *testing.T) {
	if extension(rhi.ByteCodeTypeDXIL) != ".dxil" || extension(rhi.ByteCodeTypeSPIRV) != ".spv" {
		t.Error("unexpected output extensions")
	}
}

const texturedFragment = `
struct Tint {
    color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> globals: Tint;
@group(1) @binding(0) var<uniform> tint: Tint;
@group(1) @binding(1) var tex: texture_2d<f32>;
@group(1) @binding(2) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv) * globals.color * tint.color;
}
`

func TestRootSignatureFromShader(t *testing.T) {
	ast, err := naga.Parse(texturedFragment)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	module, err := naga.LowerWithSource(ast, texturedFragment)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	rs, err := rootSignature(module)
	if err != nil {
		t.Fatalf("rootSignature failed: %v", err)
	}

	// The same bindings declared as device layouts.
	want, err := dx12.ProjectRootSignature([]rhi.BindGroupLayoutCreateInfo{
		{LayoutIndex: 0, Entries: []rhi.BindGroupLayoutEntry{
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0}, ShaderVisibility: rhi.ShaderStageAll},
		}},
		{LayoutIndex: 1, Entries: []rhi.BindGroupLayoutEntry{
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeUniformBuffer, Slot: 0}, ShaderVisibility: rhi.ShaderStageAll},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeTexture, Slot: 1}, ShaderVisibility: rhi.ShaderStageAll},
			{Binding: rhi.ResourceBinding{Type: rhi.BindingTypeSampler, Slot: 2}, ShaderVisibility: rhi.ShaderStageAll},
		}},
	}, nil)
	if err != nil {
		t.Fatalf("ProjectRootSignature failed: %v", err)
	}
	if !reflect.DeepEqual(rs, want) {
		t.Errorf("shader root signature =\n%+v\nwant\n%+v", rs, want)
	}
	if got := rs.Bindings[dxil.BindingLocation{Group: 1, Binding: 2}]; got.Space != dx12.SamplerSpace || got.Register != 0 {
		t.Errorf("sampler target = %+v", got)
	}
	if got := rs.Bindings[dxil.BindingLocation{Group: 1, Binding: 0}]; got.Space != 0 || got.Register != 1 {
		t.Errorf("group 1 uniform target = %+v, want b1 space0", got)
	}

	blob, err := compile(texturedFragment, rhi.ByteCodeTypeDXIL, "")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if err := dxil.Validate(blob, dxil.ValidateStructural); err != nil {
		t.Errorf("compiled container is invalid: %v", err)
	}
}
