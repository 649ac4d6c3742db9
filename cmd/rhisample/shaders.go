package main

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/dxil"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/rhi"
	"github.com/gogpu/rhi/dx12"
)

// quadWGSL draws a full-target triangle sampling the bound image, tinted
// and offset by the per-frame uniform.
const quadWGSL = `
struct Frame {
    tint: vec4<f32>,
    offset: vec2<f32>,
    pad: vec2<f32>,
}

@group(0) @binding(0) var<uniform> frame: Frame;
@group(0) @binding(1) var img: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
    let uv = vec2<f32>(f32((idx << 1u) & 2u), f32(idx & 2u));
    var out: VertexOutput;
    out.position = vec4<f32>(uv * 2.0 - 1.0 + frame.offset, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(img, samp, in.uv) * frame.tint;
}
`

// Binding slots of quadWGSL.
const (
	slotFrame   = 0
	slotImage   = 1
	slotSampler = 2
)

// shaderBlobs holds the vertex and pixel stage bytecode for one variant.
type shaderBlobs struct {
	typ    rhi.ByteCodeType
	vertex []byte
	pixel  []byte
}

// compileShaders produces the bytecode typ accepts: one SPIR-V module with
// both stages for Vulkan, one DXIL container per stage for DirectX12. DXIL
// registers follow the root signature of layout.
func compileShaders(typ rhi.RHIType, layout rhi.PipelineLayout) (shaderBlobs, error) {
	switch typ {
	case rhi.RHITypeVulkan:
		code, err := naga.Compile(quadWGSL)
		if err != nil {
			return shaderBlobs{}, err
		}
		return shaderBlobs{typ: rhi.ByteCodeTypeSPIRV, vertex: code, pixel: code}, nil

	case rhi.RHITypeDirectX12:
		rs, ok := dx12.RootSignatureOf(layout)
		if !ok {
			return shaderBlobs{}, fmt.Errorf("pipeline layout has no DirectX12 root signature")
		}
		opts := rs.CompileOptions()
		ast, err := naga.Parse(quadWGSL)
		if err != nil {
			return shaderBlobs{}, err
		}
		module, err := naga.LowerWithSource(ast, quadWGSL)
		if err != nil {
			return shaderBlobs{}, err
		}
		vs, err := compileStage(module, "vs_main", opts)
		if err != nil {
			return shaderBlobs{}, err
		}
		fs, err := compileStage(module, "fs_main", opts)
		if err != nil {
			return shaderBlobs{}, err
		}
		return shaderBlobs{typ: rhi.ByteCodeTypeDXIL, vertex: vs, pixel: fs}, nil
	}
	return shaderBlobs{}, fmt.Errorf("no shader compiler for %s", typ)
}

func compileStage(m *ir.Module, entry string, opts dxil.Options) ([]byte, error) {
	for _, ep := range m.EntryPoints {
		if ep.Name != entry {
			continue
		}
		single := *m
		single.EntryPoints = []ir.EntryPoint{ep}
		blob, err := dxil.Compile(&single, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry, err)
		}
		return blob, nil
	}
	return nil, fmt.Errorf("entry point %s not found", entry)
}
